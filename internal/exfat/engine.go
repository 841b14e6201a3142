// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package exfat

import (
	"fmt"
	"time"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/model"
)

// Scan runs the full exFAT recovery pipeline: boot sector and FAT decoding,
// deleted directory-entry-set discovery, orphan cluster-chain discovery,
// and candidate assembly in directory-traversal-then-orphan order.
func Scan(img blockio.Image, imagePath string, threshold float64) (*model.RecoverySession, error) {
	bs, err := ReadBootSector(img)
	if err != nil {
		return nil, fmt.Errorf("exfat: %w", err)
	}
	fat, err := ReadFAT(img, bs)
	if err != nil {
		return nil, fmt.Errorf("exfat: %w", err)
	}

	start := time.Now()
	deletedEntries, liveClusters, err := DeletedEntryCandidates(img, bs, fat)
	if err != nil && len(deletedEntries) == 0 && liveClusters == nil {
		return nil, fmt.Errorf("exfat: %w", err)
	}
	orphans := OrphanChainCandidates(fat, bs.ClusterCount, bs.BytesPerCluster(), liveClusters)

	session := model.NewSession(imagePath, model.FSExFAT)
	session.Threshold = threshold
	session.DeviceSize = uint64(img.Size())
	session.BlockSize = bs.BytesPerCluster()
	session.FSSize = uint64(bs.ClusterCount) * uint64(bs.BytesPerCluster())

	for _, c := range deletedEntries {
		session.AddCandidate(buildCandidate(bs, c))
	}
	for _, c := range orphans {
		session.AddCandidate(buildCandidate(bs, c))
	}
	session.Duration = time.Since(start)
	return session, nil
}

func buildCandidate(bs *BootSector, c exfatCandidate) model.DeletedFile {
	bytesPerCluster := uint64(bs.BytesPerCluster())
	extents := chainToExtents(c.Chain.Clusters)

	size := c.DataLength
	if size == 0 {
		size = uint64(len(c.Chain.Clusters)) * bytesPerCluster
	}

	expectedClusters := uint32(0)
	if bytesPerCluster > 0 {
		expectedClusters = uint32((size + bytesPerCluster - 1) / bytesPerCluster)
	}

	id := fmt.Sprintf("exfat-%d", c.FirstCluster)
	df := model.DeletedFile{
		ID:           id,
		NativeID:     fmt.Sprintf("%d", c.FirstCluster),
		OriginalPath: c.Name,
		Size:         size,
		Kind:         model.FSExFAT,
		Extents:      extents,
	}
	df.FSMeta = model.ExfatMetadata{
		FirstCluster:     c.FirstCluster,
		ClusterChainOK:   c.Chain.Valid,
		FatChain:         true,
		EntrySetOffset:   c.EntryOffset,
		SecondaryCount:   c.SecondaryCount,
		ChecksumValid:    c.ChecksumValid,
		NameHash:         c.Checksum,
		HitBadCluster:    c.Chain.HitBad,
		ExpectedClusters: expectedClusters,
		UTF16Valid:       c.UTF16Valid,
		Attributes:       c.Attributes,
	}
	return df
}

// chainToExtents collapses a cluster chain into runs of consecutive
// clusters, each becoming one Extent in cluster units.
func chainToExtents(clusters []uint32) []model.Extent {
	var out []model.Extent
	for _, cl := range clusters {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.Start+last.Count == uint64(cl) {
				last.Count++
				continue
			}
		}
		out = append(out, model.Extent{Start: uint64(cl), Count: 1, Allocated: true})
	}
	return out
}
