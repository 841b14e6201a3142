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
package btrfs

import (
	"sort"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/logger"
	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/mimirforensics/recoverfs/internal/sig"
)

// btrfsCandidate is one merged deletion candidate before scoring.
type btrfsCandidate struct {
	ObjectID     uint64
	Inode        *InodeItem
	Extents      []model.Extent
	Refcounts    []uint32
	InSnapshot   bool
	InlineExtent bool
	Orphaned     bool
	CowCount     int
	Level        uint8
	ChecksumOK   bool
}

// FindCandidates runs the three strategies the spec describes in order and
// merges their results by object id, orphan items and unlinked inodes
// taking precedence over the signature scan fallback.
func FindCandidates(img blockio.Image, sb *Superblock, chunkMap *ChunkMap, fsTreeBytenr uint64, catalog *sig.Catalog, log *logger.Logger) ([]btrfsCandidate, error) {
	merged := make(map[uint64]*btrfsCandidate)

	var orphanIDs []uint64
	err := walkTree(img, sb.NodeSize, fsTreeBytenr, log, func(leaf *Leaf, depth int) error {
		for _, it := range leaf.Items {
			switch it.Key.Type {
			case ItemTypeOrphanItem:
				orphanIDs = append(orphanIDs, it.Key.ObjectID)
			case ItemTypeInodeItem:
				ii, err := DecodeInodeItem(it.Data)
				if err != nil {
					continue
				}
				if ii.NLink == 0 {
					c := getOrCreate(merged, it.Key.ObjectID)
					c.Inode = ii
					// The fs tree's depth to this leaf, not the extent tree's;
					// this engine never walks the extent tree, so it is the
					// only tree level a candidate can faithfully report.
					c.Level = uint8(depth)
				}
			case ItemTypeExtentData:
				fe, err := DecodeFileExtent(it.Data)
				if err != nil {
					continue
				}
				applyFileExtent(merged, it.Key.ObjectID, fe, chunkMap, sb.SectorSize)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range orphanIDs {
		c := getOrCreate(merged, id)
		c.Orphaned = true
	}

	// Signature scan fallback: only exercised when tree traversal produced
	// nothing, per the spec.
	if len(merged) == 0 {
		return signatureScanCandidates(img, sb, catalog), nil
	}

	out := make([]btrfsCandidate, 0, len(merged))
	for _, c := range merged {
		if c.Inode == nil && !c.Orphaned {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObjectID < out[j].ObjectID })
	return out, nil
}

func getOrCreate(m map[uint64]*btrfsCandidate, id uint64) *btrfsCandidate {
	c, ok := m[id]
	if !ok {
		c = &btrfsCandidate{ObjectID: id}
		m[id] = c
	}
	return c
}

func applyFileExtent(m map[uint64]*btrfsCandidate, objectID uint64, fe *FileExtent, chunkMap *ChunkMap, sectorSize uint32) {
	c := getOrCreate(m, objectID)
	if fe.Type == fileExtentInline {
		c.InlineExtent = true
		c.Extents = append(c.Extents, model.Extent{Start: 0, Count: 1, Allocated: true})
		c.Refcounts = append(c.Refcounts, 1)
		return
	}
	if !fe.Recoverable() {
		return
	}
	ext, err := fe.ToModelExtent(chunkMap, sectorSize)
	if err != nil {
		return
	}
	c.Extents = append(c.Extents, ext)
	// This engine never walks the extent tree, so the true backref count
	// (BTRFS_EXTENT_ITEM.refs) isn't available; a freshly written COW extent
	// referenced only by this file is the common case, so it defaults to 1.
	c.Refcounts = append(c.Refcounts, 1)
	c.CowCount++
}

// signatureScanCandidates linearly scans sector-sized blocks of the image
// and matches them against the signature catalog, producing candidates
// with inferred sizes and no directory metadata, as the spec's third
// strategy describes.
func signatureScanCandidates(img blockio.Image, sb *Superblock, catalog *sig.Catalog) []btrfsCandidate {
	var out []btrfsCandidate
	size := img.Size()
	const probeLen = 64
	var id uint64 = 1
	for off := int64(0); off+probeLen <= size; off += int64(sb.SectorSize) {
		buf, err := img.ReadAt(off, probeLen)
		if err != nil {
			continue
		}
		sigMatch, ok := catalog.Match(buf)
		if !ok {
			continue
		}
		estSize, _ := catalog.EstimateSize(buf)
		if estSize == 0 {
			estSize = uint64(sb.SectorSize)
		}
		count := (estSize + uint64(sb.SectorSize) - 1) / uint64(sb.SectorSize)
		out = append(out, btrfsCandidate{
			ObjectID: id,
			Extents:  []model.Extent{{Start: uint64(off) / uint64(sb.SectorSize), Count: count, Allocated: true}},
		})
		_ = sigMatch
		id++
	}
	return out
}
