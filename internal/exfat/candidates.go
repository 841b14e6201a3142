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
	"github.com/mimirforensics/recoverfs/internal/blockio"
)

// exfatCandidate is a pre-scoring deletion candidate, either a deleted
// directory entry set or an orphan FAT chain with no surviving name.
type exfatCandidate struct {
	FirstCluster   uint32
	Chain          Chain
	DataLength     uint64
	Name           string
	UTF16Valid     bool
	SecondaryCount uint8
	Checksum       uint16
	ChecksumValid  bool
	Attributes     uint16
	EntryOffset    uint64
}

// scanDirectoryChain reads every cluster of a directory's cluster chain and
// returns its concatenated bytes for entry-set parsing.
func scanDirectoryChain(img blockio.Image, bs *BootSector, chain Chain) ([]byte, error) {
	out := make([]byte, 0, len(chain.Clusters)*int(bs.BytesPerCluster()))
	for _, cl := range chain.Clusters {
		buf, err := img.ReadAt(int64(bs.ClusterOffset(cl)), int(bs.BytesPerCluster()))
		if err != nil {
			return out, err
		}
		out = append(out, buf...)
	}
	return out, nil
}

// DeletedEntryCandidates walks the directory chain rooted at the root
// directory cluster, returning one candidate per deleted entry set
// encountered, plus the set of clusters any live entry references.
func DeletedEntryCandidates(img blockio.Image, bs *BootSector, fat *FAT) (deleted []exfatCandidate, liveClusters map[uint32]bool, err error) {
	rootChain := fat.ReadChain(bs.RootDirCluster, bs.ClusterCount)
	data, readErr := scanDirectoryChain(img, bs, rootChain)
	if readErr != nil && len(data) == 0 {
		return nil, nil, readErr
	}

	liveClusters = map[uint32]bool{}
	for _, cl := range rootChain.Clusters {
		liveClusters[cl] = true
	}

	sets := ParseEntrySets(data)
	for _, s := range sets {
		if s.FirstCluster != 0 {
			c := fat.ReadChain(s.FirstCluster, bs.ClusterCount)
			for _, cl := range c.Clusters {
				if !s.Deleted {
					liveClusters[cl] = true
				}
			}
		}
		if !s.Deleted {
			continue
		}
		chain := fat.ReadChain(s.FirstCluster, bs.ClusterCount)
		deleted = append(deleted, exfatCandidate{
			FirstCluster:   s.FirstCluster,
			Chain:          chain,
			DataLength:     s.DataLength,
			Name:           s.Name,
			UTF16Valid:     s.UTF16Valid,
			SecondaryCount: s.SecondaryCount,
			Checksum:       s.Checksum,
			ChecksumValid:  s.ChecksumValid,
			Attributes:     s.Attributes,
			EntryOffset:    s.Offset,
		})
	}
	return deleted, liveClusters, nil
}

// OrphanChainCandidates finds every cluster not referenced by a live entry
// and not already claimed by an earlier orphan chain, and follows each such
// head to produce a nameless candidate, per the spec's second strategy.
func OrphanChainCandidates(fat *FAT, clusterCount uint32, bytesPerCluster uint32, liveClusters map[uint32]bool) []exfatCandidate {
	claimed := make(map[uint32]bool, len(liveClusters))
	for cl := range liveClusters {
		claimed[cl] = true
	}

	var out []exfatCandidate
	for cl := uint32(2); cl < clusterCount+2; cl++ {
		if claimed[cl] {
			continue
		}
		if fat.Entry(cl) == fatEntryFree {
			continue
		}
		chain := fat.ReadChain(cl, clusterCount)
		if len(chain.Clusters) == 0 {
			continue
		}
		for _, c := range chain.Clusters {
			claimed[c] = true
		}
		out = append(out, exfatCandidate{
			FirstCluster: cl,
			Chain:        chain,
			DataLength:   uint64(len(chain.Clusters)) * uint64(bytesPerCluster),
		})
	}
	return out
}
