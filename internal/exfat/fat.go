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
	"encoding/binary"
	"fmt"

	"github.com/mimirforensics/recoverfs/internal/blockio"
)

const (
	fatEntryFree    uint32 = 0x00000000
	fatEntryBad     uint32 = 0xFFFFFFF7
	fatEntryEOCLo   uint32 = 0xFFFFFFF8
	fatMaxChainLen         = 1 << 20 // guards against a corrupted image's chain cycling forever
)

// FAT is the decoded 32-bit-entry file allocation table.
type FAT struct {
	entries []uint32
}

// ReadFAT reads fatLength sectors of 32-bit little-endian entries starting
// at fatOffset sectors into the image.
func ReadFAT(img blockio.Image, bs *BootSector) (*FAT, error) {
	start := int64(bs.FatOffset) * int64(bs.BytesPerSector())
	length := int(bs.FatLength) * int(bs.BytesPerSector())
	buf, err := img.ReadAt(start, length)
	if err != nil {
		return nil, fmt.Errorf("exfat: read FAT: %w", err)
	}
	entries := make([]uint32, length/4)
	for i := range entries {
		entries[i] = binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
	}
	return &FAT{entries: entries}, nil
}

// Entry returns the raw FAT entry for a cluster number.
func (f *FAT) Entry(cluster uint32) uint32 {
	if int(cluster) >= len(f.entries) {
		return fatEntryBad
	}
	return f.entries[cluster]
}

// Chain is a resolved cluster chain plus whether it terminated cleanly.
type Chain struct {
	Clusters []uint32
	Valid    bool
	HitBad   bool
}

// ReadChain follows FAT pointers from start until an end-of-chain marker,
// a free entry (truncation), a bad-cluster marker, or an out-of-range
// cluster.
func (f *FAT) ReadChain(start uint32, clusterCount uint32) Chain {
	var c Chain
	cur := start
	seen := make(map[uint32]bool)
	for len(c.Clusters) < fatMaxChainLen {
		if cur < 2 || cur >= clusterCount+2 {
			return c // broken: out of range
		}
		if seen[cur] {
			return c // broken: cycle
		}
		seen[cur] = true
		c.Clusters = append(c.Clusters, cur)

		next := f.Entry(cur)
		switch {
		case next >= fatEntryEOCLo:
			c.Valid = true
			return c
		case next == fatEntryBad:
			c.HitBad = true
			return c
		case next == fatEntryFree:
			return c // broken: truncated
		default:
			cur = next
		}
	}
	return c
}

// ReferencedClusters returns the set of every cluster appearing in chains,
// used by the orphan-chain discovery pass to find unreferenced heads.
func ReferencedClusters(chains []Chain) map[uint32]bool {
	refs := make(map[uint32]bool)
	for _, c := range chains {
		for _, cl := range c.Clusters {
			refs[cl] = true
		}
	}
	return refs
}
