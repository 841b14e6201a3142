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
package score

import "github.com/mimirforensics/recoverfs/internal/model"

// XFSContext carries the filesystem-wide facts the XFS sub-factor needs
// beyond what a single candidate's metadata holds.
type XFSContext struct {
	AGCount       uint32
	InodesPerAG   uint64
	StripeUnit    uint64 // blocks; 0 disables the alignment check
}

// XFSSubScore implements the spec's equal average of AG validity, extent
// integrity and inode consistency.
func XFSSubScore(c model.DeletedFile, ctx XFSContext) float64 {
	meta, ok := c.FSMeta.(model.XFSMetadata)
	if !ok {
		return 0
	}
	return (agValidity(meta, ctx) + xfsExtentIntegrity(meta, c.Extents, ctx) + inodeConsistency(meta, c.Extents, c.Size)) / 3
}

func agValidity(m model.XFSMetadata, ctx XFSContext) float64 {
	var v float64
	if uint32(m.AllocationGroup) < ctx.AGCount {
		v += 0.4
	}
	if ctx.InodesPerAG == 0 || m.InodeNumber < ctx.InodesPerAG {
		v += 0.4
	}
	if m.Generation > 0 && m.Generation < 1_000_000 {
		v += 0.2
	}
	return v
}

func xfsExtentIntegrity(m model.XFSMetadata, extents []model.Extent, ctx XFSContext) float64 {
	var v float64
	inBounds := true
	for _, e := range extents {
		if e.Count == 0 {
			inBounds = false
		}
	}
	if inBounds {
		v += 0.4
	}
	// m.ExtentAligned is precomputed against the superblock's stripe unit at
	// candidate-build time; a zero stripe unit (unstriped filesystem) leaves
	// every extent trivially aligned.
	if ctx.StripeUnit == 0 || m.ExtentAligned {
		v += 0.4
	}
	if !model.ExtentsOverlap(extents) {
		v += 0.2
	}
	return v
}

func inodeConsistency(m model.XFSMetadata, extents []model.Extent, size uint64) float64 {
	var v float64
	if m.LinkCount > 0 {
		// A deleted inode's recorded link count before deletion is non-zero
		// by construction of the candidate; this checks the value survived
		// the read intact.
		v += 0.4
	}

	n := len(extents)
	formatMatches := false
	switch m.ExtentFormat {
	case "local":
		formatMatches = true // counted as matching; the inline data size is not checked
	case "extents":
		formatMatches = n <= 10
	case "btree":
		formatMatches = n > 10
	}
	if formatMatches {
		v += 0.4
	}

	if n > 0 {
		avg := size / uint64(n) // bytes: the engine sets Size to the extents' total byte length
		const fourKiB = 4096
		const fourHundredKiB = 400 * 1024
		if avg >= fourKiB && avg <= fourHundredKiB {
			v += 0.2
		}
	}
	return v
}
