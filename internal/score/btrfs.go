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

// BtrfsContext carries the filesystem-wide generation counter the Btrfs
// sub-factor compares a candidate's generation and trans_id against.
type BtrfsContext struct {
	CurrentGeneration uint64
}

// BtrfsSubScore implements the spec's 0.4*generation + 0.4*checksum + 0.2*cow
// weighting.
func BtrfsSubScore(c model.DeletedFile, ctx BtrfsContext) float64 {
	meta, ok := c.FSMeta.(model.BtrfsMetadata)
	if !ok {
		return 0
	}
	return 0.4*btrfsGeneration(meta, ctx) + 0.4*btrfsChecksum(meta) + 0.2*btrfsCow(meta)
}

func btrfsGeneration(m model.BtrfsMetadata, ctx BtrfsContext) float64 {
	var v float64
	if m.Generation > 0 && (ctx.CurrentGeneration == 0 || m.Generation <= ctx.CurrentGeneration) {
		v += 0.5
	}
	if m.Generation > 0 {
		v += 0.33
	}
	if m.TransID > 0 && (ctx.CurrentGeneration == 0 || m.TransID <= ctx.CurrentGeneration) {
		v += 0.17
	}
	return v
}

func btrfsChecksum(m model.BtrfsMetadata) float64 {
	if m.ChecksumValid {
		return 1.0
	}
	return 0.0
}

func btrfsCow(m model.BtrfsMetadata) float64 {
	var v float64
	if len(m.Refcounts) > 0 {
		allInRange := true
		for _, r := range m.Refcounts {
			if r == 0 || r >= 1000 {
				allInRange = false
				break
			}
		}
		if allInRange {
			v += 0.67
		}
	}
	if m.InSnapshot {
		v += 0.33
	}
	return v
}
