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
package xfs

import (
	"github.com/mimirforensics/recoverfs/internal/model"
)

// sanitizeExtents drops extents that are out of bounds, zero-length, or
// overlap a previously kept extent, keeps the remainder in the order given
// (the on-disk record order, which is logical-offset order), and reports how
// many were dropped.
func sanitizeExtents(extents []model.Extent, fsBlocks uint64) (kept []model.Extent, dropped int) {
	kept = make([]model.Extent, 0, len(extents))
	for _, e := range extents {
		if e.Count == 0 || e.Start >= fsBlocks || e.End() > fsBlocks {
			dropped++
			continue
		}
		overlaps := false
		for _, k := range kept {
			if k.Overlaps(e) {
				overlaps = true
				break
			}
		}
		if overlaps {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	return kept, dropped
}
