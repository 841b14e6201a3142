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
package model

// Extent is a half-open block/cluster range [Start, Start+Count) expressed in
// the owning filesystem's native allocation unit (an XFS/Btrfs block or an
// exFAT cluster), not in bytes.
type Extent struct {
	Start     uint64 `json:"start"`
	Count     uint64 `json:"count"`
	Allocated bool   `json:"allocated"`
}

// End returns the exclusive end of the extent.
func (e Extent) End() uint64 {
	return e.Start + e.Count
}

// Overlaps reports whether e and o share any unit.
func (e Extent) Overlaps(o Extent) bool {
	return e.Start < o.End() && o.Start < e.End()
}

// ExtentsInBounds reports whether every extent lies within [0, limit) and has
// a non-zero count, per the universal invariant in the spec.
func ExtentsInBounds(extents []Extent, limit uint64) bool {
	for _, e := range extents {
		if e.Count == 0 || e.Start >= limit || e.End() > limit {
			return false
		}
	}
	return true
}

// ExtentsOverlap reports whether any two extents in the (already
// logical-offset-ordered) slice overlap.
func ExtentsOverlap(extents []Extent) bool {
	for i := 1; i < len(extents); i++ {
		if extents[i-1].Overlaps(extents[i]) {
			return true
		}
	}
	return false
}

// TotalUnits sums the unit count of every extent.
func TotalUnits(extents []Extent) uint64 {
	var total uint64
	for _, e := range extents {
		total += e.Count
	}
	return total
}
