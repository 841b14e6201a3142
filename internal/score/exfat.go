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

// ExfatContext carries the cluster-count bound the exFAT chain sub-factor
// checks a candidate's chain length against.
type ExfatContext struct {
	ClusterCount uint32
}

// ExfatSubScore implements the spec's 0.5*chain + 0.3*entry + 0.2*pattern
// weighting.
func ExfatSubScore(c model.DeletedFile, ctx ExfatContext) float64 {
	meta, ok := c.FSMeta.(model.ExfatMetadata)
	if !ok {
		return 0
	}
	return 0.5*exfatChain(meta, len(c.Extents), ctx) + 0.3*exfatEntry(meta) + 0.2*exfatPattern(meta, c.Extents)
}

func exfatChain(m model.ExfatMetadata, extentCount int, ctx ExfatContext) float64 {
	var v float64
	if m.FirstCluster >= 2 {
		v += 0.29
	}
	if ctx.ClusterCount == 0 || uint32(extentCount) <= ctx.ClusterCount {
		v += 0.43
	}
	if m.ClusterChainOK {
		v += 0.29
	}
	return v
}

func exfatEntry(m model.ExfatMetadata) float64 {
	var v float64
	if m.ChecksumValid {
		v += 0.6
	}
	// SecondaryCount is the on-disk secondary-entry count (2..18 for the
	// sets ParseEntrySets accepts, 0 for orphan chains); the
	// [2,18] range applies to the total entry-set count, primary included.
	total := uint16(m.SecondaryCount) + 1
	if total >= 2 && total <= 18 {
		v += 0.2
	}
	if m.UTF16Valid {
		v += 0.2
	}
	return v
}

func exfatPattern(m model.ExfatMetadata, extents []model.Extent) float64 {
	var v float64
	if !m.HitBadCluster {
		v += 0.67
	}
	actual := uint32(model.TotalUnits(extents))
	if m.ExpectedClusters > 0 {
		diff := float64(actual) - float64(m.ExpectedClusters)
		if diff < 0 {
			diff = -diff
		}
		if diff/float64(m.ExpectedClusters) <= 0.10 {
			v += 0.33
		}
	} else if actual == 0 {
		v += 0.33
	}
	return v
}
