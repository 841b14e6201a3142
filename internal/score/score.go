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

// Package score combines six generic factors and a filesystem-specific
// sub-score into a single confidence value in [0, 1] for every candidate a
// recovery engine produces.
package score

import (
	"math"
	"time"

	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/mimirforensics/recoverfs/internal/sig"
)

const (
	weightRecency    = 0.25
	weightMetadata   = 0.15
	weightExtent     = 0.20
	weightSignature  = 0.15
	weightSize       = 0.10
	weightFSSpecific = 0.15
)

// Scorer holds the state shared across every candidate it scores: a
// signature catalog for the payload-match factor and the "now" it measures
// recency against.
type Scorer struct {
	Catalog *sig.Catalog
	Now     time.Time
}

// New builds a scorer anchored at the current time.
func New(catalog *sig.Catalog) *Scorer {
	return &Scorer{Catalog: catalog, Now: time.Now()}
}

// Score computes and writes the confidence and is-recoverable fields of
// every candidate in the session, reading the payload bytes a reader
// callback supplies for the signature-match factor (nil payload is treated
// as "no signature available").
func (s *Scorer) Score(session *model.RecoverySession, payloadOf func(model.DeletedFile) []byte, fsSubScore func(model.DeletedFile) float64) {
	for i := range session.Candidates {
		c := &session.Candidates[i]
		var payload []byte
		if payloadOf != nil {
			payload = payloadOf(*c)
		}
		var fsScore float64
		if fsSubScore != nil {
			fsScore = fsSubScore(*c)
		}
		c.Confidence = s.confidence(c, payload, fsScore, session.BlockSize)
		c.Recoverable = c.Confidence >= session.Threshold
	}
}

func (s *Scorer) confidence(c *model.DeletedFile, payload []byte, fsScore float64, blockSize uint32) float64 {
	v := weightRecency*timeRecency(c.DeletedAt, s.Now) +
		weightMetadata*metadataCompleteness(c) +
		weightExtent*extentIntegrity(c.Extents) +
		weightSignature*signatureMatch(s.Catalog, c, payload) +
		weightSize*sizeConsistency(c, blockSize) +
		weightFSSpecific*clamp01(fsScore)
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// timeRecency applies an exponential decay: 1.0 today, ~0.5 at 30 days,
// ~0 beyond 365 days. Unknown deletion time contributes the neutral 0.5.
func timeRecency(deletedAt time.Time, now time.Time) float64 {
	if deletedAt.IsZero() {
		return 0.5
	}
	days := now.Sub(deletedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	const halfLifeDays = 30.0
	v := math.Exp(-math.Ln2 * days / halfLifeDays)
	if days > 365 {
		v = 0
	}
	return v
}

func metadataCompleteness(c *model.DeletedFile) float64 {
	total := 7.0
	have := 0.0
	if !c.Meta.ModTime.IsZero() {
		have++
	}
	if !c.Meta.ChangeTime.IsZero() {
		have++
	}
	if !c.Meta.AccessTime.IsZero() {
		have++
	}
	if c.Meta.Owner != 0 {
		have++
	}
	if c.Meta.Group != 0 {
		have++
	}
	if c.Meta.Mode != 0 {
		have++
	}
	if c.OriginalPath != "" {
		have++
	}
	return have / total
}

func extentIntegrity(extents []model.Extent) float64 {
	if len(extents) == 0 {
		return 0
	}
	bad := 0
	for i, e := range extents {
		if e.Count == 0 {
			bad++
			continue
		}
		if i > 0 && extents[i-1].Overlaps(e) {
			bad++
		}
	}
	return 1 - float64(bad)/float64(len(extents))
}

func signatureMatch(catalog *sig.Catalog, c *model.DeletedFile, payload []byte) float64 {
	if catalog != nil && len(payload) > 0 {
		if _, ok := catalog.Match(payload); ok {
			return 1.0
		}
	}
	if c.Meta.MIMEKind != "" {
		return 0.5
	}
	return 0.0
}

func sizeConsistency(c *model.DeletedFile, blockSize uint32) float64 {
	if c.Size == 0 {
		return 1.0
	}
	if blockSize == 0 {
		blockSize = 1
	}
	var extBytes uint64
	for _, e := range c.Extents {
		extBytes += e.Count * uint64(blockSize)
	}
	ratio := math.Abs(float64(extBytes)-float64(c.Size)) / float64(c.Size)
	if ratio <= 0.10 {
		return 1.0
	}
	if ratio >= 1.0 {
		return 0.0
	}
	return 1.0 - (ratio-0.10)/0.90
}
