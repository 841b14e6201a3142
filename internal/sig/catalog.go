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

// Package sig classifies payload bytes into a MIME-like kind and, where the
// format carries an end marker or length prefix, bounds the carved size of a
// file whose recorded metadata is missing or untrusted.
package sig

import "github.com/mimirforensics/recoverfs/pkg/table"

// Signature describes one recognized file family.
type Signature struct {
	Kind      string // human-readable family, e.g. "JPEG"
	MIME      string
	Extension string
	Prefix    []byte
	// Estimate bounds the plausible length of a payload beginning with this
	// signature. It may return ok=false when no estimator is known for the
	// family or the payload is too short to decide.
	Estimate func(payload []byte) (size uint64, ok bool)
}

// Catalog is a read-only, concurrency-safe lookup from leading payload bytes
// to a Signature, built once at startup.
type Catalog struct {
	table *table.PrefixTable[Signature]
	all   []Signature
}

// NewCatalog builds the default catalog covering the families named in the
// specification: image, document, archive, audio/video and executable
// formats.
func NewCatalog() *Catalog {
	sigs := defaultSignatures()
	t := table.New[Signature]()
	for _, s := range sigs {
		t.Insert(s.Prefix, s)
	}
	return &Catalog{table: t, all: sigs}
}

// Match returns the first signature whose prefix matches the start of
// payload, preferring the longest matching prefix.
func (c *Catalog) Match(payload []byte) (Signature, bool) {
	var best Signature
	found := false
	c.table.Walk(payload, func(s Signature) bool {
		if !found || len(s.Prefix) > len(best.Prefix) {
			best, found = s, true
		}
		return false
	})
	return best, found
}

// EstimateSize asks the matched signature (if any) for an upper bound on the
// carved file's length.
func (c *Catalog) EstimateSize(payload []byte) (uint64, bool) {
	s, ok := c.Match(payload)
	if !ok || s.Estimate == nil {
		return 0, false
	}
	return s.Estimate(payload)
}

// All returns every registered signature, for diagnostics and tests.
func (c *Catalog) All() []Signature {
	return c.all
}
