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

import (
	"encoding/json"
	"fmt"
	"time"
)

// DeletedFile is one recoverable (or partially recoverable) candidate found
// by an engine. ID is stable across re-scans of the same image; NativeID is
// the engine's own on-disk key rendered as a string (an inode number, a
// subvolume/inode pair, a directory-entry-set offset) so operators can
// cross-reference a candidate against raw filesystem tools.
type DeletedFile struct {
	ID           string     `json:"id"`
	NativeID     string     `json:"native_id"`
	OriginalPath string     `json:"original_path,omitempty"`
	Size         uint64     `json:"size"`
	DeletedAt    time.Time  `json:"deleted_at,omitempty"`
	Confidence   float64    `json:"confidence"`
	Kind         FSKind     `json:"kind"`
	Recoverable  bool       `json:"recoverable"`
	Extents      []Extent   `json:"extents"`
	Meta         GenericMetadata `json:"metadata"`
	FSMeta       FSMetadata `json:"fs_metadata"`
}

// AllocatedUnits returns the sum of units across extents flagged allocated.
func (d *DeletedFile) AllocatedUnits() uint64 {
	var total uint64
	for _, e := range d.Extents {
		if e.Allocated {
			total += e.Count
		}
	}
	return total
}

// HasExtents reports whether the candidate has at least one extent, a
// precondition for recovery (spec: zero-extent candidates are listed but not
// recoverable).
func (d *DeletedFile) HasExtents() bool {
	return len(d.Extents) > 0
}

// deletedFileAlias has the same fields as DeletedFile but an untyped
// FSMeta, breaking the infinite recursion a naive (Un)MarshalJSON override
// on DeletedFile itself would cause.
type deletedFileAlias struct {
	ID           string          `json:"id"`
	NativeID     string          `json:"native_id"`
	OriginalPath string          `json:"original_path,omitempty"`
	Size         uint64          `json:"size"`
	DeletedAt    time.Time       `json:"deleted_at,omitempty"`
	Confidence   float64         `json:"confidence"`
	Kind         FSKind          `json:"kind"`
	Recoverable  bool            `json:"recoverable"`
	Extents      []Extent        `json:"extents"`
	Meta         GenericMetadata `json:"metadata"`
	FSMeta       json.RawMessage `json:"fs_metadata"`
}

// UnmarshalJSON restores the FSMetadata tagged-union variant by dispatching
// on the candidate's own Kind field, since a bare interface field gives the
// decoder nothing to pick a concrete type with.
func (d *DeletedFile) UnmarshalJSON(data []byte) error {
	var a deletedFileAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	d.ID = a.ID
	d.NativeID = a.NativeID
	d.OriginalPath = a.OriginalPath
	d.Size = a.Size
	d.DeletedAt = a.DeletedAt
	d.Confidence = a.Confidence
	d.Kind = a.Kind
	d.Recoverable = a.Recoverable
	d.Extents = a.Extents
	d.Meta = a.Meta

	if len(a.FSMeta) == 0 || string(a.FSMeta) == "null" {
		return nil
	}
	var meta FSMetadata
	switch a.Kind {
	case FSXFS:
		var m XFSMetadata
		if err := json.Unmarshal(a.FSMeta, &m); err != nil {
			return err
		}
		meta = m
	case FSBtrfs:
		var m BtrfsMetadata
		if err := json.Unmarshal(a.FSMeta, &m); err != nil {
			return err
		}
		meta = m
	case FSExFAT:
		var m ExfatMetadata
		if err := json.Unmarshal(a.FSMeta, &m); err != nil {
			return err
		}
		meta = m
	default:
		return fmt.Errorf("model: unknown filesystem kind %v for candidate %s", a.Kind, a.ID)
	}
	d.FSMeta = meta
	return nil
}
