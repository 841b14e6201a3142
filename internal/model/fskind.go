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

// Package model holds the data entities shared by every recovery engine:
// sessions, candidates, extents and the generic/filesystem-specific metadata
// attached to them. None of the types here know how to parse a filesystem;
// they are the nouns the engines, the scorer and the writer all agree on.
package model

// FSKind identifies the on-disk filesystem format a session was produced for.
type FSKind int

const (
	FSUnknown FSKind = iota
	FSXFS
	FSBtrfs
	FSExFAT
)

func (k FSKind) String() string {
	switch k {
	case FSXFS:
		return "xfs"
	case FSBtrfs:
		return "btrfs"
	case FSExFAT:
		return "exfat"
	default:
		return "unknown"
	}
}

// ParseFSKind parses the lowercase names FSKind.String() produces, the
// inverse used by CLI flags and persisted sessions reconstructed by hand.
func ParseFSKind(s string) FSKind {
	switch s {
	case "xfs":
		return FSXFS
	case "btrfs":
		return FSBtrfs
	case "exfat":
		return FSExFAT
	default:
		return FSUnknown
	}
}
