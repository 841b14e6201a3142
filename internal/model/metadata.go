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

import "time"

// GenericMetadata is the subset of file metadata every engine can recover
// regardless of filesystem, used directly by two of the six scoring factors
// (metadata completeness and signature match).
type GenericMetadata struct {
	ModTime    time.Time         `json:"mod_time,omitempty"`
	ChangeTime time.Time         `json:"change_time,omitempty"`
	AccessTime time.Time         `json:"access_time,omitempty"`
	DeleteTime time.Time         `json:"delete_time,omitempty"`
	Owner      uint32            `json:"owner"`
	Group      uint32            `json:"group"`
	Mode       uint32            `json:"mode"`
	Attributes map[string]string `json:"attributes,omitempty"`
	MIMEKind   string            `json:"mime_kind,omitempty"`
	Extension  string            `json:"extension,omitempty"`
}

// FSMetadata is implemented by the three filesystem-specific metadata
// structs. The unexported method keeps it a closed set: only this package
// decides what counts as filesystem metadata.
type FSMetadata interface {
	isFSMetadata()
	FSKind() FSKind
}

// XFSMetadata carries the on-disk identifiers an XFS candidate was recovered
// from: which allocation group and inode it came from, and the extent format
// the inode fork used.
type XFSMetadata struct {
	AllocationGroup uint32 `json:"allocation_group"`
	InodeNumber     uint64 `json:"inode_number"`
	Generation      uint32 `json:"generation"`
	ExtentFormat    string `json:"extent_format"` // "local", "extents", "btree"
	ForkOffset      uint16 `json:"fork_offset,omitempty"`
	LinkCount       uint32 `json:"link_count"`
	ExtentCount     uint32 `json:"extent_count"`
	ExtentAligned   bool   `json:"extent_aligned"` // every extent starts on a stripe-unit boundary
}

func (XFSMetadata) isFSMetadata()  {}
func (XFSMetadata) FSKind() FSKind { return FSXFS }

// BtrfsMetadata carries the tree coordinates a Btrfs candidate was found at.
type BtrfsMetadata struct {
	SubvolumeID    uint64   `json:"subvolume_id"`
	InodeNumber    uint64   `json:"inode_number"`
	Generation     uint64   `json:"generation"`
	TransID        uint64   `json:"trans_id"`
	Orphaned       bool     `json:"orphaned"`
	InlineExtent   bool     `json:"inline_extent"`
	Compression    uint8    `json:"compression"`
	Refcounts      []uint32 `json:"refcounts"` // one entry per extent, in extent order
	TreeLevel      uint8    `json:"tree_level"`
	InSnapshot     bool     `json:"in_snapshot"`
	CowExtentCount int      `json:"cow_extent_count"`
	ChecksumValid  bool     `json:"checksum_valid"`
}

func (BtrfsMetadata) isFSMetadata()  {}
func (BtrfsMetadata) FSKind() FSKind { return FSBtrfs }

// ExfatMetadata carries the directory-entry-set coordinates an exFAT
// candidate was reconstructed from.
type ExfatMetadata struct {
	FirstCluster     uint32 `json:"first_cluster"`
	ClusterChainOK   bool   `json:"cluster_chain_ok"`
	FatChain         bool   `json:"fat_chain"` // the exFAT engine sets true for every candidate; NoFatChain sets are not distinguished
	EntrySetOffset   uint64 `json:"entry_set_offset"`
	SecondaryCount   uint8  `json:"secondary_count"`
	ChecksumValid    bool   `json:"checksum_valid"`
	NameHash         uint16 `json:"name_hash"`
	HitBadCluster    bool   `json:"hit_bad_cluster"`
	ExpectedClusters uint32 `json:"expected_clusters"`
	UTF16Valid       bool   `json:"utf16_valid"`
	Attributes       uint16 `json:"attributes"`
}

func (ExfatMetadata) isFSMetadata()  {}
func (ExfatMetadata) FSKind() FSKind { return FSExFAT }
