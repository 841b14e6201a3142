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

// Package exfat recovers deleted files from an exFAT image: it parses the
// boot sector and FAT, enumerates deleted directory entry sets, discovers
// orphan cluster chains unreferenced by any live entry, and decodes UTF-16
// names.
package exfat

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"

	"github.com/mimirforensics/recoverfs/internal/blockio"
)

var fsName = []byte("EXFAT   ")

// BootSector is the subset of the exFAT boot sector this engine decodes via
// github.com/go-restruct/restruct, which lays out fields in declaration
// order according to each field's Go type and the byte order passed to
// Unpack, so the on-disk layout is declared once instead of hand-indexed at
// every call site.
type BootSector struct {
	JumpBoot             [3]byte
	FileSystemName       [8]byte
	MustBeZero           [53]byte
	PartitionOffset      uint64
	VolumeLength         uint64
	FatOffset            uint32
	FatLength            uint32
	ClusterHeapOffset    uint32
	ClusterCount         uint32
	RootDirCluster       uint32
	VolumeSerialNumber   uint32
	FileSystemRevision   uint16
	VolumeFlags          uint16
	BytesPerSectorExp    uint8
	SectorsPerClusterExp uint8
	NumberOfFats         uint8
}

const bootSectorReadLen = 111

// ReadBootSector validates the filesystem-name field and decodes boot
// sector geometry.
func ReadBootSector(img blockio.Image) (*BootSector, error) {
	buf, err := img.ReadAt(0, bootSectorReadLen)
	if err != nil {
		return nil, fmt.Errorf("exfat: read boot sector: %w", err)
	}
	if string(buf[3:11]) != string(fsName) {
		return nil, fmt.Errorf("exfat: bad filesystem name %q", buf[3:11])
	}

	var bs BootSector
	if err := restruct.Unpack(buf, binary.LittleEndian, &bs); err != nil {
		return nil, fmt.Errorf("exfat: unpack boot sector: %w", err)
	}
	if bs.BytesPerSectorExp == 0 || bs.SectorsPerClusterExp == 0 {
		return nil, fmt.Errorf("exfat: zero sector/cluster shift")
	}
	return &bs, nil
}

// BytesPerSector returns 1 << BytesPerSectorExp.
func (bs *BootSector) BytesPerSector() uint32 {
	return 1 << bs.BytesPerSectorExp
}

// BytesPerCluster returns bytes-per-sector times sectors-per-cluster.
func (bs *BootSector) BytesPerCluster() uint32 {
	return bs.BytesPerSector() << bs.SectorsPerClusterExp
}

// ClusterHeapBytes returns the byte offset of the cluster heap.
func (bs *BootSector) ClusterHeapBytes() uint64 {
	return uint64(bs.ClusterHeapOffset) * uint64(bs.BytesPerSector())
}

// ClusterOffset returns the byte offset of the given cluster (clusters are
// numbered from 2).
func (bs *BootSector) ClusterOffset(cluster uint32) uint64 {
	return bs.ClusterHeapBytes() + uint64(cluster-2)*uint64(bs.BytesPerCluster())
}
