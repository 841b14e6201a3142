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

// Package xfs recovers deleted files from an XFS filesystem image: it parses
// the superblock and allocation groups, walks the per-AG inode table for
// unlinked-but-intact inodes, decodes their data-fork extents in whichever
// of the three on-disk formats they use, and reconstructs original paths
// from a directory pre-pass.
package xfs

import (
	"encoding/binary"
	"fmt"

	"github.com/mimirforensics/recoverfs/internal/blockio"
)

const (
	sbMagic     uint32 = 0x58465342 // "XFSB"
	minBlockSize       = 512
	maxBlockSize       = 65536
	sbReadLen          = 264 // bytes of the superblock this engine decodes
)

// Superblock is the subset of the XFS primary superblock this engine needs.
type Superblock struct {
	Magic        uint32
	BlockSize    uint32
	DataBlocks   uint64
	AGCount      uint32
	AGBlocks     uint32
	InodeSize    uint16
	InodesPerBlk uint16
	RootIno      uint64
	SUnit        uint32 // sb_unit: stripe unit in blocks, 0 if unstriped
	SWidth       uint32 // sb_width: stripe width in blocks
}

// InodesPerAG returns how many inode slots an allocation group holds.
func (sb *Superblock) InodesPerAG() uint64 {
	return uint64(sb.AGBlocks) * uint64(sb.InodesPerBlk)
}

// ReadSuperblock decodes the big-endian primary superblock at byte 0.
func ReadSuperblock(img blockio.Image) (*Superblock, error) {
	buf, err := img.ReadAt(0, sbReadLen)
	if err != nil {
		return nil, fmt.Errorf("xfs: read superblock: %w", err)
	}
	sb := &Superblock{
		Magic:        binary.BigEndian.Uint32(buf[0:4]),
		BlockSize:    binary.BigEndian.Uint32(buf[4:8]),
		DataBlocks:   binary.BigEndian.Uint64(buf[8:16]),
		RootIno:      binary.BigEndian.Uint64(buf[56:64]),
		AGBlocks:     binary.BigEndian.Uint32(buf[84:88]),
		AGCount:      binary.BigEndian.Uint32(buf[88:92]),
		InodeSize:    binary.BigEndian.Uint16(buf[104:106]),
		InodesPerBlk: binary.BigEndian.Uint16(buf[106:108]),
		SUnit:        binary.BigEndian.Uint32(buf[184:188]),
		SWidth:       binary.BigEndian.Uint32(buf[188:192]),
	}

	if sb.Magic != sbMagic {
		return nil, fmt.Errorf("xfs: bad superblock magic %#x", sb.Magic)
	}
	if sb.BlockSize < minBlockSize || sb.BlockSize > maxBlockSize {
		return nil, fmt.Errorf("xfs: block size %d out of range", sb.BlockSize)
	}
	if sb.AGCount == 0 {
		return nil, fmt.Errorf("xfs: AG count is zero")
	}
	return sb, nil
}
