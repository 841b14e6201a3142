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
	"fmt"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/logger"
	"github.com/mimirforensics/recoverfs/internal/model"
)

// agCandidate pairs a decoded inode with the AG coordinates it was found at,
// before directory reconstruction and scoring happen.
type agCandidate struct {
	AGIndex     uint32
	AGLocalIno  uint64
	InodeNumber uint64
	Inode       *Inode
	Extents     []model.Extent
	DroppedExts int
}

// scanAG walks one allocation group's inode table, applying the spec's
// deletion heuristic to every inode slot and decoding its data-fork extents.
// An unreadable AG is skipped with a warning, never aborting the whole scan.
func scanAG(img blockio.Image, sb *Superblock, agIndex uint32, log *logger.Logger) []agCandidate {
	agStartBlock := uint64(agIndex) * uint64(sb.AGBlocks)

	if _, err := ReadAGI(img, sb.BlockSize, agStartBlock); err != nil {
		log.Warnf("AG %d: AGI header unreadable, skipping: %v", agIndex, err)
		return nil
	}

	inodesPerBlock := uint64(sb.InodesPerBlk)
	if inodesPerBlock == 0 {
		log.Warnf("AG %d: inodes-per-block is zero, skipping", agIndex)
		return nil
	}
	tableStartBlock := agStartBlock + agiHeaderBlocks
	tableBlocks := uint64(sb.AGBlocks) - agiHeaderBlocks
	totalInodes := tableBlocks * inodesPerBlock

	var out []agCandidate
	for localIno := uint64(0); localIno < totalInodes; localIno++ {
		block := tableStartBlock + localIno/inodesPerBlock
		offsetInBlock := (localIno % inodesPerBlock) * uint64(sb.InodeSize)

		buf, err := img.ReadBlock(block, sb.BlockSize)
		if err != nil {
			continue
		}
		if offsetInBlock+uint64(sb.InodeSize) > uint64(len(buf)) {
			continue
		}
		raw := buf[offsetInBlock : offsetInBlock+uint64(sb.InodeSize)]
		in, err := ParseInode(raw)
		if err != nil {
			continue // not a valid inode slot; most of the table is free space
		}
		if !in.IsDeletionCandidate() {
			continue
		}

		extents, dropped, err := decodeInodeExtents(img, sb, in)
		if err != nil {
			log.Warnf("AG %d inode %d: %v", agIndex, localIno, err)
			continue
		}

		globalIno := agGlobalInode(sb, agIndex, localIno)
		out = append(out, agCandidate{
			AGIndex:     agIndex,
			AGLocalIno:  localIno,
			InodeNumber: globalIno,
			Inode:       in,
			Extents:     extents,
			DroppedExts: dropped,
		})
	}
	return out
}

// agGlobalInode packs an AG index and an AG-local inode offset into a
// single inode number the way XFS v4/v5 both do: agno in the high bits,
// the AG-local offset in the low bits.
func agGlobalInode(sb *Superblock, agIndex uint32, localIno uint64) uint64 {
	shift := blockLog2(sb.AGBlocks) + blockLog2(uint32(sb.InodesPerBlk))
	return uint64(agIndex)<<shift | localIno
}

func blockLog2(v uint32) uint {
	var n uint
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}

func decodeInodeExtents(img blockio.Image, sb *Superblock, in *Inode) ([]model.Extent, int, error) {
	var extents []model.Extent
	switch in.ExtentFormat() {
	case extentFormatLocal:
		extents = DecodeLocalExtents(uint64(len(in.DataFork)))
	case extentFormatExtent:
		var err error
		extents, err = DecodeExtentList(in.DataFork, in.NExtents)
		if err != nil {
			return nil, 0, fmt.Errorf("extent list: %w", err)
		}
	case extentFormatBtree:
		if len(in.DataFork) < 8 {
			return nil, 0, fmt.Errorf("btree root fork too short")
		}
		rootBlock := beUint64(in.DataFork)
		var err error
		extents, err = DecodeBtreeExtents(img, sb.BlockSize, rootBlock)
		if err != nil {
			return nil, 0, fmt.Errorf("btree extents: %w", err)
		}
	default:
		return nil, 0, fmt.Errorf("unsupported data fork format %d", in.Format)
	}

	kept, dropped := sanitizeExtents(extents, sb.DataBlocks)
	return kept, dropped, nil
}

func beUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
