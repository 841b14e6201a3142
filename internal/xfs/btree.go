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
	"encoding/binary"
	"fmt"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/model"
)

const (
	bmbtMagic      = 0x424D4150 // "BMAP"
	btreeNodeDepth = 100        // matches the spec's shared recursion limit

	// bmbtHeaderSize is the on-disk long-form btree block header
	// (xfs_btree_lblock): magic(4) + level(2) + numrecs(2) + leftsib(8) +
	// rightsib(8). Child pointers or leaf extent records follow immediately.
	bmbtHeaderSize = 24
)

// DecodeBtreeExtents walks a data-fork B+tree rooted at the block number
// stored in the fork, visiting every leaf depth-first and concatenating
// their extents in logical-offset order. A visited set guards against
// cycles in a corrupted image.
func DecodeBtreeExtents(img blockio.Image, blockSize uint32, rootBlock uint64) ([]model.Extent, error) {
	visited := make(map[uint64]bool)
	var out []model.Extent
	if err := walkBtreeNode(img, blockSize, rootBlock, 0, visited, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walkBtreeNode(img blockio.Image, blockSize uint32, block uint64, depth int, visited map[uint64]bool, out *[]model.Extent) error {
	if depth > btreeNodeDepth {
		return fmt.Errorf("xfs: btree depth limit exceeded at block %d", block)
	}
	if visited[block] {
		return nil
	}
	visited[block] = true

	buf, err := img.ReadBlock(block, blockSize)
	if err != nil {
		return fmt.Errorf("xfs: read btree block %d: %w", block, err)
	}
	if len(buf) < bmbtHeaderSize {
		return fmt.Errorf("xfs: btree block %d truncated", block)
	}
	magic := binary.BigEndian.Uint32(buf[0:4])
	if magic != bmbtMagic {
		return fmt.Errorf("xfs: bad btree node magic %#x at block %d", magic, block)
	}
	level := binary.BigEndian.Uint16(buf[4:6])
	numRecs := binary.BigEndian.Uint16(buf[6:8])
	body := buf[bmbtHeaderSize:]

	if level == 0 {
		// Leaf: body holds numRecs packed extent records.
		for i := 0; i < int(numRecs); i++ {
			off := i * rawExtentSize
			if off+rawExtentSize > len(body) {
				return fmt.Errorf("xfs: leaf block %d truncated at record %d", block, i)
			}
			*out = append(*out, decodeExtent(body[off:off+rawExtentSize]))
		}
		return nil
	}

	// Internal node: body holds numRecs 8-byte child block pointers.
	for i := 0; i < int(numRecs); i++ {
		off := i * 8
		if off+8 > len(body) {
			return fmt.Errorf("xfs: internal block %d truncated at pointer %d", block, i)
		}
		child := binary.BigEndian.Uint64(body[off : off+8])
		if err := walkBtreeNode(img, blockSize, child, depth+1, visited, out); err != nil {
			return err
		}
	}
	return nil
}
