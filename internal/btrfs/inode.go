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
package btrfs

import (
	"encoding/binary"
	"fmt"
	"time"
)

// InodeItem is the subset of BTRFS_INODE_ITEM fields this engine reads.
type InodeItem struct {
	Generation uint64
	TransID    uint64
	Size       uint64
	NLink      uint32
	Mode       uint32
	MTime      time.Time
}

const inodeItemReadLen = 96

// DecodeInodeItem decodes an INODE_ITEM payload.
func DecodeInodeItem(data []byte) (*InodeItem, error) {
	if len(data) < inodeItemReadLen {
		return nil, fmt.Errorf("btrfs: inode item too short")
	}
	ii := &InodeItem{
		Generation: binary.LittleEndian.Uint64(data[0:8]),
		TransID:    binary.LittleEndian.Uint64(data[8:16]),
		Size:       binary.LittleEndian.Uint64(data[16:24]),
		NLink:      binary.LittleEndian.Uint32(data[88:92]),
		Mode:       binary.LittleEndian.Uint32(data[92:96]),
	}
	return ii, nil
}
