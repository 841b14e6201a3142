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
)

const (
	agiMagic       = 0x58414749 // "XAGI"
	agiBlock       = 2          // AG-relative block holding the AGI header
	agiHeaderBytes = 16

	// agiHeaderBlocks is the fixed run of header blocks (superblock copy,
	// AGF, AGI, AGFL) reserved at the start of every allocation group before
	// its inode table begins.
	agiHeaderBlocks = 4
)

// AGIHeader is the subset of the per-AG free-inode B+tree header this
// engine validates before trusting an AG's inode table.
type AGIHeader struct {
	Magic     uint32
	Level     uint32
	Count     uint32
	Root      uint32
}

// ReadAGI validates and decodes the AGI header for the AG starting at
// agStartBlock.
func ReadAGI(img blockio.Image, blockSize uint32, agStartBlock uint64) (*AGIHeader, error) {
	buf, err := img.ReadBlock(agStartBlock+agiBlock, blockSize)
	if err != nil {
		return nil, fmt.Errorf("xfs: read AGI at block %d: %w", agStartBlock+agiBlock, err)
	}
	if len(buf) < agiHeaderBytes {
		return nil, fmt.Errorf("xfs: AGI block truncated")
	}
	hdr := &AGIHeader{
		Magic: binary.BigEndian.Uint32(buf[0:4]),
		Level: binary.BigEndian.Uint32(buf[4:8]),
		Count: binary.BigEndian.Uint32(buf[8:12]),
		Root:  binary.BigEndian.Uint32(buf[12:16]),
	}
	if hdr.Magic != agiMagic {
		return nil, fmt.Errorf("xfs: bad AGI magic %#x", hdr.Magic)
	}
	return hdr, nil
}
