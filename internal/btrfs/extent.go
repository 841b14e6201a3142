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

	"github.com/mimirforensics/recoverfs/internal/model"
)

const (
	fileExtentInline  uint8 = 0
	fileExtentReg     uint8 = 1
	fileExtentPrealloc uint8 = 2

	fileExtentHeaderSize = 21 // generation(8) ram_bytes(8) compression(1) encryption(1) other_encoding(2) type(1)
)

// FileExtent is a decoded BTRFS_EXTENT_DATA item.
type FileExtent struct {
	Generation  uint64
	Compression uint8
	Encryption  uint8
	Type        uint8

	// Regular/prealloc fields.
	DiskBytenr   uint64
	DiskNumBytes uint64
	Offset       uint64
	NumBytes     uint64

	// Inline payload, when Type == fileExtentInline.
	InlineData []byte
}

// DecodeFileExtent parses one EXTENT_DATA item payload.
func DecodeFileExtent(data []byte) (*FileExtent, error) {
	if len(data) < fileExtentHeaderSize {
		return nil, fmt.Errorf("btrfs: file extent item too short")
	}
	fe := &FileExtent{
		Generation:  binary.LittleEndian.Uint64(data[0:8]),
		Compression: data[16],
		Encryption:  data[17],
		Type:        data[20],
	}
	switch fe.Type {
	case fileExtentInline:
		fe.InlineData = data[fileExtentHeaderSize:]
	case fileExtentReg, fileExtentPrealloc:
		rest := data[fileExtentHeaderSize:]
		if len(rest) < 32 {
			return nil, fmt.Errorf("btrfs: regular file extent item too short")
		}
		fe.DiskBytenr = binary.LittleEndian.Uint64(rest[0:8])
		fe.DiskNumBytes = binary.LittleEndian.Uint64(rest[8:16])
		fe.Offset = binary.LittleEndian.Uint64(rest[16:24])
		fe.NumBytes = binary.LittleEndian.Uint64(rest[24:32])
	default:
		return nil, fmt.Errorf("btrfs: unknown file extent type %d", fe.Type)
	}
	return fe, nil
}

// ToModelExtent maps a regular file extent to the block-unit Extent the
// rest of the core operates on, translating its logical disk_bytenr
// through the chunk map to a physical sector-unit start.
func (fe *FileExtent) ToModelExtent(chunkMap *ChunkMap, sectorSize uint32) (model.Extent, error) {
	physical, err := chunkMap.Translate(fe.DiskBytenr)
	if err != nil {
		return model.Extent{}, err
	}
	return model.Extent{
		Start:     physical / uint64(sectorSize),
		Count:     fe.DiskNumBytes / uint64(sectorSize),
		Allocated: true,
	}, nil
}

// Recoverable reports whether this engine knows how to materialize the
// extent: unknown compression or encryption flags make it non-recoverable
// per the spec, rather than risk a silent, wrong decompression.
func (fe *FileExtent) Recoverable() bool {
	return fe.Compression == 0 && fe.Encryption == 0
}
