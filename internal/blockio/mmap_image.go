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
package blockio

import (
	"fmt"

	"github.com/mimirforensics/recoverfs/internal/mmap"
)

// MmapImage serves reads directly out of a memory-mapped region of the
// image file, avoiding a read syscall per access at the cost of requiring
// the whole image to fit the process's address space.
type MmapImage struct {
	m *mmap.MmapFile
}

// OpenMmap maps path read-only in its entirety.
func OpenMmap(path string) (*MmapImage, error) {
	m, err := mmap.NewMmapFile(path)
	if err != nil {
		return nil, fmt.Errorf("blockio: mmap %q: %w", path, err)
	}
	return &MmapImage{m: m}, nil
}

func (img *MmapImage) ReadAt(offset int64, length int) ([]byte, error) {
	size := int64(img.m.FileSize)
	if offset < 0 || length < 0 || offset+int64(length) > size {
		return nil, &ErrShortRead{Offset: offset, Wanted: length, Got: 0, ImageLen: size}
	}
	out := make([]byte, length)
	copy(out, img.m.Data[offset:offset+int64(length)])
	return out, nil
}

func (img *MmapImage) ReadBlock(blockIndex uint64, blockSize uint32) ([]byte, error) {
	offset := int64(blockIndex) * int64(blockSize)
	return img.ReadAt(offset, int(blockSize))
}

func (img *MmapImage) Size() int64 {
	return int64(img.m.FileSize)
}

func (img *MmapImage) Close() error {
	return img.m.Close()
}
