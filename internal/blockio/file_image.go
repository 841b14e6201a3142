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
	"os"
	"sync"
)

// FileImage reads an image through ordinary positioned file reads. It is
// the default backend: correct on every platform, at the cost of a syscall
// per read not satisfied by the host page cache.
type FileImage struct {
	mu   sync.Mutex
	f    *os.File
	size int64
}

// OpenFile opens path read-only and determines its size up front. When path
// names a raw block device rather than a regular image file, Stat reports a
// size of zero; the device's real size is then read through an ioctl so a
// recovered XFS/Btrfs/exFAT image can be scanned directly off a device node,
// not just a dd-style flat file.
func OpenFile(path string) (*FileImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("blockio: open %q: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("blockio: stat %q: %w", path, err)
	}

	size := fi.Size()
	if size == 0 && fi.Mode()&os.ModeDevice != 0 {
		size, err = blockDeviceSize(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("blockio: determine device size for %q: %w", path, err)
		}
	}
	return &FileImage{f: f, size: size}, nil
}

func (img *FileImage) ReadAt(offset int64, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+int64(length) > img.size {
		return nil, &ErrShortRead{Offset: offset, Wanted: length, Got: 0, ImageLen: img.size}
	}
	buf := make([]byte, length)
	n, err := img.f.ReadAt(buf, offset)
	if n < length {
		return nil, &ErrShortRead{Offset: offset, Wanted: length, Got: n, ImageLen: img.size}
	}
	if err != nil {
		return nil, fmt.Errorf("blockio: read at %d: %w", offset, err)
	}
	return buf, nil
}

func (img *FileImage) ReadBlock(blockIndex uint64, blockSize uint32) ([]byte, error) {
	offset := int64(blockIndex) * int64(blockSize)
	return img.ReadAt(offset, int(blockSize))
}

func (img *FileImage) Size() int64 {
	return img.size
}

func (img *FileImage) Close() error {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.f.Close()
}
