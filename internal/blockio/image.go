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

// Package blockio offers positioned, read-only access to a disk image,
// independent of whatever on-disk format it holds. No engine reads a file
// descriptor directly; every engine reads through an Image.
package blockio

import (
	"fmt"
	"io"
)

// Image is a read-only, positioned byte source of known length. It carries
// no notion of sector size; callers pass the granularity that matters to
// them to ReadBlock.
type Image interface {
	io.Closer

	// ReadAt reads exactly length bytes starting at offset, or returns an
	// error naming the short read. It never silently truncates.
	ReadAt(offset int64, length int) ([]byte, error)

	// ReadBlock reads the blockSize bytes at blockIndex*blockSize.
	ReadBlock(blockIndex uint64, blockSize uint32) ([]byte, error)

	// Size returns the total byte length of the image.
	Size() int64
}

// ErrShortRead is wrapped into the error returned by ReadAt/ReadBlock when
// fewer bytes are available than requested.
type ErrShortRead struct {
	Offset   int64
	Wanted   int
	Got      int
	ImageLen int64
}

func (e *ErrShortRead) Error() string {
	return fmt.Sprintf("short read at offset %d: wanted %d bytes, got %d (image size %d)",
		e.Offset, e.Wanted, e.Got, e.ImageLen)
}
