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

// Package detect probes a handful of fixed offsets to identify which of the
// three supported on-disk filesystem formats an image holds.
package detect

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/model"
)

// ErrUnknownFormat is returned when none of the known magic numbers match.
var ErrUnknownFormat = errors.New("detect: unrecognized filesystem format")

const (
	xfsMagicOffset   = 0
	btrfsMagicOffset = 0x10000
	exfatNameOffset  = 3
)

var (
	xfsMagic   = []byte("XFSB")
	btrfsMagic = []byte("_BHRfS_M")
	exfatName  = []byte("EXFAT   ")
)

// Detect probes, in order, the XFS superblock magic at offset 0, the Btrfs
// superblock magic at offset 0x10000, and the exFAT filesystem-name field at
// offset 3 of the boot sector, returning the first match.
func Detect(img blockio.Image) (model.FSKind, error) {
	if b, err := img.ReadAt(xfsMagicOffset, len(xfsMagic)); err == nil && bytes.Equal(b, xfsMagic) {
		return model.FSXFS, nil
	}
	if b, err := img.ReadAt(btrfsMagicOffset, len(btrfsMagic)); err == nil && bytes.Equal(b, btrfsMagic) {
		return model.FSBtrfs, nil
	}
	if b, err := img.ReadAt(exfatNameOffset, len(exfatName)); err == nil && bytes.Equal(b, exfatName) {
		return model.FSExFAT, nil
	}
	return model.FSUnknown, fmt.Errorf("%w: no magic matched at offsets 0, 0x%x, %d", ErrUnknownFormat, btrfsMagicOffset, exfatNameOffset)
}
