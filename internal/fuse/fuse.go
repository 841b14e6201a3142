//go:build linux
// +build linux

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
package fuse

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/model"
)

// candidateReader presents one candidate's extents as a flat, read-only byte
// stream without materializing it to disk, so a session can be browsed
// before the operator commits to recovering anything.
type candidateReader struct {
	img       blockio.Image
	candidate model.DeletedFile
	blockSize uint32
}

// ReadAt walks the candidate's extents to satisfy a read at a logical file
// offset, the same walk internal/recover/writer.go does when it materializes
// the candidate to disk, minus the forensic gap handling.
func (r *candidateReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || uint64(off) >= r.candidate.Size {
		return 0, fmt.Errorf("fuse: offset %d out of range for %d byte candidate", off, r.candidate.Size)
	}
	want := len(p)
	if uint64(off)+uint64(want) > r.candidate.Size {
		want = int(r.candidate.Size - uint64(off))
	}

	var logical int64
	n := 0
	for _, e := range r.candidate.Extents {
		extLen := int64(e.Count * uint64(r.blockSize))
		extStart := logical
		extEnd := logical + extLen
		logical = extEnd

		if int64(off)+int64(n) >= extEnd || n >= want {
			continue
		}

		readFrom := int64(off) + int64(n) - extStart
		if readFrom < 0 {
			readFrom = 0
		}
		avail := extLen - readFrom
		need := int64(want - n)
		if avail < need {
			need = avail
		}
		if need <= 0 {
			continue
		}

		physOffset := int64(e.Start*uint64(r.blockSize)) + readFrom
		chunk, err := r.img.ReadAt(physOffset, int(need))
		if err != nil {
			return n, err
		}
		n += copy(p[n:], chunk)
	}
	if n < want {
		return n, fmt.Errorf("fuse: short read for candidate %s: got %d of %d bytes", r.candidate.ID, n, want)
	}
	return n, nil
}

// RecoverFS exposes every above-threshold candidate of a session as a flat,
// read-only directory so an operator can preview recovered content with
// ordinary file tools before running `recoverfs recover`.
type RecoverFS struct {
	img       blockio.Image
	blockSize uint32

	mtx     sync.RWMutex
	entries map[string]model.DeletedFile

	mountpoint string
}

// NewRecoverFS names each candidate by its original path's base name when
// known, falling back to its stable candidate ID, de-duplicating collisions
// with a numeric suffix.
func NewRecoverFS(img blockio.Image, session *model.RecoverySession, mountpoint string) *RecoverFS {
	entries := make(map[string]model.DeletedFile, len(session.Candidates))
	seen := make(map[string]int)
	for _, c := range session.Candidates {
		if !c.Recoverable || !c.HasExtents() {
			continue
		}
		base := candidateName(c)
		name := base
		if n := seen[base]; n > 0 {
			name = fmt.Sprintf("%s.%d", base, n)
		}
		seen[base]++
		entries[name] = c
	}
	return &RecoverFS{
		img:        img,
		blockSize:  session.BlockSize,
		entries:    entries,
		mountpoint: mountpoint,
	}
}

func candidateName(c model.DeletedFile) string {
	if c.OriginalPath != "" {
		base := c.OriginalPath
		for i := len(base) - 1; i >= 0; i-- {
			if base[i] == '/' {
				base = base[i+1:]
				break
			}
		}
		if base != "" && base != "/" {
			return base
		}
	}
	return c.ID
}

func (r *RecoverFS) Root() (fs.Node, error) {
	return &Dir{fs: r}, nil
}

// Dir implements both fs.Node and fs.HandleReadDirAller
type Dir struct {
	fs *RecoverFS
}

func (*Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	d.fs.mtx.RLock()
	c, ok := d.fs.entries[name]
	d.fs.mtx.RUnlock()
	if !ok {
		return nil, fuse.ENOENT
	}
	return &File{
		r:         &candidateReader{img: d.fs.img, candidate: c, blockSize: d.fs.blockSize},
		candidate: c,
	}, nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	d.fs.mtx.RLock()
	defer d.fs.mtx.RUnlock()

	i := 0
	dirEntries := make([]fuse.Dirent, len(d.fs.entries))
	for name := range d.fs.entries {
		dirEntries[i] = fuse.Dirent{
			Inode: uint64(i),
			Name:  name,
			Type:  fuse.DT_File,
		}
		i++
	}
	sort.Slice(dirEntries, func(i, j int) bool {
		return dirEntries[i].Name < dirEntries[j].Name
	})
	for i := range dirEntries {
		dirEntries[i].Inode = uint64(i)
	}
	return dirEntries, nil
}

// File implements both fs.Node and fs.HandleReader
type File struct {
	r         *candidateReader
	candidate model.DeletedFile
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = f.candidate.Size
	if !f.candidate.DeletedAt.IsZero() {
		a.Mtime = f.candidate.DeletedAt
	} else {
		a.Mtime = time.Now()
	}
	return nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	size := req.Size
	offset := req.Offset

	if uint64(offset) >= f.candidate.Size {
		resp.Data = []byte{}
		return nil
	}
	if uint64(offset)+uint64(size) > f.candidate.Size {
		size = int(f.candidate.Size - uint64(offset))
	}

	buf := make([]byte, size)
	n, err := f.r.ReadAt(buf, offset)
	if err != nil {
		return err
	}
	resp.Data = buf[:n]
	return nil
}
