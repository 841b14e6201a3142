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
	"sort"
	"time"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/logger"
	"github.com/mimirforensics/recoverfs/internal/model"
)

// Scan runs the full XFS recovery pipeline against img: superblock
// validation, a directory pre-pass, a per-AG inode scan, and candidate
// assembly, in the deterministic (ag_index, ag_local_inode) order the spec
// requires.
func Scan(img blockio.Image, imagePath string, threshold float64, log *logger.Logger) (*model.RecoverySession, error) {
	sb, err := ReadSuperblock(img)
	if err != nil {
		return nil, fmt.Errorf("xfs: %w", err)
	}

	start := time.Now()
	dirMap := BuildDirMap(img, sb, log)

	var found []agCandidate
	for ag := uint32(0); ag < sb.AGCount; ag++ {
		found = append(found, scanAG(img, sb, ag, log)...)
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].AGIndex != found[j].AGIndex {
			return found[i].AGIndex < found[j].AGIndex
		}
		return found[i].AGLocalIno < found[j].AGLocalIno
	})

	session := model.NewSession(imagePath, model.FSXFS)
	session.Threshold = threshold
	session.DeviceSize = uint64(img.Size())
	session.FSSize = sb.DataBlocks * uint64(sb.BlockSize)
	session.BlockSize = sb.BlockSize

	for _, c := range found {
		df := buildCandidate(sb, c, dirMap)
		session.AddCandidate(df)
	}
	session.Duration = time.Since(start)
	return session, nil
}

func buildCandidate(sb *Superblock, c agCandidate, dirMap *DirMap) model.DeletedFile {
	var size uint64
	for _, e := range c.Extents {
		size += e.Count * uint64(sb.BlockSize)
	}

	aligned := true
	if sb.SUnit > 0 {
		for _, e := range c.Extents {
			if e.Start%uint64(sb.SUnit) != 0 {
				aligned = false
				break
			}
		}
	}

	path, _ := dirMap.Path(c.InodeNumber, sb.RootIno)

	df := model.DeletedFile{
		ID:           fmt.Sprintf("xfs-%d", c.InodeNumber),
		NativeID:     fmt.Sprintf("%d", c.InodeNumber),
		OriginalPath: path,
		Size:         size,
		Kind:         model.FSXFS,
		Extents:      c.Extents,
	}
	if !c.Inode.MTime.IsZero() {
		df.Meta.ModTime = c.Inode.MTime
		df.DeletedAt = c.Inode.MTime
	}
	df.Meta.Mode = uint32(c.Inode.Mode)

	df.FSMeta = model.XFSMetadata{
		AllocationGroup: c.AGIndex,
		InodeNumber:     c.AGLocalIno,
		Generation:      c.Inode.Generation,
		ExtentFormat:    c.Inode.ExtentFormat(),
		LinkCount:       c.Inode.NLink,
		ExtentCount:     uint32(len(c.Extents)),
		ExtentAligned:   aligned,
	}
	return df
}
