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
	"fmt"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/logger"
)

const treeDepthLimit = 100

// walkTree descends from bytenr (a physical node address, already
// translated through the chunk map by the caller where required) and
// invokes onLeaf for every leaf reached in key order. A node whose checksum
// fails validation is logged (when log is non-nil) and skipped; the
// traversal continues with the next sibling rather than aborting.
func walkTree(img blockio.Image, nodeSize uint32, bytenr uint64, log *logger.Logger, onLeaf func(*Leaf, int) error) error {
	visited := make(map[uint64]bool)
	return walkNode(img, nodeSize, bytenr, 0, visited, log, onLeaf)
}

func walkNode(img blockio.Image, nodeSize uint32, bytenr uint64, depth int, visited map[uint64]bool, log *logger.Logger, onLeaf func(*Leaf, int) error) error {
	if depth > treeDepthLimit {
		return fmt.Errorf("btrfs: tree depth limit exceeded at bytenr %d", bytenr)
	}
	if visited[bytenr] {
		return nil
	}
	visited[bytenr] = true

	raw, err := img.ReadAt(int64(bytenr), int(nodeSize))
	if err != nil {
		if log != nil {
			log.Warnf("btrfs: node at %d unreadable: %v", bytenr, err)
		}
		return nil
	}

	_, leaf, ptrs, err := DecodeNode(raw)
	if err != nil {
		if log != nil {
			log.Warnf("btrfs: node at %d opaque: %v", bytenr, err)
		}
		return nil
	}

	if leaf != nil {
		return onLeaf(leaf, depth)
	}
	for _, p := range ptrs {
		if err := walkNode(img, nodeSize, p.Bytenr, depth+1, visited, log, onLeaf); err != nil {
			return err
		}
	}
	return nil
}
