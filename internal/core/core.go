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

// Package core exposes the three library-level operations (detect, scan,
// recover) spec §6 describes as the surface a CLI wraps. It is the only
// package that imports all three filesystem engines, the scorer and the
// recovery writer together.
package core

import (
	"fmt"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/btrfs"
	"github.com/mimirforensics/recoverfs/internal/detect"
	"github.com/mimirforensics/recoverfs/internal/exfat"
	"github.com/mimirforensics/recoverfs/internal/logger"
	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/mimirforensics/recoverfs/internal/recover"
	"github.com/mimirforensics/recoverfs/internal/score"
	"github.com/mimirforensics/recoverfs/internal/sig"
	"github.com/mimirforensics/recoverfs/internal/xfs"
)

// Detect probes img for a recognised on-disk format, per spec §4.2.
func Detect(img blockio.Image) (model.FSKind, error) {
	return detect.Detect(img)
}

// Scan runs the chosen engine's recovery pass followed by confidence
// scoring. kind == model.FSUnknown asks Scan to run detection first.
func Scan(img blockio.Image, imagePath string, kind model.FSKind, threshold float64, log *logger.Logger) (*model.RecoverySession, error) {
	if kind == model.FSUnknown {
		detected, err := detect.Detect(img)
		if err != nil {
			return nil, err
		}
		kind = detected
	}

	catalog := sig.NewCatalog()

	var session *model.RecoverySession
	var err error
	var fsSubScore func(model.DeletedFile) float64

	switch kind {
	case model.FSXFS:
		session, err = xfs.Scan(img, imagePath, threshold, log)
		if err == nil {
			sb, sbErr := xfs.ReadSuperblock(img)
			if sbErr == nil {
				ctx := score.XFSContext{AGCount: sb.AGCount, InodesPerAG: sb.InodesPerAG(), StripeUnit: uint64(sb.SUnit)}
				fsSubScore = func(c model.DeletedFile) float64 { return score.XFSSubScore(c, ctx) }
			}
		}
	case model.FSBtrfs:
		session, err = btrfs.Scan(img, imagePath, threshold, catalog, log)
		if err == nil {
			sb, sbErr := btrfs.ReadSuperblock(img)
			if sbErr == nil {
				ctx := score.BtrfsContext{CurrentGeneration: sb.Generation}
				fsSubScore = func(c model.DeletedFile) float64 { return score.BtrfsSubScore(c, ctx) }
			}
		}
	case model.FSExFAT:
		session, err = exfat.Scan(img, imagePath, threshold)
		if err == nil {
			bs, bsErr := exfat.ReadBootSector(img)
			if bsErr == nil {
				ctx := score.ExfatContext{ClusterCount: bs.ClusterCount}
				fsSubScore = func(c model.DeletedFile) float64 { return score.ExfatSubScore(c, ctx) }
			}
		}
	default:
		return nil, fmt.Errorf("core: unsupported filesystem kind %v", kind)
	}
	if err != nil {
		return nil, err
	}

	scorer := score.New(catalog)
	scorer.Score(session, payloadOf(img, session), fsSubScore)
	return session, nil
}

// payloadOf returns a callback reading the first bytes of a candidate's
// first extent, used by the scorer's signature-match factor.
func payloadOf(img blockio.Image, session *model.RecoverySession) func(model.DeletedFile) []byte {
	return func(c model.DeletedFile) []byte {
		if len(c.Extents) == 0 {
			return nil
		}
		blockSize := int64(session.BlockSize)
		if blockSize == 0 {
			blockSize = 1
		}
		offset := int64(c.Extents[0].Start) * blockSize
		const probeLen = 64
		buf, err := img.ReadAt(offset, probeLen)
		if err != nil {
			return nil
		}
		return buf
	}
}

// Recover materializes session's candidates (or the ids subset) to outDir,
// per spec §4.8.
func Recover(img blockio.Image, session *model.RecoverySession, outDir string, ids []string, forensics recover.ForensicsConfig, log *logger.Logger) (*recover.WriteReport, error) {
	catalog := sig.NewCatalog()
	w := recover.New(catalog, log)
	return w.Recover(img, session, recover.Options{OutDir: outDir, IDs: ids, Forensics: forensics})
}
