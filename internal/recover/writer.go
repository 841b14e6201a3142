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
package recover

import (
	"fmt"
	"os"
	"path/filepath"

	humanize "github.com/dustin/go-humanize"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/logger"
	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/mimirforensics/recoverfs/internal/sig"
)

// ForensicsConfig turns on the spec's forensic-mode behaviors.
type ForensicsConfig struct {
	Enabled              bool
	PartialRecovery      bool
	ExtentReconstruction bool
	HashVerification     bool
	HashAlgorithm        HashAlgorithm
	AuditLog             bool
}

// Options configures one recovery run.
type Options struct {
	OutDir    string
	IDs       []string // empty means every candidate in the session
	Forensics ForensicsConfig
}

// FileStatus is one candidate's outcome.
type FileStatus struct {
	CandidateID string `json:"candidate_id"`
	Path        string `json:"path,omitempty"`
	Status      string `json:"status"` // recovered, skipped, partial, reconstructed, failed
	Message     string `json:"message,omitempty"`
}

// WriteReport summarizes one recovery run, per spec §4.8.
type WriteReport struct {
	Recovered     int          `json:"recovered"`
	Skipped       int          `json:"skipped"`
	Partial       int          `json:"partial"`
	Reconstructed int          `json:"reconstructed"`
	Failed        int          `json:"failed"`
	Files         []FileStatus `json:"files"`
}

// Writer materializes candidates from a RecoverySession to an output
// directory, honoring the session's own block size for extent arithmetic.
type Writer struct {
	Catalog *sig.Catalog
	Log     *logger.Logger
}

// New returns a writer using catalog to estimate expected lengths during
// extent-gap reconstruction.
func New(catalog *sig.Catalog, log *logger.Logger) *Writer {
	return &Writer{Catalog: catalog, Log: log}
}

func wanted(ids []string, id string) bool {
	if len(ids) == 0 {
		return true
	}
	for _, want := range ids {
		if want == id {
			return true
		}
	}
	return false
}

// Recover runs the full writeback pipeline of spec §4.8 against img using
// session's candidates, writing selected output files under opts.OutDir.
func (w *Writer) Recover(img blockio.Image, session *model.RecoverySession, opts Options) (*WriteReport, error) {
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("recover: create output dir: %w", err)
	}

	var audit *AuditLog
	var auditFile *os.File
	var manifest *Manifest

	if opts.Forensics.Enabled && opts.Forensics.AuditLog {
		var err error
		auditFile, err = os.OpenFile(filepath.Join(opts.OutDir, "audit.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("recover: open audit log: %w", err)
		}
		defer auditFile.Close()
		audit = NewAuditLog(auditFile, session.ID)
		audit.Append(EventSessionStart, fmt.Sprintf("recovery started for session %s", session.ID), map[string]string{
			"image_path": session.ImagePath,
		}, SeverityInfo)
	}
	if opts.Forensics.Enabled && opts.Forensics.HashVerification {
		manifest = NewManifest(opts.Forensics.HashAlgorithm)
	}

	report := &WriteReport{}
	for _, c := range session.Candidates {
		if !wanted(opts.IDs, c.ID) {
			continue
		}
		status := w.recoverOne(img, session, c, opts, audit, manifest)
		report.Files = append(report.Files, status)
		switch status.Status {
		case "recovered":
			report.Recovered++
		case "partial":
			report.Partial++
		case "reconstructed":
			report.Reconstructed++
		case "skipped":
			report.Skipped++
		default:
			report.Failed++
		}
	}

	if manifest != nil {
		if err := manifest.WriteJSON(filepath.Join(opts.OutDir, "hash_manifest.json")); err != nil && w.Log != nil {
			w.Log.Errorf("recover: write hash manifest: %v", err)
		}
	}
	if audit != nil {
		audit.Append(EventSessionEnd, fmt.Sprintf("recovery finished: %d recovered, %d failed", report.Recovered, report.Failed), nil, SeverityInfo)
	}
	return report, nil
}

func (w *Writer) recoverOne(img blockio.Image, session *model.RecoverySession, c model.DeletedFile, opts Options, audit *AuditLog, manifest *Manifest) FileStatus {
	st := FileStatus{CandidateID: c.ID}
	if audit != nil {
		audit.Append(EventFileDetected, fmt.Sprintf("candidate %s size %s", c.ID, humanize.Bytes(c.Size)), map[string]string{
			"native_id": c.NativeID,
		}, SeverityInfo)
	}

	if !c.HasExtents() {
		st.Status = "skipped"
		st.Message = "no extents"
		return st
	}

	name := c.OriginalPath
	if name == "" {
		name = fmt.Sprintf("%s_%s", c.Kind.String(), c.NativeID)
	}
	path, err := resolveOutputPath(opts.OutDir, name)
	if err != nil {
		st.Status = "failed"
		st.Message = err.Error()
		return st
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		st.Status = "failed"
		st.Message = err.Error()
		return st
	}
	defer f.Close()

	partial, reconstructed, err := w.writeExtents(img, f, session, c, opts)
	if err != nil {
		st.Status = "failed"
		st.Message = err.Error()
		return st
	}
	st.Path = path

	switch {
	case reconstructed:
		st.Status = "reconstructed"
	case partial:
		st.Status = "partial"
	default:
		st.Status = "recovered"
	}

	if audit != nil {
		audit.Append(EventFileRecovered, fmt.Sprintf("wrote %s", path), map[string]string{"status": st.Status}, SeverityInfo)
	}

	if manifest != nil {
		relPath, _ := filepath.Rel(opts.OutDir, path)
		if err := manifest.HashFile(path, relPath); err != nil {
			if audit != nil {
				audit.Append(EventHashFailed, err.Error(), map[string]string{"path": relPath}, SeverityError)
			}
		} else if audit != nil {
			audit.Append(EventHashCalc, fmt.Sprintf("hashed %s", relPath), map[string]string{"path": relPath}, SeverityInfo)
		}
	}
	return st
}

// writeExtents writes every extent of c to f in order, applying partial
// recovery and gap reconstruction per the forensics configuration.
func (w *Writer) writeExtents(img blockio.Image, f *os.File, session *model.RecoverySession, c model.DeletedFile, opts Options) (partial bool, reconstructed bool, err error) {
	blockSize := int64(session.BlockSize)
	if blockSize == 0 {
		blockSize = 1
	}
	remaining := int64(c.Size)
	expected := w.expectedLength(img, c, blockSize)

	for i, e := range c.Extents {
		length := int64(e.Count) * blockSize
		if c.Kind == model.FSExFAT && remaining > 0 && length > remaining && i == len(c.Extents)-1 {
			length = remaining
		}
		offset := int64(e.Start) * blockSize

		buf, readErr := img.ReadAt(offset, int(length))
		if readErr != nil {
			if !(opts.Forensics.Enabled && opts.Forensics.PartialRecovery) {
				return partial, reconstructed, readErr
			}
			if opts.Forensics.ExtentReconstruction && w.tryReconstruct(img, offset, length, expected, &buf) {
				reconstructed = true
			} else {
				buf = make([]byte, length)
				partial = true
			}
		}
		if _, err := f.Write(buf); err != nil {
			return partial, reconstructed, err
		}
		remaining -= length
	}
	return partial, reconstructed, nil
}

// expectedLength asks the signature catalog to estimate a file's total
// length from its first bytes, used to bound gap reconstruction to the
// spec's 25%-of-expected-length limit. Zero means no estimate is available.
func (w *Writer) expectedLength(img blockio.Image, c model.DeletedFile, blockSize int64) uint64 {
	if w.Catalog == nil || len(c.Extents) == 0 {
		return 0
	}
	head, err := img.ReadAt(int64(c.Extents[0].Start)*blockSize, 64)
	if err != nil {
		return 0
	}
	size, ok := w.Catalog.EstimateSize(head)
	if !ok {
		return 0
	}
	return size
}

// tryReconstruct bridges a failed extent read when the gap is within 25% of
// the signature-estimated file length, by copying bytes from the block
// immediately following the failed extent. A true free-space bitmap is out
// of this stage's reach (the writer only holds the image and the session),
// so the immediately adjacent block stands in for "an adjacent free block".
func (w *Writer) tryReconstruct(img blockio.Image, offset, length int64, expected uint64, buf *[]byte) bool {
	if expected == 0 || uint64(length) > expected/4 {
		return false
	}
	alt, err := img.ReadAt(offset+length, int(length))
	if err != nil {
		return false
	}
	*buf = alt
	return true
}
