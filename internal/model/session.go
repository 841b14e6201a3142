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
package model

import (
	"time"

	"github.com/google/uuid"
)

// RecoverySession is the result of running one engine against one image: the
// parameters the scan ran with plus every candidate it found. Sessions are
// what gets persisted to disk by pkg/session and what the recover stage
// consumes.
type RecoverySession struct {
	ID                    uuid.UUID     `json:"id"`
	FSKind                FSKind        `json:"fs_kind"`
	ImagePath             string        `json:"image_path"`
	CreatedAt             time.Time     `json:"created_at"`
	Threshold             float64       `json:"threshold"`
	DeviceSize            uint64        `json:"device_size"`
	FSSize                uint64        `json:"fs_size"`
	BlockSize             uint32        `json:"block_size"`
	Duration              time.Duration `json:"duration"`
	CandidatesFound       int           `json:"candidates_found"`
	CandidatesRecoverable int           `json:"candidates_recoverable"`
	Candidates            []DeletedFile `json:"candidates"`
}

// NewSession allocates a session with a fresh random ID for the given image
// and filesystem kind.
func NewSession(imagePath string, kind FSKind) *RecoverySession {
	return &RecoverySession{
		ID:        uuid.New(),
		FSKind:    kind,
		ImagePath: imagePath,
		CreatedAt: time.Now(),
	}
}

// AddCandidate appends a candidate and keeps the found/recoverable counters
// in sync, so callers never have to remember to update them by hand.
func (s *RecoverySession) AddCandidate(d DeletedFile) {
	s.Candidates = append(s.Candidates, d)
	s.CandidatesFound++
	if d.Recoverable {
		s.CandidatesRecoverable++
	}
}

// AboveThreshold returns the subset of candidates at or above the session's
// confidence threshold.
func (s *RecoverySession) AboveThreshold() []DeletedFile {
	out := make([]DeletedFile, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		if c.Confidence >= s.Threshold {
			out = append(out, c)
		}
	}
	return out
}
