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

// Package session persists a RecoverySession to and from disk as
// self-describing JSON, replacing digler's DFXML-based report for this
// domain's needs: it has to round-trip the FSMetadata tagged union exactly,
// which an XML byte-run schema was never built to carry.
package session

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mimirforensics/recoverfs/internal/model"
)

// Save writes session to path as indented JSON, preserving candidate and
// extent ordering exactly as produced by the scan.
func Save(session *model.RecoverySession, path string) error {
	buf, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("session: write %q: %w", path, err)
	}
	return nil
}

// Load reads a session previously written by Save, restoring the
// filesystem-specific metadata variant of every candidate via
// model.DeletedFile's custom UnmarshalJSON.
func Load(path string) (*model.RecoverySession, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("session: read %q: %w", path, err)
	}
	var s model.RecoverySession
	if err := json.Unmarshal(buf, &s); err != nil {
		return nil, fmt.Errorf("session: unmarshal %q: %w", path, err)
	}
	return &s, nil
}
