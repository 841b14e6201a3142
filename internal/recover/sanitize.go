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

// Package recover materializes scored candidates from a RecoverySession to
// an output directory, with optional forensic audit logging and hash
// verification.
package recover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrSanitization is returned when a candidate's reconstructed path would
// escape the output directory even after sanitization.
var ErrSanitization = errors.New("recover: path would escape output directory")

var reservedChars = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", "\"", "_",
	"|", "_", "?", "_", "*", "_", "\x00", "_",
)

// sanitizeRelPath strips `..` components, drops any absolute-path prefix,
// and replaces filesystem-reserved characters, returning a path guaranteed
// to be relative and within the output directory's subtree.
func sanitizeRelPath(raw string) string {
	if raw == "" {
		raw = "recovered_file"
	}
	raw = reservedChars.Replace(raw)
	raw = filepath.ToSlash(raw)
	raw = strings.TrimPrefix(raw, "/")

	parts := strings.Split(raw, "/")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p {
		case "", ".", "..":
			continue
		default:
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		kept = []string{"recovered_file"}
	}
	return filepath.Join(kept...)
}

// resolveOutputPath sanitizes candidateName relative to outDir, verifies the
// result is still contained in outDir, and appends a numeric suffix to avoid
// clobbering an existing file (the writer never overwrites).
func resolveOutputPath(outDir, candidateName string) (string, error) {
	rel := sanitizeRelPath(candidateName)
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return "", err
	}
	candidate := filepath.Join(absOut, rel)
	if !strings.HasPrefix(candidate, absOut+string(filepath.Separator)) && candidate != absOut {
		return "", fmt.Errorf("%w: %q", ErrSanitization, candidateName)
	}

	ext := filepath.Ext(candidate)
	base := strings.TrimSuffix(candidate, ext)
	path := candidate
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		path = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
}
