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
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// HashAlgorithm names a supported digest, matching the spec's manifest field.
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "SHA256"
	SHA512 HashAlgorithm = "SHA512"
)

func (a HashAlgorithm) newHash() (hash.Hash, error) {
	switch a {
	case SHA256, "":
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("recover: unknown hash algorithm %q", a)
	}
}

// FileEntry is one file's manifest record.
type FileEntry struct {
	Algorithm    HashAlgorithm `json:"algorithm"`
	Hash         string        `json:"hash"`
	FileSize     uint64        `json:"file_size"`
	CalculatedAt time.Time     `json:"calculated_at"`
}

// Manifest is the hash manifest written alongside a forensic recovery run.
type Manifest struct {
	ManifestID uuid.UUID            `json:"manifest_id"`
	CreatedAt  time.Time            `json:"created_at"`
	Algorithm  HashAlgorithm        `json:"algorithm"`
	Files      map[string]FileEntry `json:"files"`

	mu sync.Mutex
}

// NewManifest allocates an empty manifest for the given algorithm.
func NewManifest(algo HashAlgorithm) *Manifest {
	if algo == "" {
		algo = SHA256
	}
	return &Manifest{
		ManifestID: uuid.New(),
		CreatedAt:  time.Now().UTC(),
		Algorithm:  algo,
		Files:      make(map[string]FileEntry),
	}
}

// HashFile streams path through the manifest's configured algorithm and
// records the digest under relPath.
func (m *Manifest) HashFile(path, relPath string) error {
	h, err := m.Algorithm.newHash()
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := io.Copy(h, f)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.Files[relPath] = FileEntry{
		Algorithm:    m.Algorithm,
		Hash:         hex.EncodeToString(h.Sum(nil)),
		FileSize:     uint64(n),
		CalculatedAt: time.Now().UTC(),
	}
	m.mu.Unlock()
	return nil
}

// WriteJSON serializes the manifest as a single JSON document to path.
func (m *Manifest) WriteJSON(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}
