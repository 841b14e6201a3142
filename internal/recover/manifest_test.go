package recover_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mimirforensics/recoverfs/internal/recover"
	"github.com/stretchr/testify/require"
)

func TestManifestHashFileSHA256(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recovered.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello forensics"), 0644))

	m := recover.NewManifest(recover.SHA256)
	require.NoError(t, m.HashFile(path, "recovered.bin"))

	entry, ok := m.Files["recovered.bin"]
	require.True(t, ok)
	require.Equal(t, recover.SHA256, entry.Algorithm)
	require.Len(t, entry.Hash, 64) // hex-encoded SHA-256 digest
	require.Equal(t, uint64(len("hello forensics")), entry.FileSize)
}

func TestManifestHashFileSHA512(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recovered.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello forensics"), 0644))

	m := recover.NewManifest(recover.SHA512)
	require.NoError(t, m.HashFile(path, "recovered.bin"))

	entry := m.Files["recovered.bin"]
	require.Len(t, entry.Hash, 128) // hex-encoded SHA-512 digest
}

func TestManifestDefaultsToSHA256(t *testing.T) {
	m := recover.NewManifest("")
	require.Equal(t, recover.SHA256, m.Algorithm)
}

func TestManifestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recovered.bin")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	m := recover.NewManifest(recover.SHA256)
	require.NoError(t, m.HashFile(path, "recovered.bin"))

	out := filepath.Join(dir, "hash_manifest.json")
	require.NoError(t, m.WriteJSON(out))

	buf, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(buf), "recovered.bin")
}
