package recover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeRelPathStripsTraversal(t *testing.T) {
	require.Equal(t, filepath.Join("etc", "passwd"), sanitizeRelPath("../../etc/passwd"))
	require.Equal(t, filepath.Join("etc", "passwd"), sanitizeRelPath("/etc/passwd"))
}

func TestSanitizeRelPathEmptyFallsBackToDefault(t *testing.T) {
	require.Equal(t, "recovered_file", sanitizeRelPath(""))
	require.Equal(t, "recovered_file", sanitizeRelPath("../.."))
}

func TestSanitizeRelPathReplacesReservedCharacters(t *testing.T) {
	got := sanitizeRelPath("weird:name?.txt")
	require.NotContains(t, got, ":")
	require.NotContains(t, got, "?")
}

func TestResolveOutputPathStaysWithinOutDir(t *testing.T) {
	dir := t.TempDir()
	path, err := resolveOutputPath(dir, "subdir/file.txt")
	require.NoError(t, err)
	require.True(t, filepathHasPrefix(path, dir))
}

func TestResolveOutputPathAppendsSuffixOnCollision(t *testing.T) {
	dir := t.TempDir()
	first, err := resolveOutputPath(dir, "report.pdf")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(first, []byte("x"), 0644))

	second, err := resolveOutputPath(dir, "report.pdf")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.Contains(t, second, "report_1")
}

func filepathHasPrefix(path, dir string) bool {
	absDir, _ := filepath.Abs(dir)
	absPath, _ := filepath.Abs(path)
	rel, err := filepath.Rel(absDir, absPath)
	return err == nil && rel != ".." && len(rel) > 0 && rel[0] != '.'
}
