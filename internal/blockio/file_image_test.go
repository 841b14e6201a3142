package blockio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/stretchr/testify/require"
)

func writeTempImage(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.dd")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestFileImageReadAt(t *testing.T) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i)
	}
	path := writeTempImage(t, data)

	img, err := blockio.OpenFile(path)
	require.NoError(t, err)
	defer img.Close()

	require.Equal(t, int64(4096), img.Size())

	buf, err := img.ReadAt(10, 16)
	require.NoError(t, err)
	require.Equal(t, data[10:26], buf)
}

func TestFileImageReadBlock(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i % 7)
	}
	path := writeTempImage(t, data)

	img, err := blockio.OpenFile(path)
	require.NoError(t, err)
	defer img.Close()

	buf, err := img.ReadBlock(2, 256)
	require.NoError(t, err)
	require.Equal(t, data[512:768], buf)
}

func TestFileImageReadAtPastEndIsShortRead(t *testing.T) {
	path := writeTempImage(t, make([]byte, 64))

	img, err := blockio.OpenFile(path)
	require.NoError(t, err)
	defer img.Close()

	_, err = img.ReadAt(32, 64)
	require.Error(t, err)

	var shortRead *blockio.ErrShortRead
	require.ErrorAs(t, err, &shortRead)
	require.Equal(t, int64(64), shortRead.ImageLen)
}

func TestFileImageReadAtNegativeOffset(t *testing.T) {
	path := writeTempImage(t, make([]byte, 64))

	img, err := blockio.OpenFile(path)
	require.NoError(t, err)
	defer img.Close()

	_, err = img.ReadAt(-1, 10)
	require.Error(t, err)
}

func TestOpenFileMissingPath(t *testing.T) {
	_, err := blockio.OpenFile(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}
