package blockio_test

import (
	"testing"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/stretchr/testify/require"
)

func TestMmapImageReadAt(t *testing.T) {
	data := make([]byte, 8192)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := writeTempImage(t, data)

	img, err := blockio.OpenMmap(path)
	require.NoError(t, err)
	defer img.Close()

	require.Equal(t, int64(8192), img.Size())

	buf, err := img.ReadAt(100, 32)
	require.NoError(t, err)
	require.Equal(t, data[100:132], buf)
}

func TestMmapImageReadAtPastEnd(t *testing.T) {
	path := writeTempImage(t, make([]byte, 4096))

	img, err := blockio.OpenMmap(path)
	require.NoError(t, err)
	defer img.Close()

	_, err = img.ReadAt(4000, 200)
	require.Error(t, err)
}

func TestMmapImageReadBlock(t *testing.T) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i % 13)
	}
	path := writeTempImage(t, data)

	img, err := blockio.OpenMmap(path)
	require.NoError(t, err)
	defer img.Close()

	buf, err := img.ReadBlock(3, 512)
	require.NoError(t, err)
	require.Equal(t, data[1536:2048], buf)
}
