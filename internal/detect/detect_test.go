package detect_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/detect"
	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/stretchr/testify/require"
)

func imageFromBytes(t *testing.T, size int, writes map[int][]byte) blockio.Image {
	t.Helper()
	data := make([]byte, size)
	for off, b := range writes {
		copy(data[off:], b)
	}
	path := filepath.Join(t.TempDir(), "image.dd")
	require.NoError(t, os.WriteFile(path, data, 0644))
	img, err := blockio.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { img.Close() })
	return img
}

func TestDetectXFS(t *testing.T) {
	img := imageFromBytes(t, 4096, map[int][]byte{0: []byte("XFSB")})
	kind, err := detect.Detect(img)
	require.NoError(t, err)
	require.Equal(t, model.FSXFS, kind)
}

func TestDetectBtrfs(t *testing.T) {
	img := imageFromBytes(t, 0x10000+4096, map[int][]byte{0x10000: []byte("_BHRfS_M")})
	kind, err := detect.Detect(img)
	require.NoError(t, err)
	require.Equal(t, model.FSBtrfs, kind)
}

func TestDetectExFAT(t *testing.T) {
	img := imageFromBytes(t, 512, map[int][]byte{3: []byte("EXFAT   ")})
	kind, err := detect.Detect(img)
	require.NoError(t, err)
	require.Equal(t, model.FSExFAT, kind)
}

func TestDetectUnknown(t *testing.T) {
	img := imageFromBytes(t, 4096, nil)
	kind, err := detect.Detect(img)
	require.Error(t, err)
	require.True(t, errors.Is(err, detect.ErrUnknownFormat))
	require.Equal(t, model.FSUnknown, kind)
}

func TestDetectPrefersXFSWhenMultipleMagicsPresent(t *testing.T) {
	img := imageFromBytes(t, 0x10000+4096, map[int][]byte{
		0:       []byte("XFSB"),
		0x10000: []byte("_BHRfS_M"),
	})
	kind, err := detect.Detect(img)
	require.NoError(t, err)
	require.Equal(t, model.FSXFS, kind, "XFS magic at offset 0 must win when both are present")
}
