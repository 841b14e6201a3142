//go:build linux
// +build linux

package fuse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, data []byte) blockio.Image {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.dd")
	require.NoError(t, os.WriteFile(path, data, 0644))
	img, err := blockio.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { img.Close() })
	return img
}

func TestCandidateReaderReadAtSpansMultipleExtents(t *testing.T) {
	blockSize := uint32(16)
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	img := testImage(t, data)

	candidate := model.DeletedFile{
		ID:   "c1",
		Size: 32,
		Extents: []model.Extent{
			{Start: 2, Count: 1}, // physical bytes [32,48)
			{Start: 5, Count: 1}, // physical bytes [80,96)
		},
	}
	r := &candidateReader{img: img, candidate: candidate, blockSize: blockSize}

	buf := make([]byte, 32)
	n, err := r.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, 32, n)

	expected := append(append([]byte{}, data[32:48]...), data[80:96]...)
	require.Equal(t, expected, buf)
}

func TestCandidateReaderReadAtMidExtentOffset(t *testing.T) {
	blockSize := uint32(16)
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	img := testImage(t, data)

	candidate := model.DeletedFile{
		ID:      "c1",
		Size:    16,
		Extents: []model.Extent{{Start: 1, Count: 1}}, // physical bytes [16,32)
	}
	r := &candidateReader{img: img, candidate: candidate, blockSize: blockSize}

	buf := make([]byte, 4)
	n, err := r.ReadAt(buf, 8)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, data[24:28], buf)
}

func TestCandidateReaderReadAtOutOfRange(t *testing.T) {
	img := testImage(t, make([]byte, 64))
	candidate := model.DeletedFile{ID: "c1", Size: 16, Extents: []model.Extent{{Start: 0, Count: 1}}}
	r := &candidateReader{img: img, candidate: candidate, blockSize: 16}

	buf := make([]byte, 4)
	_, err := r.ReadAt(buf, 100)
	require.Error(t, err)
}

func TestCandidateNamePrefersBasenameOfOriginalPath(t *testing.T) {
	c := model.DeletedFile{ID: "c1", OriginalPath: "/home/user/report.pdf"}
	require.Equal(t, "report.pdf", candidateName(c))
}

func TestCandidateNameFallsBackToID(t *testing.T) {
	c := model.DeletedFile{ID: "c1"}
	require.Equal(t, "c1", candidateName(c))
}

func TestNewRecoverFSFiltersAndDedupesNames(t *testing.T) {
	img := testImage(t, make([]byte, 256))
	session := model.NewSession("/tmp/image.dd", model.FSXFS)
	session.BlockSize = 16
	session.AddCandidate(model.DeletedFile{
		ID: "a", OriginalPath: "/x/report.pdf", Recoverable: true,
		Extents: []model.Extent{{Start: 0, Count: 1}},
	})
	session.AddCandidate(model.DeletedFile{
		ID: "b", OriginalPath: "/y/report.pdf", Recoverable: true,
		Extents: []model.Extent{{Start: 1, Count: 1}},
	})
	session.AddCandidate(model.DeletedFile{
		ID: "c", OriginalPath: "/z/skip.pdf", Recoverable: false,
		Extents: []model.Extent{{Start: 2, Count: 1}},
	})
	session.AddCandidate(model.DeletedFile{
		ID: "d", OriginalPath: "/z/noextents.pdf", Recoverable: true,
	})

	rfs := NewRecoverFS(img, session, t.TempDir())
	require.Len(t, rfs.entries, 2, "only recoverable candidates with extents should be exposed")
	_, hasBase := rfs.entries["report.pdf"]
	_, hasSuffixed := rfs.entries["report.pdf.1"]
	require.True(t, hasBase)
	require.True(t, hasSuffixed, "colliding basenames must be de-duplicated with a numeric suffix")
}
