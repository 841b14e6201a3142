package session_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/mimirforensics/recoverfs/pkg/session"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTripPreservesCandidateOrderAndMetadata(t *testing.T) {
	s := model.NewSession("/tmp/image.dd", model.FSBtrfs)
	s.Threshold = 0.5
	s.BlockSize = 4096
	s.AddCandidate(model.DeletedFile{
		ID:         "c1",
		Confidence: 0.9,
		Kind:       model.FSBtrfs,
		Extents:    []model.Extent{{Start: 1, Count: 2}},
		FSMeta:     model.BtrfsMetadata{SubvolumeID: 5, InodeNumber: 256, Orphaned: true},
	})
	s.AddCandidate(model.DeletedFile{
		ID:         "c2",
		Confidence: 0.3,
		Kind:       model.FSBtrfs,
		DeletedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		FSMeta:     model.BtrfsMetadata{SubvolumeID: 5, InodeNumber: 257},
	})

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, session.Save(s, path))

	got, err := session.Load(path)
	require.NoError(t, err)

	require.Equal(t, s.ID, got.ID)
	require.Equal(t, s.FSKind, got.FSKind)
	require.Len(t, got.Candidates, 2)
	require.Equal(t, "c1", got.Candidates[0].ID, "candidate order must survive the round trip")
	require.Equal(t, "c2", got.Candidates[1].ID)

	meta, ok := got.Candidates[0].FSMeta.(model.BtrfsMetadata)
	require.True(t, ok)
	require.True(t, meta.Orphaned)
	require.Equal(t, uint64(256), meta.InodeNumber)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := session.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
