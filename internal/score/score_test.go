package score_test

import (
	"testing"
	"time"

	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/mimirforensics/recoverfs/internal/score"
	"github.com/mimirforensics/recoverfs/internal/sig"
	"github.com/stretchr/testify/require"
)

func TestScoreRecentCompleteCandidateScoresHigh(t *testing.T) {
	s := score.New(sig.NewCatalog())
	s.Now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	session := model.NewSession("/tmp/img.dd", model.FSXFS)
	session.Threshold = 0.5
	session.BlockSize = 4096
	session.AddCandidate(model.DeletedFile{
		ID:           "good",
		OriginalPath: "/home/user/photo.jpg",
		Size:         4,
		DeletedAt:    s.Now.Add(-time.Hour),
		Extents:      []model.Extent{{Start: 0, Count: 1}},
		Meta: model.GenericMetadata{
			ModTime:    s.Now.Add(-time.Hour),
			ChangeTime: s.Now.Add(-time.Hour),
			AccessTime: s.Now.Add(-time.Hour),
			Owner:      1000,
			Group:      1000,
			Mode:       0644,
		},
	})

	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 60)...)
	s.Score(session, func(model.DeletedFile) []byte { return jpeg }, func(model.DeletedFile) float64 { return 1.0 })

	require.Greater(t, session.Candidates[0].Confidence, 0.7)
	require.True(t, session.Candidates[0].Recoverable)
}

func TestScoreStaleSparseCandidateScoresLow(t *testing.T) {
	s := score.New(sig.NewCatalog())
	s.Now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	session := model.NewSession("/tmp/img.dd", model.FSXFS)
	session.Threshold = 0.5
	session.BlockSize = 4096
	session.AddCandidate(model.DeletedFile{
		ID:        "stale",
		DeletedAt: s.Now.AddDate(-2, 0, 0),
		Extents:   nil,
	})

	s.Score(session, nil, nil)

	require.Less(t, session.Candidates[0].Confidence, 0.3)
	require.False(t, session.Candidates[0].Recoverable)
}

func TestScoreClampsToUnitInterval(t *testing.T) {
	s := score.New(sig.NewCatalog())
	session := model.NewSession("/tmp/img.dd", model.FSBtrfs)
	session.AddCandidate(model.DeletedFile{ID: "x"})

	s.Score(session, nil, func(model.DeletedFile) float64 { return 5.0 })

	c := session.Candidates[0].Confidence
	require.GreaterOrEqual(t, c, 0.0)
	require.LessOrEqual(t, c, 1.0)
}

func TestScoreOverlappingExtentsPenalized(t *testing.T) {
	s := score.New(sig.NewCatalog())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Now = now

	clean := model.NewSession("/tmp/a.dd", model.FSXFS)
	clean.AddCandidate(model.DeletedFile{
		ID:        "clean",
		DeletedAt: now,
		Extents:   []model.Extent{{Start: 0, Count: 4}, {Start: 4, Count: 4}},
	})
	s.Score(clean, nil, nil)

	overlap := model.NewSession("/tmp/b.dd", model.FSXFS)
	overlap.AddCandidate(model.DeletedFile{
		ID:        "overlap",
		DeletedAt: now,
		Extents:   []model.Extent{{Start: 0, Count: 4}, {Start: 2, Count: 4}},
	})
	s.Score(overlap, nil, nil)

	require.Greater(t, clean.Candidates[0].Confidence, overlap.Candidates[0].Confidence)
}
