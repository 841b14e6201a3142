package model_test

import (
	"testing"

	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/stretchr/testify/require"
)

func TestNewSessionAssignsID(t *testing.T) {
	s := model.NewSession("/tmp/image.dd", model.FSXFS)
	require.NotEqual(t, "", s.ID.String())
	require.Equal(t, model.FSXFS, s.FSKind)
	require.Equal(t, "/tmp/image.dd", s.ImagePath)
}

func TestSessionAddCandidateTracksCounters(t *testing.T) {
	s := model.NewSession("/tmp/image.dd", model.FSBtrfs)
	s.AddCandidate(model.DeletedFile{ID: "a", Recoverable: true})
	s.AddCandidate(model.DeletedFile{ID: "b", Recoverable: false})
	s.AddCandidate(model.DeletedFile{ID: "c", Recoverable: true})

	require.Equal(t, 3, s.CandidatesFound)
	require.Equal(t, 2, s.CandidatesRecoverable)
	require.Len(t, s.Candidates, 3)
}

func TestSessionAboveThreshold(t *testing.T) {
	s := model.NewSession("/tmp/image.dd", model.FSExFAT)
	s.Threshold = 0.5
	s.AddCandidate(model.DeletedFile{ID: "low", Confidence: 0.2})
	s.AddCandidate(model.DeletedFile{ID: "mid", Confidence: 0.5})
	s.AddCandidate(model.DeletedFile{ID: "high", Confidence: 0.9})

	above := s.AboveThreshold()
	require.Len(t, above, 2)
	require.Equal(t, "mid", above[0].ID)
	require.Equal(t, "high", above[1].ID)
}
