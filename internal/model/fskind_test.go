package model_test

import (
	"testing"

	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/stretchr/testify/require"
)

func TestFSKindStringRoundTrip(t *testing.T) {
	for _, k := range []model.FSKind{model.FSXFS, model.FSBtrfs, model.FSExFAT} {
		require.Equal(t, k, model.ParseFSKind(k.String()))
	}
}

func TestFSKindUnknown(t *testing.T) {
	require.Equal(t, "unknown", model.FSUnknown.String())
	require.Equal(t, model.FSUnknown, model.ParseFSKind("not-a-filesystem"))
}
