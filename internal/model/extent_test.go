package model_test

import (
	"testing"

	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/stretchr/testify/require"
)

func TestExtentEnd(t *testing.T) {
	e := model.Extent{Start: 10, Count: 5}
	require.Equal(t, uint64(15), e.End())
}

func TestExtentOverlaps(t *testing.T) {
	a := model.Extent{Start: 0, Count: 10}
	b := model.Extent{Start: 5, Count: 10}
	c := model.Extent{Start: 10, Count: 10}

	require.True(t, a.Overlaps(b))
	require.True(t, b.Overlaps(a))
	require.False(t, a.Overlaps(c), "adjacent but non-overlapping extents must not overlap")
}

func TestExtentsInBounds(t *testing.T) {
	require.True(t, model.ExtentsInBounds([]model.Extent{{Start: 0, Count: 10}}, 10))
	require.False(t, model.ExtentsInBounds([]model.Extent{{Start: 0, Count: 11}}, 10), "extent running past limit")
	require.False(t, model.ExtentsInBounds([]model.Extent{{Start: 0, Count: 0}}, 10), "zero-count extent violates the invariant")
	require.False(t, model.ExtentsInBounds([]model.Extent{{Start: 10, Count: 1}}, 10), "extent starting at the limit")
}

func TestExtentsOverlap(t *testing.T) {
	disjoint := []model.Extent{{Start: 0, Count: 10}, {Start: 10, Count: 10}}
	require.False(t, model.ExtentsOverlap(disjoint))

	overlapping := []model.Extent{{Start: 0, Count: 10}, {Start: 5, Count: 10}}
	require.True(t, model.ExtentsOverlap(overlapping))
}

func TestTotalUnits(t *testing.T) {
	extents := []model.Extent{{Start: 0, Count: 4}, {Start: 10, Count: 6}}
	require.Equal(t, uint64(10), model.TotalUnits(extents))
	require.Equal(t, uint64(0), model.TotalUnits(nil))
}
