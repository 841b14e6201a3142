package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/stretchr/testify/require"
)

func TestDeletedFileJSONRoundTripXFS(t *testing.T) {
	d := model.DeletedFile{
		ID:           "c1",
		NativeID:     "ag0:inode42",
		OriginalPath: "/home/user/report.pdf",
		Size:         4096,
		DeletedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Confidence:   0.87,
		Kind:         model.FSXFS,
		Recoverable:  true,
		Extents:      []model.Extent{{Start: 10, Count: 4, Allocated: false}},
		FSMeta: model.XFSMetadata{
			AllocationGroup: 0,
			InodeNumber:     42,
			ExtentFormat:    "extents",
		},
	}

	buf, err := json.Marshal(&d)
	require.NoError(t, err)

	var got model.DeletedFile
	require.NoError(t, json.Unmarshal(buf, &got))

	require.Equal(t, d.ID, got.ID)
	require.Equal(t, d.Kind, got.Kind)
	require.Equal(t, d.Extents, got.Extents)
	require.Equal(t, model.FSXFS, got.FSMeta.FSKind())

	xfsMeta, ok := got.FSMeta.(model.XFSMetadata)
	require.True(t, ok, "FSMeta must decode back to the concrete XFSMetadata variant")
	require.Equal(t, uint64(42), xfsMeta.InodeNumber)
}

func TestDeletedFileJSONRoundTripBtrfs(t *testing.T) {
	d := model.DeletedFile{
		ID:   "c2",
		Kind: model.FSBtrfs,
		FSMeta: model.BtrfsMetadata{
			SubvolumeID: 5,
			InodeNumber: 100,
			Orphaned:    true,
		},
	}
	buf, err := json.Marshal(&d)
	require.NoError(t, err)

	var got model.DeletedFile
	require.NoError(t, json.Unmarshal(buf, &got))

	btrfsMeta, ok := got.FSMeta.(model.BtrfsMetadata)
	require.True(t, ok)
	require.True(t, btrfsMeta.Orphaned)
	require.Equal(t, uint64(5), btrfsMeta.SubvolumeID)
}

func TestDeletedFileJSONRoundTripExFAT(t *testing.T) {
	d := model.DeletedFile{
		ID:   "c3",
		Kind: model.FSExFAT,
		FSMeta: model.ExfatMetadata{
			FirstCluster:   7,
			ClusterChainOK: true,
			FatChain:       false,
		},
	}
	buf, err := json.Marshal(&d)
	require.NoError(t, err)

	var got model.DeletedFile
	require.NoError(t, json.Unmarshal(buf, &got))

	exfatMeta, ok := got.FSMeta.(model.ExfatMetadata)
	require.True(t, ok)
	require.Equal(t, uint32(7), exfatMeta.FirstCluster)
	require.False(t, exfatMeta.FatChain)
}

func TestDeletedFileJSONUnknownKindFails(t *testing.T) {
	raw := []byte(`{"id":"c4","kind":99,"fs_metadata":{"foo":"bar"}}`)
	var got model.DeletedFile
	err := json.Unmarshal(raw, &got)
	require.Error(t, err, "an unrecognized Kind must not silently decode fs_metadata")
}

func TestDeletedFileHasExtentsAndAllocatedUnits(t *testing.T) {
	empty := model.DeletedFile{}
	require.False(t, empty.HasExtents())
	require.Equal(t, uint64(0), empty.AllocatedUnits())

	d := model.DeletedFile{
		Extents: []model.Extent{
			{Start: 0, Count: 4, Allocated: true},
			{Start: 10, Count: 2, Allocated: false},
			{Start: 20, Count: 6, Allocated: true},
		},
	}
	require.True(t, d.HasExtents())
	require.Equal(t, uint64(10), d.AllocatedUnits())
}
