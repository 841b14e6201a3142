package recover_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/mimirforensics/recoverfs/internal/blockio"
	"github.com/mimirforensics/recoverfs/internal/logger"
	"github.com/mimirforensics/recoverfs/internal/model"
	"github.com/mimirforensics/recoverfs/internal/recover"
	"github.com/mimirforensics/recoverfs/internal/sig"
	"github.com/stretchr/testify/require"
)

func makeTestImage(t *testing.T, data []byte) blockio.Image {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.dd")
	require.NoError(t, os.WriteFile(path, data, 0644))
	img, err := blockio.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { img.Close() })
	return img
}

func TestWriterRecoversWholeExtentCandidate(t *testing.T) {
	blockSize := uint32(512)
	payload := fillBytes(1024, 0xAB)
	data := make([]byte, 4096)
	copy(data[blockSize:], payload)

	img := makeTestImage(t, data)

	session := model.NewSession("/tmp/image.dd", model.FSXFS)
	session.ID = uuid.New()
	session.BlockSize = blockSize
	session.AddCandidate(model.DeletedFile{
		ID:           "c1",
		OriginalPath: "recovered.bin",
		Size:         uint64(len(payload)),
		Recoverable:  true,
		Extents:      []model.Extent{{Start: 1, Count: 2}},
	})

	w := recover.New(sig.NewCatalog(), logger.New(os.Stderr, logger.ErrorLevel))
	outDir := t.TempDir()
	report, err := w.Recover(img, session, recover.Options{OutDir: outDir})
	require.NoError(t, err)
	require.Equal(t, 1, report.Recovered)
	require.Equal(t, 0, report.Failed)

	got, err := os.ReadFile(report.Files[0].Path)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestWriterSkipsCandidateWithoutExtents(t *testing.T) {
	img := makeTestImage(t, make([]byte, 4096))
	session := model.NewSession("/tmp/image.dd", model.FSXFS)
	session.BlockSize = 512
	session.AddCandidate(model.DeletedFile{ID: "empty", OriginalPath: "ghost.bin"})

	w := recover.New(sig.NewCatalog(), nil)
	report, err := w.Recover(img, session, recover.Options{OutDir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, "skipped", report.Files[0].Status)
}

func TestWriterFailsExtentBeyondImageWithoutForensics(t *testing.T) {
	img := makeTestImage(t, make([]byte, 1024))
	session := model.NewSession("/tmp/image.dd", model.FSXFS)
	session.BlockSize = 512
	session.AddCandidate(model.DeletedFile{
		ID:      "oob",
		Extents: []model.Extent{{Start: 100, Count: 1}}, // far past image end
	})

	w := recover.New(sig.NewCatalog(), nil)
	report, err := w.Recover(img, session, recover.Options{OutDir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, 1, report.Failed)
}

func TestWriterPartialRecoveryProducesZeroedGap(t *testing.T) {
	img := makeTestImage(t, make([]byte, 1024))
	session := model.NewSession("/tmp/image.dd", model.FSXFS)
	session.BlockSize = 512
	session.AddCandidate(model.DeletedFile{
		ID:      "oob",
		Size:    512,
		Extents: []model.Extent{{Start: 100, Count: 1}},
	})

	w := recover.New(sig.NewCatalog(), nil)
	report, err := w.Recover(img, session, recover.Options{
		OutDir: t.TempDir(),
		Forensics: recover.ForensicsConfig{
			Enabled:         true,
			PartialRecovery: true,
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Partial)

	got, err := os.ReadFile(report.Files[0].Path)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 512), got)
}

func TestWriterAuditAndManifestWrittenWhenForensicsEnabled(t *testing.T) {
	blockSize := uint32(512)
	data := make([]byte, 4096)
	img := makeTestImage(t, data)

	session := model.NewSession("/tmp/image.dd", model.FSXFS)
	session.BlockSize = blockSize
	session.AddCandidate(model.DeletedFile{
		ID:      "c1",
		Size:    512,
		Extents: []model.Extent{{Start: 0, Count: 1}},
	})

	w := recover.New(sig.NewCatalog(), nil)
	outDir := t.TempDir()
	_, err := w.Recover(img, session, recover.Options{
		OutDir: outDir,
		Forensics: recover.ForensicsConfig{
			Enabled:          true,
			AuditLog:         true,
			HashVerification: true,
			HashAlgorithm:    recover.SHA256,
		},
	})
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(outDir, "audit.jsonl"))
	require.FileExists(t, filepath.Join(outDir, "hash_manifest.json"))
}

func fillBytes(n int, fill byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return b
}
