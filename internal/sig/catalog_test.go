package sig_test

import (
	"testing"

	"github.com/mimirforensics/recoverfs/internal/sig"
	"github.com/stretchr/testify/require"
)

func TestCatalogMatchJPEG(t *testing.T) {
	c := sig.NewCatalog()
	payload := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 100)...)

	s, ok := c.Match(payload)
	require.True(t, ok)
	require.Equal(t, "JPEG", s.Kind)
	require.Equal(t, "image/jpeg", s.MIME)
}

func TestCatalogMatchNoSignature(t *testing.T) {
	c := sig.NewCatalog()
	_, ok := c.Match([]byte{0x00, 0x01, 0x02, 0x03})
	require.False(t, ok)
}

func TestCatalogEstimatePNG(t *testing.T) {
	c := sig.NewCatalog()

	payload := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	// IHDR chunk: length 0, type, no data, 4-byte CRC.
	payload = append(payload, 0, 0, 0, 0)
	payload = append(payload, []byte("IHDR")...)
	payload = append(payload, 0, 0, 0, 0)
	ihdrEnd := len(payload)

	// IEND chunk: length 0, type IEND, 4-byte CRC.
	payload = append(payload, 0, 0, 0, 0)
	payload = append(payload, []byte("IEND")...)
	payload = append(payload, 0, 0, 0, 0)
	iendEnd := len(payload)
	_ = ihdrEnd

	size, ok := c.EstimateSize(payload)
	require.True(t, ok)
	require.Equal(t, uint64(iendEnd), size)
}

func TestCatalogEstimateUnknownFormat(t *testing.T) {
	c := sig.NewCatalog()
	_, ok := c.EstimateSize([]byte{0x00, 0x01, 0x02})
	require.False(t, ok)
}

func TestCatalogAllNonEmpty(t *testing.T) {
	c := sig.NewCatalog()
	require.NotEmpty(t, c.All())
}

func TestCatalogMatchZIPPrefersLongerPrefixOverShorterCollision(t *testing.T) {
	c := sig.NewCatalog()
	payload := append([]byte{'P', 'K', 0x03, 0x04}, make([]byte, 64)...)

	s, ok := c.Match(payload)
	require.True(t, ok)
	require.Contains(t, []string{"ZIP", "OOXML/ODF-ZIP"}, s.Kind)
}
