package btrfs_test

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/mimirforensics/recoverfs/internal/btrfs"
	"github.com/stretchr/testify/require"
)

func TestVerifyChecksumAcceptsCorrectCRC32C(t *testing.T) {
	body := make([]byte, 64)
	for i := range body {
		body[i] = byte(i * 3)
	}
	sum := crc32.Checksum(body, crc32.MakeTable(crc32.Castagnoli))

	raw := make([]byte, 32+len(body))
	binary.LittleEndian.PutUint32(raw[0:4], sum)
	copy(raw[32:], body)

	require.True(t, btrfs.VerifyChecksum(raw))
}

func TestVerifyChecksumRejectsCorruptedBody(t *testing.T) {
	body := make([]byte, 64)
	sum := crc32.Checksum(body, crc32.MakeTable(crc32.Castagnoli))

	raw := make([]byte, 32+len(body))
	binary.LittleEndian.PutUint32(raw[0:4], sum)
	copy(raw[32:], body)
	raw[40] ^= 0xFF // corrupt one byte of the body

	require.False(t, btrfs.VerifyChecksum(raw))
}

func TestVerifyChecksumTooShort(t *testing.T) {
	require.False(t, btrfs.VerifyChecksum(make([]byte, 10)))
}

func TestChecksumDataMatchesStandardCastagnoli(t *testing.T) {
	data := []byte("deleted file extent payload")
	want := crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli))
	require.Equal(t, want, btrfs.ChecksumData(data))
}
