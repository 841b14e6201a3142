// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package btrfs

import (
	"encoding/binary"
	"hash/crc32"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// VerifyChecksum recomputes the CRC32C of a node over every byte after its
// 32-byte checksum field and compares it to the stored value.
func VerifyChecksum(raw []byte) bool {
	if len(raw) < headerChecksumLen+4 {
		return false
	}
	want := binary.LittleEndian.Uint32(raw[0:4])
	got := crc32.Checksum(raw[headerChecksumLen:], castagnoli)
	return want == got
}

// ChecksumData returns the CRC32C of a data extent, used to validate the
// stored extent checksum against reconstructed bytes.
func ChecksumData(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}
