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
package sig

import (
	"bytes"
	"encoding/binary"
)

func defaultSignatures() []Signature {
	return []Signature{
		{Kind: "JPEG", MIME: "image/jpeg", Extension: "jpg", Prefix: []byte{0xFF, 0xD8, 0xFF}, Estimate: estimateJPEG},
		{Kind: "PNG", MIME: "image/png", Extension: "png", Prefix: []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, Estimate: estimatePNG},
		{Kind: "GIF87a", MIME: "image/gif", Extension: "gif", Prefix: []byte("GIF87a")},
		{Kind: "GIF89a", MIME: "image/gif", Extension: "gif", Prefix: []byte("GIF89a")},
		{Kind: "BMP", MIME: "image/bmp", Extension: "bmp", Prefix: []byte{'B', 'M'}},
		{Kind: "TIFF-LE", MIME: "image/tiff", Extension: "tif", Prefix: []byte{'I', 'I', 0x2A, 0x00}},
		{Kind: "TIFF-BE", MIME: "image/tiff", Extension: "tif", Prefix: []byte{'M', 'M', 0x00, 0x2A}},
		{Kind: "WebP", MIME: "image/webp", Extension: "webp", Prefix: []byte("RIFF")},
		{Kind: "HEIC", MIME: "image/heic", Extension: "heic", Prefix: []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p'}},

		{Kind: "PDF", MIME: "application/pdf", Extension: "pdf", Prefix: []byte("%PDF-"), Estimate: estimatePDF},
		{Kind: "OLE2-Office", MIME: "application/vnd.ms-office", Extension: "doc", Prefix: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
		{Kind: "OOXML/ODF-ZIP", MIME: "application/vnd.openxmlformats", Extension: "docx", Prefix: []byte{'P', 'K', 0x03, 0x04}, Estimate: estimateZIP},

		{Kind: "ZIP", MIME: "application/zip", Extension: "zip", Prefix: []byte{'P', 'K', 0x03, 0x04}, Estimate: estimateZIP},
		{Kind: "RAR4", MIME: "application/vnd.rar", Extension: "rar", Prefix: []byte{'R', 'a', 'r', '!', 0x1A, 0x07, 0x00}},
		{Kind: "RAR5", MIME: "application/vnd.rar", Extension: "rar", Prefix: []byte{'R', 'a', 'r', '!', 0x1A, 0x07, 0x01, 0x00}},
		{Kind: "7Z", MIME: "application/x-7z-compressed", Extension: "7z", Prefix: []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}},
		{Kind: "TAR", MIME: "application/x-tar", Extension: "tar", Prefix: []byte("ustar")},
		{Kind: "GZIP", MIME: "application/gzip", Extension: "gz", Prefix: []byte{0x1F, 0x8B}},

		{Kind: "MP3", MIME: "audio/mpeg", Extension: "mp3", Prefix: []byte("ID3")},
		{Kind: "MP4", MIME: "video/mp4", Extension: "mp4", Prefix: []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p'}},
		{Kind: "MKV", MIME: "video/x-matroska", Extension: "mkv", Prefix: []byte{0x1A, 0x45, 0xDF, 0xA3}},
		{Kind: "AVI", MIME: "video/x-msvideo", Extension: "avi", Prefix: []byte("RIFF")},
		{Kind: "MOV", MIME: "video/quicktime", Extension: "mov", Prefix: []byte{0x00, 0x00, 0x00, 0x14, 'f', 't', 'y', 'p'}},
		{Kind: "FLAC", MIME: "audio/flac", Extension: "flac", Prefix: []byte("fLaC")},
		{Kind: "WAV", MIME: "audio/wav", Extension: "wav", Prefix: []byte("RIFF")},

		{Kind: "ELF", MIME: "application/x-elf", Extension: "elf", Prefix: []byte{0x7F, 'E', 'L', 'F'}},
		{Kind: "PE", MIME: "application/vnd.microsoft.portable-executable", Extension: "exe", Prefix: []byte{'M', 'Z'}},
		{Kind: "Mach-O-32", MIME: "application/x-mach-binary", Extension: "macho", Prefix: []byte{0xFE, 0xED, 0xFA, 0xCE}},
		{Kind: "Mach-O-64", MIME: "application/x-mach-binary", Extension: "macho", Prefix: []byte{0xFE, 0xED, 0xFA, 0xCF}},
		{Kind: "JavaClass", MIME: "application/java-vm", Extension: "class", Prefix: []byte{0xCA, 0xFE, 0xBA, 0xBE}},

		{Kind: "SQLite", MIME: "application/vnd.sqlite3", Extension: "sqlite", Prefix: []byte("SQLite format 3\x00")},
	}
}

// estimateJPEG scans for the end-of-image marker 0xFFD9, returning the offset
// just past it as the carved size.
func estimateJPEG(payload []byte) (uint64, bool) {
	idx := bytes.Index(payload, []byte{0xFF, 0xD9})
	if idx < 0 {
		return 0, false
	}
	return uint64(idx + 2), true
}

// estimatePNG walks PNG chunks (4-byte length, 4-byte type, data, 4-byte CRC)
// until the IEND chunk, returning the total span.
func estimatePNG(payload []byte) (uint64, bool) {
	const headerLen = 8
	if len(payload) < headerLen {
		return 0, false
	}
	off := headerLen
	for off+8 <= len(payload) {
		length := binary.BigEndian.Uint32(payload[off : off+4])
		typ := payload[off+4 : off+8]
		chunkEnd := off + 8 + int(length) + 4
		if chunkEnd > len(payload) {
			return 0, false
		}
		if string(typ) == "IEND" {
			return uint64(chunkEnd), true
		}
		off = chunkEnd
	}
	return 0, false
}

// estimatePDF locates the last "%%EOF" marker in the payload.
func estimatePDF(payload []byte) (uint64, bool) {
	idx := bytes.LastIndex(payload, []byte("%%EOF"))
	if idx < 0 {
		return 0, false
	}
	return uint64(idx + len("%%EOF")), true
}

// estimateZIP locates the end-of-central-directory record and returns the
// offset just past its fixed 22-byte body plus comment length.
func estimateZIP(payload []byte) (uint64, bool) {
	marker := []byte{'P', 'K', 0x05, 0x06}
	idx := bytes.LastIndex(payload, marker)
	if idx < 0 || idx+22 > len(payload) {
		return 0, false
	}
	commentLen := binary.LittleEndian.Uint16(payload[idx+20 : idx+22])
	end := idx + 22 + int(commentLen)
	if end > len(payload) {
		end = len(payload)
	}
	return uint64(end), true
}
