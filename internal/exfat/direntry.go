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
package exfat

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

const (
	entrySize = 32

	entryTypeFile             = 0x85
	entryTypeFileDeleted      = 0x05
	entryTypeStreamExt        = 0xC0
	entryTypeStreamExtDeleted = 0x40
	entryTypeFileName         = 0xC1
	entryTypeFileNameDeleted  = 0x41

	inUseBit = 0x80

	minSecondaryCount = 2
	maxSecondaryCount = 18
)

// EntrySet is one decoded File + StreamExtension + FileName* run.
type EntrySet struct {
	Deleted        bool
	SecondaryCount uint8
	Checksum       uint16
	Attributes     uint16
	FirstCluster   uint32
	DataLength     uint64
	NoFatChain     bool
	Name           string
	UTF16Valid     bool
	Offset         uint64 // byte offset of the File primary within its directory chain
	ChecksumValid  bool
}

// ParseEntrySets scans a directory chain's raw bytes (the concatenation of
// every cluster in its cluster chain) and groups contiguous entries into
// File/StreamExtension/FileName sets, both live and deleted.
func ParseEntrySets(data []byte) []EntrySet {
	var sets []EntrySet
	for off := 0; off+entrySize <= len(data); {
		typ := data[off]
		bareType := typ &^ inUseBit
		if bareType != entryTypeFileDeleted {
			off += entrySize
			continue
		}
		deleted := typ == entryTypeFileDeleted
		secondaryCount := data[off+1]
		checksum := binary.LittleEndian.Uint16(data[off+2 : off+4])
		attrs := binary.LittleEndian.Uint16(data[off+4 : off+6])

		if secondaryCount < minSecondaryCount || secondaryCount > maxSecondaryCount {
			off += entrySize
			continue
		}
		setLen := (int(secondaryCount) + 1) * entrySize
		if off+setLen > len(data) {
			off += entrySize
			continue
		}
		set := decodeEntrySet(data[off:off+setLen], deleted, secondaryCount, checksum, attrs, uint64(off))
		sets = append(sets, set)
		off += setLen
	}
	return sets
}

func decodeEntrySet(raw []byte, deleted bool, secondaryCount uint8, checksum, attrs uint16, offset uint64) EntrySet {
	set := EntrySet{
		Deleted:        deleted,
		SecondaryCount: secondaryCount,
		Checksum:       checksum,
		Attributes:     attrs,
		Offset:         offset,
		ChecksumValid:  EntrySetChecksum(raw) == checksum,
	}

	if len(raw) < entrySize*2 {
		return set
	}
	stream := raw[entrySize : entrySize*2]
	streamType := stream[0] &^ inUseBit
	if streamType != entryTypeStreamExtDeleted {
		return set
	}
	flags := stream[1]
	set.NoFatChain = flags&0x02 != 0
	nameLen := stream[3]
	set.FirstCluster = binary.LittleEndian.Uint32(stream[20:24])
	set.DataLength = binary.LittleEndian.Uint64(stream[24:32])

	var nameUTF16 []byte
	valid := true
	for i := 2; i < int(secondaryCount)+1; i++ {
		entryOff := i * entrySize
		if entryOff+entrySize > len(raw) {
			break
		}
		e := raw[entryOff : entryOff+entrySize]
		entryType := e[0] &^ inUseBit
		if entryType != entryTypeFileNameDeleted {
			continue
		}
		nameUTF16 = append(nameUTF16, e[2:32]...)
	}
	if len(nameUTF16) > int(nameLen)*2 {
		nameUTF16 = nameUTF16[:int(nameLen)*2]
	}
	name, ok := decodeUTF16(nameUTF16)
	if !ok {
		valid = false
	}
	set.Name = name
	set.UTF16Valid = valid
	return set
}

// decodeUTF16 decodes little-endian UTF-16 code units, stopping at a NUL
// unit and flagging an unpaired surrogate while keeping the partial decode,
// per the spec's filename-handling rule.
func decodeUTF16(b []byte) (string, bool) {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+2 <= len(b); i += 2 {
		u := binary.LittleEndian.Uint16(b[i : i+2])
		if u == 0 {
			break
		}
		units = append(units, u)
	}

	valid := true
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u >= 0xD800 && u <= 0xDBFF:
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] > 0xDFFF {
				valid = false
			} else {
				i++
			}
		case u >= 0xDC00 && u <= 0xDFFF:
			valid = false
		}
	}

	raw := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(raw[i*2:i*2+2], u)
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := decoder.Bytes(raw)
	if err != nil {
		return string(out), false
	}
	return string(out), valid
}

// EntrySetChecksum implements the exFAT rotating checksum over every byte
// of the set except the File primary's own checksum field (bytes 2-3).
func EntrySetChecksum(raw []byte) uint16 {
	var sum uint16
	for i, b := range raw {
		if i == 2 || i == 3 {
			continue
		}
		sum = (sum<<15 | sum>>1) + uint16(b)
	}
	return sum
}
