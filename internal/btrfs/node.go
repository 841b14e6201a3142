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
	"fmt"
)

const (
	headerChecksumLen = 32
	headerSize        = 101 // checksum(32) fsuuid(16) bytenr(8) flags(8) chunkuuid(16) generation(8) owner(8) nritems(4) level(1)

	keySize  = 17 // object_id(8) type(1) offset(8)
	itemSize = 25 // key(17) offset(4) size(4), in the leaf item-header area
)

// ItemType enumerates the well-known key types this engine recognizes.
type ItemType uint8

const (
	ItemTypeInodeItem   ItemType = 0x01
	ItemTypeInodeRef    ItemType = 0x0C
	ItemTypeDirItem     ItemType = 0x54
	ItemTypeDirIndex    ItemType = 0x60
	ItemTypeExtentData  ItemType = 0x6C
	ItemTypeExtentItem  ItemType = 0xA8
	ItemTypeOrphanItem  ItemType = 0x30
	ItemTypeRootItem    ItemType = 0x84
)

// Key identifies a btree item by the (object_id, type, offset) triple that
// both sorts and addresses it.
type Key struct {
	ObjectID uint64
	Type     ItemType
	Offset   uint64
}

func (k Key) Less(o Key) bool {
	if k.ObjectID != o.ObjectID {
		return k.ObjectID < o.ObjectID
	}
	if k.Type != o.Type {
		return k.Type < o.Type
	}
	return k.Offset < o.Offset
}

func decodeKey(b []byte) Key {
	return Key{
		ObjectID: binary.LittleEndian.Uint64(b[0:8]),
		Type:     ItemType(b[8]),
		Offset:   binary.LittleEndian.Uint64(b[9:17]),
	}
}

// Header is the common node header shared by leaves and internal nodes.
type Header struct {
	Checksum   []byte
	Bytenr     uint64
	Generation uint64
	Owner      uint64
	NrItems    uint32
	Level      uint8
}

func decodeHeader(buf []byte) (*Header, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("node header truncated")
	}
	return &Header{
		Checksum:   append([]byte(nil), buf[0:headerChecksumLen]...),
		Bytenr:     binary.LittleEndian.Uint64(buf[48:56]),
		Generation: binary.LittleEndian.Uint64(buf[80:88]),
		Owner:      binary.LittleEndian.Uint64(buf[88:96]),
		NrItems:    binary.LittleEndian.Uint32(buf[96:100]),
		Level:      buf[100],
	}, nil
}

// Item is one leaf item: its key plus the raw payload bytes.
type Item struct {
	Key  Key
	Data []byte
}

// Leaf is a fully decoded level-0 node.
type Leaf struct {
	Header *Header
	Items  []Item
}

// keyPointer is one internal-node child reference.
type keyPointer struct {
	Key        Key
	Bytenr     uint64
	Generation uint64
}

// DecodeNode validates a node's checksum and decodes it as either a Leaf or
// a slice of internal key pointers, depending on its level.
func DecodeNode(raw []byte) (*Header, *Leaf, []keyPointer, error) {
	hdr, err := decodeHeader(raw)
	if err != nil {
		return nil, nil, nil, err
	}
	if !VerifyChecksum(raw) {
		return hdr, nil, nil, fmt.Errorf("checksum mismatch at bytenr %d", hdr.Bytenr)
	}

	body := raw[headerSize:]
	if hdr.Level == 0 {
		leaf := &Leaf{Header: hdr}
		// Leaf item headers grow forward from the start of body; item data
		// grows backward from the end of the node. Each item header holds a
		// key, a data offset (relative to the start of the body, just past
		// the node header) and a size.
		for i := uint32(0); i < hdr.NrItems; i++ {
			off := int(i) * itemSize
			if off+itemSize > len(body) {
				return hdr, nil, nil, fmt.Errorf("leaf item header %d out of range", i)
			}
			key := decodeKey(body[off : off+keySize])
			dataOff := binary.LittleEndian.Uint32(body[off+keySize : off+keySize+4])
			dataLen := binary.LittleEndian.Uint32(body[off+keySize+4 : off+keySize+8])
			start := int(dataOff)
			end := start + int(dataLen)
			if start < 0 || end > len(body) || start > end {
				return hdr, nil, nil, fmt.Errorf("leaf item %d data out of range", i)
			}
			leaf.Items = append(leaf.Items, Item{Key: key, Data: body[start:end]})
		}
		return hdr, leaf, nil, nil
	}

	var ptrs []keyPointer
	const ptrSize = keySize + 16 // key + blockptr(bytenr 8, generation 8)
	for i := uint32(0); i < hdr.NrItems; i++ {
		off := int(i) * ptrSize
		if off+ptrSize > len(body) {
			return hdr, nil, nil, fmt.Errorf("internal pointer %d out of range", i)
		}
		key := decodeKey(body[off : off+keySize])
		bytenr := binary.LittleEndian.Uint64(body[off+keySize : off+keySize+8])
		gen := binary.LittleEndian.Uint64(body[off+keySize+8 : off+keySize+16])
		ptrs = append(ptrs, keyPointer{Key: key, Bytenr: bytenr, Generation: gen})
	}
	return hdr, nil, ptrs, nil
}
