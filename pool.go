// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cfr

import (
	"encoding/binary"
	"fmt"
)

// PoolEntryKind is a tagged variant over the recognized constant-pool
// tag bytes. Any tag byte outside this set is an unrecoverable
// structural error (ErrUnsupportedClassVersion).
type PoolEntryKind byte

// Constant-pool tag bytes, per the class-file format.
const (
	KindUtf8               PoolEntryKind = 1
	KindInteger            PoolEntryKind = 3
	KindFloat              PoolEntryKind = 4
	KindLong               PoolEntryKind = 5
	KindDouble             PoolEntryKind = 6
	KindClass              PoolEntryKind = 7
	KindString             PoolEntryKind = 8
	KindFieldRef           PoolEntryKind = 9
	KindMethodRef          PoolEntryKind = 10
	KindInterfaceMethodRef PoolEntryKind = 11
	KindNameAndType        PoolEntryKind = 12
	KindMethodHandle       PoolEntryKind = 15
	KindMethodType         PoolEntryKind = 16
	KindDynamic            PoolEntryKind = 17
	KindInvokeDynamic      PoolEntryKind = 18
	KindModule             PoolEntryKind = 19
	KindPackage            PoolEntryKind = 20
)

// fixedBodyWidth gives the body width (bytes beyond the tag byte) for
// every kind except KindUtf8, whose width depends on its own 2-byte
// length prefix, and KindLong/KindDouble, which additionally consume
// two logical indices instead of one.
var fixedBodyWidth = map[PoolEntryKind]int{
	KindInteger:            4,
	KindFloat:              4,
	KindFieldRef:           4,
	KindMethodRef:          4,
	KindInterfaceMethodRef: 4,
	KindNameAndType:        4,
	KindDynamic:            4,
	KindInvokeDynamic:      4,
	KindClass:              2,
	KindString:             2,
	KindMethodType:         2,
	KindModule:             2,
	KindPackage:            2,
	KindMethodHandle:       3,
	KindLong:               8,
	KindDouble:             8,
}

// ConstantPoolEntry describes one visited logical constant-pool entry.
type ConstantPoolEntry struct {
	LogicalIndex  int
	Kind          PoolEntryKind
	EntryOffset   int // offset of the tag byte
	PayloadOffset int // offset immediately past the tag (and, for Utf8, past its length prefix)
	PayloadLength int
}

// WalkConstantPool visits each of the poolSize-1 logical entries
// starting at startOffset, invoking visit for each one, and returns
// the byte offset immediately past the pool.
//
// WalkConstantPool is a stateless, forward-only reader: it allocates
// nothing beyond the ConstantPoolEntry values it passes to visit, and
// runs in O(poolSize) time.
func WalkConstantPool(data []byte, poolSize int, startOffset int, visit func(ConstantPoolEntry) error) (int, error) {
	offset := startOffset
	for logicalIndex := 1; logicalIndex < poolSize; logicalIndex++ {
		if offset >= len(data) {
			return 0, fmt.Errorf("%w: constant-pool entry %d tag byte at offset %d exceeds buffer length %d",
				ErrMalformedClassFile, logicalIndex, offset, len(data))
		}
		kind := PoolEntryKind(data[offset])
		entryOffset := offset
		payloadOffset := offset + 1

		switch kind {
		case KindUtf8:
			if payloadOffset+2 > len(data) {
				return 0, fmt.Errorf("%w: Utf8 entry %d length prefix at offset %d exceeds buffer length %d",
					ErrMalformedClassFile, logicalIndex, payloadOffset, len(data))
			}
			length := int(binary.BigEndian.Uint16(data[payloadOffset : payloadOffset+2]))
			payloadStart := payloadOffset + 2
			if payloadStart+length > len(data) {
				return 0, fmt.Errorf("%w: Utf8 entry %d payload of length %d at offset %d exceeds buffer length %d",
					ErrMalformedClassFile, logicalIndex, length, payloadStart, len(data))
			}
			if err := visit(ConstantPoolEntry{
				LogicalIndex:  logicalIndex,
				Kind:          kind,
				EntryOffset:   entryOffset,
				PayloadOffset: payloadStart,
				PayloadLength: length,
			}); err != nil {
				return 0, err
			}
			offset = payloadStart + length

		case KindLong, KindDouble:
			width := fixedBodyWidth[kind]
			if payloadOffset+width > len(data) {
				return 0, fmt.Errorf("%w: entry %d body of width %d at offset %d exceeds buffer length %d",
					ErrMalformedClassFile, logicalIndex, width, payloadOffset, len(data))
			}
			if err := visit(ConstantPoolEntry{
				LogicalIndex:  logicalIndex,
				Kind:          kind,
				EntryOffset:   entryOffset,
				PayloadOffset: payloadOffset,
				PayloadLength: width,
			}); err != nil {
				return 0, err
			}
			offset = payloadOffset + width
			// Long/Double occupy two logical slots.
			logicalIndex++

		default:
			width, known := fixedBodyWidth[kind]
			if !known {
				return 0, fmt.Errorf("%w: tag byte 0x%02x at offset %d (entry %d)",
					ErrUnsupportedClassVersion, byte(kind), entryOffset, logicalIndex)
			}
			if payloadOffset+width > len(data) {
				return 0, fmt.Errorf("%w: entry %d body of width %d at offset %d exceeds buffer length %d",
					ErrMalformedClassFile, logicalIndex, width, payloadOffset, len(data))
			}
			if err := visit(ConstantPoolEntry{
				LogicalIndex:  logicalIndex,
				Kind:          kind,
				EntryOffset:   entryOffset,
				PayloadOffset: payloadOffset,
				PayloadLength: width,
			}); err != nil {
				return 0, err
			}
			offset = payloadOffset + width
		}
	}
	return offset, nil
}
