// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cfr

import (
	"encoding/binary"
	"fmt"
)

const classFileHeaderSize = 10 // 4-byte magic, 2+2 version, 2-byte pool size

// replacement is one applied substitution inside a single Utf8 entry:
// mappingIndex is 1-based into MappingTable.Entries(), matchOffset is
// a whole-file byte offset.
type replacement struct {
	mappingIndex int
	matchOffset  int
}

// PatchRecord describes every replacement applied inside one Utf8
// constant-pool entry.
type PatchRecord struct {
	lengthPrefixOffset int // offset of the entry's 2-byte length prefix
	netLengthDelta     int
	replacements       []replacement
}

// PatchPlan is the ordered set of PatchRecords produced by discovery,
// one per affected Utf8 entry, in constant-pool order.
type PatchPlan struct {
	records []PatchRecord
	delta   int
}

// Transform applies mapping's substitutions to every Utf8
// constant-pool string-table entry in input, returning a freshly
// allocated buffer with the replacements applied, and with every
// patched entry's 2-byte length prefix recomputed. All other bytes —
// the 10-byte header, every non-Utf8 constant-pool entry, and
// everything past the pool — are copied verbatim.
//
// When no entry matches, Transform returns input unchanged (the
// caller must not rely on whether the returned slice is the same
// backing array as input, only that its bytes are equal).
//
// Transform is a pure function: it performs no I/O, retries nothing,
// and is safe to call concurrently from many goroutines against the
// same MappingTable.
func Transform(input []byte, mapping *MappingTable) ([]byte, error) {
	if len(input) < classFileHeaderSize {
		return nil, fmt.Errorf("%w: input of length %d shorter than class-file header (%d bytes)",
			ErrMalformedClassFile, len(input), classFileHeaderSize)
	}

	poolSize := int(binary.BigEndian.Uint16(input[8:10]))

	plan, err := discover(input, mapping, poolSize)
	if err != nil {
		return nil, err
	}

	if len(plan.records) == 0 {
		return input, nil
	}
	return materialize(input, mapping, plan)
}

// discover walks the constant pool and scans every Utf8 entry's
// payload for non-overlapping mapping matches, accumulating and
// returning a PatchPlan.
func discover(input []byte, mapping *MappingTable, poolSize int) (PatchPlan, error) {
	var plan PatchPlan
	_, err := WalkConstantPool(input, poolSize, classFileHeaderSize, func(e ConstantPoolEntry) error {
		if e.Kind != KindUtf8 {
			return nil
		}
		record, matched := scan(input, mapping, e.PayloadOffset, e.PayloadOffset+e.PayloadLength)
		if !matched {
			return nil
		}
		record.lengthPrefixOffset = e.PayloadOffset - 2 // the Utf8 entry's length prefix
		plan.records = append(plan.records, record)
		plan.delta += record.netLengthDelta
		return nil
	})
	if err != nil {
		return PatchPlan{}, err
	}
	return plan, nil
}

// scan finds every non-overlapping, first-match-wins occurrence of a
// mapping entry's From bytes inside input[begin:end], left to right.
// It returns (PatchRecord{}, false) when nothing matched.
func scan(input []byte, mapping *MappingTable, begin, end int) (PatchRecord, bool) {
	minFromLength := mapping.MinFromLength()
	entries := mapping.Entries()

	var record PatchRecord
	matched := false

	for i := begin; i <= end-minFromLength; i++ {
		for j, entry := range entries {
			fromLen := len(entry.From)
			if end-i < fromLen {
				continue
			}
			if !bytesEqual(input[i:i+fromLen], entry.From) {
				continue
			}
			if !matched {
				capacity := (end-i)/minFromLength + 2
				record.replacements = make([]replacement, 0, capacity)
				matched = true
			}
			record.replacements = append(record.replacements, replacement{
				mappingIndex: j + 1, // 1-based; 0 never names an entry
				matchOffset:  i,
			})
			record.netLengthDelta += len(entry.To) - fromLen
			i += fromLen - 1 // outer loop's i++ makes the next position i+fromLen
			break
		}
	}
	return record, matched
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// materialize copies input into a freshly sized output buffer,
// applying plan's replacements and fixing up each patched entry's
// length prefix.
func materialize(input []byte, mapping *MappingTable, plan PatchPlan) ([]byte, error) {
	entries := mapping.Entries()
	output := make([]byte, len(input)+plan.delta)

	src, dst := classFileHeaderSize, classFileHeaderSize
	copy(output[:classFileHeaderSize], input[:classFileHeaderSize])

	for _, record := range plan.records {
		// Copy the tag byte, length prefix, and any intervening
		// non-Utf8 entries up through this entry's length prefix.
		n := copy(output[dst:], input[src:record.lengthPrefixOffset+2])
		src += n
		dst += n

		originalLength := binary.BigEndian.Uint16(output[dst-2 : dst])
		newLength := int(originalLength) + record.netLengthDelta
		if newLength < 0 || newLength > 0xFFFF {
			return nil, fmt.Errorf("%w: entry at offset %d would have length %d",
				ErrLengthOverflow, record.lengthPrefixOffset, newLength)
		}
		binary.BigEndian.PutUint16(output[dst-2:dst], uint16(newLength))

		for _, rep := range record.replacements {
			n := copy(output[dst:], input[src:rep.matchOffset])
			src += n
			dst += n

			entry := entries[rep.mappingIndex-1]
			n = copy(output[dst:], entry.To)
			dst += n
			src += len(entry.From)
		}
	}

	n := copy(output[dst:], input[src:])
	src += n
	dst += n

	if dst != len(output) {
		return nil, fmt.Errorf("cfr: internal error: materialized %d bytes, expected %d", dst, len(output))
	}
	if src != len(input) {
		return nil, fmt.Errorf("cfr: internal error: consumed %d input bytes, expected %d", src, len(input))
	}
	return output, nil
}
