// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cfr

import (
	"encoding/binary"
	"testing"
)

// classFileBuilder assembles a minimal, synthetic class-file buffer
// for tests: a 10-byte header followed by however many constant-pool
// entries are appended, followed by an arbitrary tail standing in for
// the rest of the class file (interfaces/fields/methods/attributes),
// which Transform must copy verbatim.
type classFileBuilder struct {
	buf       []byte
	poolCount int // number of logical slots consumed so far (entries 1..poolCount)
}

func newClassFileBuilder() *classFileBuilder {
	b := &classFileBuilder{}
	b.buf = append(b.buf, 0xCA, 0xFE, 0xBA, 0xBE) // magic
	b.buf = append(b.buf, 0x00, 0x00)             // minor version
	b.buf = append(b.buf, 0x00, 0x34)             // major version (52 = Java 8)
	b.buf = append(b.buf, 0x00, 0x00)             // pool size placeholder, fixed up by finish()
	return b
}

func (b *classFileBuilder) utf8(payload string) *classFileBuilder {
	b.buf = append(b.buf, byte(KindUtf8))
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(payload)))
	b.buf = append(b.buf, length[:]...)
	b.buf = append(b.buf, payload...)
	b.poolCount++
	return b
}

func (b *classFileBuilder) class(nameIndex uint16) *classFileBuilder {
	b.buf = append(b.buf, byte(KindClass))
	b.buf = append(b.buf, 0, 0)
	binary.BigEndian.PutUint16(b.buf[len(b.buf)-2:], nameIndex)
	b.poolCount++
	return b
}

func (b *classFileBuilder) integer(value uint32) *classFileBuilder {
	b.buf = append(b.buf, byte(KindInteger))
	var v [4]byte
	binary.BigEndian.PutUint32(v[:], value)
	b.buf = append(b.buf, v[:]...)
	b.poolCount++
	return b
}

func (b *classFileBuilder) long(value uint64) *classFileBuilder {
	b.buf = append(b.buf, byte(KindLong))
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], value)
	b.buf = append(b.buf, v[:]...)
	b.poolCount += 2 // occupies two logical slots
	return b
}

func (b *classFileBuilder) unknownTag(tag byte) *classFileBuilder {
	b.buf = append(b.buf, tag)
	b.poolCount++
	return b
}

func (b *classFileBuilder) tail(tail []byte) *classFileBuilder {
	b.buf = append(b.buf, tail...)
	return b
}

// finish fixes up the constant-pool-size field (poolCount+1, per the
// class-file format's 1-based numbering) and returns the buffer.
func (b *classFileBuilder) finish() []byte {
	binary.BigEndian.PutUint16(b.buf[8:10], uint16(b.poolCount+1))
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}

func mustTable(t *testing.T, pairs ...[2]string) *MappingTable {
	t.Helper()
	builder := NewBuilder()
	var err error
	for _, pair := range pairs {
		builder, err = builder.Add(pair[0], pair[1])
		if err != nil {
			t.Fatalf("Add(%q, %q) failed: %v", pair[0], pair[1], err)
		}
	}
	table, err := builder.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return table
}
