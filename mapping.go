// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cfr

import (
	"bytes"
	"runtime"
	"strconv"
)

// MappingEntry is one (from, to) pair inside a MappingTable. A
// PatchRecord's replacements refer to an entry by its 1-based position
// in Entries(), so mapping index 0 never names an entry; scan reports
// "no match" through its bool result rather than through index 0.
type MappingEntry struct {
	From []byte
	To   []byte
}

// MappingTable is an immutable, validated collection of mapping
// entries. It carries MinFromLength for scan's loop-bound pruning and
// is safe to share across many concurrent Transform calls: it is
// never mutated after Build.
type MappingTable struct {
	entries       []MappingEntry
	minFromLength int
}

// Entries returns the table's entries in the order they were added.
// The returned slice must not be mutated.
func (m *MappingTable) Entries() []MappingEntry { return m.entries }

// MinFromLength returns the length of the shortest From byte sequence
// across all entries.
func (m *MappingTable) MinFromLength() int { return m.minFromLength }

// Builder builds a MappingTable from (from, to) text pairs. A Builder
// is single-use: Build consumes it, and every later call fails with
// ErrIllegalState.
//
// A Builder is bound, by convention, to the goroutine that created it.
// Calling Add or Build from a different goroutine fails with
// ErrThreadBindingViolation. This is an ergonomic contract meant to
// surface misuse eagerly, not a correctness guarantee: Go has no
// portable goroutine-identity API, so the check is a best-effort read
// of the calling goroutine's runtime stack header.
type Builder struct {
	owner   uint64
	pending []textPair
	built   bool
}

type textPair struct {
	from, to string
}

// NewBuilder creates a Builder bound to the calling goroutine.
func NewBuilder() *Builder {
	return &Builder{owner: goroutineID()}
}

// Add records a (from, to) text pair. from and to are the textual
// form of the mapping entry, encoded to modified UTF-8 only at Build
// time. Add rejects an empty from or to, and rejects from when it is
// a substring of an already-added entry's from, or an already-added
// entry's from is a substring of it (the no-overlap invariant is
// symmetric and checked eagerly so that Build never has to reject a
// table after encoding work has been done).
func (b *Builder) Add(from, to string) (*Builder, error) {
	if err := b.checkOwner(); err != nil {
		return b, err
	}
	if b.built {
		return b, ErrIllegalState
	}
	if from == "" || to == "" {
		return b, ErrInvalidArgument
	}
	for _, existing := range b.pending {
		if containsEither(existing.from, from) {
			return b, ErrInvalidArgument
		}
	}
	b.pending = append(b.pending, textPair{from: from, to: to})
	return b, nil
}

func containsEither(a, b string) bool {
	return strContains(a, b) || strContains(b, a)
}

func strContains(haystack, needle string) bool {
	return bytes.Contains([]byte(haystack), []byte(needle))
}

// Build freezes the Builder into an immutable MappingTable. It
// requires at least one entry and may only be called once.
func (b *Builder) Build() (*MappingTable, error) {
	if err := b.checkOwner(); err != nil {
		return nil, err
	}
	if b.built {
		return nil, ErrIllegalState
	}
	if len(b.pending) == 0 {
		return nil, ErrIllegalState
	}
	b.built = true

	entries := make([]MappingEntry, len(b.pending))
	minLen := -1
	for i, pair := range b.pending {
		fromBytes := EncodeModifiedUTF8(pair.from)
		toBytes := EncodeModifiedUTF8(pair.to)
		entries[i] = MappingEntry{From: fromBytes, To: toBytes}
		if minLen == -1 || len(fromBytes) < minLen {
			minLen = len(fromBytes)
		}
	}
	return &MappingTable{entries: entries, minFromLength: minLen}, nil
}

func (b *Builder) checkOwner() error {
	if goroutineID() != b.owner {
		return ErrThreadBindingViolation
	}
	return nil
}

// goroutineID returns a best-effort identifier for the calling
// goroutine, parsed from the header line of its own runtime stack
// trace ("goroutine 123 [running]: ..."). It exists only to back the
// Builder's thread-binding contract and carries no other meaning: it
// is not stable across goroutine exit/reuse and must never be used
// for anything beyond "is this the same goroutine that called before".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	field := buf[:n]
	const prefix = "goroutine "
	if !bytes.HasPrefix(field, []byte(prefix)) {
		return 0
	}
	field = field[len(prefix):]
	if idx := bytes.IndexByte(field, ' '); idx >= 0 {
		field = field[:idx]
	}
	id, err := strconv.ParseUint(string(field), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
