// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cfr

import "errors"

// Errors returned by the Builder.
var (
	// ErrInvalidArgument is returned when Add is called with an empty
	// from/to text, or with a from text that overlaps (via substring
	// containment, in either direction) an already-added entry.
	ErrInvalidArgument = errors.New("cfr: invalid mapping argument")

	// ErrIllegalState is returned when Build is called on a Builder
	// that already produced a MappingTable, or on a Builder with no
	// entries added.
	ErrIllegalState = errors.New("cfr: illegal builder state")

	// ErrThreadBindingViolation is returned when a Builder method is
	// called from a goroutine other than the one that created it. This
	// is an ergonomic contract, not a correctness guarantee: see
	// Builder's doc comment.
	ErrThreadBindingViolation = errors.New("cfr: builder used from a different goroutine than its creator")
)

// Errors returned by Transform.
var (
	// ErrUnsupportedClassVersion is returned when the constant pool
	// contains a tag byte outside the recognized PoolEntryKind set.
	ErrUnsupportedClassVersion = errors.New("cfr: unsupported constant-pool tag")

	// ErrMalformedClassFile is returned when the constant-pool cursor
	// would advance past the end of the input buffer.
	ErrMalformedClassFile = errors.New("cfr: malformed class file")

	// ErrLengthOverflow is returned when a patched Utf8 entry's length
	// prefix would exceed the 16-bit field that holds it.
	ErrLengthOverflow = errors.New("cfr: patched entry length exceeds 65535")
)
