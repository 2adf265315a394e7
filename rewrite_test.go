// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cfr

import (
	"bytes"
	"errors"
	"testing"
)

// TestTransformMinimalNoOp is seed scenario 1: no mapping entry
// matches anywhere, so the output must be byte-equal to the input.
func TestTransformMinimalNoOp(t *testing.T) {
	input := newClassFileBuilder().utf8("hello").finish()
	table := mustTable(t, [2]string{"foo", "bar"})

	got, err := Transform(input, table)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if !bytes.Equal(got, input) {
		t.Errorf("Transform(no match) got %v, want input unchanged %v", got, input)
	}
}

// TestTransformEqualLengthSwap is seed scenario 2: a same-length
// replacement leaves the length prefix and total file size untouched.
func TestTransformEqualLengthSwap(t *testing.T) {
	input := newClassFileBuilder().utf8("javax/x").finish()
	table := mustTable(t, [2]string{"javax/", "jakart"})

	got, err := Transform(input, table)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if len(got) != len(input) {
		t.Fatalf("output length got %v, want %v (equal-length swap)", len(got), len(input))
	}

	payload := utf8PayloadAt(t, got, classFileHeaderSize)
	if payload != "jakartx" {
		t.Errorf("payload got %q, want %q", payload, "jakartx")
	}
}

// TestTransformExpandingReplacement is seed scenario 3.
func TestTransformExpandingReplacement(t *testing.T) {
	input := newClassFileBuilder().utf8("javax/a").finish()
	table := mustTable(t, [2]string{"javax/", "jakarta/"})

	got, err := Transform(input, table)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if want := len(input) + 2; len(got) != want {
		t.Fatalf("output length got %v, want %v", len(got), want)
	}

	payload := utf8PayloadAt(t, got, classFileHeaderSize)
	if payload != "jakarta/a" {
		t.Errorf("payload got %q, want %q", payload, "jakarta/a")
	}

	if got[0] != 0xCA || got[1] != 0xFE || got[2] != 0xBA || got[3] != 0xBE {
		t.Errorf("header magic not preserved: %v", got[:4])
	}
}

// TestTransformMultipleReplacementsInOneEntry is seed scenario 4.
func TestTransformMultipleReplacementsInOneEntry(t *testing.T) {
	input := newClassFileBuilder().utf8("javax/a;javax/b").finish()
	table := mustTable(t, [2]string{"javax/", "jakarta/"})

	got, err := Transform(input, table)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if want := len(input) + 4; len(got) != want {
		t.Fatalf("output length got %v, want %v", len(got), want)
	}

	payload := utf8PayloadAt(t, got, classFileHeaderSize)
	if want := "jakarta/a;jakarta/b"; payload != want {
		t.Errorf("payload got %q, want %q", payload, want)
	}
}

// TestTransformMultipleEntriesMixedHits is seed scenario 5: only the
// matching entries are rewritten, and intervening entries are copied
// verbatim at their shifted offsets.
func TestTransformMultipleEntriesMixedHits(t *testing.T) {
	input := newClassFileBuilder().
		utf8("javax/a").
		utf8("other").
		utf8("javax/b").
		finish()
	table := mustTable(t, [2]string{"javax/", "jakarta/"})

	got, err := Transform(input, table)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	offset := classFileHeaderSize
	first := utf8PayloadAt(t, got, offset)
	offset = advancePastUtf8(t, got, offset)
	middle := utf8PayloadAt(t, got, offset)
	offset = advancePastUtf8(t, got, offset)
	last := utf8PayloadAt(t, got, offset)

	if first != "jakarta/a" {
		t.Errorf("first entry got %q, want %q", first, "jakarta/a")
	}
	if middle != "other" {
		t.Errorf("middle (non-matching) entry got %q, want %q (must be copied verbatim)", middle, "other")
	}
	if last != "jakarta/b" {
		t.Errorf("last entry got %q, want %q", last, "jakarta/b")
	}
}

// TestTransformUnknownTagRejected is seed scenario 6.
func TestTransformUnknownTagRejected(t *testing.T) {
	input := newClassFileBuilder().
		utf8("hello").
		unknownTag(0x02).
		finish()
	table := mustTable(t, [2]string{"foo", "bar"})

	_, err := Transform(input, table)
	if !errors.Is(err, ErrUnsupportedClassVersion) {
		t.Errorf("Transform got err %v, want ErrUnsupportedClassVersion", err)
	}
}

func TestTransformMatchAtPayloadBoundaries(t *testing.T) {
	input := newClassFileBuilder().utf8("javax/").finish()
	table := mustTable(t, [2]string{"javax/", "jakarta/"})

	got, err := Transform(input, table)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if payload := utf8PayloadAt(t, got, classFileHeaderSize); payload != "jakarta/" {
		t.Errorf("payload got %q, want %q", payload, "jakarta/")
	}
}

// TestTransformPartialTrailingOccurrenceNotMatched: "javax" occurs in
// full once, and "java" (a prefix of a second, incomplete "javax")
// overlaps the end of the payload without completing a match.
func TestTransformPartialTrailingOccurrenceNotMatched(t *testing.T) {
	input := newClassFileBuilder().utf8("javax.java").finish()
	table := mustTable(t, [2]string{"javax", "jakarta"})

	got, err := Transform(input, table)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if payload := utf8PayloadAt(t, got, classFileHeaderSize); payload != "jakarta.java" {
		t.Errorf("payload got %q, want %q", payload, "jakarta.java")
	}
}

func TestTransformLengthOverflow(t *testing.T) {
	// A payload of length 65534 (or 65535) with a 1-byte-growing
	// replacement pushes the prefix to 65535 (accepted) or 65536
	// (rejected).
	tests := []struct {
		name       string
		payloadLen int
		wantErr    bool
	}{
		{"exactly 65535 accepted", 0xFFFE, false},
		{"65536 rejected", 0xFFFF, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := "x" + stringOfLen(tt.payloadLen-1)
			input := newClassFileBuilder().utf8(payload).finish()
			table := mustTable(t, [2]string{"x", "xy"})

			_, err := Transform(input, table)
			if tt.wantErr != errors.Is(err, ErrLengthOverflow) {
				t.Errorf("Transform got err %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransformZeroUtf8Entries(t *testing.T) {
	input := newClassFileBuilder().integer(7).class(1).finish()
	table := mustTable(t, [2]string{"foo", "bar"})

	got, err := Transform(input, table)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if !bytes.Equal(got, input) {
		t.Errorf("Transform(zero Utf8 entries) got %v, want input unchanged %v", got, input)
	}
}

func TestTransformRoundTripWithInverseMapping(t *testing.T) {
	input := newClassFileBuilder().utf8("javax/a;javax/b").finish()
	forward := mustTable(t, [2]string{"javax/", "jakarta/"})
	inverse := mustTable(t, [2]string{"jakarta/", "javax/"})

	rewritten, err := Transform(input, forward)
	if err != nil {
		t.Fatalf("forward Transform failed: %v", err)
	}
	roundTripped, err := Transform(rewritten, inverse)
	if err != nil {
		t.Fatalf("inverse Transform failed: %v", err)
	}
	if !bytes.Equal(roundTripped, input) {
		t.Errorf("round trip got %v, want original %v", roundTripped, input)
	}
}

func TestTransformRejectsShortInput(t *testing.T) {
	table := mustTable(t, [2]string{"foo", "bar"})
	_, err := Transform([]byte{0xCA, 0xFE}, table)
	if !errors.Is(err, ErrMalformedClassFile) {
		t.Errorf("Transform(short input) got err %v, want ErrMalformedClassFile", err)
	}
}

// --- local test helpers ---

func utf8PayloadAt(t *testing.T, data []byte, offset int) string {
	t.Helper()
	if PoolEntryKind(data[offset]) != KindUtf8 {
		t.Fatalf("byte at offset %d is not a Utf8 tag: %v", offset, data[offset])
	}
	length := int(data[offset+1])<<8 | int(data[offset+2])
	return string(data[offset+3 : offset+3+length])
}

func advancePastUtf8(t *testing.T, data []byte, offset int) int {
	t.Helper()
	length := int(data[offset+1])<<8 | int(data[offset+2])
	return offset + 3 + length
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'z'
	}
	return string(b)
}
