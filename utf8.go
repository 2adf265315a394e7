// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cfr

// EncodeModifiedUTF8 converts a sequence of runes into the JVM's
// modified-UTF-8 encoding used inside Utf8 constant-pool entries.
//
// Unlike standard UTF-8, U+0000 is encoded as the two bytes 0xC0 0x80
// rather than a single zero byte, and there is no four-byte form:
// supplementary code points (beyond the BMP) are represented as a pair
// of three-byte surrogate encodings. EncodeModifiedUTF8 performs that
// surrogate-pair decomposition itself (see surrogatePair), so callers
// may pass supplementary code points directly.
func EncodeModifiedUTF8(text string) []byte {
	out := make([]byte, 0, byteSizeModifiedUTF8(text))
	for _, r := range text {
		out = appendModifiedUTF8Rune(out, r)
	}
	return out
}

// ByteSizeModifiedUTF8 computes the encoded length of text without
// allocating the encoded form.
func ByteSizeModifiedUTF8(text string) int {
	return byteSizeModifiedUTF8(text)
}

func byteSizeModifiedUTF8(text string) int {
	n := 0
	for _, r := range text {
		n += modifiedUTF8RuneLen(r)
	}
	return n
}

func modifiedUTF8RuneLen(r rune) int {
	switch {
	case r == 0:
		return 2
	case r >= 0x0001 && r <= 0x007F:
		return 1
	case r <= 0x07FF:
		return 2
	case r <= 0xFFFF:
		return 3
	default:
		// supplementary code point: two surrogate halves, three bytes each
		return 6
	}
}

func appendModifiedUTF8Rune(out []byte, r rune) []byte {
	switch {
	case r == 0:
		return append(out, 0xC0, 0x80)
	case r >= 0x0001 && r <= 0x007F:
		return append(out, byte(r))
	case r <= 0x07FF:
		return append(out,
			0xC0|byte(r>>6),
			0x80|byte(r&0x3F))
	case r <= 0xFFFF:
		return append(out,
			0xE0|byte(r>>12),
			0x80|byte((r>>6)&0x3F),
			0x80|byte(r&0x3F))
	default:
		hi, lo := surrogatePair(r)
		out = appendModifiedUTF8Rune(out, hi)
		return appendModifiedUTF8Rune(out, lo)
	}
}

// surrogatePair decomposes a supplementary-plane code point into its
// UTF-16 surrogate pair, each then encoded as an ordinary three-byte
// modified-UTF-8 BMP sequence (the JVM's representation of
// supplementary characters inside Utf8 constants).
func surrogatePair(r rune) (hi, lo rune) {
	v := r - 0x10000
	hi = 0xD800 + (v >> 10)
	lo = 0xDC00 + (v & 0x3FF)
	return hi, lo
}
