// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cfr

// Fuzz feeds raw bytes through Transform against a fixed, trivial
// mapping table, for use with the old-style go-fuzz harness
// (github.com/dvyukov/go-fuzz): it builds a corpus of malformed and
// well-formed class files that exercise WalkConstantPool's bounds
// checks and Transform's patch/materialize path without requiring any
// real class files on disk.
func Fuzz(data []byte) int {
	b, err := NewBuilder().Add("javax/", "jakarta/")
	if err != nil {
		return 0
	}
	mapping, err := b.Build()
	if err != nil {
		return 0
	}
	if _, err := Transform(data, mapping); err != nil {
		return 0
	}
	return 1
}
