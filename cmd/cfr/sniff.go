// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// classFileMagic is the 4-byte magic every class file starts with
// (spec.md §6). mimetype does not ship a dedicated class-file
// detector, so the sniff checks it directly before asking mimetype
// about archive types; this mirrors the teacher's icon.go, which sniffs icon
// payload types rather than trusting a resource's declared kind.
var classFileMagic = []byte{0xCA, 0xFE, 0xBA, 0xBE}

// inputKind classifies a file's content as either a single class file
// or an archive bundle (jar/zip/war/ear all share the ZIP container
// format), instead of trusting the caller-supplied path's extension.
type inputKind int

const (
	inputKindUnknown inputKind = iota
	inputKindClassFile
	inputKindArchive
)

func sniffInputKind(data []byte) (inputKind, error) {
	if len(data) >= 4 && bytesHasPrefix(data, classFileMagic) {
		return inputKindClassFile, nil
	}

	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		switch m.Extension() {
		case ".zip", ".jar":
			return inputKindArchive, nil
		}
	}

	return inputKindUnknown, fmt.Errorf("cfr: could not classify input as a class file or an archive (sniffed as %s)", mt.String())
}

func bytesHasPrefix(data, prefix []byte) bool {
	if len(data) < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if data[i] != b {
			return false
		}
	}
	return true
}
