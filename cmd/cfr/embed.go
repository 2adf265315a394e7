// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import _ "embed"

// defaultMapping is the embedded javax -> jakarta properties resource
// used by --default-mapping. The teacher's go.mod carries
// github.com/elazarl/go-bindata-assetfs for this kind of embedded
// asset; that package wraps generated bindata behind an http.FileSystem,
// which has no use here (this CLI serves nothing over HTTP), so the
// stdlib embed package ships the resource instead (see DESIGN.md).
//
//go:embed assets/javax-to-jakarta.properties
var defaultMapping []byte
