// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/magiconair/properties"
	"github.com/nsmigrate/cfr"
)

// versionKey is a reserved mapping-file key holding the resource's
// schema version (see checkMappingVersion); it is never fed to the
// Builder as a mapping entry.
const versionKey = "cfr.version"

// addMappingFile reads a key=value properties resource (spec.md §6's
// "properties resource" — the core never parses this format itself)
// and adds its entries to builder.
func addMappingFile(builder *cfr.Builder, path string) (*cfr.Builder, error) {
	props, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return builder, fmt.Errorf("loading mapping file %s: %w", path, err)
	}
	return addMappingProperties(builder, props)
}

// addDefaultMapping adds the entries from the embedded javax ->
// jakarta resource to builder.
func addDefaultMapping(builder *cfr.Builder) (*cfr.Builder, error) {
	props, err := properties.LoadString(string(defaultMapping))
	if err != nil {
		return builder, fmt.Errorf("loading embedded default mapping: %w", err)
	}
	return addMappingProperties(builder, props)
}

func addMappingProperties(builder *cfr.Builder, props *properties.Properties) (*cfr.Builder, error) {
	if err := checkMappingVersion(props.GetString(versionKey, "")); err != nil {
		return builder, err
	}

	for _, key := range props.Keys() {
		if key == versionKey {
			continue
		}
		value := props.GetString(key, "")
		var err error
		builder, err = builder.Add(key, value)
		if err != nil {
			return builder, fmt.Errorf("mapping entry %q -> %q: %w", key, value, err)
		}
	}
	return builder, nil
}
