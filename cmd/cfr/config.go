// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/mod/semver"

	"github.com/nsmigrate/cfr/internal/log"
)

// minMappingVersion is the lowest mapping-resource schema version this
// build understands. Mapping resources may declare a "cfr.version"
// property; anything older than this floor is rejected before the
// properties are ever handed to the Builder.
const minMappingVersion = "v1.0.0"

// initConfig wires viper to the CLI's persistent flags and an
// optional config file, mirroring the cobra+viper pairing attested
// across the retrieval corpus's manifests (e.g. DataDog-datadog-agent,
// Azure-azure-storage-azcopy).
func initConfig(rootCmd *cobra.Command) error {
	rootCmd.PersistentFlags().String("config", "", "path to a cfr config file (yaml/json/toml)")
	rootCmd.PersistentFlags().String("log-level", "error", "log level: debug, info, warn, error")

	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return err
	}
	if err := viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		return err
	}

	viper.SetEnvPrefix("CFR")
	viper.AutomaticEnv()

	// The --config value is only known once cobra has parsed the flags,
	// so the file is read just before any command runs.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if path := viper.GetString("config"); path != "" {
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err != nil {
				if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
					return fmt.Errorf("reading config file %s: %w", path, err)
				}
			}
		}
		return nil
	}
	return nil
}

// checkMappingVersion validates an optional "cfr.version" mapping
// resource header (see properties.go) against minMappingVersion.
// Resources with no version header are accepted unconditionally: the
// floor only rejects mapping files declaring a version this build
// knows is too old to understand.
func checkMappingVersion(declared string) error {
	if declared == "" {
		return nil
	}
	v := declared
	if v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("cfr: mapping resource declares invalid version %q", declared)
	}
	if semver.Compare(v, minMappingVersion) < 0 {
		return fmt.Errorf("cfr: mapping resource version %s is older than the minimum supported %s",
			declared, minMappingVersion)
	}
	return nil
}

// resolveLogLevel turns the "log-level" config/flag value (bound to
// viper by initConfig) into a log.Level, with -v/--verbose acting as a
// floor of at least info regardless of the configured level.
func resolveLogLevel() log.Level {
	level := log.LevelError
	switch strings.ToLower(viper.GetString("log-level")) {
	case "debug":
		level = log.LevelDebug
	case "info":
		level = log.LevelInfo
	case "warn", "warning":
		level = log.LevelWarn
	case "error", "":
		level = log.LevelError
	case "fatal":
		level = log.LevelFatal
	}
	if verbose && level > log.LevelInfo {
		level = log.LevelInfo
	}
	return level
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "cfr:", err)
	os.Exit(1)
}
