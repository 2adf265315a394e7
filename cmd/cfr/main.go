// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verbose bool

func main() {

	var rootCmd = &cobra.Command{
		Use:   "cfr",
		Short: "Rewrites javax/... string-table literals to jakarta/... (or any configured mapping)",
		Long:  "cfr rewrites JVM class-file and JAR string-table literals according to a user-supplied mapping, without recompiling from source.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Long:  "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 0.1.0")
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	if err := initConfig(rootCmd); err != nil {
		exitWithError(err)
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newRewriteCmd())
	rootCmd.AddCommand(newArchiveCmd())

	if err := rootCmd.Execute(); err != nil {
		exitWithError(err)
	}
}
