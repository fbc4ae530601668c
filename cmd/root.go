// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Bounds override file
	limitsPath string

	// Dump selection flags
	frameKind string
	tmPath    string
)

var rootCmd = &cobra.Command{
	Use:   "feestat",
	Short: "FEE Packet Analyzer",
	Long: `Feestat - A CLI tool for decoding and verifying FEE camera packet dumps.

Works on the text dumps recorded by the ground equipment: one frame per line,
space-separated decimal byte tokens after the metadata tokens. Files ending
in .zst are decompressed transparently.

Frame kinds:
  tc   Telecommand (75 bytes)
  tm   Telemetry (140 bytes)
  ptd  Pixel data, laid out by the latest telemetry frame (--tm FILE)

Bounds checks use the documented limits table. Individual limits can be
overridden with --limits FILE (YAML).`,
	Version:      "1.0.0",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&limitsPath, "limits", "", "YAML file overriding bounds limits")
}

// addFrameFlags registers the dump selection flags on commands that read
// any frame kind
func addFrameFlags(c *cobra.Command) {
	c.Flags().StringVarP(&frameKind, "kind", "k", "tm", "Frame kind: tc, tm or ptd")
	c.Flags().StringVar(&tmPath, "tm", "", "Telemetry dump announcing pixel frame layouts (ptd only)")
}

// ExitError asks main to exit with Code once the command has returned
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
