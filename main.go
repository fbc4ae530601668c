// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Feestat - FEE Packet Analyzer
//
// A CLI tool for decoding, verifying and browsing the telecommand,
// telemetry and pixel-data frames of the FEE CCD camera.

package main

import (
	"errors"
	"os"

	"github.com/Thermoquad/feestat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exit *cmd.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		os.Exit(1)
	}
}
