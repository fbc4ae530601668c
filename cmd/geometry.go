// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/feestat/pkg/fee"
	"github.com/Thermoquad/feestat/pkg/fee/dump"
	"github.com/spf13/cobra"
)

var geometryCmd = &cobra.Command{
	Use:   "geometry FILE",
	Short: "Show the pixel-frame layout announced by each telemetry frame",
	Long: `Compute the pixel-data frame geometry announced by every telemetry frame
of a dump: data, smear and overscan rows, columns per CCD, and the total
frame length in bytes.

Frames outside OPERATIONAL mode or with an error flag set announce an empty
pixel frame.`,
	Args: cobra.ExactArgs(1),
	RunE: runGeometry,
}

func init() {
	rootCmd.AddCommand(geometryCmd)
}

func runGeometry(cmd *cobra.Command, args []string) error {
	src, err := newSource(args[0], dump.KindTelemetry, "")
	if err != nil {
		return err
	}

	return src.each(func(rec *dump.Record) error {
		fmt.Printf("[%d] %s\n", rec.Timestamp, geometryLine(rec.Data))
		return nil
	})
}

// geometryLine summarizes the layout announced by one telemetry frame
func geometryLine(data []byte) string {
	tm, err := fee.DecodeTelemetry(data)
	if err != nil {
		return fmt.Sprintf("[ERROR] %v", err)
	}
	head := fmt.Sprintf("TM #%d %s", tm.Counter, fee.FormatOpMode(tm.Command.OpMode))
	g, err := fee.ComputeGeometry(tm)
	if err != nil {
		return fmt.Sprintf("%s [ERROR] %v", head, err)
	}
	return fmt.Sprintf("%s %s", head, fee.FormatGeometry(g))
}
