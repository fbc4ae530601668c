// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/feestat/pkg/fee"
	"github.com/Thermoquad/feestat/pkg/fee/dump"
	"github.com/spf13/cobra"
)

var showPhysical bool

var decodeCmd = &cobra.Command{
	Use:   "decode FILE",
	Short: "Display dump frames in human-readable format",
	Long: `Decode and display every frame of a dump file.

Telecommand and telemetry frames are printed field by field, with enumerated
and packed fields expanded. Pixel frames are summarized by geometry, voltage
references and per-CCD sample range.

Frames that fail to decode are reported and skipped. A checksum mismatch is
reported alongside the decoded frame.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	addFrameFlags(decodeCmd)
	decodeCmd.Flags().BoolVar(&showPhysical, "physical", false, "Show calibrated sensor values and pixel geometry (tm only)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	src, err := openSource(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Feestat - Frame Decode\n")
	fmt.Printf("File: %s (%s)\n\n", args[0], src.kind)

	return src.each(func(rec *dump.Record) error {
		fmt.Printf("[%d] line %d\n", rec.Timestamp, rec.Line)
		out, err := decodeRecord(src, rec)
		if err != nil {
			fmt.Printf("[ERROR] %v\n\n", err)
			return nil
		}
		fmt.Println(out)
		return nil
	})
}

// decodeRecord renders one record. The checksum is reported, not enforced.
func decodeRecord(src *frameSource, rec *dump.Record) (string, error) {
	switch src.kind {
	case dump.KindTelecommand:
		tc, err := fee.DecodeTelecommand(rec.Data)
		if err != nil {
			return "", err
		}
		return fee.FormatTelecommand(tc) + checksumNote(fee.VerifyTelecommandChecksum(rec.Data)), nil

	case dump.KindTelemetry:
		tm, err := fee.DecodeTelemetry(rec.Data)
		if err != nil {
			return "", err
		}
		out := fee.FormatTelemetry(tm)
		if showPhysical {
			out += telemetryExtras(tm)
		}
		return out + checksumNote(fee.VerifyTelemetryChecksum(rec.Data)), nil

	case dump.KindPixel:
		tm, err := src.announcing(rec.Timestamp)
		if err != nil {
			return "", err
		}
		f, err := fee.DecodePixelFrame(rec.Data, tm)
		if err != nil {
			return "", err
		}
		return fee.FormatPixelFrame(f) + checksumNote(fee.VerifyPixelChecksum(rec.Data, f.Geometry)), nil
	}
	return "", fmt.Errorf("unsupported frame kind %s", src.kind)
}

// telemetryExtras renders the calibrated sensors and announced geometry
func telemetryExtras(tm *fee.Telemetry) string {
	out := "  physical:\n"
	if p, err := fee.Calibrate(tm); err != nil {
		out += fmt.Sprintf("    %v\n", err)
	} else {
		out += fee.FormatPhysical(p)
	}
	if g, err := fee.ComputeGeometry(tm); err != nil {
		out += fmt.Sprintf("  geometry: %v\n", err)
	} else {
		out += fmt.Sprintf("  geometry: %s\n", fee.FormatGeometry(g))
	}
	return out
}

func checksumNote(err error) string {
	if err != nil {
		return fmt.Sprintf("  checksum: %v\n", err)
	}
	return ""
}
