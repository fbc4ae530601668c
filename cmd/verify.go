// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Thermoquad/feestat/pkg/fee"
	"github.com/Thermoquad/feestat/pkg/fee/dump"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	showAll       bool
	maxDiffs      int
	reencodedPath string
)

var verifyCmd = &cobra.Command{
	Use:   "verify FILE",
	Short: "Round-trip every frame of a dump and report anomalies",
	Long: `Check each frame of a dump file by decoding and re-encoding it.

For every frame this command:
  - Verifies the XOR checksum trailer
  - Decodes the frame (pixel frames use the latest telemetry layout)
  - Checks telecommand fields or telemetry sensors against the bounds table
  - Re-encodes the record and compares it byte for byte

By default, only anomalies are displayed. Use --show-all to list identical
frames too. A statistics summary is printed at the end.

With --reencoded FILE, every frame that decoded is written back out in dump
format as the codec re-encodes it, keeping its timestamp and metadata, so
the two dumps can be compared line by line.

Exit codes:
  0 - Every frame re-encoded identically
  1 - At least one frame failed a check
  2 - The dump or limits file could not be read`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	addFrameFlags(verifyCmd)
	verifyCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all frames (not just anomalies)")
	verifyCmd.Flags().IntVar(&maxDiffs, "max-diffs", 8, "Differing bytes listed per re-encode mismatch")
	verifyCmd.Flags().StringVar(&reencodedPath, "reencoded", "", "Write re-encoded frames to this dump file (.zst to compress)")
}

// reportStyles colors the verify report when stdout is a terminal
type reportStyles struct {
	enabled bool
	ok      lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	dim     lipgloss.Style
}

func newReportStyles() reportStyles {
	return reportStyles{
		enabled: term.IsTerminal(int(os.Stdout.Fd())),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func (r reportStyles) render(s lipgloss.Style, text string) string {
	if !r.enabled {
		return text
	}
	return s.Render(text)
}

func runVerify(cmd *cobra.Command, args []string) error {
	limits, err := activeLimits()
	if err != nil {
		return &ExitError{Code: 2, Err: fmt.Errorf("limits error: %w", err)}
	}
	src, err := openSource(args[0])
	if err != nil {
		return &ExitError{Code: 2, Err: fmt.Errorf("dump error: %w", err)}
	}

	var out *dump.Writer
	if reencodedPath != "" {
		if out, err = dump.Create(reencodedPath, src.kind); err != nil {
			return &ExitError{Code: 2, Err: err}
		}
	}

	styles := newReportStyles()
	stats := fee.NewStatistics()

	fmt.Printf("Feestat - Round-Trip Verification\n")
	fmt.Printf("File: %s (%s)\n", args[0], src.kind)
	if showAll {
		fmt.Printf("Mode: All frames\n\n")
	} else {
		fmt.Printf("Mode: Anomalies only\n\n")
	}

	err = src.each(func(rec *dump.Record) error {
		encoded, anomaly := verifyRecord(src, limits, rec)
		stats.Update(anomaly)
		if anomaly != nil {
			printAnomaly(styles, rec, anomaly)
		} else if showAll {
			fmt.Printf("[%d] line %d: %s\n", rec.Timestamp, rec.Line, styles.render(styles.ok, "IDENTICAL"))
		}
		if out != nil && encoded != nil {
			return out.Write(dump.Record{Timestamp: rec.Timestamp, Meta: rec.Meta, Data: encoded})
		}
		return nil
	})
	if out != nil {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}
	if err != nil {
		return &ExitError{Code: 2, Err: fmt.Errorf("dump error: %w", err)}
	}

	fmt.Println()
	fmt.Print(stats.String())

	if stats.Failures() > 0 {
		msg := fmt.Sprintf("FAILED: %d of %d frames", stats.Failures(), stats.TotalFrames)
		fmt.Println(styles.render(styles.err, msg))
		return &ExitError{Code: 1, Err: errors.New("verification failed")}
	}
	fmt.Println(styles.render(styles.ok, fmt.Sprintf("PASSED: %d frames", stats.TotalFrames)))
	return nil
}

// verifyRecord runs the round-trip check for one record. The anomaly is nil
// when the frame re-encodes identically; the re-encoded frame is returned
// whenever the record decoded.
func verifyRecord(src *frameSource, limits fee.Limits, rec *dump.Record) ([]byte, *fee.ValidationError) {
	switch src.kind {
	case dump.KindTelecommand:
		tc, anomaly := limits.RoundTripTelecommand(rec.Data)
		if tc == nil {
			return nil, anomaly
		}
		encoded, _ := fee.EncodeTelecommand(tc)
		return encoded, anomaly

	case dump.KindTelemetry:
		tm, anomaly := limits.RoundTripTelemetry(rec.Data)
		if tm == nil {
			return nil, anomaly
		}
		encoded, _ := fee.EncodeTelemetry(tm)
		return encoded, anomaly

	case dump.KindPixel:
		tm, err := src.announcing(rec.Timestamp)
		if err != nil {
			return nil, fee.Classify(err)
		}
		f, anomaly := fee.RoundTripPixelFrame(rec.Data, tm)
		if f == nil {
			return nil, anomaly
		}
		encoded, _ := fee.EncodePixelFrame(tm, f)
		return encoded, anomaly
	}
	return nil, fee.Classify(fmt.Errorf("unsupported frame kind %s", src.kind))
}

// printAnomaly prints one failed frame with the details of its anomaly
func printAnomaly(styles reportStyles, rec *dump.Record, anomaly *fee.ValidationError) {
	label := styles.err
	if anomaly.Type == fee.AnomalyOutOfRange || anomaly.Type == fee.AnomalyReencodeMismatch {
		label = styles.warn
	}
	fmt.Printf("[%d] line %d: %s %s\n", rec.Timestamp, rec.Line,
		styles.render(label, anomaly.Type.String()+":"), anomaly.Message)

	switch anomaly.Type {
	case fee.AnomalyChecksumError:
		stored, _ := anomaly.Details["stored"].(uint16)
		computed, _ := anomaly.Details["computed"].(uint16)
		fmt.Printf("    stored=0x%04X computed=0x%04X\n", stored, computed)

	case fee.AnomalyReencodeMismatch:
		diffs, _ := anomaly.Details["diffs"].([]fee.ByteDiff)
		for i, d := range diffs {
			if i == maxDiffs {
				fmt.Println(styles.render(styles.dim, fmt.Sprintf("    ... %d more", len(diffs)-maxDiffs)))
				break
			}
			fmt.Printf("    byte %d: 0x%02X -> 0x%02X\n", d.Offset, d.Original, d.Encoded)
		}
	}
}
