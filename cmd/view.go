// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/Thermoquad/feestat/pkg/fee"
	"github.com/Thermoquad/feestat/pkg/fee/dump"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var useTUI bool

var viewCmd = &cobra.Command{
	Use:   "view FILE",
	Short: "Browse the telemetry frames of a dump",
	Long: `Interactive browser over the telemetry frames of a dump file.

The left pane lists every frame with its operating mode and any round-trip
anomaly. The right pane shows the selected frame decoded, with calibrated
sensor values and the pixel-frame geometry it announces.

Keys: up/down to select, pgup/pgdown to scroll the detail pane, q to quit.

When stdout is not a terminal, or with --tui=false, the frame list is
printed as text instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

// frameItem is one telemetry line in the browser
type frameItem struct {
	rec     dump.Record
	tm      *fee.Telemetry
	anomaly *fee.ValidationError
}

// Implement list.Item interface
func (f frameItem) Title() string {
	if f.tm == nil {
		return fmt.Sprintf("line %d", f.rec.Line)
	}
	return fmt.Sprintf("TM #%d", f.tm.Counter)
}

func (f frameItem) Description() string {
	if f.tm == nil {
		return "undecodable"
	}
	desc := fmt.Sprintf("%s TC #%d", fee.FormatOpMode(f.tm.Command.OpMode), f.tm.Command.Counter)
	if f.anomaly != nil {
		desc += " " + f.anomaly.Type.String()
	}
	return desc
}

func (f frameItem) FilterValue() string { return fmt.Sprintf("%d", f.rec.Timestamp) }

// detail renders the full decoded view of the frame
func (f frameItem) detail() string {
	head := fmt.Sprintf("timestamp %d, line %d\n", f.rec.Timestamp, f.rec.Line)
	if f.anomaly != nil {
		head += fmt.Sprintf("%s: %s\n", f.anomaly.Type, f.anomaly.Message)
	}
	if f.tm == nil {
		return head
	}
	return head + "\n" + fee.FormatTelemetry(f.tm) + telemetryExtras(f.tm)
}

// loadFrames reads and checks every telemetry frame of a dump
func loadFrames(path string, limits fee.Limits) ([]frameItem, *fee.Statistics, error) {
	src, err := newSource(path, dump.KindTelemetry, "")
	if err != nil {
		return nil, nil, err
	}

	stats := fee.NewStatistics()
	var frames []frameItem
	err = src.each(func(rec *dump.Record) error {
		item := frameItem{rec: *rec}
		item.tm, item.anomaly = limits.RoundTripTelemetry(rec.Data)
		if item.tm == nil && item.anomaly != nil && item.anomaly.Type == fee.AnomalyChecksumError {
			// Corrupted frames are still decoded for display
			item.tm, _ = fee.DecodeTelemetry(rec.Data)
		}
		stats.Update(item.anomaly)
		frames = append(frames, item)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return frames, stats, nil
}

func runView(cmd *cobra.Command, args []string) error {
	limits, err := activeLimits()
	if err != nil {
		return err
	}
	frames, stats, err := loadFrames(args[0], limits)
	if err != nil {
		return err
	}

	if !useTUI || !term.IsTerminal(int(os.Stdout.Fd())) {
		for _, f := range frames {
			fmt.Printf("[%d] %s  %s\n", f.rec.Timestamp, f.Title(), f.Description())
		}
		fmt.Println()
		fmt.Print(stats.String())
		return nil
	}

	p := tea.NewProgram(initialViewModel(args[0], frames, stats), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
