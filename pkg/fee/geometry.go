// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import "fmt"

// PixelGeometry is the row and column layout of a pixel-data frame, derived
// from the telemetry frame that announced it
type PixelGeometry struct {
	DataRows      int // window rows after spatial binning
	SmearRows     int
	OverscanRows  int
	ColumnsPerCCD int // dark columns plus binned pixel columns
	ParamsPerRow  int // 16-bit words per data or overscan row, both CCDs
	SmearParams   int // 16-bit words across all smear rows, both CCDs
	TotalBytes    int
}

// Rows returns the matrix row count per CCD
func (g PixelGeometry) Rows() int {
	return g.DataRows + g.SmearRows + g.OverscanRows
}

// PixelColumns returns the non-dark columns per CCD
func (g PixelGeometry) PixelColumns() int {
	if g.ColumnsPerCCD < DarkColumns {
		return 0
	}
	return g.ColumnsPerCCD - DarkColumns
}

// Empty reports whether the frame carries no pixel data
func (g PixelGeometry) Empty() bool {
	return g.Rows() == 0
}

// ComputeGeometry derives the pixel-frame layout from a telemetry echo.
// A frame announced outside OPERATIONAL mode, or with either error mask
// set, carries no pixel data and yields a zero geometry whose TotalBytes
// is the fixed counter, voltage reference and checksum overhead.
func ComputeGeometry(tm *Telemetry) (PixelGeometry, error) {
	cmd := &tm.Command

	if cmd.OpMode != OpModeOperational || tm.TCError != 0 || tm.VAUError != 0 {
		return PixelGeometry{TotalBytes: pixelOverheadSize}, nil
	}

	binned := 0
	for i, b := range cmd.Bands {
		if b.Disabled() {
			continue
		}
		// Only an all-zero word disables a band; a zero band size under a
		// non-zero word is inconsistent
		binning, size := DecodeFrequencyBinningBand(uint16(b))
		if size == 0 || size%binning != 0 {
			return PixelGeometry{}, fmt.Errorf("FREQBINNINGBAND_%d: band %d, binning %d: %w", i+1, size, binning, ErrInconsistentBinning)
		}
		binned += int(size / binning)
	}
	m := readoutChannels * binned

	divisor := int(cmd.SpatialBinning) + 1
	window := cmd.WindowSize
	tail := cmd.TailSize

	// Both corrections are keyed off the window parity, tail included.
	// This matches the flight software; an odd NBTAIL with an even WOISIZE
	// is left alone, and NBTAIL 0 wraps to 65535 as the 16-bit counter does
	// on the FEE, announcing 32767 overscan rows when binned.
	if window%2 != 0 && cmd.SpatialBinning == SpatialBinningEnabled {
		window--
		tail--
	}

	g := PixelGeometry{
		DataRows:     int(window) / divisor,
		SmearRows:    SmearRows,
		OverscanRows: int(tail) / divisor,
		ParamsPerRow: DarkColumns*NumCCD + m,
		SmearParams:  SmearRows * m,
	}
	g.ColumnsPerCCD = g.ParamsPerRow / NumCCD
	g.TotalBytes = pixelCounterSize +
		pixelParamSize*(g.ParamsPerRow*g.DataRows+g.SmearParams+g.ParamsPerRow*g.OverscanRows+VoltageReferences) +
		pixelChecksumSize

	return g, nil
}
