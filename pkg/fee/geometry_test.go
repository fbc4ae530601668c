// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import (
	"errors"
	"testing"
)

// ============================================================
// Pixel Geometry Tests
// ============================================================

func TestComputeGeometry_MinimalOperational(t *testing.T) {
	g, err := ComputeGeometry(telemetryEchoing(validTelecommand()))
	if err != nil {
		t.Fatalf("ComputeGeometry error: %v", err)
	}

	want := PixelGeometry{
		DataRows:      10,
		SmearRows:     2,
		OverscanRows:  0,
		ColumnsPerCCD: 2,
		ParamsPerRow:  4,
		SmearParams:   0,
		TotalBytes:    4 + 2*(4*10+4) + 2,
	}
	if g != want {
		t.Errorf("geometry = %+v, want %+v", g, want)
	}
}

func TestComputeGeometry_NoPixelData(t *testing.T) {
	safe := validTelecommand()
	safe.OpMode = OpModeSafe
	standby := validTelecommand()
	standby.OpMode = OpModeStandby

	tests := []struct {
		name string
		tm   *Telemetry
	}{
		{"SAFE", telemetryEchoing(safe)},
		{"STANDBY", telemetryEchoing(standby)},
		{"TC error", &Telemetry{Command: validTelecommand(), TCError: TCErrCounter}},
		{"VAU error", &Telemetry{Command: validTelecommand(), VAUError: VAUErrPixelBufferOverflow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ComputeGeometry(tt.tm)
			if err != nil {
				t.Fatalf("ComputeGeometry error: %v", err)
			}
			if !g.Empty() || g.Rows() != 0 || g.ColumnsPerCCD != 0 {
				t.Errorf("geometry = %+v, want empty", g)
			}
			if g.TotalBytes != 14 {
				t.Errorf("TotalBytes = %d, want 14 (counter, voltage refs, checksum)", g.TotalBytes)
			}
		})
	}

	// Inconsistent bands are not inspected when no pixel data follows
	safe.Bands[0] = NewFrequencyBinningBand(3, 100)
	if _, err := ComputeGeometry(telemetryEchoing(safe)); err != nil {
		t.Errorf("SAFE mode with bad band: %v", err)
	}
}

func TestComputeGeometry_BandConsistency(t *testing.T) {
	tests := []struct {
		name    string
		binning uint16
		band    uint16
		wantErr bool
	}{
		{"100 by 3", 3, 100, true},
		{"100 by 4", 4, 100, false},
		{"100 by 5", 5, 100, false},
		{"448 by 8", 8, 448, false},
		{"7 by 2", 2, 7, true},
		{"zero band in non-zero word", 2, 0, true},
		{"zero band with binning 8", 8, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := validTelecommand()
			tc.Bands[2] = NewFrequencyBinningBand(tt.binning, tt.band)
			_, err := ComputeGeometry(telemetryEchoing(tc))
			if tt.wantErr && !errors.Is(err, ErrInconsistentBinning) {
				t.Errorf("got %v, want ErrInconsistentBinning", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error %v", err)
			}
		})
	}

	// Binning 1 with band 0 packs to the all-zero word and disables the band
	tc := validTelecommand()
	tc.Bands[2] = NewFrequencyBinningBand(1, 0)
	if _, err := ComputeGeometry(telemetryEchoing(tc)); err != nil {
		t.Errorf("disabled band rejected: %v", err)
	}

	// Spare bits alone still make a non-zero word with no band
	tc.Bands[2] = FrequencyBinningBand(0x0200)
	if _, err := ComputeGeometry(telemetryEchoing(tc)); !errors.Is(err, ErrInconsistentBinning) {
		t.Errorf("spare-only band word: got %v, want ErrInconsistentBinning", err)
	}
}

func TestComputeGeometry_Bands(t *testing.T) {
	tc := validTelecommand()
	tc.WindowSize = 4
	tc.TailSize = 2
	tc.Bands = [NumBands]FrequencyBinningBand{
		NewFrequencyBinningBand(1, 3),
		0,
		NewFrequencyBinningBand(2, 8),
		0,
		NewFrequencyBinningBand(5, 10),
	}

	g, err := ComputeGeometry(telemetryEchoing(tc))
	if err != nil {
		t.Fatal(err)
	}

	// binned pixels per channel: 3 + 4 + 2 = 9, two channels
	m := 18
	if g.ParamsPerRow != 4+m {
		t.Errorf("ParamsPerRow = %d, want %d", g.ParamsPerRow, 4+m)
	}
	if g.ColumnsPerCCD != 2+m/2 || g.PixelColumns() != m/2 {
		t.Errorf("ColumnsPerCCD = %d, PixelColumns = %d", g.ColumnsPerCCD, g.PixelColumns())
	}
	if g.SmearParams != 2*m {
		t.Errorf("SmearParams = %d, want %d", g.SmearParams, 2*m)
	}
	if g.Rows() != 4+2+2 {
		t.Errorf("Rows = %d, want 8", g.Rows())
	}
	wantBytes := 4 + 2*((4+m)*4+2*m+(4+m)*2+4) + 2
	if g.TotalBytes != wantBytes {
		t.Errorf("TotalBytes = %d, want %d", g.TotalBytes, wantBytes)
	}
}

func TestComputeGeometry_SpatialBinningParity(t *testing.T) {
	tests := []struct {
		name         string
		sbm          SpatialBinningMode
		window, tail uint16
		wantData     int
		wantOverscan int
	}{
		{"no binning, odd window", SpatialBinningDisabled, 11, 5, 11, 5},
		{"binning, even window", SpatialBinningEnabled, 10, 4, 5, 2},
		{"binning, odd window adjusts both", SpatialBinningEnabled, 11, 5, 5, 2},
		{"binning, odd window, even tail", SpatialBinningEnabled, 11, 4, 5, 1},
		{"binning, even window, odd tail untouched", SpatialBinningEnabled, 10, 5, 5, 2},
		{"binning, odd window, zero tail wraps", SpatialBinningEnabled, 11, 0, 5, 32767},
		{"binning, window 1", SpatialBinningEnabled, 1, 3, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := validTelecommand()
			tc.SpatialBinning = tt.sbm
			tc.WindowSize = tt.window
			tc.TailSize = tt.tail

			g, err := ComputeGeometry(telemetryEchoing(tc))
			if err != nil {
				t.Fatal(err)
			}
			if g.DataRows != tt.wantData || g.OverscanRows != tt.wantOverscan {
				t.Errorf("rows data=%d overscan=%d, want %d/%d", g.DataRows, g.OverscanRows, tt.wantData, tt.wantOverscan)
			}
			if g.SmearRows != SmearRows {
				t.Errorf("SmearRows = %d", g.SmearRows)
			}
		})
	}
}
