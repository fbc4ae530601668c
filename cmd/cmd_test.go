// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Thermoquad/feestat/pkg/fee"
	"github.com/Thermoquad/feestat/pkg/fee/dump"
	"github.com/klauspost/compress/zstd"
)

// ============================================================
// Fixtures
// ============================================================

func testTelecommand() fee.Telecommand {
	return fee.Telecommand{
		Counter:          3,
		OpMode:           fee.OpModeOperational,
		ExposureTime:     400,
		WindowSize:       1,
		TailSize:         1,
		ResetClockOnTime: 3,
		HCSamples:        1,
		Bands:            [fee.NumBands]fee.FrequencyBinningBand{fee.NewFrequencyBinningBand(1, 1)},
	}
}

func writeDump(t *testing.T, name string, kind dump.Kind, records ...dump.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	w, err := dump.Create(path, kind)
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func mustEncodeTelemetry(t *testing.T, tm *fee.Telemetry) []byte {
	t.Helper()
	data, err := fee.EncodeTelemetry(tm)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// ============================================================
// Limits File Tests
// ============================================================

func TestLoadLimits(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	limits, err := LoadLimits(write("ok.yaml", "limits:\n  WOISIZE: {min: 0, max: 100}\n  FREQBINNINGBAND_1.BANDSIZE:\n    min: 0\n    max: 200\n"))
	if err != nil {
		t.Fatalf("LoadLimits error: %v", err)
	}
	if limits["WOISIZE"] != (fee.Range{Min: 0, Max: 100}) {
		t.Errorf("WOISIZE = %+v", limits["WOISIZE"])
	}
	if limits["FREQBINNINGBAND_1.BANDSIZE"].Max != 200 {
		t.Errorf("band limit = %+v", limits["FREQBINNINGBAND_1.BANDSIZE"])
	}
	if limits["EXPO_TIME"] != fee.DefaultLimits()["EXPO_TIME"] {
		t.Error("untouched entries should keep their defaults")
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown field", "limits:\n  WOISZE: {min: 0, max: 1}\n", "unknown field"},
		{"inverted range", "limits:\n  NBTAIL: {min: 9, max: 1}\n", "above max"},
		{"bad yaml", "limits: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLimits(write(tt.name+".yaml", tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadLimits(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

// ============================================================
// Frame Source Tests
// ============================================================

func TestFrameSource_Announcing(t *testing.T) {
	first := testTelecommand()
	second := testTelecommand()
	second.WindowSize = 4

	tmFile := writeDump(t, "tm.txt", dump.KindTelemetry,
		dump.Record{Timestamp: 10, Data: mustEncodeTelemetry(t, &fee.Telemetry{Counter: 1, Command: first})},
		dump.Record{Timestamp: 20, Data: mustEncodeTelemetry(t, &fee.Telemetry{Counter: 2, Command: second})},
	)

	if _, err := newSource("ptd.txt", dump.KindPixel, ""); err == nil {
		t.Error("pixel source without telemetry accepted")
	}

	src, err := newSource("ptd.txt", dump.KindPixel, tmFile)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		ts          int64
		wantCounter uint32
		wantErr     bool
	}{
		{5, 0, true},
		{10, 1, false},
		{15, 1, false},
		{25, 2, false},
	}
	for _, tt := range tests {
		tm, err := src.announcing(tt.ts)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ts %d: expected error", tt.ts)
			}
			continue
		}
		if err != nil || tm.Counter != tt.wantCounter {
			t.Errorf("ts %d: got %v, %v; want TM #%d", tt.ts, tm, err, tt.wantCounter)
		}
	}
}

// ============================================================
// Command Helper Tests
// ============================================================

func TestVerifyRecord_Pixel(t *testing.T) {
	tm := &fee.Telemetry{Counter: 1, Command: testTelecommand()}
	tmFile := writeDump(t, "tm.txt.zst", dump.KindTelemetry, dump.Record{Timestamp: 10, Data: mustEncodeTelemetry(t, tm)})

	g, err := fee.ComputeGeometry(tm)
	if err != nil {
		t.Fatal(err)
	}
	frame := fee.NewPixelFrame(g)
	frame.Counter = 77
	pixel, err := fee.EncodePixelFrame(tm, frame)
	if err != nil {
		t.Fatal(err)
	}

	src, err := newSource("unused", dump.KindPixel, tmFile)
	if err != nil {
		t.Fatal(err)
	}
	limits := fee.DefaultLimits()

	encoded, anomaly := verifyRecord(src, limits, &dump.Record{Timestamp: 11, Data: pixel})
	if anomaly != nil {
		t.Errorf("clean pixel frame flagged: %s", anomaly.Message)
	}
	if !bytes.Equal(encoded, pixel) {
		t.Error("re-encoded pixel frame differs from the source")
	}
	if encoded, anomaly := verifyRecord(src, limits, &dump.Record{Timestamp: 11, Data: pixel[:10]}); anomaly == nil || anomaly.Type != fee.AnomalyLengthMismatch || encoded != nil {
		t.Errorf("short pixel frame: got %v", anomaly)
	}
	if _, anomaly := verifyRecord(src, limits, &dump.Record{Timestamp: 1, Data: pixel}); anomaly == nil || anomaly.Type != fee.AnomalyDecodeError {
		t.Errorf("pixel frame before any telemetry: got %v", anomaly)
	}
}

func TestRunVerify(t *testing.T) {
	clean := &fee.Telemetry{Counter: 1, Command: testTelecommand()}
	outOfRange := &fee.Telemetry{Counter: 2, Command: testTelecommand()}
	outOfRange.Sensors.VOG = 0xFFFF
	corrupt := mustEncodeTelemetry(t, &fee.Telemetry{Counter: 3, Command: testTelecommand()})
	corrupt[20] ^= 0x01

	path := writeDump(t, "tm.txt", dump.KindTelemetry,
		dump.Record{Timestamp: 10, Meta: []string{"7"}, Data: mustEncodeTelemetry(t, clean)},
		dump.Record{Timestamp: 20, Meta: []string{"8"}, Data: mustEncodeTelemetry(t, outOfRange)},
		dump.Record{Timestamp: 30, Meta: []string{"9"}, Data: corrupt},
	)

	frameKind, tmPath, limitsPath = "tm", "", ""
	reencodedPath = filepath.Join(t.TempDir(), "reencoded.txt.zst")
	t.Cleanup(func() { reencodedPath = "" })

	err := runVerify(verifyCmd, []string{path})
	var exit *ExitError
	if !errors.As(err, &exit) || exit.Code != 1 {
		t.Fatalf("runVerify = %v, want exit code 1", err)
	}

	// Frames that decoded are written back; the corrupt one is not
	records, err := dump.ReadAll(reencodedPath, dump.KindTelemetry)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("re-encoded %d frames, want 2", len(records))
	}
	for i, want := range []int64{10, 20} {
		if records[i].Timestamp != want || records[i].Meta[0] != fmt.Sprint(7+i) {
			t.Errorf("record %d: timestamp %d meta %v", i, records[i].Timestamp, records[i].Meta)
		}
	}
	if !bytes.Equal(records[1].Data, mustEncodeTelemetry(t, outOfRange)) {
		t.Error("out-of-range frame not re-encoded verbatim")
	}

	reencodedPath = ""
	err = runVerify(verifyCmd, []string{filepath.Join(t.TempDir(), "missing.txt")})
	if !errors.As(err, &exit) || exit.Code != 2 {
		t.Errorf("missing dump: got %v, want exit code 2", err)
	}

	limitsPath = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { limitsPath = "" })
	if err := runVerify(verifyCmd, []string{path}); !errors.As(err, &exit) || exit.Code != 2 {
		t.Errorf("missing limits file: got %v, want exit code 2", err)
	}
}

func TestRunVerify_Clean(t *testing.T) {
	tc := testTelecommand()
	data, err := fee.EncodeTelecommand(&tc)
	if err != nil {
		t.Fatal(err)
	}
	path := writeDump(t, "tc.txt", dump.KindTelecommand, dump.Record{Timestamp: 1, Data: data})

	frameKind, tmPath, limitsPath, reencodedPath = "tc", "", "", ""
	t.Cleanup(func() { frameKind = "tm" })
	if err := runVerify(verifyCmd, []string{path}); err != nil {
		t.Errorf("runVerify = %v, want nil", err)
	}
}

func TestGeometryLine(t *testing.T) {
	tm := &fee.Telemetry{Counter: 5, Command: testTelecommand()}
	got := geometryLine(mustEncodeTelemetry(t, tm))
	want := "TM #5 OPERATIONAL rows=4 (data=1 smear=2 overscan=1) cols/CCD=3 params/row=6 bytes=46"
	if got != want {
		t.Errorf("geometryLine = %q, want %q", got, want)
	}

	tm.Command.Bands[1] = fee.NewFrequencyBinningBand(3, 10)
	if got := geometryLine(mustEncodeTelemetry(t, tm)); !strings.Contains(got, "[ERROR]") {
		t.Errorf("inconsistent bands not reported: %q", got)
	}
	if got := geometryLine([]byte{1, 2, 3}); !strings.HasPrefix(got, "[ERROR]") {
		t.Errorf("short frame not reported: %q", got)
	}
}

func TestExport_Zstd(t *testing.T) {
	tc := testTelecommand()
	data, err := fee.EncodeTelecommand(&tc)
	if err != nil {
		t.Fatal(err)
	}
	src := &frameSource{kind: dump.KindTelecommand}
	record, err := exportRecord(src, &dump.Record{Data: data})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.cbor.zst")
	w, err := createExport(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(record); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	raw, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}

	got, err := fee.UnmarshalTelecommandCBOR(raw)
	if err != nil {
		t.Fatalf("UnmarshalTelecommandCBOR error: %v", err)
	}
	if *got != tc {
		t.Errorf("exported %+v, want %+v", *got, tc)
	}
}

func TestFrameItem(t *testing.T) {
	tm := &fee.Telemetry{Counter: 9, Command: testTelecommand(), TCError: fee.TCErrCounter}
	item := frameItem{rec: dump.Record{Timestamp: 1, Line: 4}, tm: tm}
	if item.Title() != "TM #9" || item.Description() != "OPERATIONAL TC #3" {
		t.Errorf("item = %q / %q", item.Title(), item.Description())
	}
	if !strings.Contains(item.detail(), "TC_ERROR=0x2000 (COUNTER)") {
		t.Errorf("detail missing error flags:\n%s", item.detail())
	}

	broken := frameItem{rec: dump.Record{Line: 2}, anomaly: &fee.ValidationError{Type: fee.AnomalyLengthMismatch}}
	if broken.Title() != "line 2" || broken.Description() != "undecodable" {
		t.Errorf("broken item = %q / %q", broken.Title(), broken.Description())
	}
}
