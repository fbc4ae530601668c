// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dump

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"tc", KindTelecommand, false},
		{"TM", KindTelemetry, false},
		{"ptd", KindPixel, false},
		{"pixel", KindPixel, false},
		{"hk", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseKind(%q) = %v, %v", tt.in, got, err)
		}
	}
	if KindPixel.String() != "ptd" || KindPixel.MetadataTokens() != 3 || KindTelemetry.MetadataTokens() != 2 {
		t.Error("kind metadata mismatch")
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		kind     Kind
		wantTS   int64
		wantMeta []string
		wantData []byte
		wantErr  bool
	}{
		{"tc", "1700000000 5 1 2 255", KindTelecommand, 1700000000, []string{"5"}, []byte{1, 2, 255}, false},
		{"ptd extra metadata", "42 7 9 0 16", KindPixel, 42, []string{"7", "9"}, []byte{0, 16}, false},
		{"tabs and runs of spaces", "1\t0   3\t\t4", KindTelemetry, 1, []string{"0"}, []byte{3, 4}, false},
		{"metadata only", "1 0", KindTelemetry, 1, []string{"0"}, []byte{}, false},
		{"too few tokens", "1", KindTelemetry, 0, nil, nil, true},
		{"bad timestamp", "x 0 1", KindTelemetry, 0, nil, nil, true},
		{"byte overflow", "1 0 256", KindTelemetry, 0, nil, nil, true},
		{"negative byte", "1 0 -1", KindTelemetry, 0, nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseLine(tt.line, tt.kind)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", rec)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if rec.Timestamp != tt.wantTS || !reflect.DeepEqual(rec.Meta, tt.wantMeta) || !bytes.Equal(rec.Data, tt.wantData) {
				t.Errorf("got %+v", rec)
			}
		})
	}
}

func TestReader_SkipsBlankLines(t *testing.T) {
	input := "10 0 1 2\n\n   \n20 0 3 4\n"
	r := NewReader(strings.NewReader(input), KindTelemetry)

	first, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if first.Line != 1 || second.Line != 4 || second.Timestamp != 20 {
		t.Errorf("records %+v %+v", first, second)
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("got %v, want io.EOF", err)
	}

	bad := NewReader(strings.NewReader("1 0 1\n2 0 zz\n"), KindTelemetry)
	if _, err := bad.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := bad.Next(); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("got %v, want error naming line 2", err)
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	records := []Record{
		{Timestamp: 100, Meta: []string{"3", "1"}, Data: []byte{0, 1, 2, 250}},
		{Timestamp: 200, Data: []byte{9}},
	}

	for _, name := range []string{"frames.txt", "frames.txt.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			w, err := Create(path, KindPixel)
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

			got, err := ReadAll(path, KindPixel)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2 {
				t.Fatalf("read %d records", len(got))
			}
			if !bytes.Equal(got[0].Data, records[0].Data) || !reflect.DeepEqual(got[0].Meta, records[0].Meta) {
				t.Errorf("first record %+v", got[0])
			}
			// Missing metadata is written as zeros
			if !reflect.DeepEqual(got[1].Meta, []string{"0", "0"}) || got[1].Timestamp != 200 {
				t.Errorf("second record %+v", got[1])
			}
		})
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "none.zst"), KindTelemetry); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLatest(t *testing.T) {
	records := []Record{
		{Timestamp: 10, Line: 1},
		{Timestamp: 30, Line: 2},
		{Timestamp: 20, Line: 3},
		{Timestamp: 30, Line: 4},
	}
	tests := []struct {
		ts       int64
		wantLine int
		wantOK   bool
	}{
		{5, 0, false},
		{10, 1, true},
		{25, 3, true},
		{30, 4, true},
		{1000, 4, true},
	}
	for _, tt := range tests {
		rec, ok := Latest(records, tt.ts)
		if ok != tt.wantOK || (ok && rec.Line != tt.wantLine) {
			t.Errorf("Latest(%d) = %+v, %v; want line %d", tt.ts, rec, ok, tt.wantLine)
		}
	}
}

func TestFormatLine(t *testing.T) {
	got := FormatLine(Record{Timestamp: 7, Meta: []string{"1"}, Data: []byte{0, 255}}, KindTelecommand)
	if got != "7 1 0 255" {
		t.Errorf("FormatLine = %q", got)
	}
}
