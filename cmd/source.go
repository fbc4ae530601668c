// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/Thermoquad/feestat/pkg/fee"
	"github.com/Thermoquad/feestat/pkg/fee/dump"
)

// frameSource streams the records of one dump. Pixel dumps also carry the
// telemetry records that announce their layouts.
type frameSource struct {
	kind      dump.Kind
	path      string
	telemetry []dump.Record
	decoded   map[int]*fee.Telemetry // by telemetry line
}

// openSource prepares a dump for reading using the --kind and --tm flags
func openSource(path string) (*frameSource, error) {
	kind, err := dump.ParseKind(frameKind)
	if err != nil {
		return nil, err
	}
	return newSource(path, kind, tmPath)
}

func newSource(path string, kind dump.Kind, telemetryPath string) (*frameSource, error) {
	src := &frameSource{kind: kind, path: path, decoded: make(map[int]*fee.Telemetry)}
	if kind != dump.KindPixel {
		return src, nil
	}

	if telemetryPath == "" {
		return nil, fmt.Errorf("pixel dumps need --tm FILE to resolve the frame layout")
	}
	records, err := dump.ReadAll(telemetryPath, dump.KindTelemetry)
	if err != nil {
		return nil, err
	}
	src.telemetry = records
	return src, nil
}

// each calls fn for every record in the dump. Malformed lines abort the
// walk; fn decides what to do with frame-level failures.
func (s *frameSource) each(fn func(rec *dump.Record) error) error {
	r, err := dump.Open(s.path, s.kind)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", s.path, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// announcing returns the telemetry frame in force when a pixel frame was
// recorded at ts: the latest one whose timestamp is not after it
func (s *frameSource) announcing(ts int64) (*fee.Telemetry, error) {
	rec, ok := dump.Latest(s.telemetry, ts)
	if !ok {
		return nil, fmt.Errorf("no telemetry frame at or before timestamp %d", ts)
	}
	if tm, ok := s.decoded[rec.Line]; ok {
		return tm, nil
	}
	tm, err := fee.DecodeTelemetry(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("telemetry line %d: %w", rec.Line, err)
	}
	s.decoded[rec.Line] = tm
	return tm, nil
}
