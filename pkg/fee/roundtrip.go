// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import (
	"bytes"
	"fmt"
)

// ByteDiff is one position where a re-encoded frame differs from its source
type ByteDiff struct {
	Offset   int
	Original byte
	Encoded  byte
}

// DiffBytes compares two frames byte by byte. A length difference is
// reported as diffs against a zero byte.
func DiffBytes(original, encoded []byte) []ByteDiff {
	if bytes.Equal(original, encoded) {
		return nil
	}
	var diffs []ByteDiff
	n := max(len(original), len(encoded))
	for i := 0; i < n; i++ {
		var a, b byte
		if i < len(original) {
			a = original[i]
		}
		if i < len(encoded) {
			b = encoded[i]
		}
		if a != b {
			diffs = append(diffs, ByteDiff{Offset: i, Original: a, Encoded: b})
		}
	}
	return diffs
}

func reencodeMismatch(frame string, original, encoded []byte) *ValidationError {
	diffs := DiffBytes(original, encoded)
	if len(diffs) == 0 {
		return nil
	}
	return &ValidationError{
		Type:    AnomalyReencodeMismatch,
		Message: fmt.Sprintf("%s re-encoding differs in %d bytes (first at byte %d)", frame, len(diffs), diffs[0].Offset),
		Details: map[string]interface{}{"differing": len(diffs), "diffs": diffs},
	}
}

// RoundTripTelecommand checks the checksum of data, decodes it, validates
// the bounds, re-encodes and compares byte for byte. The decoded record is
// returned whenever decoding succeeded.
func (l Limits) RoundTripTelecommand(data []byte) (*Telecommand, *ValidationError) {
	if err := VerifyTelecommandChecksum(data); err != nil {
		return nil, Classify(err)
	}
	t, err := DecodeTelecommand(data)
	if err != nil {
		return nil, Classify(err)
	}
	if err := l.ValidateTelecommand(t); err != nil {
		return t, Classify(err)
	}
	encoded, err := EncodeTelecommand(t)
	if err != nil {
		return t, Classify(err)
	}
	return t, reencodeMismatch("telecommand", data, encoded)
}

// RoundTripTelemetry is RoundTripTelecommand for telemetry frames
func (l Limits) RoundTripTelemetry(data []byte) (*Telemetry, *ValidationError) {
	if err := VerifyTelemetryChecksum(data); err != nil {
		return nil, Classify(err)
	}
	t, err := DecodeTelemetry(data)
	if err != nil {
		return nil, Classify(err)
	}
	if err := l.ValidateTelemetry(t); err != nil {
		return t, Classify(err)
	}
	encoded, err := EncodeTelemetry(t)
	if err != nil {
		return t, Classify(err)
	}
	return t, reencodeMismatch("telemetry", data, encoded)
}

// RoundTripPixelFrame checks, decodes and re-encodes a pixel frame using
// the layout announced by tm
func RoundTripPixelFrame(data []byte, tm *Telemetry) (*PixelFrame, *ValidationError) {
	g, err := ComputeGeometry(tm)
	if err != nil {
		return nil, Classify(err)
	}
	if err := VerifyPixelChecksum(data, g); err != nil {
		return nil, Classify(err)
	}
	f, err := DecodePixelFrame(data, tm)
	if err != nil {
		return nil, Classify(err)
	}
	encoded, err := EncodePixelFrame(tm, f)
	if err != nil {
		return f, Classify(err)
	}
	return f, reencodeMismatch("pixel", data, encoded)
}
