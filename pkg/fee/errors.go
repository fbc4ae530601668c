// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import (
	"errors"
	"fmt"
)

var (
	ErrBufferExhausted     = errors.New("buffer exhausted")
	ErrLengthMismatch      = errors.New("frame length mismatch")
	ErrUnsupportedWidth    = errors.New("unsupported field width")
	ErrChecksumMismatch    = errors.New("checksum mismatch")
	ErrOutOfRange          = errors.New("field out of range")
	ErrInconsistentBinning = errors.New("band size not a multiple of binning size")
)

// RangeError reports the first field that failed bounds validation.
// Enumerated fields set Allowed instead of Min and Max.
type RangeError struct {
	Field   string
	Value   uint32
	Min     uint32
	Max     uint32
	Allowed []uint32
}

// Error implements the error interface
func (e *RangeError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("%s=%d out of range (valid %v)", e.Field, e.Value, e.Allowed)
	}
	return fmt.Sprintf("%s=%d out of range (valid %d-%d)", e.Field, e.Value, e.Min, e.Max)
}

// Is reports ErrOutOfRange so callers can match with errors.Is
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// ChecksumError carries the stored and recomputed trailer of a frame
type ChecksumError struct {
	Frame    string
	Stored   uint16
	Computed uint16
}

// Error implements the error interface
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%s checksum mismatch: stored 0x%04X, computed 0x%04X", e.Frame, e.Stored, e.Computed)
}

// Is reports ErrChecksumMismatch so callers can match with errors.Is
func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}
