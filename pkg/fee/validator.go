// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import (
	"errors"
	"fmt"
	"maps"
)

// Range is an inclusive [Min, Max] legal range
type Range struct {
	Min uint32 `yaml:"min"`
	Max uint32 `yaml:"max"`
}

// Contains reports whether v lies within the range
func (r Range) Contains(v uint32) bool {
	return v >= r.Min && v <= r.Max
}

// Limits maps a field name to its legal range. Fields missing from the map
// are not checked.
type Limits map[string]Range

// Compound field limit names
const (
	LimitCdsMode          = "CDSPARAMS.MODE"
	LimitCdsDigitalOffset = "CDSPARAMS.DIGITAL_OFFSET"
)

// BandLimitNames returns the binning and band size limit names of band i (0-4)
func BandLimitNames(i int) (binning, size string) {
	prefix := fmt.Sprintf("FREQBINNINGBAND_%d", i+1)
	return prefix + ".BINNINGSIZE", prefix + ".BANDSIZE"
}

var defaultLimits = buildDefaultLimits()

func buildDefaultLimits() Limits {
	l := Limits{}
	for _, f := range telecommandFields {
		if f.bounded {
			l[f.name] = Range{f.min, f.max}
		}
	}
	l[LimitCdsMode] = Range{0, 2}
	l[LimitCdsDigitalOffset] = Range{0, 1023}
	for i := range NumBands {
		binning, size := BandLimitNames(i)
		// Checked on the decoded value, so a stored 7 (binning 8) is rejected
		l[binning] = Range{0, 7}
		l[size] = Range{0, 450}
	}
	for _, f := range sensorFields {
		l[f.name] = Range{f.min, f.max}
	}
	return l
}

// DefaultLimits returns a copy of the documented bounds table
func DefaultLimits() Limits {
	return maps.Clone(defaultLimits)
}

// Merge returns a copy of l with the entries of override replacing its own
func (l Limits) Merge(override Limits) Limits {
	out := maps.Clone(l)
	if out == nil {
		out = Limits{}
	}
	maps.Copy(out, override)
	return out
}

func (l Limits) check(name string, v uint32) error {
	r, ok := l[name]
	if !ok || r.Contains(v) {
		return nil
	}
	return &RangeError{Field: name, Value: v, Min: r.Min, Max: r.Max}
}

// ValidateTelecommand checks t against the default bounds table
func ValidateTelecommand(t *Telecommand) error {
	return defaultLimits.ValidateTelecommand(t)
}

// ValidateTelecommand checks scalar fields in wire order, then the CDS
// parameter, then bands 1-5, then the synthetic pattern. The first
// violation is returned as a *RangeError.
func (l Limits) ValidateTelecommand(t *Telecommand) error {
	for _, f := range telecommandFields {
		if !f.bounded {
			continue
		}
		if err := l.check(f.name, f.get(t)); err != nil {
			return err
		}
	}

	mode, offset := DecodeCdsParameter(uint16(t.Cds))
	if err := l.check(LimitCdsMode, uint32(mode)); err != nil {
		return err
	}
	if err := l.check(LimitCdsDigitalOffset, uint32(offset)); err != nil {
		return err
	}

	for i, b := range t.Bands {
		binningName, sizeName := BandLimitNames(i)
		binning, size := DecodeFrequencyBinningBand(uint16(b))
		if err := l.check(binningName, uint32(binning)); err != nil {
			return err
		}
		if err := l.check(sizeName, uint32(size)); err != nil {
			return err
		}
	}

	switch t.Pattern {
	case SyntheticPatternNone, SyntheticPattern1, SyntheticPattern2:
	default:
		return &RangeError{
			Field:   "SYNTPATTERN",
			Value:   uint32(t.Pattern),
			Allowed: []uint32{uint32(SyntheticPatternNone), uint32(SyntheticPattern1), uint32(SyntheticPattern2)},
		}
	}

	return nil
}

// ValidateTelemetry checks the sensor counts against the default bounds table
func ValidateTelemetry(t *Telemetry) error {
	return defaultLimits.ValidateTelemetry(t)
}

// ValidateTelemetry reports the first sensor word outside its hardware
// count range. The echoed command is not checked; use ValidateTelecommand
// on t.Command for that.
func (l Limits) ValidateTelemetry(t *Telemetry) error {
	for _, f := range sensorFields {
		if err := l.check(f.name, f.get(t)); err != nil {
			return err
		}
	}
	return nil
}

// AnomalyType classifies a frame that failed verification
type AnomalyType int

const (
	AnomalyDecodeError AnomalyType = iota
	AnomalyLengthMismatch
	AnomalyChecksumError
	AnomalyOutOfRange
	AnomalyInconsistentBinning
	AnomalyReencodeMismatch
)

// String returns the anomaly name
func (a AnomalyType) String() string {
	switch a {
	case AnomalyDecodeError:
		return "DECODE_ERROR"
	case AnomalyLengthMismatch:
		return "LENGTH_MISMATCH"
	case AnomalyChecksumError:
		return "CHECKSUM_ERROR"
	case AnomalyOutOfRange:
		return "OUT_OF_RANGE"
	case AnomalyInconsistentBinning:
		return "INCONSISTENT_BINNING"
	case AnomalyReencodeMismatch:
		return "REENCODE_MISMATCH"
	default:
		return fmt.Sprintf("ANOMALY_%d", int(a))
	}
}

// ValidationError represents a frame verification failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// Classify maps a codec error onto an anomaly
func Classify(err error) *ValidationError {
	if err == nil {
		return nil
	}

	v := &ValidationError{Type: AnomalyDecodeError, Message: err.Error(), Details: map[string]interface{}{}}

	var rangeErr *RangeError
	var sumErr *ChecksumError
	switch {
	case errors.As(err, &sumErr):
		v.Type = AnomalyChecksumError
		v.Details["stored"] = sumErr.Stored
		v.Details["computed"] = sumErr.Computed
	case errors.As(err, &rangeErr):
		v.Type = AnomalyOutOfRange
		v.Details["field"] = rangeErr.Field
		v.Details["value"] = rangeErr.Value
	case errors.Is(err, ErrInconsistentBinning):
		v.Type = AnomalyInconsistentBinning
	case errors.Is(err, ErrLengthMismatch), errors.Is(err, ErrBufferExhausted):
		v.Type = AnomalyLengthMismatch
	}

	return v
}
