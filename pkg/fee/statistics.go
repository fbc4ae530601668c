// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import (
	"fmt"
	"time"
)

// Statistics tracks frame verification results
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames          uint64
	IdenticalFrames      uint64
	ChecksumErrors       uint64
	DecodeErrors         uint64
	LengthMismatches     uint64
	OutOfRange           uint64
	InconsistentBinning  uint64
	ReencodeMismatches   uint64
	MismatchedByteTotals uint64
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records the outcome of one frame. A nil anomaly counts the frame
// as identical after re-encoding.
func (s *Statistics) Update(anomaly *ValidationError) {
	s.TotalFrames++
	s.LastUpdateTime = time.Now()

	if anomaly == nil {
		s.IdenticalFrames++
		return
	}

	switch anomaly.Type {
	case AnomalyChecksumError:
		s.ChecksumErrors++
	case AnomalyLengthMismatch:
		s.LengthMismatches++
	case AnomalyOutOfRange:
		s.OutOfRange++
	case AnomalyInconsistentBinning:
		s.InconsistentBinning++
	case AnomalyReencodeMismatch:
		s.ReencodeMismatches++
		if n, ok := anomaly.Details["differing"].(int); ok {
			s.MismatchedByteTotals += uint64(n)
		}
	default:
		s.DecodeErrors++
	}
}

// Failures returns the number of frames that were not identical
func (s *Statistics) Failures() uint64 {
	return s.TotalFrames - s.IdenticalFrames
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	var identicalPercent float64
	if s.TotalFrames > 0 {
		identicalPercent = float64(s.IdenticalFrames) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := s.LastUpdateTime.Sub(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.1f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:     %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Identical Frames: %8d (%.1f%%)\n", s.IdenticalFrames, identicalPercent)

	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors:  %8d\n", s.ChecksumErrors)
	}
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:    %8d\n", s.DecodeErrors)
	}
	if s.LengthMismatches > 0 {
		result += fmt.Sprintf("Length Mismatch:  %8d\n", s.LengthMismatches)
	}
	if s.OutOfRange > 0 {
		result += fmt.Sprintf("Out Of Range:     %8d\n", s.OutOfRange)
	}
	if s.InconsistentBinning > 0 {
		result += fmt.Sprintf("Bad Binning:      %8d\n", s.InconsistentBinning)
	}
	if s.ReencodeMismatches > 0 {
		result += fmt.Sprintf("Re-encode Diffs:  %8d (%d bytes)\n", s.ReencodeMismatches, s.MismatchedByteTotals)
	}

	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
