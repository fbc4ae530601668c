// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// validTelecommand returns the smallest operational command that passes
// bounds validation: 10 window rows, no bands, one HC sample
func validTelecommand() Telecommand {
	return Telecommand{
		Counter:          1,
		OpMode:           OpModeOperational,
		ExposureTime:     400,
		WindowSize:       10,
		ResetClockOnTime: 3,
		HCSamples:        1,
	}
}

// populatedTelecommand sets every field to a distinct legal value
func populatedTelecommand() Telecommand {
	return Telecommand{
		Counter:                   0x1234,
		OpMode:                    OpModeOperational,
		ExposureTime:              1_000_000,
		DuOutDrainVoltage:         10,
		DuResetVoltage:            11,
		DuDumpVoltage:             12,
		DuOutGateVoltage:          13,
		DuImgClockHighVoltage:     14,
		DuStgClockHighVoltage:     15,
		DuRegClockHighVoltage:     16,
		DuDumpClockHighVoltage:    17,
		DuResetClockHighVoltage:   18,
		SmearCount:                19,
		WindowStart:               100,
		WindowSize:                6,
		SpatialBinning:            SpatialBinningDisabled,
		FrameTransferTime:         20,
		ImgStgClockRiseFallTime:   21,
		ImgStgClockOverlapTime:    22,
		ImgStgClockPulseWidthTime: 23,
		RegLineAdvanceTime:        24,
		LineAdvanceRegTime:        25,
		RegClockPeriodTime:        26,
		RegClockOverlapTime:       27,
		R1RegClockOnTime:          28,
		R3RegClockOnTime:          29,
		R2ClockRiseDelayTime:      30,
		ResetClockOnTime:          31,
		ResetClockFallDelayTime:   32,
		Adc1Time:                  33,
		Adc2Time:                  34,
		Adc1ReadDelay:             35,
		Adc2ReadDelay:             36,
		DuLambda:                  400,
		Bands: [NumBands]FrequencyBinningBand{
			NewFrequencyBinningBand(1, 4),
			NewFrequencyBinningBand(2, 8),
			0,
			NewFrequencyBinningBand(3, 9),
			0,
		},
		PixelMin:      100,
		PixelMax:      60000,
		Pattern:       SyntheticPattern1,
		Cds:           NewCdsParameter(CdsReferenceLevel, 512),
		HCSamples:     4,
		TailSize:      3,
		AcqStartDelay: 5,
	}
}

// telemetryEchoing wraps cmd in an error-free telemetry frame
func telemetryEchoing(cmd Telecommand) *Telemetry {
	return &Telemetry{Counter: 7, Command: cmd}
}

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}
