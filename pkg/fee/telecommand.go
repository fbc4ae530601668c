// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import "fmt"

// Telecommand is one configuration snapshot sent to the FEE. The same
// record is echoed inside every telemetry frame as the last accepted command.
type Telecommand struct {
	Counter      uint16 // TC_COUNTER
	OpMode       OpMode // OPMODE
	ExposureTime uint32 // EXPO_TIME

	// Bias voltages (DU* fields)
	DuOutDrainVoltage       uint8
	DuResetVoltage          uint8
	DuDumpVoltage           uint8
	DuOutGateVoltage        uint8
	DuImgClockHighVoltage   uint8
	DuStgClockHighVoltage   uint8
	DuRegClockHighVoltage   uint8
	DuDumpClockHighVoltage  uint8
	DuResetClockHighVoltage uint8

	SmearCount     uint16             // NBSMEAR
	WindowStart    uint16             // WOISTART
	WindowSize     uint16             // WOISIZE
	SpatialBinning SpatialBinningMode // SPATIALBINNINGMODE

	// Clock timings
	FrameTransferTime         uint8 // FTPTIME
	ImgStgClockRiseFallTime   uint8 // IMGSTGCKRFTIME
	ImgStgClockOverlapTime    uint8 // IMGSTGCKOVTIME
	ImgStgClockPulseWidthTime uint8 // IMGSTGCKPWTIME
	RegLineAdvanceTime        uint8 // REGLINADVTIME
	LineAdvanceRegTime        uint8 // LINADVREGTIME
	RegClockPeriodTime        uint8 // RCKPTIME
	RegClockOverlapTime       uint8 // REGCKOVTIME
	R1RegClockOnTime          uint8 // R1REGCKONTIME
	R3RegClockOnTime          uint8 // R3REGCKONTIME
	R2ClockRiseDelayTime      uint8 // R2CKRISEDELTIME
	ResetClockOnTime          uint8 // RESETCKONTIME
	ResetClockFallDelayTime   uint8 // RESETCKFALLDELTIME
	Adc1Time                  uint8 // ADC1TIME
	Adc2Time                  uint8 // ADC2TIME
	Adc1ReadDelay             uint8 // ADC1RDDLY
	Adc2ReadDelay             uint8 // ADC2RDDLY

	DuLambda      uint16                         // DULAMBDA
	Bands         [NumBands]FrequencyBinningBand // FREQBINNINGBAND_1..5
	PixelMin      uint16                         // PIXEL_MIN
	PixelMax      uint16                         // PIXEL_MAX
	Pattern       SyntheticPattern               // SYNTPATTERN
	Cds           CdsParameter                   // CDSPARAMS
	HCSamples     uint16                         // HCNBSAMPLE
	TailSize      uint16                         // NBTAIL
	AcqStartDelay uint16                         // ACQSTARTDELAY
}

type tcr = Telecommand

func band(i int) field[tcr] {
	return scalar(fmt.Sprintf("FREQBINNINGBAND_%d", i+1), func(t *tcr) *FrequencyBinningBand { return &t.Bands[i] })
}

// telecommandFields is the wire order of the telecommand body, from
// TC_COUNTER through ACQSTARTDELAY
var telecommandFields = []field[tcr]{
	bounded("TC_COUNTER", 0, 65535, func(t *tcr) *uint16 { return &t.Counter }),
	bounded("OPMODE", 0, 2, func(t *tcr) *OpMode { return &t.OpMode }),
	bounded("EXPO_TIME", 400, 12000000, func(t *tcr) *uint32 { return &t.ExposureTime }),
	spare[tcr](1),
	bounded("DUOUTDRAINTVLTG", 0, 255, func(t *tcr) *uint8 { return &t.DuOutDrainVoltage }),
	bounded("DURESETVLTG", 0, 255, func(t *tcr) *uint8 { return &t.DuResetVoltage }),
	bounded("DUDUMPVLTG", 0, 255, func(t *tcr) *uint8 { return &t.DuDumpVoltage }),
	bounded("DUOUTGATEVLTG", 0, 255, func(t *tcr) *uint8 { return &t.DuOutGateVoltage }),
	bounded("DUIMGCKHVLTG", 0, 255, func(t *tcr) *uint8 { return &t.DuImgClockHighVoltage }),
	bounded("DUSTGCKHVLTG", 0, 255, func(t *tcr) *uint8 { return &t.DuStgClockHighVoltage }),
	bounded("DUREGCKHVLTG", 0, 255, func(t *tcr) *uint8 { return &t.DuRegClockHighVoltage }),
	bounded("DUDUMPCKHVLTG", 0, 255, func(t *tcr) *uint8 { return &t.DuDumpClockHighVoltage }),
	bounded("DURESETCKHVLTG", 0, 255, func(t *tcr) *uint8 { return &t.DuResetClockHighVoltage }),
	bounded("NBSMEAR", 0, 255, func(t *tcr) *uint16 { return &t.SmearCount }),
	bounded("WOISTART", 0, 1023, func(t *tcr) *uint16 { return &t.WindowStart }),
	bounded("WOISIZE", 0, 536, func(t *tcr) *uint16 { return &t.WindowSize }),
	bounded("SPATIALBINNINGMODE", 0, 1, func(t *tcr) *SpatialBinningMode { return &t.SpatialBinning }),
	bounded("FTPTIME", 0, 255, func(t *tcr) *uint8 { return &t.FrameTransferTime }),
	bounded("IMGSTGCKRFTIME", 0, 50, func(t *tcr) *uint8 { return &t.ImgStgClockRiseFallTime }),
	bounded("IMGSTGCKOVTIME", 0, 50, func(t *tcr) *uint8 { return &t.ImgStgClockOverlapTime }),
	bounded("IMGSTGCKPWTIME", 0, 80, func(t *tcr) *uint8 { return &t.ImgStgClockPulseWidthTime }),
	bounded("REGLINADVTIME", 0, 255, func(t *tcr) *uint8 { return &t.RegLineAdvanceTime }),
	bounded("LINADVREGTIME", 0, 255, func(t *tcr) *uint8 { return &t.LineAdvanceRegTime }),
	bounded("RCKPTIME", 0, 255, func(t *tcr) *uint8 { return &t.RegClockPeriodTime }),
	bounded("REGCKOVTIME", 0, 50, func(t *tcr) *uint8 { return &t.RegClockOverlapTime }),
	bounded("R1REGCKONTIME", 0, 255, func(t *tcr) *uint8 { return &t.R1RegClockOnTime }),
	bounded("R3REGCKONTIME", 0, 255, func(t *tcr) *uint8 { return &t.R3RegClockOnTime }),
	spare[tcr](1),
	bounded("R2CKRISEDELTIME", 0, 50, func(t *tcr) *uint8 { return &t.R2ClockRiseDelayTime }),
	bounded("RESETCKONTIME", 3, 50, func(t *tcr) *uint8 { return &t.ResetClockOnTime }),
	bounded("RESETCKFALLDELTIME", 0, 50, func(t *tcr) *uint8 { return &t.ResetClockFallDelayTime }),
	bounded("ADC1TIME", 0, 255, func(t *tcr) *uint8 { return &t.Adc1Time }),
	bounded("ADC2TIME", 0, 255, func(t *tcr) *uint8 { return &t.Adc2Time }),
	bounded("ADC1RDDLY", 0, 255, func(t *tcr) *uint8 { return &t.Adc1ReadDelay }),
	bounded("ADC2RDDLY", 0, 255, func(t *tcr) *uint8 { return &t.Adc2ReadDelay }),
	bounded("DULAMBDA", 0, 449, func(t *tcr) *uint16 { return &t.DuLambda }),
	band(0),
	band(1),
	band(2),
	band(3),
	band(4),
	bounded("PIXEL_MIN", 0, 65535, func(t *tcr) *uint16 { return &t.PixelMin }),
	bounded("PIXEL_MAX", 0, 65535, func(t *tcr) *uint16 { return &t.PixelMax }),
	scalar("SYNTPATTERN", func(t *tcr) *SyntheticPattern { return &t.Pattern }),
	scalar("CDSPARAMS", func(t *tcr) *CdsParameter { return &t.Cds }),
	bounded("HCNBSAMPLE", 1, 16, func(t *tcr) *uint16 { return &t.HCSamples }),
	bounded("NBTAIL", 0, 1023, func(t *tcr) *uint16 { return &t.TailSize }),
	bounded("ACQSTARTDELAY", 0, 7, func(t *tcr) *uint16 { return &t.AcqStartDelay }),
}

// telecommandFrame is the full 75-byte layout minus the checksum trailer
var telecommandFrame = append(append([]field[tcr]{}, telecommandFields...), spare[tcr](telecommandTailSpare))

// DecodeTelecommand parses a 75-byte telecommand frame. The checksum is not
// checked here; see VerifyTelecommandChecksum.
func DecodeTelecommand(data []byte) (*Telecommand, error) {
	c := NewCursor(data)
	t := &Telecommand{}

	if err := decodeFields(c, telecommandFrame, t); err != nil {
		return nil, fmt.Errorf("decode telecommand: %w", err)
	}
	if err := c.Skip(telecommandChecksumSize); err != nil {
		return nil, fmt.Errorf("decode telecommand: checksum: %w", err)
	}
	if err := c.Expect(len(data)); err != nil {
		return nil, fmt.Errorf("decode telecommand: %w", err)
	}

	return t, nil
}

// EncodeTelecommand serializes t into a 75-byte frame with its XOR8 trailer
func EncodeTelecommand(t *Telecommand) ([]byte, error) {
	buf := make([]byte, TelecommandSize)
	c := NewCursor(buf)

	if err := encodeFields(c, telecommandFrame, t); err != nil {
		return nil, fmt.Errorf("encode telecommand: %w", err)
	}
	if err := c.WriteRaw([]byte{XOR8(buf[:c.Offset()])}); err != nil {
		return nil, fmt.Errorf("encode telecommand: checksum: %w", err)
	}
	if err := c.Expect(TelecommandSize); err != nil {
		return nil, fmt.Errorf("encode telecommand: %w", err)
	}

	return buf, nil
}

// VerifyTelecommandChecksum recomputes the XOR8 over bytes 0-73 and compares
// it with byte 74
func VerifyTelecommandChecksum(data []byte) error {
	if len(data) != TelecommandSize {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrLengthMismatch, len(data), TelecommandSize)
	}
	body := data[:TelecommandSize-telecommandChecksumSize]
	stored := data[TelecommandSize-telecommandChecksumSize]
	if computed := XOR8(body); computed != stored {
		return &ChecksumError{Frame: "telecommand", Stored: uint16(stored), Computed: uint16(computed)}
	}
	return nil
}
