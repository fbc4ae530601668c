// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package fee provides a Go implementation of the CCD front-end electronics
// (FEE) packet formats.
//
// Three frame kinds are exchanged with the FEE unit: a fixed 75-byte
// telecommand (TC), a fixed 140-byte telemetry frame (TM) that echoes the
// last accepted telecommand, and a variable-size pixel-data frame (PTD)
// whose row and column layout is derived from the telemetry echo. This
// package encodes and decodes all three, validates checksums and field
// ranges, and computes pixel-frame geometry.
package fee

// Frame sizes in bytes
const (
	TelecommandSize = 75
	TelemetrySize   = 140
)

// Checksum trailer sizes
const (
	telecommandChecksumSize = 1
	telemetryChecksumSize   = 2
	pixelChecksumSize       = 2
)

// Spare regions
const (
	telecommandTailSpare = 4
	telemetryTailSpare   = 16
)

// Pixel-data frame layout constants
const (
	NumCCD            = 2 // independent CCDs carried in every pixel frame
	SmearRows         = 2 // smear rows per frame, always present
	DarkColumns       = 2 // dark reference columns per CCD per row
	VoltageReferences = 4
	NumBands          = 5 // frequency binning bands per telecommand

	readoutChannels   = 2 // FPGA up/bottom channels
	pixelCounterSize  = 4
	pixelParamSize    = 2
	pixelOverheadSize = pixelCounterSize + pixelParamSize*VoltageReferences + pixelChecksumSize
)

// Hardware count range of the telemetry sensor words
const (
	SensorCountMin = 0
	SensorCountMax = 65520
)

// OpMode is the operating mode carried in OPMODE
type OpMode uint16

// Operating mode values
const (
	OpModeSafe        OpMode = 0
	OpModeStandby     OpMode = 1
	OpModeOperational OpMode = 2
)

// SpatialBinningMode selects row binning (SPATIALBINNINGMODE)
type SpatialBinningMode uint16

// Spatial binning values
const (
	SpatialBinningDisabled SpatialBinningMode = 0
	SpatialBinningEnabled  SpatialBinningMode = 1
)

// SyntheticPattern selects a test pattern generated by the FPGA (SYNTPATTERN)
type SyntheticPattern uint16

// Synthetic pattern values
const (
	SyntheticPatternNone SyntheticPattern = 0
	SyntheticPattern1    SyntheticPattern = 240
	SyntheticPattern2    SyntheticPattern = 241
)

// CdsMode is the correlated double sampling mode held in CDSPARAMS bits 14-15
type CdsMode uint16

// CDS mode values
const (
	CdsDefault        CdsMode = 0
	CdsReferenceLevel CdsMode = 1
	CdsVideoLevel     CdsMode = 2
)

// TCError is the TC_ERROR bitmask reported in telemetry
type TCError uint16

// TC_ERROR bits
const (
	TCErrWrongDestination     TCError = 0x8000
	TCErrWrongLength          TCError = 0x4000
	TCErrCounter              TCError = 0x2000
	TCErrChecksum             TCError = 0x1000
	TCErrFieldValue           TCError = 0x0800
	TCErrWrongTimeWindow      TCError = 0x0400
	TCErrMultipleInPeriod     TCError = 0x0200
	TCErrNoneInPeriod         TCError = 0x0100
	TCErrBufferEDAC           TCError = 0x0080
	TCErrSpWDisconnection     TCError = 0x0040
	TCErrSpWParity            TCError = 0x0020
	TCErrSpWEscapeSequence    TCError = 0x0010
	TCErrSpWCharacterSequence TCError = 0x0008
	TCErrSpWCredit            TCError = 0x0004
)

// VAUError is the VAU_ERROR application-level bitmask reported in telemetry
type VAUError uint16

// VAU_ERROR bits
const (
	VAUErrAcqStart            VAUError = 0x8000
	VAUErrPixelTM             VAUError = 0x4000
	VAUErrHCAcquisition       VAUError = 0x2000
	VAUErrTCExecution         VAUError = 0x1000
	VAUErrTasks               VAUError = 0x0800
	VAUErrSEFI                VAUError = 0x0400
	VAUErrPixelBufferOverflow VAUError = 0x0200
)
