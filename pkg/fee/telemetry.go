// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import (
	"fmt"
	"strings"
)

// Sensors holds the raw hardware counts of the housekeeping channels
type Sensors struct {
	CCDTemp1 uint16 // CCDTEMP_MEAS1
	CCDTemp2 uint16 // CCDTEMP_MEAS2
	VAUTemp  uint16 // VAUTEMP_MEAS
	FPPETemp uint16 // FPPETEMP_MEAS
	VODE     uint16
	VODF     uint16
	VODG     uint16
	VODH     uint16
	VRD      uint16
	VDD      uint16
	VOG      uint16
	IPHIH    uint16
	SPHIH    uint16
	RPHIH    uint16
	PHIRH    uint16
	VDGH     uint16
	VANAP    uint16
	VANAN    uint16
	VDET     uint16
	VDRV     uint16
	VDIG     uint16
	IDIG     uint16
}

// Telemetry is one status snapshot returned by the FEE
type Telemetry struct {
	Counter  uint32      // TM_COUNTER
	Command  Telecommand // last accepted telecommand
	Sensors  Sensors
	TCError  TCError  // TC_ERROR
	VAUError VAUError // VAU_ERROR
}

type tmr = Telemetry

func sensor(name string, ref func(s *Sensors) *uint16) field[tmr] {
	return bounded(name, SensorCountMin, SensorCountMax, func(t *tmr) *uint16 { return ref(&t.Sensors) })
}

func echo(t *tmr) *Telecommand {
	return &t.Command
}

// sensorFields is the wire order of the 22 housekeeping words
var sensorFields = []field[tmr]{
	sensor("CCDTEMP_MEAS1", func(s *Sensors) *uint16 { return &s.CCDTemp1 }),
	sensor("CCDTEMP_MEAS2", func(s *Sensors) *uint16 { return &s.CCDTemp2 }),
	sensor("VAUTEMP_MEAS", func(s *Sensors) *uint16 { return &s.VAUTemp }),
	sensor("FPPETEMP_MEAS", func(s *Sensors) *uint16 { return &s.FPPETemp }),
	sensor("VODE", func(s *Sensors) *uint16 { return &s.VODE }),
	sensor("VODF", func(s *Sensors) *uint16 { return &s.VODF }),
	sensor("VODG", func(s *Sensors) *uint16 { return &s.VODG }),
	sensor("VODH", func(s *Sensors) *uint16 { return &s.VODH }),
	sensor("VRD", func(s *Sensors) *uint16 { return &s.VRD }),
	sensor("VDD", func(s *Sensors) *uint16 { return &s.VDD }),
	sensor("VOG", func(s *Sensors) *uint16 { return &s.VOG }),
	sensor("IPHIH", func(s *Sensors) *uint16 { return &s.IPHIH }),
	sensor("SPHIH", func(s *Sensors) *uint16 { return &s.SPHIH }),
	sensor("RPHIH", func(s *Sensors) *uint16 { return &s.RPHIH }),
	sensor("PHIRH", func(s *Sensors) *uint16 { return &s.PHIRH }),
	sensor("VDGH", func(s *Sensors) *uint16 { return &s.VDGH }),
	sensor("VANAP", func(s *Sensors) *uint16 { return &s.VANAP }),
	sensor("VANAN", func(s *Sensors) *uint16 { return &s.VANAN }),
	sensor("VDET", func(s *Sensors) *uint16 { return &s.VDET }),
	sensor("VDRV", func(s *Sensors) *uint16 { return &s.VDRV }),
	sensor("VDIG", func(s *Sensors) *uint16 { return &s.VDIG }),
	sensor("IDIG", func(s *Sensors) *uint16 { return &s.IDIG }),
}

// telemetryFrame is the 138-byte telemetry body. The echoed command runs
// through NBTAIL; its ACQSTARTDELAY is carried after the error masks.
var telemetryFrame = buildTelemetryFrame()

func buildTelemetryFrame() []field[tmr] {
	fields := []field[tmr]{
		scalar("TM_COUNTER", func(t *tmr) *uint32 { return &t.Counter }),
	}

	last := len(telecommandFields) - 1
	for _, f := range telecommandFields[:last] {
		fields = append(fields, lift(f, echo))
	}
	fields = append(fields, sensorFields...)
	fields = append(fields,
		scalar("TC_ERROR", func(t *tmr) *TCError { return &t.TCError }),
		scalar("VAU_ERROR", func(t *tmr) *VAUError { return &t.VAUError }),
		lift(telecommandFields[last], echo),
		spare[tmr](telemetryTailSpare),
	)
	return fields
}

// DecodeTelemetry parses a 140-byte telemetry frame. The checksum is not
// checked here; see VerifyTelemetryChecksum.
func DecodeTelemetry(data []byte) (*Telemetry, error) {
	c := NewCursor(data)
	t := &Telemetry{}

	if err := decodeFields(c, telemetryFrame, t); err != nil {
		return nil, fmt.Errorf("decode telemetry: %w", err)
	}
	if err := c.Skip(telemetryChecksumSize); err != nil {
		return nil, fmt.Errorf("decode telemetry: checksum: %w", err)
	}
	if err := c.Expect(len(data)); err != nil {
		return nil, fmt.Errorf("decode telemetry: %w", err)
	}

	return t, nil
}

// EncodeTelemetry serializes t into a 140-byte frame with its XOR16 trailer
func EncodeTelemetry(t *Telemetry) ([]byte, error) {
	buf := make([]byte, TelemetrySize)
	c := NewCursor(buf)

	if err := encodeFields(c, telemetryFrame, t); err != nil {
		return nil, fmt.Errorf("encode telemetry: %w", err)
	}
	if err := c.WriteRaw(putChecksum16(XOR16(buf[:c.Offset()]))); err != nil {
		return nil, fmt.Errorf("encode telemetry: checksum: %w", err)
	}
	if err := c.Expect(TelemetrySize); err != nil {
		return nil, fmt.Errorf("encode telemetry: %w", err)
	}

	return buf, nil
}

// VerifyTelemetryChecksum recomputes the XOR16 over bytes 0-137 and
// compares it with the trailer
func VerifyTelemetryChecksum(data []byte) error {
	if len(data) != TelemetrySize {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrLengthMismatch, len(data), TelemetrySize)
	}
	return verifyChecksum16("telemetry", data)
}

func verifyChecksum16(frame string, data []byte) error {
	n := len(data) - 2
	stored := storedChecksum16(data[n:])
	if computed := XOR16(data[:n]); computed != stored {
		return &ChecksumError{Frame: frame, Stored: stored, Computed: computed}
	}
	return nil
}

var tcErrorNames = []struct {
	bit  TCError
	name string
}{
	{TCErrWrongDestination, "WRONG_DESTINATION"},
	{TCErrWrongLength, "WRONG_LENGTH"},
	{TCErrCounter, "COUNTER"},
	{TCErrChecksum, "CHECKSUM"},
	{TCErrFieldValue, "FIELD_VALUE"},
	{TCErrWrongTimeWindow, "WRONG_TIME_WINDOW"},
	{TCErrMultipleInPeriod, "MULTIPLE_TC_IN_PERIOD"},
	{TCErrNoneInPeriod, "NO_TC_IN_PERIOD"},
	{TCErrBufferEDAC, "BUFFER_EDAC"},
	{TCErrSpWDisconnection, "SPW_DISCONNECTION"},
	{TCErrSpWParity, "SPW_PARITY"},
	{TCErrSpWEscapeSequence, "SPW_ESCAPE_SEQUENCE"},
	{TCErrSpWCharacterSequence, "SPW_CHARACTER_SEQUENCE"},
	{TCErrSpWCredit, "SPW_CREDIT"},
}

// Flags returns the names of the set bits, most significant first
func (e TCError) Flags() []string {
	var names []string
	for _, n := range tcErrorNames {
		if e&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	return names
}

// String implements fmt.Stringer
func (e TCError) String() string {
	return flagString(uint16(e), e.Flags())
}

var vauErrorNames = []struct {
	bit  VAUError
	name string
}{
	{VAUErrAcqStart, "ACQSTART"},
	{VAUErrPixelTM, "PIXEL_TM_INTERRUPTED"},
	{VAUErrHCAcquisition, "HC_ACQUISITION_INTERRUPTED"},
	{VAUErrTCExecution, "TC_EXECUTION_INTERRUPTED"},
	{VAUErrTasks, "TASKS_INTERRUPTED"},
	{VAUErrSEFI, "SEFI"},
	{VAUErrPixelBufferOverflow, "PIXEL_BUFFER_OVERFLOW"},
}

// Flags returns the names of the set bits, most significant first
func (e VAUError) Flags() []string {
	var names []string
	for _, n := range vauErrorNames {
		if e&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	return names
}

// String implements fmt.Stringer
func (e VAUError) String() string {
	return flagString(uint16(e), e.Flags())
}

func flagString(raw uint16, names []string) string {
	if raw == 0 {
		return "NONE"
	}
	if len(names) == 0 {
		return fmt.Sprintf("0x%04X", raw)
	}
	return fmt.Sprintf("0x%04X (%s)", raw, strings.Join(names, "|"))
}
