// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import (
	"fmt"
	"strings"
)

// FormatOpMode returns the human-readable name for an operating mode
func FormatOpMode(m OpMode) string {
	switch m {
	case OpModeSafe:
		return "SAFE"
	case OpModeStandby:
		return "STANDBY"
	case OpModeOperational:
		return "OPERATIONAL"
	default:
		return fmt.Sprintf("UNKNOWN_%d", uint16(m))
	}
}

// FormatSyntheticPattern returns the human-readable name for a test pattern
func FormatSyntheticPattern(p SyntheticPattern) string {
	switch p {
	case SyntheticPatternNone:
		return "NONE"
	case SyntheticPattern1:
		return "PATTERN_1"
	case SyntheticPattern2:
		return "PATTERN_2"
	default:
		return fmt.Sprintf("UNKNOWN_%d", uint16(p))
	}
}

// FormatCdsMode returns the human-readable name for a CDS mode
func FormatCdsMode(m CdsMode) string {
	switch m {
	case CdsDefault:
		return "DEFAULT"
	case CdsReferenceLevel:
		return "REFERENCE_LEVEL"
	case CdsVideoLevel:
		return "VIDEO_LEVEL"
	default:
		return fmt.Sprintf("UNKNOWN_%d", uint16(m))
	}
}

// FormatTelecommand formats a telecommand into a human-readable string
func FormatTelecommand(t *Telecommand) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TC #%d %s expo=%d\n", t.Counter, FormatOpMode(t.OpMode), t.ExposureTime)
	writeFields(&b, "  ", telecommandFields, t)
	return b.String()
}

// FormatTelemetry formats a telemetry frame into a human-readable string
func FormatTelemetry(t *Telemetry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TM #%d  echo TC #%d %s  TC_ERROR=%s  VAU_ERROR=%s\n",
		t.Counter, t.Command.Counter, FormatOpMode(t.Command.OpMode), t.TCError, t.VAUError)
	b.WriteString("  echoed command:\n")
	writeFields(&b, "    ", telecommandFields, &t.Command)
	b.WriteString("  sensors:\n")
	writeFields(&b, "    ", sensorFields, t)
	return b.String()
}

func writeFields[R any](b *strings.Builder, indent string, fields []field[R], r *R) {
	for _, f := range fields {
		if f.spare() {
			continue
		}
		fmt.Fprintf(b, "%s%-20s %s\n", indent, f.name, formatValue(f.name, f.get(r)))
	}
}

// formatValue decorates the compound and enumerated fields
func formatValue(name string, v uint32) string {
	switch {
	case name == "OPMODE":
		return fmt.Sprintf("%d (%s)", v, FormatOpMode(OpMode(v)))
	case name == "SYNTPATTERN":
		return fmt.Sprintf("%d (%s)", v, FormatSyntheticPattern(SyntheticPattern(v)))
	case name == "CDSPARAMS":
		p := CdsParameter(v)
		return fmt.Sprintf("0x%04X (mode=%s offset=%d)", v, FormatCdsMode(p.Mode()), p.DigitalOffset())
	case strings.HasPrefix(name, "FREQBINNINGBAND_"):
		fb := FrequencyBinningBand(v)
		if fb.Disabled() {
			return "0x0000 (disabled)"
		}
		return fmt.Sprintf("0x%04X (binning=%d band=%d)", v, fb.BinningSize(), fb.BandSize())
	default:
		return fmt.Sprintf("%d", v)
	}
}

// FormatGeometry formats a pixel-frame geometry on one line
func FormatGeometry(g PixelGeometry) string {
	if g.Empty() {
		return fmt.Sprintf("empty frame (%d bytes)", g.TotalBytes)
	}
	return fmt.Sprintf("rows=%d (data=%d smear=%d overscan=%d) cols/CCD=%d params/row=%d bytes=%d",
		g.Rows(), g.DataRows, g.SmearRows, g.OverscanRows, g.ColumnsPerCCD, g.ParamsPerRow, g.TotalBytes)
}

// FormatPixelFrame summarizes a pixel frame: geometry, voltage references
// and the sample range of each CCD
func FormatPixelFrame(f *PixelFrame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PTD #%d %s\n", f.Counter, FormatGeometry(f.Geometry))
	fmt.Fprintf(&b, "  voltage refs: %v\n", f.VoltageRefs)
	for i, m := range f.CCD {
		if len(m.Data) == 0 {
			continue
		}
		lo, hi := m.Data[0], m.Data[0]
		for _, v := range m.Data {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		fmt.Fprintf(&b, "  CCD%d: %dx%d min=%d max=%d\n", i, m.Rows, m.Cols, lo, hi)
	}
	return b.String()
}

// FormatPhysical formats calibrated sensor values
func FormatPhysical(p Physical) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  temperatures: CCD1=%.2fK CCD2=%.2fK VAU=%.2fK FPPE=%.2fK\n", p.CCDTemp1, p.CCDTemp2, p.VAUTemp, p.FPPETemp)
	fmt.Fprintf(&b, "  bias: VODE=%.3f VODF=%.3f VODG=%.3f VODH=%.3f VRD=%.3f VDD=%.3f VOG=%.3f\n",
		p.VODE, p.VODF, p.VODG, p.VODH, p.VRD, p.VDD, p.VOG)
	fmt.Fprintf(&b, "  clocks: IPHIH=%.3f SPHIH=%.3f RPHIH=%.3f PHIRH=%.3f VDGH=%.3f\n",
		p.IPHIH, p.SPHIH, p.RPHIH, p.PHIRH, p.VDGH)
	fmt.Fprintf(&b, "  supplies: VANAP=%.3f VANAN=%.3f VDET=%.3f VDRV=%.3f VDIG=%.3f IDIG=%.4fA\n",
		p.VANAP, p.VANAN, p.VDET, p.VDRV, p.VDIG, p.IDIG)
	return b.String()
}
