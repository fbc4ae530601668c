// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import (
	"errors"
	"fmt"
	"math"
)

// ErrCalibration is returned when a sensor count cannot be converted
var ErrCalibration = errors.New("calibration failed")

// CCD PT1000 readout: resistance = count*gain + offset, then a quadratic
const (
	ccdTempGain   = 4.82e-2
	ccdTempOffset = 708.6
	ccdTempA      = 4.53e1
	ccdTempB      = 1.88e-1
	ccdTempC      = 4.08e-5
)

// VAU and FPPE NTC divider followed by a Steinhart-Hart curve
const (
	ntcA = 8.889e-4
	ntcB = 2.449e-4
	ntcC = 1.238e-7
	ntcD = 8.059e-4 // volts per count
	ntcE = 3.830e3  // divider resistance
	ntcF = 2.5      // divider supply
)

// Linear gains, volts (or amps for IDIG) per averaged count
const (
	gainVOD   = 8.864e-3
	gainVRD   = 5.794e-3
	gainVDD   = 8.864e-3
	gainVOG   = 1.471e-3
	gainIPHIH = 3.352e-3
	gainSPHIH = 3.352e-3
	gainRPHIH = 3.352e-3
	gainPHIRH = 3.892e-3
	gainVDGH  = 3.892e-3
	gainVDIG  = 1.612e-3
	gainVDRV  = 8.864e-3
	gainVANAP = 1.612e-3
	gainVANAN = -1.733e-3
	gainVDET  = 2.627e-3
	gainIDIG  = 3.941e-4
)

// Physical is a telemetry frame's sensor block in physical units
type Physical struct {
	CCDTemp1 float64 // K
	CCDTemp2 float64 // K
	VAUTemp  float64 // K
	FPPETemp float64 // K
	VODE     float64
	VODF     float64
	VODG     float64
	VODH     float64
	VRD      float64
	VDD      float64
	VOG      float64
	IPHIH    float64
	SPHIH    float64
	RPHIH    float64
	PHIRH    float64
	VDGH     float64
	VANAP    float64
	VANAN    float64
	VDET     float64
	VDRV     float64
	VDIG     float64
	IDIG     float64 // A
}

// Calibrate converts the raw sensor counts of tm to physical units. Every
// count is first averaged over HCNBSAMPLE hardware samples.
func Calibrate(tm *Telemetry) (Physical, error) {
	n := float64(tm.Command.HCSamples)
	if n == 0 {
		return Physical{}, fmt.Errorf("%w: HCNBSAMPLE is zero", ErrCalibration)
	}
	s := &tm.Sensors
	avg := func(count uint16) float64 { return float64(count) / n }

	var p Physical
	var err error

	p.CCDTemp1 = ccdTemperature(avg(s.CCDTemp1))
	p.CCDTemp2 = ccdTemperature(avg(s.CCDTemp2))
	if p.VAUTemp, err = ntcTemperature(avg(s.VAUTemp)); err != nil {
		return Physical{}, fmt.Errorf("VAUTEMP_MEAS: %w", err)
	}
	if p.FPPETemp, err = ntcTemperature(avg(s.FPPETemp)); err != nil {
		return Physical{}, fmt.Errorf("FPPETEMP_MEAS: %w", err)
	}

	p.VODE = gainVOD * avg(s.VODE)
	p.VODF = gainVOD * avg(s.VODF)
	p.VODG = gainVOD * avg(s.VODG)
	p.VODH = gainVOD * avg(s.VODH)
	p.VRD = gainVRD * avg(s.VRD)
	p.VDD = gainVDD * avg(s.VDD)
	p.VOG = gainVOG * avg(s.VOG)

	p.IPHIH = gainIPHIH * avg(s.IPHIH)
	p.SPHIH = gainSPHIH * avg(s.SPHIH)
	p.RPHIH = gainRPHIH * avg(s.RPHIH)
	p.PHIRH = gainPHIRH * avg(s.PHIRH)
	p.VDGH = gainVDGH * avg(s.VDGH)

	p.VDIG = gainVDIG * avg(s.VDIG)
	p.VDRV = gainVDRV * avg(s.VDRV)
	p.VANAP = gainVANAP * avg(s.VANAP)
	p.VANAN = gainVANAN * avg(s.VANAN)
	p.VDET = gainVDET * avg(s.VDET)

	p.IDIG = gainIDIG * avg(s.IDIG)

	return p, nil
}

func ccdTemperature(count float64) float64 {
	r := count*ccdTempGain + ccdTempOffset
	return ccdTempA + ccdTempB*r + ccdTempC*r*r
}

func ntcTemperature(count float64) (float64, error) {
	v := count * ntcD
	den := ntcF - v
	if den == 0 {
		return 0, fmt.Errorf("%w: divider denominator is zero", ErrCalibration)
	}
	r := v * ntcE / den
	if r <= 0 {
		return 0, fmt.Errorf("%w: thermistor resistance %.3f is not positive", ErrCalibration, r)
	}
	ln := math.Log(r)
	return 1 / (ntcA + ntcB*ln + ntcC*ln*ln), nil
}
