// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

// FrequencyBinningBand is a FREQBINNINGBAND_n word:
//
//	bits 13-15  binning size - 1
//	bits  9-12  spare
//	bits  0-8   band size in pixels
//
// The raw word is kept so spare bits survive a decode/encode round-trip.
type FrequencyBinningBand uint16

// BinningSize returns the binning size with the +1 offset applied
func (f FrequencyBinningBand) BinningSize() uint16 {
	b, _ := DecodeFrequencyBinningBand(uint16(f))
	return b
}

// BandSize returns the band length in pixels
func (f FrequencyBinningBand) BandSize() uint16 {
	_, b := DecodeFrequencyBinningBand(uint16(f))
	return b
}

// Disabled reports whether the band word is exactly zero
func (f FrequencyBinningBand) Disabled() bool {
	return f == 0
}

// NewFrequencyBinningBand packs a binning size (1-8, without offset) and a band size
func NewFrequencyBinningBand(binningSize, bandSize uint16) FrequencyBinningBand {
	return FrequencyBinningBand(EncodeFrequencyBinningBand(binningSize, bandSize))
}

// DecodeFrequencyBinningBand unpacks a FREQBINNINGBAND word.
// The returned binning size already has the +1 offset applied.
func DecodeFrequencyBinningBand(word uint16) (binningSize, bandSize uint16) {
	binningSize = ((word >> 13) & 0x0007) + 1
	bandSize = word & 0x01FF
	return binningSize, bandSize
}

// EncodeFrequencyBinningBand packs a FREQBINNINGBAND word. binningSize is
// masked to 3 bits before the -1 offset is applied, so 8 encodes as 7 and
// 0 wraps to 7 as well; decode(encode(0, n)) therefore yields 8, not 0.
func EncodeFrequencyBinningBand(binningSize, bandSize uint16) uint16 {
	b := (binningSize & 0x0007) - 1
	return b<<13 | bandSize&0x01FF
}

// CdsParameter is the CDSPARAMS word:
//
//	bits 14-15  CDS mode
//	bits 10-13  spare
//	bits  0-9   digital offset
type CdsParameter uint16

// Mode returns the CDS mode
func (p CdsParameter) Mode() CdsMode {
	m, _ := DecodeCdsParameter(uint16(p))
	return m
}

// DigitalOffset returns the digital offset applied in the CDS
func (p CdsParameter) DigitalOffset() uint16 {
	_, o := DecodeCdsParameter(uint16(p))
	return o
}

// NewCdsParameter packs a CDS mode and digital offset
func NewCdsParameter(mode CdsMode, digitalOffset uint16) CdsParameter {
	return CdsParameter(EncodeCdsParameter(mode, digitalOffset))
}

// DecodeCdsParameter unpacks a CDSPARAMS word
func DecodeCdsParameter(word uint16) (mode CdsMode, digitalOffset uint16) {
	return CdsMode((word >> 14) & 0x0003), word & 0x03FF
}

// EncodeCdsParameter packs a CDSPARAMS word
func EncodeCdsParameter(mode CdsMode, digitalOffset uint16) uint16 {
	return uint16(mode)&0x0003<<14 | digitalOffset&0x03FF
}
