// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import "encoding/binary"

// XOR8 computes the 8-bit running XOR used by telecommand frames
func XOR8(data []byte) uint8 {
	var sum uint8
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// XOR16 computes the 16-bit XOR used by telemetry and pixel frames.
// Words are taken in the FEE's stored (little-endian) order; an odd
// trailing byte is folded into the low byte of the accumulator.
func XOR16(data []byte) uint16 {
	var sum uint16
	n := len(data) / 2
	for i := 0; i < n; i++ {
		sum ^= binary.LittleEndian.Uint16(data[2*i:])
	}
	if len(data)%2 != 0 {
		sum ^= uint16(data[len(data)-1])
	}
	return sum
}

// putChecksum16 renders a XOR16 trailer in the order it was computed
func putChecksum16(sum uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], sum)
	return b[:]
}

func storedChecksum16(trailer []byte) uint16 {
	return binary.LittleEndian.Uint16(trailer)
}
