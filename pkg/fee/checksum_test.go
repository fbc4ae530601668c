// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import "testing"

func TestXOR8(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint8
	}{
		{"empty", nil, 0x00},
		{"single", []byte{0xA5}, 0xA5},
		{"bits", []byte{0x01, 0x02, 0x04}, 0x07},
		{"cancel", []byte{0xFF, 0xFF}, 0x00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := XOR8(tt.data); got != tt.want {
				t.Errorf("XOR8 = 0x%02X, want 0x%02X", got, tt.want)
			}
		})
	}
}

func TestXOR16(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{"empty", nil, 0x0000},
		{"one word", []byte{0x01, 0x02}, 0x0201},
		{"two words", []byte{0x01, 0x02, 0x03, 0x04}, 0x0602},
		{"odd length folds into low byte", []byte{0x01, 0x02, 0x03}, 0x0202},
		{"single byte", []byte{0x80}, 0x0080},
		{"cancel", []byte{0x12, 0x34, 0x12, 0x34}, 0x0000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := XOR16(tt.data); got != tt.want {
				t.Errorf("XOR16 = 0x%04X, want 0x%04X", got, tt.want)
			}
		})
	}
}

func TestChecksum16TrailerOrder(t *testing.T) {
	trailer := putChecksum16(0xBEEF)
	if trailer[0] != 0xEF || trailer[1] != 0xBE {
		t.Errorf("trailer = % X, want EF BE", trailer)
	}
	if got := storedChecksum16(trailer); got != 0xBEEF {
		t.Errorf("storedChecksum16 = 0x%04X", got)
	}

	// A frame followed by its own trailer XORs to zero
	frame := []byte{0x10, 0x20, 0x30, 0x40}
	full := append(frame, putChecksum16(XOR16(frame))...)
	if XOR16(full) != 0 {
		t.Errorf("frame plus trailer XOR16 = 0x%04X, want 0", XOR16(full))
	}
}
