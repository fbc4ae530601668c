// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Record kinds tagging exported CBOR messages
const (
	RecordTelecommand uint8 = 0x01
	RecordTelemetry   uint8 = 0x02
	RecordPixelFrame  uint8 = 0x03
)

// Pixel frame record keys
const (
	pixelKeyCounter     = 0
	pixelKeyRows        = 1
	pixelKeyCols        = 2
	pixelKeyVoltageRefs = 3
	pixelKeyCCD0        = 4
	pixelKeyCCD1        = 5
)

// Exported records are CBOR arrays [kind, payload_map]. Telecommand and
// telemetry payload keys are the positions of the non-spare fields in
// wire order, so a key never changes meaning while the layout is stable.

// recordMap flattens a record into its integer-keyed payload map
func recordMap[R any](fields []field[R], r *R) map[int]interface{} {
	m := make(map[int]interface{})
	key := 0
	for _, f := range fields {
		if f.spare() {
			continue
		}
		m[key] = uint64(f.get(r))
		key++
	}
	return m
}

// recordFromMap fills r from a payload map. Every field must be present.
func recordFromMap[R any](fields []field[R], m map[int]interface{}, r *R) error {
	key := 0
	for _, f := range fields {
		if f.spare() {
			continue
		}
		v, ok := GetMapUint(m, key)
		if !ok {
			return fmt.Errorf("missing or non-integer key %d (%s)", key, f.name)
		}
		if f.width < 4 && v >= 1<<(8*f.width) {
			return fmt.Errorf("%s=%d does not fit in %d bytes", f.name, v, f.width)
		}
		f.set(r, uint32(v))
		key++
	}
	return nil
}

// MarshalTelecommandCBOR encodes t as a [RecordTelecommand, payload] message
func MarshalTelecommandCBOR(t *Telecommand) ([]byte, error) {
	return cbor.Marshal([]interface{}{uint64(RecordTelecommand), recordMap(telecommandFields, t)})
}

// MarshalTelemetryCBOR encodes t as a [RecordTelemetry, payload] message
func MarshalTelemetryCBOR(t *Telemetry) ([]byte, error) {
	return cbor.Marshal([]interface{}{uint64(RecordTelemetry), recordMap(telemetryFrame, t)})
}

// MarshalPixelFrameCBOR encodes f as a [RecordPixelFrame, payload] message
func MarshalPixelFrameCBOR(f *PixelFrame) ([]byte, error) {
	payload := map[int]interface{}{
		pixelKeyCounter:     uint64(f.Counter),
		pixelKeyRows:        uint64(f.Geometry.Rows()),
		pixelKeyCols:        uint64(f.Geometry.ColumnsPerCCD),
		pixelKeyVoltageRefs: f.VoltageRefs[:],
		pixelKeyCCD0:        f.CCD[0].Data,
		pixelKeyCCD1:        f.CCD[1].Data,
	}
	return cbor.Marshal([]interface{}{uint64(RecordPixelFrame), payload})
}

// UnmarshalTelecommandCBOR decodes a message produced by MarshalTelecommandCBOR
func UnmarshalTelecommandCBOR(data []byte) (*Telecommand, error) {
	kind, payload, err := ParseCBORRecord(data)
	if err != nil {
		return nil, err
	}
	if kind != RecordTelecommand {
		return nil, fmt.Errorf("expected telecommand record, got kind 0x%02X", kind)
	}
	t := &Telecommand{}
	if err := recordFromMap(telecommandFields, payload, t); err != nil {
		return nil, fmt.Errorf("telecommand record: %w", err)
	}
	return t, nil
}

// UnmarshalTelemetryCBOR decodes a message produced by MarshalTelemetryCBOR
func UnmarshalTelemetryCBOR(data []byte) (*Telemetry, error) {
	kind, payload, err := ParseCBORRecord(data)
	if err != nil {
		return nil, err
	}
	if kind != RecordTelemetry {
		return nil, fmt.Errorf("expected telemetry record, got kind 0x%02X", kind)
	}
	t := &Telemetry{}
	if err := recordFromMap(telemetryFrame, payload, t); err != nil {
		return nil, fmt.Errorf("telemetry record: %w", err)
	}
	return t, nil
}

// ParseCBORRecord parses an exported record: [kind, payload_map]
func ParseCBORRecord(data []byte) (kind uint8, payload map[int]interface{}, err error) {
	if len(data) == 0 {
		return 0, nil, fmt.Errorf("empty CBOR record")
	}

	var msg []interface{}
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return 0, nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}

	if len(msg) != 2 {
		return 0, nil, fmt.Errorf("expected 2-element array, got %d elements", len(msg))
	}

	switch v := msg[0].(type) {
	case uint64:
		if v > 255 {
			return 0, nil, fmt.Errorf("record kind out of range: %d", v)
		}
		kind = uint8(v)
	default:
		return 0, nil, fmt.Errorf("expected uint for record kind, got %T", msg[0])
	}

	switch v := msg[1].(type) {
	case map[interface{}]interface{}:
		payload = make(map[int]interface{}, len(v))
		for key, val := range v {
			switch k := key.(type) {
			case uint64:
				payload[int(k)] = val
			case int64:
				payload[int(k)] = val
			default:
				return 0, nil, fmt.Errorf("expected integer map key, got %T", key)
			}
		}
	default:
		return 0, nil, fmt.Errorf("expected map for payload, got %T", msg[1])
	}

	return kind, payload, nil
}

// GetMapUint extracts a uint64 from a CBOR map by key
func GetMapUint(m map[int]interface{}, key int) (uint64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case uint64:
		return val, true
	case int64:
		if val >= 0 {
			return uint64(val), true
		}
	}
	return 0, false
}
