// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import (
	"encoding/binary"
	"fmt"
)

// field describes one fixed-width wire field of a record R. A field with a
// nil get is a spare region: skipped on decode, zero-filled on encode.
type field[R any] struct {
	name  string
	width int
	get   func(*R) uint32
	set   func(*R, uint32)

	// Inclusive bounds checked by the validator when bounded is set
	bounded  bool
	min, max uint32
}

func (f field[R]) spare() bool {
	return f.get == nil
}

// scalar builds a field over a 1, 2 or 4 byte unsigned member of R
func scalar[R any, T ~uint8 | ~uint16 | ~uint32](name string, ref func(*R) *T) field[R] {
	var zero T
	return field[R]{
		name:  name,
		width: binary.Size(zero),
		get:   func(r *R) uint32 { return uint32(*ref(r)) },
		set:   func(r *R, v uint32) { *ref(r) = T(v) },
	}
}

// bounded is scalar with an inclusive legal range
func bounded[R any, T ~uint8 | ~uint16 | ~uint32](name string, min, max uint32, ref func(*R) *T) field[R] {
	f := scalar(name, ref)
	f.bounded = true
	f.min, f.max = min, max
	return f
}

func spare[R any](width int) field[R] {
	return field[R]{name: "spare", width: width}
}

// lift re-targets a field of the inner record onto an outer record
func lift[O, I any](f field[I], inner func(*O) *I) field[O] {
	out := field[O]{
		name:    f.name,
		width:   f.width,
		bounded: f.bounded,
		min:     f.min,
		max:     f.max,
	}
	if f.spare() {
		return out
	}
	out.get = func(o *O) uint32 { return f.get(inner(o)) }
	out.set = func(o *O, v uint32) { f.set(inner(o), v) }
	return out
}

// decodeFields walks fields in order, filling r from the cursor
func decodeFields[R any](c *Cursor, fields []field[R], r *R) error {
	for _, f := range fields {
		if f.spare() {
			if err := c.Skip(f.width); err != nil {
				return fmt.Errorf("spare at offset %d: %w", c.Offset(), err)
			}
			continue
		}
		v, err := c.ReadField(f.width)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		f.set(r, v)
	}
	return nil
}

// encodeFields walks fields in order, writing r into the cursor
func encodeFields[R any](c *Cursor, fields []field[R], r *R) error {
	for _, f := range fields {
		if f.spare() {
			if err := c.Zero(f.width); err != nil {
				return fmt.Errorf("spare at offset %d: %w", c.Offset(), err)
			}
			continue
		}
		if err := c.WriteField(f.get(r), f.width); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

// fieldsSize sums the wire width of a field list
func fieldsSize[R any](fields []field[R]) int {
	n := 0
	for _, f := range fields {
		n += f.width
	}
	return n
}
