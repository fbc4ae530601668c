// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import (
	"encoding/binary"
	"fmt"
)

// Cursor is a read/write position over a fixed-capacity frame buffer.
// All numeric fields are big-endian on the wire.
type Cursor struct {
	buf    []byte
	offset int
}

// NewCursor creates a cursor at offset 0 whose capacity is len(buf)
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the number of bytes consumed so far
func (c *Cursor) Offset() int {
	return c.offset
}

func (c *Cursor) reserve(n int) error {
	if n < 0 || c.offset+n > len(c.buf) {
		return fmt.Errorf("%w: need %d bytes at offset %d (capacity %d)", ErrBufferExhausted, n, c.offset, len(c.buf))
	}
	return nil
}

// ReadField reads a 1, 2 or 4 byte big-endian field and advances
func (c *Cursor) ReadField(width int) (uint32, error) {
	if width != 1 && width != 2 && width != 4 {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedWidth, width)
	}
	if err := c.reserve(width); err != nil {
		return 0, err
	}

	var v uint32
	b := c.buf[c.offset : c.offset+width]
	switch width {
	case 1:
		v = uint32(b[0])
	case 2:
		v = uint32(binary.BigEndian.Uint16(b))
	case 4:
		v = binary.BigEndian.Uint32(b)
	}
	c.offset += width
	return v, nil
}

// WriteField writes v as a 1, 2 or 4 byte big-endian field and advances.
// Bits of v above the field width are dropped.
func (c *Cursor) WriteField(v uint32, width int) error {
	if width != 1 && width != 2 && width != 4 {
		return fmt.Errorf("%w: %d", ErrUnsupportedWidth, width)
	}
	if err := c.reserve(width); err != nil {
		return err
	}

	b := c.buf[c.offset : c.offset+width]
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(b, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(b, v)
	}
	c.offset += width
	return nil
}

// Skip advances over n bytes without reading them
func (c *Cursor) Skip(n int) error {
	if err := c.reserve(n); err != nil {
		return err
	}
	c.offset += n
	return nil
}

// Zero writes n zero bytes and advances
func (c *Cursor) Zero(n int) error {
	if err := c.reserve(n); err != nil {
		return err
	}
	clear(c.buf[c.offset : c.offset+n])
	c.offset += n
	return nil
}

// WriteRaw copies b verbatim, with no byte-order conversion
func (c *Cursor) WriteRaw(b []byte) error {
	if err := c.reserve(len(b)); err != nil {
		return err
	}
	copy(c.buf[c.offset:], b)
	c.offset += len(b)
	return nil
}

// Expect checks that the cursor stopped exactly at total
func (c *Cursor) Expect(total int) error {
	if c.offset != total {
		return fmt.Errorf("%w: consumed %d bytes, expected %d", ErrLengthMismatch, c.offset, total)
	}
	return nil
}
