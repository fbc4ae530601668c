// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fee

import "fmt"

// Matrix is a row-major grid of 16-bit samples for one CCD
type Matrix struct {
	Rows int
	Cols int
	Data []uint16
}

// NewMatrix allocates a zeroed rows x cols matrix
func NewMatrix(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: make([]uint16, rows*cols)}
}

// At returns the sample at (row, col)
func (m Matrix) At(row, col int) uint16 {
	return m.Data[row*m.Cols+col]
}

// Set stores v at (row, col)
func (m Matrix) Set(row, col int, v uint16) {
	m.Data[row*m.Cols+col] = v
}

// Row returns a view of one row. Writes through it modify the matrix.
func (m Matrix) Row(row int) []uint16 {
	return m.Data[row*m.Cols : (row+1)*m.Cols]
}

// PixelFrame is one decoded pixel-data frame. Rows are ordered data rows,
// then smear rows, then overscan rows; columns 0-1 hold the dark reference
// values, which are always zero on smear rows.
type PixelFrame struct {
	Counter     uint32
	VoltageRefs [VoltageReferences]uint16
	CCD         [NumCCD]Matrix
	Geometry    PixelGeometry
}

// NewPixelFrame allocates an empty frame shaped by g
func NewPixelFrame(g PixelGeometry) *PixelFrame {
	f := &PixelFrame{Geometry: g}
	for i := range f.CCD {
		f.CCD[i] = NewMatrix(g.Rows(), g.ColumnsPerCCD)
	}
	return f
}

// eachSample visits every transmitted sample cell in wire order. Data and
// overscan rows start with the dark values of CCD 0 then CCD 1; pixel
// columns follow interleaved by CCD. Smear rows carry no dark values.
func eachSample(g PixelGeometry, visit func(ccd, row, col int) error) error {
	row := 0
	emit := func(dark bool) error {
		if dark {
			for ccd := 0; ccd < NumCCD; ccd++ {
				for col := 0; col < DarkColumns; col++ {
					if err := visit(ccd, row, col); err != nil {
						return err
					}
				}
			}
		}
		for i := 0; i < g.PixelColumns(); i++ {
			for ccd := 0; ccd < NumCCD; ccd++ {
				if err := visit(ccd, row, DarkColumns+i); err != nil {
					return err
				}
			}
		}
		row++
		return nil
	}

	for i := 0; i < g.DataRows; i++ {
		if err := emit(true); err != nil {
			return fmt.Errorf("data row %d: %w", i, err)
		}
	}
	for i := 0; i < g.SmearRows; i++ {
		if err := emit(false); err != nil {
			return fmt.Errorf("smear row %d: %w", i, err)
		}
	}
	for i := 0; i < g.OverscanRows; i++ {
		if err := emit(true); err != nil {
			return fmt.Errorf("overscan row %d: %w", i, err)
		}
	}
	return nil
}

// DecodePixelFrame parses a pixel-data frame whose layout is announced by
// tm. The checksum is not checked here; see VerifyPixelChecksum.
func DecodePixelFrame(data []byte, tm *Telemetry) (*PixelFrame, error) {
	g, err := ComputeGeometry(tm)
	if err != nil {
		return nil, fmt.Errorf("decode pixel frame: %w", err)
	}
	// Checked before the matrices are allocated
	if len(data) < g.TotalBytes {
		return nil, fmt.Errorf("decode pixel frame: need %d bytes, have %d: %w", g.TotalBytes, len(data), ErrBufferExhausted)
	}

	c := NewCursor(data)
	f := NewPixelFrame(g)

	v, err := c.ReadField(pixelCounterSize)
	if err != nil {
		return nil, fmt.Errorf("decode pixel frame: counter: %w", err)
	}
	f.Counter = v

	err = eachSample(g, func(ccd, row, col int) error {
		v, err := c.ReadField(pixelParamSize)
		if err != nil {
			return err
		}
		f.CCD[ccd].Set(row, col, uint16(v))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode pixel frame: %w", err)
	}

	for i := range f.VoltageRefs {
		v, err := c.ReadField(pixelParamSize)
		if err != nil {
			return nil, fmt.Errorf("decode pixel frame: voltage reference %d: %w", i, err)
		}
		f.VoltageRefs[i] = uint16(v)
	}

	if err := c.Expect(g.TotalBytes - pixelChecksumSize); err != nil {
		return nil, fmt.Errorf("decode pixel frame: %w", err)
	}
	if err := c.Skip(pixelChecksumSize); err != nil {
		return nil, fmt.Errorf("decode pixel frame: checksum: %w", err)
	}
	if err := c.Expect(len(data)); err != nil {
		return nil, fmt.Errorf("decode pixel frame: %w", err)
	}

	return f, nil
}

// EncodePixelFrame serializes f using the layout announced by tm and
// appends the XOR16 trailer. Dark columns of smear rows are not transmitted.
func EncodePixelFrame(tm *Telemetry, f *PixelFrame) ([]byte, error) {
	g, err := ComputeGeometry(tm)
	if err != nil {
		return nil, fmt.Errorf("encode pixel frame: %w", err)
	}
	for i, m := range f.CCD {
		if m.Rows != g.Rows() || m.Cols != g.ColumnsPerCCD || len(m.Data) != m.Rows*m.Cols {
			return nil, fmt.Errorf("encode pixel frame: CCD %d matrix is %dx%d, geometry wants %dx%d: %w",
				i, m.Rows, m.Cols, g.Rows(), g.ColumnsPerCCD, ErrLengthMismatch)
		}
	}

	buf := make([]byte, g.TotalBytes)
	c := NewCursor(buf)

	if err := c.WriteField(f.Counter, pixelCounterSize); err != nil {
		return nil, fmt.Errorf("encode pixel frame: counter: %w", err)
	}

	err = eachSample(g, func(ccd, row, col int) error {
		return c.WriteField(uint32(f.CCD[ccd].At(row, col)), pixelParamSize)
	})
	if err != nil {
		return nil, fmt.Errorf("encode pixel frame: %w", err)
	}

	for i, v := range f.VoltageRefs {
		if err := c.WriteField(uint32(v), pixelParamSize); err != nil {
			return nil, fmt.Errorf("encode pixel frame: voltage reference %d: %w", i, err)
		}
	}

	if err := c.WriteRaw(putChecksum16(XOR16(buf[:c.Offset()]))); err != nil {
		return nil, fmt.Errorf("encode pixel frame: checksum: %w", err)
	}
	if err := c.Expect(g.TotalBytes); err != nil {
		return nil, fmt.Errorf("encode pixel frame: %w", err)
	}

	return buf, nil
}

// VerifyPixelChecksum recomputes the XOR16 over all but the last two bytes
// and compares it with the trailer
func VerifyPixelChecksum(data []byte, g PixelGeometry) error {
	if len(data) != g.TotalBytes || len(data) < pixelChecksumSize {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrLengthMismatch, len(data), g.TotalBytes)
	}
	return verifyChecksum16("pixel", data)
}
