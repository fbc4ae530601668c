// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package dump reads and writes the text packet dumps produced by the FEE
// ground equipment. Each line holds one frame as space-separated decimal
// tokens: a timestamp, further metadata tokens, then one token per frame
// byte. Files ending in .zst are zstd-compressed.
package dump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Kind selects the frame type held by a dump file
type Kind int

const (
	KindTelecommand Kind = iota
	KindTelemetry
	KindPixel
)

// String returns the short name used on the command line
func (k Kind) String() string {
	switch k {
	case KindTelecommand:
		return "tc"
	case KindTelemetry:
		return "tm"
	case KindPixel:
		return "ptd"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses tc, tm or ptd
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "tc":
		return KindTelecommand, nil
	case "tm":
		return KindTelemetry, nil
	case "ptd", "pixel":
		return KindPixel, nil
	}
	return 0, fmt.Errorf("unknown frame kind %q (want tc, tm or ptd)", s)
}

// MetadataTokens returns how many leading tokens precede the frame bytes
func (k Kind) MetadataTokens() int {
	if k == KindPixel {
		return 3
	}
	return 2
}

// maxLineSize bounds one pixel-frame line: the largest frame is a few
// hundred kilobytes, and each byte takes up to four characters
const maxLineSize = 16 << 20

// Record is one frame read from a dump
type Record struct {
	Line      int
	Timestamp int64
	Meta      []string
	Data      []byte
}

// Reader iterates the records of a dump
type Reader struct {
	kind    Kind
	scanner *bufio.Scanner
	closers []io.Closer
	line    int
}

// NewReader reads an uncompressed dump from r
func NewReader(r io.Reader, kind Kind) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{kind: kind, scanner: sc}
}

// Open opens a dump file, decompressing it when the name ends in .zst
func Open(path string, kind Kind) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}

	if !strings.HasSuffix(path, ".zst") {
		r := NewReader(f, kind)
		r.closers = append(r.closers, f)
		return r, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd decompression error: %w", err)
	}
	r := NewReader(dec, kind)
	r.closers = append(r.closers, closerFunc(func() error { dec.Close(); return nil }), f)
	return r, nil
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

// Close releases the underlying file and decoder
func (r *Reader) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Next returns the next record, skipping blank lines. It returns io.EOF
// after the last record.
func (r *Reader) Next() (*Record, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}
		rec, err := ParseLine(text, r.kind)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		rec.Line = r.line
		return rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

// ParseLine parses one dump line
func ParseLine(line string, kind Kind) (*Record, error) {
	tokens := strings.Fields(line)
	meta := kind.MetadataTokens()
	if len(tokens) < meta {
		return nil, fmt.Errorf("expected at least %d metadata tokens, got %d", meta, len(tokens))
	}

	ts, err := strconv.ParseInt(tokens[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", tokens[0], err)
	}

	rec := &Record{
		Timestamp: ts,
		Meta:      tokens[1:meta],
		Data:      make([]byte, 0, len(tokens)-meta),
	}
	for i, tok := range tokens[meta:] {
		v, err := strconv.ParseUint(tok, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("byte %d: invalid token %q: %w", i, tok, err)
		}
		rec.Data = append(rec.Data, byte(v))
	}
	return rec, nil
}

// ReadAll opens path and returns every record it holds
func ReadAll(path string, kind Kind) ([]Record, error) {
	r, err := Open(path, kind)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, *rec)
	}
}

// Latest returns the last record whose timestamp is not after ts. This is
// how a pixel frame finds the telemetry frame that announced its layout.
func Latest(records []Record, ts int64) (*Record, bool) {
	var best *Record
	for i := range records {
		rec := &records[i]
		if rec.Timestamp > ts {
			continue
		}
		if best == nil || rec.Timestamp >= best.Timestamp {
			best = rec
		}
	}
	return best, best != nil
}

// FormatLine renders a record in dump format. Missing metadata tokens are
// written as 0.
func FormatLine(rec Record, kind Kind) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(rec.Timestamp, 10))
	for i := 1; i < kind.MetadataTokens(); i++ {
		b.WriteByte(' ')
		if i-1 < len(rec.Meta) {
			b.WriteString(rec.Meta[i-1])
		} else {
			b.WriteByte('0')
		}
	}
	for _, v := range rec.Data {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(int(v)))
	}
	return b.String()
}

// Writer writes records in dump format
type Writer struct {
	kind    Kind
	w       *bufio.Writer
	closers []io.Closer
}

// NewWriter writes an uncompressed dump to w
func NewWriter(w io.Writer, kind Kind) *Writer {
	return &Writer{kind: kind, w: bufio.NewWriter(w)}
}

// Create creates a dump file, compressing it when the name ends in .zst
func Create(path string, kind Kind) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create dump: %w", err)
	}

	if !strings.HasSuffix(path, ".zst") {
		w := NewWriter(f, kind)
		w.closers = append(w.closers, f)
		return w, nil
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd compression error: %w", err)
	}
	w := NewWriter(enc, kind)
	w.closers = append(w.closers, enc, f)
	return w, nil
}

// Write appends one record line
func (w *Writer) Write(rec Record) error {
	if _, err := w.w.WriteString(FormatLine(rec, w.kind)); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes buffered lines and closes the encoder and file
func (w *Writer) Close() error {
	errs := []error{w.w.Flush()}
	for _, c := range w.closers {
		errs = append(errs, c.Close())
	}
	w.closers = nil
	return errors.Join(errs...)
}
