// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/Thermoquad/feestat/pkg/fee"
	"github.com/Thermoquad/feestat/pkg/fee/dump"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export decoded frames as a CBOR record sequence",
	Long: `Decode every frame of a dump and write it as a CBOR record
[kind, payload_map]. Records are concatenated into a CBOR sequence.

Telecommand and telemetry payload keys are the positions of the frame
fields in wire order. Pixel payloads carry the counter, matrix shape,
voltage references and both CCD matrices.

Frames that fail to decode are logged and skipped. The output is
zstd-compressed when its name ends in .zst.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addFrameFlags(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (required)")
	exportCmd.MarkFlagRequired("output")
}

func runExport(cmd *cobra.Command, args []string) error {
	src, err := openSource(args[0])
	if err != nil {
		return err
	}

	out, err := createExport(exportOutput)
	if err != nil {
		return err
	}

	written, skipped := 0, 0
	err = src.each(func(rec *dump.Record) error {
		data, err := exportRecord(src, rec)
		if err != nil {
			log.Printf("line %d: skipped: %v", rec.Line, err)
			skipped++
			return nil
		}
		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		written++
		return nil
	})
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d %s records to %s", written, src.kind, exportOutput)
	if skipped > 0 {
		fmt.Printf(" (%d skipped)", skipped)
	}
	fmt.Println()
	return nil
}

// exportRecord decodes one record into its CBOR form
func exportRecord(src *frameSource, rec *dump.Record) ([]byte, error) {
	switch src.kind {
	case dump.KindTelecommand:
		tc, err := fee.DecodeTelecommand(rec.Data)
		if err != nil {
			return nil, err
		}
		return fee.MarshalTelecommandCBOR(tc)

	case dump.KindTelemetry:
		tm, err := fee.DecodeTelemetry(rec.Data)
		if err != nil {
			return nil, err
		}
		return fee.MarshalTelemetryCBOR(tm)

	case dump.KindPixel:
		tm, err := src.announcing(rec.Timestamp)
		if err != nil {
			return nil, err
		}
		f, err := fee.DecodePixelFrame(rec.Data, tm)
		if err != nil {
			return nil, err
		}
		return fee.MarshalPixelFrameCBOR(f)
	}
	return nil, fmt.Errorf("unsupported frame kind %s", src.kind)
}

// exportWriter buffers the output file and, for .zst names, compresses it
type exportWriter struct {
	*bufio.Writer
	closers []io.Closer
}

func createExport(path string) (*exportWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create export: %w", err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return &exportWriter{Writer: bufio.NewWriter(f), closers: []io.Closer{f}}, nil
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd compression error: %w", err)
	}
	return &exportWriter{Writer: bufio.NewWriter(enc), closers: []io.Closer{enc, f}}, nil
}

// Close flushes the buffer, then closes the encoder and file in order
func (w *exportWriter) Close() error {
	errs := []error{w.Flush()}
	for _, c := range w.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
