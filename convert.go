// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package jsonsheet

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
)

// Convert reads the records of r and writes them into a sheet of w named
// sheetName, then saves w to out.
//
// The header is the field names of the first record. The first record is
// peeked, not consumed, so it becomes the first data row as well.
// Empty input is an EmptyInput error, and nothing is written to out.
func Convert(r io.Reader, w Writer, out FlushWriter, sheetName string, buf *bytes.Buffer) error {
	return ConvertRecords(NewRecordReader(r), w, out, sheetName, buf)
}

// ConvertRecords is Convert over an already opened RecordReader.
func ConvertRecords(rr *RecordReader, w Writer, out FlushWriter, sheetName string, buf *bytes.Buffer) error {
	first, err := rr.Peek()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewError(EmptyInput, "no records", nil)
		}
		return err
	}
	header := first.Fields()
	slog.Debug("header", "sheet", sheetName, "columns", header)
	if buf == nil {
		buf = new(bytes.Buffer)
	}
	if err := w.Transcode(rr.All(), sheetName, buf, header); err != nil {
		return err
	}
	slog.Debug("transcoded", "sheet", sheetName, "rows", rr.n)
	return w.SaveTo(out)
}
