// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package jsonsheet converts a stream of JSON objects into a spreadsheet,
// one object per row, with the header taken from the first object.
package jsonsheet

import (
	"bytes"
	"io"
	"iter"
)

// SheetNameDefault is the name of the worksheet if none is given.
const SheetNameDefault = "Sheet1"

// Writer assembles a whole document in memory.
//
// Implementations are not safe for concurrent use.
type Writer interface {
	// Transcode writes header into row 0 of a new sheet named sheetName,
	// then each record into the following rows.
	// buf is the scratch buffer for composite values.
	Transcode(records iter.Seq2[Record, error], sheetName string, buf *bytes.Buffer, header []string) error
	// SaveTo serializes the document and writes it to w, then flushes w.
	SaveTo(w FlushWriter) error
}

// FlushWriter is an io.Writer with buffered content, such as *bufio.Writer.
type FlushWriter interface {
	io.Writer
	Flush() error
}

// RowIndex is the zero-based row of a cell.
type RowIndex uint32

// ColIndex is the zero-based column of a cell.
type ColIndex uint16

// Style is a style for a column/row/cell.
type Style struct {
	// Format is the number format
	Format string
	// FontBold is true if the font is bold
	FontBold bool
}

// IsZero reports whether s is the default style.
func (s Style) IsZero() bool { return !s.FontBold && s.Format == "" }
