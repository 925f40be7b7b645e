// Copyright 2020, 2023, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"bytes"
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/UNO-SOFT/jsonsheet"
	"github.com/xuri/excelize/v2"
)

var _ = (jsonsheet.Writer)((*Book)(nil))

const (
	// MaxRowCount is the number of maximum rows.
	MaxRowCount = 1_048_576
	// MaxColumnCount is the number of maximum columns.
	MaxColumnCount = excelize.MaxColumns
	// MaxNumFmtLength is the maximum length of a custom number format.
	MaxNumFmtLength = 255
)

// Book is an XLSX workbook.
type Book struct {
	xl     *excelize.File
	styles map[string]int
	sheets []string
	// HeaderStyle is applied to the header cells of each new sheet.
	HeaderStyle jsonsheet.Style
}

// Sheet is one worksheet of a Book.
type Sheet struct {
	xl          *excelize.File
	Name        string
	headerStyle int
}

// NewBook returns a new, empty workbook.
//
// The book collects everything in memory, so big sheets may impose problems.
// Book is not safe for concurrent use.
func NewBook() *Book {
	return &Book{xl: excelize.NewFile()}
}

// Close releases the resources of the book.
func (b *Book) Close() error {
	if b == nil || b.xl == nil {
		return nil
	}
	xl := b.xl
	b.xl = nil
	return xl.Close()
}

// AddNamedSheet adds a worksheet named name.
//
// The first sheet replaces the default one of the empty workbook.
func (b *Book) AddNamedSheet(name string) (*Sheet, error) {
	if err := checkSheetName(name); err != nil {
		return nil, jsonsheet.NewError(jsonsheet.InvalidSheetName,
			fmt.Sprintf("unable to set the sheet name %q", name), err)
	}
	for _, s := range b.sheets {
		if strings.EqualFold(s, name) {
			return nil, jsonsheet.NewError(jsonsheet.InvalidSheetName,
				fmt.Sprintf("sheet %q already exists", name), nil)
		}
	}
	sh := &Sheet{xl: b.xl, Name: name}
	if !b.HeaderStyle.IsZero() {
		s, err := b.getStyle(b.HeaderStyle)
		if err != nil {
			return nil, jsonsheet.NewError(jsonsheet.InvalidSheetName,
				fmt.Sprintf("sheet %q: invalid header style", name), err)
		}
		sh.headerStyle = s
	}
	if len(b.sheets) == 0 { // first
		if err := b.xl.SetSheetName(b.xl.GetSheetName(0), name); err != nil {
			return nil, jsonsheet.NewError(jsonsheet.InvalidSheetName,
				fmt.Sprintf("unable to set the sheet name %q", name), err)
		}
	} else if _, err := b.xl.NewSheet(name); err != nil {
		return nil, jsonsheet.NewError(jsonsheet.InvalidSheetName,
			fmt.Sprintf("unable to add sheet %q", name), err)
	}
	b.sheets = append(b.sheets, name)
	return sh, nil
}

// SheetNames returns the names of the sheets added so far.
func (b *Book) SheetNames() []string { return append([]string(nil), b.sheets...) }

// Transcode writes the header and the records into a new sheet.
func (b *Book) Transcode(records iter.Seq2[jsonsheet.Record, error], sheetName string, buf *bytes.Buffer, header []string) error {
	sh, err := b.AddNamedSheet(sheetName)
	if err != nil {
		return err
	}
	return sh.WriteRows(records, buf, header)
}

// Bytes renders the whole workbook.
func (b *Book) Bytes() ([]byte, error) {
	buf, err := b.xl.WriteToBuffer()
	if err != nil {
		return nil, jsonsheet.NewError(jsonsheet.UnableToSaveToBuffer, "", err)
	}
	return buf.Bytes(), nil
}

// SaveTo renders the workbook, writes it to w and flushes w.
func (b *Book) SaveTo(w jsonsheet.FlushWriter) error {
	p, err := b.Bytes()
	if err != nil {
		return err
	}
	if _, err := w.Write(p); err != nil {
		return jsonsheet.NewError(jsonsheet.UnableToWriteToWriter, "", err)
	}
	if err := w.Flush(); err != nil {
		return jsonsheet.NewError(jsonsheet.UnableToFlush, "", err)
	}
	return nil
}

func (b *Book) getStyle(style jsonsheet.Style) (int, error) {
	k := fmt.Sprintf("%t\t%s", style.FontBold, style.Format)
	if s, ok := b.styles[k]; ok {
		return s, nil
	}
	if utf8.RuneCountInString(style.Format) > MaxNumFmtLength {
		return 0, fmt.Errorf("number format is longer than %d characters", MaxNumFmtLength)
	}
	var st excelize.Style
	if style.FontBold {
		st.Font = &excelize.Font{Bold: true}
	}
	if style.Format != "" {
		st.CustomNumFmt = &style.Format
	}
	s, err := b.xl.NewStyle(&st)
	if err != nil {
		return 0, err
	}
	if b.styles == nil {
		b.styles = make(map[string]int)
	}
	b.styles[k] = s
	return s, nil
}

// checkSheetName applies the naming rules of the XLSX format.
func checkSheetName(name string) error {
	switch {
	case name == "":
		return excelize.ErrSheetNameBlank
	case utf8.RuneCountInString(name) > excelize.MaxSheetNameLength:
		return excelize.ErrSheetNameLength
	case strings.ContainsAny(name, `:\/?*[]`):
		return excelize.ErrSheetNameInvalid
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return excelize.ErrSheetNameSingleQuote
	}
	return nil
}

// WriteHeader writes names into the first row.
func (sh *Sheet) WriteHeader(names []string) error {
	for i, name := range names {
		if i >= MaxColumnCount {
			return jsonsheet.NewError(jsonsheet.ColumnOverflow,
				fmt.Sprintf("rejected column index: %d", i), nil)
		}
		if err := sh.WriteString(0, jsonsheet.ColIndex(i), name); err != nil {
			return err
		}
	}
	if sh.headerStyle == 0 || len(names) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(names), 1)
	if err == nil {
		err = sh.xl.SetCellStyle(sh.Name, "A1", last, sh.headerStyle)
	}
	if err != nil {
		return jsonsheet.NewError(jsonsheet.UnableToWriteString,
			fmt.Sprintf("%s[A1:%s]: unable to apply header style", sh.Name, last), err)
	}
	return nil
}

// WriteRow writes the fields of rec into row, in the order of the record.
//
// Fields are written by position, not matched by name against the header.
func (sh *Sheet) WriteRow(row jsonsheet.RowIndex, rec jsonsheet.Record, buf *bytes.Buffer) error {
	if row >= MaxRowCount {
		return jsonsheet.NewError(jsonsheet.RowOverflow,
			fmt.Sprintf("rejected row index: %d", row), nil)
	}
	if rec.Len() == 0 {
		return nil
	}
	i := 0
	for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
		if i >= MaxColumnCount {
			return jsonsheet.NewError(jsonsheet.ColumnOverflow,
				fmt.Sprintf("rejected column index: %d", i), nil)
		}
		if err := sh.WriteValue(row, jsonsheet.ColIndex(i), pair.Value, buf); err != nil {
			return err
		}
		i++
	}
	return nil
}

// WriteRows writes header into row 0 and the records into rows 1, 2, ...
//
// The first error, including a failed record, stops the writing.
func (sh *Sheet) WriteRows(records iter.Seq2[jsonsheet.Record, error], buf *bytes.Buffer, header []string) error {
	if err := sh.WriteHeader(header); err != nil {
		return err
	}
	row := 0 // 0: header
	for rec, err := range records {
		row++
		if row >= MaxRowCount {
			return jsonsheet.NewError(jsonsheet.RowOverflow,
				fmt.Sprintf("rejected row index: %d", row), nil)
		}
		if err != nil {
			return err
		}
		if err = sh.WriteRow(jsonsheet.RowIndex(row), rec, buf); err != nil {
			return err
		}
	}
	return nil
}
