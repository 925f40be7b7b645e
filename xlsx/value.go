// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/UNO-SOFT/jsonsheet"
	"github.com/xuri/excelize/v2"
)

// WriteValue writes v into the cell at (row, col), choosing the cell type
// by the JSON type of v.
//
// Arrays and objects have no cell type of their own: they are written as
// their compact JSON text, rendered in buf.
func (sh *Sheet) WriteValue(row jsonsheet.RowIndex, col jsonsheet.ColIndex, v jsonsheet.Value, buf *bytes.Buffer) error {
	switch k := v.Kind(); k {
	case jsonsheet.KindNull:
		return sh.WriteNull(row, col)
	case jsonsheet.KindBool:
		return sh.WriteBool(row, col, v.Bool())
	case jsonsheet.KindNumber:
		f, err := v.Float64()
		if err != nil {
			return err
		}
		return sh.WriteDouble(row, col, f)
	case jsonsheet.KindString:
		s, err := v.Text()
		if err != nil {
			return jsonsheet.NewError(jsonsheet.UnableToWriteString, sh.axis(row, col), err)
		}
		return sh.WriteString(row, col, s)
	case jsonsheet.KindArray:
		return sh.writeComposite(row, col, v, buf, jsonsheet.UnableToConvertArrayToJson)
	case jsonsheet.KindObject:
		return sh.writeComposite(row, col, v, buf, jsonsheet.UnableToConvertObjectToJson)
	default:
		return jsonsheet.NewError(jsonsheet.UnableToParseLine,
			fmt.Sprintf("%s: %s value %q", sh.axis(row, col), k, []byte(v)), nil)
	}
}

// WriteNull writes an empty cell.
func (sh *Sheet) WriteNull(row jsonsheet.RowIndex, col jsonsheet.ColIndex) error {
	axis, err := cellName(row, col)
	if err == nil {
		err = sh.xl.SetCellDefault(sh.Name, axis, "")
	}
	if err != nil {
		return jsonsheet.NewError(jsonsheet.UnableToWriteString,
			sh.axis(row, col)+": rejected value: null", err)
	}
	return nil
}

func (sh *Sheet) WriteBool(row jsonsheet.RowIndex, col jsonsheet.ColIndex, val bool) error {
	axis, err := cellName(row, col)
	if err == nil {
		err = sh.xl.SetCellBool(sh.Name, axis, val)
	}
	if err != nil {
		return jsonsheet.NewError(jsonsheet.UnableToWriteBool,
			fmt.Sprintf("%s: rejected value: %t", sh.axis(row, col), val), err)
	}
	return nil
}

func (sh *Sheet) WriteDouble(row jsonsheet.RowIndex, col jsonsheet.ColIndex, val float64) error {
	axis, err := cellName(row, col)
	if err == nil {
		err = sh.xl.SetCellFloat(sh.Name, axis, val, -1, 64)
	}
	if err != nil {
		return jsonsheet.NewError(jsonsheet.UnableToWriteDouble,
			fmt.Sprintf("%s: rejected value: %v", sh.axis(row, col), val), err)
	}
	return nil
}

// WriteString writes val as a text cell.
// Texts longer than a cell can hold are rejected, not truncated.
func (sh *Sheet) WriteString(row jsonsheet.RowIndex, col jsonsheet.ColIndex, val string) error {
	axis, err := cellName(row, col)
	if err == nil && utf8.RuneCountInString(val) > excelize.TotalCellChars {
		err = excelize.ErrCellCharsLength
	}
	if err == nil {
		err = sh.xl.SetCellStr(sh.Name, axis, val)
	}
	if err != nil {
		return jsonsheet.NewError(jsonsheet.UnableToWriteString,
			fmt.Sprintf("%s: rejected value: %s", sh.axis(row, col), shorten(val)), err)
	}
	return nil
}

func (sh *Sheet) writeComposite(row jsonsheet.RowIndex, col jsonsheet.ColIndex, v jsonsheet.Value, buf *bytes.Buffer, kind jsonsheet.Kind) error {
	if err := v.Compact(buf); err != nil {
		return jsonsheet.NewError(kind, sh.axis(row, col), err)
	}
	if !utf8.Valid(buf.Bytes()) {
		return jsonsheet.NewError(jsonsheet.InvalidString, sh.axis(row, col), nil)
	}
	return sh.WriteString(row, col, buf.String())
}

func cellName(row jsonsheet.RowIndex, col jsonsheet.ColIndex) (string, error) {
	return excelize.CoordinatesToCellName(int(col)+1, int(row)+1)
}

// axis returns the position for error messages.
func (sh *Sheet) axis(row jsonsheet.RowIndex, col jsonsheet.ColIndex) string {
	if axis, err := cellName(row, col); err == nil {
		return sh.Name + "[" + axis + "]"
	}
	return fmt.Sprintf("%s[%d/%d]", sh.Name, row, col)
}

func shorten(s string) string {
	const maxLen = 64
	if len(s) <= maxLen {
		return s
	}
	for i := maxLen; i > 0; i-- {
		if utf8.RuneStart(s[i]) {
			return s[:i] + "..."
		}
	}
	return s[:maxLen] + "..."
}
