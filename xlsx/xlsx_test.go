// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"bytes"
	"encoding/json"
	"errors"
	"iter"
	"strconv"
	"strings"
	"testing"

	"github.com/UNO-SOFT/jsonsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func record(t *testing.T, s string) jsonsheet.Record {
	t.Helper()
	var rec jsonsheet.Record
	require.NoError(t, rec.UnmarshalJSON([]byte(s)))
	return rec
}

func records(recs ...jsonsheet.Record) iter.Seq2[jsonsheet.Record, error] {
	return func(yield func(jsonsheet.Record, error) bool) {
		for _, rec := range recs {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func reopen(t *testing.T, b *Book) *excelize.File {
	t.Helper()
	p, err := b.Bytes()
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(p))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cells(t *testing.T, f *excelize.File, sheet string, axes ...string) []string {
	t.Helper()
	values := make([]string, len(axes))
	for i, axis := range axes {
		var err error
		values[i], err = f.GetCellValue(sheet, axis)
		require.NoError(t, err, axis)
	}
	return values
}

func TestTranscode(t *testing.T) {
	b := NewBook()
	defer b.Close()
	var buf bytes.Buffer
	err := b.Transcode(records(
		record(t, `{"a":1,"b":"x"}`),
		record(t, `{"a":2,"b":"y"}`),
	), jsonsheet.SheetNameDefault, &buf, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1"}, b.SheetNames())

	f := reopen(t, b)
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
	assert.Equal(t, []string{"a", "b", "1", "x", "2", "y"},
		cells(t, f, "Sheet1", "A1", "B1", "A2", "B2", "A3", "B3"))
}

func TestWriteValueKinds(t *testing.T) {
	b := NewBook()
	defer b.Close()
	var buf bytes.Buffer
	const input = `{"n":null,"t":true,"f":false,"d":-2.5,"s":"szöveg","a":[1,"two",null],"o":{"z":[true],"a":{}}}`
	rec := record(t, input)
	require.NoError(t, b.Transcode(records(rec), "Kinds", &buf, rec.Fields()))

	f := reopen(t, b)
	got := cells(t, f, "Kinds", "A2", "D2", "E2", "F2", "G2")
	assert.Equal(t, []string{"", "-2.5", "szöveg", `[1,"two",null]`, `{"z":[true],"a":{}}`}, got)
	for _, axis := range []string{"B2", "C2"} {
		typ, err := f.GetCellType("Kinds", axis)
		require.NoError(t, err)
		assert.Equal(t, excelize.CellTypeBool, typ, axis)
	}

	// composite cells hold JSON that parses back to the original value
	var orig map[string]any
	require.NoError(t, json.Unmarshal([]byte(input), &orig))
	for axis, key := range map[string]string{"F2": "a", "G2": "o"} {
		var back any
		require.NoError(t, json.Unmarshal([]byte(cells(t, f, "Kinds", axis)[0]), &back))
		assert.Equal(t, orig[key], back, axis)
	}
}

func TestScratchBuffer(t *testing.T) {
	b := NewBook()
	defer b.Close()
	sh, err := b.AddNamedSheet("S")
	require.NoError(t, err)

	buf := bytes.NewBufferString("left over from before")
	require.NoError(t, sh.WriteValue(1, 0, jsonsheet.Value(`[ 1, 2 ]`), buf))
	assert.Equal(t, "[1,2]", buf.String())
	require.NoError(t, sh.WriteValue(1, 1, jsonsheet.Value(`{"k" : "v"}`), buf))
	assert.Equal(t, `{"k":"v"}`, buf.String())
}

func TestNullsAndShortRows(t *testing.T) {
	b := NewBook()
	defer b.Close()
	var buf bytes.Buffer
	require.NoError(t, b.Transcode(records(
		record(t, `{"a":[1,2],"b":null}`),
		record(t, `{"a":null,"b":null}`),
		record(t, `{"a":"short"}`),
	), "Sheet1", &buf, []string{"a", "b"}))

	f := reopen(t, b)
	assert.Equal(t, []string{"a", "b", "[1,2]", "", "", "", "short", ""},
		cells(t, f, "Sheet1", "A1", "B1", "A2", "B2", "A3", "B3", "A4", "B4"))
}

func TestPositionalRows(t *testing.T) {
	b := NewBook()
	defer b.Close()
	var buf bytes.Buffer
	require.NoError(t, b.Transcode(records(
		record(t, `{"a":1,"b":2}`),
		record(t, `{"b":3,"a":4}`),
	), "Sheet1", &buf, []string{"a", "b"}))

	f := reopen(t, b)
	assert.Equal(t, []string{"3", "4"}, cells(t, f, "Sheet1", "A3", "B3"))
}

func TestSheetName(t *testing.T) {
	for _, name := range []string{"", "a/b", `a\b`, "x[1]", "what?", "'quoted", strings.Repeat("n", 32)} {
		b := NewBook()
		_, err := b.AddNamedSheet(name)
		assert.True(t, errors.Is(err, jsonsheet.InvalidSheetName), "%q: %v", name, err)
		b.Close()
	}

	b := NewBook()
	defer b.Close()
	_, err := b.AddNamedSheet("Data")
	require.NoError(t, err)
	_, err = b.AddNamedSheet("data")
	assert.True(t, errors.Is(err, jsonsheet.InvalidSheetName), "duplicate: %v", err)
	_, err = b.AddNamedSheet("Two")
	require.NoError(t, err)
	assert.Equal(t, []string{"Data", "Two"}, b.SheetNames())
	assert.Equal(t, []string{"Data", "Two"}, reopen(t, b).GetSheetList())
}

func TestOverflow(t *testing.T) {
	b := NewBook()
	defer b.Close()
	sh, err := b.AddNamedSheet("Sheet1")
	require.NoError(t, err)
	var buf bytes.Buffer

	err = sh.WriteRow(MaxRowCount, record(t, `{"a":1}`), &buf)
	assert.True(t, errors.Is(err, jsonsheet.RowOverflow), "%v", err)

	wide := jsonsheet.NewRecord()
	names := make([]string, 0, MaxColumnCount+1)
	for i := 0; i <= MaxColumnCount; i++ {
		name := "c" + strconv.Itoa(i)
		wide.Set(name, jsonsheet.Value("0"))
		names = append(names, name)
	}
	err = sh.WriteRow(1, wide, &buf)
	assert.True(t, errors.Is(err, jsonsheet.ColumnOverflow), "%v", err)
	err = sh.WriteHeader(names)
	assert.True(t, errors.Is(err, jsonsheet.ColumnOverflow), "%v", err)
}

func TestRowOverflowInRows(t *testing.T) {
	b := NewBook()
	defer b.Close()
	sh, err := b.AddNamedSheet("Sheet1")
	require.NoError(t, err)
	var buf bytes.Buffer

	var n int
	err = sh.WriteRows(func(yield func(jsonsheet.Record, error) bool) {
		for {
			n++
			if !yield(jsonsheet.Record{}, nil) {
				return
			}
		}
	}, &buf, []string{"a"})
	assert.True(t, errors.Is(err, jsonsheet.RowOverflow), "%v", err)
	assert.Contains(t, err.Error(), strconv.Itoa(MaxRowCount))
	assert.Equal(t, MaxRowCount, n)
}

func TestRejectedValues(t *testing.T) {
	b := NewBook()
	defer b.Close()
	sh, err := b.AddNamedSheet("Sheet1")
	require.NoError(t, err)
	var buf bytes.Buffer

	err = sh.WriteValue(1, 0, jsonsheet.Value("1e400"), &buf)
	assert.True(t, errors.Is(err, jsonsheet.InvalidNumber), "%v", err)

	long := strings.Repeat("x", excelize.TotalCellChars+1)
	err = sh.WriteString(1, 0, long)
	assert.True(t, errors.Is(err, jsonsheet.UnableToWriteString), "%v", err)
	assert.True(t, errors.Is(err, excelize.ErrCellCharsLength), "%v", err)

	err = sh.WriteValue(1, 0, jsonsheet.Value(`["`+long+`"]`), &buf)
	assert.True(t, errors.Is(err, jsonsheet.UnableToWriteString), "%v", err)

	err = sh.WriteValue(1, 0, jsonsheet.Value(`[1,`), &buf)
	assert.True(t, errors.Is(err, jsonsheet.UnableToConvertArrayToJson), "%v", err)
	err = sh.WriteValue(1, 0, jsonsheet.Value(`{"a":`), &buf)
	assert.True(t, errors.Is(err, jsonsheet.UnableToConvertObjectToJson), "%v", err)
}

func TestRecordError(t *testing.T) {
	b := NewBook()
	defer b.Close()
	sh, err := b.AddNamedSheet("Sheet1")
	require.NoError(t, err)
	var buf bytes.Buffer

	parseErr := jsonsheet.NewError(jsonsheet.UnableToParseLine, "record #2", nil)
	var n int
	err = sh.WriteRows(func(yield func(jsonsheet.Record, error) bool) {
		n++
		if !yield(record(t, `{"a":1}`), nil) {
			return
		}
		n++
		if !yield(jsonsheet.Record{}, parseErr) {
			return
		}
		n++
		yield(record(t, `{"a":3}`), nil)
	}, &buf, []string{"a"})
	assert.Equal(t, parseErr, err)
	assert.Equal(t, 2, n)
}

func TestHeaderStyle(t *testing.T) {
	b := NewBook()
	defer b.Close()
	b.HeaderStyle = jsonsheet.Style{FontBold: true}
	var buf bytes.Buffer
	require.NoError(t, b.Transcode(records(record(t, `{"a":1,"b":2}`)), "Sheet1", &buf, []string{"a", "b"}))

	f := reopen(t, b)
	for _, axis := range []string{"A1", "B1"} {
		s, err := f.GetCellStyle("Sheet1", axis)
		require.NoError(t, err)
		assert.NotZero(t, s, axis)
	}
	s, err := f.GetCellStyle("Sheet1", "A2")
	require.NoError(t, err)
	assert.Zero(t, s)
}

func TestInvalidHeaderStyle(t *testing.T) {
	b := NewBook()
	defer b.Close()
	b.HeaderStyle = jsonsheet.Style{Format: strings.Repeat("0", MaxNumFmtLength+1)}
	_, err := b.AddNamedSheet("Sheet1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, jsonsheet.InvalidSheetName), "%v", err)
	assert.False(t, errors.Is(err, jsonsheet.UnableToWriteString), "%v", err)
	assert.Contains(t, err.Error(), "header style")
	assert.Empty(t, b.SheetNames(), "no sheet is added on failure")

	b.HeaderStyle = jsonsheet.Style{FontBold: true}
	_, err = b.AddNamedSheet("Sheet1")
	assert.NoError(t, err)
}

type failingWriter struct {
	writeErr, flushErr error
	bytes.Buffer
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.writeErr != nil {
		return 0, w.writeErr
	}
	return w.Buffer.Write(p)
}
func (w *failingWriter) Flush() error { return w.flushErr }

func TestSaveTo(t *testing.T) {
	b := NewBook()
	defer b.Close()
	_, err := b.AddNamedSheet("Sheet1")
	require.NoError(t, err)

	var ok failingWriter
	require.NoError(t, b.SaveTo(&ok))
	assert.True(t, bytes.HasPrefix(ok.Bytes(), []byte("PK")), "zip")

	boom := errors.New("boom")
	err = b.SaveTo(&failingWriter{writeErr: boom})
	assert.True(t, errors.Is(err, jsonsheet.UnableToWriteToWriter), "%v", err)
	assert.True(t, errors.Is(err, boom))

	err = b.SaveTo(&failingWriter{flushErr: boom})
	assert.True(t, errors.Is(err, jsonsheet.UnableToFlush), "%v", err)
}
