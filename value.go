// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package jsonsheet

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ValueKind is the JSON type of a Value.
type ValueKind uint8

const (
	KindInvalid ValueKind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is the raw JSON text of exactly one value.
//
// The zero Value is treated as null.
type Value []byte

// Kind returns the JSON type of v, judged by its first significant byte.
func (v Value) Kind() ValueKind {
	b := bytes.TrimLeft(v, " \t\r\n")
	if len(b) == 0 {
		return KindNull
	}
	switch c := b[0]; {
	case c == 'n':
		return KindNull
	case c == 't' || c == 'f':
		return KindBool
	case c == '"':
		return KindString
	case c == '[':
		return KindArray
	case c == '{':
		return KindObject
	case c == '-' || ('0' <= c && c <= '9'):
		return KindNumber
	}
	return KindInvalid
}

// Bool reports whether v is the literal true.
func (v Value) Bool() bool { return string(bytes.TrimSpace(v)) == "true" }

// Float64 converts a number literal to float64.
// Literals out of float64 range are an InvalidNumber error.
func (v Value) Float64() (float64, error) {
	s := string(bytes.TrimSpace(v))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, NewError(InvalidNumber, "rejected value: "+s, err)
	}
	return f, nil
}

// Text returns the unquoted content of a JSON string.
func (v Value) Text() (string, error) {
	if err := CheckText(v); err != nil {
		return "", err
	}
	var s string
	if err := gojson.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("%s: %w", v, err)
	}
	return s, nil
}

// CheckText reports invalid UTF-8 and unpaired surrogate escapes
// (such as "\ud800") in the JSON text b, which decoders would
// silently replace with U+FFFD.
func CheckText(b []byte) error {
	if !utf8.Valid(b) {
		return errors.New("invalid UTF-8")
	}
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' {
			continue
		}
		r, ok := escapedRune(b, i)
		i++ // skip the escaped byte
		if !ok {
			continue
		}
		i += 4
		switch {
		case utf16.IsSurrogate(r) && r < 0xdc00:
			if lo, ok := escapedRune(b, i+1); ok && 0xdc00 <= lo && lo <= 0xdfff {
				i += 6
				continue
			}
			return fmt.Errorf("unpaired surrogate \\u%04x", r)
		case utf16.IsSurrogate(r):
			return fmt.Errorf("unpaired surrogate \\u%04x", r)
		}
	}
	return nil
}

// escapedRune returns the code unit of the \uXXXX escape at b[i:].
func escapedRune(b []byte, i int) (rune, bool) {
	if i+6 > len(b) || b[i] != '\\' || b[i+1] != 'u' {
		return 0, false
	}
	n, err := strconv.ParseUint(string(b[i+2:i+6]), 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}

// Compact resets buf and writes the compact JSON rendering of v into it.
func (v Value) Compact(buf *bytes.Buffer) error {
	buf.Reset()
	if !gojson.Valid(v) {
		return fmt.Errorf("invalid JSON: %q", shorten(v))
	}
	return gojson.Compact(buf, v)
}

func shorten(b []byte) []byte {
	if len(b) > 32 {
		return append(b[:32:32], "..."...)
	}
	return b
}

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	*v = append((*v)[:0], b...)
	return nil
}

// Record is one decoded input object, keeping the fields in input order.
type Record struct {
	*orderedmap.OrderedMap[string, Value]
}

// NewRecord returns an empty Record.
func NewRecord() Record {
	return Record{OrderedMap: orderedmap.New[string, Value]()}
}

// Len returns the number of fields.
func (r Record) Len() int {
	if r.OrderedMap == nil {
		return 0
	}
	return r.OrderedMap.Len()
}

// Fields returns the field names in input order.
func (r Record) Fields() []string {
	names := make([]string, 0, r.Len())
	if r.OrderedMap == nil {
		return names
	}
	for pair := r.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// UnmarshalJSON accepts only JSON objects.
func (r *Record) UnmarshalJSON(b []byte) error {
	if k := Value(b).Kind(); k != KindObject {
		return fmt.Errorf("expected object, got %s", k)
	}
	r.OrderedMap = orderedmap.New[string, Value]()
	return r.OrderedMap.UnmarshalJSON(b)
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.OrderedMap == nil {
		return []byte("{}"), nil
	}
	return r.OrderedMap.MarshalJSON()
}
