// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package jsonsheet

import (
	"errors"
	"strings"
)

// Kind identifies the class of a conversion failure.
//
// Kind implements error, so errors.Is(err, RowOverflow) reports whether
// err (or anything it wraps) is of that kind.
type Kind uint8

const (
	KindUnknown Kind = iota
	EmptyInput
	UnableToParseLine
	InvalidNumber
	// InvalidString means a composite value re-serialized to bytes that
	// are not valid UTF-8.
	InvalidString
	ColumnOverflow
	RowOverflow
	InvalidSheetName
	UnableToWriteBool
	UnableToWriteDouble
	UnableToWriteString
	UnableToConvertArrayToJson
	UnableToConvertObjectToJson
	UnableToSaveToBuffer
	UnableToWriteToWriter
	UnableToFlush
)

var kindNames = [...]string{
	KindUnknown:                 "unknown",
	EmptyInput:                  "empty input",
	UnableToParseLine:           "unable to parse line",
	InvalidNumber:               "invalid number",
	InvalidString:               "invalid string",
	ColumnOverflow:              "column overflow",
	RowOverflow:                 "row overflow",
	InvalidSheetName:            "invalid sheet name",
	UnableToWriteBool:           "unable to write bool",
	UnableToWriteDouble:         "unable to write double",
	UnableToWriteString:         "unable to write string",
	UnableToConvertArrayToJson:  "unable to convert array to json",
	UnableToConvertObjectToJson: "unable to convert object to json",
	UnableToSaveToBuffer:        "unable to save to buffer",
	UnableToWriteToWriter:       "unable to write to writer",
	UnableToFlush:               "unable to flush",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

func (k Kind) Error() string { return k.String() }

// Error is the structured failure of a conversion step.
type Error struct {
	Err    error
	Detail string
	Kind   Kind
}

// NewError returns an *Error of the given kind with a detail and an optional cause.
func NewError(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: cause}
}

func (e *Error) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Kind.String())
	if e.Detail != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Detail)
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the Kind of the first *Error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return KindUnknown
}
