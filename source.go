// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package jsonsheet

import (
	"errors"
	"io"
	"iter"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// RecordReader reads a stream of consecutive JSON objects.
//
// It is lazy, finite and can be consumed once. A one-element look-ahead
// is available with Peek.
type RecordReader struct {
	dec     *gojson.Decoder
	err     error
	peeked  Record
	n       int
	hasPeek bool
}

// NewRecordReader returns a RecordReader decoding r.
func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{dec: gojson.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at the end of the stream.
//
// After the first failure every call returns the same error.
func (rr *RecordReader) Next() (Record, error) {
	if rr.hasPeek {
		rec := rr.peeked
		rr.peeked, rr.hasPeek = Record{}, false
		return rec, nil
	}
	if rr.err != nil {
		return Record{}, rr.err
	}
	var raw gojson.RawMessage
	if err := rr.dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			rr.err = io.EOF
		} else {
			rr.err = NewError(UnableToParseLine, recordDetail(rr.n), err)
		}
		return Record{}, rr.err
	}
	if err := CheckText(raw); err != nil {
		rr.err = NewError(UnableToParseLine, recordDetail(rr.n), err)
		return Record{}, rr.err
	}
	var rec Record
	if err := rec.UnmarshalJSON(raw); err != nil {
		rr.err = NewError(UnableToParseLine, recordDetail(rr.n), err)
		return Record{}, rr.err
	}
	rr.n++
	return rec, nil
}

// Peek returns the next record without consuming it.
func (rr *RecordReader) Peek() (Record, error) {
	if rr.hasPeek {
		return rr.peeked, nil
	}
	rec, err := rr.Next()
	if err != nil {
		return rec, err
	}
	rr.peeked, rr.hasPeek = rec, true
	return rec, nil
}

// All returns the remaining records as a sequence.
// The sequence ends at io.EOF or after yielding the first error.
func (rr *RecordReader) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := rr.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

func recordDetail(n int) string {
	return "record #" + strconv.Itoa(n+1)
}
