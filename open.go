// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package jsonsheet

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var EncName = "utf-8"

func init() {
	EncName = os.Getenv("LANG")
	if i := strings.IndexByte(EncName, '.'); i >= 0 {
		EncName = strings.ToLower(EncName[i+1:])
	}
	if EncName == "" || EncName == "c" || EncName == "posix" {
		EncName = "utf-8"
	}
}

// GetEncoding returns the named encoding, or nil for UTF-8.
func GetEncoding(encName string) (encoding.Encoding, error) {
	encName = strings.ToLower(encName)
	if encName == "" || encName == "utf-8" || encName == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		err = fmt.Errorf("%q: %w", encName, err)
	}
	return enc, err
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

type jsonlReadCloser struct {
	*RecordReader
	closers []io.Closer
}

// Close closes the decompressor and the underlying file.
func (rc jsonlReadCloser) Close() error {
	var err error
	for _, c := range rc.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// OpenJSONL opens fn (stdin for "" or "-") for reading records.
//
// gzip, zstd and lz4 compressed input is detected by its magic number,
// and decoded from encName if that is not UTF-8.
func OpenJSONL(fn, encName string) (jsonlReadCloser, error) {
	var enc encoding.Encoding
	if encName != "" {
		var err error
		if enc, err = GetEncoding(encName); err != nil {
			return jsonlReadCloser{}, err
		}
	}
	fh := os.Stdin
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Open(fn); err != nil {
			return jsonlReadCloser{}, err
		}
	}
	rc := jsonlReadCloser{closers: []io.Closer{fh}}
	r, closer, err := Decompress(bufio.NewReaderSize(fh, 1<<20))
	if err != nil {
		_ = fh.Close()
		return jsonlReadCloser{}, fmt.Errorf("%s: %w", fn, err)
	}
	if closer != nil {
		rc.closers = append([]io.Closer{closer}, rc.closers...)
	}
	if enc != nil {
		r = enc.NewDecoder().Reader(r)
	}
	rc.RecordReader = NewRecordReader(r)
	return rc, nil
}

// Decompress sniffs the first bytes of br and wraps it in the matching
// decompressor. Uncompressed input is returned as is with a nil Closer.
func Decompress(br *bufio.Reader) (io.Reader, io.Closer, error) {
	b, err := br.Peek(4)
	if err != nil && len(b) == 0 {
		if err == io.EOF {
			return br, nil, nil
		}
		return nil, nil, err
	}
	switch {
	case bytes.HasPrefix(b, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, zr, nil
	case bytes.HasPrefix(b, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		rc := zr.IOReadCloser()
		return rc, rc, nil
	case bytes.HasPrefix(b, lz4Magic):
		return lz4.NewReader(br), nil, nil
	}
	return br, nil, nil
}
