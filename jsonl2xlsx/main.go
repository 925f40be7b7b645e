// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command jsonl2xlsx converts newline-delimited JSON objects into an XLSX
// worksheet, one object per row.
package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UNO-SOFT/jsonsheet"
	"github.com/UNO-SOFT/jsonsheet/xlsx"
	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := Main(); err != nil {
		slog.Error("MAIN", "error", err, "kind", jsonsheet.KindOf(err).String())
		os.Exit(1)
	}
}

func Main() error {
	slog.SetDefault(logger)

	fs := flag.NewFlagSet("jsonl2xlsx", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	flagSheetName := fs.String("sheet-name", jsonsheet.SheetNameDefault, "worksheet name")
	flagEnc := fs.String("charset", jsonsheet.EncName, "input charset name")
	flagOut := fs.String("o", "", "output file name (default: stdout)")
	flagBold := fs.Bool("header-bold", false, "bold header row")
	flagFormat := fs.String("header-format", "", "number format of the header row")

	app := ffcli.Command{Name: "jsonl2xlsx", FlagSet: fs,
		ShortUsage: "jsonl2xlsx [flags] [input.jsonl]",
		ShortHelp:  "convert JSON lines to an XLSX worksheet",
		Options:    []ff.Option{ff.WithEnvVarPrefix("JSONL2XLSX")},
		Exec: func(ctx context.Context, args []string) error {
			var fn string
			if len(args) != 0 {
				fn = args[0]
			}
			rc, err := jsonsheet.OpenJSONL(fn, *flagEnc)
			if err != nil {
				return err
			}
			defer rc.Close()

			book := xlsx.NewBook()
			defer book.Close()
			book.HeaderStyle = jsonsheet.Style{FontBold: *flagBold, Format: *flagFormat}

			return writeOutput(*flagOut, func(w jsonsheet.FlushWriter) error {
				var buf bytes.Buffer
				return jsonsheet.ConvertRecords(rc.RecordReader, book, w, *flagSheetName, &buf)
			})
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := app.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return app.Run(ctx)
}

// writeOutput calls convert with a buffered writer on fn (stdout for "" or "-").
//
// The writer is flushed on every path. A created file is removed
// when convert fails.
func writeOutput(fn string, convert func(jsonsheet.FlushWriter) error) error {
	if fn == "" || fn == "-" {
		bw := bufio.NewWriter(os.Stdout)
		err := convert(bw)
		if ferr := bw.Flush(); ferr != nil && err == nil {
			err = jsonsheet.NewError(jsonsheet.UnableToFlush, "stdout", ferr)
		}
		return err
	}
	fh, err := os.Create(fn)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(fh)
	err = convert(bw)
	if ferr := bw.Flush(); ferr != nil && err == nil {
		err = jsonsheet.NewError(jsonsheet.UnableToFlush, fn, ferr)
	}
	if cerr := fh.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close %q: %w", fn, cerr)
	}
	if err != nil {
		slog.Debug("remove partial output", "file", fn)
		_ = os.Remove(fn)
	}
	return err
}
