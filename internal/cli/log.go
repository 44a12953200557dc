// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newLogger(stderr io.Writer, opts *options) (zerolog.Logger, io.Closer) {
	var w io.Writer = zerolog.ConsoleWriter{
		Out:        stderr,
		NoColor:    !useColor(stderr, opts.noColor),
		TimeFormat: "15:04:05.000",
	}
	var closer io.Closer = nopCloser{}
	if opts.logFile != "" {
		lj := newLogFile(opts.logFile)
		w = zerolog.MultiLevelWriter(w, lj)
		closer = lj
	}
	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), closer
}

// newLogFile returns a log file which is rotated at 10 MB, keeping
// three old files for up to four weeks.
func newLogFile(name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   name,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}
