// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides the small structured logging seam that the decoder
// and its command-line front ends log through. It mirrors the shape of the
// logger bmfdec's parsing core expects: a Logger that accepts key/value
// pairs, a Helper with printf-style severity methods, and a level filter
// that can be wrapped around any Logger.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is a log severity.
type Level int8

// Log severities, from most to least verbose.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the textual name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal interface the decoder logs through. Log takes a
// level followed by alternating key/value pairs, matching the structured
// logging call shape of the rest of the ambient stack.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger writes log lines to an io.Writer as plain text.
type stdLogger struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStdLogger returns a Logger that writes to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{out: w}
}

func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	fmt.Fprintf(l.out, "%s level=%s", ts, level)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(l.out, " %v=%v", keyvals[i], keyvals[i+1])
	}
	if len(keyvals)%2 == 1 {
		fmt.Fprintf(l.out, " %v=MISSING", keyvals[len(keyvals)-1])
	}
	fmt.Fprintln(l.out)
	return nil
}

// Option configures a filter.
type Option func(*filter)

// FilterLevel sets the minimum level that passes through the filter.
func FilterLevel(level Level) Option {
	return func(f *filter) {
		f.level = level
	}
}

type filter struct {
	Logger
	level Level
}

// NewFilter wraps logger so that only records at or above the configured
// level (default LevelDebug, i.e. everything) reach it.
func NewFilter(logger Logger, opts ...Option) Logger {
	f := &filter{Logger: logger, level: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.level {
		return nil
	}
	return f.Logger.Log(level, keyvals...)
}

// Helper adds printf-style severity methods on top of a Logger, the shape
// every warn-and-continue decode path in bmfdec logs through.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, msg string) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Log(level, "msg", msg)
}

// Debug logs at LevelDebug.
func (h *Helper) Debug(args ...interface{}) { h.log(LevelDebug, fmt.Sprint(args...)) }

// Debugf logs a formatted message at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) {
	h.log(LevelDebug, fmt.Sprintf(format, args...))
}

// Info logs at LevelInfo.
func (h *Helper) Info(args ...interface{}) { h.log(LevelInfo, fmt.Sprint(args...)) }

// Infof logs a formatted message at LevelInfo.
func (h *Helper) Infof(format string, args ...interface{}) {
	h.log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn logs at LevelWarn.
func (h *Helper) Warn(args ...interface{}) { h.log(LevelWarn, fmt.Sprint(args...)) }

// Warnf logs a formatted message at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) {
	h.log(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs at LevelError.
func (h *Helper) Error(args ...interface{}) { h.log(LevelError, fmt.Sprint(args...)) }

// Errorf logs a formatted message at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) {
	h.log(LevelError, fmt.Sprintf(format, args...))
}

// defaultLogger is the stderr logger, filtered to errors, behind Default.
func defaultLogger() Logger {
	return NewFilter(NewStdLogger(os.Stderr), FilterLevel(LevelError))
}

// Default returns the package default Helper (stderr, errors only).
func Default() *Helper {
	return NewHelper(defaultLogger())
}
