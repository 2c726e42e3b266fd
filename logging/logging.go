// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package logging defines the capability-style logger the engine accepts.
//
// The interface is deliberately small: printf-style methods, one per
// level, selected at construction time. Hosts that already run log/slog
// wrap it with NewStructured; everything else picks a console, file, or
// rotating variant. The zero configuration is silent (Nop).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger is the logging capability handed to the engine. Implementations
// gate each method on the level chosen at construction; disabled levels
// must not format their arguments.
type Logger interface {
	Trace(format string, args ...any)
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	// Fatal logs the message and terminates the process with exit code 1,
	// unless the variant documents otherwise (Nop only logs nothing).
	Fatal(format string, args ...any)
}

// Level is a log severity threshold.
type Level int

// Severity levels, lowest first.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the level name used in output and ParseLevel.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel converts a level name (case-insensitive) into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return LevelInfo, fmt.Errorf("logging: unknown level %q", s)
	}
}

// exit is swapped out by tests of Fatal.
var exit = os.Exit

// writerLogger serializes timestamped lines to an io.Writer.
type writerLogger struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
	clock func() time.Time
}

// NewConsole returns a Logger writing timestamped lines to w at the
// given minimum level. Writes are serialized; w need not be safe for
// concurrent use.
func NewConsole(w io.Writer, level Level) Logger {
	return &writerLogger{w: w, level: level, clock: time.Now}
}

// NewFile returns a Logger appending to the file at path, creating it if
// needed. The file is never rotated; see NewRotating for bounded logs.
func NewFile(path string, level Level) (Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", path, err)
	}
	return &writerLogger{w: f, level: level, clock: time.Now}, nil
}

func (l *writerLogger) log(level Level, format string, args ...any) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	ts := l.clock().Format("2006/01/02 15:04:05.000")

	l.mu.Lock()
	fmt.Fprintf(l.w, "%s %-5s %s\n", ts, strings.ToUpper(level.String()), msg)
	l.mu.Unlock()
}

func (l *writerLogger) Trace(format string, args ...any) { l.log(LevelTrace, format, args...) }
func (l *writerLogger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *writerLogger) Info(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *writerLogger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *writerLogger) Error(format string, args ...any) { l.log(LevelError, format, args...) }

func (l *writerLogger) Fatal(format string, args ...any) {
	l.log(LevelFatal, format, args...)
	exit(1)
}

// LevelStructuredTrace is the slog level Trace maps to, one notch below
// slog.LevelDebug so slog handlers can opt in separately.
const LevelStructuredTrace = slog.LevelDebug - 4

// structured adapts a *slog.Logger. Level gating is delegated to the
// slog handler.
type structured struct {
	sl *slog.Logger
}

// NewStructured wraps an existing slog logger. A nil logger yields Nop().
func NewStructured(sl *slog.Logger) Logger {
	if sl == nil {
		return Nop()
	}
	return &structured{sl: sl}
}

func (s *structured) Trace(format string, args ...any) {
	if s.sl.Enabled(nil, LevelStructuredTrace) {
		s.sl.Log(nil, LevelStructuredTrace, fmt.Sprintf(format, args...))
	}
}

func (s *structured) Debug(format string, args ...any) {
	if s.sl.Enabled(nil, slog.LevelDebug) {
		s.sl.Debug(fmt.Sprintf(format, args...))
	}
}

func (s *structured) Info(format string, args ...any) {
	if s.sl.Enabled(nil, slog.LevelInfo) {
		s.sl.Info(fmt.Sprintf(format, args...))
	}
}

func (s *structured) Warn(format string, args ...any) {
	if s.sl.Enabled(nil, slog.LevelWarn) {
		s.sl.Warn(fmt.Sprintf(format, args...))
	}
}

func (s *structured) Error(format string, args ...any) {
	if s.sl.Enabled(nil, slog.LevelError) {
		s.sl.Error(fmt.Sprintf(format, args...))
	}
}

func (s *structured) Fatal(format string, args ...any) {
	s.sl.Error(fmt.Sprintf(format, args...), "fatal", true)
	exit(1)
}

type nop struct{}

// Nop returns a Logger that discards everything, including Fatal, which
// does not terminate the process.
func Nop() Logger { return nop{} }

func (nop) Trace(string, ...any) {}
func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}
func (nop) Fatal(string, ...any) {}
