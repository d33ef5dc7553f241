// Package log is the leveled logger used throughout termfx. By default all
// output is discarded; applications install their own slog.Logger with
// SetLogger.
package log

import (
	"context"
	"io"
	"sync/atomic"

	"golang.org/x/exp/slog"
)

const (
	LevelError = slog.LevelError
	LevelWarn  = slog.LevelWarn
	LevelInfo  = slog.LevelInfo
	LevelDebug = slog.LevelDebug
	// LevelTrace is below debug. Every flushed input group is logged at this
	// level
	LevelTrace = slog.LevelDebug - 4
)

var (
	logger atomic.Pointer[slog.Logger]
	level  = new(slog.LevelVar)
)

func init() {
	level.Set(LevelError)
	logger.Store(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// SetLogger replaces the package logger. A nil logger restores the
// discarding default
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Store(l)
}

// SetOutput installs a text handler writing to w, filtered by the level set
// with SetLevel
func SetOutput(w io.Writer) {
	logger.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})))
}

// SetLevel sets the minimum level of loggers created with SetOutput
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Logger returns the current package logger
func Logger() *slog.Logger {
	return logger.Load()
}

func output(l slog.Level, msg string, args ...any) {
	lg := logger.Load()
	ctx := context.Background()
	if !lg.Enabled(ctx, l) {
		return
	}
	lg.Log(ctx, l, msg, args...)
}

func Trace(msg string, args ...any) {
	output(LevelTrace, msg, args...)
}

func Debug(msg string, args ...any) {
	output(LevelDebug, msg, args...)
}

func Info(msg string, args ...any) {
	output(LevelInfo, msg, args...)
}

func Warn(msg string, args ...any) {
	output(LevelWarn, msg, args...)
}

func Error(msg string, args ...any) {
	output(LevelError, msg, args...)
}
