// Package slog bridges log/slog to the logger.Logger interface for callers
// that already ship slog handlers.
package slog

import (
	"log/slog"
)

// Logger forwards every call to a slog.Logger built from the supplied
// handler. The alternating key/value arguments pass through unchanged since
// both interfaces share that convention.
type Logger struct {
	base *slog.Logger
}

// New wraps a slog handler. Level filtering is the handler's job; Debug
// calls reach it regardless.
func New(h slog.Handler) *Logger {
	return &Logger{base: slog.New(h)}
}

func (l *Logger) Error(msg string, args ...any) {
	l.base.Error(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.base.Warn(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.base.Info(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.base.Debug(msg, args...)
}
