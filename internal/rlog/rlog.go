// Package rlog provides the structured logging sink for the scheduler and
// runtime lifecycle. It is deliberately separate from the REPL/driver's
// human-facing output (cmd/twine uses pterm for that); this is the
// machine-readable trace a maintainer greps, not what an interactive user
// watches scroll by.
package rlog

import (
	"io"
	"log/slog"
)

// Logger wraps an *slog.Logger so the twine package can depend on a small
// structural interface (twine.Logger) instead of importing log/slog
// directly into its public API.
type Logger struct {
	l *slog.Logger
}

// New builds a Logger writing JSON records at the given level to w.
func New(w io.Writer, level slog.Level) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{l: slog.New(h)}
}

// NewText builds a Logger writing human-readable text records, useful for
// local development (cmd/twine's -debug flag).
func NewText(w io.Writer, level slog.Level) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{l: slog.New(h)}
}

func (r *Logger) Debug(msg string, args ...any) { r.l.Debug(msg, args...) }
func (r *Logger) Info(msg string, args ...any)  { r.l.Info(msg, args...) }
func (r *Logger) Error(msg string, args ...any) { r.l.Error(msg, args...) }
