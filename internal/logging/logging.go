// Package logging provides the simulation's structured logging sink: a
// package-level *slog.Logger that every other package logs through, and a
// setter a host or test can use to redirect it.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// logger is the destination every call site logs through. Defaults to a
// text handler on stderr at Info level, matching what a headless run wants
// before any host has had a chance to configure one.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// L returns the current package-level logger.
func L() *slog.Logger {
	return logger
}

// SetLogger replaces the package-level logger. Hosts wire their own handler
// (e.g. a leveled JSON handler for production, a test-scoped one for
// package tests) through this rather than through a global writer.
func SetLogger(l *slog.Logger) {
	logger = l
}

// NewTextLogger builds a text-handler logger writing to w at the given
// level, for hosts (cmd/pixelworld) and tests that just want a quick sink
// without hand-rolling slog.HandlerOptions.
func NewTextLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record, for tests that want to
// exercise logging call sites without polluting test output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
