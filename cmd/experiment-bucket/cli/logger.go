// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger writing to w. When w is
// a terminal, uses slog.TextHandler for human-readable output. When w
// is piped or redirected (CI, scripts, tests), uses slog.JSONHandler
// for machine-parseable output.
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger(os.Stderr, slog.LevelInfo).With(
//	    "command", "convert",
//	    "definition", path,
//	)
func NewCommandLogger(w io.Writer, level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

// ParseLevel parses a configured log level name (debug, info, warn,
// error).
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}
