// Package logging configures the process-wide slog logger.
//
// All diagnostics go to stderr. Standard output is reserved for the
// inventory document and is never written by a handler from this package.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel overrides the configured level when set.
const EnvLogLevel = "LOG_LEVEL"

// Options controls handler construction.
type Options struct {
	// Level is the minimum level emitted.
	Level slog.Level

	// JSON selects the JSON handler instead of the text handler.
	JSON bool

	// Name and Version are attached to every record when non-empty.
	Name    string
	Version string
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: opts.Level}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}

	logger := slog.New(h)
	if opts.Name != "" {
		logger = logger.With(slog.String("name", opts.Name))
	}
	if opts.Version != "" {
		logger = logger.With(slog.String("version", opts.Version))
	}
	return logger
}

// SetDefault installs a stderr logger at opts.Level as the slog default.
// Callers combine flags with LevelFromEnv to pick the level.
func SetDefault(opts Options) {
	slog.SetDefault(New(os.Stderr, opts))
}

// LevelFromEnv returns the level named by LOG_LEVEL, or fallback when
// the variable is unset or unrecognized.
func LevelFromEnv(fallback slog.Level) slog.Level {
	v := os.Getenv(EnvLogLevel)
	if v == "" {
		return fallback
	}
	lvl, ok := ParseLevel(v)
	if !ok {
		return fallback
	}
	return lvl
}

// ParseLevel parses debug, info, warn/warning, or error (case-insensitive).
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
