package output

import (
	"io"
	"log/slog"
	"math"
)

// SetupLogger creates a slog.Logger configured for the given verbosity.
// Output is written to w (typically os.Stderr).
//
// Log level mapping:
//   - quiet=true: Suppress ALL output (level set to math.MaxInt to disable all messages)
//   - debug=true: slog.LevelDebug
//   - verbose=true: slog.LevelInfo
//   - Default (all false): slog.LevelWarn (only warnings and errors)
//
// Priority: quiet > debug > verbose > default
func SetupLogger(quiet, verbose, debug bool, w io.Writer) *slog.Logger {
	return NewLogger(LogOptions{Quiet: quiet, Verbose: verbose, Debug: debug}, w)
}

// LogOptions selects the level and encoding of a logger.
type LogOptions struct {
	Quiet   bool
	Verbose bool
	Debug   bool
	// JSON switches from text to JSON records, used by long-running
	// servers whose logs are collected.
	JSON bool
}

// NewLogger creates a logger from opts, writing to w.
func NewLogger(opts LogOptions, w io.Writer) *slog.Logger {
	var level slog.Level

	switch {
	case opts.Quiet:
		level = slog.Level(math.MaxInt)
	case opts.Debug:
		level = slog.LevelDebug
	case opts.Verbose:
		level = slog.LevelInfo
	default:
		level = slog.LevelWarn
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
