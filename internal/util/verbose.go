package util

import (
	"io"
	"log/slog"
	"os"
	"slices"
)

var logger *slog.Logger

// InitLogger initializes the global slog logger with appropriate level.
// Logs go to stderr so command output on stdout stays parseable.
func InitLogger(verbose bool) {
	initLogger(os.Stderr, verbose)
}

func initLogger(w io.Writer, verbose bool) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo, // Default level
	}

	if verbose {
		opts.Level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// GetLogger returns the configured logger instance
func GetLogger() *slog.Logger {
	if logger == nil {
		// Used before flags are parsed; fall back to scanning the arguments.
		InitLogger(IsVerbose())
	}
	return logger
}

// IsVerbose checks if verbose mode is enabled by looking at command line arguments
func IsVerbose() bool {
	return slices.ContainsFunc(os.Args, func(arg string) bool {
		return arg == "--verbose" || arg == "-V"
	})
}
