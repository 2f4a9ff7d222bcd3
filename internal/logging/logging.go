// =============================================================================
// Bank Statement to Tally - Logging
// =============================================================================
//
// This module builds the logrus logger used by the commands and the
// conversion pipeline.
//
// FORMATS:
//   - text : human readable lines with full timestamps (default)
//   - json : one JSON object per line, for log collectors
//
// Field keys are shared constants so that every component logs the same
// names (file, run_id, row, rule, ...).
//
// =============================================================================

// Package logging builds the logrus logger shared by the commands and the
// conversion pipeline.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Field keys used across the application.
const (
	FieldFile     = "file"
	FieldOutput   = "output"
	FieldRows     = "rows"
	FieldVouchers = "vouchers"
	FieldRunID    = "run_id"
	FieldRow      = "row"
	FieldRule     = "rule"
)

// New creates a logger with the given level and format.
//
// Parameters:
//   - level: "debug", "info", "warn" or "error"; invalid values fall back to info
//   - format: "json" or "text"
func New(level, format string) *logrus.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with an explicit output, used by tests.
func NewWithWriter(w io.Writer, level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
