// Package logging provides the shared structured logger built on
// charmbracelet/log. Components receive a *log.Logger and never write
// to stderr directly.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	defaultLogger     *log.Logger
	defaultLoggerOnce sync.Once
)

// Default returns the process-wide default logger.
func Default() *log.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = New("info")
	})
	return defaultLogger
}

// New creates a logger writing to stderr at the given level.
// Valid levels: "debug", "info", "warn", "error".
func New(level string) *log.Logger {
	return NewWithOutput(os.Stderr, level)
}

// NewWithOutput creates a logger writing to w at the given level.
func NewWithOutput(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *log.Logger {
	return NewWithOutput(io.Discard, "error")
}

// ParseLevel converts a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Field name constants for structured logging.
const (
	FieldError   = "error"
	FieldPath    = "path"
	FieldConfig  = "config"
	FieldVersion = "version"
	FieldKind    = "kind"
	FieldFile    = "file"
	FieldCommand = "command"
)
