// Package output provides terminal output utilities.
package output

import (
	"os"

	"github.com/charmbracelet/log"
)

// logger is the package logger. SetupLogging replaces it; the zero-config
// default still prints so failures before setup are not swallowed.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
})

// LogConfig controls how SetupLogging configures the package logger.
type LogConfig struct {
	// Verbose enables debug-level logging and forces timestamps on.
	Verbose bool

	// Timestamps toggles timestamp reporting. Nil means on.
	Timestamps *bool
}

// BoolPtr returns a pointer to b, for LogConfig.Timestamps.
func BoolPtr(b bool) *bool {
	return &b
}

// SetupLogging configures the package logger from the resolved config.
func SetupLogging(cfg LogConfig) {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}

	timestamps := true
	if !cfg.Verbose && cfg.Timestamps != nil {
		timestamps = *cfg.Timestamps
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: timestamps,
		ReportCaller:    cfg.Verbose,
		TimeFormat:      "15:04:05",
	})
}

// ReleaseLogger returns a logger prefixed with the release candidate it is
// reporting on, e.g. "0.8.0rc2".
func ReleaseLogger(candidate string) *log.Logger {
	return logger.WithPrefix(candidate)
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) {
	logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...interface{}) {
	logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...interface{}) {
	logger.Error(msg, keyvals...)
}

// Fatal logs a fatal message and exits.
func Fatal(msg string, keyvals ...interface{}) {
	logger.Fatal(msg, keyvals...)
}

// Print prints a message to stdout without any formatting.
func Print(msg string) {
	os.Stdout.WriteString(msg)
}

// Println prints a message to stdout with a newline.
func Println(msg string) {
	os.Stdout.WriteString(msg + "\n")
}
