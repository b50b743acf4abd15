// Package logging wraps github.com/charmbracelet/log with the small
// subset of structured logging the session and CLI packages need, kept
// off the audio thread entirely: the audio callback never logs.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is a named, leveled logger.
type Logger struct {
	inner *log.Logger
}

// New returns a Logger prefixed with name.
func New(name string) *Logger {
	var l = log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          name,
		ReportTimestamp: true,
	})
	return &Logger{inner: l}
}

// Info logs at info level with key/value pairs.
func (l *Logger) Info(msg string, kv ...interface{}) { l.inner.Info(msg, kv...) }

// Warn logs at warn level with key/value pairs.
func (l *Logger) Warn(msg string, kv ...interface{}) { l.inner.Warn(msg, kv...) }

// Error logs at error level with key/value pairs.
func (l *Logger) Error(msg string, kv ...interface{}) { l.inner.Error(msg, kv...) }

// Debug logs at debug level with key/value pairs.
func (l *Logger) Debug(msg string, kv ...interface{}) { l.inner.Debug(msg, kv...) }
