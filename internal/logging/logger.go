// Package logging provides structured logging for the TUI session.
// The terminal belongs to the interface while a session runs, so log
// output goes to a file instead of stdout/stderr.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with file-sink setup for TUI mode.
type Logger struct {
	zlog   zerolog.Logger
	output io.WriteCloser
}

// NewLogger creates a logger writing to the given sink.
func NewLogger(w io.WriteCloser) *Logger {
	logger := zerolog.New(w).
		With().
		Timestamp().
		Logger()

	return &Logger{
		zlog:   logger,
		output: w,
	}
}

// NewFileLogger creates a logger appending to the default log file
// ($XDG_STATE_HOME/ftpc/ftpc.log, falling back to ~/.ftpc.log). If no file
// can be opened, logging is discarded rather than failing startup.
func NewFileLogger() *Logger {
	f, err := openLogFile()
	if err != nil {
		return NewDiscardLogger()
	}
	return NewLogger(f)
}

// NewDiscardLogger creates a logger that drops everything. Used in tests
// and when no log file is available.
func NewDiscardLogger() *Logger {
	return &Logger{
		zlog:   zerolog.New(io.Discard),
		output: nopCloser{io.Discard},
	}
}

func openLogFile() (*os.File, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	var path string
	if dir != "" {
		path = filepath.Join(dir, "ftpc", "ftpc.log")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".ftpc.log")
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// Close flushes and closes the log sink.
func (l *Logger) Close() error {
	return l.output.Close()
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
