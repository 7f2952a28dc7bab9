package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// FileLog is an append-only text log at a fixed path. It is used to carry
// diagnostic history across the reboot boundary, where anything held in
// memory or on a terminal is gone.
type FileLog struct {
	f *os.File
}

// OpenFileLog opens (creating if necessary) the log file at path for
// appending. The parent directory is created when missing. A leading ~ in
// the path is expanded.
func OpenFileLog(path string) (*FileLog, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand log path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(expanded, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &FileLog{f: f}, nil
}

// Writer returns the underlying writer.
func (l *FileLog) Writer() io.Writer { return l.f }

// Close closes the log file.
func (l *FileLog) Close() error {
	if err := l.f.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

// NewTeeLogger returns a logger that writes a text handler at the given
// level to both writers. Either writer may be nil.
func NewTeeLogger(console, file io.Writer, level slog.Level) *slog.Logger {
	var w io.Writer
	switch {
	case console == nil && file == nil:
		return slog.New(Discard)
	case console == nil:
		w = file
	case file == nil:
		w = console
	default:
		w = io.MultiWriter(console, file)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
