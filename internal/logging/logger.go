// Package logging builds the leveled loggers handed to each component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Options controls logger construction
type Options struct {
	Debug  bool
	Prefix string
}

// New creates a logger writing to w. Debug lowers the level to debug.
func New(w io.Writer, opts Options) *log.Logger {
	level := log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
		Prefix:          opts.Prefix,
	})
}

// Discard returns a logger that drops everything
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// File is a logger backed by a log file
type File struct {
	*log.Logger
	f *os.File
}

// OpenFile creates a logger that appends to path, creating its directory.
// An empty path uses DefaultPath.
func OpenFile(path string, opts Options) (*File, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// #nosec G304 -- path is the operator's chosen log file
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &File{Logger: New(f, opts), f: f}, nil
}

// Path returns the log file path
func (l *File) Path() string {
	return l.f.Name()
}

// Close closes the log file
func (l *File) Close() error {
	return l.f.Close()
}

// DefaultPath is a dated file under ~/.moko-board/logs
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	name := fmt.Sprintf("moko-board-%s.log", time.Now().Format("2006-01-02"))
	return filepath.Join(home, ".moko-board", "logs", name), nil
}
