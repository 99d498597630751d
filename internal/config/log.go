package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ParseLogLevel maps a settings level name to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewLevel parses a level name into a LevelVar that can be changed while the
// logger is in use.
func NewLevel(s string) (*slog.LevelVar, error) {
	lvl, err := ParseLogLevel(s)
	if err != nil {
		return nil, err
	}
	v := new(slog.LevelVar)
	v.Set(lvl)
	return v, nil
}

// OpenLogger builds the host logger. Records go to stderr and, unless path is
// "-", to the log file at path (default ~/.mydecisions/logs/host.log). The
// returned closer closes the log file.
func OpenLogger(level slog.Leveler, path string, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	var err error
	if stderr == nil {
		stderr = os.Stderr
	}

	out := stderr
	closer := io.Closer(nopCloser{})
	if path != "-" {
		if path == "" {
			if path, err = DefaultHostLogFile(); err != nil {
				return nil, nil, err
			}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create logs dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(stderr, f)
		closer = f
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
