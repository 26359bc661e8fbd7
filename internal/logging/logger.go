// Package logging builds the slog loggers used across slate.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/balkashynov/slate/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(out, handlerOpts)), nil
	case "console", "":
		return slog.New(slog.NewTextHandler(out, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates a logger writing to the slate log file in the data
// directory. The terminal UI owns stdout, so nothing is written there. The
// returned closer releases the file.
func NewFromConfig(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	if cfg == nil {
		logger, err := New(Options{Level: "info", Format: "console"})
		return logger, io.NopCloser(nil), err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger, err := New(Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: file})
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return logger, file, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
