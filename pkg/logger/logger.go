// Package logger provides structured logging functionality using slog
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level      string
	Format     string
	Output     string
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// NewLogger creates a new structured logger based on configuration
func NewLogger(cfg Config) *slog.Logger {
	level := ParseLevel(cfg.Level)
	writer := SetupWriter(cfg)

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: level,
		AddSource: level == slog.LevelDebug,
	}

	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return slog.New(handler)
}

// ParseLevel parses string log level to slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupWriter configures the output writer based on configuration
func SetupWriter(cfg Config) io.Writer {
	switch strings.ToLower(cfg.Output) {
	case "file":
		if cfg.Filename == "" {
			return os.Stdout
		}
		return &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,    // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,     // days
			Compress:   cfg.Compress,
		}
	case "stderr":
		return os.Stderr
	case "stdout", "":
		return os.Stdout
	default:
		return os.Stdout
	}
}

// WithComponent tags a logger with the subsystem emitting through it
// ("activator", "event_bus", ...), the convention every long-lived
// collaborator in internal/node and internal/observer follows.
func WithComponent(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("component", name)
}
