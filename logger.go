package seqidx

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with index-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithPath adds the index file path to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogOpen logs opening an index file.
func (l *Logger) LogOpen(path string, h *Header, d time.Duration, err error) {
	if err != nil {
		l.Error("open failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.Debug("index opened",
		"path", path,
		"entries", h.NEntries,
		"checkpoints", h.NCheckpoints,
		"sequences", h.NSequences,
		"duration", d,
	)
}

// LogBuild logs an index build.
func (l *Logger) LogBuild(ctx context.Context, path string, stats *BuildStats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "index built",
		"path", path,
		"sequences", stats.Sequences,
		"entries", stats.Entries,
		"checkpoints", stats.Checkpoints,
		"bytes", stats.Bytes,
		"duration", stats.Duration,
	)
}

// LogVerify logs a checksum verification.
func (l *Logger) LogVerify(ctx context.Context, path string, checked bool, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "verify failed",
			"path", path,
			"error", err,
		)
	case !checked:
		l.WarnContext(ctx, "index has no checksum",
			"path", path,
		)
	default:
		l.DebugContext(ctx, "verify completed",
			"path", path,
		)
	}
}
