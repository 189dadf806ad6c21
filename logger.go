package sketchdex

import (
	"context"
	"log/slog"
	"os"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
)

// Logger wraps slog.Logger with sketchdex-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewZapLogger routes log output through an existing zap logger.
func NewZapLogger(z *zap.Logger, level slog.Level) *Logger {
	return NewLogger(slogzap.Option{Level: level, Logger: z}.NewZapHandler())
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithDatabase adds a database field to the logger.
func (l *Logger) WithDatabase(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("database", name),
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, databases, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"databases", databases,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"databases", databases,
			"results", results,
		)
	}
}

// LogGatherMatch logs one gather round.
func (l *Logger) LogGatherMatch(ctx context.Context, r GatherResult) {
	l.DebugContext(ctx, "gather match",
		"name", r.Name,
		"database", r.Filename,
		"overlap", FormatBP(float64(r.IntersectBP)),
		"f_orig_query", r.FOrigQuery,
		"f_match", r.FMatch,
	)
}

// LogGather logs a completed gather.
func (l *Logger) LogGather(ctx context.Context, matches int, remaining float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "gather failed",
			"matches", matches,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "gather completed",
			"matches", matches,
			"weighted_missed", remaining,
		)
	}
}

// LogOpen logs opening a database.
func (l *Logger) LogOpen(ctx context.Context, path string, items int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open database failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "database opened",
			"path", path,
			"items", items,
		)
	}
}
