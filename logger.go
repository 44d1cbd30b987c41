package pak

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/time/rate"
)

const (
	// defaultResizeLogRate bounds resize log lines per second per logger.
	defaultResizeLogRate  = 50
	defaultResizeLogBurst = 10
)

// Logger wraps slog.Logger with pak-specific context.
// This provides structured logging with consistent field names.
//
// Resize events are throttled: a tight push/pop loop can resize thousands of
// times per second, and only a sample of those lines reaches the handler.
type Logger struct {
	*slog.Logger
	resize *rate.Limiter
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
		resize: rate.NewLimiter(defaultResizeLogRate, defaultResizeLogBurst),
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

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithResizeRate replaces the resize throttle. A limit of rate.Inf logs
// every resize.
func (l *Logger) WithResizeRate(limit rate.Limit, burst int) *Logger {
	return &Logger{
		Logger: l.Logger,
		resize: rate.NewLimiter(limit, burst),
	}
}

// WithContainer adds a container kind field ("vector", "list", ...).
func (l *Logger) WithContainer(kind string) *Logger {
	return &Logger{
		Logger: l.Logger.With("container", kind),
		resize: l.resize,
	}
}

// LogResize logs a capacity change. Lines beyond the throttle are dropped.
func (l *Logger) LogResize(from, to, count int) {
	if l == nil || !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if !l.resize.Allow() {
		return
	}
	l.Debug("resize",
		"from", from,
		"to", to,
		"count", count,
	)
}

// LogAllocFailure logs a refused or failed allocation.
func (l *Logger) LogAllocFailure(op string, capacity int, err error) {
	if l == nil {
		return
	}
	l.Warn("allocation failed",
		"op", op,
		"capacity", capacity,
		"error", err,
	)
}

// LogFree logs container destruction.
func (l *Logger) LogFree(released int) {
	if l == nil {
		return
	}
	l.Debug("freed",
		"released", released,
	)
}
