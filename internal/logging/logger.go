// Package logging provides the structured logger used by the training
// driver and the CLI.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with training-specific helpers.
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

// NewTextLogger creates a Logger that writes human-readable text logs to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that writes JSON logs to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(name))
	return level, err
}

// WithNetwork adds a network field to the logger.
func (l *Logger) WithNetwork(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("network", name),
	}
}

// WithDataset adds a dataset field to the logger.
func (l *Logger) WithDataset(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dataset", name),
	}
}

// LogDataset logs a dataset load.
func (l *Logger) LogDataset(ctx context.Context, path string, items int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dataset load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dataset loaded",
			"path", path,
			"items", items,
		)
	}
}

// LogProgress logs the running loss inside an epoch.
func (l *Logger) LogProgress(ctx context.Context, epoch, seen, total int, loss float64) {
	l.DebugContext(ctx, "training progress",
		"epoch", epoch,
		"seen", seen,
		"total", total,
		"loss", loss,
	)
}

// LogEpoch logs the statistics of a finished epoch.
func (l *Logger) LogEpoch(ctx context.Context, epoch, examples int, meanLoss, stdLoss float64, elapsed time.Duration) {
	l.InfoContext(ctx, "epoch completed",
		"epoch", epoch,
		"examples", examples,
		"loss_mean", meanLoss,
		"loss_std", stdLoss,
		"elapsed", elapsed,
	)
}

// LogEvaluation logs the result of an evaluation pass.
func (l *Logger) LogEvaluation(ctx context.Context, total, correct int, accuracy float64) {
	l.InfoContext(ctx, "evaluation completed",
		"total", total,
		"correct", correct,
		"accuracy", accuracy,
	)
}
