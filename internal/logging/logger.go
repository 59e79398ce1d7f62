package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ctxKey string

const (
	ctxKeyFormID ctxKey = "form_id"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Setup replaces the global logger. format is "json" or "text".
func Setup(w io.Writer, level, format string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger = slog.New(handler)
	return logger
}

// ParseLevel maps debug, warn and error to slog levels; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Logger() *slog.Logger {
	return logger
}

// WithFields returns a logger with additional fields.
func WithFields(kv ...any) *slog.Logger {
	return logger.With(kv...)
}

// WithFormID stores the form being worked on in the context.
func WithFormID(ctx context.Context, formID string) context.Context {
	return context.WithValue(ctx, ctxKeyFormID, formID)
}

// FromContext adds form_id if present.
func FromContext(ctx context.Context) *slog.Logger {
	formID, _ := ctx.Value(ctxKeyFormID).(string)
	if formID == "" {
		return logger
	}
	return logger.With("form_id", formID)
}
