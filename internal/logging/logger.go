// Package logging sets up the process-wide slog logger and hands out
// request-scoped loggers tagged with chi's request ID.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs the default logger on stdout. level is one of debug, info,
// warn or error and falls back to info; format "json" selects the JSON
// handler and anything else the text handler.
func Setup(level, format string) {
	slog.SetDefault(New(level, format, os.Stdout))
}

// New returns a logger writing to w, honoring the same level and format
// values as Setup.
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// FromContext returns the default logger, carrying request_id when ctx came
// through chi's RequestID middleware.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := middleware.GetReqID(ctx); id != "" {
		logger = logger.With("request_id", id)
	}
	return logger
}

// WithFields is FromContext plus extra key/value pairs, for a session or
// submit that logs several steps under the same attributes:
//
//	logger := logging.WithFields(ctx, "session_id", id, "kind", kind.Key)
//	logger.Info("submit started")
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
