// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package logging provides structured logging functionality for the vet-session client.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	slogotel "github.com/remychantenay/slog-otel"

	"github.com/vetclinic/vet-session/pkg/env"
)

// scope is what a command or request carries through its context.
type scope struct {
	id     string
	logger *slog.Logger
}

type scopeKey struct{}

// NewRequestID returns 16 hex characters taken from a random UUID.
func NewRequestID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:8])
}

// NewLogger returns the process logger on stderr, leaving stdout to command
// output. LOG_LEVEL and LOG_FORMAT select level and encoding; passing true
// forces debug with source locations.
func NewLogger(debug ...bool) *slog.Logger {
	return NewLoggerTo(os.Stderr, debug...)
}

// NewLoggerTo is NewLogger with an explicit destination. The result also
// becomes slog's default logger.
func NewLoggerTo(w io.Writer, debug ...bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(env.GetString("LOG_LEVEL", "warn"))}
	if len(debug) > 0 && debug[0] {
		opts.Level, opts.AddSource = slog.LevelDebug, true
	}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if env.GetString("LOG_FORMAT", "text") == "json" {
		handler = slog.NewJSONHandler(w, opts)
	}

	// trace_id and span_id are attached when ctx carries a span
	logger := slog.New(slogotel.OtelHandler{Next: handler})
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps debug, warn and error to their slog levels; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// WithRequestID tags ctx and the returned logger with a fresh request_id.
func WithRequestID(ctx context.Context, base *slog.Logger) (context.Context, *slog.Logger) {
	sc := scope{id: NewRequestID()}
	sc.logger = base.With("request_id", sc.id)
	return context.WithValue(ctx, scopeKey{}, sc), sc.logger
}

func scopeFrom(ctx context.Context) (scope, bool) {
	if ctx == nil {
		return scope{}, false
	}
	sc, ok := ctx.Value(scopeKey{}).(scope)
	return sc, ok
}

// FromContext returns the request logger stored by WithRequestID, or fallback.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if sc, ok := scopeFrom(ctx); ok {
		return sc.logger
	}
	return fallback
}

// GetRequestID returns the request_id stored in ctx, if any.
func GetRequestID(ctx context.Context) string {
	sc, _ := scopeFrom(ctx)
	return sc.id
}

// WithComponent names the component emitting the log lines. A nil
// logger falls back to slog.Default.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", component)
}

// WithOperation adds an operation attribute.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With("operation", operation)
}

// LogError writes msg at error level with err under the "error" key.
func LogError(logger *slog.Logger, msg string, err error, fields ...any) {
	logger.Error(msg, append([]any{slog.String("error", err.Error())}, fields...)...)
}

// SafeTokenLog renders a bearer token without exposing it
func SafeTokenLog(token string) string {
	if token == "" {
		return "<empty>"
	}
	if len(token) < 20 {
		return "<too_short>"
	}
	return fmt.Sprintf("%s...%s", token[:8], token[len(token)-8:])
}

// SafePrincipalLog masks the mailbox domain of email-like identifiers
func SafePrincipalLog(principal string) string {
	if principal == "" {
		return "<empty>"
	}
	if local, _, found := strings.Cut(principal, "@"); found {
		return local + "@***"
	}
	return principal
}
