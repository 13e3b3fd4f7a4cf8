package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	actorIDKey       contextKey = "actor_id"
	actorRoleKey     contextKey = "actor_role"
	countryKey       contextKey = "country"
	loggerKey        contextKey = "logger"
)

// New creates a JSON logger tagged with the service name.
func New(serviceName, level string) *slog.Logger {
	return NewWithWriter(serviceName, level, os.Stdout)
}

// NewWithWriter creates a JSON logger writing to w. Unknown levels fall back
// to info.
func NewWithWriter(serviceName, level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})

	return slog.New(handler).With(
		slog.String("service", serviceName),
	)
}

// ParseLevel maps a textual level to slog.Level.
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

// WithCorrelationID returns a new context with the correlation ID set.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext extracts the correlation ID from the context.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithActor records the authenticated actor for log enrichment.
func WithActor(ctx context.Context, id, role string) context.Context {
	ctx = context.WithValue(ctx, actorIDKey, id)
	return context.WithValue(ctx, actorRoleKey, role)
}

// ActorFromContext returns the actor id and role stored by WithActor.
func ActorFromContext(ctx context.Context) (id, role string) {
	id, _ = ctx.Value(actorIDKey).(string)
	role, _ = ctx.Value(actorRoleKey).(string)
	return id, role
}

// WithCountry records the resolved destination country code.
func WithCountry(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, countryKey, code)
}

// CountryFromContext returns the country code stored by WithCountry.
func CountryFromContext(ctx context.Context) string {
	if c, ok := ctx.Value(countryKey).(string); ok {
		return c
	}
	return ""
}

// NewContext returns a new context with the given logger stored in it.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the request-scoped logger stored in context.
// Returns slog.Default() if no logger is stored.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithContext returns a logger carrying the request fields found in ctx:
// correlation_id, actor_id, actor_role, country, trace_id and span_id.
func WithContext(ctx context.Context, l *slog.Logger) *slog.Logger {
	if id := CorrelationIDFromContext(ctx); id != "" {
		l = l.With(slog.String("correlation_id", id))
	}

	if id, role := ActorFromContext(ctx); id != "" {
		l = l.With(slog.String("actor_id", id), slog.String("actor_role", role))
	}

	if c := CountryFromContext(ctx); c != "" {
		l = l.With(slog.String("country", c))
	}

	if spanCtx := trace.SpanFromContext(ctx).SpanContext(); spanCtx.IsValid() {
		l = l.With(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	return l
}
