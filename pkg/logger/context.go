package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	runIDKey   contextKey = "run_id"
	countryKey contextKey = "country"
	loggerKey  contextKey = "logger"
)

// NewRunID returns an identifier for one availability check
func NewRunID() string {
	return uuid.New().String()
}

// WithRunID adds run ID to context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithCountry adds the storefront country to context
func WithCountry(ctx context.Context, country string) context.Context {
	return context.WithValue(ctx, countryKey, country)
}

// WithLogger adds logger to context
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// RunID returns the run ID stored in ctx, if any
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// FromContext extracts logger from context with all accumulated fields
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}

	l := Logger
	var fields []zap.Field

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}
	if country, ok := ctx.Value(countryKey).(string); ok && country != "" {
		fields = append(fields, zap.String("country", country))
	}

	if len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}
