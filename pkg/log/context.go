package log

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type contextKey struct{}

var loggerContextKey = contextKey{}

// SetContextLogger stores lg in ctx. When ctx carries a valid span, the stored
// logger is a SpanLogger that mirrors entries onto that span. A nil lg stores
// a NoopLogger.
func SetContextLogger(ctx context.Context, lg Logger) context.Context {
	if lg == nil {
		lg = NewNoopLogger()
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		lg = NewSpanLogger(lg, NewOtelSpanEventRecorder(span))
	}

	return context.WithValue(ctx, loggerContextKey, lg)
}

// FromContext returns the logger stored by SetContextLogger, or a NoopLogger.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerContextKey).(Logger); ok {
		return l
	}
	return NewNoopLogger()
}
