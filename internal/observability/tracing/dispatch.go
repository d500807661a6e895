package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/petfolio/reminder-dispatch/internal/service/dispatch"

// StartTickSpan opens the root span for one evaluator tick.
func StartTickSpan(ctx context.Context, kind string, now time.Time) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "dispatch.tick",
		trace.WithAttributes(
			attribute.String("dispatch.kind", kind),
			attribute.String("dispatch.tick_time", now.UTC().Format(time.RFC3339)),
		),
	)
}

// StartSendSpan opens a span around one outbound provider call.
func StartSendSpan(ctx context.Context, channel string, batchSize int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "dispatch.send",
		trace.WithAttributes(
			attribute.String("dispatch.channel", channel),
			attribute.Int("dispatch.batch_size", batchSize),
		),
	)
}
