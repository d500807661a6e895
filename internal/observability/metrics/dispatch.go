package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const dispatchMeterName = "dispatch.service"

type DispatchMetrics struct {
	occurrencesEvaluated metric.Int64Counter
	reservations         metric.Int64Counter
	sends                metric.Int64Counter
	batchSize            metric.Int64Histogram
	tickDuration         metric.Float64Histogram
}

func NewDispatchMetrics() (*DispatchMetrics, error) {
	meter := otel.Meter(dispatchMeterName)

	occurrencesEvaluated, err := meter.Int64Counter(
		"dispatch_occurrences_evaluated_total",
		metric.WithDescription("Due occurrences produced by the evaluators"),
		metric.WithUnit("{occurrence}"),
	)
	if err != nil {
		return nil, err
	}

	reservations, err := meter.Int64Counter(
		"dispatch_reservations_total",
		metric.WithDescription("Reservation attempts by outcome"),
		metric.WithUnit("{reservation}"),
	)
	if err != nil {
		return nil, err
	}

	sends, err := meter.Int64Counter(
		"dispatch_sends_total",
		metric.WithDescription("Outbound messages by channel and outcome"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	batchSize, err := meter.Int64Histogram(
		"dispatch_batch_size",
		metric.WithDescription("Occurrences per outbound batch"),
		metric.WithUnit("{occurrence}"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 10, 25, 50),
	)
	if err != nil {
		return nil, err
	}

	tickDuration, err := meter.Float64Histogram(
		"dispatch_tick_duration_seconds",
		metric.WithDescription("End-to-end tick duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	return &DispatchMetrics{
		occurrencesEvaluated: occurrencesEvaluated,
		reservations:         reservations,
		sends:                sends,
		batchSize:            batchSize,
		tickDuration:         tickDuration,
	}, nil
}

func (m *DispatchMetrics) RecordEvaluated(ctx context.Context, kind string, count int) {
	m.occurrencesEvaluated.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

func (m *DispatchMetrics) RecordReservation(ctx context.Context, kind, outcome string) {
	m.reservations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

func (m *DispatchMetrics) RecordSend(ctx context.Context, channel, outcome string) {
	m.sends.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("outcome", outcome),
	))
}

func (m *DispatchMetrics) RecordBatchSize(ctx context.Context, channel string, size int) {
	m.batchSize.Record(ctx, int64(size), metric.WithAttributes(
		attribute.String("channel", channel),
	))
}

func (m *DispatchMetrics) RecordTickDuration(ctx context.Context, kind string, duration time.Duration) {
	m.tickDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
	))
}
