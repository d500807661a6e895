package dispatchrecorder

import (
	"context"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/petfolio/reminder-dispatch/internal/domain"
)

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.DispatchRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "dispatch result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, dispatch result recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "dispatch result recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.InfluxDBBucket,
		org:      cfg.InfluxDBOrg,
	}, nil
}

func (r *influxDBRecorder) RecordTickResult(ctx context.Context, record domain.DispatchTickRecord) error {
	runID := record.RunID
	if runID == "" {
		runID = "default"
	}

	// Use real time as timestamp to prevent overwrites between ticks
	pointTime := time.Now()

	point := influxdb2.NewPoint(
		"dispatch_tick",
		map[string]string{
			"run_id": runID,
			"kind":   string(record.Kind),
			"tick":   record.TickTime.UTC().Format(time.RFC3339),
		},
		map[string]any{
			"evaluated":         record.Evaluated,
			"reservations_won":  record.ReservationsWon,
			"reservations_lost": record.ReservationsLost,
			"batches":           record.Batches,
			"sent":              record.Sent,
			"failed":            record.Failed,
			"retried":           record.Retried,
			"skipped":           record.Skipped,
			"tick_unix":         record.TickTime.Unix(),
		},
		pointTime,
	)

	if err := r.writeAPI.WritePoint(ctx, point); err != nil {
		slog.WarnContext(ctx, "failed to write dispatch tick to InfluxDB",
			slog.String("error", err.Error()),
			slog.String("kind", string(record.Kind)),
			slog.Time("tick", record.TickTime),
		)
	}

	return nil
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}
