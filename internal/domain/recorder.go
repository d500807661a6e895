package domain

import (
	"context"
	"time"
)

// DispatchTickRecord summarizes one evaluator tick for offline analysis.
type DispatchTickRecord struct {
	RunID           string
	Kind            OccurrenceKind
	TickTime        time.Time
	Evaluated       int
	ReservationsWon int
	ReservationsLost int
	Batches         int
	Sent            int
	Failed          int
	Retried         int
	Skipped         int
}

// DispatchRecorder records tick outcomes to an external sink. Implementations
// must tolerate being called with an empty record set.
type DispatchRecorder interface {
	RecordTickResult(ctx context.Context, record DispatchTickRecord) error
	Close() error
}
