package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=domain

// DispatchLogStore is the single writer of dedup truth. Reserve must be
// atomic against concurrent callers; everything else is bookkeeping on rows
// that one caller already owns.
type DispatchLogStore interface {
	// Reserve inserts the entry if no row for its key exists. ReserveLost
	// means another evaluator run already claimed the occurrence.
	Reserve(ctx context.Context, entry *DispatchLogEntry) (ReserveOutcome, error)
	Get(ctx context.Context, key string) (*DispatchLogEntry, error)
	MarkSent(ctx context.Context, key, externalMessageID string, sentAt time.Time) error
	MarkFailed(ctx context.Context, key, reason string) error
	// RecordAttempt bumps the attempt counter only when it still holds the
	// expected value, and reports whether this caller won the bump. Two ticks
	// resolving the same stale entry race here; exactly one proceeds to send.
	RecordAttempt(ctx context.Context, key string, expected int) (bool, error)
	// ListStaleReserved returns entries still Reserved whose reservation is
	// older than the cutoff, for the bounded send-only retry path.
	ListStaleReserved(ctx context.Context, olderThan time.Time, limit int) ([]*DispatchLogEntry, error)
	Ping(ctx context.Context) error
}

// ScheduleSource is the external data layer's read surface plus the one
// narrow write the state writer is allowed: flipping a watch's sent flag.
type ScheduleSource interface {
	// ListActiveSchedules returns schedules that may be active around the
	// given tick instant. The instant is caller-supplied so virtual-time
	// ticks replay historical windows correctly.
	ListActiveSchedules(ctx context.Context, around time.Time) ([]*ReminderSchedule, error)
	ListOpenWatches(ctx context.Context) ([]*DeadlineWatch, error)
	// SetWatchSentFlag sets sent_flags[band]=true for the watch without
	// rewriting the rest of the row.
	SetWatchSentFlag(ctx context.Context, watchID string, band Threshold) error
}

// OutboundMessage is one rendered message for one recipient on one channel.
type OutboundMessage struct {
	Address  string
	Subject  string
	Body     string
	HTMLBody string
	// IdempotencyKey lets providers that support it dedupe an ambiguous
	// resend. Derived from the occurrence key, or the batch's first key.
	IdempotencyKey string
}

// ChannelSender is the adapter boundary to an outbound provider. Send is
// side-effecting, fallible and must respect ctx deadlines.
type ChannelSender interface {
	Channel() Channel
	Send(ctx context.Context, msg OutboundMessage) (externalMessageID string, err error)
}
