package domain

import "time"

// DispatchStatus is the lifecycle state of a dispatch log entry.
// Entries are created Reserved, advance to Sent or Failed, and are never
// deleted.
type DispatchStatus string

const (
	StatusReserved DispatchStatus = "reserved"
	StatusSent     DispatchStatus = "sent"
	StatusFailed   DispatchStatus = "failed"
)

func (s DispatchStatus) String() string {
	return string(s)
}

// ReserveOutcome is the result of a reservation attempt. Losing the race is
// an expected concurrency outcome, not an error.
type ReserveOutcome int

const (
	ReserveWon ReserveOutcome = iota
	ReserveLost
)

func (o ReserveOutcome) String() string {
	if o == ReserveWon {
		return "won"
	}
	return "lost"
}

// DispatchLogEntry is the persisted record for one occurrence. The unique
// constraint on Key makes the insert itself the arbiter between concurrent
// evaluator runs. The rendered payload is snapshotted so a stale Reserved
// entry can be resent without re-evaluating the source schedule.
type DispatchLogEntry struct {
	Key         string
	Kind        OccurrenceKind
	Status      DispatchStatus
	RecipientID string
	Channel     Channel
	Address     string
	Subject     string
	Body        string

	// Set for deadline occurrences so the sent flag can be written after a
	// late or retried send.
	WatchID string
	Band    Threshold

	Attempts          int
	ReservedAt        time.Time
	SentAt            *time.Time
	ExternalMessageID string
	FailureReason     string
}

// NewReservation builds the Reserved entry for a won occurrence.
func NewReservation(occ Occurrence, reservedAt time.Time) *DispatchLogEntry {
	return &DispatchLogEntry{
		Key:         occ.Key.String(),
		Kind:        occ.Key.Kind,
		Status:      StatusReserved,
		RecipientID: occ.RecipientID,
		Channel:     occ.Channel,
		Address:     occ.Address,
		Subject:     occ.Subject,
		Body:        occ.Fragment,
		WatchID:     occ.Key.WatchID,
		Band:        occ.Key.Band,
		ReservedAt:  reservedAt.UTC(),
	}
}
