package domain

import (
	"fmt"
	"time"
)

// Channel identifies the outbound medium for a notification.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

func (c Channel) String() string {
	return string(c)
}

// OccurrenceKind distinguishes the two reminder sources.
type OccurrenceKind string

const (
	KindMedication OccurrenceKind = "medication"
	KindDeadline   OccurrenceKind = "deadline"
)

// OccurrenceKey uniquely identifies one reminder instance that must fire
// at most once, across any number of evaluator invocations.
type OccurrenceKey struct {
	Kind OccurrenceKind

	// Medication occurrences
	ScheduleID string
	Date       string // local date, 2006-01-02
	ClockTime  string // local wall-clock minute, 15:04

	// Deadline occurrences
	WatchID string
	Band    Threshold
}

func MedicationKey(scheduleID string, date time.Time, clockTime string) OccurrenceKey {
	return OccurrenceKey{
		Kind:       KindMedication,
		ScheduleID: scheduleID,
		Date:       date.Format(DateLayout),
		ClockTime:  clockTime,
	}
}

func DeadlineKey(watchID string, band Threshold) OccurrenceKey {
	return OccurrenceKey{
		Kind:    KindDeadline,
		WatchID: watchID,
		Band:    band,
	}
}

// String returns the canonical form used as the dedup store key and the
// unique column of the dispatch log.
func (k OccurrenceKey) String() string {
	switch k.Kind {
	case KindMedication:
		return fmt.Sprintf("med:%s:%s:%s", k.ScheduleID, k.Date, k.ClockTime)
	case KindDeadline:
		return fmt.Sprintf("deadline:%s:%s", k.WatchID, k.Band)
	default:
		return ""
	}
}

// Occurrence is one due reminder instance produced by an evaluator, carrying
// everything the dispatcher needs to reserve, batch, render and send it.
type Occurrence struct {
	Key         OccurrenceKey
	RecipientID string
	Channel     Channel
	Address     string // phone number or email address
	Subject     string // empty for SMS
	Fragment    string // one line/row of the outbound message body
}

const DateLayout = "2006-01-02"
