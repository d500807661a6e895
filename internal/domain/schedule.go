package domain

import "time"

// ReminderSchedule is a medication dosing schedule for one recipient.
// Times holds local wall-clock minutes ("HH:MM") in the schedule's timezone;
// an active schedule has at least one entry.
type ReminderSchedule struct {
	ID             string
	RecipientID    string
	RecipientPhone string
	Timezone       string // IANA name, e.g. America/Los_Angeles
	StartDate      time.Time
	EndDate        *time.Time // nil = open-ended
	Times          []string
	PetName        string
	MedicationName string
	Dosage         string
}

// ActiveOn reports whether the schedule is active on the given local date.
// Date comparison only, no time-of-day component.
func (s *ReminderSchedule) ActiveOn(localDate time.Time) bool {
	day := truncateToDate(localDate)
	if day.Before(truncateToDate(s.StartDate)) {
		return false
	}
	if s.EndDate != nil && day.After(truncateToDate(*s.EndDate)) {
		return false
	}
	return true
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
