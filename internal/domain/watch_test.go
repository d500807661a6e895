package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifyRemaining(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		expected  Threshold
		ok        bool
	}{
		{"deadline passed today", 0, ThresholdPassed, true},
		{"deadline long passed", -30, ThresholdPassed, true},
		{"one day left", 1, ThresholdDay7, true},
		{"exactly seven days", 7, ThresholdDay7, true},
		{"eight days", 8, ThresholdDay30, true},
		{"exactly thirty days", 30, ThresholdDay30, true},
		{"thirty-one days", 31, ThresholdDay60, true},
		{"exactly sixty days", 60, ThresholdDay60, true},
		{"sixty-one days is out of range", 61, "", false},
		{"far future", 365, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			band, ok := ClassifyRemaining(tt.remaining)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if band != tt.expected {
				t.Errorf("expected band %q, got %q", tt.expected, band)
			}
		})
	}
}

func TestClassifyRemainingExclusivity(t *testing.T) {
	// Every remaining value in the covered range must match exactly one band.
	for r := -90; r <= 60; r++ {
		matched := 0
		for _, b := range thresholdBands {
			if b.matches(r) {
				matched++
				break
			}
		}
		if matched != 1 {
			t.Errorf("remaining=%d matched %d bands, expected 1", r, matched)
		}
	}
}

func TestDeadlineWatchRemainingDays(t *testing.T) {
	w := &DeadlineWatch{
		ReferenceDate: date(2025, time.January, 1),
		WindowDays:    90,
	}

	if got := w.Deadline(); !got.Equal(date(2025, time.April, 1)) {
		t.Fatalf("expected deadline 2025-04-01, got %v", got)
	}

	tests := []struct {
		name     string
		today    time.Time
		expected int
	}{
		{"seven days out", date(2025, time.March, 25), 7},
		{"six days out", date(2025, time.March, 26), 6},
		{"deadline day", date(2025, time.April, 1), 0},
		{"day after deadline", date(2025, time.April, 2), -1},
		{"time of day is ignored", time.Date(2025, time.March, 25, 23, 59, 0, 0, time.UTC), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.RemainingDays(tt.today); got != tt.expected {
				t.Errorf("expected %d remaining days, got %d", tt.expected, got)
			}
		})
	}
}

func TestDeadlineWatchDueBand(t *testing.T) {
	tests := []struct {
		name      string
		sentFlags map[Threshold]bool
		today     time.Time
		expected  Threshold
		due       bool
	}{
		{
			name:     "day7 band unset fires",
			today:    date(2025, time.March, 25),
			expected: ThresholdDay7,
			due:      true,
		},
		{
			name:      "day7 already sent stays silent",
			sentFlags: map[Threshold]bool{ThresholdDay7: true},
			today:     date(2025, time.March, 26),
			due:       false,
		},
		{
			name:      "later more urgent band fires once even after day30 sent",
			sentFlags: map[Threshold]bool{ThresholdDay30: true},
			today:     date(2025, time.March, 25),
			expected:  ThresholdDay7,
			due:       true,
		},
		{
			name:     "passed band fires after deadline",
			today:    date(2025, time.April, 5),
			expected: ThresholdPassed,
			due:      true,
		},
		{
			name:  "outside any band",
			today: date(2025, time.January, 2),
			due:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &DeadlineWatch{
				ID:            "watch-1",
				ReferenceDate: date(2025, time.January, 1),
				WindowDays:    90,
				SentFlags:     tt.sentFlags,
			}

			band, due := w.DueBand(tt.today)
			if due != tt.due {
				t.Fatalf("expected due=%v, got %v", tt.due, due)
			}
			if due && band != tt.expected {
				t.Errorf("expected band %q, got %q", tt.expected, band)
			}
		})
	}
}

func TestOccurrenceKeyString(t *testing.T) {
	tests := []struct {
		name     string
		key      OccurrenceKey
		expected string
	}{
		{
			name:     "medication key",
			key:      MedicationKey("sched-1", date(2025, time.November, 25), "08:00"),
			expected: "med:sched-1:2025-11-25:08:00",
		},
		{
			name:     "deadline key",
			key:      DeadlineKey("watch-1", ThresholdDay7),
			expected: "deadline:watch-1:day_7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestReminderScheduleActiveOn(t *testing.T) {
	end := date(2025, time.December, 31)

	tests := []struct {
		name     string
		schedule ReminderSchedule
		day      time.Time
		expected bool
	}{
		{
			name:     "open-ended schedule after start",
			schedule: ReminderSchedule{StartDate: date(2025, time.November, 1)},
			day:      date(2026, time.June, 1),
			expected: true,
		},
		{
			name:     "before start date",
			schedule: ReminderSchedule{StartDate: date(2025, time.November, 1)},
			day:      date(2025, time.October, 31),
			expected: false,
		},
		{
			name:     "on start date",
			schedule: ReminderSchedule{StartDate: date(2025, time.November, 1)},
			day:      date(2025, time.November, 1),
			expected: true,
		},
		{
			name:     "on end date",
			schedule: ReminderSchedule{StartDate: date(2025, time.November, 1), EndDate: &end},
			day:      date(2025, time.December, 31),
			expected: true,
		},
		{
			name:     "after end date",
			schedule: ReminderSchedule{StartDate: date(2025, time.November, 1), EndDate: &end},
			day:      date(2026, time.January, 1),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.schedule.ActiveOn(tt.day); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
