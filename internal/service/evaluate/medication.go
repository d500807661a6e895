// Package evaluate turns schedule and watch state into the occurrences that
// are due at a given instant. Evaluators are read-only and idempotent: the
// same instant always yields the same occurrence keys, and nothing here
// talks to the dispatch log or the channels.
package evaluate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/petfolio/reminder-dispatch/internal/clock"
	"github.com/petfolio/reminder-dispatch/internal/domain"
)

// Result is one evaluator pass: the due occurrences plus the counts the
// tick report needs.
type Result struct {
	Occurrences []*domain.Occurrence
	Evaluated   int
	Skipped     int
}

type MedicationEvaluator struct {
	source domain.ScheduleSource
}

func NewMedicationEvaluator(source domain.ScheduleSource) *MedicationEvaluator {
	return &MedicationEvaluator{source: source}
}

// Evaluate resolves now into each schedule's local zone and emits one
// occurrence per configured time that matches the current local minute
// exactly. A schedule with a bad timezone or a malformed time entry is
// skipped with a warning; one bad record never aborts the pass.
func (e *MedicationEvaluator) Evaluate(ctx context.Context, now time.Time) (*Result, error) {
	schedules, err := e.source.ListActiveSchedules(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list active schedules: %w", err)
	}

	res := &Result{}
	for _, sched := range schedules {
		res.Evaluated++

		stamp, err := clock.LocalNow(now, sched.Timezone)
		if err != nil {
			slog.WarnContext(ctx, "skipping schedule with unknown timezone",
				slog.String("schedule_id", sched.ID),
				slog.String("timezone", sched.Timezone),
			)
			res.Skipped++
			continue
		}

		if !sched.ActiveOn(stamp.Date) {
			continue
		}

		for _, raw := range sched.Times {
			clockTime, err := clock.NormalizeClockTime(raw)
			if err != nil {
				slog.WarnContext(ctx, "skipping malformed schedule time",
					slog.String("schedule_id", sched.ID),
					slog.String("time", raw),
				)
				res.Skipped++
				continue
			}

			if clockTime != stamp.ClockTime {
				continue
			}

			res.Occurrences = append(res.Occurrences, &domain.Occurrence{
				Key:         domain.MedicationKey(sched.ID, stamp.Date, clockTime),
				RecipientID: sched.RecipientID,
				Channel:     domain.ChannelSMS,
				Address:     sched.RecipientPhone,
				Fragment: fmt.Sprintf("Give %s their %s (%s) - %s dose",
					sched.PetName, sched.MedicationName, sched.Dosage, clockTime),
			})
		}
	}

	return res, nil
}
