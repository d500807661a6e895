package evaluate

import (
	"context"
	"fmt"
	"time"

	"github.com/petfolio/reminder-dispatch/internal/domain"
)

type DeadlineEvaluator struct {
	source domain.ScheduleSource
}

func NewDeadlineEvaluator(source domain.ScheduleSource) *DeadlineEvaluator {
	return &DeadlineEvaluator{source: source}
}

// Evaluate emits at most one occurrence per open watch: the single unsent
// band matching today's remaining days. Bands are ordered most-urgent first,
// so a watch that crossed several thresholds since the last pass fires only
// the most urgent one; the flag write closes the skipped bands for good.
func (e *DeadlineEvaluator) Evaluate(ctx context.Context, now time.Time) (*Result, error) {
	watches, err := e.source.ListOpenWatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open watches: %w", err)
	}

	today := now.UTC()

	res := &Result{}
	for _, watch := range watches {
		res.Evaluated++

		band, ok := watch.DueBand(today)
		if !ok {
			continue
		}

		res.Occurrences = append(res.Occurrences, &domain.Occurrence{
			Key:         domain.DeadlineKey(watch.ID, band),
			RecipientID: watch.RecipientID,
			Channel:     domain.ChannelEmail,
			Address:     watch.RecipientEmail,
			Subject:     "Claim filing deadline reminder",
			Fragment:    deadlineFragment(watch, band, today),
		})
	}

	return res, nil
}

func deadlineFragment(w *domain.DeadlineWatch, band domain.Threshold, today time.Time) string {
	deadline := w.Deadline().Format(domain.DateLayout)
	if band == domain.ThresholdPassed {
		return fmt.Sprintf("%s (%s): the filing deadline %s has passed",
			w.PetName, w.Provider, deadline)
	}
	remaining := w.RemainingDays(today)
	return fmt.Sprintf("%s (%s): %d day(s) left to file, deadline %s",
		w.PetName, w.Provider, remaining, deadline)
}
