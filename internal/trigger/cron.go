// Package trigger runs the dispatch ticks on a local cron when no external
// scheduler is invoking the HTTP endpoints. Disabled by default: in the
// normal deployment Cloud Scheduler or an equivalent drives the endpoints,
// and the at-most-once guarantee comes from the reservation, not from which
// trigger fired.
package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/petfolio/reminder-dispatch/internal/config"
	"github.com/petfolio/reminder-dispatch/internal/service/dispatch"
)

type CronTrigger struct {
	cron            *cron.Cron
	dispatchService *dispatch.Service
	cfg             *config.TriggerConfig
}

func NewCronTrigger(dispatchService *dispatch.Service, cfg *config.TriggerConfig) *CronTrigger {
	return &CronTrigger{
		cron:            cron.New(),
		dispatchService: dispatchService,
		cfg:             cfg,
	}
}

// Start registers the tick jobs and starts the scheduler. The tick instant
// is the job's wall-clock minute, so a job delayed a few seconds by the
// scheduler still evaluates the minute it was scheduled for.
func (t *CronTrigger) Start(ctx context.Context) error {
	_, err := t.cron.AddFunc(t.cfg.MedicationSpec, func() {
		now := time.Now().Truncate(time.Minute)
		if _, err := t.dispatchService.DispatchMedications(ctx, now); err != nil {
			slog.ErrorContext(ctx, "scheduled medication tick failed",
				slog.String("error", err.Error()),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("register medication job: %w", err)
	}

	_, err = t.cron.AddFunc(t.cfg.DeadlineSpec, func() {
		now := time.Now().Truncate(time.Minute)
		if _, err := t.dispatchService.DispatchDeadlines(ctx, now); err != nil {
			slog.ErrorContext(ctx, "scheduled deadline tick failed",
				slog.String("error", err.Error()),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("register deadline job: %w", err)
	}

	t.cron.Start()
	slog.InfoContext(ctx, "cron trigger started",
		slog.String("medication_spec", t.cfg.MedicationSpec),
		slog.String("deadline_spec", t.cfg.DeadlineSpec),
	)
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (t *CronTrigger) Stop() {
	<-t.cron.Stop().Done()
}
