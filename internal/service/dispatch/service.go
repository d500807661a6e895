// Package dispatch orchestrates one tick: resolve stale reservations,
// evaluate due occurrences, reserve each one atomically, batch the won ones
// per recipient and channel, and send. Reservation happens before the send,
// so a crash mid-tick leaves Reserved entries for the bounded retry path
// instead of duplicate messages.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/petfolio/reminder-dispatch/internal/config"
	"github.com/petfolio/reminder-dispatch/internal/domain"
	"github.com/petfolio/reminder-dispatch/internal/infra/sender"
	"github.com/petfolio/reminder-dispatch/internal/observability/metrics"
	"github.com/petfolio/reminder-dispatch/internal/observability/tracing"
	"github.com/petfolio/reminder-dispatch/internal/service/batch"
	"github.com/petfolio/reminder-dispatch/internal/service/evaluate"
)

type evaluator interface {
	Evaluate(ctx context.Context, now time.Time) (*evaluate.Result, error)
}

type Service struct {
	store       domain.DispatchLogStore
	source      domain.ScheduleSource
	medications evaluator
	deadlines   evaluator
	senders     map[domain.Channel]domain.ChannelSender
	recorder    domain.DispatchRecorder
	metrics     *metrics.DispatchMetrics
	cfg         *config.DispatchConfig
}

func NewService(
	store domain.DispatchLogStore,
	source domain.ScheduleSource,
	senders []domain.ChannelSender,
	recorder domain.DispatchRecorder,
	m *metrics.DispatchMetrics,
	cfg *config.DispatchConfig,
) *Service {
	byChannel := make(map[domain.Channel]domain.ChannelSender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	return &Service{
		store:       store,
		source:      source,
		medications: evaluate.NewMedicationEvaluator(source),
		deadlines:   evaluate.NewDeadlineEvaluator(source),
		senders:     byChannel,
		recorder:    recorder,
		metrics:     m,
		cfg:         cfg,
	}
}

// DispatchMedications runs one medication tick at the given instant.
func (s *Service) DispatchMedications(ctx context.Context, now time.Time) (*TickReport, error) {
	return s.runTick(ctx, domain.KindMedication, now, s.medications)
}

// DispatchDeadlines runs one deadline tick at the given instant.
func (s *Service) DispatchDeadlines(ctx context.Context, now time.Time) (*TickReport, error) {
	return s.runTick(ctx, domain.KindDeadline, now, s.deadlines)
}

func (s *Service) runTick(ctx context.Context, kind domain.OccurrenceKind, now time.Time, eval evaluator) (*TickReport, error) {
	ctx, span := tracing.StartTickSpan(ctx, string(kind), now)
	defer span.End()

	started := time.Now()
	report := &TickReport{
		RunID:    uuid.NewString(),
		Kind:     string(kind),
		TickTime: now.UTC(),
	}

	// Dedup truth must be reachable before any send: without it a send
	// could not be recorded and a later tick would repeat it.
	if err := s.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceUnavailable, err)
	}

	s.resolveStaleReservations(ctx, now, report)

	res, err := eval.Evaluate(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", kind, err)
	}
	report.Evaluated = res.Evaluated
	report.Skipped += res.Skipped
	if s.metrics != nil {
		s.metrics.RecordEvaluated(ctx, string(kind), len(res.Occurrences))
	}

	batcher := batch.NewBatcher()
	byKey := make(map[string]*domain.Occurrence, len(res.Occurrences))
	for _, occ := range res.Occurrences {
		outcome, err := s.store.Reserve(ctx, domain.NewReservation(*occ, now))
		if err != nil {
			return nil, fmt.Errorf("%w: reserve %s: %w", domain.ErrPersistenceUnavailable, occ.Key.String(), err)
		}
		if s.metrics != nil {
			s.metrics.RecordReservation(ctx, string(kind), outcome.String())
		}
		if outcome == domain.ReserveLost {
			slog.DebugContext(ctx, "reservation lost, occurrence already claimed",
				slog.String("key", occ.Key.String()),
			)
			report.ReservationsLost++
			continue
		}
		report.ReservationsWon++
		byKey[occ.Key.String()] = occ
		batcher.Add(occ)
	}

	batches := batcher.Flush()
	report.Batches = len(batches)
	for _, b := range batches {
		s.sendBatch(ctx, b, byKey, now, report)
	}

	if s.metrics != nil {
		s.metrics.RecordTickDuration(ctx, string(kind), time.Since(started))
	}
	if s.recorder != nil {
		if err := s.recorder.RecordTickResult(ctx, domain.DispatchTickRecord{
			RunID:            report.RunID,
			Kind:             kind,
			TickTime:         report.TickTime,
			Evaluated:        report.Evaluated,
			ReservationsWon:  report.ReservationsWon,
			ReservationsLost: report.ReservationsLost,
			Batches:          report.Batches,
			Sent:             report.Sent,
			Failed:           report.Failed,
			Retried:          report.Retried,
			Skipped:          report.Skipped,
		}); err != nil {
			slog.WarnContext(ctx, "failed to record tick result",
				slog.String("error", err.Error()),
			)
		}
	}

	slog.InfoContext(ctx, "dispatch tick complete",
		slog.String("run_id", report.RunID),
		slog.String("kind", report.Kind),
		slog.Time("tick_time", report.TickTime),
		slog.Int("evaluated", report.Evaluated),
		slog.Int("reservations_won", report.ReservationsWon),
		slog.Int("reservations_lost", report.ReservationsLost),
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
		slog.Int("retried", report.Retried),
	)

	return report, nil
}

// sendBatch delivers one rendered batch and settles every entry it covers.
// Timeout and transient outcomes leave the entries Reserved; the stale
// retry path picks them up after the configured delay.
func (s *Service) sendBatch(ctx context.Context, b *batch.OutboundBatch, byKey map[string]*domain.Occurrence, now time.Time, report *TickReport) {
	if s.metrics != nil {
		s.metrics.RecordBatchSize(ctx, b.Channel.String(), len(b.Keys))
	}

	snd, ok := s.senders[b.Channel]
	if !ok {
		slog.ErrorContext(ctx, "no sender configured for channel",
			slog.String("channel", b.Channel.String()),
		)
		for _, key := range b.Keys {
			s.markFailed(ctx, key, "no sender configured for channel "+b.Channel.String())
			report.Failed++
		}
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	sendCtx, span := tracing.StartSendSpan(sendCtx, b.Channel.String(), len(b.Keys))
	messageID, err := snd.Send(sendCtx, b.Message)
	span.End()

	if err == nil {
		if s.metrics != nil {
			s.metrics.RecordSend(ctx, b.Channel.String(), "sent")
		}
		for _, key := range b.Keys {
			if markErr := s.store.MarkSent(ctx, key, messageID, now); markErr != nil {
				slog.ErrorContext(ctx, "send succeeded but MarkSent failed, entry stays reserved",
					slog.String("key", key),
					slog.String("error", markErr.Error()),
				)
				continue
			}
			report.Sent++
			if occ := byKey[key]; occ != nil && occ.Key.Kind == domain.KindDeadline {
				s.setWatchFlag(ctx, occ.Key.WatchID, occ.Key.Band)
			}
		}
		return
	}

	class := sender.Classify(err)
	if s.metrics != nil {
		s.metrics.RecordSend(ctx, b.Channel.String(), class.String())
	}

	switch class {
	case sender.ClassPermanent:
		slog.ErrorContext(ctx, "permanent send failure",
			slog.String("channel", b.Channel.String()),
			slog.String("error", err.Error()),
		)
		for _, key := range b.Keys {
			s.markFailed(ctx, key, err.Error())
			report.Failed++
		}
	default:
		// Timeout is ambiguous and transient is retryable; either way the
		// entries stay Reserved and only the attempt counter moves.
		slog.WarnContext(ctx, "send did not conclude, entries stay reserved",
			slog.String("channel", b.Channel.String()),
			slog.String("class", class.String()),
			slog.String("error", err.Error()),
		)
		// entries reserved this tick start at zero attempts and no other
		// tick owns them yet, so the bump cannot lose
		for _, key := range b.Keys {
			if _, attErr := s.store.RecordAttempt(ctx, key, 0); attErr != nil {
				slog.ErrorContext(ctx, "failed to record send attempt",
					slog.String("key", key),
					slog.String("error", attErr.Error()),
				)
			}
		}
	}
}

// resolveStaleReservations resends entries stuck in Reserved longer than
// the retry delay, from their snapshotted payload. Send-only: no
// re-evaluation, no new reservation, and the attempt cap turns a poison
// entry into a Failed one instead of an infinite loop.
func (s *Service) resolveStaleReservations(ctx context.Context, now time.Time, report *TickReport) {
	cutoff := now.Add(-s.cfg.RetryAfter)
	stale, err := s.store.ListStaleReserved(ctx, cutoff, s.cfg.StaleRetryBatchSize)
	if err != nil {
		slog.WarnContext(ctx, "failed to list stale reservations, skipping retry pass",
			slog.String("error", err.Error()),
		)
		return
	}

	for _, entry := range stale {
		if entry.Attempts >= s.cfg.MaxSendAttempts {
			s.markFailed(ctx, entry.Key, "retry limit exhausted")
			report.Failed++
			continue
		}

		won, err := s.store.RecordAttempt(ctx, entry.Key, entry.Attempts)
		if err != nil {
			slog.ErrorContext(ctx, "failed to record retry attempt",
				slog.String("key", entry.Key),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !won {
			slog.DebugContext(ctx, "stale entry claimed by a concurrent tick",
				slog.String("key", entry.Key),
			)
			continue
		}

		snd, ok := s.senders[entry.Channel]
		if !ok {
			s.markFailed(ctx, entry.Key, "no sender configured for channel "+entry.Channel.String())
			report.Failed++
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
		sendCtx, span := tracing.StartSendSpan(sendCtx, entry.Channel.String(), 1)
		messageID, err := snd.Send(sendCtx, domain.OutboundMessage{
			Address:        entry.Address,
			Subject:        entry.Subject,
			Body:           entry.Body,
			IdempotencyKey: entry.Key,
		})
		span.End()
		cancel()

		if err != nil {
			class := sender.Classify(err)
			if class == sender.ClassPermanent {
				s.markFailed(ctx, entry.Key, err.Error())
				report.Failed++
			} else {
				slog.WarnContext(ctx, "stale retry did not conclude",
					slog.String("key", entry.Key),
					slog.String("class", class.String()),
					slog.String("error", err.Error()),
				)
			}
			continue
		}

		if markErr := s.store.MarkSent(ctx, entry.Key, messageID, now); markErr != nil {
			slog.ErrorContext(ctx, "retry send succeeded but MarkSent failed",
				slog.String("key", entry.Key),
				slog.String("error", markErr.Error()),
			)
			continue
		}
		report.Retried++
		report.Sent++
		if entry.Kind == domain.KindDeadline && entry.WatchID != "" {
			s.setWatchFlag(ctx, entry.WatchID, entry.Band)
		}
	}
}

func (s *Service) markFailed(ctx context.Context, key, reason string) {
	if err := s.store.MarkFailed(ctx, key, reason); err != nil {
		slog.ErrorContext(ctx, "failed to mark entry failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// setWatchFlag closes the band on the source watch after a confirmed send.
// Failure here is re-sendable state drift, not message loss: the dispatch
// log still dedupes the occurrence key, so the next tick cannot resend.
func (s *Service) setWatchFlag(ctx context.Context, watchID string, band domain.Threshold) {
	if err := s.source.SetWatchSentFlag(ctx, watchID, band); err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "failed to set watch sent flag",
			slog.String("watch_id", watchID),
			slog.String("band", band.String()),
			slog.String("error", err.Error()),
		)
	}
}
