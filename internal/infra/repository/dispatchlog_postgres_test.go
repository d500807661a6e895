package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/petfolio/reminder-dispatch/internal/domain"
	"github.com/petfolio/reminder-dispatch/internal/testutil"
)

func setupPostgresStore(ctx context.Context, t *testing.T) (domain.DispatchLogStore, *gorm.DB, func()) {
	t.Helper()

	db, cleanup := testutil.SetupPostgresContainer(ctx, t)
	if err := MigrateDispatchLog(db); err != nil {
		cleanup()
		t.Fatalf("migrate dispatch log: %v", err)
	}
	return NewPostgresDispatchLogStore(db), db, cleanup
}

func TestPostgresDispatchLogStoreReserve(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	store, _, cleanup := setupPostgresStore(ctx, t)
	defer cleanup()

	entry := testEntry("med:sched-1:2025-01-15:08:00", time.Now())

	outcome, err := store.Reserve(ctx, entry)
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if outcome != domain.ReserveWon {
		t.Fatalf("first Reserve() = %v, want won", outcome)
	}

	outcome, err = store.Reserve(ctx, entry)
	if err != nil {
		t.Fatalf("second Reserve() error = %v", err)
	}
	if outcome != domain.ReserveLost {
		t.Fatalf("second Reserve() = %v, want lost", outcome)
	}
}

func TestPostgresDispatchLogStoreConcurrentReserve(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	store, _, cleanup := setupPostgresStore(ctx, t)
	defer cleanup()

	const workers = 16
	var wg sync.WaitGroup
	outcomes := make([]domain.ReserveOutcome, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcome, err := store.Reserve(ctx, testEntry("med:sched-1:2025-01-15:08:00", time.Now()))
			if err != nil {
				t.Errorf("Reserve() error = %v", err)
				return
			}
			outcomes[i] = outcome
		}(i)
	}
	wg.Wait()

	won := 0
	for _, o := range outcomes {
		if o == domain.ReserveWon {
			won++
		}
	}
	if won != 1 {
		t.Errorf("winners = %d, want exactly 1", won)
	}
}

func TestPostgresDispatchLogStoreLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	store, _, cleanup := setupPostgresStore(ctx, t)
	defer cleanup()

	const key = "deadline:watch-1:day_7"
	entry := testEntry(key, time.Now())
	entry.Kind = domain.KindDeadline
	entry.Channel = domain.ChannelEmail
	entry.Address = "owner@example.com"
	entry.Subject = "Claim filing deadline reminder"
	entry.WatchID = "watch-1"
	entry.Band = domain.ThresholdDay7

	if _, err := store.Reserve(ctx, entry); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	won, err := store.RecordAttempt(ctx, key, 0)
	if err != nil {
		t.Fatalf("RecordAttempt() error = %v", err)
	}
	if !won {
		t.Error("RecordAttempt() with current counter value should win")
	}

	// the counter moved, so the same expected value loses now
	won, err = store.RecordAttempt(ctx, key, 0)
	if err != nil {
		t.Fatalf("second RecordAttempt() error = %v", err)
	}
	if won {
		t.Error("RecordAttempt() with a stale counter value should lose")
	}

	if err := store.MarkFailed(ctx, key, "retry limit exhausted"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != domain.StatusFailed {
		t.Errorf("status = %v, want failed", got.Status)
	}
	if got.FailureReason != "retry limit exhausted" {
		t.Errorf("failure reason = %q", got.FailureReason)
	}
	if got.WatchID != "watch-1" || got.Band != domain.ThresholdDay7 {
		t.Errorf("watch fields = %q/%q", got.WatchID, got.Band)
	}
}

func TestPostgresDispatchLogStoreListStaleReserved(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	store, _, cleanup := setupPostgresStore(ctx, t)
	defer cleanup()

	now := time.Now().UTC()

	if _, err := store.Reserve(ctx, testEntry("med:sched-1:2025-01-15:08:00", now.Add(-time.Hour))); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if _, err := store.Reserve(ctx, testEntry("med:sched-2:2025-01-15:08:00", now)); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if _, err := store.Reserve(ctx, testEntry("med:sched-3:2025-01-15:08:00", now.Add(-2*time.Hour))); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if err := store.MarkSent(ctx, "med:sched-3:2025-01-15:08:00", "ext-1", now); err != nil {
		t.Fatalf("MarkSent() error = %v", err)
	}

	stale, err := store.ListStaleReserved(ctx, now.Add(-10*time.Minute), 100)
	if err != nil {
		t.Fatalf("ListStaleReserved() error = %v", err)
	}
	if len(stale) != 1 {
		t.Fatalf("stale entries = %d, want 1", len(stale))
	}
	if stale[0].Key != "med:sched-1:2025-01-15:08:00" {
		t.Errorf("stale key = %q", stale[0].Key)
	}
}
