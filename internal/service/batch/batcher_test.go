package batch

import (
	"testing"
	"time"

	"github.com/petfolio/reminder-dispatch/internal/domain"
)

func medOccurrence(scheduleID, recipientID, phone, fragment, clockTime string) *domain.Occurrence {
	return &domain.Occurrence{
		Key:         domain.MedicationKey(scheduleID, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), clockTime),
		RecipientID: recipientID,
		Channel:     domain.ChannelSMS,
		Address:     phone,
		Fragment:    fragment,
	}
}

func TestBatcherGroupsByRecipientAndChannel(t *testing.T) {
	b := NewBatcher()
	b.Add(medOccurrence("sched-1", "rec-1", "+15550001", "Give Mochi their Apoquel (5mg) - 08:00 dose", "08:00"))
	b.Add(medOccurrence("sched-2", "rec-1", "+15550001", "Give Pixel their Gabapentin (100mg) - 08:00 dose", "08:00"))
	b.Add(medOccurrence("sched-3", "rec-2", "+15550002", "Give Biscuit their Rimadyl (25mg) - 08:00 dose", "08:00"))

	batches := b.Flush()
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}

	first := batches[0]
	if first.RecipientID != "rec-1" || len(first.Keys) != 2 {
		t.Fatalf("first batch = %+v", first)
	}
	wantBody := "Give Mochi their Apoquel (5mg) - 08:00 dose\nGive Pixel their Gabapentin (100mg) - 08:00 dose"
	if first.Message.Body != wantBody {
		t.Errorf("body = %q, want %q", first.Message.Body, wantBody)
	}
	if first.Message.IdempotencyKey != "med:sched-1:2025-01-15:08:00" {
		t.Errorf("idempotency key = %q", first.Message.IdempotencyKey)
	}

	second := batches[1]
	if second.RecipientID != "rec-2" || len(second.Keys) != 1 {
		t.Fatalf("second batch = %+v", second)
	}
}

func TestBatcherSplitsChannels(t *testing.T) {
	b := NewBatcher()
	b.Add(medOccurrence("sched-1", "rec-1", "+15550001", "Give Mochi their Apoquel (5mg) - 08:00 dose", "08:00"))
	b.Add(&domain.Occurrence{
		Key:         domain.DeadlineKey("watch-1", domain.ThresholdDay7),
		RecipientID: "rec-1",
		Channel:     domain.ChannelEmail,
		Address:     "owner@example.com",
		Subject:     "Claim filing deadline reminder",
		Fragment:    "Mochi (Trupanion): 6 day(s) left to file, deadline 2025-04-01",
	})

	batches := b.Flush()
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}

	email := batches[1]
	if email.Channel != domain.ChannelEmail {
		t.Fatalf("second batch channel = %v", email.Channel)
	}
	if email.Message.Subject != "Claim filing deadline reminder" {
		t.Errorf("subject = %q", email.Message.Subject)
	}
	if email.Message.HTMLBody != "<ul><li>Mochi (Trupanion): 6 day(s) left to file, deadline 2025-04-01</li></ul>" {
		t.Errorf("html body = %q", email.Message.HTMLBody)
	}
}

func TestBatcherEmptyFlush(t *testing.T) {
	if got := NewBatcher().Flush(); len(got) != 0 {
		t.Errorf("Flush() on empty batcher = %v", got)
	}
}
