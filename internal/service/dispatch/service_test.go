package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/petfolio/reminder-dispatch/internal/config"
	"github.com/petfolio/reminder-dispatch/internal/domain"
	"github.com/petfolio/reminder-dispatch/internal/infra/sender"
)

func testConfig() *config.DispatchConfig {
	return &config.DispatchConfig{
		SendTimeout:         time.Second,
		MaxSendAttempts:     3,
		RetryAfter:          10 * time.Minute,
		StaleRetryBatchSize: 100,
	}
}

func testSchedule() *domain.ReminderSchedule {
	return &domain.ReminderSchedule{
		ID:             "sched-1",
		RecipientID:    "rec-1",
		RecipientPhone: "+15551234567",
		Timezone:       "UTC",
		StartDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Times:          []string{"08:00"},
		PetName:        "Mochi",
		MedicationName: "Apoquel",
		Dosage:         "5mg",
	}
}

func testWatch() *domain.DeadlineWatch {
	return &domain.DeadlineWatch{
		ID:             "watch-1",
		RecipientID:    "rec-1",
		RecipientEmail: "owner@example.com",
		PetName:        "Mochi",
		Provider:       "Trupanion",
		ReferenceDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		WindowDays:     90,
		SentFlags:      map[domain.Threshold]bool{},
	}
}

func smsSender(ctrl *gomock.Controller) *domain.MockChannelSender {
	s := domain.NewMockChannelSender(ctrl)
	s.EXPECT().Channel().Return(domain.ChannelSMS).AnyTimes()
	return s
}

func emailSender(ctrl *gomock.Controller) *domain.MockChannelSender {
	s := domain.NewMockChannelSender(ctrl)
	s.EXPECT().Channel().Return(domain.ChannelEmail).AnyTimes()
	return s
}

const medKey = "med:sched-1:2025-01-15:08:00"

var medTick = time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

func TestDispatchMedicationsReserveThenSend(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockDispatchLogStore(ctrl)
	source := domain.NewMockScheduleSource(ctrl)
	sms := smsSender(ctrl)

	store.EXPECT().Ping(gomock.Any()).Return(nil)
	store.EXPECT().ListStaleReserved(gomock.Any(), gomock.Any(), 100).Return(nil, nil)
	source.EXPECT().ListActiveSchedules(gomock.Any(), gomock.Any()).
		Return([]*domain.ReminderSchedule{testSchedule()}, nil)

	gomock.InOrder(
		store.EXPECT().Reserve(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, entry *domain.DispatchLogEntry) (domain.ReserveOutcome, error) {
				if entry.Key != medKey {
					t.Errorf("reserved key = %q, want %q", entry.Key, medKey)
				}
				if entry.Status != domain.StatusReserved {
					t.Errorf("reserved status = %v", entry.Status)
				}
				return domain.ReserveWon, nil
			}),
		sms.EXPECT().Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg domain.OutboundMessage) (string, error) {
				if msg.Address != "+15551234567" {
					t.Errorf("send address = %q", msg.Address)
				}
				return "ext-1", nil
			}),
		store.EXPECT().MarkSent(gomock.Any(), medKey, "ext-1", gomock.Any()).Return(nil),
	)

	svc := NewService(store, source, []domain.ChannelSender{sms}, nil, nil, testConfig())
	report, err := svc.DispatchMedications(context.Background(), medTick)
	if err != nil {
		t.Fatalf("DispatchMedications() error = %v", err)
	}
	if report.ReservationsWon != 1 || report.Sent != 1 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestDispatchMedicationsReservationLostIsSilent(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockDispatchLogStore(ctrl)
	source := domain.NewMockScheduleSource(ctrl)
	sms := smsSender(ctrl)

	store.EXPECT().Ping(gomock.Any()).Return(nil)
	store.EXPECT().ListStaleReserved(gomock.Any(), gomock.Any(), 100).Return(nil, nil)
	source.EXPECT().ListActiveSchedules(gomock.Any(), gomock.Any()).
		Return([]*domain.ReminderSchedule{testSchedule()}, nil)
	store.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(domain.ReserveLost, nil)
	// no Send, no MarkSent, no MarkFailed

	svc := NewService(store, source, []domain.ChannelSender{sms}, nil, nil, testConfig())
	report, err := svc.DispatchMedications(context.Background(), medTick)
	if err != nil {
		t.Fatalf("DispatchMedications() error = %v", err)
	}
	if report.ReservationsLost != 1 || report.Sent != 0 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestDispatchMedicationsPersistenceUnavailableAbortsTick(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockDispatchLogStore(ctrl)
	source := domain.NewMockScheduleSource(ctrl)
	sms := smsSender(ctrl)

	store.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
	// nothing else may run: no evaluation, no sends

	svc := NewService(store, source, []domain.ChannelSender{sms}, nil, nil, testConfig())
	_, err := svc.DispatchMedications(context.Background(), medTick)
	if !errors.Is(err, domain.ErrPersistenceUnavailable) {
		t.Fatalf("error = %v, want ErrPersistenceUnavailable", err)
	}
}

func TestDispatchMedicationsTimeoutLeavesReserved(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockDispatchLogStore(ctrl)
	source := domain.NewMockScheduleSource(ctrl)
	sms := smsSender(ctrl)

	store.EXPECT().Ping(gomock.Any()).Return(nil)
	store.EXPECT().ListStaleReserved(gomock.Any(), gomock.Any(), 100).Return(nil, nil)
	source.EXPECT().ListActiveSchedules(gomock.Any(), gomock.Any()).
		Return([]*domain.ReminderSchedule{testSchedule()}, nil)
	store.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(domain.ReserveWon, nil)
	sms.EXPECT().Send(gomock.Any(), gomock.Any()).Return("", context.DeadlineExceeded)
	store.EXPECT().RecordAttempt(gomock.Any(), medKey, 0).Return(true, nil)
	// the outcome is ambiguous: neither MarkSent nor MarkFailed may run

	svc := NewService(store, source, []domain.ChannelSender{sms}, nil, nil, testConfig())
	report, err := svc.DispatchMedications(context.Background(), medTick)
	if err != nil {
		t.Fatalf("DispatchMedications() error = %v", err)
	}
	if report.Sent != 0 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestDispatchMedicationsPermanentFailureMarksFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockDispatchLogStore(ctrl)
	source := domain.NewMockScheduleSource(ctrl)
	sms := smsSender(ctrl)

	store.EXPECT().Ping(gomock.Any()).Return(nil)
	store.EXPECT().ListStaleReserved(gomock.Any(), gomock.Any(), 100).Return(nil, nil)
	source.EXPECT().ListActiveSchedules(gomock.Any(), gomock.Any()).
		Return([]*domain.ReminderSchedule{testSchedule()}, nil)
	store.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(domain.ReserveWon, nil)
	sms.EXPECT().Send(gomock.Any(), gomock.Any()).
		Return("", fmt.Errorf("sms gateway status 400: %w", sender.ErrPermanent))
	store.EXPECT().MarkFailed(gomock.Any(), medKey, gomock.Any()).Return(nil)
	// no RecordAttempt: a permanent failure never retries

	svc := NewService(store, source, []domain.ChannelSender{sms}, nil, nil, testConfig())
	report, err := svc.DispatchMedications(context.Background(), medTick)
	if err != nil {
		t.Fatalf("DispatchMedications() error = %v", err)
	}
	if report.Sent != 0 || report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestDispatchDeadlinesSetsWatchFlagAfterSend(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockDispatchLogStore(ctrl)
	source := domain.NewMockScheduleSource(ctrl)
	email := emailSender(ctrl)

	today := time.Date(2025, 3, 26, 9, 0, 0, 0, time.UTC)
	const key = "deadline:watch-1:day_7"

	store.EXPECT().Ping(gomock.Any()).Return(nil)
	store.EXPECT().ListStaleReserved(gomock.Any(), gomock.Any(), 100).Return(nil, nil)
	source.EXPECT().ListOpenWatches(gomock.Any()).
		Return([]*domain.DeadlineWatch{testWatch()}, nil)

	gomock.InOrder(
		store.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(domain.ReserveWon, nil),
		email.EXPECT().Send(gomock.Any(), gomock.Any()).Return("ext-9", nil),
		store.EXPECT().MarkSent(gomock.Any(), key, "ext-9", gomock.Any()).Return(nil),
		source.EXPECT().SetWatchSentFlag(gomock.Any(), "watch-1", domain.ThresholdDay7).Return(nil),
	)

	svc := NewService(store, source, []domain.ChannelSender{email}, nil, nil, testConfig())
	report, err := svc.DispatchDeadlines(context.Background(), today)
	if err != nil {
		t.Fatalf("DispatchDeadlines() error = %v", err)
	}
	if report.Sent != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestStaleRetryResendsFromSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockDispatchLogStore(ctrl)
	source := domain.NewMockScheduleSource(ctrl)
	sms := smsSender(ctrl)

	stale := &domain.DispatchLogEntry{
		Key:         medKey,
		Kind:        domain.KindMedication,
		Status:      domain.StatusReserved,
		RecipientID: "rec-1",
		Channel:     domain.ChannelSMS,
		Address:     "+15551234567",
		Body:        "Give Mochi their Apoquel (5mg) - 08:00 dose",
		Attempts:    1,
		ReservedAt:  medTick.Add(-time.Hour),
	}

	store.EXPECT().Ping(gomock.Any()).Return(nil)
	store.EXPECT().ListStaleReserved(gomock.Any(), gomock.Any(), 100).
		Return([]*domain.DispatchLogEntry{stale}, nil)
	gomock.InOrder(
		store.EXPECT().RecordAttempt(gomock.Any(), medKey, 1).Return(true, nil),
		sms.EXPECT().Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg domain.OutboundMessage) (string, error) {
				// no re-evaluation: the snapshotted payload is sent as-is
				if msg.Body != stale.Body {
					t.Errorf("retry body = %q", msg.Body)
				}
				if msg.IdempotencyKey != medKey {
					t.Errorf("retry idempotency key = %q", msg.IdempotencyKey)
				}
				return "ext-2", nil
			}),
		store.EXPECT().MarkSent(gomock.Any(), medKey, "ext-2", gomock.Any()).Return(nil),
	)
	// fresh evaluation still runs, with nothing due
	source.EXPECT().ListActiveSchedules(gomock.Any(), gomock.Any()).Return(nil, nil)

	svc := NewService(store, source, []domain.ChannelSender{sms}, nil, nil, testConfig())
	report, err := svc.DispatchMedications(context.Background(), medTick.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("DispatchMedications() error = %v", err)
	}
	if report.Retried != 1 || report.Sent != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestStaleRetryLostAttemptBumpSkipsSend(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockDispatchLogStore(ctrl)
	source := domain.NewMockScheduleSource(ctrl)
	sms := smsSender(ctrl)

	stale := &domain.DispatchLogEntry{
		Key:        medKey,
		Kind:       domain.KindMedication,
		Status:     domain.StatusReserved,
		Channel:    domain.ChannelSMS,
		Address:    "+15551234567",
		Attempts:   1,
		ReservedAt: medTick.Add(-time.Hour),
	}

	store.EXPECT().Ping(gomock.Any()).Return(nil)
	store.EXPECT().ListStaleReserved(gomock.Any(), gomock.Any(), 100).
		Return([]*domain.DispatchLogEntry{stale}, nil)
	// a concurrent tick already bumped the counter; this tick loses the
	// bump and must not send
	store.EXPECT().RecordAttempt(gomock.Any(), medKey, 1).Return(false, nil)
	source.EXPECT().ListActiveSchedules(gomock.Any(), gomock.Any()).Return(nil, nil)

	svc := NewService(store, source, []domain.ChannelSender{sms}, nil, nil, testConfig())
	report, err := svc.DispatchMedications(context.Background(), medTick.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("DispatchMedications() error = %v", err)
	}
	if report.Retried != 0 || report.Sent != 0 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestStaleRetryExhaustedAttemptsFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockDispatchLogStore(ctrl)
	source := domain.NewMockScheduleSource(ctrl)
	sms := smsSender(ctrl)

	stale := &domain.DispatchLogEntry{
		Key:        medKey,
		Kind:       domain.KindMedication,
		Status:     domain.StatusReserved,
		Channel:    domain.ChannelSMS,
		Address:    "+15551234567",
		Attempts:   3,
		ReservedAt: medTick.Add(-time.Hour),
	}

	store.EXPECT().Ping(gomock.Any()).Return(nil)
	store.EXPECT().ListStaleReserved(gomock.Any(), gomock.Any(), 100).
		Return([]*domain.DispatchLogEntry{stale}, nil)
	store.EXPECT().MarkFailed(gomock.Any(), medKey, "retry limit exhausted").Return(nil)
	// no Send for an exhausted entry
	source.EXPECT().ListActiveSchedules(gomock.Any(), gomock.Any()).Return(nil, nil)

	svc := NewService(store, source, []domain.ChannelSender{sms}, nil, nil, testConfig())
	report, err := svc.DispatchMedications(context.Background(), medTick.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("DispatchMedications() error = %v", err)
	}
	if report.Failed != 1 || report.Retried != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestDispatchMedicationsBatchesPerRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockDispatchLogStore(ctrl)
	source := domain.NewMockScheduleSource(ctrl)
	sms := smsSender(ctrl)

	second := testSchedule()
	second.ID = "sched-2"
	second.PetName = "Pixel"
	second.MedicationName = "Gabapentin"
	second.Dosage = "100mg"

	store.EXPECT().Ping(gomock.Any()).Return(nil)
	store.EXPECT().ListStaleReserved(gomock.Any(), gomock.Any(), 100).Return(nil, nil)
	source.EXPECT().ListActiveSchedules(gomock.Any(), gomock.Any()).
		Return([]*domain.ReminderSchedule{testSchedule(), second}, nil)
	store.EXPECT().Reserve(gomock.Any(), gomock.Any()).Return(domain.ReserveWon, nil).Times(2)

	// both doses for the same recipient collapse into one text
	sms.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg domain.OutboundMessage) (string, error) {
			want := "Give Mochi their Apoquel (5mg) - 08:00 dose\nGive Pixel their Gabapentin (100mg) - 08:00 dose"
			if msg.Body != want {
				t.Errorf("batched body = %q, want %q", msg.Body, want)
			}
			return "ext-3", nil
		})
	store.EXPECT().MarkSent(gomock.Any(), gomock.Any(), "ext-3", gomock.Any()).Return(nil).Times(2)

	svc := NewService(store, source, []domain.ChannelSender{sms}, nil, nil, testConfig())
	report, err := svc.DispatchMedications(context.Background(), medTick)
	if err != nil {
		t.Fatalf("DispatchMedications() error = %v", err)
	}
	if report.Batches != 1 || report.Sent != 2 {
		t.Errorf("report = %+v", report)
	}
}
