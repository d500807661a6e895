package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/petfolio/reminder-dispatch/internal/domain"
)

// dispatchLogRow is the persisted dispatch log schema. The unique index on
// key makes the insert the single arbiter between concurrent ticks.
type dispatchLogRow struct {
	ID                uint   `gorm:"primaryKey"`
	Key               string `gorm:"size:255;not null;uniqueIndex:ux_dispatch_log_key"`
	Kind              string `gorm:"size:16;not null"`
	Status            string `gorm:"size:16;not null;index"`
	RecipientID       string `gorm:"size:64;not null;index"`
	Channel           string `gorm:"size:16;not null"`
	Address           string `gorm:"size:255;not null"`
	Subject           string `gorm:"size:255"`
	Body              string `gorm:"type:text"`
	WatchID           string `gorm:"size:64"`
	Band              string `gorm:"size:16"`
	Attempts          int    `gorm:"not null;default:0"`
	ReservedAt        time.Time `gorm:"not null;index"`
	SentAt            *time.Time
	ExternalMessageID string `gorm:"size:128"`
	FailureReason     string `gorm:"size:512"`
}

func (dispatchLogRow) TableName() string { return "dispatch_log" }

type postgresDispatchLogStore struct {
	db *gorm.DB
}

// NewPostgresDispatchLogStore returns the durable dispatch log. Reserve is
// an INSERT ... ON CONFLICT DO NOTHING against the unique key; rows are
// never deleted.
func NewPostgresDispatchLogStore(db *gorm.DB) domain.DispatchLogStore {
	return &postgresDispatchLogStore{db: db}
}

// MigrateDispatchLog creates the dispatch log table. The schedule and watch
// tables belong to the external data layer and are not migrated here.
func MigrateDispatchLog(db *gorm.DB) error {
	return db.AutoMigrate(&dispatchLogRow{})
}

func (s *postgresDispatchLogStore) Reserve(ctx context.Context, entry *domain.DispatchLogEntry) (domain.ReserveOutcome, error) {
	if entry == nil || entry.Key == "" {
		return domain.ReserveLost, ErrInvalidEntryData
	}

	row := toRow(entry)
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(row)
	if result.Error != nil {
		return domain.ReserveLost, result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ReserveLost, nil
	}
	return domain.ReserveWon, nil
}

func (s *postgresDispatchLogStore) Get(ctx context.Context, key string) (*domain.DispatchLogEntry, error) {
	var row dispatchLogRow
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return fromRow(&row), nil
}

func (s *postgresDispatchLogStore) MarkSent(ctx context.Context, key, externalMessageID string, sentAt time.Time) error {
	at := sentAt.UTC()
	return s.updateByKey(ctx, key, map[string]any{
		"status":              domain.StatusSent.String(),
		"sent_at":             &at,
		"external_message_id": externalMessageID,
	})
}

func (s *postgresDispatchLogStore) MarkFailed(ctx context.Context, key, reason string) error {
	return s.updateByKey(ctx, key, map[string]any{
		"status":         domain.StatusFailed.String(),
		"failure_reason": reason,
	})
}

// RecordAttempt is a compare-and-bump: the predicate on the current counter
// value makes concurrent ticks racing over the same stale entry resolve to a
// single winner, the same way the unique key arbitrates Reserve.
func (s *postgresDispatchLogStore) RecordAttempt(ctx context.Context, key string, expected int) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&dispatchLogRow{}).
		Where("key = ? AND attempts = ?", key, expected).
		UpdateColumn("attempts", gorm.Expr("attempts + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *postgresDispatchLogStore) ListStaleReserved(ctx context.Context, olderThan time.Time, limit int) ([]*domain.DispatchLogEntry, error) {
	var rows []dispatchLogRow
	err := s.db.WithContext(ctx).
		Where("status = ? AND reserved_at < ?", domain.StatusReserved.String(), olderThan.UTC()).
		Order("reserved_at").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.DispatchLogEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, fromRow(&rows[i]))
	}
	return entries, nil
}

func (s *postgresDispatchLogStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *postgresDispatchLogStore) updateByKey(ctx context.Context, key string, fields map[string]any) error {
	result := s.db.WithContext(ctx).
		Model(&dispatchLogRow{}).
		Where("key = ?", key).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

func toRow(e *domain.DispatchLogEntry) *dispatchLogRow {
	return &dispatchLogRow{
		Key:               e.Key,
		Kind:              string(e.Kind),
		Status:            e.Status.String(),
		RecipientID:       e.RecipientID,
		Channel:           e.Channel.String(),
		Address:           e.Address,
		Subject:           e.Subject,
		Body:              e.Body,
		WatchID:           e.WatchID,
		Band:              e.Band.String(),
		Attempts:          e.Attempts,
		ReservedAt:        e.ReservedAt.UTC(),
		SentAt:            e.SentAt,
		ExternalMessageID: e.ExternalMessageID,
		FailureReason:     e.FailureReason,
	}
}

func fromRow(r *dispatchLogRow) *domain.DispatchLogEntry {
	return &domain.DispatchLogEntry{
		Key:               r.Key,
		Kind:              domain.OccurrenceKind(r.Kind),
		Status:            domain.DispatchStatus(r.Status),
		RecipientID:       r.RecipientID,
		Channel:           domain.Channel(r.Channel),
		Address:           r.Address,
		Subject:           r.Subject,
		Body:              r.Body,
		WatchID:           r.WatchID,
		Band:              domain.Threshold(r.Band),
		Attempts:          r.Attempts,
		ReservedAt:        r.ReservedAt,
		SentAt:            r.SentAt,
		ExternalMessageID: r.ExternalMessageID,
		FailureReason:     r.FailureReason,
	}
}
