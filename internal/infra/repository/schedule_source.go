package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/petfolio/reminder-dispatch/internal/domain"
)

// reminderScheduleRow maps the externally owned medication schedule table.
// This service only reads it.
type reminderScheduleRow struct {
	ID             string `gorm:"primaryKey"`
	RecipientID    string
	RecipientPhone string
	Timezone       string
	StartDate      time.Time
	EndDate        *time.Time
	Times          datatypes.JSON
	PetName        string
	MedicationName string
	Dosage         string
}

func (reminderScheduleRow) TableName() string { return "reminder_schedule" }

// deadlineWatchRow maps the externally owned claim deadline table. The only
// write this service performs is the narrow sent_flags update.
type deadlineWatchRow struct {
	ID             string `gorm:"primaryKey"`
	RecipientID    string
	RecipientEmail string
	PetName        string
	Provider       string
	ReferenceDate  time.Time
	WindowDays     int
	SentFlags      datatypes.JSONMap
}

func (deadlineWatchRow) TableName() string { return "deadline_watch" }

type postgresScheduleSource struct {
	db *gorm.DB
}

func NewPostgresScheduleSource(db *gorm.DB) domain.ScheduleSource {
	return &postgresScheduleSource{db: db}
}

// ListActiveSchedules returns schedules that may be active around the tick
// instant. The SQL filter is anchored to that instant, not the wall clock,
// so virtual-time ticks replay historical windows; it is padded by a day on
// each side because "today" is timezone-local per schedule, and the
// evaluator does the precise local-date check.
func (s *postgresScheduleSource) ListActiveSchedules(ctx context.Context, around time.Time) ([]*domain.ReminderSchedule, error) {
	lower := around.UTC().AddDate(0, 0, -1)
	upper := around.UTC().AddDate(0, 0, 1)

	var rows []reminderScheduleRow
	err := s.db.WithContext(ctx).
		Where("start_date <= ?", upper).
		Where("end_date IS NULL OR end_date >= ?", lower).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	schedules := make([]*domain.ReminderSchedule, 0, len(rows))
	for i := range rows {
		row := &rows[i]

		var times []string
		if len(row.Times) > 0 {
			if err := json.Unmarshal(row.Times, &times); err != nil {
				slog.WarnContext(ctx, "skipping schedule with malformed times column",
					slog.String("schedule_id", row.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
		}

		schedules = append(schedules, &domain.ReminderSchedule{
			ID:             row.ID,
			RecipientID:    row.RecipientID,
			RecipientPhone: row.RecipientPhone,
			Timezone:       row.Timezone,
			StartDate:      row.StartDate,
			EndDate:        row.EndDate,
			Times:          times,
			PetName:        row.PetName,
			MedicationName: row.MedicationName,
			Dosage:         row.Dosage,
		})
	}
	return schedules, nil
}

// ListOpenWatches returns watches that can still fire a band. Once the
// passed band is sent the watch is closed: remaining days only decrease, so
// no other band can match again.
func (s *postgresScheduleSource) ListOpenWatches(ctx context.Context) ([]*domain.DeadlineWatch, error) {
	var rows []deadlineWatchRow
	err := s.db.WithContext(ctx).
		Where("sent_flags ->> 'passed' IS DISTINCT FROM 'true'").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	watches := make([]*domain.DeadlineWatch, 0, len(rows))
	for i := range rows {
		row := &rows[i]

		flags := make(map[domain.Threshold]bool, len(row.SentFlags))
		for name, v := range row.SentFlags {
			if b, ok := v.(bool); ok && b {
				flags[domain.Threshold(name)] = true
			}
		}

		watches = append(watches, &domain.DeadlineWatch{
			ID:             row.ID,
			RecipientID:    row.RecipientID,
			RecipientEmail: row.RecipientEmail,
			PetName:        row.PetName,
			Provider:       row.Provider,
			ReferenceDate:  row.ReferenceDate,
			WindowDays:     row.WindowDays,
			SentFlags:      flags,
		})
	}
	return watches, nil
}

// SetWatchSentFlag flips one key inside sent_flags with jsonb_set so
// concurrent edits to other watch columns are not clobbered by a
// read-modify-write of the whole row.
func (s *postgresScheduleSource) SetWatchSentFlag(ctx context.Context, watchID string, band domain.Threshold) error {
	result := s.db.WithContext(ctx).
		Model(&deadlineWatchRow{}).
		Where("id = ?", watchID).
		UpdateColumn("sent_flags", gorm.Expr(
			"jsonb_set(COALESCE(sent_flags, '{}'::jsonb), ARRAY[?], 'true'::jsonb)",
			band.String(),
		))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
