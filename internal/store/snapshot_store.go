package store

import (
	"context"

	"earnings/internal/models"
)

type SnapshotStore struct {
	db DB
}

func NewSnapshotStore(db DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

type SnapshotInput struct {
	ID                    string
	UserID                string
	WeekStart             string
	WeekEnd               string
	TotalGbp              int64
	TotalEur              int64
	TotalUsd              int64
	TotalDurationMinutes  int
	DaysWorked            int
	EntryCount            int
	DetailsByDay          string
	TotalsByPaymentMethod string
}

// Upsert writes the frozen week. Re-closing an already-snapshotted week
// overwrites deterministically: the aggregate is recomputed from the same
// rows, so the rewrite is an effective no-op.
func (s *SnapshotStore) Upsert(ctx context.Context, tx Execer, input SnapshotInput) error {
	query := `
		INSERT INTO week_snapshots (
			id, user_id, week_start, week_end, total_gbp, total_eur, total_usd,
			total_duration_minutes, days_worked, entry_count, details_by_day, totals_by_payment_method
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, week_start) DO UPDATE SET
			week_end = EXCLUDED.week_end,
			total_gbp = EXCLUDED.total_gbp,
			total_eur = EXCLUDED.total_eur,
			total_usd = EXCLUDED.total_usd,
			total_duration_minutes = EXCLUDED.total_duration_minutes,
			days_worked = EXCLUDED.days_worked,
			entry_count = EXCLUDED.entry_count,
			details_by_day = EXCLUDED.details_by_day,
			totals_by_payment_method = EXCLUDED.totals_by_payment_method
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.WeekStart, input.WeekEnd,
		input.TotalGbp, input.TotalEur, input.TotalUsd,
		input.TotalDurationMinutes, input.DaysWorked, input.EntryCount,
		input.DetailsByDay, input.TotalsByPaymentMethod,
	)
	return err
}

func (s *SnapshotStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.WeekSnapshot, error) {
	var snapshots []models.WeekSnapshot
	err := s.db.SelectContext(ctx, &snapshots, `
		SELECT id, user_id, to_char(week_start, 'YYYY-MM-DD') AS week_start,
		       to_char(week_end, 'YYYY-MM-DD') AS week_end,
		       total_gbp, total_eur, total_usd, total_duration_minutes,
		       days_worked, entry_count, details_by_day, totals_by_payment_method, created_at
		FROM week_snapshots
		WHERE user_id = $1
		ORDER BY week_start DESC
		LIMIT $2
	`, userID, limit)
	return snapshots, err
}

func (s *SnapshotStore) GetByUserAndWeek(ctx context.Context, userID, weekStart string) (models.WeekSnapshot, error) {
	var snapshot models.WeekSnapshot
	err := s.db.GetContext(ctx, &snapshot, `
		SELECT id, user_id, to_char(week_start, 'YYYY-MM-DD') AS week_start,
		       to_char(week_end, 'YYYY-MM-DD') AS week_end,
		       total_gbp, total_eur, total_usd, total_duration_minutes,
		       days_worked, entry_count, details_by_day, totals_by_payment_method, created_at
		FROM week_snapshots
		WHERE user_id = $1 AND week_start = $2
	`, userID, weekStart)
	return snapshot, err
}
