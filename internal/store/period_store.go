package store

import (
	"context"
	"time"

	"earnings/internal/models"
)

type PeriodStore struct {
	db DB
}

func NewPeriodStore(db DB) *PeriodStore {
	return &PeriodStore{db: db}
}

type PeriodInput struct {
	ID         string
	UserID     string
	StartDate  time.Time
	EndDate    time.Time
	CurrentDay int
	Status     string
}

func (s *PeriodStore) Create(ctx context.Context, tx Execer, input PeriodInput) error {
	query := `
		INSERT INTO periods (id, user_id, start_date, end_date, current_day, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.UserID, input.StartDate, input.EndDate, input.CurrentDay, input.Status)
	return err
}

func (s *PeriodStore) GetByID(ctx context.Context, id string) (models.Period, error) {
	var period models.Period
	err := s.db.GetContext(ctx, &period, `
		SELECT id, user_id, start_date, end_date, current_day, status, created_at, updated_at
		FROM periods
		WHERE id = $1
	`, id)
	return period, err
}

// GetActiveByUser returns sql.ErrNoRows when the user has no active period.
func (s *PeriodStore) GetActiveByUser(ctx context.Context, userID string) (models.Period, error) {
	var period models.Period
	err := s.db.GetContext(ctx, &period, `
		SELECT id, user_id, start_date, end_date, current_day, status, created_at, updated_at
		FROM periods
		WHERE user_id = $1 AND status = 'active'
	`, userID)
	return period, err
}

func (s *PeriodStore) ListByUser(ctx context.Context, userID string) ([]models.Period, error) {
	var periods []models.Period
	err := s.db.SelectContext(ctx, &periods, `
		SELECT id, user_id, start_date, end_date, current_day, status, created_at, updated_at
		FROM periods
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	return periods, err
}

// ListExpiredActive returns every active period whose start date is at or
// before the cutoff. Used by the sweep.
func (s *PeriodStore) ListExpiredActive(ctx context.Context, cutoff time.Time) ([]models.Period, error) {
	var periods []models.Period
	err := s.db.SelectContext(ctx, &periods, `
		SELECT id, user_id, start_date, end_date, current_day, status, created_at, updated_at
		FROM periods
		WHERE status = 'active' AND start_date <= $1
		ORDER BY start_date
	`, cutoff)
	return periods, err
}

func (s *PeriodStore) SetCurrentDay(ctx context.Context, tx Execer, periodID string, day int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE periods SET current_day = $1, updated_at = now() WHERE id = $2
	`, day, periodID)
	return err
}

// CloseIfActive transitions the period to the given terminal status, guarded
// on it still being active. Returns false when some other caller closed it
// first, which makes the sweep safe to run concurrently.
func (s *PeriodStore) CloseIfActive(ctx context.Context, tx Execer, periodID, status string, end time.Time) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE periods
		SET status = $1, end_date = $2, updated_at = now()
		WHERE id = $3 AND status = 'active'
	`, status, end, periodID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CloseActiveByUser closes whatever active period the user has; returns false
// when there was nothing to close.
func (s *PeriodStore) CloseActiveByUser(ctx context.Context, tx Execer, userID, status string, end time.Time) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE periods
		SET status = $1, end_date = $2, updated_at = now()
		WHERE user_id = $3 AND status = 'active'
	`, status, end, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
