package store

import (
	"context"

	"earnings/internal/models"
)

type EarningStore struct {
	db DB
}

func NewEarningStore(db DB) *EarningStore {
	return &EarningStore{db: db}
}

type EarningInput struct {
	ID              string
	UserID          string
	GbpAmount       int64
	EurAmount       int64
	UsdAmount       int64
	DurationMinutes int
	PaymentMethod   string
	Description     *string
	Date            string
}

const earningColumns = `
	id, user_id, gbp_amount, eur_amount, usd_amount, duration_minutes,
	payment_method, description, to_char(date, 'YYYY-MM-DD') AS date,
	created_at, updated_at
`

func (s *EarningStore) Create(ctx context.Context, tx Execer, input EarningInput) error {
	query := `
		INSERT INTO earnings (id, user_id, gbp_amount, eur_amount, usd_amount, duration_minutes, payment_method, description, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.GbpAmount, input.EurAmount, input.UsdAmount,
		input.DurationMinutes, input.PaymentMethod, input.Description, input.Date,
	)
	return err
}

func (s *EarningStore) GetByID(ctx context.Context, id string) (models.Earning, error) {
	var earning models.Earning
	err := s.db.GetContext(ctx, &earning, `
		SELECT `+earningColumns+`
		FROM earnings
		WHERE id = $1
	`, id)
	return earning, err
}

func (s *EarningStore) ListByUser(ctx context.Context, userID string) ([]models.Earning, error) {
	var earnings []models.Earning
	err := s.db.SelectContext(ctx, &earnings, `
		SELECT `+earningColumns+`
		FROM earnings
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
	`, userID)
	return earnings, err
}

// ListByUserAndRange returns the user's entries with date in [start, end),
// both YYYY-MM-DD. Feeds the weekly aggregator.
func (s *EarningStore) ListByUserAndRange(ctx context.Context, userID, start, end string) ([]models.Earning, error) {
	var earnings []models.Earning
	err := s.db.SelectContext(ctx, &earnings, `
		SELECT `+earningColumns+`
		FROM earnings
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, created_at
	`, userID, start, end)
	return earnings, err
}

func (s *EarningStore) Update(ctx context.Context, tx Execer, id string, input EarningInput) error {
	query := `
		UPDATE earnings
		SET gbp_amount = $1, eur_amount = $2, usd_amount = $3, duration_minutes = $4,
		    payment_method = $5, description = $6, date = $7, updated_at = now()
		WHERE id = $8
	`
	_, err := tx.ExecContext(ctx, query,
		input.GbpAmount, input.EurAmount, input.UsdAmount, input.DurationMinutes,
		input.PaymentMethod, input.Description, input.Date, id,
	)
	return err
}

func (s *EarningStore) Delete(ctx context.Context, tx Execer, id string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM earnings WHERE id = $1`, id)
	return err
}
