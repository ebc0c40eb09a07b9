package store

import (
	"context"

	"earnings/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

type UserInput struct {
	ID           string
	Email        string
	Nickname     *string
	Name         string
	PasswordHash string
	Role         string
}

func (s *UserStore) Create(ctx context.Context, tx Execer, input UserInput) error {
	query := `
		INSERT INTO users (id, email, nickname, name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.Email, input.Nickname, input.Name, input.PasswordHash, input.Role)
	return err
}

// GetByIdentifier resolves a login identifier, which may be an email address
// or a nickname.
func (s *UserStore) GetByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, email, nickname, name, password_hash, role, created_at, last_signed_in
		FROM users
		WHERE email = $1 OR nickname = $1
	`, identifier)
	return user, err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, email, nickname, name, password_hash, role, created_at, last_signed_in
		FROM users
		WHERE email = $1
	`, email)
	return user, err
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, email, nickname, name, password_hash, role, created_at, last_signed_in
		FROM users
		WHERE id = $1
	`, userID)
	return user, err
}

// GetRole reads the authoritative role for authorization checks; the role in
// a token claim may be stale.
func (s *UserStore) GetRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := s.db.GetContext(ctx, &role, `SELECT role FROM users WHERE id = $1`, userID)
	return role, err
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.SelectContext(ctx, &users, `
		SELECT id, email, nickname, name, '' AS password_hash, role, created_at, last_signed_in
		FROM users
		ORDER BY created_at DESC
	`)
	return users, err
}

func (s *UserStore) TouchLastSignedIn(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE users SET last_signed_in = now() WHERE id = $1`, userID)
	return err
}

// HasAnyAdmin reports whether an admin account exists. Callers deciding the
// first-registered-user bootstrap must run it on the same transaction as the
// insert.
func (s *UserStore) HasAnyAdmin(ctx context.Context, q Getter) (bool, error) {
	var count int
	err := q.GetContext(ctx, &count, `SELECT COUNT(1) FROM users WHERE role = 'admin'`)
	return count > 0, err
}
