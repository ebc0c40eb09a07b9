package store

import (
	"context"

	"earnings/internal/models"
)

type AuditStore struct {
	db DB
}

func NewAuditStore(db DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Log(ctx context.Context, tx Execer, actorID *string, action, entityType, entityID, data, ipAddress string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_user_id, action, entity_type, entity_id, data, ip_address)
		VALUES (gen_random_uuid()::text, $1, $2, $3, $4, $5, $6)
	`, actorID, action, entityType, entityID, data, ipAddress)
	return err
}

func (s *AuditStore) List(ctx context.Context, limit, offset int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := s.db.SelectContext(ctx, &logs, `
		SELECT id, actor_user_id, action, entity_type, entity_id, data, ip_address, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return logs, err
}
