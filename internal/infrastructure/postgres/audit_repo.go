package postgres

import (
	"context"
	"fmt"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
)

type AuditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, record *domain.AuditRecord) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO audit_records (operation, actor_id, outcome, error_code, duration_ms, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		record.Operation,
		record.ActorID,
		record.Outcome,
		record.ErrorCode,
		record.DurationMS,
		record.Metadata,
	)
	if err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}
