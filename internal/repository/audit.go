package repository

import (
	"context"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
)

// AuditRepository is append-only; records are written by the audit
// task handler and never read back by the application.
type AuditRepository interface {
	Record(ctx context.Context, record *domain.AuditRecord) error
}
