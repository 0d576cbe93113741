package repository

import (
	"context"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
)

type ListSermonsInput struct {
	Status  domain.SermonStatus // empty = all statuses
	Series  string
	Speaker string

	CursorTime *time.Time
	CursorID   string
	Limit      int
}

type UpdateSermonInput struct {
	Title      *string
	Speaker    *string
	Series     *string
	Scripture  *string
	Summary    *string
	MediaURL   *string
	PreachedAt *time.Time
}

type SermonRepository interface {
	Create(ctx context.Context, sermon *domain.Sermon) (*domain.Sermon, error)
	GetByID(ctx context.Context, id string) (*domain.Sermon, error)
	List(ctx context.Context, input ListSermonsInput) ([]*domain.Sermon, error)
	Update(ctx context.Context, id string, input UpdateSermonInput) (*domain.Sermon, error)
	Publish(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error

	// IncrementViewCount is best-effort read tracking; callers ignore
	// its error.
	IncrementViewCount(ctx context.Context, id string) error
}
