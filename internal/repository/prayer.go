package repository

import (
	"context"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
)

type ListPrayersInput struct {
	// Privacies restricts results to these privacy levels. The use
	// case computes the set the viewer may see; OwnerID additionally
	// includes everything the viewer requested themselves.
	Privacies []domain.PrayerPrivacy
	OwnerID   string
	Status    domain.PrayerStatus
	Category  domain.PrayerCategory

	CursorTime *time.Time
	CursorID   string
	Limit      int
}

type UpdatePrayerInput struct {
	Title    *string
	Body     *string
	Category *domain.PrayerCategory
	Privacy  *domain.PrayerPrivacy
}

type PrayerRepository interface {
	Create(ctx context.Context, prayer *domain.Prayer) (*domain.Prayer, error)
	GetByID(ctx context.Context, id string) (*domain.Prayer, error)
	List(ctx context.Context, input ListPrayersInput) ([]*domain.Prayer, error)
	Update(ctx context.Context, id string, input UpdatePrayerInput) (*domain.Prayer, error)
	Delete(ctx context.Context, id string) error

	// IncrementPrayerCount bumps the counter and returns the new value.
	IncrementPrayerCount(ctx context.Context, id string) (int, error)

	MarkAnswered(ctx context.Context, id string, answeredAt time.Time, testimony *string) error

	// ArchiveAnswered archives answered prayers whose answer date is
	// older than before. Returns the number of rows changed.
	ArchiveAnswered(ctx context.Context, before time.Time) (int, error)
}
