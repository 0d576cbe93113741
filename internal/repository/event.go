package repository

import (
	"context"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
)

type ListEventsInput struct {
	Status     domain.EventStatus // empty = all statuses
	Type       domain.EventType   // empty = all types
	CursorTime *time.Time
	CursorID   string
	Limit      int
}

type UpdateEventInput struct {
	Title                *string
	Description          *string
	EventType            *domain.EventType
	Status               *domain.EventStatus
	StartsAt             *time.Time
	EndsAt               *time.Time
	Location             *string
	Capacity             *int
	RegistrationDeadline *time.Time
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, input ListEventsInput) ([]*domain.Event, error)
	ListUpcoming(ctx context.Context, after time.Time, limit int) ([]*domain.Event, error)
	Update(ctx context.Context, id string, input UpdateEventInput) (*domain.Event, error)
	Delete(ctx context.Context, id string) error

	// Registration bookkeeping. CountActive counts registered (not
	// waitlisted/cancelled) rows for capacity checks.
	CreateRegistration(ctx context.Context, reg *domain.EventRegistration) (*domain.EventRegistration, error)
	GetRegistration(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error)
	ListRegistrations(ctx context.Context, eventID string) ([]*domain.EventRegistration, error)
	CountActive(ctx context.Context, eventID string) (int, error)
	UpdateRegistrationStatus(ctx context.Context, id string, status domain.RegistrationStatus) error

	// OldestWaitlisted returns the longest-waiting waitlisted
	// registration, or domain.ErrRegistrationNotFound.
	OldestWaitlisted(ctx context.Context, eventID string) (*domain.EventRegistration, error)

	// CompletePast flips published events whose end time passed to
	// completed. Returns the number of rows changed.
	CompletePast(ctx context.Context, before time.Time) (int, error)
}
