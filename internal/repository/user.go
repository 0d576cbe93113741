package repository

import (
	"context"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
)

type ListUsersInput struct {
	Status     domain.UserStatus // empty = all statuses
	CursorTime *time.Time        // nil = first page
	CursorID   string            // used only when CursorTime is non-nil
	Limit      int
}

type UpdateUserInput struct {
	FirstName     *string
	LastName      *string
	Phone         *string
	DateOfBirth   *time.Time
	Gender        *domain.Gender
	MaritalStatus *domain.MaritalStatus
	Address       *string
	Role          *domain.Role
}

// UseCase depends on interface, not concrete implementation, so the
// DB can be swapped and tests can pass fakes.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, input ListUsersInput) ([]*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)

	// Search matches name or email, case-insensitive substring.
	Search(ctx context.Context, query string, limit int) ([]*domain.User, error)

	Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
