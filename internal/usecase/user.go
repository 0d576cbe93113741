package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/auth"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/authz"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
)

type UserUsecase struct {
	base  *Base
	users repository.UserRepository
}

func NewUserUsecase(base *Base, users repository.UserRepository) *UserUsecase {
	return &UserUsecase{base: base, users: users}
}

// userError translates repository sentinels into app errors. Unmatched
// errors pass through and get wrapped as internal by the pipeline.
func userError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return apperror.NotFound(apperror.CodeUserNotFound, "user not found").
			WithUserMessage("User not found")
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return apperror.Conflict(apperror.CodeUserAlreadyExists, "email already registered").
			WithUserMessage("An account with this email already exists")
	default:
		return err
	}
}

type CreateUserInput struct {
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,min=8,max=128"`
	FirstName string      `json:"first_name" validate:"required,max=100"`
	LastName  string      `json:"last_name" validate:"max=100"`
	Phone     *string     `json:"phone" validate:"omitempty,max=30"`
	Role      domain.Role `json:"role" validate:"omitempty,oneof=super_admin staff ministry_leader member visitor"`
}

// Create adds a user directly in active status. Admin path: unlike
// self registration there is no pending state and no welcome email.
func (u *UserUsecase) Create(ctx context.Context, actor *domain.User, input CreateUserInput) (*domain.User, error) {
	def := Definition[CreateUserInput, *domain.User]{
		Name: "user.create",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageUsers},
			ValidateInput:       true,
			Transactional:       true,
			AuditLog:            true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input CreateUserInput) (*domain.User, error) {
			role := input.Role
			if role == "" {
				role = domain.RoleMember
			}

			hash, err := auth.HashPassword(input.Password)
			if err != nil {
				return nil, err
			}
			created, err := u.users.Create(ctx, &domain.User{
				Email:        input.Email,
				PasswordHash: hash,
				FirstName:    input.FirstName,
				LastName:     input.LastName,
				Phone:        input.Phone,
				Role:         role,
				Status:       domain.UserStatusActive,
			})
			if err != nil {
				return nil, userError(err)
			}
			return created, nil
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

// GetMe returns the caller's own profile.
func (u *UserUsecase) GetMe(ctx context.Context, actor *domain.User) (*domain.User, error) {
	def := Definition[struct{}, *domain.User]{
		Name:   "user.get_me",
		Config: Config{RequireAuth: true},
		Execute: func(ctx context.Context, op *OperationContext, _ struct{}) (*domain.User, error) {
			return actor, nil
		},
	}
	return Run(ctx, u.base, def, actor, struct{}{})
}

// GetByID fetches a profile. manage_users sees anyone; everyone else
// only themselves, via the ownership stand-in.
func (u *UserUsecase) GetByID(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	var target *domain.User
	def := Definition[string, *domain.User]{
		Name: "user.get",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageUsers},
		},
		Resource: func(ctx context.Context, id string) (authz.OwnedResource, error) {
			user, err := u.users.GetByID(ctx, id)
			if err != nil {
				return nil, userError(err)
			}
			target = user
			return user, nil
		},
		Execute: func(ctx context.Context, op *OperationContext, _ string) (*domain.User, error) {
			return target, nil
		},
	}
	return Run(ctx, u.base, def, actor, id)
}

func (u *UserUsecase) GetByEmail(ctx context.Context, actor *domain.User, email string) (*domain.User, error) {
	def := Definition[string, *domain.User]{
		Name: "user.get_by_email",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageUsers},
		},
		Execute: func(ctx context.Context, op *OperationContext, email string) (*domain.User, error) {
			user, err := u.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, userError(err)
			}
			return user, nil
		},
	}
	return Run(ctx, u.base, def, actor, email)
}

type ListUsersInput struct {
	Status     domain.UserStatus `json:"status" validate:"omitempty,oneof=active inactive pending suspended"`
	CursorTime *time.Time        `json:"cursor_time"`
	CursorID   string            `json:"cursor_id"`
	Limit      int               `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

func (u *UserUsecase) List(ctx context.Context, actor *domain.User, input ListUsersInput) ([]*domain.User, error) {
	def := Definition[ListUsersInput, []*domain.User]{
		Name: "user.list",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageUsers},
			ValidateInput:       true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input ListUsersInput) ([]*domain.User, error) {
			if input.Limit == 0 {
				input.Limit = 20
			}
			return u.users.List(ctx, repository.ListUsersInput{
				Status:     input.Status,
				CursorTime: input.CursorTime,
				CursorID:   input.CursorID,
				Limit:      input.Limit,
			})
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

func (u *UserUsecase) ListByRole(ctx context.Context, actor *domain.User, role domain.Role) ([]*domain.User, error) {
	def := Definition[domain.Role, []*domain.User]{
		Name: "user.list_by_role",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageUsers},
		},
		Execute: func(ctx context.Context, op *OperationContext, role domain.Role) ([]*domain.User, error) {
			if !role.Valid() {
				return nil, apperror.Validation(apperror.CodeValidationError, "unknown role "+string(role)).
					WithUserMessage("Unknown role")
			}
			return u.users.ListByRole(ctx, role)
		},
	}
	return Run(ctx, u.base, def, actor, role)
}

type SearchUsersInput struct {
	Query string `json:"q" validate:"required,min=2,max=100"`
	Limit int    `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

func (u *UserUsecase) Search(ctx context.Context, actor *domain.User, input SearchUsersInput) ([]*domain.User, error) {
	def := Definition[SearchUsersInput, []*domain.User]{
		Name: "user.search",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageUsers},
			ValidateInput:       true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input SearchUsersInput) ([]*domain.User, error) {
			if input.Limit == 0 {
				input.Limit = 20
			}
			return u.users.Search(ctx, input.Query, input.Limit)
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

type UpdateUserInput struct {
	FirstName     *string               `json:"first_name" validate:"omitempty,max=100"`
	LastName      *string               `json:"last_name" validate:"omitempty,max=100"`
	Phone         *string               `json:"phone" validate:"omitempty,max=30"`
	DateOfBirth   *time.Time            `json:"date_of_birth"`
	Gender        *domain.Gender        `json:"gender" validate:"omitempty,oneof=male female other"`
	MaritalStatus *domain.MaritalStatus `json:"marital_status" validate:"omitempty,oneof=single married divorced widowed"`
	Address       *string               `json:"address" validate:"omitempty,max=500"`
	Role          *domain.Role          `json:"role" validate:"omitempty,oneof=super_admin staff ministry_leader member visitor"`
}

// Update edits a profile. Users may edit their own; changing a role
// always requires manage_users, and invalidates the permission cache.
func (u *UserUsecase) Update(ctx context.Context, actor *domain.User, id string, input UpdateUserInput) (*domain.User, error) {
	def := Definition[UpdateUserInput, *domain.User]{
		Name: "user.update",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageUsers},
			ValidateInput:       true,
			Transactional:       true,
			AuditLog:            true,
		},
		Resource: func(ctx context.Context, _ UpdateUserInput) (authz.OwnedResource, error) {
			user, err := u.users.GetByID(ctx, id)
			if err != nil {
				return nil, userError(err)
			}
			return user, nil
		},
		Execute: func(ctx context.Context, op *OperationContext, input UpdateUserInput) (*domain.User, error) {
			if input.Role != nil && !u.base.authorizer.EffectivePermissions(actor)[domain.PermManageUsers] {
				return nil, apperror.Authorization(apperror.CodePermissionDenied, "role change requires manage_users").
					WithUserMessage("You are not allowed to change roles")
			}

			updated, err := u.users.Update(ctx, id, repository.UpdateUserInput{
				FirstName:     input.FirstName,
				LastName:      input.LastName,
				Phone:         input.Phone,
				DateOfBirth:   input.DateOfBirth,
				Gender:        input.Gender,
				MaritalStatus: input.MaritalStatus,
				Address:       input.Address,
				Role:          input.Role,
			})
			if err != nil {
				return nil, userError(err)
			}

			if input.Role != nil {
				u.base.authorizer.ClearCache(id)
			}
			return updated, nil
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

type UpdateUserStatusInput struct {
	Status domain.UserStatus `json:"status" validate:"required,oneof=active inactive pending suspended"`
}

func (u *UserUsecase) UpdateStatus(ctx context.Context, actor *domain.User, id string, input UpdateUserStatusInput) (struct{}, error) {
	def := Definition[UpdateUserStatusInput, struct{}]{
		Name: "user.update_status",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageUsers},
			ValidateInput:       true,
			AuditLog:            true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input UpdateUserStatusInput) (struct{}, error) {
			if err := u.users.UpdateStatus(ctx, id, input.Status); err != nil {
				return struct{}{}, userError(err)
			}
			u.base.authorizer.ClearCache(id)
			return struct{}{}, nil
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

func (u *UserUsecase) Delete(ctx context.Context, actor *domain.User, id string) (struct{}, error) {
	def := Definition[string, struct{}]{
		Name: "user.delete",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageUsers},
			Transactional:       true,
			AuditLog:            true,
		},
		Execute: func(ctx context.Context, op *OperationContext, id string) (struct{}, error) {
			if id == actor.ID {
				return struct{}{}, apperror.Conflict(apperror.CodeConflict, "cannot delete own account").
					WithUserMessage("You cannot delete your own account")
			}
			if err := u.users.Delete(ctx, id); err != nil {
				return struct{}{}, userError(err)
			}
			u.base.authorizer.ClearCache(id)
			return struct{}{}, nil
		},
	}
	return Run(ctx, u.base, def, actor, id)
}
