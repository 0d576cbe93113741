package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/auth"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/metrics"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/tasks"
)

// Login failures are deliberately vague: the same message covers
// unknown email and wrong password so accounts cannot be enumerated.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgAccountNotActive   = "Your account is not active. Please contact the church office."
	msgResetNeutral       = "If an account with that email exists, a password reset link has been sent."
)

type AuthUsecase struct {
	base    *Base
	users   repository.UserRepository
	manager *auth.Manager
}

func NewAuthUsecase(base *Base, users repository.UserRepository, manager *auth.Manager) *AuthUsecase {
	return &AuthUsecase{base: base, users: users, manager: manager}
}

type RegisterInput struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=128"`
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
}

// Register creates a member account in pending status; the first login
// activates it. The welcome email goes through the task queue so a
// slow email provider cannot slow registration down.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	def := Definition[RegisterInput, *domain.User]{
		Name: "auth.register",
		Config: Config{
			ValidateInput: true,
			Transactional: true,
			AuditLog:      true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input RegisterInput) (*domain.User, error) {
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
				Role:         domain.RoleMember,
				Status:       domain.UserStatusPending,
			})
			if err != nil {
				if errors.Is(err, domain.ErrUserAlreadyExists) {
					return nil, apperror.Conflict(apperror.CodeUserAlreadyExists, "email already registered").
						WithUserMessage("An account with this email already exists")
				}
				return nil, err
			}

			if _, err := u.base.queue.Enqueue(ctx, tasks.TaskEmailWelcome, tasks.WelcomeEmailPayload{
				UserID:    created.ID,
				Email:     created.Email,
				FirstName: created.FirstName,
			}); err != nil {
				// The account exists; losing the welcome email is
				// acceptable.
				u.base.logger.WarnContext(ctx, "welcome email enqueue failed", "user_id", created.ID, "error", err)
			}
			return created, nil
		},
	}
	return Run(ctx, u.base, def, nil, input)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned by every operation that issues a fresh token
// pair.
type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until the access token expires
	SessionID    string
}

func (u *AuthUsecase) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	def := Definition[LoginInput, *LoginResult]{
		Name: "auth.login",
		Config: Config{
			ValidateInput: true,
			AuditLog:      true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input LoginInput) (*LoginResult, error) {
			user, err := u.users.GetByEmail(ctx, input.Email)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.LoginsTotal.WithLabelValues("failure").Inc()
					return nil, apperror.Authentication(apperror.CodeAuthFailed, "unknown email").
						WithUserMessage(msgInvalidCredentials)
				}
				return nil, err
			}

			if !auth.CheckPassword(user.PasswordHash, input.Password) {
				metrics.LoginsTotal.WithLabelValues("failure").Inc()
				return nil, apperror.Authentication(apperror.CodeAuthFailed, "wrong password").
					WithUserMessage(msgInvalidCredentials)
			}

			switch user.Status {
			case domain.UserStatusPending:
				// First login activates the account.
				if err := u.users.UpdateStatus(ctx, user.ID, domain.UserStatusActive); err != nil {
					return nil, err
				}
				user.Status = domain.UserStatusActive
			case domain.UserStatusActive:
			default:
				metrics.LoginsTotal.WithLabelValues("rejected").Inc()
				return nil, apperror.Authorization(apperror.CodeUserNotActive, "account is "+string(user.Status)).
					WithUserMessage(msgAccountNotActive)
			}

			result, err := u.issueTokens(ctx, user, uuid.NewString())
			if err != nil {
				return nil, err
			}

			now := time.Now()
			if err := u.users.RecordLogin(ctx, user.ID, now); err != nil {
				u.base.logger.WarnContext(ctx, "record login failed", "user_id", user.ID, "error", err)
			}
			user.LastLoginAt = &now

			metrics.LoginsTotal.WithLabelValues("success").Inc()
			return result, nil
		},
	}
	return Run(ctx, u.base, def, nil, input)
}

func (u *AuthUsecase) issueTokens(ctx context.Context, user *domain.User, sessionID string) (*LoginResult, error) {
	access, err := u.manager.GenerateAccessToken(user.ID, user.Email, []string{string(user.Role)}, sessionID)
	if err != nil {
		return nil, err
	}
	refresh, err := u.manager.GenerateRefreshToken(ctx, user.ID, user.Email, sessionID)
	if err != nil {
		return nil, err
	}
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()

	return &LoginResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(u.manager.AccessTTL().Seconds()),
		SessionID:    sessionID,
	}, nil
}

type LogoutInput struct {
	RefreshToken string `json:"refresh_token"`
	All          bool   `json:"all"`
}

// Logout revokes the presented refresh token, or every outstanding one
// when All is set. It is idempotent: an invalid or foreign token is
// simply ignored.
func (u *AuthUsecase) Logout(ctx context.Context, actor *domain.User, input LogoutInput) (struct{}, error) {
	def := Definition[LogoutInput, struct{}]{
		Name: "auth.logout",
		Config: Config{
			RequireAuth: true,
			AuditLog:    true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input LogoutInput) (struct{}, error) {
			if input.All {
				return struct{}{}, u.manager.RevokeAllRefreshTokens(ctx, actor.ID)
			}

			ok, claims := u.manager.VerifyRefreshToken(ctx, input.RefreshToken)
			if !ok || claims.Subject != actor.ID {
				return struct{}{}, nil
			}
			return struct{}{}, u.manager.RevokeRefreshToken(ctx, actor.ID, claims.ID)
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh exchanges a valid refresh token for a fresh pair. The old
// refresh token stays valid until its own expiry or an explicit
// revoke, so a client that lost the response can safely retry.
func (u *AuthUsecase) Refresh(ctx context.Context, input RefreshInput) (*LoginResult, error) {
	def := Definition[RefreshInput, *LoginResult]{
		Name: "auth.refresh",
		Config: Config{
			ValidateInput: true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input RefreshInput) (*LoginResult, error) {
			ok, claims := u.manager.VerifyRefreshToken(ctx, input.RefreshToken)
			if !ok {
				return nil, apperror.Authentication(apperror.CodeTokenInvalid, "refresh token rejected").
					WithUserMessage("Invalid or expired token")
			}

			user, err := u.users.GetByID(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return nil, apperror.Authentication(apperror.CodeTokenInvalid, "token subject no longer exists").
						WithUserMessage("Invalid or expired token")
				}
				return nil, err
			}
			if !user.IsActive() {
				return nil, apperror.Authorization(apperror.CodeUserNotActive, "account is "+string(user.Status)).
					WithUserMessage(msgAccountNotActive)
			}

			return u.issueTokens(ctx, user, claims.SessionID)
		},
	}
	return Run(ctx, u.base, def, nil, input)
}

// Verify returns the authenticated user. The middleware has already
// checked the access token; this endpoint exists so clients can probe
// session validity cheaply.
func (u *AuthUsecase) Verify(ctx context.Context, actor *domain.User) (*domain.User, error) {
	def := Definition[struct{}, *domain.User]{
		Name:   "auth.verify",
		Config: Config{RequireAuth: true},
		Execute: func(ctx context.Context, op *OperationContext, _ struct{}) (*domain.User, error) {
			return actor, nil
		},
	}
	return Run(ctx, u.base, def, actor, struct{}{})
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword always reports the same neutral outcome; whether the
// email exists must not be observable. When it does exist, a reset
// email task is enqueued carrying a fresh single-use token.
func (u *AuthUsecase) ForgotPassword(ctx context.Context, input ForgotPasswordInput) (string, error) {
	def := Definition[ForgotPasswordInput, string]{
		Name: "auth.forgot_password",
		Config: Config{
			ValidateInput: true,
			AuditLog:      true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input ForgotPasswordInput) (string, error) {
			user, err := u.users.GetByEmail(ctx, input.Email)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return msgResetNeutral, nil
				}
				return "", err
			}

			token, err := u.manager.GenerateResetToken(ctx, user.ID, user.Email)
			if err != nil {
				return "", err
			}
			metrics.TokensIssuedTotal.WithLabelValues("reset").Inc()

			if _, err := u.base.queue.Enqueue(ctx, tasks.TaskEmailPasswordReset, tasks.PasswordResetEmailPayload{
				UserID:     user.ID,
				Email:      user.Email,
				FirstName:  user.FirstName,
				ResetToken: token,
			}); err != nil {
				return "", err
			}
			return msgResetNeutral, nil
		},
	}
	return Run(ctx, u.base, def, nil, input)
}

type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// ResetPassword consumes a reset token: the new hash is written, the
// token deleted, and every refresh token revoked so stolen sessions
// die with the old password.
func (u *AuthUsecase) ResetPassword(ctx context.Context, input ResetPasswordInput) (struct{}, error) {
	def := Definition[ResetPasswordInput, struct{}]{
		Name: "auth.reset_password",
		Config: Config{
			ValidateInput: true,
			AuditLog:      true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input ResetPasswordInput) (struct{}, error) {
			ok, claims := u.manager.VerifyResetToken(ctx, input.Token)
			if !ok {
				return struct{}{}, apperror.Authentication(apperror.CodeTokenInvalid, "reset token rejected").
					WithUserMessage("Invalid or expired token")
			}

			hash, err := auth.HashPassword(input.NewPassword)
			if err != nil {
				return struct{}{}, err
			}
			if err := u.users.UpdatePassword(ctx, claims.Subject, hash); err != nil {
				return struct{}{}, err
			}
			if err := u.manager.ConsumeResetToken(ctx, claims.Subject); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, u.manager.RevokeAllRefreshTokens(ctx, claims.Subject)
		},
	}
	return Run(ctx, u.base, def, nil, input)
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// ChangePassword verifies the current password, writes the new hash
// and revokes every refresh token, then hands back a fresh pair so the
// current client stays logged in.
func (u *AuthUsecase) ChangePassword(ctx context.Context, actor *domain.User, input ChangePasswordInput) (*LoginResult, error) {
	def := Definition[ChangePasswordInput, *LoginResult]{
		Name: "auth.change_password",
		Config: Config{
			RequireAuth:   true,
			ValidateInput: true,
			AuditLog:      true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input ChangePasswordInput) (*LoginResult, error) {
			if !auth.CheckPassword(actor.PasswordHash, input.CurrentPassword) {
				return nil, apperror.Authentication(apperror.CodeAuthFailed, "current password mismatch").
					WithUserMessage("Current password is incorrect")
			}

			hash, err := auth.HashPassword(input.NewPassword)
			if err != nil {
				return nil, err
			}
			if err := u.users.UpdatePassword(ctx, actor.ID, hash); err != nil {
				return nil, err
			}
			if err := u.manager.RevokeAllRefreshTokens(ctx, actor.ID); err != nil {
				return nil, err
			}
			return u.issueTokens(ctx, actor, uuid.NewString())
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

type CheckEmailInput struct {
	Email string `json:"email" validate:"required,email"`
}

// CheckEmail reports whether an email is free to register. Used by the
// registration form; intentionally public.
func (u *AuthUsecase) CheckEmail(ctx context.Context, input CheckEmailInput) (bool, error) {
	def := Definition[CheckEmailInput, bool]{
		Name: "auth.check_email",
		Config: Config{
			ValidateInput: true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input CheckEmailInput) (bool, error) {
			_, err := u.users.GetByEmail(ctx, input.Email)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return true, nil
				}
				return false, err
			}
			return false, nil
		},
	}
	return Run(ctx, u.base, def, nil, input)
}
