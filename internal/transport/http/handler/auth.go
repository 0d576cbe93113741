package handler

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/transport/http/middleware"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/transport/http/respond"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/usecase"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginResult, error)
	Logout(ctx context.Context, actor *domain.User, input usecase.LogoutInput) (struct{}, error)
	Refresh(ctx context.Context, input usecase.RefreshInput) (*usecase.LoginResult, error)
	Verify(ctx context.Context, actor *domain.User) (*domain.User, error)
	ForgotPassword(ctx context.Context, input usecase.ForgotPasswordInput) (string, error)
	ResetPassword(ctx context.Context, input usecase.ResetPasswordInput) (struct{}, error)
	ChangePassword(ctx context.Context, actor *domain.User, input usecase.ChangePasswordInput) (*usecase.LoginResult, error)
	CheckEmail(ctx context.Context, input usecase.CheckEmailInput) (bool, error)
}

type AuthHandler struct {
	uc           authUsecaser
	logger       *slog.Logger
	cookieSecure bool
}

func NewAuthHandler(uc authUsecaser, logger *slog.Logger, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		uc:           uc,
		logger:       logger.With("component", "auth_handler"),
		cookieSecure: cookieSecure,
	}
}

type tokenResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	SessionID    string       `json:"session_id"`
}

func (h *AuthHandler) toTokenResponse(c *gin.Context, result *usecase.LoginResult) tokenResponse {
	h.setSessionCookies(c, result)
	return tokenResponse{
		User:         toUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    result.ExpiresIn,
		SessionID:    result.SessionID,
	}
}

// setSessionCookies mirrors the token pair into HTTP-only cookies so
// browser clients need not keep tokens in script-reachable storage.
func (h *AuthHandler) setSessionCookies(c *gin.Context, result *usecase.LoginResult) {
	c.SetCookie("access_token", result.AccessToken, int(result.ExpiresIn), "/", "", h.cookieSecure, true)
	c.SetCookie("refresh_token", result.RefreshToken, int(result.ExpiresIn)*4, "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", h.cookieSecure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", h.cookieSecure, true)
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input usecase.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	user, err := h.uc.Register(c.Request.Context(), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.Created(c, "Registration successful", gin.H{"user": toUserResponse(user)})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input usecase.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	result, err := h.uc.Login(c.Request.Context(), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Login successful", h.toTokenResponse(c, result))
}

// POST /auth/logout
// The body is optional; without one the refresh token is taken from
// its cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	var input usecase.LogoutInput
	_ = c.ShouldBindJSON(&input)
	if input.RefreshToken == "" {
		if cookie, err := c.Cookie("refresh_token"); err == nil {
			input.RefreshToken = cookie
		}
	}

	if _, err := h.uc.Logout(c.Request.Context(), middleware.CurrentUser(c), input); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	h.clearSessionCookies(c)
	respond.OK(c, "Logged out", nil)
}

// POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var input usecase.RefreshInput
	_ = c.ShouldBindJSON(&input)
	if input.RefreshToken == "" {
		if cookie, err := c.Cookie("refresh_token"); err == nil {
			input.RefreshToken = cookie
		}
	}

	result, err := h.uc.Refresh(c.Request.Context(), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Token refreshed", h.toTokenResponse(c, result))
}

// GET /auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	user, err := h.uc.Verify(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Token is valid", gin.H{"user": toUserResponse(user)})
}

// POST /auth/forgot-password
// The response is identical whether or not the email exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var input usecase.ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	message, err := h.uc.ForgotPassword(c.Request.Context(), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, message, nil)
}

// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var input usecase.ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	if _, err := h.uc.ResetPassword(c.Request.Context(), input); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Password has been reset, please log in again", nil)
}

// POST /auth/change-password
// A successful change revokes every session; the response carries the
// one fresh token pair that survives.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var input usecase.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	result, err := h.uc.ChangePassword(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Password changed", h.toTokenResponse(c, result))
}

// POST /auth/check-email
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var input usecase.CheckEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	available, err := h.uc.CheckEmail(c.Request.Context(), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Email availability checked", gin.H{"available": available})
}
