package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/auth"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/reqctx"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/transport/http/respond"
)

const userKey = "currentUser"

// CurrentUser returns the authenticated user set by Authenticate, or
// nil for anonymous requests.
func CurrentUser(c *gin.Context) *domain.User {
	user, _ := c.Get(userKey)
	actor, _ := user.(*domain.User)
	return actor
}

func tokenUnauthorized() *apperror.Error {
	return apperror.Authentication(apperror.CodeTokenInvalid, "access token rejected").
		WithUserMessage("Invalid or expired token")
}

// Authenticate resolves the caller when a credential is present, from
// the Authorization header or the access_token cookie. Requests
// without a credential continue anonymous; a credential that fails
// verification is rejected even on public routes.
func Authenticate(manager *auth.Manager, users repository.UserRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			c.Next()
			return
		}

		ok, claims := manager.VerifyToken(raw, auth.TokenAccess)
		if !ok {
			respond.Error(c, logger, tokenUnauthorized())
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID())
		if err != nil {
			respond.Error(c, logger, tokenUnauthorized())
			c.Abort()
			return
		}

		c.Set(userKey, user)
		ctx := reqctx.WithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireUser gates routes that make no sense anonymous. Runs after
// Authenticate.
func RequireUser(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			respond.Error(c, logger, apperror.Authentication(apperror.CodeAuthFailed, "authentication required").
				WithUserMessage("Authentication required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
		return cookie
	}
	return ""
}
