package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
	TokenReset   TokenType = "reset"
)

// PurposePasswordReset is the only purpose issued on reset tokens.
const PurposePasswordReset = "password_reset"

// Claims is the payload of every token this service signs. The
// registered claims carry sub/jti/iat/exp/iss/aud.
type Claims struct {
	Email     string   `json:"email"`
	TokenType string   `json:"token_type"`
	Roles     []string `json:"roles,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
	Purpose   string   `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *Claims) UserID() string { return c.Subject }

// JTI returns the unique token id claim.
func (c *Claims) JTI() string { return c.ID }
