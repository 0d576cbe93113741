package auth

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get for absent keys. A missing
// refresh/reset entry means the token was revoked or never issued.
var ErrNotFound = errors.New("token record not found")

// Store is the server-side token state. Refresh and reset tokens are
// only valid while their entry exists; revocation deletes the entry.
// Backed by Redis in production.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error

	// Set operations back the per-user index of active refresh jtis,
	// which makes revoke-all possible.
	AddToSet(ctx context.Context, key, member string, ttl time.Duration) error
	Members(ctx context.Context, key string) ([]string, error)
	RemoveFromSet(ctx context.Context, key, member string) error
}

func refreshKey(userID, jti string) string {
	return "refresh_token:" + userID + ":" + jti
}

func refreshIndexKey(userID string) string {
	return "refresh_tokens:" + userID
}

func resetKey(userID string) string {
	return "reset_token:" + userID
}

// refreshRecord is the JSON stored per refresh token. The full token
// string is kept so verification can require an exact match.
type refreshRecord struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}
