// Package auth issues and verifies the three token types this service
// uses: short-lived access tokens, long-lived refresh tokens, and
// single-use password reset tokens. Access tokens are self-contained;
// refresh and reset tokens are additionally anchored in a server-side
// store so they can be revoked before expiry.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config holds signing material and lifetimes. Symmetric algorithms
// require a non-empty secret; Load validates that before this is built.
type Config struct {
	Secret        []byte
	Algorithm     string
	Issuer        string
	Audience      []string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	ResetExpiry   time.Duration
}

type Manager struct {
	cfg   Config
	store Store
	now   func() time.Time
}

func NewManager(cfg Config, store Store) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: empty signing secret")
	}
	if method := signingMethod(cfg.Algorithm); method == nil {
		return nil, fmt.Errorf("auth: unsupported algorithm %q", cfg.Algorithm)
	}
	return &Manager{cfg: cfg, store: store, now: time.Now}, nil
}

// AccessTTL is the configured access token lifetime, exposed so
// login responses can tell clients when to refresh.
func (m *Manager) AccessTTL() time.Duration {
	return m.cfg.AccessExpiry
}

func signingMethod(alg string) jwt.SigningMethod {
	switch alg {
	case "HS256":
		return jwt.SigningMethodHS256
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	}
	return nil
}

func (m *Manager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(signingMethod(m.cfg.Algorithm), claims)
	signed, err := token.SignedString(m.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) baseClaims(userID, email string, typ TokenType, ttl time.Duration) *Claims {
	now := m.now()
	return &Claims{
		Email:     email,
		TokenType: string(typ),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			Issuer:    m.cfg.Issuer,
			Audience:  jwt.ClaimStrings(m.cfg.Audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// GenerateAccessToken signs a self-contained access token. No store
// write: access tokens live only as long as their exp claim.
func (m *Manager) GenerateAccessToken(userID, email string, roles []string, sessionID string) (string, error) {
	claims := m.baseClaims(userID, email, TokenAccess, m.cfg.AccessExpiry)
	claims.Roles = roles
	claims.SessionID = sessionID
	return m.sign(claims)
}

// GenerateRefreshToken signs a refresh token and records it in the
// store under refresh_token:{user_id}:{jti}, plus the per-user jti
// index that RevokeAllRefreshTokens walks.
func (m *Manager) GenerateRefreshToken(ctx context.Context, userID, email, sessionID string) (string, error) {
	claims := m.baseClaims(userID, email, TokenRefresh, m.cfg.RefreshExpiry)
	claims.SessionID = sessionID

	signed, err := m.sign(claims)
	if err != nil {
		return "", err
	}

	record, err := json.Marshal(refreshRecord{
		Token:     signed,
		UserID:    userID,
		SessionID: sessionID,
		CreatedAt: m.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal refresh record: %w", err)
	}

	if err := m.store.Set(ctx, refreshKey(userID, claims.ID), string(record), m.cfg.RefreshExpiry); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	if err := m.store.AddToSet(ctx, refreshIndexKey(userID), claims.ID, m.cfg.RefreshExpiry); err != nil {
		return "", fmt.Errorf("index refresh token: %w", err)
	}
	return signed, nil
}

// GenerateResetToken signs a password reset token and stores it under
// reset_token:{user_id}. One outstanding reset token per user:
// regenerating overwrites the previous one.
func (m *Manager) GenerateResetToken(ctx context.Context, userID, email string) (string, error) {
	claims := m.baseClaims(userID, email, TokenReset, m.cfg.ResetExpiry)
	claims.Purpose = PurposePasswordReset

	signed, err := m.sign(claims)
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, resetKey(userID), signed, m.cfg.ResetExpiry); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature, issuer, audience, expiry, and token
// type. It fails closed: any problem yields (false, nil), never an
// error. Callers must not distinguish failure causes.
func (m *Manager) VerifyToken(tokenString string, want TokenType) (bool, *Claims) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.cfg.Secret, nil
	},
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return false, nil
	}
	if claims.TokenType != string(want) {
		return false, nil
	}
	if !m.audienceAllowed(claims.Audience) {
		return false, nil
	}
	return true, claims
}

func (m *Manager) audienceAllowed(aud jwt.ClaimStrings) bool {
	for _, want := range m.cfg.Audience {
		for _, got := range aud {
			if got == want {
				return true
			}
		}
	}
	return false
}

// DecodeToken parses claims without verifying the signature. For
// inspecting metadata only; never use the result for trust decisions.
func (m *Manager) DecodeToken(tokenString string) *Claims {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

// VerifyRefreshToken verifies the JWT and then requires the exact
// token string to still be present in the store for that user+jti.
// A revoked token passes the signature check but fails here.
func (m *Manager) VerifyRefreshToken(ctx context.Context, tokenString string) (bool, *Claims) {
	ok, claims := m.VerifyToken(tokenString, TokenRefresh)
	if !ok {
		return false, nil
	}

	raw, err := m.store.Get(ctx, refreshKey(claims.Subject, claims.ID))
	if err != nil {
		return false, nil
	}
	var record refreshRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return false, nil
	}
	if record.Token != tokenString {
		return false, nil
	}
	return true, claims
}

// VerifyResetToken verifies the JWT, its purpose, and the exact match
// against the stored reset token.
func (m *Manager) VerifyResetToken(ctx context.Context, tokenString string) (bool, *Claims) {
	ok, claims := m.VerifyToken(tokenString, TokenReset)
	if !ok || claims.Purpose != PurposePasswordReset {
		return false, nil
	}

	stored, err := m.store.Get(ctx, resetKey(claims.Subject))
	if err != nil {
		return false, nil
	}
	if stored != tokenString {
		return false, nil
	}
	return true, claims
}

// RevokeRefreshToken deletes one refresh token's store entry and its
// index membership. The JWT itself is untouched; it simply stops
// verifying.
func (m *Manager) RevokeRefreshToken(ctx context.Context, userID, jti string) error {
	if err := m.store.Del(ctx, refreshKey(userID, jti)); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if err := m.store.RemoveFromSet(ctx, refreshIndexKey(userID), jti); err != nil {
		return fmt.Errorf("unindex refresh token: %w", err)
	}
	return nil
}

// RevokeAllRefreshTokens walks the per-user jti index and deletes
// every outstanding refresh token, then the index itself.
func (m *Manager) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	jtis, err := m.store.Members(ctx, refreshIndexKey(userID))
	if err != nil {
		return fmt.Errorf("list refresh tokens: %w", err)
	}
	if len(jtis) > 0 {
		keys := make([]string, len(jtis))
		for i, jti := range jtis {
			keys[i] = refreshKey(userID, jti)
		}
		if err := m.store.Del(ctx, keys...); err != nil {
			return fmt.Errorf("revoke refresh tokens: %w", err)
		}
	}
	if err := m.store.Del(ctx, refreshIndexKey(userID)); err != nil {
		return fmt.Errorf("drop refresh index: %w", err)
	}
	return nil
}

// ConsumeResetToken deletes the stored reset token so it cannot be
// replayed after a successful password reset.
func (m *Manager) ConsumeResetToken(ctx context.Context, userID string) error {
	if err := m.store.Del(ctx, resetKey(userID)); err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	return nil
}
