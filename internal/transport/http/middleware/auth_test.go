package middleware_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/auth"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/transport/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---- fakes ----

type fakeUserRepo struct {
	getByID func(ctx context.Context, id string) (*domain.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return nil, domain.ErrUserAlreadyExists
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getByID(ctx, id)
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, input repository.ListUsersInput) ([]*domain.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id string, input repository.UpdateUserInput) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return nil
}

func (r *fakeUserRepo) RecordLogin(ctx context.Context, id string, at time.Time) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id string) error                    { return nil }

type memStore struct {
	mu sync.Mutex
	kv map[string]string
}

func newMemStore() *memStore {
	return &memStore{kv: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.kv[key]
	if !ok {
		return "", auth.ErrNotFound
	}
	return val, nil
}

func (s *memStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = value
	return nil
}

func (s *memStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.kv, key)
	}
	return nil
}

func (s *memStore) AddToSet(_ context.Context, _, _ string, _ time.Duration) error { return nil }
func (s *memStore) Members(_ context.Context, _ string) ([]string, error)          { return nil, nil }
func (s *memStore) RemoveFromSet(_ context.Context, _, _ string) error             { return nil }

// ---- helpers ----

func newTestManager(t *testing.T) *auth.Manager {
	t.Helper()
	manager, err := auth.NewManager(auth.Config{
		Secret:        []byte("middleware-test-secret-32-chars!!"),
		Algorithm:     "HS256",
		Issuer:        "church-api-test",
		Audience:      []string{"church-app"},
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		ResetExpiry:   time.Minute,
	}, newMemStore())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

// newEngine mounts Authenticate globally and RequireUser on /protected.
// Handlers echo the resolved user ID so tests can assert on it.
func newEngine(t *testing.T, repo *fakeUserRepo) (*gin.Engine, *auth.Manager) {
	t.Helper()
	manager := newTestManager(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := gin.New()
	r.Use(middleware.Authenticate(manager, repo, logger))
	r.GET("/open", func(c *gin.Context) {
		if user := middleware.CurrentUser(c); user != nil {
			c.String(http.StatusOK, user.ID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/protected", middleware.RequireUser(logger), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.CurrentUser(c).ID)
	})
	return r, manager
}

func activeUser(id string) *domain.User {
	return &domain.User{
		ID:     id,
		Email:  id + "@example.com",
		Role:   domain.RoleMember,
		Status: domain.UserStatusActive,
	}
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("unmarshal error envelope: %v", err)
	}
	return envelope.Error.Code
}

// ---- Authenticate ----

func TestAuthenticate_NoCredential_PassesAnonymous(t *testing.T) {
	r, _ := newEngine(t, &fakeUserRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "anonymous" {
		t.Errorf("body = %q, want anonymous", w.Body.String())
	}
}

func TestAuthenticate_ValidBearer_ResolvesUser(t *testing.T) {
	repo := &fakeUserRepo{
		getByID: func(_ context.Context, id string) (*domain.User, error) {
			return activeUser(id), nil
		},
	}
	r, manager := newEngine(t, repo)

	token, err := manager.GenerateAccessToken("u1", "u1@example.com", []string{"member"}, "s1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "u1" {
		t.Errorf("body = %q, want u1", w.Body.String())
	}
}

func TestAuthenticate_AccessTokenCookie_ResolvesUser(t *testing.T) {
	repo := &fakeUserRepo{
		getByID: func(_ context.Context, id string) (*domain.User, error) {
			return activeUser(id), nil
		},
	}
	r, manager := newEngine(t, repo)

	token, err := manager.GenerateAccessToken("u2", "u2@example.com", []string{"member"}, "s1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	if w.Body.String() != "u2" {
		t.Errorf("body = %q, want u2", w.Body.String())
	}
}

func TestAuthenticate_GarbageToken_Returns401(t *testing.T) {
	r, _ := newEngine(t, &fakeUserRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "TOKEN_INVALID" {
		t.Errorf("code = %q, want TOKEN_INVALID", code)
	}
}

func TestAuthenticate_ExpiredToken_Returns401(t *testing.T) {
	r, _ := newEngine(t, &fakeUserRepo{})

	// Same key material as newTestManager, but tokens are born expired.
	expired, err := auth.NewManager(auth.Config{
		Secret:        []byte("middleware-test-secret-32-chars!!"),
		Algorithm:     "HS256",
		Issuer:        "church-api-test",
		Audience:      []string{"church-app"},
		AccessExpiry:  -time.Minute,
		RefreshExpiry: time.Hour,
		ResetExpiry:   time.Minute,
	}, newMemStore())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, err := expired.GenerateAccessToken("u1", "u1@example.com", []string{"member"}, "s1")
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal error envelope: %v", err)
	}
	if envelope.Error.Message != "Invalid or expired token" {
		t.Errorf("message = %q, want %q", envelope.Error.Message, "Invalid or expired token")
	}
}

func TestAuthenticate_RefreshTokenAsAccess_Returns401(t *testing.T) {
	r, manager := newEngine(t, &fakeUserRepo{})

	token, err := manager.GenerateRefreshToken(context.Background(), "u1", "u1@example.com", "s1")
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthenticate_UserGone_Returns401(t *testing.T) {
	repo := &fakeUserRepo{
		getByID: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	r, manager := newEngine(t, repo)

	token, err := manager.GenerateAccessToken("u1", "u1@example.com", []string{"member"}, "s1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

// ---- RequireUser ----

func TestRequireUser_Anonymous_Returns401(t *testing.T) {
	r, _ := newEngine(t, &fakeUserRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "AUTHENTICATION_FAILED" {
		t.Errorf("code = %q, want AUTHENTICATION_FAILED", code)
	}
}

func TestRequireUser_Authenticated_Passes(t *testing.T) {
	repo := &fakeUserRepo{
		getByID: func(_ context.Context, id string) (*domain.User, error) {
			return activeUser(id), nil
		},
	}
	r, manager := newEngine(t, repo)

	token, err := manager.GenerateAccessToken("u1", "u1@example.com", []string{"member"}, "s1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "u1" {
		t.Errorf("body = %q, want u1", w.Body.String())
	}
}
