package usecase_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/auth"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/tasks"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/usecase"
)

// ---- fakes ----

type fakeUserRepo struct {
	create         func(ctx context.Context, user *domain.User) (*domain.User, error)
	getByID        func(ctx context.Context, id string) (*domain.User, error)
	getByEmail     func(ctx context.Context, email string) (*domain.User, error)
	listByRole     func(ctx context.Context, role domain.Role) ([]*domain.User, error)
	update         func(ctx context.Context, id string, input repository.UpdateUserInput) (*domain.User, error)
	updateStatus   func(ctx context.Context, id string, status domain.UserStatus) error
	updatePassword func(ctx context.Context, id string, passwordHash string) error
	recordLogin    func(ctx context.Context, id string, at time.Time) error
	delete         func(ctx context.Context, id string) error
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return r.create(ctx, user)
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getByID(ctx, id)
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getByEmail(ctx, email)
}

func (r *fakeUserRepo) List(ctx context.Context, input repository.ListUsersInput) ([]*domain.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return r.listByRole(ctx, role)
}

func (r *fakeUserRepo) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id string, input repository.UpdateUserInput) (*domain.User, error) {
	return r.update(ctx, id, input)
}

func (r *fakeUserRepo) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	return r.updateStatus(ctx, id, status)
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.updatePassword(ctx, id, passwordHash)
}

func (r *fakeUserRepo) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return r.recordLogin(ctx, id, at)
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, id)
}

// memStore is an in-memory auth.Store standing in for Redis.
type memStore struct {
	mu   sync.Mutex
	kv   map[string]string
	sets map[string]map[string]struct{}
}

func newMemStore() *memStore {
	return &memStore{kv: make(map[string]string), sets: make(map[string]map[string]struct{})}
}

func (s *memStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.kv[key]
	if !ok {
		return "", auth.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = value
	return nil
}

func (s *memStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.kv, k)
		delete(s.sets, k)
	}
	return nil
}

func (s *memStore) AddToSet(ctx context.Context, key, member string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sets[key] == nil {
		s.sets[key] = make(map[string]struct{})
	}
	s.sets[key][member] = struct{}{}
	return nil
}

func (s *memStore) Members(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for m := range s.sets[key] {
		out = append(out, m)
	}
	return out, nil
}

func (s *memStore) RemoveFromSet(ctx context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sets[key] != nil {
		delete(s.sets[key], member)
	}
	return nil
}

// ---- helpers ----

func newTestManager(t *testing.T) *auth.Manager {
	t.Helper()
	manager, err := auth.NewManager(auth.Config{
		Secret:        []byte("test-signing-secret-32-bytes-long!"),
		Algorithm:     "HS256",
		Issuer:        "church-api-test",
		Audience:      []string{"church-app"},
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		ResetExpiry:   30 * time.Minute,
	}, newMemStore())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func newAuthUsecase(t *testing.T, repo *fakeUserRepo) (*usecase.AuthUsecase, *fakeQueue, *auth.Manager) {
	t.Helper()
	base, _, queue := newTestBase()
	manager := newTestManager(t)
	return usecase.NewAuthUsecase(base, repo, manager), queue, manager
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

// ---- Register ----

func TestRegister_CreatesPendingMemberAndQueuesWelcome(t *testing.T) {
	var created *domain.User
	repo := &fakeUserRepo{
		create: func(_ context.Context, user *domain.User) (*domain.User, error) {
			user.ID = "u-new"
			created = user
			return user, nil
		},
	}
	uc, queue, _ := newAuthUsecase(t, repo)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:     "grace@example.com",
		Password:  "correct-horse-9",
		FirstName: "Grace",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Status != domain.UserStatusPending {
		t.Errorf("status = %q, want pending", created.Status)
	}
	if created.Role != domain.RoleMember {
		t.Errorf("role = %q, want member", created.Role)
	}
	if created.PasswordHash == "correct-horse-9" {
		t.Error("password stored in clear")
	}

	welcomes := queue.named(tasks.TaskEmailWelcome)
	if len(welcomes) != 1 {
		t.Fatalf("welcome tasks = %d, want 1", len(welcomes))
	}
}

func TestRegister_DuplicateEmail_IsConflict(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, _ *domain.User) (*domain.User, error) {
			return nil, domain.ErrUserAlreadyExists
		},
	}
	uc, _, _ := newAuthUsecase(t, repo)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:     "grace@example.com",
		Password:  "correct-horse-9",
		FirstName: "Grace",
	})
	appErr := wantKind(t, err, apperror.KindConflict)
	if appErr.Code != apperror.CodeUserAlreadyExists {
		t.Errorf("code = %q, want %q", appErr.Code, apperror.CodeUserAlreadyExists)
	}
}

func TestRegister_ShortPassword_FailsValidation(t *testing.T) {
	uc, _, _ := newAuthUsecase(t, &fakeUserRepo{})

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:     "grace@example.com",
		Password:  "short",
		FirstName: "Grace",
	})
	appErr := wantKind(t, err, apperror.KindValidation)
	fields := appErr.Details["field_errors"].(map[string]string)
	if _, ok := fields["password"]; !ok {
		t.Errorf("field_errors missing password: %v", fields)
	}
}

// ---- Login ----

func TestLogin_EmptyCredentials_ReportsBothFields(t *testing.T) {
	uc, _, _ := newAuthUsecase(t, &fakeUserRepo{})

	_, err := uc.Login(context.Background(), usecase.LoginInput{})
	appErr := wantKind(t, err, apperror.KindValidation)
	if appErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", appErr.Status, http.StatusBadRequest)
	}
	fieldErrors, ok := appErr.Details["field_errors"].(map[string]string)
	if !ok {
		t.Fatalf("details.field_errors missing or wrong type: %#v", appErr.Details)
	}
	for _, field := range []string{"email", "password"} {
		if _, present := fieldErrors[field]; !present {
			t.Errorf("field_errors has no entry for %q", field)
		}
	}
}

func TestLogin_UnknownEmailAndWrongPassword_Indistinguishable(t *testing.T) {
	hash := hashOf(t, "right-password-1")
	known := &domain.User{
		ID: "u1", Email: "known@example.com", PasswordHash: hash,
		Role: domain.RoleMember, Status: domain.UserStatusActive,
	}
	repo := &fakeUserRepo{
		getByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email == known.Email {
				return known, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}
	uc, _, _ := newAuthUsecase(t, repo)

	_, errUnknown := uc.Login(context.Background(), usecase.LoginInput{
		Email: "nobody@example.com", Password: "whatever-123",
	})
	_, errWrong := uc.Login(context.Background(), usecase.LoginInput{
		Email: known.Email, Password: "wrong-password-1",
	})

	appUnknown := wantKind(t, errUnknown, apperror.KindAuthentication)
	appWrong := wantKind(t, errWrong, apperror.KindAuthentication)
	if appUnknown.UserMessage != appWrong.UserMessage {
		t.Errorf("messages differ: %q vs %q", appUnknown.UserMessage, appWrong.UserMessage)
	}
	if appUnknown.Code != apperror.CodeAuthFailed || appWrong.Code != apperror.CodeAuthFailed {
		t.Errorf("codes = %q / %q, want %q", appUnknown.Code, appWrong.Code, apperror.CodeAuthFailed)
	}
}

func TestLogin_FirstLoginActivatesPendingAccount(t *testing.T) {
	hash := hashOf(t, "right-password-1")
	user := &domain.User{
		ID: "u1", Email: "new@example.com", PasswordHash: hash,
		Role: domain.RoleMember, Status: domain.UserStatusPending,
	}
	var statusSet domain.UserStatus
	repo := &fakeUserRepo{
		getByEmail: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
		updateStatus: func(_ context.Context, id string, status domain.UserStatus) error {
			statusSet = status
			return nil
		},
		recordLogin: func(_ context.Context, _ string, _ time.Time) error { return nil },
	}
	uc, _, _ := newAuthUsecase(t, repo)

	result, err := uc.Login(context.Background(), usecase.LoginInput{
		Email: user.Email, Password: "right-password-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statusSet != domain.UserStatusActive {
		t.Errorf("status written = %q, want active", statusSet)
	}
	if result.User.Status != domain.UserStatusActive {
		t.Errorf("returned status = %q, want active", result.User.Status)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("token pair not issued")
	}
}

func TestLogin_SuspendedAccount_IsRejected(t *testing.T) {
	hash := hashOf(t, "right-password-1")
	user := &domain.User{
		ID: "u1", Email: "banned@example.com", PasswordHash: hash,
		Role: domain.RoleMember, Status: domain.UserStatusSuspended,
	}
	repo := &fakeUserRepo{
		getByEmail: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
	}
	uc, _, _ := newAuthUsecase(t, repo)

	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email: user.Email, Password: "right-password-1",
	})
	appErr := wantKind(t, err, apperror.KindAuthorization)
	if appErr.Code != apperror.CodeUserNotActive {
		t.Errorf("code = %q, want %q", appErr.Code, apperror.CodeUserNotActive)
	}
}

func TestLogin_IssuedRefreshTokenVerifies(t *testing.T) {
	hash := hashOf(t, "right-password-1")
	user := &domain.User{
		ID: "u1", Email: "a@example.com", PasswordHash: hash,
		Role: domain.RoleMember, Status: domain.UserStatusActive,
	}
	repo := &fakeUserRepo{
		getByEmail:  func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
		recordLogin: func(_ context.Context, _ string, _ time.Time) error { return nil },
	}
	uc, _, manager := newAuthUsecase(t, repo)

	result, err := uc.Login(context.Background(), usecase.LoginInput{
		Email: user.Email, Password: "right-password-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, claims := manager.VerifyRefreshToken(context.Background(), result.RefreshToken)
	if !ok {
		t.Fatal("freshly issued refresh token does not verify")
	}
	if claims.Subject != user.ID {
		t.Errorf("subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.SessionID != result.SessionID {
		t.Errorf("session id = %q, want %q", claims.SessionID, result.SessionID)
	}
}

// ---- Logout / Refresh ----

func TestLogoutAll_KillsOutstandingRefreshTokens(t *testing.T) {
	hash := hashOf(t, "right-password-1")
	user := &domain.User{
		ID: "u1", Email: "a@example.com", PasswordHash: hash,
		Role: domain.RoleMember, Status: domain.UserStatusActive,
	}
	repo := &fakeUserRepo{
		getByEmail:  func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
		recordLogin: func(_ context.Context, _ string, _ time.Time) error { return nil },
	}
	uc, _, manager := newAuthUsecase(t, repo)

	first, err := uc.Login(context.Background(), usecase.LoginInput{Email: user.Email, Password: "right-password-1"})
	if err != nil {
		t.Fatalf("login 1: %v", err)
	}
	second, err := uc.Login(context.Background(), usecase.LoginInput{Email: user.Email, Password: "right-password-1"})
	if err != nil {
		t.Fatalf("login 2: %v", err)
	}

	if _, err := uc.Logout(context.Background(), user, usecase.LogoutInput{All: true}); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if ok, _ := manager.VerifyRefreshToken(context.Background(), first.RefreshToken); ok {
		t.Error("first session survived logout all")
	}
	if ok, _ := manager.VerifyRefreshToken(context.Background(), second.RefreshToken); ok {
		t.Error("second session survived logout all")
	}
}

func TestRefresh_RevokedToken_IsRejected(t *testing.T) {
	hash := hashOf(t, "right-password-1")
	user := &domain.User{
		ID: "u1", Email: "a@example.com", PasswordHash: hash,
		Role: domain.RoleMember, Status: domain.UserStatusActive,
	}
	repo := &fakeUserRepo{
		getByEmail:  func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
		getByID:     func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
		recordLogin: func(_ context.Context, _ string, _ time.Time) error { return nil },
	}
	uc, _, _ := newAuthUsecase(t, repo)

	result, err := uc.Login(context.Background(), usecase.LoginInput{Email: user.Email, Password: "right-password-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Refresh works while the token is live.
	fresh, err := uc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: result.RefreshToken})
	if err != nil {
		t.Fatalf("refresh before revoke: %v", err)
	}
	if fresh.SessionID != result.SessionID {
		t.Errorf("refresh changed session id: %q -> %q", result.SessionID, fresh.SessionID)
	}

	if _, err := uc.Logout(context.Background(), user, usecase.LogoutInput{All: true}); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err = uc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: result.RefreshToken})
	appErr := wantKind(t, err, apperror.KindAuthentication)
	if appErr.Code != apperror.CodeTokenInvalid {
		t.Errorf("code = %q, want %q", appErr.Code, apperror.CodeTokenInvalid)
	}
}

// ---- ForgotPassword / ResetPassword ----

func TestForgotPassword_UnknownEmail_NeutralAndSilent(t *testing.T) {
	repo := &fakeUserRepo{
		getByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	uc, queue, _ := newAuthUsecase(t, repo)

	msg, err := uc.ForgotPassword(context.Background(), usecase.ForgotPasswordInput{Email: "ghost@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg == "" {
		t.Error("neutral message missing")
	}
	if n := len(queue.named(tasks.TaskEmailPasswordReset)); n != 0 {
		t.Errorf("reset emails queued for unknown address = %d, want 0", n)
	}
}

func TestForgotPassword_KnownEmailMatchesUnknownMessage(t *testing.T) {
	user := &domain.User{ID: "u1", Email: "a@example.com", FirstName: "A",
		Role: domain.RoleMember, Status: domain.UserStatusActive}
	repo := &fakeUserRepo{
		getByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}
	uc, queue, _ := newAuthUsecase(t, repo)

	knownMsg, err := uc.ForgotPassword(context.Background(), usecase.ForgotPasswordInput{Email: user.Email})
	if err != nil {
		t.Fatalf("known email: %v", err)
	}
	unknownMsg, err := uc.ForgotPassword(context.Background(), usecase.ForgotPasswordInput{Email: "ghost@example.com"})
	if err != nil {
		t.Fatalf("unknown email: %v", err)
	}

	if knownMsg != unknownMsg {
		t.Errorf("responses reveal account existence: %q vs %q", knownMsg, unknownMsg)
	}
	if n := len(queue.named(tasks.TaskEmailPasswordReset)); n != 1 {
		t.Errorf("reset emails queued = %d, want 1", n)
	}
}

func TestResetPassword_ConsumesTokenAndRevokesSessions(t *testing.T) {
	hash := hashOf(t, "old-password-1")
	user := &domain.User{
		ID: "u1", Email: "a@example.com", FirstName: "A", PasswordHash: hash,
		Role: domain.RoleMember, Status: domain.UserStatusActive,
	}
	var newHash string
	repo := &fakeUserRepo{
		getByEmail:  func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
		recordLogin: func(_ context.Context, _ string, _ time.Time) error { return nil },
		updatePassword: func(_ context.Context, _ string, passwordHash string) error {
			newHash = passwordHash
			return nil
		},
	}
	uc, queue, manager := newAuthUsecase(t, repo)

	// Establish a session that the reset must kill.
	session, err := uc.Login(context.Background(), usecase.LoginInput{Email: user.Email, Password: "old-password-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := uc.ForgotPassword(context.Background(), usecase.ForgotPasswordInput{Email: user.Email}); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	resets := queue.named(tasks.TaskEmailPasswordReset)
	if len(resets) != 1 {
		t.Fatalf("reset emails queued = %d, want 1", len(resets))
	}
	token := resets[0].payload.(tasks.PasswordResetEmailPayload).ResetToken

	if _, err := uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		Token: token, NewPassword: "brand-new-pass-1",
	}); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if !auth.CheckPassword(newHash, "brand-new-pass-1") {
		t.Error("stored hash does not match the new password")
	}
	if ok, _ := manager.VerifyRefreshToken(context.Background(), session.RefreshToken); ok {
		t.Error("old session survived the password reset")
	}

	// Second use of the same token must fail.
	_, err = uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		Token: token, NewPassword: "another-pass-12",
	})
	wantKind(t, err, apperror.KindAuthentication)
}

// ---- ChangePassword ----

func TestChangePassword_WrongCurrent_IsRejected(t *testing.T) {
	hash := hashOf(t, "current-pass-12")
	user := &domain.User{
		ID: "u1", Email: "a@example.com", PasswordHash: hash,
		Role: domain.RoleMember, Status: domain.UserStatusActive,
	}
	uc, _, _ := newAuthUsecase(t, &fakeUserRepo{})

	_, err := uc.ChangePassword(context.Background(), user, usecase.ChangePasswordInput{
		CurrentPassword: "not-the-current",
		NewPassword:     "brand-new-pass-1",
	})
	appErr := wantKind(t, err, apperror.KindAuthentication)
	if appErr.Code != apperror.CodeAuthFailed {
		t.Errorf("code = %q, want %q", appErr.Code, apperror.CodeAuthFailed)
	}
}

func TestChangePassword_IssuesFreshSession(t *testing.T) {
	hash := hashOf(t, "current-pass-12")
	user := &domain.User{
		ID: "u1", Email: "a@example.com", PasswordHash: hash,
		Role: domain.RoleMember, Status: domain.UserStatusActive,
	}
	repo := &fakeUserRepo{
		updatePassword: func(_ context.Context, _ string, _ string) error { return nil },
	}
	uc, _, manager := newAuthUsecase(t, repo)

	result, err := uc.ChangePassword(context.Background(), user, usecase.ChangePasswordInput{
		CurrentPassword: "current-pass-12",
		NewPassword:     "brand-new-pass-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := manager.VerifyRefreshToken(context.Background(), result.RefreshToken); !ok {
		t.Error("fresh refresh token does not verify")
	}
}
