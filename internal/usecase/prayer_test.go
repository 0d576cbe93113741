package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/usecase"
)

// ---- fakes ----

type fakePrayerRepo struct {
	create         func(ctx context.Context, prayer *domain.Prayer) (*domain.Prayer, error)
	getByID        func(ctx context.Context, id string) (*domain.Prayer, error)
	list           func(ctx context.Context, input repository.ListPrayersInput) ([]*domain.Prayer, error)
	incrementCount func(ctx context.Context, id string) (int, error)
	markAnswered   func(ctx context.Context, id string, answeredAt time.Time, testimony *string) error
}

func (r *fakePrayerRepo) Create(ctx context.Context, prayer *domain.Prayer) (*domain.Prayer, error) {
	return r.create(ctx, prayer)
}

func (r *fakePrayerRepo) GetByID(ctx context.Context, id string) (*domain.Prayer, error) {
	return r.getByID(ctx, id)
}

func (r *fakePrayerRepo) List(ctx context.Context, input repository.ListPrayersInput) ([]*domain.Prayer, error) {
	return r.list(ctx, input)
}

func (r *fakePrayerRepo) Update(ctx context.Context, id string, input repository.UpdatePrayerInput) (*domain.Prayer, error) {
	return nil, domain.ErrPrayerNotFound
}

func (r *fakePrayerRepo) Delete(ctx context.Context, id string) error { return nil }

func (r *fakePrayerRepo) IncrementPrayerCount(ctx context.Context, id string) (int, error) {
	return r.incrementCount(ctx, id)
}

func (r *fakePrayerRepo) MarkAnswered(ctx context.Context, id string, answeredAt time.Time, testimony *string) error {
	return r.markAnswered(ctx, id, answeredAt, testimony)
}

func (r *fakePrayerRepo) ArchiveAnswered(ctx context.Context, before time.Time) (int, error) {
	return 0, nil
}

// ---- helpers ----

func prayerWithPrivacy(privacy domain.PrayerPrivacy) *domain.Prayer {
	return &domain.Prayer{
		ID:          "p1",
		RequesterID: "owner-1",
		Title:       "For healing",
		Body:        "Please pray",
		Category:    domain.PrayerHealing,
		Privacy:     privacy,
		Status:      domain.PrayerOpen,
	}
}

func newPrayerUsecase(repo *fakePrayerRepo) *usecase.PrayerUsecase {
	base, _, _ := newTestBase()
	return usecase.NewPrayerUsecase(base, repo)
}

// ---- Create ----

func TestCreatePrayer_DefaultsToCongregation(t *testing.T) {
	var created *domain.Prayer
	repo := &fakePrayerRepo{
		create: func(_ context.Context, prayer *domain.Prayer) (*domain.Prayer, error) {
			prayer.ID = "p1"
			created = prayer
			return prayer, nil
		},
	}
	uc := newPrayerUsecase(repo)

	_, err := uc.Create(context.Background(), activeUser("u1", domain.RoleMember), usecase.CreatePrayerInput{
		Title:    "For healing",
		Body:     "Please pray",
		Category: domain.PrayerHealing,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Privacy != domain.PrivacyCongregation {
		t.Errorf("privacy = %q, want congregation", created.Privacy)
	}
	if created.Status != domain.PrayerOpen {
		t.Errorf("status = %q, want open", created.Status)
	}
	if created.RequesterID != "u1" {
		t.Errorf("requester = %q, want u1", created.RequesterID)
	}
}

func TestCreatePrayer_VisitorLacksPermission(t *testing.T) {
	uc := newPrayerUsecase(&fakePrayerRepo{})

	_, err := uc.Create(context.Background(), activeUser("v1", domain.RoleVisitor), usecase.CreatePrayerInput{
		Title:    "For guidance",
		Body:     "Please pray",
		Category: domain.PrayerGuidance,
	})
	wantKind(t, err, apperror.KindAuthorization)
}

// ---- GetByID / privacy ladder ----

func TestGetPrayer_PrivacyLadder(t *testing.T) {
	anon := (*domain.User)(nil)
	member := activeUser("u1", domain.RoleMember)
	leader := activeUser("l1", domain.RoleMinistryLeader)
	owner := activeUser("owner-1", domain.RoleMember)

	cases := []struct {
		name    string
		privacy domain.PrayerPrivacy
		viewer  *domain.User
		visible bool
	}{
		{"public visible to anonymous", domain.PrivacyPublic, anon, true},
		{"congregation hidden from anonymous", domain.PrivacyCongregation, anon, false},
		{"congregation visible to member", domain.PrivacyCongregation, member, true},
		{"leaders_only hidden from member", domain.PrivacyLeadersOnly, member, false},
		{"leaders_only visible to leader", domain.PrivacyLeadersOnly, leader, true},
		{"private hidden from member", domain.PrivacyPrivate, member, false},
		{"private visible to leader", domain.PrivacyPrivate, leader, true},
		{"private visible to its requester", domain.PrivacyPrivate, owner, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prayer := prayerWithPrivacy(tc.privacy)
			repo := &fakePrayerRepo{
				getByID: func(_ context.Context, _ string) (*domain.Prayer, error) { return prayer, nil },
			}
			uc := newPrayerUsecase(repo)

			got, err := uc.GetByID(context.Background(), tc.viewer, prayer.ID)
			if tc.visible {
				if err != nil {
					t.Fatalf("expected visible, got %v", err)
				}
				if got.ID != prayer.ID {
					t.Errorf("got %q, want %q", got.ID, prayer.ID)
				}
				return
			}
			// Invisible requests read as absent, never as forbidden.
			appErr := wantKind(t, err, apperror.KindNotFound)
			if appErr.Code != apperror.CodePrayerNotFound {
				t.Errorf("code = %q, want %q", appErr.Code, apperror.CodePrayerNotFound)
			}
		})
	}
}

// ---- List ----

func TestListPrayers_MemberScope(t *testing.T) {
	var seen repository.ListPrayersInput
	repo := &fakePrayerRepo{
		list: func(_ context.Context, input repository.ListPrayersInput) ([]*domain.Prayer, error) {
			seen = input
			return nil, nil
		},
	}
	uc := newPrayerUsecase(repo)

	member := activeUser("u1", domain.RoleMember)
	if _, err := uc.List(context.Background(), member, usecase.ListPrayersInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seen.OwnerID != member.ID {
		t.Errorf("owner id = %q, want %q", seen.OwnerID, member.ID)
	}
	want := map[domain.PrayerPrivacy]bool{domain.PrivacyPublic: true, domain.PrivacyCongregation: true}
	if len(seen.Privacies) != len(want) {
		t.Fatalf("privacies = %v, want public+congregation", seen.Privacies)
	}
	for _, p := range seen.Privacies {
		if !want[p] {
			t.Errorf("unexpected privacy %q in member scope", p)
		}
	}
}

func TestListPrayers_AnonymousSeesPublicOnly(t *testing.T) {
	var seen repository.ListPrayersInput
	repo := &fakePrayerRepo{
		list: func(_ context.Context, input repository.ListPrayersInput) ([]*domain.Prayer, error) {
			seen = input
			return nil, nil
		},
	}
	uc := newPrayerUsecase(repo)

	if _, err := uc.List(context.Background(), nil, usecase.ListPrayersInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen.Privacies) != 1 || seen.Privacies[0] != domain.PrivacyPublic {
		t.Errorf("privacies = %v, want [public]", seen.Privacies)
	}
	if seen.OwnerID != "" {
		t.Errorf("owner id = %q, want empty", seen.OwnerID)
	}
}

// ---- Pray ----

func TestPray_IncrementsAndReturnsCount(t *testing.T) {
	prayer := prayerWithPrivacy(domain.PrivacyCongregation)
	repo := &fakePrayerRepo{
		getByID:        func(_ context.Context, _ string) (*domain.Prayer, error) { return prayer, nil },
		incrementCount: func(_ context.Context, _ string) (int, error) { return 8, nil },
	}
	uc := newPrayerUsecase(repo)

	count, err := uc.Pray(context.Background(), activeUser("u1", domain.RoleMember), prayer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 8 {
		t.Errorf("count = %d, want 8", count)
	}
}

func TestPray_InvisibleRequest_ReadsAsAbsent(t *testing.T) {
	prayer := prayerWithPrivacy(domain.PrivacyLeadersOnly)
	repo := &fakePrayerRepo{
		getByID: func(_ context.Context, _ string) (*domain.Prayer, error) { return prayer, nil },
		incrementCount: func(_ context.Context, _ string) (int, error) {
			t.Error("counter bumped for an invisible request")
			return 0, nil
		},
	}
	uc := newPrayerUsecase(repo)

	_, err := uc.Pray(context.Background(), activeUser("u1", domain.RoleMember), prayer.ID)
	wantKind(t, err, apperror.KindNotFound)
}

// ---- Answer ----

func TestAnswer_OwnerWithoutPermission_Allowed(t *testing.T) {
	prayer := prayerWithPrivacy(domain.PrivacyPrivate)
	answered := false
	repo := &fakePrayerRepo{
		getByID: func(_ context.Context, _ string) (*domain.Prayer, error) { return prayer, nil },
		markAnswered: func(_ context.Context, _ string, _ time.Time, testimony *string) error {
			answered = true
			if testimony == nil || *testimony != "He provided" {
				t.Errorf("testimony = %v", testimony)
			}
			return nil
		},
	}
	uc := newPrayerUsecase(repo)

	testimony := "He provided"
	_, err := uc.Answer(context.Background(), activeUser("owner-1", domain.RoleMember), prayer.ID,
		usecase.AnswerPrayerInput{Testimony: &testimony})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !answered {
		t.Error("request was not marked answered")
	}
}

func TestAnswer_StrangerMember_Forbidden(t *testing.T) {
	prayer := prayerWithPrivacy(domain.PrivacyCongregation)
	repo := &fakePrayerRepo{
		getByID: func(_ context.Context, _ string) (*domain.Prayer, error) { return prayer, nil },
		markAnswered: func(_ context.Context, _ string, _ time.Time, _ *string) error {
			t.Error("stranger marked someone else's request answered")
			return nil
		},
	}
	uc := newPrayerUsecase(repo)

	_, err := uc.Answer(context.Background(), activeUser("u9", domain.RoleMember), prayer.ID, usecase.AnswerPrayerInput{})
	wantKind(t, err, apperror.KindAuthorization)
}

func TestAnswer_AlreadyAnswered_IsConflict(t *testing.T) {
	prayer := prayerWithPrivacy(domain.PrivacyCongregation)
	prayer.Status = domain.PrayerAnswered
	repo := &fakePrayerRepo{
		getByID: func(_ context.Context, _ string) (*domain.Prayer, error) { return prayer, nil },
		markAnswered: func(_ context.Context, _ string, _ time.Time, _ *string) error {
			return domain.ErrPrayerAlreadyAnswered
		},
	}
	uc := newPrayerUsecase(repo)

	_, err := uc.Answer(context.Background(), activeUser("owner-1", domain.RoleMember), prayer.ID, usecase.AnswerPrayerInput{})
	wantKind(t, err, apperror.KindConflict)
}
