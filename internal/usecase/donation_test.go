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

type fakeDonationRepo struct {
	create    func(ctx context.Context, donation *domain.Donation) (*domain.Donation, error)
	getByID   func(ctx context.Context, id string) (*domain.Donation, error)
	list      func(ctx context.Context, input repository.ListDonationsInput) ([]*domain.Donation, error)
	summarize func(ctx context.Context, from, to time.Time) ([]domain.FundTotal, error)
}

func (r *fakeDonationRepo) Create(ctx context.Context, donation *domain.Donation) (*domain.Donation, error) {
	return r.create(ctx, donation)
}

func (r *fakeDonationRepo) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	return r.getByID(ctx, id)
}

func (r *fakeDonationRepo) List(ctx context.Context, input repository.ListDonationsInput) ([]*domain.Donation, error) {
	return r.list(ctx, input)
}

func (r *fakeDonationRepo) Summarize(ctx context.Context, from, to time.Time) ([]domain.FundTotal, error) {
	return r.summarize(ctx, from, to)
}

// ---- helpers ----

func newDonationUsecase(repo *fakeDonationRepo) *usecase.DonationUsecase {
	base, _, _ := newTestBase()
	return usecase.NewDonationUsecase(base, repo)
}

func captureDonation(created **domain.Donation) *fakeDonationRepo {
	return &fakeDonationRepo{
		create: func(_ context.Context, donation *domain.Donation) (*domain.Donation, error) {
			donation.ID = "d1"
			*created = donation
			return donation, nil
		},
	}
}

// ---- Record ----

func TestRecordDonation_DefaultsToSelf(t *testing.T) {
	var created *domain.Donation
	uc := newDonationUsecase(captureDonation(&created))

	_, err := uc.Record(context.Background(), activeUser("u1", domain.RoleMember), usecase.RecordDonationInput{
		Amount: 50000,
		Fund:   domain.FundGeneral,
		Method: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.DonorID == nil || *created.DonorID != "u1" {
		t.Errorf("donor = %v, want u1", created.DonorID)
	}
	if created.Status != domain.DonationCompleted {
		t.Errorf("status = %q, want completed", created.Status)
	}
	if created.Currency != "MMK" {
		t.Errorf("currency = %q, want MMK", created.Currency)
	}
}

func TestRecordDonation_Anonymous_DropsDonor(t *testing.T) {
	var created *domain.Donation
	uc := newDonationUsecase(captureDonation(&created))

	_, err := uc.Record(context.Background(), activeUser("u1", domain.RoleMember), usecase.RecordDonationInput{
		Anonymous: true,
		Amount:    25000,
		Fund:      domain.FundMissions,
		Method:    domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.DonorID != nil {
		t.Errorf("donor = %v, want nil for anonymous", *created.DonorID)
	}
}

func TestRecordDonation_ForAnotherDonor_NeedsManagePermission(t *testing.T) {
	other := "u2"

	var created *domain.Donation
	uc := newDonationUsecase(captureDonation(&created))
	_, err := uc.Record(context.Background(), activeUser("u1", domain.RoleMember), usecase.RecordDonationInput{
		DonorID: &other,
		Amount:  10000,
		Fund:    domain.FundGeneral,
		Method:  domain.PaymentCash,
	})
	wantKind(t, err, apperror.KindAuthorization)

	uc = newDonationUsecase(captureDonation(&created))
	_, err = uc.Record(context.Background(), activeUser("s1", domain.RoleStaff), usecase.RecordDonationInput{
		DonorID: &other,
		Amount:  10000,
		Fund:    domain.FundGeneral,
		Method:  domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("staff recording for another donor failed: %v", err)
	}
	if created.DonorID == nil || *created.DonorID != other {
		t.Errorf("donor = %v, want %q", created.DonorID, other)
	}
}

func TestRecordDonation_OnlineStartsPending(t *testing.T) {
	var created *domain.Donation
	uc := newDonationUsecase(captureDonation(&created))

	_, err := uc.Record(context.Background(), activeUser("u1", domain.RoleMember), usecase.RecordDonationInput{
		Amount: 30000,
		Fund:   domain.FundBuilding,
		Method: domain.PaymentOnline,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != domain.DonationPending {
		t.Errorf("status = %q, want pending for online gifts", created.Status)
	}
}

func TestRecordDonation_ZeroAmount_FailsValidation(t *testing.T) {
	uc := newDonationUsecase(&fakeDonationRepo{})

	_, err := uc.Record(context.Background(), activeUser("u1", domain.RoleMember), usecase.RecordDonationInput{
		Amount: 0,
		Fund:   domain.FundGeneral,
		Method: domain.PaymentCash,
	})
	wantKind(t, err, apperror.KindValidation)
}

// ---- GetByID ----

func TestGetDonation_DonorSeesOwn_StrangerDoesNot(t *testing.T) {
	donor := "u1"
	gift := &domain.Donation{ID: "d1", DonorID: &donor, Amount: 5000, Fund: domain.FundGeneral}
	repo := &fakeDonationRepo{
		getByID: func(_ context.Context, _ string) (*domain.Donation, error) { return gift, nil },
	}
	uc := newDonationUsecase(repo)

	if _, err := uc.GetByID(context.Background(), activeUser("u1", domain.RoleMember), gift.ID); err != nil {
		t.Fatalf("donor read failed: %v", err)
	}

	_, err := uc.GetByID(context.Background(), activeUser("u2", domain.RoleMember), gift.ID)
	wantKind(t, err, apperror.KindAuthorization)

	if _, err := uc.GetByID(context.Background(), activeUser("s1", domain.RoleStaff), gift.ID); err != nil {
		t.Fatalf("staff read failed: %v", err)
	}
}

func TestGetDonation_AnonymousGift_ManagersOnly(t *testing.T) {
	gift := &domain.Donation{ID: "d1", DonorID: nil, Amount: 5000, Fund: domain.FundGeneral}
	repo := &fakeDonationRepo{
		getByID: func(_ context.Context, _ string) (*domain.Donation, error) { return gift, nil },
	}
	uc := newDonationUsecase(repo)

	_, err := uc.GetByID(context.Background(), activeUser("u1", domain.RoleMember), gift.ID)
	wantKind(t, err, apperror.KindAuthorization)

	if _, err := uc.GetByID(context.Background(), activeUser("s1", domain.RoleStaff), gift.ID); err != nil {
		t.Fatalf("staff read failed: %v", err)
	}
}

// ---- List ----

func TestListDonations_MembersPinnedToOwn(t *testing.T) {
	var seen repository.ListDonationsInput
	repo := &fakeDonationRepo{
		list: func(_ context.Context, input repository.ListDonationsInput) ([]*domain.Donation, error) {
			seen = input
			return nil, nil
		},
	}
	uc := newDonationUsecase(repo)

	_, err := uc.List(context.Background(), activeUser("u1", domain.RoleMember), usecase.ListDonationsInput{
		DonorID: "u2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.DonorID != "u1" {
		t.Errorf("member list donor = %q, want forced to u1", seen.DonorID)
	}

	_, err = uc.List(context.Background(), activeUser("s1", domain.RoleStaff), usecase.ListDonationsInput{
		DonorID: "u2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.DonorID != "u2" {
		t.Errorf("staff list donor = %q, want u2", seen.DonorID)
	}
}

// ---- Summarize ----

func TestSummarizeDonations_TotalsAcrossFunds(t *testing.T) {
	repo := &fakeDonationRepo{
		summarize: func(_ context.Context, _, _ time.Time) ([]domain.FundTotal, error) {
			return []domain.FundTotal{
				{Fund: domain.FundGeneral, Count: 12, Amount: 600000},
				{Fund: domain.FundMissions, Count: 3, Amount: 90000},
			}, nil
		},
	}
	uc := newDonationUsecase(repo)

	summary, err := uc.Summarize(context.Background(), activeUser("s1", domain.RoleStaff), usecase.DonationSummaryInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalCount != 15 {
		t.Errorf("total count = %d, want 15", summary.TotalCount)
	}
	if summary.TotalAmount != 690000 {
		t.Errorf("total amount = %d, want 690000", summary.TotalAmount)
	}
	if len(summary.Funds) != 2 {
		t.Errorf("funds = %d, want 2", len(summary.Funds))
	}
}

func TestSummarizeDonations_MemberForbidden(t *testing.T) {
	uc := newDonationUsecase(&fakeDonationRepo{})

	_, err := uc.Summarize(context.Background(), activeUser("u1", domain.RoleMember), usecase.DonationSummaryInput{})
	wantKind(t, err, apperror.KindAuthorization)
}

func TestSummarizeDonations_EmptyPeriod_FailsValidation(t *testing.T) {
	uc := newDonationUsecase(&fakeDonationRepo{})

	from := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-24 * time.Hour)
	_, err := uc.Summarize(context.Background(), activeUser("s1", domain.RoleStaff), usecase.DonationSummaryInput{
		From: &from, To: &to,
	})
	wantKind(t, err, apperror.KindValidation)
}
