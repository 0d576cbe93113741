package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/authz"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
)

type DonationUsecase struct {
	base      *Base
	donations repository.DonationRepository
}

func NewDonationUsecase(base *Base, donations repository.DonationRepository) *DonationUsecase {
	return &DonationUsecase{base: base, donations: donations}
}

func donationError(err error) error {
	if errors.Is(err, domain.ErrDonationNotFound) {
		return apperror.NotFound(apperror.CodeDonationNotFound, "donation not found").
			WithUserMessage("Donation not found")
	}
	return err
}

func (u *DonationUsecase) canManage(actor *domain.User) bool {
	return actor != nil && u.base.authorizer.EffectivePermissions(actor)[domain.PermManageDonations]
}

type RecordDonationInput struct {
	// DonorID defaults to the actor; recording for someone else needs
	// manage_donations. Anonymous discards the donor entirely.
	DonorID   *string              `json:"donor_id" validate:"omitempty,uuid"`
	Anonymous bool                 `json:"anonymous"`
	Amount    int64                `json:"amount" validate:"required,gt=0"`
	Currency  string               `json:"currency" validate:"omitempty,len=3"`
	Fund      domain.Fund          `json:"fund" validate:"required,oneof=general missions building youth charity"`
	Method    domain.PaymentMethod `json:"method" validate:"required,oneof=cash bank_transfer card online"`
	Reference *string              `json:"reference" validate:"omitempty,max=100"`
	Note      *string              `json:"note" validate:"omitempty,max=1000"`
	GivenAt   *time.Time           `json:"given_at"`
}

// Record books a gift. Amounts are minor units; no payment provider is
// involved, this is the ledger of what already happened. Online gifts
// start pending until reconciled, everything else books completed.
func (u *DonationUsecase) Record(ctx context.Context, actor *domain.User, input RecordDonationInput) (*domain.Donation, error) {
	def := Definition[RecordDonationInput, *domain.Donation]{
		Name: "donation.record",
		Config: Config{
			RequireAuth:   true,
			ValidateInput: true,
			Transactional: true,
			AuditLog:      true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input RecordDonationInput) (*domain.Donation, error) {
			var donorID *string
			switch {
			case input.Anonymous:
				donorID = nil
			case input.DonorID == nil || *input.DonorID == actor.ID:
				donorID = &actor.ID
			default:
				if !u.canManage(actor) {
					return nil, apperror.Authorization(apperror.CodePermissionDenied, "recording for another donor requires manage_donations").
						WithUserMessage("You can only record your own donations")
				}
				donorID = input.DonorID
			}

			currency := input.Currency
			if currency == "" {
				currency = "MMK"
			}
			givenAt := time.Now()
			if input.GivenAt != nil {
				givenAt = *input.GivenAt
			}
			status := domain.DonationCompleted
			if input.Method == domain.PaymentOnline {
				status = domain.DonationPending
			}

			return u.donations.Create(ctx, &domain.Donation{
				DonorID:   donorID,
				Amount:    input.Amount,
				Currency:  currency,
				Fund:      input.Fund,
				Method:    input.Method,
				Status:    status,
				Reference: input.Reference,
				Note:      input.Note,
				GivenAt:   givenAt,
			})
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

// GetByID: donors see their own gifts, manage_donations sees all.
// Anonymous gifts have no owner and are visible to managers only.
func (u *DonationUsecase) GetByID(ctx context.Context, actor *domain.User, id string) (*domain.Donation, error) {
	var target *domain.Donation
	def := Definition[string, *domain.Donation]{
		Name: "donation.get",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageDonations},
		},
		Resource: func(ctx context.Context, id string) (authz.OwnedResource, error) {
			donation, err := u.donations.GetByID(ctx, id)
			if err != nil {
				return nil, donationError(err)
			}
			target = donation
			return donation, nil
		},
		Execute: func(ctx context.Context, op *OperationContext, _ string) (*domain.Donation, error) {
			return target, nil
		},
	}
	return Run(ctx, u.base, def, actor, id)
}

type ListDonationsInput struct {
	DonorID    string                `json:"donor_id" validate:"omitempty,uuid"`
	Fund       domain.Fund           `json:"fund" validate:"omitempty,oneof=general missions building youth charity"`
	Status     domain.DonationStatus `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	From       *time.Time            `json:"from"`
	To         *time.Time            `json:"to"`
	CursorTime *time.Time            `json:"cursor_time"`
	CursorID   string                `json:"cursor_id"`
	Limit      int                   `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// List scopes to the caller's own gifts unless they hold
// manage_donations, in which case the donor filter is honored as
// given (empty = everyone).
func (u *DonationUsecase) List(ctx context.Context, actor *domain.User, input ListDonationsInput) ([]*domain.Donation, error) {
	def := Definition[ListDonationsInput, []*domain.Donation]{
		Name: "donation.list",
		Config: Config{
			RequireAuth:   true,
			ValidateInput: true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input ListDonationsInput) ([]*domain.Donation, error) {
			if input.Limit == 0 {
				input.Limit = 20
			}
			donorID := input.DonorID
			if !u.canManage(actor) {
				donorID = actor.ID
			}
			return u.donations.List(ctx, repository.ListDonationsInput{
				DonorID:    donorID,
				Fund:       input.Fund,
				Status:     input.Status,
				From:       input.From,
				To:         input.To,
				CursorTime: input.CursorTime,
				CursorID:   input.CursorID,
				Limit:      input.Limit,
			})
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

type DonationSummaryInput struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// DonationSummary aggregates completed gifts per fund over a period.
type DonationSummary struct {
	From        time.Time          `json:"from"`
	To          time.Time          `json:"to"`
	Funds       []domain.FundTotal `json:"funds"`
	TotalCount  int64              `json:"total_count"`
	TotalAmount int64              `json:"total_amount"`
}

// Summarize defaults to the trailing 30 days when no period is given.
func (u *DonationUsecase) Summarize(ctx context.Context, actor *domain.User, input DonationSummaryInput) (*DonationSummary, error) {
	def := Definition[DonationSummaryInput, *DonationSummary]{
		Name: "donation.summarize",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageDonations},
		},
		Execute: func(ctx context.Context, op *OperationContext, input DonationSummaryInput) (*DonationSummary, error) {
			to := time.Now()
			if input.To != nil {
				to = *input.To
			}
			from := to.AddDate(0, 0, -30)
			if input.From != nil {
				from = *input.From
			}
			if !from.Before(to) {
				return nil, apperror.Validation(apperror.CodeValidationError, "summary period is empty").
					WithUserMessage("The start of the period must be before its end")
			}

			funds, err := u.donations.Summarize(ctx, from, to)
			if err != nil {
				return nil, err
			}

			summary := &DonationSummary{From: from, To: to, Funds: funds}
			for _, f := range funds {
				summary.TotalCount += f.Count
				summary.TotalAmount += f.Amount
			}
			return summary, nil
		},
	}
	return Run(ctx, u.base, def, actor, input)
}
