package repository

import (
	"context"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
)

type ListDonationsInput struct {
	DonorID string // empty = all donors
	Fund    domain.Fund
	Status  domain.DonationStatus
	From    *time.Time
	To      *time.Time

	CursorTime *time.Time
	CursorID   string
	Limit      int
}

type DonationRepository interface {
	Create(ctx context.Context, donation *domain.Donation) (*domain.Donation, error)
	GetByID(ctx context.Context, id string) (*domain.Donation, error)
	List(ctx context.Context, input ListDonationsInput) ([]*domain.Donation, error)

	// Summarize aggregates completed donations per fund over [from, to).
	Summarize(ctx context.Context, from, to time.Time) ([]domain.FundTotal, error)
}
