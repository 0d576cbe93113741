package domain

import (
	"errors"
	"time"
)

var ErrDonationNotFound = errors.New("donation not found")

type Fund string

const (
	FundGeneral  Fund = "general"
	FundMissions Fund = "missions"
	FundBuilding Fund = "building"
	FundYouth    Fund = "youth"
	FundCharity  Fund = "charity"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
	PaymentOnline       PaymentMethod = "online"
)

type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationFailed    DonationStatus = "failed"
	DonationRefunded  DonationStatus = "refunded"
)

type Donation struct {
	ID string

	// DonorID is nil for anonymous gifts.
	DonorID *string

	// Amount in minor units (cents).
	Amount   int64
	Currency string
	Fund     Fund
	Method   PaymentMethod
	Status   DonationStatus

	Reference *string
	Note      *string
	GivenAt   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Donation) OwnerID() string {
	if d.DonorID == nil {
		return ""
	}
	return *d.DonorID
}

// FundTotal is one row of a donation summary.
type FundTotal struct {
	Fund   Fund
	Count  int64
	Amount int64
}
