package domain

import (
	"errors"
	"time"
)

var (
	ErrPrayerNotFound        = errors.New("prayer request not found")
	ErrPrayerAlreadyAnswered = errors.New("prayer request is already marked answered")
)

type PrayerCategory string

const (
	PrayerHealing      PrayerCategory = "healing"
	PrayerGuidance     PrayerCategory = "guidance"
	PrayerThanksgiving PrayerCategory = "thanksgiving"
	PrayerFamily       PrayerCategory = "family"
	PrayerMinistry     PrayerCategory = "ministry"
	PrayerOther        PrayerCategory = "other"
)

// PrayerPrivacy controls who may see a request. Public is visible to
// anyone, congregation to any authenticated member, leaders_only to
// ministry leaders and above, private to the requester alone.
type PrayerPrivacy string

const (
	PrivacyPublic       PrayerPrivacy = "public"
	PrivacyCongregation PrayerPrivacy = "congregation"
	PrivacyLeadersOnly  PrayerPrivacy = "leaders_only"
	PrivacyPrivate      PrayerPrivacy = "private"
)

type PrayerStatus string

const (
	PrayerOpen     PrayerStatus = "open"
	PrayerAnswered PrayerStatus = "answered"
	PrayerArchived PrayerStatus = "archived"
)

type Prayer struct {
	ID          string
	RequesterID string
	Title       string
	Body        string
	Category    PrayerCategory
	Privacy     PrayerPrivacy
	Status      PrayerStatus

	PrayerCount int
	AnsweredAt  *time.Time
	Testimony   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Prayer) OwnerID() string { return p.RequesterID }
