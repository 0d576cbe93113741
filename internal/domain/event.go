package domain

import (
	"errors"
	"time"
)

var (
	ErrEventNotFound           = errors.New("event not found")
	ErrEventNotPublished       = errors.New("event is not open for registration")
	ErrEventRegistrationClosed = errors.New("event registration deadline has passed")
	ErrAlreadyRegistered       = errors.New("already registered for this event")
	ErrRegistrationNotFound    = errors.New("registration not found")
)

type EventType string

const (
	EventTypeService       EventType = "service"
	EventTypeBibleStudy    EventType = "bible_study"
	EventTypePrayerMeeting EventType = "prayer_meeting"
	EventTypeYouth         EventType = "youth"
	EventTypeOutreach      EventType = "outreach"
	EventTypeConference    EventType = "conference"
	EventTypeOther         EventType = "other"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationWaitlisted RegistrationStatus = "waitlisted"
	RegistrationCancelled  RegistrationStatus = "cancelled"
	RegistrationAttended   RegistrationStatus = "attended"
)

type Event struct {
	ID          string
	Title       string
	Description string
	EventType   EventType
	Status      EventStatus

	StartsAt time.Time
	EndsAt   time.Time
	Location string

	// Capacity 0 means unlimited.
	Capacity             int
	RegistrationDeadline *time.Time

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Event) OwnerID() string { return e.CreatedBy }

// RegistrationOpen reports whether a user may still register at t.
func (e *Event) RegistrationOpen(t time.Time) bool {
	if e.Status != EventStatusPublished {
		return false
	}
	if e.RegistrationDeadline != nil && t.After(*e.RegistrationDeadline) {
		return false
	}
	return t.Before(e.StartsAt)
}

type EventRegistration struct {
	ID           string
	EventID      string
	UserID       string
	Status       RegistrationStatus
	RegisteredAt time.Time
}
