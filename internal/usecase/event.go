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

type EventUsecase struct {
	base   *Base
	events repository.EventRepository
}

func NewEventUsecase(base *Base, events repository.EventRepository) *EventUsecase {
	return &EventUsecase{base: base, events: events}
}

func eventError(err error) error {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		return apperror.NotFound(apperror.CodeEventNotFound, "event not found").
			WithUserMessage("Event not found")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return apperror.Conflict(apperror.CodeConflict, "already registered").
			WithUserMessage("You are already registered for this event")
	case errors.Is(err, domain.ErrRegistrationNotFound):
		return apperror.NotFound(apperror.CodeNotFound, "registration not found").
			WithUserMessage("You are not registered for this event")
	default:
		return err
	}
}

type CreateEventInput struct {
	Title                string           `json:"title" validate:"required,max=200"`
	Description          string           `json:"description" validate:"max=5000"`
	EventType            domain.EventType `json:"event_type" validate:"required,oneof=service bible_study prayer_meeting youth outreach conference other"`
	StartsAt             time.Time        `json:"starts_at" validate:"required"`
	EndsAt               time.Time        `json:"ends_at" validate:"required"`
	Location             string           `json:"location" validate:"max=300"`
	Capacity             int              `json:"capacity" validate:"gte=0"`
	RegistrationDeadline *time.Time       `json:"registration_deadline"`
	Publish              bool             `json:"publish"`
}

func (u *EventUsecase) Create(ctx context.Context, actor *domain.User, input CreateEventInput) (*domain.Event, error) {
	def := Definition[CreateEventInput, *domain.Event]{
		Name: "event.create",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageEvents},
			ValidateInput:       true,
			Transactional:       true,
			AuditLog:            true,
		},
		ValidateInput: func(ctx context.Context, input CreateEventInput) error {
			if !input.EndsAt.After(input.StartsAt) {
				return apperror.Validation(apperror.CodeValidationError, "event ends before it starts").
					WithUserMessage("The event must end after it starts").
					WithDetail("field_errors", map[string]string{"ends_at": "must be after starts_at"})
			}
			return nil
		},
		Execute: func(ctx context.Context, op *OperationContext, input CreateEventInput) (*domain.Event, error) {
			status := domain.EventStatusDraft
			if input.Publish {
				status = domain.EventStatusPublished
			}
			return u.events.Create(ctx, &domain.Event{
				Title:                input.Title,
				Description:          input.Description,
				EventType:            input.EventType,
				Status:               status,
				StartsAt:             input.StartsAt,
				EndsAt:               input.EndsAt,
				Location:             input.Location,
				Capacity:             input.Capacity,
				RegistrationDeadline: input.RegistrationDeadline,
				CreatedBy:            actor.ID,
			})
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

// GetByID is public for published events; drafts are visible only to
// event managers.
func (u *EventUsecase) GetByID(ctx context.Context, actor *domain.User, id string) (*domain.Event, error) {
	def := Definition[string, *domain.Event]{
		Name:   "event.get",
		Config: Config{},
		Execute: func(ctx context.Context, op *OperationContext, id string) (*domain.Event, error) {
			event, err := u.events.GetByID(ctx, id)
			if err != nil {
				return nil, eventError(err)
			}
			if event.Status == domain.EventStatusDraft && !u.canManage(actor, event) {
				return nil, eventError(domain.ErrEventNotFound)
			}
			return event, nil
		},
	}
	return Run(ctx, u.base, def, actor, id)
}

func (u *EventUsecase) canManage(actor *domain.User, event *domain.Event) bool {
	if actor == nil {
		return false
	}
	if event != nil && event.CreatedBy == actor.ID {
		return true
	}
	return u.base.authorizer.EffectivePermissions(actor)[domain.PermManageEvents]
}

type ListEventsInput struct {
	Status     domain.EventStatus `json:"status" validate:"omitempty,oneof=draft published cancelled completed"`
	Type       domain.EventType   `json:"event_type" validate:"omitempty,oneof=service bible_study prayer_meeting youth outreach conference other"`
	CursorTime *time.Time         `json:"cursor_time"`
	CursorID   string             `json:"cursor_id"`
	Limit      int                `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// List is public. Anonymous callers and plain members only see
// published events; draft filtering requires manage_events.
func (u *EventUsecase) List(ctx context.Context, actor *domain.User, input ListEventsInput) ([]*domain.Event, error) {
	def := Definition[ListEventsInput, []*domain.Event]{
		Name: "event.list",
		Config: Config{
			ValidateInput: true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input ListEventsInput) ([]*domain.Event, error) {
			if input.Limit == 0 {
				input.Limit = 20
			}
			if !u.canManage(actor, nil) {
				input.Status = domain.EventStatusPublished
			}
			return u.events.List(ctx, repository.ListEventsInput{
				Status:     input.Status,
				Type:       input.Type,
				CursorTime: input.CursorTime,
				CursorID:   input.CursorID,
				Limit:      input.Limit,
			})
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

// ListUpcoming returns the next published events, soonest first.
func (u *EventUsecase) ListUpcoming(ctx context.Context, limit int) ([]*domain.Event, error) {
	def := Definition[int, []*domain.Event]{
		Name:   "event.list_upcoming",
		Config: Config{},
		Execute: func(ctx context.Context, op *OperationContext, limit int) ([]*domain.Event, error) {
			if limit <= 0 || limit > 100 {
				limit = 20
			}
			return u.events.ListUpcoming(ctx, time.Now(), limit)
		},
	}
	return Run(ctx, u.base, def, nil, limit)
}

type UpdateEventInput struct {
	Title                *string             `json:"title" validate:"omitempty,max=200"`
	Description          *string             `json:"description" validate:"omitempty,max=5000"`
	EventType            *domain.EventType   `json:"event_type" validate:"omitempty,oneof=service bible_study prayer_meeting youth outreach conference other"`
	Status               *domain.EventStatus `json:"status" validate:"omitempty,oneof=draft published cancelled completed"`
	StartsAt             *time.Time          `json:"starts_at"`
	EndsAt               *time.Time          `json:"ends_at"`
	Location             *string             `json:"location" validate:"omitempty,max=300"`
	Capacity             *int                `json:"capacity" validate:"omitempty,gte=0"`
	RegistrationDeadline *time.Time          `json:"registration_deadline"`
}

func (u *EventUsecase) Update(ctx context.Context, actor *domain.User, id string, input UpdateEventInput) (*domain.Event, error) {
	def := Definition[UpdateEventInput, *domain.Event]{
		Name: "event.update",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageEvents},
			ValidateInput:       true,
			Transactional:       true,
			AuditLog:            true,
		},
		Resource: func(ctx context.Context, _ UpdateEventInput) (authz.OwnedResource, error) {
			event, err := u.events.GetByID(ctx, id)
			if err != nil {
				return nil, eventError(err)
			}
			return event, nil
		},
		Execute: func(ctx context.Context, op *OperationContext, input UpdateEventInput) (*domain.Event, error) {
			updated, err := u.events.Update(ctx, id, repository.UpdateEventInput{
				Title:                input.Title,
				Description:          input.Description,
				EventType:            input.EventType,
				Status:               input.Status,
				StartsAt:             input.StartsAt,
				EndsAt:               input.EndsAt,
				Location:             input.Location,
				Capacity:             input.Capacity,
				RegistrationDeadline: input.RegistrationDeadline,
			})
			if err != nil {
				return nil, eventError(err)
			}
			return updated, nil
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

func (u *EventUsecase) Delete(ctx context.Context, actor *domain.User, id string) (struct{}, error) {
	def := Definition[string, struct{}]{
		Name: "event.delete",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageEvents},
			Transactional:       true,
			AuditLog:            true,
		},
		Resource: func(ctx context.Context, id string) (authz.OwnedResource, error) {
			event, err := u.events.GetByID(ctx, id)
			if err != nil {
				return nil, eventError(err)
			}
			return event, nil
		},
		Execute: func(ctx context.Context, op *OperationContext, id string) (struct{}, error) {
			if err := u.events.Delete(ctx, id); err != nil {
				return struct{}{}, eventError(err)
			}
			return struct{}{}, nil
		},
	}
	return Run(ctx, u.base, def, actor, id)
}

// Register signs the actor up for an event. When capacity is reached
// the registration is waitlisted instead of rejected. Runs in a
// transaction so the capacity count and the insert agree.
func (u *EventUsecase) Register(ctx context.Context, actor *domain.User, eventID string) (*domain.EventRegistration, error) {
	def := Definition[string, *domain.EventRegistration]{
		Name: "event.register",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermJoinEvents},
			Transactional:       true,
			AuditLog:            true,
		},
		Execute: func(ctx context.Context, op *OperationContext, eventID string) (*domain.EventRegistration, error) {
			event, err := u.events.GetByID(ctx, eventID)
			if err != nil {
				return nil, eventError(err)
			}
			if !event.RegistrationOpen(time.Now()) {
				return nil, apperror.Conflict(apperror.CodeConflict, "registration closed").
					WithUserMessage("Registration for this event is closed")
			}

			status := domain.RegistrationRegistered
			if event.Capacity > 0 {
				active, err := u.events.CountActive(ctx, eventID)
				if err != nil {
					return nil, err
				}
				if active >= event.Capacity {
					status = domain.RegistrationWaitlisted
				}
			}

			reg, err := u.events.CreateRegistration(ctx, &domain.EventRegistration{
				EventID: eventID,
				UserID:  actor.ID,
				Status:  status,
			})
			if err != nil {
				return nil, eventError(err)
			}
			return reg, nil
		},
	}
	return Run(ctx, u.base, def, actor, eventID)
}

// CancelRegistration withdraws the actor. Cancelling a registered spot
// on a full event promotes the longest-waiting waitlisted person.
func (u *EventUsecase) CancelRegistration(ctx context.Context, actor *domain.User, eventID string) (struct{}, error) {
	def := Definition[string, struct{}]{
		Name: "event.cancel_registration",
		Config: Config{
			RequireAuth:   true,
			Transactional: true,
			AuditLog:      true,
		},
		Execute: func(ctx context.Context, op *OperationContext, eventID string) (struct{}, error) {
			reg, err := u.events.GetRegistration(ctx, eventID, actor.ID)
			if err != nil {
				return struct{}{}, eventError(err)
			}
			if reg.Status == domain.RegistrationCancelled {
				return struct{}{}, nil
			}

			wasRegistered := reg.Status == domain.RegistrationRegistered
			if err := u.events.UpdateRegistrationStatus(ctx, reg.ID, domain.RegistrationCancelled); err != nil {
				return struct{}{}, err
			}

			if wasRegistered {
				if err := u.promoteOldestWaitlisted(ctx, eventID); err != nil {
					return struct{}{}, err
				}
			}
			return struct{}{}, nil
		},
	}
	return Run(ctx, u.base, def, actor, eventID)
}

func (u *EventUsecase) promoteOldestWaitlisted(ctx context.Context, eventID string) error {
	next, err := u.events.OldestWaitlisted(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrRegistrationNotFound) {
			return nil
		}
		return err
	}
	if err := u.events.UpdateRegistrationStatus(ctx, next.ID, domain.RegistrationRegistered); err != nil {
		return err
	}
	u.base.logger.InfoContext(ctx, "promoted waitlisted registration",
		"event_id", eventID, "registration_id", next.ID, "user_id", next.UserID)
	return nil
}

// ListRegistrations is for event managers taking attendance.
func (u *EventUsecase) ListRegistrations(ctx context.Context, actor *domain.User, eventID string) ([]*domain.EventRegistration, error) {
	def := Definition[string, []*domain.EventRegistration]{
		Name: "event.list_registrations",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageEvents},
		},
		Resource: func(ctx context.Context, eventID string) (authz.OwnedResource, error) {
			event, err := u.events.GetByID(ctx, eventID)
			if err != nil {
				return nil, eventError(err)
			}
			return event, nil
		},
		Execute: func(ctx context.Context, op *OperationContext, eventID string) ([]*domain.EventRegistration, error) {
			return u.events.ListRegistrations(ctx, eventID)
		},
	}
	return Run(ctx, u.base, def, actor, eventID)
}
