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

type PrayerUsecase struct {
	base    *Base
	prayers repository.PrayerRepository
}

func NewPrayerUsecase(base *Base, prayers repository.PrayerRepository) *PrayerUsecase {
	return &PrayerUsecase{base: base, prayers: prayers}
}

func prayerError(err error) error {
	switch {
	case errors.Is(err, domain.ErrPrayerNotFound):
		return apperror.NotFound(apperror.CodePrayerNotFound, "prayer request not found").
			WithUserMessage("Prayer request not found")
	case errors.Is(err, domain.ErrPrayerAlreadyAnswered):
		return apperror.Conflict(apperror.CodeConflict, "prayer already answered").
			WithUserMessage("This prayer request is already marked as answered")
	default:
		return err
	}
}

// visiblePrivacies is the privacy ladder: which levels a viewer may
// see, not counting their own requests.
func (u *PrayerUsecase) visiblePrivacies(viewer *domain.User) []domain.PrayerPrivacy {
	if viewer == nil {
		return []domain.PrayerPrivacy{domain.PrivacyPublic}
	}
	if u.base.authorizer.EffectivePermissions(viewer)[domain.PermViewAllPrayers] {
		return []domain.PrayerPrivacy{
			domain.PrivacyPublic,
			domain.PrivacyCongregation,
			domain.PrivacyLeadersOnly,
			domain.PrivacyPrivate,
		}
	}
	if authz.RoleSubsumes(viewer.Role, domain.RoleMinistryLeader) {
		return []domain.PrayerPrivacy{
			domain.PrivacyPublic,
			domain.PrivacyCongregation,
			domain.PrivacyLeadersOnly,
		}
	}
	return []domain.PrayerPrivacy{domain.PrivacyPublic, domain.PrivacyCongregation}
}

func (u *PrayerUsecase) canView(viewer *domain.User, prayer *domain.Prayer) bool {
	if viewer != nil && prayer.RequesterID == viewer.ID {
		return true
	}
	for _, p := range u.visiblePrivacies(viewer) {
		if prayer.Privacy == p {
			return true
		}
	}
	return false
}

type CreatePrayerInput struct {
	Title    string                `json:"title" validate:"required,max=200"`
	Body     string                `json:"body" validate:"required,max=5000"`
	Category domain.PrayerCategory `json:"category" validate:"required,oneof=healing guidance thanksgiving family ministry other"`
	Privacy  domain.PrayerPrivacy  `json:"privacy" validate:"omitempty,oneof=public congregation leaders_only private"`
}

func (u *PrayerUsecase) Create(ctx context.Context, actor *domain.User, input CreatePrayerInput) (*domain.Prayer, error) {
	def := Definition[CreatePrayerInput, *domain.Prayer]{
		Name: "prayer.create",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermCreatePrayers},
			ValidateInput:       true,
			Transactional:       true,
			AuditLog:            true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input CreatePrayerInput) (*domain.Prayer, error) {
			privacy := input.Privacy
			if privacy == "" {
				privacy = domain.PrivacyCongregation
			}
			return u.prayers.Create(ctx, &domain.Prayer{
				RequesterID: actor.ID,
				Title:       input.Title,
				Body:        input.Body,
				Category:    input.Category,
				Privacy:     privacy,
				Status:      domain.PrayerOpen,
			})
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

// GetByID applies the privacy ladder; a request the viewer may not see
// reads as not found rather than forbidden.
func (u *PrayerUsecase) GetByID(ctx context.Context, actor *domain.User, id string) (*domain.Prayer, error) {
	def := Definition[string, *domain.Prayer]{
		Name:   "prayer.get",
		Config: Config{},
		Execute: func(ctx context.Context, op *OperationContext, id string) (*domain.Prayer, error) {
			prayer, err := u.prayers.GetByID(ctx, id)
			if err != nil {
				return nil, prayerError(err)
			}
			if !u.canView(actor, prayer) {
				return nil, prayerError(domain.ErrPrayerNotFound)
			}
			return prayer, nil
		},
	}
	return Run(ctx, u.base, def, actor, id)
}

type ListPrayersInput struct {
	Status     domain.PrayerStatus   `json:"status" validate:"omitempty,oneof=open answered archived"`
	Category   domain.PrayerCategory `json:"category" validate:"omitempty,oneof=healing guidance thanksgiving family ministry other"`
	CursorTime *time.Time            `json:"cursor_time"`
	CursorID   string                `json:"cursor_id"`
	Limit      int                   `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// List returns the requests the viewer may see: the privacy levels
// their role unlocks, plus everything they requested themselves.
func (u *PrayerUsecase) List(ctx context.Context, actor *domain.User, input ListPrayersInput) ([]*domain.Prayer, error) {
	def := Definition[ListPrayersInput, []*domain.Prayer]{
		Name: "prayer.list",
		Config: Config{
			ValidateInput: true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input ListPrayersInput) ([]*domain.Prayer, error) {
			if input.Limit == 0 {
				input.Limit = 20
			}
			ownerID := ""
			if actor != nil {
				ownerID = actor.ID
			}
			return u.prayers.List(ctx, repository.ListPrayersInput{
				Privacies:  u.visiblePrivacies(actor),
				OwnerID:    ownerID,
				Status:     input.Status,
				Category:   input.Category,
				CursorTime: input.CursorTime,
				CursorID:   input.CursorID,
				Limit:      input.Limit,
			})
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

type UpdatePrayerInput struct {
	Title    *string                `json:"title" validate:"omitempty,max=200"`
	Body     *string                `json:"body" validate:"omitempty,max=5000"`
	Category *domain.PrayerCategory `json:"category" validate:"omitempty,oneof=healing guidance thanksgiving family ministry other"`
	Privacy  *domain.PrayerPrivacy  `json:"privacy" validate:"omitempty,oneof=public congregation leaders_only private"`
}

// Update edits a request. The requester may edit their own; otherwise
// view_all_prayers is required.
func (u *PrayerUsecase) Update(ctx context.Context, actor *domain.User, id string, input UpdatePrayerInput) (*domain.Prayer, error) {
	def := Definition[UpdatePrayerInput, *domain.Prayer]{
		Name: "prayer.update",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermViewAllPrayers},
			ValidateInput:       true,
			Transactional:       true,
			AuditLog:            true,
		},
		Resource: func(ctx context.Context, _ UpdatePrayerInput) (authz.OwnedResource, error) {
			prayer, err := u.prayers.GetByID(ctx, id)
			if err != nil {
				return nil, prayerError(err)
			}
			return prayer, nil
		},
		Execute: func(ctx context.Context, op *OperationContext, input UpdatePrayerInput) (*domain.Prayer, error) {
			updated, err := u.prayers.Update(ctx, id, repository.UpdatePrayerInput{
				Title:    input.Title,
				Body:     input.Body,
				Category: input.Category,
				Privacy:  input.Privacy,
			})
			if err != nil {
				return nil, prayerError(err)
			}
			return updated, nil
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

func (u *PrayerUsecase) Delete(ctx context.Context, actor *domain.User, id string) (struct{}, error) {
	def := Definition[string, struct{}]{
		Name: "prayer.delete",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermViewAllPrayers},
			Transactional:       true,
			AuditLog:            true,
		},
		Resource: func(ctx context.Context, id string) (authz.OwnedResource, error) {
			prayer, err := u.prayers.GetByID(ctx, id)
			if err != nil {
				return nil, prayerError(err)
			}
			return prayer, nil
		},
		Execute: func(ctx context.Context, op *OperationContext, id string) (struct{}, error) {
			if err := u.prayers.Delete(ctx, id); err != nil {
				return struct{}{}, prayerError(err)
			}
			return struct{}{}, nil
		},
	}
	return Run(ctx, u.base, def, actor, id)
}

// Pray bumps the prayer counter. Every call counts; there is no
// per-user dedupe.
func (u *PrayerUsecase) Pray(ctx context.Context, actor *domain.User, id string) (int, error) {
	def := Definition[string, int]{
		Name: "prayer.pray",
		Config: Config{
			RequireAuth: true,
		},
		Execute: func(ctx context.Context, op *OperationContext, id string) (int, error) {
			prayer, err := u.prayers.GetByID(ctx, id)
			if err != nil {
				return 0, prayerError(err)
			}
			if !u.canView(actor, prayer) {
				return 0, prayerError(domain.ErrPrayerNotFound)
			}
			count, err := u.prayers.IncrementPrayerCount(ctx, id)
			if err != nil {
				return 0, prayerError(err)
			}
			return count, nil
		},
	}
	return Run(ctx, u.base, def, actor, id)
}

type AnswerPrayerInput struct {
	Testimony *string `json:"testimony" validate:"omitempty,max=5000"`
}

// Answer marks a request answered with an optional testimony. Only the
// requester or someone with view_all_prayers may do this.
func (u *PrayerUsecase) Answer(ctx context.Context, actor *domain.User, id string, input AnswerPrayerInput) (*domain.Prayer, error) {
	def := Definition[AnswerPrayerInput, *domain.Prayer]{
		Name: "prayer.answer",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermViewAllPrayers},
			ValidateInput:       true,
			Transactional:       true,
			AuditLog:            true,
		},
		Resource: func(ctx context.Context, _ AnswerPrayerInput) (authz.OwnedResource, error) {
			prayer, err := u.prayers.GetByID(ctx, id)
			if err != nil {
				return nil, prayerError(err)
			}
			return prayer, nil
		},
		Execute: func(ctx context.Context, op *OperationContext, input AnswerPrayerInput) (*domain.Prayer, error) {
			if err := u.prayers.MarkAnswered(ctx, id, time.Now(), input.Testimony); err != nil {
				return nil, prayerError(err)
			}
			answered, err := u.prayers.GetByID(ctx, id)
			if err != nil {
				return nil, prayerError(err)
			}
			return answered, nil
		},
	}
	return Run(ctx, u.base, def, actor, input)
}
