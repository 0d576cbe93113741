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

type SermonUsecase struct {
	base    *Base
	sermons repository.SermonRepository
}

func NewSermonUsecase(base *Base, sermons repository.SermonRepository) *SermonUsecase {
	return &SermonUsecase{base: base, sermons: sermons}
}

func sermonError(err error) error {
	switch {
	case errors.Is(err, domain.ErrSermonNotFound):
		return apperror.NotFound(apperror.CodeSermonNotFound, "sermon not found").
			WithUserMessage("Sermon not found")
	case errors.Is(err, domain.ErrSermonAlreadyPublished):
		return apperror.Conflict(apperror.CodeSermonAlreadyPublished, "sermon is already published").
			WithUserMessage("This sermon has already been published")
	}
	return err
}

func (u *SermonUsecase) canManage(actor *domain.User) bool {
	return actor != nil && u.base.authorizer.EffectivePermissions(actor)[domain.PermManageSermons]
}

type CreateSermonInput struct {
	Title      string     `json:"title" validate:"required,max=200"`
	Speaker    string     `json:"speaker" validate:"required,max=100"`
	Series     *string    `json:"series" validate:"omitempty,max=200"`
	Scripture  *string    `json:"scripture" validate:"omitempty,max=200"`
	Summary    string    `json:"summary" validate:"omitempty,max=5000"`
	MediaURL   *string   `json:"media_url" validate:"omitempty,url,max=500"`
	PreachedAt time.Time `json:"preached_at" validate:"required"`
}

func (u *SermonUsecase) Create(ctx context.Context, actor *domain.User, input CreateSermonInput) (*domain.Sermon, error) {
	def := Definition[CreateSermonInput, *domain.Sermon]{
		Name: "sermon.create",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageSermons},
			ValidateInput:       true,
			AuditLog:            true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input CreateSermonInput) (*domain.Sermon, error) {
			return u.sermons.Create(ctx, &domain.Sermon{
				Title:      input.Title,
				Speaker:    input.Speaker,
				Series:     input.Series,
				Scripture:  input.Scripture,
				Summary:    input.Summary,
				MediaURL:   input.MediaURL,
				Status:     domain.SermonDraft,
				PreachedAt: input.PreachedAt,
				CreatedBy:  actor.ID,
			})
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

// GetByID serves drafts to managers only; everyone else sees a draft
// as not found. Reads of published sermons bump the view counter, but
// a failed bump never fails the read.
func (u *SermonUsecase) GetByID(ctx context.Context, actor *domain.User, id string) (*domain.Sermon, error) {
	def := Definition[string, *domain.Sermon]{
		Name: "sermon.get",
		Execute: func(ctx context.Context, op *OperationContext, id string) (*domain.Sermon, error) {
			sermon, err := u.sermons.GetByID(ctx, id)
			if err != nil {
				return nil, sermonError(err)
			}
			if sermon.Status != domain.SermonPublished && !u.canManage(actor) {
				return nil, sermonError(domain.ErrSermonNotFound)
			}
			if sermon.Status == domain.SermonPublished {
				if err := u.sermons.IncrementViewCount(ctx, sermon.ID); err != nil {
					u.base.logger.WarnContext(ctx, "view count update failed", "sermon_id", sermon.ID, "error", err)
				} else {
					sermon.ViewCount++
				}
			}
			return sermon, nil
		},
	}
	return Run(ctx, u.base, def, actor, id)
}

type ListSermonsInput struct {
	Status     domain.SermonStatus `json:"status" validate:"omitempty,oneof=draft published archived"`
	Series     string              `json:"series" validate:"omitempty,max=200"`
	Speaker    string              `json:"speaker" validate:"omitempty,max=100"`
	CursorTime *time.Time          `json:"cursor_time"`
	CursorID   string              `json:"cursor_id"`
	Limit      int                 `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// List is public. Callers without manage_sermons are pinned to the
// published catalog regardless of the status filter they send.
func (u *SermonUsecase) List(ctx context.Context, actor *domain.User, input ListSermonsInput) ([]*domain.Sermon, error) {
	def := Definition[ListSermonsInput, []*domain.Sermon]{
		Name: "sermon.list",
		Config: Config{
			ValidateInput: true,
		},
		Execute: func(ctx context.Context, op *OperationContext, input ListSermonsInput) ([]*domain.Sermon, error) {
			if input.Limit == 0 {
				input.Limit = 20
			}
			status := input.Status
			if !u.canManage(actor) {
				status = domain.SermonPublished
			}
			return u.sermons.List(ctx, repository.ListSermonsInput{
				Status:     status,
				Series:     input.Series,
				Speaker:    input.Speaker,
				CursorTime: input.CursorTime,
				CursorID:   input.CursorID,
				Limit:      input.Limit,
			})
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

type UpdateSermonInput struct {
	ID         string     `json:"-" validate:"required,uuid"`
	Title      *string    `json:"title" validate:"omitempty,max=200"`
	Speaker    *string    `json:"speaker" validate:"omitempty,max=100"`
	Series     *string    `json:"series" validate:"omitempty,max=200"`
	Scripture  *string    `json:"scripture" validate:"omitempty,max=200"`
	Summary    *string    `json:"summary" validate:"omitempty,max=5000"`
	MediaURL   *string    `json:"media_url" validate:"omitempty,url,max=500"`
	PreachedAt *time.Time `json:"preached_at"`
}

func (u *SermonUsecase) Update(ctx context.Context, actor *domain.User, input UpdateSermonInput) (*domain.Sermon, error) {
	def := Definition[UpdateSermonInput, *domain.Sermon]{
		Name: "sermon.update",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageSermons},
			ValidateInput:       true,
			AuditLog:            true,
		},
		Resource: func(ctx context.Context, input UpdateSermonInput) (authz.OwnedResource, error) {
			sermon, err := u.sermons.GetByID(ctx, input.ID)
			if err != nil {
				return nil, sermonError(err)
			}
			return sermon, nil
		},
		Execute: func(ctx context.Context, op *OperationContext, input UpdateSermonInput) (*domain.Sermon, error) {
			sermon, err := u.sermons.Update(ctx, input.ID, repository.UpdateSermonInput{
				Title:      input.Title,
				Speaker:    input.Speaker,
				Series:     input.Series,
				Scripture:  input.Scripture,
				Summary:    input.Summary,
				MediaURL:   input.MediaURL,
				PreachedAt: input.PreachedAt,
			})
			if err != nil {
				return nil, sermonError(err)
			}
			return sermon, nil
		},
	}
	return Run(ctx, u.base, def, actor, input)
}

// Publish moves a draft to the public catalog. Publishing twice is a
// conflict, not a no-op, so clients notice double submissions.
func (u *SermonUsecase) Publish(ctx context.Context, actor *domain.User, id string) (*domain.Sermon, error) {
	def := Definition[string, *domain.Sermon]{
		Name: "sermon.publish",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageSermons},
			AuditLog:            true,
		},
		Execute: func(ctx context.Context, op *OperationContext, id string) (*domain.Sermon, error) {
			if err := u.sermons.Publish(ctx, id, time.Now()); err != nil {
				return nil, sermonError(err)
			}
			sermon, err := u.sermons.GetByID(ctx, id)
			if err != nil {
				return nil, sermonError(err)
			}
			return sermon, nil
		},
	}
	return Run(ctx, u.base, def, actor, id)
}

func (u *SermonUsecase) Delete(ctx context.Context, actor *domain.User, id string) error {
	def := Definition[string, struct{}]{
		Name: "sermon.delete",
		Config: Config{
			RequireAuth:         true,
			RequiredPermissions: []domain.Permission{domain.PermManageSermons},
			AuditLog:            true,
		},
		Execute: func(ctx context.Context, op *OperationContext, id string) (struct{}, error) {
			if err := u.sermons.Delete(ctx, id); err != nil {
				return struct{}{}, sermonError(err)
			}
			return struct{}{}, nil
		},
	}
	_, err := Run(ctx, u.base, def, actor, id)
	return err
}
