// Package usecase holds the application operations. Every operation
// runs through the same ordered pipeline: authenticate, authorize,
// validate input, execute, validate output, finalize. The pipeline is
// the only place raw dependency errors are wrapped, so transports only
// ever observe app errors.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/authz"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/tasks"
)

// Config declares the lifecycle switches of one operation.
type Config struct {
	RequireAuth         bool
	RequiredRoles       []domain.Role
	RequiredPermissions []domain.Permission

	ValidateInput  bool
	ValidateOutput bool

	// Transactional wraps Execute in a database transaction; partial
	// writes are never observable.
	Transactional bool

	// AuditLog enqueues an audit record after the operation, best
	// effort.
	AuditLog bool
}

// TxRunner wraps fn in a database transaction. Implemented by
// postgres.DB.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TaskEnqueuer is the slice of the task queue the pipeline needs.
// Kept narrow so tests can fake it.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...tasks.Option) (*domain.Task, error)
}

// Base carries the dependencies shared by every operation.
type Base struct {
	logger     *slog.Logger
	validate   *validator.Validate
	authorizer *authz.Authorizer
	tx         TxRunner
	queue      TaskEnqueuer
}

func NewBase(logger *slog.Logger, validate *validator.Validate, authorizer *authz.Authorizer, tx TxRunner, queue TaskEnqueuer) *Base {
	return &Base{
		logger:     logger,
		validate:   validate,
		authorizer: authorizer,
		tx:         tx,
		queue:      queue,
	}
}

// OperationContext identifies one pipeline run. The id ties together
// logs, wrapped errors and the audit record of a single operation.
type OperationContext struct {
	OperationID string
	Operation   string
	Actor       *domain.User
	StartedAt   time.Time
}

// Definition is one operation: its name, lifecycle config, and hooks.
// Only Execute is mandatory. Resource loads the target entity when
// authorization depends on ownership; definitions built as closures
// can capture the loaded entity for Execute to reuse.
type Definition[I, O any] struct {
	Name   string
	Config Config

	Resource       func(ctx context.Context, input I) (authz.OwnedResource, error)
	ValidateInput  func(ctx context.Context, input I) error
	Execute        func(ctx context.Context, op *OperationContext, input I) (O, error)
	ValidateOutput func(ctx context.Context, output O) error
}

const (
	stepAuthenticate   = "authenticate"
	stepAuthorize      = "authorize"
	stepValidateInput  = "validate_input"
	stepExecute        = "execute"
	stepValidateOutput = "validate_output"
)

// Run executes def through the pipeline. App errors raised by hooks
// propagate unchanged; any other error is wrapped once as internal.
// Finalize always runs, success or failure.
func Run[I, O any](ctx context.Context, base *Base, def Definition[I, O], actor *domain.User, input I) (O, error) {
	var zero O

	op := &OperationContext{
		OperationID: uuid.NewString(),
		Operation:   def.Name,
		Actor:       actor,
		StartedAt:   time.Now(),
	}

	fail := func(step string, err error) (O, error) {
		appErr := apperror.From(err)

		level := slog.LevelWarn
		if appErr.Kind == apperror.KindInternal || appErr.Kind == apperror.KindIntegration {
			level = slog.LevelError
		}
		base.logger.Log(ctx, level, "operation failed",
			slog.String("operation", def.Name),
			slog.String("operation_id", op.OperationID),
			slog.String("step", step),
			slog.String("code", appErr.Code),
			slog.Any("error", err),
		)

		base.finalize(ctx, def.Name, def.Config, op, appErr)
		return zero, appErr
	}

	if def.Config.RequireAuth && actor == nil {
		return fail(stepAuthenticate, apperror.Authentication(apperror.CodeAuthFailed, "authentication required"))
	}

	var resource authz.OwnedResource
	if def.Resource != nil {
		r, err := def.Resource(ctx, input)
		if err != nil {
			return fail(stepAuthorize, err)
		}
		resource = r
	}
	requirements := authz.Requirements{
		RequireAuth:         def.Config.RequireAuth,
		RequiredRoles:       def.Config.RequiredRoles,
		RequiredPermissions: def.Config.RequiredPermissions,
	}
	if !base.authorizer.IsAuthorized(actor, requirements, resource) {
		return fail(stepAuthorize, apperror.Authorization(
			apperror.CodePermissionDenied,
			fmt.Sprintf("not allowed to perform %s", def.Name),
		))
	}

	if def.Config.ValidateInput {
		if err := base.validateInput(ctx, input); err != nil {
			return fail(stepValidateInput, err)
		}
		if def.ValidateInput != nil {
			if err := def.ValidateInput(ctx, input); err != nil {
				return fail(stepValidateInput, err)
			}
		}
	}

	var output O
	execute := func(ctx context.Context) error {
		var err error
		output, err = def.Execute(ctx, op, input)
		return err
	}
	var err error
	if def.Config.Transactional {
		err = base.tx.InTx(ctx, execute)
	} else {
		err = execute(ctx)
	}
	if err != nil {
		return fail(stepExecute, err)
	}

	if def.Config.ValidateOutput && def.ValidateOutput != nil {
		if err := def.ValidateOutput(ctx, output); err != nil {
			return fail(stepValidateOutput, err)
		}
	}

	base.finalize(ctx, def.Name, def.Config, op, nil)
	return output, nil
}

// validateInput runs the validator tags over the input struct and
// folds failures into one validation error with per-field messages.
func (b *Base) validateInput(ctx context.Context, input any) error {
	err := b.validate.StructCtx(ctx, input)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		// Not a struct, nothing to validate.
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fieldErrors[fe.Field()] = fieldMessage(fe)
	}
	return apperror.Validation(apperror.CodeValidationError, "input validation failed").
		WithUserMessage("Some fields are missing or invalid").
		WithDetail("field_errors", fieldErrors)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	case "uuid":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}

// finalize writes the completion log and, when configured, hands an
// audit record to the task queue. Audit failures are logged and
// dropped; they never affect the operation outcome.
func (b *Base) finalize(ctx context.Context, name string, cfg Config, op *OperationContext, appErr *apperror.Error) {
	duration := time.Since(op.StartedAt)

	outcome := "success"
	var errorCode *string
	if appErr != nil {
		outcome = "failure"
		errorCode = &appErr.Code
	}

	b.logger.InfoContext(ctx, "operation finished",
		slog.String("operation", name),
		slog.String("operation_id", op.OperationID),
		slog.String("outcome", outcome),
		slog.Duration("duration", duration),
	)

	if !cfg.AuditLog || b.queue == nil {
		return
	}

	var actorID *string
	if op.Actor != nil {
		actorID = &op.Actor.ID
	}
	payload := tasks.AuditPayload{
		Operation:   name,
		OperationID: op.OperationID,
		ActorID:     actorID,
		Outcome:     outcome,
		ErrorCode:   errorCode,
		DurationMS:  duration.Milliseconds(),
	}
	if _, err := b.queue.Enqueue(ctx, tasks.TaskAuditRecord, payload); err != nil {
		b.logger.WarnContext(ctx, "audit enqueue failed",
			slog.String("operation", name),
			slog.Any("error", err),
		)
	}
}

// NewValidator builds the validator used for the validate_input step.
// Field names in error details follow the json tag, matching what the
// client actually sent.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}
