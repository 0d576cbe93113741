// Package tasks is the background work system: a Postgres-backed
// queue with competing workers, a heartbeat reaper and cron-driven
// maintenance sweeps. Delivery is at least once; every handler must
// tolerate re-execution.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
)

// Task names. One handler per name, registered in the worker binary.
const (
	TaskAuditRecord        = "audit.record"
	TaskEmailWelcome       = "email.welcome"
	TaskEmailPasswordReset = "email.password_reset"
)

type AuditPayload struct {
	Operation   string  `json:"operation"`
	OperationID string  `json:"operation_id"`
	ActorID     *string `json:"actor_id,omitempty"`
	Outcome     string  `json:"outcome"`
	ErrorCode   *string `json:"error_code,omitempty"`
	DurationMS  int64   `json:"duration_ms"`
}

type WelcomeEmailPayload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

type PasswordResetEmailPayload struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	ResetToken string `json:"reset_token"`
}

type enqueueOptions struct {
	runAt      time.Time
	maxRetries int
}

type Option func(*enqueueOptions)

// RunAt defers the task until t.
func RunAt(t time.Time) Option {
	return func(o *enqueueOptions) { o.runAt = t }
}

func WithMaxRetries(n int) Option {
	return func(o *enqueueOptions) { o.maxRetries = n }
}

type Queue struct {
	repo   repository.TaskRepository
	logger *slog.Logger
}

func NewQueue(repo repository.TaskRepository, logger *slog.Logger) *Queue {
	return &Queue{repo: repo, logger: logger}
}

// Enqueue inserts a pending task. The payload is marshalled once here;
// handlers unmarshal it back by task name.
func (q *Queue) Enqueue(ctx context.Context, name string, payload any, opts ...Option) (*domain.Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload for %s: %w", name, err)
	}

	options := enqueueOptions{runAt: time.Now(), maxRetries: 3}
	for _, opt := range opts {
		opt(&options)
	}

	task := &domain.Task{
		Name:        name,
		Payload:     raw,
		Status:      domain.TaskPending,
		ScheduledAt: options.runAt,
		MaxRetries:  options.maxRetries,
	}
	created, err := q.repo.Enqueue(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", name, err)
	}

	q.logger.DebugContext(ctx, "task enqueued",
		slog.String("task_id", created.ID),
		slog.String("task_name", name),
		slog.Time("scheduled_at", created.ScheduledAt),
	)
	return created, nil
}
