package repository

import (
	"context"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
)

type TaskRepository interface {
	Enqueue(ctx context.Context, task *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// Claim atomically moves up to limit due pending tasks to running
	// for this worker. Uses SKIP LOCKED so concurrent workers never
	// claim the same row.
	Claim(ctx context.Context, workerID string, limit int) ([]*domain.Task, error)
	UpdateHeartbeat(ctx context.Context, taskID string) error
	Complete(ctx context.Context, taskID string) error
	Fail(ctx context.Context, taskID string, lastError string) error
	Reschedule(ctx context.Context, taskID string, lastError string, retryAt time.Time) error

	// Reaper methods recover tasks from crashed workers.
	RescheduleStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error)
	FailStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error)
}
