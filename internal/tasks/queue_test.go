package tasks_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/tasks"
)

// ---- fakes ----

type fakeTaskRepo struct {
	enqueue func(ctx context.Context, task *domain.Task) (*domain.Task, error)
}

func (r *fakeTaskRepo) Enqueue(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	return r.enqueue(ctx, task)
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return nil, domain.ErrTaskNotFound
}

func (r *fakeTaskRepo) Claim(ctx context.Context, workerID string, limit int) ([]*domain.Task, error) {
	return nil, nil
}

func (r *fakeTaskRepo) UpdateHeartbeat(ctx context.Context, taskID string) error { return nil }
func (r *fakeTaskRepo) Complete(ctx context.Context, taskID string) error        { return nil }
func (r *fakeTaskRepo) Fail(ctx context.Context, taskID string, lastError string) error {
	return nil
}

func (r *fakeTaskRepo) Reschedule(ctx context.Context, taskID string, lastError string, retryAt time.Time) error {
	return nil
}

func (r *fakeTaskRepo) RescheduleStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error) {
	return 0, nil
}

func (r *fakeTaskRepo) FailStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error) {
	return 0, nil
}

// ---- helpers ----

func newTestQueue(repo *fakeTaskRepo) *tasks.Queue {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tasks.NewQueue(repo, logger)
}

// ---- Enqueue ----

func TestEnqueue_Defaults(t *testing.T) {
	var stored *domain.Task
	repo := &fakeTaskRepo{
		enqueue: func(_ context.Context, task *domain.Task) (*domain.Task, error) {
			task.ID = "task-1"
			stored = task
			return task, nil
		},
	}
	queue := newTestQueue(repo)

	before := time.Now()
	payload := tasks.WelcomeEmailPayload{UserID: "u1", Email: "thiri@example.com", FirstName: "Thiri"}
	created, err := queue.Enqueue(context.Background(), tasks.TaskEmailWelcome, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now()

	if created.ID != "task-1" {
		t.Errorf("id = %q, want task-1", created.ID)
	}
	if stored.Name != tasks.TaskEmailWelcome {
		t.Errorf("name = %q, want %q", stored.Name, tasks.TaskEmailWelcome)
	}
	if stored.Status != domain.TaskPending {
		t.Errorf("status = %q, want pending", stored.Status)
	}
	if stored.MaxRetries != 3 {
		t.Errorf("max retries = %d, want 3", stored.MaxRetries)
	}
	if stored.ScheduledAt.Before(before) || stored.ScheduledAt.After(after) {
		t.Errorf("scheduled_at = %v, want between %v and %v", stored.ScheduledAt, before, after)
	}

	var got tasks.WelcomeEmailPayload
	if err := json.Unmarshal(stored.Payload, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got != payload {
		t.Errorf("payload round trip = %+v, want %+v", got, payload)
	}
}

func TestEnqueue_Options(t *testing.T) {
	var stored *domain.Task
	repo := &fakeTaskRepo{
		enqueue: func(_ context.Context, task *domain.Task) (*domain.Task, error) {
			stored = task
			return task, nil
		},
	}
	queue := newTestQueue(repo)

	runAt := time.Now().Add(2 * time.Hour)
	_, err := queue.Enqueue(context.Background(), tasks.TaskAuditRecord, tasks.AuditPayload{Operation: "auth.login"},
		tasks.RunAt(runAt), tasks.WithMaxRetries(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !stored.ScheduledAt.Equal(runAt) {
		t.Errorf("scheduled_at = %v, want %v", stored.ScheduledAt, runAt)
	}
	if stored.MaxRetries != 5 {
		t.Errorf("max retries = %d, want 5", stored.MaxRetries)
	}
}

func TestEnqueue_UnmarshallablePayload(t *testing.T) {
	repo := &fakeTaskRepo{
		enqueue: func(_ context.Context, task *domain.Task) (*domain.Task, error) {
			t.Error("repo should not be reached when the payload cannot be marshalled")
			return task, nil
		},
	}
	queue := newTestQueue(repo)

	_, err := queue.Enqueue(context.Background(), tasks.TaskAuditRecord, make(chan int))
	if err == nil {
		t.Fatal("expected a marshal error")
	}
}
