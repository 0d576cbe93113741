package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, name, payload, status, scheduled_at, retry_count, max_retries,
	claimed_at, claimed_by, heartbeat_at, completed_at, last_error, created_at`

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Enqueue(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	query := `
		INSERT INTO tasks (name, payload, status, scheduled_at, max_retries)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + taskColumns

	row := r.db.q(ctx).QueryRow(ctx, query,
		task.Name,
		task.Payload,
		task.Status,
		task.ScheduledAt,
		task.MaxRetries,
	)
	return scanTask(row)
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.db.q(ctx).QueryRow(ctx, query, id))
}

func (r *TaskRepository) Claim(ctx context.Context, workerID string, limit int) ([]*domain.Task, error) {
	// FOR UPDATE SKIP LOCKED prevents double-execution across workers.
	query := `
		UPDATE tasks
		SET    status       = 'running',
		       claimed_at   = NOW(),
		       claimed_by   = $1,
		       heartbeat_at = NOW()
		WHERE id IN (
			SELECT id FROM tasks
			WHERE  status       = 'pending'
			  AND  scheduled_at <= NOW()
			ORDER BY scheduled_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + taskColumns

	rows, err := r.db.q(ctx).Query(ctx, query, workerID, limit)
	if err != nil {
		return nil, fmt.Errorf("claim tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) UpdateHeartbeat(ctx context.Context, taskID string) error {
	_, err := r.db.q(ctx).Exec(ctx,
		`UPDATE tasks SET heartbeat_at = NOW()
		WHERE id = $1 AND status = 'running'`, taskID)
	return err
}

func (r *TaskRepository) Complete(ctx context.Context, taskID string) error {
	_, err := r.db.q(ctx).Exec(ctx,
		`UPDATE tasks SET status = 'completed', completed_at = NOW()
		WHERE id = $1`, taskID)
	return err
}

func (r *TaskRepository) Fail(ctx context.Context, taskID string, lastError string) error {
	_, err := r.db.q(ctx).Exec(ctx,
		`UPDATE tasks SET status = 'failed', last_error = $2
		WHERE id = $1`, taskID, lastError)
	return err
}

func (r *TaskRepository) Reschedule(ctx context.Context, taskID string, lastError string, retryAt time.Time) error {
	_, err := r.db.q(ctx).Exec(ctx,
		`UPDATE tasks
		SET    status       = 'pending',
		       retry_count  = retry_count + 1,
		       last_error   = $2,
		       scheduled_at = $3,
		       claimed_at   = NULL,
		       claimed_by   = NULL,
		       heartbeat_at = NULL
		WHERE id = $1`, taskID, lastError, retryAt)
	return err
}

func (r *TaskRepository) RescheduleStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error) {
	tag, err := r.db.q(ctx).Exec(ctx, `
		UPDATE tasks
		SET    status       = 'pending',
		       retry_count  = retry_count + 1,
		       last_error   = 'worker timeout',
		       claimed_at   = NULL,
		       claimed_by   = NULL,
		       heartbeat_at = NULL
		WHERE id IN (
			SELECT id FROM tasks
			WHERE  status       = 'running'
			  AND  heartbeat_at < $1
			  AND  retry_count  < max_retries
			ORDER BY heartbeat_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`, staleCutoff, limit)
	return int(tag.RowsAffected()), err
}

func (r *TaskRepository) FailStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error) {
	tag, err := r.db.q(ctx).Exec(ctx, `
		UPDATE tasks
		SET    status     = 'failed',
		       last_error = 'worker timeout: max retries exceeded'
		WHERE id IN (
			SELECT id FROM tasks
			WHERE  status       = 'running'
			  AND  heartbeat_at < $1
			  AND  retry_count  >= max_retries
			ORDER BY heartbeat_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`, staleCutoff, limit)
	return int(tag.RowsAffected()), err
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.Name, &t.Payload, &t.Status, &t.ScheduledAt,
		&t.RetryCount, &t.MaxRetries, &t.ClaimedAt, &t.ClaimedBy,
		&t.HeartbeatAt, &t.CompletedAt, &t.LastError, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &t, nil
}
