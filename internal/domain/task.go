package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Task is one unit of queued background work. Delivery is at least
// once: handlers must tolerate re-execution after a worker crash.
type Task struct {
	ID      string
	Name    string
	Payload json.RawMessage

	Status      TaskStatus
	ScheduledAt time.Time

	RetryCount int
	MaxRetries int

	ClaimedAt   *time.Time
	ClaimedBy   *string // worker ID
	HeartbeatAt *time.Time
	CompletedAt *time.Time
	LastError   *string

	CreatedAt time.Time
}
