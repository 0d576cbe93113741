package tasks

import (
	"context"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
)

// Handler processes one claimed task. Handlers must be idempotent:
// a crashed worker's tasks are re-delivered by the reaper.
type Handler func(ctx context.Context, task *domain.Task) error

// Result is the recorded outcome of one handler invocation.
type Result struct {
	Success  bool
	Error    error
	TaskName string
	TaskID   string
}

type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to a task name. Registration happens once
// at startup before the worker runs; later calls replace the handler.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

func (r *Registry) handler(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}
