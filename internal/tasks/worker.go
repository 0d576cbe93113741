package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/metrics"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
)

type Worker struct {
	id           string
	repo         repository.TaskRepository
	registry     *Registry
	logger       *slog.Logger
	pollInterval time.Duration
	concurrency  int
	sem          chan struct{}
}

func NewWorker(
	repo repository.TaskRepository,
	registry *Registry,
	logger *slog.Logger,
	pollInterval time.Duration,
	concurrency int,
) *Worker {
	hostname, _ := os.Hostname()
	id := fmt.Sprintf("%s-%d", hostname, os.Getpid())
	return &Worker{
		id:           id,
		repo:         repo,
		registry:     registry,
		logger:       logger.With("worker_id", id),
		pollInterval: pollInterval,
		concurrency:  concurrency,
		sem:          make(chan struct{}, concurrency),
	}
}

func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker started", "concurrency", w.concurrency)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shut down")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) {
	available := cap(w.sem) - len(w.sem)
	if available == 0 {
		return
	}

	claimed, err := w.repo.Claim(ctx, w.id, available)
	if err != nil {
		w.logger.Error("claim tasks", "error", err)
		return
	}
	if len(claimed) == 0 {
		return
	}

	w.logger.Info("claimed tasks", "count", len(claimed), "slots_used", len(w.sem)+len(claimed), "slots_total", cap(w.sem))

	for _, task := range claimed {
		w.sem <- struct{}{}
		go func(t *domain.Task) {
			metrics.TasksInFlight.Inc()
			defer metrics.TasksInFlight.Dec()
			defer func() { <-w.sem }()
			w.runTask(ctx, t)
		}(task)
	}
}

func (w *Worker) runTask(ctx context.Context, task *domain.Task) {
	metrics.TaskPickupLatency.Observe(time.Since(task.CreatedAt).Seconds())

	heartbeatCtx, cancelHeartbeat := context.WithCancel(ctx)
	defer cancelHeartbeat()
	go w.heartbeat(heartbeatCtx, task.ID)

	w.logger.Info("executing task", "task_id", task.ID, "task_name", task.Name, "attempt", task.RetryCount+1)

	startedAt := time.Now()
	result := w.invoke(ctx, task)
	duration := time.Since(startedAt)
	metrics.TaskDuration.WithLabelValues(task.Name).Observe(duration.Seconds())

	if result.Success {
		if err := w.repo.Complete(ctx, task.ID); err != nil {
			w.logger.Error("mark task complete", "task_id", task.ID, "error", err)
		}
		metrics.TasksCompletedTotal.WithLabelValues("success").Inc()
		w.logger.Info("task completed", "task_id", task.ID, "task_name", task.Name, "duration", duration)
		return
	}

	errMsg := result.Error.Error()

	if ShouldRetry(result.Error, task.RetryCount, task.MaxRetries) {
		retryAt := time.Now().Add(retryDelay(task.RetryCount))
		if err := w.repo.Reschedule(ctx, task.ID, errMsg, retryAt); err != nil {
			w.logger.Error("reschedule task", "task_id", task.ID, "error", err)
		}
		metrics.TasksCompletedTotal.WithLabelValues("retry").Inc()
		w.logger.Warn("task failed, will retry",
			"task_id", task.ID,
			"task_name", task.Name,
			"error", errMsg,
			"attempt", task.RetryCount+1,
			"max_retries", task.MaxRetries,
			"retry_at", retryAt,
		)
	} else {
		if err := w.repo.Fail(ctx, task.ID, errMsg); err != nil {
			w.logger.Error("mark task failed", "task_id", task.ID, "error", err)
		}
		metrics.TasksCompletedTotal.WithLabelValues("failed").Inc()
		w.logger.Warn("task permanently failed", "task_id", task.ID, "task_name", task.Name, "error", errMsg)
	}
}

// invoke dispatches to the registered handler. A handler panic is
// converted into a failure so one bad task cannot take the worker
// down.
func (w *Worker) invoke(ctx context.Context, task *domain.Task) (result Result) {
	result = Result{TaskName: task.Name, TaskID: task.ID}

	handler, ok := w.registry.handler(task.Name)
	if !ok {
		result.Error = fmt.Errorf("no handler registered for task %q", task.Name)
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Errorf("task handler panic: %v", r)
		}
	}()

	if err := handler(ctx, task); err != nil {
		result.Error = err
		return result
	}
	result.Success = true
	return result
}

func (w *Worker) heartbeat(ctx context.Context, taskID string) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.repo.UpdateHeartbeat(ctx, taskID); err != nil {
				w.logger.Warn("heartbeat failed", "task_id", taskID, "error", err)
			}
		}
	}
}

// retryDelay is exponential from a 30s base, capped at an hour, with
// jitter so retries from one incident spread out.
func retryDelay(retryCount int) time.Duration {
	base := 30 * time.Second
	delay := time.Duration(float64(base) * math.Pow(2, float64(retryCount)))
	delay = min(delay, time.Hour)
	jitter := time.Duration(rand.Int63n(int64(delay/2))) - delay/4
	return delay + jitter
}
