package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/metrics"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
)

// Reaper returns tasks whose worker stopped heartbeating to pending,
// or fails them once the retry budget is spent. This is what makes
// delivery at least once across worker crashes.
type Reaper struct {
	repo             repository.TaskRepository
	logger           *slog.Logger
	interval         time.Duration
	heartbeatTimeout time.Duration
}

func NewReaper(repo repository.TaskRepository, logger *slog.Logger, interval, heartbeatTimeout time.Duration) *Reaper {
	return &Reaper{
		repo:             repo,
		logger:           logger.With("component", "reaper"),
		interval:         interval,
		heartbeatTimeout: heartbeatTimeout,
	}
}

func (r *Reaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reaper started", "interval", r.interval, "heartbeat_timeout", r.heartbeatTimeout)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper shut down")
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

func (r *Reaper) reap(ctx context.Context) {
	staleCutoff := time.Now().Add(-r.heartbeatTimeout)

	rescued, err := r.repo.RescheduleStale(ctx, staleCutoff, 100)
	if err != nil {
		r.logger.Error("reschedule stale tasks", "error", err)
	} else if rescued > 0 {
		metrics.ReaperRescuedTotal.Add(float64(rescued))
		r.logger.Info("rescheduled stale tasks", "count", rescued)
	}

	failed, err := r.repo.FailStale(ctx, staleCutoff, 100)
	if err != nil {
		r.logger.Error("fail stale tasks", "error", err)
	} else if failed > 0 {
		r.logger.Warn("permanently failed stale tasks", "count", failed)
	}
}
