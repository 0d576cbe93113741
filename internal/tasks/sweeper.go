package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/metrics"
)

// Sweep is one periodic maintenance pass. Run returns how many rows it
// touched.
type Sweep struct {
	Name     string
	Schedule string // standard 5-field cron expression
	Run      func(ctx context.Context) (int, error)
}

type sweepState struct {
	Sweep
	schedule cron.Schedule
	next     time.Time
}

// Sweeper fires sweeps on their cron schedules. One goroutine checks
// all schedules; sweeps run inline, so a slow sweep delays the others
// rather than overlapping itself.
type Sweeper struct {
	logger *slog.Logger
	sweeps []sweepState
}

func NewSweeper(logger *slog.Logger) *Sweeper {
	return &Sweeper{logger: logger.With("component", "sweeper")}
}

func (s *Sweeper) Add(sweep Sweep) error {
	sched, err := cron.ParseStandard(sweep.Schedule)
	if err != nil {
		return fmt.Errorf("parse schedule %q for sweep %s: %w", sweep.Schedule, sweep.Name, err)
	}
	s.sweeps = append(s.sweeps, sweepState{
		Sweep:    sweep,
		schedule: sched,
		next:     sched.Next(time.Now()),
	})
	return nil
}

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	s.logger.Info("sweeper started", "sweeps", len(s.sweeps))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper shut down")
			return
		case <-ticker.C:
			s.fireDue(ctx)
		}
	}
}

func (s *Sweeper) fireDue(ctx context.Context) {
	now := time.Now()
	for i := range s.sweeps {
		sw := &s.sweeps[i]
		if now.Before(sw.next) {
			continue
		}
		// Skip any runs missed while the process was down; the next
		// fire time is always in the future.
		next := sw.schedule.Next(now)
		for !next.After(now) {
			next = sw.schedule.Next(next)
		}
		sw.next = next

		affected, err := sw.Run(ctx)
		if err != nil {
			metrics.SweepRunsTotal.WithLabelValues(sw.Name, "failure").Inc()
			s.logger.Error("sweep failed", "sweep", sw.Name, "error", err)
			continue
		}
		metrics.SweepRunsTotal.WithLabelValues(sw.Name, "success").Inc()
		if affected > 0 {
			s.logger.Info("sweep completed", "sweep", sw.Name, "affected", affected, "next_run", sw.next)
		}
	}
}
