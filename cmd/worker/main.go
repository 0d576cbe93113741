package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/lmittmann/tint"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/config"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/email"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/health"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/infrastructure/postgres"
	ctxlog "github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/log"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/metrics"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg)

	apperror.SetCaptureHook(func(e *apperror.Error) {
		metrics.AppErrorsTotal.WithLabelValues(e.Kind.String(), e.Code).Inc()
		if cfg.SentryDSN != "" && e.Status >= http.StatusInternalServerError {
			sentry.CaptureException(e)
		}
	})
	if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()
	db := postgres.NewDB(pool)

	logger.Info("db connected")

	taskRepo := postgres.NewTaskRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	prayerRepo := postgres.NewPrayerRepository(db)

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	registry := tasks.NewRegistry()
	tasks.RegisterBuiltins(registry, auditRepo, sender, cfg.AppBaseURL)

	worker := tasks.NewWorker(
		taskRepo,
		registry,
		logger,
		time.Duration(cfg.PollIntervalSec)*time.Second,
		cfg.WorkerCount,
	)
	go worker.Start(ctx)

	reaper := tasks.NewReaper(
		taskRepo,
		logger,
		time.Duration(cfg.ReapIntervalSec)*time.Second,
		time.Duration(cfg.StaleAfterSec)*time.Second,
	)
	go reaper.Start(ctx)

	sweeper := tasks.NewSweeper(logger)
	if err := sweeper.Add(tasks.Sweep{
		Name:     "complete_past_events",
		Schedule: cfg.EventSweepSchedule,
		Run: func(ctx context.Context) (int, error) {
			return eventRepo.CompletePast(ctx, time.Now())
		},
	}); err != nil {
		stop()
		log.Fatalf("sweeper: %v", err)
	}
	if err := sweeper.Add(tasks.Sweep{
		Name:     "archive_answered_prayers",
		Schedule: cfg.PrayerSweepSchedule,
		Run: func(ctx context.Context) (int, error) {
			cutoff := time.Now().Add(-time.Duration(cfg.PrayerRetentionHours) * time.Hour)
			return prayerRepo.ArchiveAnswered(ctx, cutoff)
		},
	}); err != nil {
		stop()
		log.Fatalf("sweeper: %v", err)
	}
	go sweeper.Start(ctx)

	metrics.Register()
	checker := health.NewChecker(logger,
		health.Dependency{Name: "postgres", Pinger: pool},
	)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker.HTTPHandler())
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("worker shut down")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var console slog.Handler
	if cfg.Env == "local" {
		console = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      cfg.SlogLevel(),
			TimeFormat: time.Kitchen,
		})
	} else {
		console = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		})
	}

	inner := console
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
			EnableLogs:  true,
		}); err != nil {
			slog.New(console).Warn("sentry init failed, console only", "error", err)
		} else {
			sentryHandler := sentryslog.Option{
				EventLevel: []slog.Level{slog.LevelError},
				LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
			}.NewSentryHandler(context.Background())
			inner = ctxlog.NewMultiHandler(console, sentryHandler)
		}
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
