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
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/config"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/auth"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/authz"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/health"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/infrastructure/postgres"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/infrastructure/redisstore"
	ctxlog "github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/log"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/metrics"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/tasks"
	httptransport "github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/transport/http"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/transport/http/handler"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg)

	// Count every constructed app error; server-side failures also go
	// to Sentry when it is configured. The transport only ever sees the
	// sanitized envelope.
	apperror.SetCaptureHook(func(e *apperror.Error) {
		metrics.AppErrorsTotal.WithLabelValues(e.Kind.String(), e.Code).Inc()
		if cfg.SentryDSN != "" && e.Status >= http.StatusInternalServerError {
			sentry.CaptureException(e)
		}
	})
	if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()
	db := postgres.NewDB(pool)

	redisClient, err := redisstore.Open(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		stop()
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	manager, err := auth.NewManager(auth.Config{
		Secret:        []byte(cfg.JWTSecret),
		Algorithm:     cfg.JWTAlgorithm,
		Issuer:        cfg.JWTIssuer,
		Audience:      cfg.JWTAudience,
		AccessExpiry:  cfg.JWTAccessExpiry,
		RefreshExpiry: cfg.JWTRefreshExpiry,
		ResetExpiry:   cfg.JWTResetExpiry,
	}, redisstore.NewTokenStore(redisClient))
	if err != nil {
		stop()
		log.Fatalf("auth: %v", err)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	prayerRepo := postgres.NewPrayerRepository(db)
	donationRepo := postgres.NewDonationRepository(db)
	sermonRepo := postgres.NewSermonRepository(db)
	taskRepo := postgres.NewTaskRepository(db)

	queue := tasks.NewQueue(taskRepo, logger)
	base := usecase.NewBase(logger, usecase.NewValidator(), authz.NewAuthorizer(), db, queue)

	authUsecase := usecase.NewAuthUsecase(base, userRepo, manager)
	userUsecase := usecase.NewUserUsecase(base, userRepo)
	eventUsecase := usecase.NewEventUsecase(base, eventRepo)
	prayerUsecase := usecase.NewPrayerUsecase(base, prayerRepo)
	donationUsecase := usecase.NewDonationUsecase(base, donationRepo)
	sermonUsecase := usecase.NewSermonUsecase(base, sermonRepo)

	metrics.Register()
	checker := health.NewChecker(logger,
		health.Dependency{Name: "postgres", Pinger: pool},
		health.Dependency{Name: "redis", Pinger: health.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})},
	)

	cookieSecure := cfg.Env != "local"
	router := httptransport.NewRouter(logger, manager, userRepo, httptransport.Handlers{
		Auth:     handler.NewAuthHandler(authUsecase, logger, cookieSecure),
		User:     handler.NewUserHandler(userUsecase, logger),
		Event:    handler.NewEventHandler(eventUsecase, logger),
		Prayer:   handler.NewPrayerHandler(prayerUsecase, logger),
		Donation: handler.NewDonationHandler(donationUsecase, logger),
		Sermon:   handler.NewSermonHandler(sermonUsecase, logger),
		Health:   handler.NewHealthHandler(checker),
	})

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker.HTTPHandler())

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
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
