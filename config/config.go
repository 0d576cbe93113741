package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379" validate:"required"`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0" validate:"min=0,max=15"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret        string        `env:"JWT_SECRET_KEY,required" validate:"required,min=32"`
	JWTAlgorithm     string        `env:"JWT_ALGORITHM" envDefault:"HS256" validate:"required,oneof=HS256 HS384 HS512"`
	JWTIssuer        string        `env:"JWT_ISSUER" envDefault:"church-api" validate:"required"`
	JWTAudience      []string      `env:"JWT_AUDIENCE" envDefault:"church-app" validate:"required,min=1"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m" validate:"required"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"168h" validate:"required"`
	JWTResetExpiry   time.Duration `env:"JWT_RESET_EXPIRY" envDefault:"30m" validate:"required"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
	AppBaseURL   string `env:"APP_BASE_URL"   envDefault:"http://localhost:8080"`

	SentryDSN string `env:"SENTRY_DSN"`

	WorkerCount          int    `env:"WORKER_COUNT" envDefault:"5" validate:"min=1,max=100"`
	PollIntervalSec      int    `env:"POLL_INTERVAL_SEC" envDefault:"1" validate:"min=1,max=60"`
	ReapIntervalSec      int    `env:"REAP_INTERVAL_SEC" envDefault:"30" validate:"min=1,max=600"`
	StaleAfterSec        int    `env:"STALE_AFTER_SEC" envDefault:"60" validate:"min=10,max=3600"`
	EventSweepSchedule   string `env:"EVENT_SWEEP_SCHEDULE" envDefault:"*/15 * * * *" validate:"required"`
	PrayerSweepSchedule  string `env:"PRAYER_SWEEP_SCHEDULE" envDefault:"0 3 * * *" validate:"required"`
	PrayerRetentionHours int    `env:"PRAYER_RETENTION_HOURS" envDefault:"720" validate:"min=1"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SlogLevel maps the configured level onto slog's scale.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
