package health_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/health"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/metrics"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestChecker(pg, rd health.Pinger) *health.Checker {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return health.NewChecker(logger,
		health.Dependency{Name: "postgres", Pinger: pg},
		health.Dependency{Name: "redis", Pinger: rd},
	)
}

func TestLiveness_AlwaysUp(t *testing.T) {
	c := newTestChecker(&mockPinger{err: errors.New("db down")}, &mockPinger{})

	result := c.Liveness(context.Background())
	if result.Status != "up" {
		t.Fatalf("expected status up, got %s", result.Status)
	}
	if result.Checks != nil {
		t.Fatalf("expected no checks, got %v", result.Checks)
	}
}

func TestReadiness_AllUp(t *testing.T) {
	c := newTestChecker(&mockPinger{}, &mockPinger{})

	result := c.Readiness(context.Background())
	if result.Status != "up" {
		t.Fatalf("expected status up, got %s", result.Status)
	}
	for _, name := range []string{"postgres", "redis"} {
		check, ok := result.Checks[name]
		if !ok {
			t.Fatalf("missing %s check", name)
		}
		if check.Status != "up" {
			t.Fatalf("expected %s up, got %s", name, check.Status)
		}
	}

	if got := testutil.ToFloat64(metrics.DependencyUp.WithLabelValues("postgres")); got != 1 {
		t.Fatalf("expected postgres gauge 1, got %f", got)
	}
}

func TestReadiness_OneDown(t *testing.T) {
	c := newTestChecker(&mockPinger{err: errors.New("connection refused")}, &mockPinger{})

	result := c.Readiness(context.Background())
	if result.Status != "down" {
		t.Fatalf("expected status down, got %s", result.Status)
	}
	pg := result.Checks["postgres"]
	if pg.Status != "down" {
		t.Fatalf("expected postgres down, got %s", pg.Status)
	}
	if pg.Error == "" {
		t.Fatal("expected error message")
	}
	rd := result.Checks["redis"]
	if rd.Status != "up" {
		t.Fatalf("expected redis up, got %s", rd.Status)
	}

	if got := testutil.ToFloat64(metrics.DependencyUp.WithLabelValues("postgres")); got != 0 {
		t.Fatalf("expected postgres gauge 0, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.DependencyUp.WithLabelValues("redis")); got != 1 {
		t.Fatalf("expected redis gauge 1, got %f", got)
	}
}
