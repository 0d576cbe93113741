package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "church",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "church",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Application errors

	AppErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "church",
		Name:      "app_errors_total",
		Help:      "Application errors constructed, by kind and code.",
	}, []string{"kind", "code"})

	// Auth metrics

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "church",
		Name:      "logins_total",
		Help:      "Login attempts, by outcome.",
	}, []string{"outcome"})

	TokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "church",
		Name:      "tokens_issued_total",
		Help:      "JWTs issued, by token type.",
	}, []string{"type"})

	// Task queue metrics

	TaskPickupLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "church",
		Name:      "task_pickup_latency_seconds",
		Help:      "Time from task creation to worker claiming it.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	TaskDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "church",
		Name:      "task_duration_seconds",
		Help:      "Duration of task handler execution.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"name"})

	TasksInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "church",
		Name:      "worker_tasks_in_flight",
		Help:      "Number of tasks currently being executed by the worker.",
	})

	TasksCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "church",
		Name:      "tasks_completed_total",
		Help:      "Total tasks finished, by outcome.",
	}, []string{"outcome"})

	ReaperRescuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "church",
		Name:      "reaper_rescued_total",
		Help:      "Total stale tasks returned to pending by the reaper.",
	})

	SweepRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "church",
		Name:      "sweep_runs_total",
		Help:      "Maintenance sweep executions, by sweep and outcome.",
	}, []string{"sweep", "outcome"})

	// Health metrics

	DependencyUp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "church",
		Name:      "dependency_up",
		Help:      "Whether a dependency responded to the last health ping.",
	}, []string{"dependency"})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		AppErrorsTotal,
		LoginsTotal,
		TokensIssuedTotal,
		TaskPickupLatency,
		TaskDuration,
		TasksInFlight,
		TasksCompletedTotal,
		ReaperRescuedTotal,
		SweepRunsTotal,
		DependencyUp,
	)
}

// NewServer serves /metrics on its own port. A non-nil health handler
// is mounted under /health/ so worker binaries without the gin stack
// still answer probes.
func NewServer(addr string, health http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if health != nil {
		mux.Handle("/health/", health)
	}
	return &http.Server{Addr: addr, Handler: mux}
}
