package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/ErlanBelekov/expense-tracker/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics

	AuthEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "expenses",
		Name:      "auth_events_total",
		Help:      "Authentication events, by event and outcome.",
	}, []string{"event", "outcome"})

	OTPsIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "expenses",
		Name:      "otps_issued_total",
		Help:      "One-time codes generated and handed to the mailer, by purpose.",
	}, []string{"purpose"})

	// Expense metrics

	ExpenseWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "expenses",
		Name:      "expense_writes_total",
		Help:      "Successful expense mutations, by operation.",
	}, []string{"op"})

	SummaryCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "expenses",
		Name:      "summary_cache_lookups_total",
		Help:      "Summary cache lookups, by result (hit, miss, error).",
	}, []string{"result"})

	// Sweeper metrics

	SweeperClearedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "expenses",
		Name:      "sweeper_otps_cleared_total",
		Help:      "Expired one-time codes removed by the sweeper.",
	})

	SweeperCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "expenses",
		Name:      "sweeper_cycle_duration_seconds",
		Help:      "Time taken for one sweeper cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	SweeperStartTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "expenses",
		Name:      "sweeper_start_time_seconds",
		Help:      "Unix timestamp when the sweeper started.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "expenses",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "route", "status_class"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "expenses",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "route", "status_class"})
)

func Register() {
	prometheus.MustRegister(
		AuthEventsTotal,
		OTPsIssuedTotal,
		ExpenseWritesTotal,
		SummaryCacheTotal,
		SweeperClearedTotal,
		SweeperCycleDuration,
		SweeperStartTime,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer returns the ops server: Prometheus metrics plus liveness and
// readiness probes. checker may be nil, in which case only /metrics is served.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	if checker != nil {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			writeHealth(w, checker.Liveness(r.Context()))
		})
		mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
			writeHealth(w, checker.Readiness(r.Context()))
		})
	}

	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	status := http.StatusOK
	if result.Status != "up" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
