package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CollectRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fedilens_collect_runs_total",
		Help: "Total collection runs",
	})
	CollectErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fedilens_collect_errors_total",
		Help: "Total collection errors",
	})
	CollectDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fedilens_collect_duration_seconds",
		Help:    "Collection run duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fedilens_api_retries_total",
		Help: "Total API retry attempts",
	}, []string{"endpoint"})
	LLMCalls = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fedilens_llm_calls_total",
		Help: "Total LLM keyword extraction calls",
	})
	LLMRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fedilens_llm_retries_total",
		Help: "Total LLM call retries",
	})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fedilens_command_runs_total",
		Help: "Total command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fedilens_command_errors_total",
		Help: "Total command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(CollectRuns, CollectErrors, CollectDuration, APIRetries, LLMCalls, LLMRetries, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveCollectDuration records a run duration
func ObserveCollectDuration(start time.Time) {
	CollectDuration.Observe(time.Since(start).Seconds())
}

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
