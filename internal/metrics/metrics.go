// Package metrics exposes pipeline counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rivalwatch"

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	insightsEmitted *prometheus.CounterVec
	moduleFailures  *prometheus.CounterVec
	jobsProcessed   *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	briefingLookups *prometheus.CounterVec
	pushes          *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.insightsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "insights_emitted_total",
		Help:      "Insights emitted by rule module",
	}, []string{"module"})
	m.moduleFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rule_module_failures_total",
		Help:      "Rule modules that panicked or failed and were skipped",
	}, []string{"module"})
	m.jobsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_processed_total",
		Help:      "Jobs processed by type and outcome",
	}, []string{"job_type", "status"})
	m.jobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Time spent running a job",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job_type"})
	m.briefingLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "briefing_cache_lookups_total",
		Help:      "Briefing cache lookups by result",
	}, []string{"result"})
	m.pushes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "insight_pushes_total",
		Help:      "Critical insights pushed to operator chats by status",
	}, []string{"status"})

	m.registry.MustRegister(
		m.insightsEmitted, m.moduleFailures,
		m.jobsProcessed, m.jobDuration,
		m.briefingLookups, m.pushes,
	)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ModuleEmitted records count insights produced by a rule module.
func (m *Metrics) ModuleEmitted(module string, count int) {
	m.insightsEmitted.WithLabelValues(module).Add(float64(count))
}

// ModuleFailed records a skipped rule module.
func (m *Metrics) ModuleFailed(module string) {
	m.moduleFailures.WithLabelValues(module).Inc()
}

// JobProcessed records the outcome and duration of one job run.
func (m *Metrics) JobProcessed(jobType, status string, d time.Duration) {
	m.jobsProcessed.WithLabelValues(jobType, status).Inc()
	m.jobDuration.WithLabelValues(jobType).Observe(d.Seconds())
}

// BriefingLookup records a briefing cache hit or miss.
func (m *Metrics) BriefingLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.briefingLookups.WithLabelValues(result).Inc()
}

// InsightPushed records a push attempt.
func (m *Metrics) InsightPushed(ok bool) {
	status := "sent"
	if !ok {
		status = "error"
	}
	m.pushes.WithLabelValues(status).Inc()
}

// Handler returns the HTTP mux serving /metrics and /healthz.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// NewServer returns an HTTP server for the metrics endpoint.
func (m *Metrics) NewServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
