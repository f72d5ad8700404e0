package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	entriesPosted     *prometheus.CounterVec
	depreciationRuns  prometheus.Counter
	reportCacheHits   prometheus.Counter
	reportCacheMisses prometheus.Counter
}

// NewMetrics initializes the registry and the base metric set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atlas_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	entriesPosted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_ledger_entries_posted_total",
		Help: "Journal entries posted by entry type.",
	}, []string{"type"})
	depreciationRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_ledger_depreciation_runs_total",
		Help: "Completed depreciation runs.",
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_report_cache_hits_total",
		Help: "Report cache hits.",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_report_cache_misses_total",
		Help: "Report cache misses.",
	})
	registry.MustRegister(requests, duration, entriesPosted, depreciationRuns, cacheHits, cacheMisses)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		entriesPosted:     entriesPosted,
		depreciationRuns:  depreciationRuns,
		reportCacheHits:   cacheHits,
		reportCacheMisses: cacheMisses,
	}
}

// Handler returns the http.Handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// EntryPosted counts a posted journal entry by its type.
func (m *Metrics) EntryPosted(entryType string) {
	if m == nil {
		return
	}
	m.entriesPosted.WithLabelValues(entryType).Inc()
}

// DepreciationRun counts a completed depreciation run.
func (m *Metrics) DepreciationRun() {
	if m == nil {
		return
	}
	m.depreciationRuns.Inc()
}

// ReportCacheHit counts a report served from cache.
func (m *Metrics) ReportCacheHit() {
	if m == nil {
		return
	}
	m.reportCacheHits.Inc()
}

// ReportCacheMiss counts a report rebuilt from storage.
func (m *Metrics) ReportCacheMiss() {
	if m == nil {
		return
	}
	m.reportCacheMisses.Inc()
}

// Registerer exposes the registry for registering custom metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
