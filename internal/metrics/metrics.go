package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the maintenance service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Document store Metrics
	DriveRequestsTotal   prometheus.CounterVec
	DriveRequestDuration prometheus.HistogramVec
	CopyPollsTotal       prometheus.Counter

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Business Metrics
	RecordSavesTotal       prometheus.CounterVec
	RecordsLoaded          prometheus.Gauge
	DocumentSessionsOpen   prometheus.Gauge
	RefreshDuration        prometheus.Histogram
	StatusSyncChangesTotal prometheus.Counter
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleetmaint_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fleetmaint_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fleetmaint_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Document store Metrics
		DriveRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleetmaint_drive_requests_total",
				Help: "Total document store requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		DriveRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fleetmaint_drive_request_duration_seconds",
				Help:    "Document store request latency in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		CopyPollsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fleetmaint_copy_polls_total",
				Help: "Total async copy monitor polls issued",
			},
		),

		// Cache Metrics
		CacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleetmaint_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleetmaint_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Business Metrics
		RecordSavesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleetmaint_record_saves_total",
				Help: "Total record collection saves by outcome",
			},
			[]string{"outcome"},
		),
		RecordsLoaded: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fleetmaint_records_loaded",
				Help: "Number of maintenance records currently held in memory",
			},
		),
		DocumentSessionsOpen: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fleetmaint_document_sessions_open",
				Help: "Currently open traceability editing sessions",
			},
		),
		RefreshDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fleetmaint_refresh_duration_seconds",
				Help:    "Full refresh execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
			},
		),
		StatusSyncChangesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fleetmaint_status_sync_changes_total",
				Help: "Record statuses changed by traceability sheet sync",
			},
		),
	}
}
