// Package metrics provides Prometheus metrics for the Spindle collector service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the Spindle service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion metrics
	spinsIngested  prometheus.Counter
	spinsDuplicate prometheus.Counter
	fetchErrors    prometheus.Counter
	parseErrors    prometheus.Counter
	fetchLatency   prometheus.Histogram

	// Store metrics
	ledgerSize       prometheus.Gauge
	patternStoreSize prometheus.Gauge
	patternsInserted prometheus.Counter
	patternsMerged   prometheus.Counter

	// Persistence metrics
	snapshotSaves       prometheus.Counter
	snapshotSaveErrors  prometheus.Counter
	snapshotSaveLatency prometheus.Histogram

	// Broadcast metrics
	wsClients      prometheus.Gauge
	wsMessagesSent prometheus.Counter
	wsSendFailures prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "spindle",
		subsystem:        "collector",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.spinsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "spins_ingested_total",
		Help:      "Total number of distinct spins ingested into the ledger",
	})

	m.spinsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "spins_duplicate_total",
		Help:      "Total number of duplicate spins rejected by the deduplicator",
	})

	m.fetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_fetch_errors_total",
		Help:      "Total number of failed feed fetch ticks",
	})

	m.parseErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_parse_errors_total",
		Help:      "Total number of feed payloads rejected for shape",
	})

	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_fetch_latency_milliseconds",
		Help:      "Histogram of feed fetch round-trip latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.ledgerSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_size",
		Help:      "Current number of spins retained in the ledger",
	})

	m.patternStoreSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pattern_store_size",
		Help:      "Current number of patterns retained in the store",
	})

	m.patternsInserted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "patterns_inserted_total",
		Help:      "Total number of new pattern entries inserted",
	})

	m.patternsMerged = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "patterns_merged_total",
		Help:      "Total number of pattern submissions merged into existing entries",
	})

	m.snapshotSaves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_saves_total",
		Help:      "Total number of snapshot documents written",
	})

	m.snapshotSaveErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_save_errors_total",
		Help:      "Total number of failed snapshot writes",
	})

	m.snapshotSaveLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_save_latency_milliseconds",
		Help:      "Snapshot write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_clients",
		Help:      "Current number of open WebSocket subscribers",
	})

	m.wsMessagesSent = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_messages_sent_total",
		Help:      "Total number of messages queued for subscriber delivery",
	})

	m.wsSendFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_send_failures_total",
		Help:      "Total number of subscribers dropped after failed sends",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry returns the custom registry for serving /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

func RecordSpinIngested() { globalManager.spinsIngested.Inc() }
func RecordSpinDuplicate() { globalManager.spinsDuplicate.Inc() }
func RecordFetchError() { globalManager.fetchErrors.Inc() }
func RecordParseError() { globalManager.parseErrors.Inc() }
func RecordFetchLatency(ms float64) {
	globalManager.fetchLatency.Observe(ms)
}

func UpdateLedgerSize(n int) { globalManager.ledgerSize.Set(float64(n)) }
func UpdatePatternStoreSize(n int) { globalManager.patternStoreSize.Set(float64(n)) }
func RecordPatternInserted() { globalManager.patternsInserted.Inc() }
func RecordPatternMerged() { globalManager.patternsMerged.Inc() }

func RecordSnapshotSave() { globalManager.snapshotSaves.Inc() }
func RecordSnapshotSaveError() { globalManager.snapshotSaveErrors.Inc() }
func RecordSnapshotSaveLatency(ms float64) {
	globalManager.snapshotSaveLatency.Observe(ms)
}

func UpdateWSClients(n int) { globalManager.wsClients.Set(float64(n)) }
func RecordWSMessageSent() { globalManager.wsMessagesSent.Inc() }
func RecordWSSendFailure() { globalManager.wsSendFailures.Inc() }

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error for a specific component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}

func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseTime.Observe(ms)
}
