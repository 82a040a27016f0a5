// Package metrics provides Prometheus metrics for the dojang annotation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Manager manages all Prometheus metrics for the dojang service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - Annotation throughput
	annotationsUpserted prometheus.Counter
	annotationsDeleted  prometheus.Counter
	annotationsRestored prometheus.Counter

	// Store Metrics - Persistence health
	storeSaves       prometheus.Counter
	storeBackups     prometheus.Counter
	storeSaveErrors  prometheus.Counter
	storeSaveLatency prometheus.Histogram
	storeLoadLatency prometheus.Histogram

	// Event Store Metrics
	eventsLoaded prometheus.Counter

	// Inventory Gauges - Business scale indicators
	knownVideos      prometheus.Gauge
	totalAnnotations prometheus.Gauge
	matchGroups      prometheus.Gauge
	annotators       prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec
}

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dojang",
		subsystem:        "annotation",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics - Annotation throughput
	m.annotationsUpserted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "annotations_upserted_total",
		Help:      "Total number of annotations created or updated",
	})

	m.annotationsDeleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "annotations_deleted_total",
		Help:      "Total number of annotations deleted",
	})

	m.annotationsRestored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "annotations_restored_total",
		Help:      "Total number of annotations restored from uploaded documents",
	})

	// Store Metrics - Persistence health
	m.storeSaves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_saves_total",
		Help:      "Total number of annotation document saves",
	})

	m.storeBackups = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_backups_total",
		Help:      "Total number of rolling backups written before a save",
	})

	m.storeSaveErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_save_errors_total",
		Help:      "Total number of failed annotation document saves",
	})

	m.storeSaveLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_save_latency_milliseconds",
		Help:      "Histogram of annotation save latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeLoadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_load_latency_milliseconds",
		Help:      "Histogram of annotation load latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Event Store Metrics
	m.eventsLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_loaded_total",
		Help:      "Total number of technique events read from the event store",
	})

	// Inventory Gauges - Business scale indicators
	m.knownVideos = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "known_videos",
		Help:      "Number of videos with technique detections available",
	})

	m.totalAnnotations = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_annotations",
		Help:      "Total number of stored annotations across all videos",
	})

	m.matchGroups = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_groups",
		Help:      "Number of registered match groups",
	})

	m.annotators = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "annotators",
		Help:      "Number of known annotator names",
	})

	// HTTP Performance Metrics - User experience indicators
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
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics - Detailed error tracking
	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total errors by endpoint and method",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of failed operations in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"component", "error_type"},
	)
}

// RecordAnnotationUpserted increments the annotations upserted counter.
func RecordAnnotationUpserted() {
	globalManager.annotationsUpserted.Inc()
}

// RecordAnnotationDeleted increments the annotations deleted counter.
func RecordAnnotationDeleted() {
	globalManager.annotationsDeleted.Inc()
}

// RecordAnnotationRestored increments the annotations restored counter.
func RecordAnnotationRestored() {
	globalManager.annotationsRestored.Inc()
}

// RecordStoreSave increments the save counter and records its latency.
func RecordStoreSave(latencyMs float64) {
	globalManager.storeSaves.Inc()
	globalManager.storeSaveLatency.Observe(latencyMs)
}

// RecordStoreBackup increments the rolling backup counter.
func RecordStoreBackup() {
	globalManager.storeBackups.Inc()
}

// RecordStoreSaveError increments the failed save counter.
func RecordStoreSaveError() {
	globalManager.storeSaveErrors.Inc()
}

// RecordStoreLoadLatency records annotation load latency in milliseconds.
func RecordStoreLoadLatency(latencyMs float64) {
	globalManager.storeLoadLatency.Observe(latencyMs)
}

// RecordEventsLoaded adds to the technique events loaded counter.
func RecordEventsLoaded(count int) {
	globalManager.eventsLoaded.Add(float64(count))
}

// UpdateKnownVideos sets the number of videos with detections.
func UpdateKnownVideos(count int) {
	globalManager.knownVideos.Set(float64(count))
}

// UpdateTotalAnnotations sets the total stored annotation count.
func UpdateTotalAnnotations(count int) {
	globalManager.totalAnnotations.Set(float64(count))
}

// UpdateMatchGroups sets the registered match group count.
func UpdateMatchGroups(count int) {
	globalManager.matchGroups.Set(float64(count))
}

// UpdateAnnotators sets the known annotator count.
func UpdateAnnotators(count int) {
	globalManager.annotators.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by endpoint and method.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
