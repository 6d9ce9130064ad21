// Package metrics provides Prometheus metrics for the skinalyze dashboard service.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Presentation metrics
	patientLookups     *prometheus.CounterVec
	riskCategories     *prometheus.CounterVec
	progressCategories *prometheus.CounterVec
	renderLatency      prometheus.Histogram
	dateFallbacks      prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository metrics
	repositoryRecordsTotal prometheus.Gauge
	repositoryQueryLatency prometheus.Histogram

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var (
	globalManager  atomic.Pointer[Manager]             //nolint:gochecknoglobals // singleton metrics manager
	customRegistry atomic.Pointer[prometheus.Registry] //nolint:gochecknoglobals // keeps default Go collectors out of /metrics
)

func init() { //nolint:gochecknoinits // global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a
// fresh registry. Handlers built from GetRegistry before the call keep
// serving the previous registry, so call it during startup.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	all := make([]Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, WithPrometheusRegistry(registry))
	customRegistry.Store(registry)
	globalManager.Store(NewManager(all...))
}

func global() *Manager { return globalManager.Load() }

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "skinalyze",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.patientLookups = auto.NewCounterVec(
		m.counterOpts("patient_lookups_total", "Patient page lookups by result (found, not_found, error)"),
		[]string{"result"},
	)
	m.riskCategories = auto.NewCounterVec(
		m.counterOpts("risk_categories_total", "Diagnoses rendered by risk category"),
		[]string{"category"},
	)
	m.progressCategories = auto.NewCounterVec(
		m.counterOpts("progress_categories_total", "Progress entries rendered by score category"),
		[]string{"category"},
	)
	m.renderLatency = auto.NewHistogram(
		m.histogramOpts("render_latency_milliseconds", "Time spent building a patient view in milliseconds", m.histogramBuckets),
	)
	m.dateFallbacks = auto.NewCounter(
		m.counterOpts("date_fallbacks_total", "Record dates that could not be parsed and were rendered as the current time"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.repositoryRecordsTotal = auto.NewGauge(
		m.gaugeOpts("repository_records_total", "Number of patient records known to the store"),
	)
	m.repositoryQueryLatency = auto.NewHistogram(
		m.histogramOpts("repository_query_latency_milliseconds", "Patient store query latency in milliseconds", m.histogramBuckets),
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordPatientLookup counts a patient page lookup by result.
func (m *Manager) RecordPatientLookup(result string) {
	if m.enabled {
		m.patientLookups.WithLabelValues(result).Inc()
	}
}

// RecordRiskCategory counts a rendered diagnosis by category.
func (m *Manager) RecordRiskCategory(category string) {
	if m.enabled {
		m.riskCategories.WithLabelValues(category).Inc()
	}
}

// RecordProgressCategory counts a rendered progress entry by category.
func (m *Manager) RecordProgressCategory(category string) {
	if m.enabled {
		m.progressCategories.WithLabelValues(category).Inc()
	}
}

// RecordRenderLatency observes view build time in milliseconds.
func (m *Manager) RecordRenderLatency(latencyMs float64) {
	if m.enabled {
		m.renderLatency.Observe(latencyMs)
	}
}

// RecordDateFallback counts a date that fell back to the current time.
func (m *Manager) RecordDateFallback() {
	if m.enabled {
		m.dateFallbacks.Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// UpdateRepositoryRecordsTotal sets the number of patient records in the store.
func (m *Manager) UpdateRepositoryRecordsTotal(count int) {
	if m.enabled {
		m.repositoryRecordsTotal.Set(float64(count))
	}
}

// RecordRepositoryQueryLatency records store query latency in milliseconds.
func (m *Manager) RecordRepositoryQueryLatency(latencyMs float64) {
	if m.enabled {
		m.repositoryQueryLatency.Observe(latencyMs)
	}
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if m.enabled {
		m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByType records an error with type and severity labels.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if m.enabled {
		m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method and type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency records the latency of an operation that ended in an error.
func (m *Manager) RecordErrorLatency(component, errorType string, latencyMs float64) {
	if m.enabled {
		m.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// UpdateSystemMemoryUsage sets heap memory in use.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	if m.enabled {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// Package-level helpers bound to the global manager.

// RecordPatientLookup counts a patient page lookup on the global manager.
func RecordPatientLookup(result string) {
	global().RecordPatientLookup(result)
}

// RecordRiskCategory counts a rendered diagnosis on the global manager.
func RecordRiskCategory(category string) {
	global().RecordRiskCategory(category)
}

// RecordProgressCategory counts a rendered progress entry on the global manager.
func RecordProgressCategory(category string) {
	global().RecordProgressCategory(category)
}

// RecordRenderLatency observes view build time on the global manager.
func RecordRenderLatency(latencyMs float64) {
	global().RecordRenderLatency(latencyMs)
}

// RecordDateFallback counts a date fallback on the global manager.
func RecordDateFallback() {
	global().RecordDateFallback()
}

// UpdateRepositoryRecordsTotal sets the record gauge on the global manager.
func UpdateRepositoryRecordsTotal(count int) {
	global().UpdateRepositoryRecordsTotal(count)
}

// RecordRepositoryQueryLatency records store latency on the global manager.
func RecordRepositoryQueryLatency(latencyMs float64) {
	global().RecordRepositoryQueryLatency(latencyMs)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	global().RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration on the global manager.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	global().RecordHTTPRequestDuration(endpoint, method, statusCode, durationMs)
}

// RecordErrorByComponent records a component error on the global manager.
func RecordErrorByComponent(component, errorType string) {
	global().RecordErrorByComponent(component, errorType)
}

// RecordErrorByType records a typed error on the global manager.
func RecordErrorByType(errorType, severity string) {
	global().RecordErrorByType(errorType, severity)
}

// RecordErrorByEndpoint records an endpoint error on the global manager.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	global().RecordErrorByEndpoint(endpoint, method, errorType)
}

// RecordErrorLatency records error latency on the global manager.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	global().RecordErrorLatency(component, errorType, latencyMs)
}

// UpdateSystemMemoryUsage sets heap memory in use on the global manager.
func UpdateSystemMemoryUsage(bytes uint64) {
	global().UpdateSystemMemoryUsage(bytes)
}

// UpdateSystemGoroutineCount sets the goroutine gauge on the global manager.
func UpdateSystemGoroutineCount(count int) {
	global().UpdateSystemGoroutineCount(count)
}

// RecordSystemGCPauseTime records GC pause time on the global manager.
func RecordSystemGCPauseTime(pauseMs float64) {
	global().RecordSystemGCPauseTime(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry.Load()
}
