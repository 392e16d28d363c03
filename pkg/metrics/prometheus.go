// Package metrics provides Prometheus metrics for the courtstats generator
// and aggregation engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Report execution status labels.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

var latencyBucketsMs = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Generator
	recordsWritten   *prometheus.CounterVec
	batchesWritten   *prometheus.CounterVec
	batchLatency     *prometheus.HistogramVec
	generatorWorkers prometheus.Gauge
	workerErrors     prometheus.Counter
	generationRuns   *prometheus.CounterVec
	generationTime   prometheus.Histogram

	// Aggregation engine
	reportExecutions *prometheus.CounterVec
	reportLatency    *prometheus.HistogramVec
	reportRows       *prometheus.GaugeVec

	// Store
	storeUpdateLatency *prometheus.HistogramVec
	storeQueryLatency  *prometheus.HistogramVec
	indexesCreated     prometheus.Counter

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtstats",
		subsystem:        "",
		histogramBuckets: latencyBucketsMs,
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

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	if !m.enabled {
		// Collectors still exist so callers never nil-check; they just aren't exported.
		auto = promauto.With(nil)
	}
	labels := prometheus.Labels(m.customLabels)

	m.recordsWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("generator_records_written_total"),
		Help: "Records persisted by the dataset generator, by collection",
	}, []string{"collection"})

	m.batchesWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("generator_batches_total"),
		Help: "Bulk-insert batches committed by the dataset generator, by collection",
	}, []string{"collection"})

	m.batchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("generator_batch_latency_milliseconds"),
		Help:    "Latency of a single bulk-insert batch in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"collection"})

	m.generatorWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("generator_active_workers"),
		Help: "Match-generation workers currently running",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("generator_worker_errors_total"),
		Help: "Match-generation workers that failed",
	})

	m.generationRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("generator_runs_total"),
		Help: "Completed generation runs by status",
	}, []string{"status"})

	m.generationTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("generator_run_duration_seconds"),
		Help:    "Wall-clock duration of a full generation run",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
	})

	m.reportExecutions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("report_executions_total"),
		Help: "Report invocations by report name and status",
	}, []string{"report", "status"})

	m.reportLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("report_latency_milliseconds"),
		Help:    "Wall-clock execution time of a report in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"report"})

	m.reportRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("report_rows"),
		Help: "Rows returned by the last successful execution of a report",
	}, []string{"report"})

	m.storeUpdateLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("store_update_latency_milliseconds"),
		Help:    "Latency of store write operations in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"backend", "op"})

	m.storeQueryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("store_query_latency_milliseconds"),
		Help:    "Latency of store read operations in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"backend", "op"})

	m.indexesCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("store_indexes_ensured_total"),
		Help: "Index definitions ensured by the index coordinator",
	})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("errors_by_component_total"),
		Help: "Errors by component and error type",
	}, []string{"component", "error_type"})
}

// Generator metrics.

// RecordBatch records one committed batch of n records.
func RecordBatch(collection string, n int, latency time.Duration) {
	globalManager.recordsWritten.WithLabelValues(collection).Add(float64(n))
	globalManager.batchesWritten.WithLabelValues(collection).Inc()
	globalManager.batchLatency.WithLabelValues(collection).Observe(ms(latency))
}

// AddGeneratorWorkers adjusts the active worker gauge by delta.
func AddGeneratorWorkers(delta int) {
	globalManager.generatorWorkers.Add(float64(delta))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordGenerationRun records a finished generation run.
func RecordGenerationRun(status string, took time.Duration) {
	globalManager.generationRuns.WithLabelValues(status).Inc()
	globalManager.generationTime.Observe(took.Seconds())
}

// Aggregation engine metrics.

// RecordReport records one report invocation. rows is ignored unless status is StatusOK.
func RecordReport(report, status string, took time.Duration, rows int) {
	globalManager.reportExecutions.WithLabelValues(report, status).Inc()
	globalManager.reportLatency.WithLabelValues(report).Observe(ms(took))
	if status == StatusOK {
		globalManager.reportRows.WithLabelValues(report).Set(float64(rows))
	}
}

// Store metrics.

// RecordStoreUpdate records the latency of a store write.
func RecordStoreUpdate(backend, op string, took time.Duration) {
	globalManager.storeUpdateLatency.WithLabelValues(backend, op).Observe(ms(took))
}

// RecordStoreQuery records the latency of a store read.
func RecordStoreQuery(backend, op string, took time.Duration) {
	globalManager.storeQueryLatency.WithLabelValues(backend, op).Observe(ms(took))
}

// RecordIndexEnsured increments the ensured index counter.
func RecordIndexEnsured() {
	globalManager.indexesCreated.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the custom registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
