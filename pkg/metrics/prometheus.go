// Package metrics provides Prometheus metrics for the fairshare
// allocation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core Business Metrics - Observation intake and absorption
	observationsAbsorbed  prometheus.Counter
	observationsDuplicate prometheus.Counter
	absorbLatency         prometheus.Histogram

	// Model Metrics - Coalition data model scale
	modelCoalitions prometheus.Gauge
	universeSize    prometheus.Gauge

	// Computation Metrics - Shapley recompute performance
	computeCount    prometheus.Counter
	computeErrors   prometheus.Counter
	computeDuration prometheus.Histogram

	// Store Metrics - Published allocation access
	storeContributors  prometheus.Gauge
	storeUpdateLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram

	// Queue Metrics - Observation queue performance
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	queueLatency       prometheus.Histogram

	// Worker Metrics - Absorption workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram

	// Error Metrics - Detailed error tracking
	errorsByComponent *prometheus.CounterVec
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
		namespace:        "fairshare",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.observationsAbsorbed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "observations_absorbed_total",
		Help:      "Total number of observations absorbed into the coalition model",
	})

	m.observationsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "observations_duplicate_total",
		Help:      "Total number of duplicate observation IDs rejected at intake",
	})

	m.absorbLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "absorb_latency_milliseconds",
		Help:      "Histogram of model absorb latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.modelCoalitions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_coalitions",
		Help:      "Number of distinct coalitions observed so far",
	})

	m.universeSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "universe_size",
		Help:      "Number of distinct contributors seen in any observation",
	})

	m.computeCount = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compute_total",
		Help:      "Total number of Shapley recomputations",
	})

	m.computeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compute_errors_total",
		Help:      "Total number of failed Shapley recomputations",
	})

	m.computeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compute_duration_milliseconds",
		Help:      "Shapley recomputation duration in milliseconds (exponential in universe size)",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 30000},
	})

	m.storeContributors = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_contributors",
		Help:      "Number of contributors in the published allocation",
	})

	m.storeUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_update_latency_milliseconds",
		Help:      "Allocation store publish latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Allocation store query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the observation queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum observation queue capacity",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of observations enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of observations dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue errors",
	})

	m.queueLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_latency_milliseconds",
		Help:      "Queue operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of absorption workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Worker processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)
}

// RecordObservationAbsorbed increments the absorbed observations counter.
func RecordObservationAbsorbed() {
	globalManager.observationsAbsorbed.Inc()
}

// RecordObservationDuplicate increments the duplicate observations counter.
func RecordObservationDuplicate() {
	globalManager.observationsDuplicate.Inc()
}

// RecordAbsorbLatency records model absorb latency in milliseconds.
func RecordAbsorbLatency(latencyMs float64) {
	globalManager.absorbLatency.Observe(latencyMs)
}

// UpdateModelCoalitions sets the distinct coalition count.
func UpdateModelCoalitions(count int) {
	globalManager.modelCoalitions.Set(float64(count))
}

// UpdateUniverseSize sets the contributor universe size.
func UpdateUniverseSize(count int) {
	globalManager.universeSize.Set(float64(count))
}

// RecordCompute increments the recompute counter.
func RecordCompute() {
	globalManager.computeCount.Inc()
}

// RecordComputeError increments the failed recompute counter.
func RecordComputeError() {
	globalManager.computeErrors.Inc()
}

// RecordComputeDuration records recompute duration in milliseconds.
func RecordComputeDuration(durationMs float64) {
	globalManager.computeDuration.Observe(durationMs)
}

// UpdateStoreContributors sets the published contributor count.
func UpdateStoreContributors(count int) {
	globalManager.storeContributors.Set(float64(count))
}

// RecordStoreUpdateLatency records store publish latency.
func RecordStoreUpdateLatency(latencyMs float64) {
	globalManager.storeUpdateLatency.Observe(latencyMs)
}

// RecordStoreQueryLatency records store query latency.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueLatency records queue operation latency.
func RecordQueueLatency(latencyMs float64) {
	globalManager.queueLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the number of absorption workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
