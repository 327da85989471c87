// Package metrics provides Prometheus metrics for the SpeechWell analysis service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Business metrics - what really matters for a screening webhook
	callsReceived     prometheus.Counter
	callsDuplicate    prometheus.Counter
	callsMalformed    prometheus.Counter
	segmentsAnalyzed  prometheus.Counter
	indicatorsFlagged *prometheus.CounterVec
	analysisLatency   prometheus.Histogram

	// Operational health metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	workerCount      prometheus.Gauge
	storedSummaries  prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	signatureRejections prometheus.Counter

	// Quality metrics
	analysisErrors    prometheus.Counter
	queueEnqueueDrops prometheus.Counter
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "speechwell",
		subsystem:        "analysis",
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

	m.callsReceived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calls_received_total",
		Help:      "Total number of post-call transcription deliveries accepted for analysis",
	})

	m.callsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calls_duplicate_total",
		Help:      "Total number of duplicate webhook deliveries detected",
	})

	m.callsMalformed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calls_malformed_total",
		Help:      "Total number of deliveries rejected for malformed transcript data",
	})

	m.segmentsAnalyzed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "segments_analyzed_total",
		Help:      "Total number of user speech segments run through the engine",
	})

	m.indicatorsFlagged = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "indicators_flagged_total",
			Help:      "Total number of dysarthria indicators flagged, by indicator tag",
		},
		[]string{"indicator"},
	)

	m.analysisLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analysis_latency_milliseconds",
		Help:      "Histogram of per-call analysis latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the analysis queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the analysis queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Analysis queue utilization ratio (0-1)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of analysis workers",
	})

	m.storedSummaries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stored_summaries",
		Help:      "Number of session summaries currently held in the assessment store",
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

	m.signatureRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signature_rejections_total",
		Help:      "Total number of webhook deliveries rejected for invalid or stale signatures",
	})

	m.analysisErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analysis_errors_total",
		Help:      "Total number of deliveries that failed analysis",
	})

	m.queueEnqueueDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_drops_total",
		Help:      "Total number of deliveries dropped because the queue was full or closed",
	})

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total errors by component and kind",
		},
		[]string{"component", "kind"},
	)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level recording helpers backed by the global manager.

func RecordCallReceived()       { globalManager.callsReceived.Inc() }
func RecordCallDuplicate()      { globalManager.callsDuplicate.Inc() }
func RecordCallMalformed()      { globalManager.callsMalformed.Inc() }
func RecordAnalysisError()      { globalManager.analysisErrors.Inc() }
func RecordQueueEnqueueDrop()   { globalManager.queueEnqueueDrops.Inc() }
func RecordSignatureRejection() { globalManager.signatureRejections.Inc() }

// RecordSegmentsAnalyzed adds the number of user segments processed for one call.
func RecordSegmentsAnalyzed(n int) {
	globalManager.segmentsAnalyzed.Add(float64(n))
}

// RecordIndicatorFlagged increments the counter for one indicator tag.
func RecordIndicatorFlagged(indicator string) {
	globalManager.indicatorsFlagged.WithLabelValues(indicator).Inc()
}

// RecordAnalysisLatency records one call's analysis latency in milliseconds.
func RecordAnalysisLatency(ms float64) {
	globalManager.analysisLatency.Observe(ms)
}

// RecordHTTPRequest records an HTTP request by endpoint, method and status.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// RecordErrorByComponent records an error by component and kind.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// Gauge updates.

func UpdateQueueSize(n int)            { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int)        { globalManager.queueCapacity.Set(float64(n)) }
func UpdateQueueUtilization(r float64) { globalManager.queueUtilization.Set(r) }
func UpdateWorkerCount(n int)          { globalManager.workerCount.Set(float64(n)) }
func UpdateStoredSummaries(n int)      { globalManager.storedSummaries.Set(float64(n)) }
