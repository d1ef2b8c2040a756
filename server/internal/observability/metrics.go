package observability

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	intentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelgenie_intents_total",
		Help: "Total number of chat messages handled, by classified intent.",
	}, []string{"intent"})

	intentFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelgenie_intent_failures_total",
		Help: "Total number of chat messages whose handling failed, by intent.",
	}, []string{"intent"})

	intentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travelgenie_intent_duration_seconds",
		Help:    "Histogram of chat message handling latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"intent"})

	calendarCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelgenie_calendar_calls_total",
		Help: "Total number of calendar backend calls.",
	}, []string{"operation", "status"})

	calendarLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travelgenie_calendar_latency_seconds",
		Help:    "Histogram of calendar backend call latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelgenie_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travelgenie_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCalendarCall records one calendar backend call that started at start.
func ObserveCalendarCall(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	calendarCallsTotal.WithLabelValues(operation, status).Inc()
	calendarLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Metrics aggregates per-intent counters in memory for the health endpoint
// and mirrors them to Prometheus.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	intentMetrics map[string]*IntentMetrics
}

// IntentMetrics represents metrics for a specific intent kind.
type IntentMetrics struct {
	count         atomic.Int64
	totalDuration atomic.Int64 // milliseconds
	errorCount    atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		intentMetrics: make(map[string]*IntentMetrics),
	}
}

var globalMetrics = NewMetrics()

// GlobalMetrics returns the global metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records a handled message.
func (m *Metrics) RecordRequest(intent string) {
	m.requestTotal.Add(1)
	m.getIntentMetrics(intent).count.Add(1)
	intentsTotal.WithLabelValues(intent).Inc()
}

// RecordFailure records a failed message.
func (m *Metrics) RecordFailure(intent string) {
	m.requestFailed.Add(1)
	m.getIntentMetrics(intent).errorCount.Add(1)
	intentFailuresTotal.WithLabelValues(intent).Inc()
}

// RecordDuration records how long handling a message took.
func (m *Metrics) RecordDuration(intent string, duration time.Duration) {
	m.getIntentMetrics(intent).totalDuration.Add(duration.Milliseconds())
	intentDuration.WithLabelValues(intent).Observe(duration.Seconds())
}

func (m *Metrics) getIntentMetrics(intent string) *IntentMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	im, ok := m.intentMetrics[intent]
	if !ok {
		im = &IntentMetrics{}
		m.intentMetrics[intent] = im
	}
	return im
}

// Reset resets all in-memory metrics (useful for testing).
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.intentMetrics = make(map[string]*IntentMetrics)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	intents := make(map[string]*IntentMetricsSnapshot, len(m.intentMetrics))
	for intent, im := range m.intentMetrics {
		snap := &IntentMetricsSnapshot{
			Count:         im.count.Load(),
			TotalDuration: im.totalDuration.Load(),
			ErrorCount:    im.errorCount.Load(),
		}
		if snap.Count > 0 {
			snap.AverageDuration = snap.TotalDuration / snap.Count
		}
		intents[intent] = snap
	}

	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Intents:       intents,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal  int64                             `json:"request_total"`
	RequestFailed int64                             `json:"request_failed"`
	Intents       map[string]*IntentMetricsSnapshot `json:"intents"`
}

// IntentMetricsSnapshot represents metrics for a specific intent.
type IntentMetricsSnapshot struct {
	Count           int64 `json:"count"`
	TotalDuration   int64 `json:"total_duration_ms"`
	ErrorCount      int64 `json:"error_count"`
	AverageDuration int64 `json:"average_duration_ms"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
