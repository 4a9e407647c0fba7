package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the Shetkari gateway.
type Metrics struct {
	RequestTotal      *prometheus.CounterVec
	RequestDurationMs *prometheus.HistogramVec
	CacheLookupTotal  *prometheus.CounterVec
	CacheErrorTotal   *prometheus.CounterVec
	UpstreamCallTotal *prometheus.CounterVec
	FilterActionTotal *prometheus.CounterVec
	RateLimitHitTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the metrics on reg. Tests pass a fresh registry.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shetkari_request_total",
			Help: "Total number of API requests handled by the gateway.",
		}, []string{"kind", "status"}),

		RequestDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shetkari_request_duration_ms",
			Help:    "Request duration in milliseconds (including model latency).",
			Buckets: []float64{5, 50, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		}, []string{"kind"}),

		CacheLookupTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shetkari_cache_lookup_total",
			Help: "Response cache lookups by request kind and result (hit, miss).",
		}, []string{"kind", "result"}),

		CacheErrorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shetkari_cache_error_total",
			Help: "Swallowed response cache failures by operation.",
		}, []string{"op"}),

		UpstreamCallTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shetkari_upstream_call_total",
			Help: "Calls issued to the generative AI service.",
		}, []string{"kind", "status"}),

		FilterActionTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shetkari_filter_action_total",
			Help: "Total input filter actions taken.",
		}, []string{"filter", "action"}),

		RateLimitHitTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shetkari_rate_limit_hit_total",
			Help: "Requests rejected by the rate limiter.",
		}, []string{"route"}),
	}
}

// RecordRequest records metrics for a completed API request.
func (m *Metrics) RecordRequest(labels RequestLabels) {
	m.RequestTotal.WithLabelValues(labels.Kind, labels.Status).Inc()
	m.RequestDurationMs.WithLabelValues(labels.Kind).Observe(labels.DurationMs)
}

// RecordCacheLookup records a read-through cache lookup.
func (m *Metrics) RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupTotal.WithLabelValues(kind, result).Inc()
}

// RecordCacheError records a cache failure that was treated as a miss or dropped write.
func (m *Metrics) RecordCacheError(op string) {
	m.CacheErrorTotal.WithLabelValues(op).Inc()
}

// RecordUpstreamCall records one outbound call to the AI service.
func (m *Metrics) RecordUpstreamCall(kind, status string) {
	m.UpstreamCallTotal.WithLabelValues(kind, status).Inc()
}

// RecordFilterAction records a filter action metric.
func (m *Metrics) RecordFilterAction(filter, action string) {
	m.FilterActionTotal.WithLabelValues(filter, action).Inc()
}

// RecordRateLimitHit records a rejected request.
func (m *Metrics) RecordRateLimitHit(route string) {
	m.RateLimitHitTotal.WithLabelValues(route).Inc()
}

// RequestLabels holds the label values for recording a request.
type RequestLabels struct {
	Kind       string
	Status     string
	DurationMs float64
}
