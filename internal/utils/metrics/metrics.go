package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Cache metrics
	CacheHitsTotal    *prometheus.CounterVec
	CacheMissesTotal  *prometheus.CounterVec
	CacheCorruptTotal *prometheus.CounterVec
	CacheErrorsTotal  *prometheus.CounterVec
	BreakerState      *prometheus.GaugeVec

	// Pagination metrics
	PagesServedTotal  *prometheus.CounterVec
	PageItems         *prometheus.HistogramVec
	ListRequestsTotal *prometheus.CounterVec
}

// New creates a Metrics instance registered with the default registry.
func New(namespace string) *Metrics {
	return NewWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a Metrics instance registered with reg.
func NewWithRegisterer(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "agora"
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Cache metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
		CacheCorruptTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "corrupt_total",
				Help:      "Total number of cache entries that failed to decode",
			},
			[]string{"cache"},
		),
		CacheErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "errors_total",
				Help:      "Total number of cache store failures",
			},
			[]string{"cache", "op"}, // op: get, set, remove
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "breaker_state",
				Help:      "Cache store circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),

		// Pagination metrics
		PagesServedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pagination",
				Name:      "pages_served_total",
				Help:      "Total number of keyset pages served",
			},
			[]string{"listing", "has_more"},
		),
		PageItems: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pagination",
				Name:      "page_items",
				Help:      "Number of items per served page",
				Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
			},
			[]string{"listing"},
		),
		ListRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pagination",
				Name:      "list_requests_total",
				Help:      "Total number of successful list requests by route and page kind",
			},
			[]string{"path", "kind"}, // kind: first, continuation
		),
	}
}

// --- Convenience methods ---

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := statusCodeToString(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(cache string) {
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordCacheCorrupt records an entry that could not be decoded.
func (m *Metrics) RecordCacheCorrupt(cache string) {
	m.CacheCorruptTotal.WithLabelValues(cache).Inc()
}

// RecordCacheError records a failed store operation.
func (m *Metrics) RecordCacheError(cache, op string) {
	m.CacheErrorsTotal.WithLabelValues(cache, op).Inc()
}

// SetBreakerState records the state of a named circuit breaker.
func (m *Metrics) SetBreakerState(name string, state int) {
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordPage records a served keyset page.
func (m *Metrics) RecordPage(listing string, items int, hasMore bool) {
	m.PagesServedTotal.WithLabelValues(listing, strconv.FormatBool(hasMore)).Inc()
	m.PageItems.WithLabelValues(listing).Observe(float64(items))
}

// RecordListRequest records a served list request. continuation is true
// when the request asked for a page after the first.
func (m *Metrics) RecordListRequest(path string, continuation bool) {
	kind := "first"
	if continuation {
		kind = "continuation"
	}
	m.ListRequestsTotal.WithLabelValues(path, kind).Inc()
}

// statusCodeToString converts an HTTP status code to a string category.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
