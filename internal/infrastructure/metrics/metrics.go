// Package metrics exposes storefront counters to Prometheus.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Add-to-cart outcomes
const (
	OutcomeMerged    = "merged"
	OutcomeAppended  = "appended"
	OutcomeRejected  = "rejected"
	OutcomePersist   = "persistence_failure"
	OutcomeLockTimed = "lock_timeout"
)

// Metrics provides observability for the cart and catalog services.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Add-to-cart outcomes by result
	Consolidations *prometheus.CounterVec

	// Selection resolutions by kind (matched, ambiguous, no_match)
	Resolutions *prometheus.CounterVec

	// Time spent waiting for the per-order lock
	LockWait prometheus.Histogram

	// Resolver cache lookups by result (hit, miss)
	ResolverCache *prometheus.CounterVec

	// Checkout step submissions by step and result
	CheckoutSubmissions *prometheus.CounterVec

	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	HTTPActiveRequests prometheus.Gauge
}

// New creates a Metrics instance on its own registry, which also carries the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Consolidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cart_add_total",
			Help: "Add-to-cart requests by outcome",
		}, []string{"outcome"}),

		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_variation_resolutions_total",
			Help: "Attribute selections resolved by result kind",
		}, []string{"kind"}),

		LockWait: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_lock_wait_seconds",
			Help:    "Time spent acquiring the per-order lock",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		ResolverCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_resolver_cache_lookups_total",
			Help: "Variation resolver cache lookups by result",
		}, []string{"result"}),

		CheckoutSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_checkout_submissions_total",
			Help: "Checkout step submissions by step and result",
		}, []string{"step", "result"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request latency distribution in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),

		HTTPActiveRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of HTTP requests being served",
		}),
	}
}

// RegisterDBStats exports connection pool statistics of db
func (m *Metrics) RegisterDBStats(db *sql.DB, name string) error {
	if m == nil {
		return nil
	}
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// IncConsolidation records an add-to-cart outcome
func (m *Metrics) IncConsolidation(outcome string) {
	if m != nil {
		m.Consolidations.WithLabelValues(outcome).Inc()
	}
}

// IncResolution records a resolution result kind
func (m *Metrics) IncResolution(kind string) {
	if m != nil {
		m.Resolutions.WithLabelValues(kind).Inc()
	}
}

// ObserveLockWait records how long acquiring an order lock took
func (m *Metrics) ObserveLockWait(seconds float64) {
	if m != nil {
		m.LockWait.Observe(seconds)
	}
}

// IncResolverCache records a resolver cache hit or miss
func (m *Metrics) IncResolverCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ResolverCache.WithLabelValues(result).Inc()
}

// IncCheckoutSubmission records a checkout step submission
func (m *Metrics) IncCheckoutSubmission(step string, ok bool) {
	if m == nil {
		return
	}
	result := "error"
	if ok {
		result = "ok"
	}
	m.CheckoutSubmissions.WithLabelValues(step, result).Inc()
}

// RequestStarted tracks a request entering the server
func (m *Metrics) RequestStarted() {
	if m != nil {
		m.HTTPActiveRequests.Inc()
	}
}

// ObserveRequest records a finished request. route is the matched route
// pattern, never the raw path, to bound label cardinality.
func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.Dec()
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}
