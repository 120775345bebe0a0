// Package metrics exposes Prometheus collectors for the order lifecycle.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rolegate"

// Metrics implements the recorder interfaces of the order and subscription
// use cases. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ordersCreated      *prometheus.CounterVec
	orderCreateFailed  *prometheus.CounterVec
	fulfillments       *prometheus.CounterVec
	callbacks          *prometheus.CounterVec
	revoked            prometheus.Counter
	revokeFailures     prometheus.Counter
	httpRequests       *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

// MustNewMetrics registers all collectors, plus the Go and process
// collectors, on a fresh registry. Registration errors panic.
func MustNewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders for which the gateway returned a payment link.",
		}, []string{"platform", "currency"}),
		orderCreateFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "create_failures_total",
			Help:      "Orders the gateway refused or could not be reached for.",
		}, []string{"platform"}),
		fulfillments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "fulfillments_total",
			Help:      "Fulfillment attempts by outcome.",
		}, []string{"outcome"}),
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "callbacks_total",
			Help:      "Gateway notifications by handling result.",
		}, []string{"result"}),
		revoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscriptions",
			Name:      "revoked_total",
			Help:      "Expired subscriptions whose role was revoked.",
		}),
		revokeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscriptions",
			Name:      "revoke_failures_total",
			Help:      "Revokes that failed and will be retried.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ordersCreated,
		m.orderCreateFailed,
		m.fulfillments,
		m.callbacks,
		m.revoked,
		m.revokeFailures,
		m.httpRequests,
		m.httpRequestLatency,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) OrderCreated(platform, currency string) {
	if m == nil {
		return
	}
	m.ordersCreated.WithLabelValues(platform, currency).Inc()
}

func (m *Metrics) OrderCreateFailed(platform string) {
	if m == nil {
		return
	}
	m.orderCreateFailed.WithLabelValues(platform).Inc()
}

func (m *Metrics) FulfillmentOutcome(outcome string) {
	if m == nil {
		return
	}
	m.fulfillments.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CallbackHandled(result string) {
	if m == nil {
		return
	}
	m.callbacks.WithLabelValues(result).Inc()
}

func (m *Metrics) SubscriptionsRevoked(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.revoked.Add(float64(n))
}

func (m *Metrics) RevokeFailed() {
	if m == nil {
		return
	}
	m.revokeFailures.Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
