package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exposed at /metrics. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	writes   *prometheus.CounterVec
	seedRows *prometheus.CounterVec
}

// NewMetrics creates a dedicated registry with the Go and process collectors
// plus the compendium collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "compendium_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "compendium_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "compendium_writes_total",
			Help: "Committed catalog writes by resource and operation.",
		}, []string{"resource", "op"}),
		seedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "compendium_seed_rows_total",
			Help: "CSV rows applied by the seed loader, by file.",
		}, []string{"file"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.writes,
		m.seedRows,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry, for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served HTTP request. route is the matched mux
// pattern so ids do not explode label cardinality.
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordWrite counts a committed catalog write.
func (m *Metrics) RecordWrite(resource, op string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(resource, op).Inc()
}

// RecordSeedRows counts rows applied from one seed file.
func (m *Metrics) RecordSeedRows(file string, n int) {
	if m == nil {
		return
	}
	m.seedRows.WithLabelValues(file).Add(float64(n))
}
