// Package metrics exposes Prometheus metrics for the issuing service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"transdoc/internal/core/numerator"
	"transdoc/internal/domain/carrier"
	"transdoc/internal/domain/numbering"
	"transdoc/internal/infrastructure/storage/postgres"
)

const namespace = "transdoc"

// Metrics holds all service metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Allocation metrics
	AllocationsTotal   *prometheus.CounterVec
	NumbersIssued      *prometheus.CounterVec
	AllocationRetries  *prometheus.CounterVec
	AllocationDuration *prometheus.HistogramVec

	// License expiry watcher
	Licenses          *prometheus.GaugeVec
	LastValidityCheck prometheus.Gauge
}

var _ numbering.Observer = (*Metrics)(nil)

// New creates the metrics and registers them together with the Go and
// process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	m.AllocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Number allocation requests by document kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	m.NumbersIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "numbers_issued_total",
			Help:      "Document numbers issued by kind",
		},
		[]string{"kind"},
	)
	m.AllocationRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_retries_total",
			Help:      "Sequence increments retried after a storage conflict",
		},
		[]string{"kind"},
	)
	m.AllocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "allocation_duration_seconds",
			Help:      "Time to resolve the license and reserve a number range",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"kind"},
	)

	m.Licenses = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "licenses",
			Help:      "Destination licenses by validity status at the last check",
		},
		[]string{"status"},
	)
	m.LastValidityCheck = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "license_check_timestamp_seconds",
		Help:      "Unix time of the last completed license validity check",
	})

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.AllocationsTotal,
		m.NumbersIssued,
		m.AllocationRetries,
		m.AllocationDuration,
		m.Licenses,
		m.LastValidityCheck,
	)
	return m
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records a finished HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// AllocationSucceeded implements numbering.Observer.
func (m *Metrics) AllocationSucceeded(kind numerator.DocumentKind, quantity int, elapsed time.Duration) {
	m.AllocationsTotal.WithLabelValues(string(kind), "success").Inc()
	m.NumbersIssued.WithLabelValues(string(kind)).Add(float64(quantity))
	m.AllocationDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// AllocationFailed implements numbering.Observer. The outcome label carries
// the error code.
func (m *Metrics) AllocationFailed(kind numerator.DocumentKind, code string, elapsed time.Duration) {
	m.AllocationsTotal.WithLabelValues(string(kind), code).Inc()
	m.AllocationDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// AllocationRetried implements numbering.Observer.
func (m *Metrics) AllocationRetried(kind numerator.DocumentKind) {
	m.AllocationRetries.WithLabelValues(string(kind)).Inc()
}

// ObserveValidity publishes the counts of a license validity report.
func (m *Metrics) ObserveValidity(report *carrier.ValidityReport, at time.Time) {
	m.Licenses.WithLabelValues(string(carrier.StatusValid)).Set(float64(len(report.Valid)))
	m.Licenses.WithLabelValues(string(carrier.StatusExpiringSoon)).Set(float64(len(report.ExpiringSoon)))
	m.Licenses.WithLabelValues(string(carrier.StatusExpired)).Set(float64(len(report.Expired)))
	m.Licenses.WithLabelValues(string(carrier.StatusNoExpiry)).Set(float64(len(report.NoExpiry)))
	m.LastValidityCheck.Set(float64(at.Unix()))
}

// RegisterPool exports connection pool gauges read on every scrape.
func (m *Metrics) RegisterPool(pool *postgres.Pool) {
	gauge := func(name, help string, read func(postgres.Stats) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(read(pool.Stats())) })
	}
	m.registry.MustRegister(
		gauge("total_conns", "Open connections", func(s postgres.Stats) int32 { return s.TotalConns }),
		gauge("acquired_conns", "Connections in use", func(s postgres.Stats) int32 { return s.AcquiredConns }),
		gauge("idle_conns", "Idle connections", func(s postgres.Stats) int32 { return s.IdleConns }),
		gauge("max_conns", "Pool size limit", func(s postgres.Stats) int32 { return s.MaxConns }),
	)
}
