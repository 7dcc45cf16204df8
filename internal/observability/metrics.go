package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Allocation outcomes recorded by RecordAllocation.
const (
	AllocationGranted  = "granted"
	AllocationNoSpot   = "no_spot"
	AllocationConflict = "conflict"
)

// Metrics holds the prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	allocations     *prometheus.CounterVec
	releases        prometheus.Counter
	domainEvents    *prometheus.CounterVec
	spotsChanged    *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spot_allocations_total",
			Help:      "Spot allocation attempts by outcome.",
		}, []string{"outcome"}),
		releases: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spot_releases_total",
			Help:      "Reservations released.",
		}),
		domainEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Domain events handled by the audit worker, by type.",
		}, []string{"event"}),
		spotsChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spots_changed_total",
			Help:      "Spots created or removed by capacity changes.",
		}, []string{"direction"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.errors,
		m.allocations,
		m.releases,
		m.domainEvents,
		m.spotsChanged,
	)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordAllocation counts a reservation attempt by outcome.
func (m *Metrics) RecordAllocation(outcome string) {
	if m == nil {
		return
	}
	m.allocations.WithLabelValues(outcome).Inc()
}

// RecordRelease counts a released reservation.
func (m *Metrics) RecordRelease() {
	if m == nil {
		return
	}
	m.releases.Inc()
}

// RecordEvent counts a handled domain event.
func (m *Metrics) RecordEvent(event string) {
	if m == nil {
		return
	}
	m.domainEvents.WithLabelValues(event).Inc()
}

// RecordSpotsChanged counts spots added and removed by a capacity change.
func (m *Metrics) RecordSpotsChanged(added, removed int) {
	if m == nil {
		return
	}
	if added > 0 {
		m.spotsChanged.WithLabelValues("added").Add(float64(added))
	}
	if removed > 0 {
		m.spotsChanged.WithLabelValues("removed").Add(float64(removed))
	}
}
