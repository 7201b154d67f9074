// Package telemetry exposes the service's Prometheus metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dashboard_aggregates"

// Metrics holds all service metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Aggregate cache
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec
	Computations     *prometheus.CounterVec
	ComputeDuration  *prometheus.HistogramVec
	NoiseDraws       prometheus.Counter
	MalformedRecords *prometheus.CounterVec
	UpstreamFailures *prometheus.CounterVec

	// Ingestion queue
	QueueDepth    prometheus.Gauge
	EventsDropped prometheus.Counter
	EventsFlushed prometheus.Counter
	FlushFailures prometheus.Counter
	EventsLost    prometheus.Counter
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	f := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.CacheHits = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Aggregate requests served from a cached snapshot",
	}, []string{"kind"})
	m.CacheMisses = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Aggregate requests that found no fresh snapshot",
	}, []string{"kind"})
	m.Computations = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "computations_total",
		Help:      "Aggregate snapshots computed, by outcome",
	}, []string{"kind", "outcome"})
	m.ComputeDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "compute_duration_seconds",
		Help:      "Time to build one aggregate snapshot",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"kind"})
	m.NoiseDraws = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "noise_draws_total",
		Help:      "Laplace draws applied to published counts",
	})
	m.MalformedRecords = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "malformed_records_total",
		Help:      "Session events skipped during aggregation",
	}, []string{"kind"})
	m.UpstreamFailures = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_failures_total",
		Help:      "Event store failures surfaced as retryable errors",
	}, []string{"kind"})

	m.QueueDepth = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ingest_queue_depth",
		Help:      "Session events waiting in the ingestion buffer",
	})
	m.EventsDropped = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_events_dropped_total",
		Help:      "Session events rejected because the buffer was full",
	})
	m.EventsFlushed = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_events_flushed_total",
		Help:      "Session events written to the event store",
	})
	m.FlushFailures = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_flush_failures_total",
		Help:      "Batches that failed to reach the event store",
	})
	m.EventsLost = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_events_lost_total",
		Help:      "Session events discarded after the insert retry failed",
	})

	return m
}

// Handler returns the exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
