package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "iot"

// Metrics holds the ingestion collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ingested      *prometheus.CounterVec
	ingestLatency *prometheus.HistogramVec
	resolverCache *prometheus.CounterVec
	mirrorErrors  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_requests_total",
			Help:      "Ingestion requests by protocol and outcome.",
		}, []string{"protocol", "result"}),
		ingestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Time spent resolving and storing an ingestion request.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"protocol"}),
		resolverCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_cache_total",
			Help:      "Access token cache lookups by outcome.",
		}, []string{"outcome"}),
		mirrorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "influx_mirror_errors_total",
			Help:      "Failed writes to the time series mirror.",
		}),
	}

	m.registry.MustRegister(
		m.ingested,
		m.ingestLatency,
		m.resolverCache,
		m.mirrorErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveIngest(protocol, result string, started time.Time) {
	if m == nil {
		return
	}
	m.ingested.WithLabelValues(protocol, result).Inc()
	m.ingestLatency.WithLabelValues(protocol).Observe(time.Since(started).Seconds())
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.resolverCache.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.resolverCache.WithLabelValues("miss").Inc()
}

func (m *Metrics) MirrorFailed() {
	if m == nil {
		return
	}
	m.mirrorErrors.Inc()
}
