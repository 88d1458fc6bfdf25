// Package observability exposes Prometheus metrics for the catalog.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the catalog collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal    *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	cacheTotal    *prometheus.CounterVec
	exportsTotal  *prometheus.CounterVec
	exportBytes   *prometheus.HistogramVec
	datasetRows   *prometheus.GaugeVec
}

// New creates the collectors and registers them on a private registry
// together with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_fetch_total",
			Help: "Archive downloads by result.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_fetch_duration_seconds",
			Help:    "Time spent downloading and parsing the catalog archive.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Dataset cache lookups by outcome.",
		}, []string{"outcome"}),
		exportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_exports_total",
			Help: "Generated downloads by kind.",
		}, []string{"kind"}),
		exportBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalog_export_bytes",
			Help:    "Size of generated downloads.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"kind"}),
		datasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "catalog_dataset_rows",
			Help: "Rows in the currently loaded snapshot.",
		}, []string{"table"}),
	}

	m.registry.MustRegister(
		m.fetchTotal,
		m.fetchDuration,
		m.cacheTotal,
		m.exportsTotal,
		m.exportBytes,
		m.datasetRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveLoad records one archive load.
func (m *Metrics) ObserveLoad(err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.fetchTotal.WithLabelValues(result).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

// CacheHit counts a dataset served from cache.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues("hit").Inc()
}

// CacheMiss counts a dataset lookup that required a load.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues("miss").Inc()
}

// ObserveExport records a generated download.
func (m *Metrics) ObserveExport(kind string, size int) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(kind).Inc()
	m.exportBytes.WithLabelValues(kind).Observe(float64(size))
}

// SetDatasetRows publishes the row counts of the loaded snapshot.
func (m *Metrics) SetDatasetRows(products, parts int) {
	if m == nil {
		return
	}
	m.datasetRows.WithLabelValues("products").Set(float64(products))
	m.datasetRows.WithLabelValues("parts").Set(float64(parts))
}
