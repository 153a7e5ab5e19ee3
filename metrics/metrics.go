// Package metrics exposes Prometheus instrumentation for block requests
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for block requests
const (
	OutcomeOK        = "ok"
	OutcomeEmpty     = "empty"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

// Metrics groups the collectors of one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	BlockRequests   *prometheus.CounterVec
	BlockDuration   *prometheus.HistogramVec
	RowsReturned    *prometheus.CounterVec
	ViewCacheLookup *prometheus.CounterVec
	DatasetRecords  *prometheus.GaugeVec
	HTTPRequests    *prometheus.CounterVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewMetrics(reg, reg)
}

// NewMetrics registers the collectors on reg and serves them from gatherer
func NewMetrics(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: gatherer,
		BlockRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridsource_block_requests_total",
				Help: "Total number of block requests",
			},
			[]string{"dataset", "outcome"},
		),
		BlockDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridsource_block_request_duration_seconds",
				Help:    "Block request latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"dataset"},
		),
		RowsReturned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridsource_rows_returned_total",
				Help: "Total number of rows returned in blocks",
			},
			[]string{"dataset"},
		),
		ViewCacheLookup: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridsource_view_cache_lookups_total",
				Help: "View cache lookups by result",
			},
			[]string{"dataset", "result"},
		),
		DatasetRecords: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gridsource_dataset_records",
				Help: "Number of records loaded per dataset",
			},
			[]string{"dataset"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridsource_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
	}
}

// ObserveBlock records one completed block request
func (m *Metrics) ObserveBlock(dataset, outcome string, rows int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BlockRequests.WithLabelValues(dataset, outcome).Inc()
	m.BlockDuration.WithLabelValues(dataset).Observe(elapsed.Seconds())
	if rows > 0 {
		m.RowsReturned.WithLabelValues(dataset).Add(float64(rows))
	}
}

// ObserveCacheLookup records a view cache hit or miss
func (m *Metrics) ObserveCacheLookup(dataset string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ViewCacheLookup.WithLabelValues(dataset, result).Inc()
}

func (m *Metrics) SetDatasetRecords(dataset string, n int) {
	if m == nil {
		return
	}
	m.DatasetRecords.WithLabelValues(dataset).Set(float64(n))
}

func (m *Metrics) ObserveHTTP(route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
