// Package metrics defines the Prometheus collectors used by the search
// server and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result types recorded on SearchQueriesTotal.
const (
	ResultHit   = "hit"
	ResultEmpty = "zero_result"
	ResultError = "error"
)

// Metrics holds all Prometheus collectors for the search server. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	DocsIndexedTotal       prometheus.Counter
	DocsRemovedTotal       prometheus.Counter
	DocsRejectedTotal      *prometheus.CounterVec
	LiveDocuments          prometheus.Gauge
	SearchQueriesTotal     *prometheus.CounterVec
	SearchLatency          prometheus.Histogram
	SearchResultsCount     prometheus.Histogram
	NoResultRequests       prometheus.Gauge
	DuplicatesRemovedTotal prometheus.Counter
	ParallelBatchSize      prometheus.Histogram
	ParallelQueriesDeduped prometheus.Counter
}

// New creates all collectors and registers them with reg. Tests pass a fresh
// prometheus.NewRegistry(); the CLI passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Total documents added to the index.",
			},
		),
		DocsRemovedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_removed_total",
				Help: "Total documents removed from the index.",
			},
		),
		DocsRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docs_rejected_total",
				Help: "Documents rejected on insert by reason (invalid_id, duplicate_id, invalid_word).",
			},
			[]string{"reason"},
		),
		LiveDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_live_documents",
				Help: "Number of documents currently live in the index.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),
		NoResultRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "search_no_result_requests",
				Help: "Zero-result requests inside the request tracker's sliding window.",
			},
		),
		DuplicatesRemovedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "duplicates_removed_total",
				Help: "Total documents removed as duplicates.",
			},
		),
		ParallelBatchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "parallel_batch_size",
				Help:    "Number of queries per parallel batch.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		ParallelQueriesDeduped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "parallel_queries_deduped_total",
				Help: "Queries in a parallel batch answered by an identical in-flight query.",
			},
		),
	}

	reg.MustRegister(
		m.DocsIndexedTotal,
		m.DocsRemovedTotal,
		m.DocsRejectedTotal,
		m.LiveDocuments,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.NoResultRequests,
		m.DuplicatesRemovedTotal,
		m.ParallelBatchSize,
		m.ParallelQueriesDeduped,
	)

	return m
}

// ObserveSearch records one finished FindTopDocuments call.
func (m *Metrics) ObserveSearch(seconds float64, results int, err error) {
	if m == nil {
		return
	}
	m.SearchLatency.Observe(seconds)
	switch {
	case err != nil:
		m.SearchQueriesTotal.WithLabelValues(ResultError).Inc()
		return
	case results == 0:
		m.SearchQueriesTotal.WithLabelValues(ResultEmpty).Inc()
	default:
		m.SearchQueriesTotal.WithLabelValues(ResultHit).Inc()
	}
	m.SearchResultsCount.Observe(float64(results))
}

func (m *Metrics) DocumentAdded(live int) {
	if m == nil {
		return
	}
	m.DocsIndexedTotal.Inc()
	m.LiveDocuments.Set(float64(live))
}

func (m *Metrics) DocumentRejected(reason string) {
	if m == nil {
		return
	}
	m.DocsRejectedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) DocumentRemoved(live int) {
	if m == nil {
		return
	}
	m.DocsRemovedTotal.Inc()
	m.LiveDocuments.Set(float64(live))
}

func (m *Metrics) DuplicateRemoved() {
	if m == nil {
		return
	}
	m.DuplicatesRemovedTotal.Inc()
}

func (m *Metrics) SetNoResultRequests(n int) {
	if m == nil {
		return
	}
	m.NoResultRequests.Set(float64(n))
}

func (m *Metrics) ObserveBatch(size, deduped int) {
	if m == nil {
		return
	}
	m.ParallelBatchSize.Observe(float64(size))
	m.ParallelQueriesDeduped.Add(float64(deduped))
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
