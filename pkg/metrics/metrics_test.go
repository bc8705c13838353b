package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSearchResultTypes(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSearch(0.001, 3, nil)
	m.ObserveSearch(0.001, 0, nil)
	m.ObserveSearch(0.001, 0, nil)
	m.ObserveSearch(0.001, 0, errors.New("boom"))

	if got := testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultHit)); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultEmpty)); got != 2 {
		t.Errorf("zero results = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultError)); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
	if testutil.CollectAndCount(m.SearchLatency) == 0 {
		t.Error("expected latency observations")
	}
}

func TestDocumentGauges(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.DocumentAdded(1)
	m.DocumentAdded(2)
	m.DocumentRemoved(1)
	m.DocumentRejected("duplicate_id")

	if got := testutil.ToFloat64(m.LiveDocuments); got != 1 {
		t.Errorf("live documents = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DocsIndexedTotal); got != 2 {
		t.Errorf("indexed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DocsRejectedTotal.WithLabelValues("duplicate_id")); got != 1 {
		t.Errorf("rejected = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSearch(1, 1, nil)
	m.DocumentAdded(1)
	m.DocumentRemoved(0)
	m.DocumentRejected("invalid_id")
	m.DuplicateRemoved()
	m.SetNoResultRequests(3)
	m.ObserveBatch(4, 1)
}
