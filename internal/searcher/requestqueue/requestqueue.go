// Package requestqueue wraps an index's search and keeps count of the
// zero-result requests among the most recent MinutesInDay calls.
//
// Time is logical: every tracked call advances the clock by one tick, and
// old entries are evicted only when the next call arrives.
package requestqueue

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// MinutesInDay is the window size in ticks.
const MinutesInDay = 1440

// Searcher is the read operation the queue wraps.
type Searcher interface {
	FindTopDocuments(raw string, predicate document.Predicate) ([]document.Document, error)
}

// SearchEvent describes one recorded request.
type SearchEvent struct {
	Query    string `json:"query"`
	Returned int    `json:"returned"`
	Tick     uint64 `json:"tick"`
}

// Tracker receives one event per recorded request.
type Tracker interface {
	SearchRecorded(SearchEvent)
}

type request struct {
	results int
	tick    uint64
}

// Queue is not safe for concurrent use.
type Queue struct {
	searcher Searcher
	requests []request
	head     int
	clock    uint64
	noResult int
	metrics  *metrics.Metrics
	tracker  Tracker
	logger   *slog.Logger
}

type Option func(*Queue)

func WithMetrics(m *metrics.Metrics) Option {
	return func(q *Queue) { q.metrics = m }
}

func WithTracker(t Tracker) Option {
	return func(q *Queue) { q.tracker = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

func New(searcher Searcher, opts ...Option) *Queue {
	q := &Queue{
		searcher: searcher,
		requests: make([]request, 0, MinutesInDay),
		logger:   slog.Default().With("component", "request-queue"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// AddFindRequest runs the search once and records its result count. A
// failed search is returned as is and not recorded.
func (q *Queue) AddFindRequest(raw string, predicate document.Predicate) ([]document.Document, error) {
	docs, err := q.searcher.FindTopDocuments(raw, predicate)
	if err != nil {
		return nil, err
	}
	q.record(raw, len(docs))
	return docs, nil
}

func (q *Queue) AddFindRequestByStatus(raw string, status document.Status) ([]document.Document, error) {
	return q.AddFindRequest(raw, document.StatusIs(status))
}

func (q *Queue) AddFindRequestDefault(raw string) ([]document.Document, error) {
	return q.AddFindRequest(raw, document.DefaultPredicate())
}

// NoResultRequests returns the zero-result count as of the latest call.
func (q *Queue) NoResultRequests() int {
	return q.noResult
}

// Len returns the number of requests currently in the window.
func (q *Queue) Len() int {
	return len(q.requests) - q.head
}

func (q *Queue) record(raw string, results int) {
	q.clock++
	evicted := 0
	for q.head < len(q.requests) && q.clock-q.requests[q.head].tick >= MinutesInDay {
		if q.requests[q.head].results == 0 {
			q.noResult--
		}
		q.head++
		evicted++
	}
	if evicted > 0 {
		q.logger.Debug("requests evicted", "count", evicted, "tick", q.clock)
	}
	// Compact once the dead prefix outgrows the window so memory stays bounded.
	if q.head >= MinutesInDay {
		n := copy(q.requests, q.requests[q.head:])
		q.requests = q.requests[:n]
		q.head = 0
	}

	q.requests = append(q.requests, request{results: results, tick: q.clock})
	if results == 0 {
		q.noResult++
	}

	q.metrics.SetNoResultRequests(q.noResult)
	if q.tracker != nil {
		q.tracker.SearchRecorded(SearchEvent{
			Query:    raw,
			Returned: results,
			Tick:     q.clock,
		})
	}
}
