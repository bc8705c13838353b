package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/dedup"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/requestqueue"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

type fakePublisher struct {
	mu      sync.Mutex
	batches [][]kafka.Event
	err     error
}

func (p *fakePublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, append([]kafka.Event(nil), events...))
	return p.err
}

func (p *fakePublisher) events() []kafka.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var all []kafka.Event
	for _, b := range p.batches {
		all = append(all, b...)
	}
	return all
}

var (
	_ requestqueue.Tracker = (*Collector)(nil)
	_ dedup.Reporter       = (*Collector)(nil)
	_ Publisher            = (*Aggregator)(nil)
	_ Publisher            = (*kafka.Producer)(nil)
)

func TestCollectorFlushesOnClose(t *testing.T) {
	pub := &fakePublisher{}
	agg := NewAggregator()
	c := NewCollector(16, []Publisher{pub, agg},
		WithLogger(logger.Discard()),
		WithBatchSize(100),
		WithFlushInterval(time.Hour),
	)
	c.Start(context.Background())

	c.SearchRecorded(requestqueue.SearchEvent{Query: "curly dog", Returned: 2, Tick: 1})
	c.SearchRecorded(requestqueue.SearchEvent{Query: "empty request", Returned: 0, Tick: 2})
	c.DuplicateRemoved(dedup.DuplicateEvent{ID: 3, DuplicateOf: 2})
	c.Close()

	events := pub.events()
	if len(events) != 3 {
		t.Fatalf("published %d events, want 3", len(events))
	}
	wantKeys := []string{"search", "zero_result", "duplicate_removed"}
	for i, key := range wantKeys {
		if events[i].Key != key {
			t.Errorf("event %d key = %q, want %q", i, events[i].Key, key)
		}
	}
	search, ok := events[1].Value.(SearchEvent)
	if !ok {
		t.Fatalf("event 1 value is %T", events[1].Value)
	}
	if search.Type != EventZeroResult || search.Tick != 2 || search.Query != "empty request" {
		t.Errorf("search event = %+v", search)
	}
	dup := events[2].Value.(DuplicateEvent)
	if dup.DocumentID != 3 || dup.DuplicateOf != 2 {
		t.Errorf("duplicate event = %+v", dup)
	}

	stats := agg.Stats()
	if stats.TotalSearches != 2 || stats.ZeroResultCount != 1 || stats.DuplicatesRemoved != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCollectorFlushesFullBatches(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(64, []Publisher{pub},
		WithLogger(logger.Discard()),
		WithBatchSize(2),
		WithFlushInterval(time.Hour),
	)
	c.Start(context.Background())
	for i := 0; i < 5; i++ {
		c.Track("search", SearchEvent{Query: "q", Returned: 1, Tick: uint64(i + 1)})
	}
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	sizes := make([]int, len(pub.batches))
	for i, b := range pub.batches {
		sizes[i] = len(b)
	}
	if len(sizes) != 3 || sizes[0] != 2 || sizes[1] != 2 || sizes[2] != 1 {
		t.Errorf("batch sizes = %v, want [2 2 1]", sizes)
	}
}

func TestCollectorDropsWhenFull(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(1, []Publisher{pub}, WithLogger(logger.Discard()))
	// Not started: the second event has nowhere to go.
	c.Track("a", 1)
	c.Track("b", 2)
	c.Start(context.Background())
	c.Close()
	if got := len(pub.events()); got != 1 {
		t.Errorf("published %d events, want 1", got)
	}
}

func TestCollectorFlushesOnCancel(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCollector(8, []Publisher{pub},
		WithLogger(logger.Discard()),
		WithFlushInterval(time.Hour),
	)
	c.Track("search", SearchEvent{Query: "q"})
	c.Start(ctx)
	cancel()
	<-c.done
	if got := len(pub.events()); got != 1 {
		t.Errorf("published %d events, want 1", got)
	}
}

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator()
	start := agg.startTime
	agg.now = func() time.Time { return start.Add(2 * time.Minute) }

	events := []kafka.Event{
		{Key: "search", Value: SearchEvent{Query: "cat", Returned: 3}},
		{Key: "search", Value: SearchEvent{Query: "cat", Returned: 1}},
		{Key: "zero_result", Value: SearchEvent{Query: "dog", Returned: 0}},
		{Key: "zero_result", Value: SearchEvent{Query: "bird", Returned: 0}},
		{Key: "duplicate_removed", Value: DuplicateEvent{DocumentID: 4, DuplicateOf: 1}},
		{Key: "other", Value: 42},
	}
	if err := agg.PublishBatch(context.Background(), events); err != nil {
		t.Fatal(err)
	}

	stats := agg.Stats()
	if stats.TotalSearches != 4 || stats.ZeroResultCount != 2 || stats.DuplicatesRemoved != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.QueriesPerMinute != 2 {
		t.Errorf("QueriesPerMinute = %v, want 2", stats.QueriesPerMinute)
	}
	wantTop := []QueryCount{{"cat", 2}, {"bird", 1}, {"dog", 1}}
	if len(stats.TopQueries) != len(wantTop) {
		t.Fatalf("TopQueries = %v", stats.TopQueries)
	}
	for i := range wantTop {
		if stats.TopQueries[i] != wantTop[i] {
			t.Errorf("TopQueries[%d] = %v, want %v", i, stats.TopQueries[i], wantTop[i])
		}
	}
	if len(stats.ZeroResultQueries) != 2 || stats.ZeroResultQueries[0].Query != "bird" {
		t.Errorf("ZeroResultQueries = %v", stats.ZeroResultQueries)
	}
}

func TestTopNLimit(t *testing.T) {
	counts := make(map[string]int64)
	for i := 0; i < 25; i++ {
		counts[string(rune('a'+i))] = int64(i)
	}
	top := topN(counts, topQueriesLimit)
	if len(top) != topQueriesLimit {
		t.Fatalf("len = %d", len(top))
	}
	if top[0].Query != "y" || top[0].Count != 24 {
		t.Errorf("top[0] = %v", top[0])
	}
}

func TestHandler(t *testing.T) {
	agg := NewAggregator()
	_ = agg.PublishBatch(context.Background(), []kafka.Event{
		{Key: "search", Value: SearchEvent{Query: "cat", Returned: 1}},
	})
	h := NewHandler(agg)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats AggregatedStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalSearches != 1 || len(stats.TopQueries) != 1 {
		t.Errorf("stats = %+v", stats)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stats", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d", rec.Code)
	}
}

type countingPublisher struct {
	calls int
	err   error
}

func (p *countingPublisher) PublishBatch(context.Context, []kafka.Event) error {
	p.calls++
	return p.err
}

func TestGuardRetriesThenOpens(t *testing.T) {
	next := &countingPublisher{err: errors.New("broker down")}
	g := Guard("test", next,
		resilience.BreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour},
		resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond},
	)
	batch := []kafka.Event{{Key: "search", Value: 1}}

	err := g.PublishBatch(context.Background(), batch)
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen after threshold", err)
	}
	if next.calls != 2 {
		t.Errorf("publisher called %d times, want 2", next.calls)
	}

	if err := g.PublishBatch(context.Background(), batch); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("second batch err = %v", err)
	}
	if next.calls != 2 {
		t.Errorf("open breaker reached publisher: %d calls", next.calls)
	}
}

func TestGuardPassesThrough(t *testing.T) {
	next := &countingPublisher{}
	g := Guard("test", next, resilience.BreakerConfig{}, resilience.RetryConfig{})
	if err := g.PublishBatch(context.Background(), nil); err != nil || next.calls != 1 {
		t.Errorf("err=%v calls=%d", err, next.calls)
	}
}
