package analytics

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
)

const topQueriesLimit = 10

type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	DuplicatesRemoved int64        `json:"duplicates_removed"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator keeps running totals over the events a Collector flushes.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     int64
	zeroResults       int64
	duplicates        int64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	startTime         time.Time
	now               func() time.Time
	logger            *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
		now:               time.Now,
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// PublishBatch records every known event in the batch and skips the rest.
func (a *Aggregator) PublishBatch(_ context.Context, events []kafka.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, event := range events {
		switch ev := event.Value.(type) {
		case SearchEvent:
			a.recordSearchEvent(ev)
		case DuplicateEvent:
			a.duplicates++
		default:
			a.logger.Warn("unknown analytics event", "key", event.Key)
		}
	}
	return nil
}

func (a *Aggregator) recordSearchEvent(ev SearchEvent) {
	a.totalSearches++
	a.queryCounts[ev.Query]++
	if ev.Returned == 0 {
		a.zeroResults++
		a.zeroResultQueries[ev.Query]++
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:     a.totalSearches,
		ZeroResultCount:   a.zeroResults,
		DuplicatesRemoved: a.duplicates,
		TopQueries:        topN(a.queryCounts, topQueriesLimit),
		ZeroResultQueries: topN(a.zeroResultQueries, topQueriesLimit),
	}
	if elapsed := a.now().Sub(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

// topN orders by count descending, then query ascending so equal counts
// come out in a stable order.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	slices.SortFunc(result, func(x, y QueryCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Query, y.Query)
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
