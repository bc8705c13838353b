// Package executor runs batches of independent read-only queries against
// one index in parallel.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Searcher is the read operation fanned out by the executor. It must be
// safe for concurrent calls, which holds for an index nobody mutates during
// the batch.
type Searcher interface {
	FindTopDocuments(raw string, predicate document.Predicate) ([]document.Document, error)
}

type Executor struct {
	searcher Searcher
	workers  int
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Executor)

// WithWorkers bounds the number of queries running at once. n <= 0 keeps
// the GOMAXPROCS default.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

func New(searcher Searcher, opts ...Option) *Executor {
	e := &Executor{
		searcher: searcher,
		workers:  runtime.GOMAXPROCS(0),
		logger:   slog.Default().With("component", "query-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessQueries runs FindTopDocuments with the default predicate for every
// query and returns the results in input order. Identical query strings
// that are in flight at the same time are searched once. The first failing
// query aborts the batch: queries already running finish, queries not yet
// started are skipped. Cancelling ctx has the same effect.
func (e *Executor) ProcessQueries(ctx context.Context, queries []string) ([][]document.Document, error) {
	results := make([][]document.Document, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	var (
		group    singleflight.Group
		searched atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, query := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err, _ := group.Do(query, func() (any, error) {
				searched.Add(1)
				return e.searcher.FindTopDocuments(query, document.DefaultPredicate())
			})
			if err != nil {
				return fmt.Errorf("query %d %q: %w", i, query, err)
			}
			// Each slot owns its slice; shared results are cloned.
			results[i] = slices.Clone(v.([]document.Document))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	deduped := len(queries) - int(searched.Load())
	e.metrics.ObserveBatch(len(queries), deduped)
	logger.FromContext(ctx, e.logger).Debug("query batch processed",
		"queries", len(queries),
		"workers", e.workers,
		"deduplicated", deduped,
	)
	return results, nil
}

// ProcessQueriesJoined returns the concatenation, in input order, of the
// per-query results of ProcessQueries.
func (e *Executor) ProcessQueriesJoined(ctx context.Context, queries []string) ([]document.Document, error) {
	perQuery, err := e.ProcessQueries(ctx, queries)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, docs := range perQuery {
		total += len(docs)
	}
	joined := make([]document.Document, 0, total)
	for _, docs := range perQuery {
		joined = append(joined, docs...)
	}
	return joined, nil
}
