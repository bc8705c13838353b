package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/dedup"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/requestqueue"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
	"github.com/prometheus/client_golang/prometheus"
)

// queryResult is one line of output.
type queryResult struct {
	Query     string              `json:"query"`
	Documents []document.Document `json:"documents"`
}

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	corpusPath := flag.String("corpus", "", "YAML corpus file (overrides corpus.path)")
	readStdin := flag.Bool("stdin", false, "read additional queries from stdin, one per line")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpusPath != "" {
		cfg.Corpus.Path = *corpusPath
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var in io.Reader
	if *readStdin {
		in = os.Stdin
	}
	if err := run(ctx, cfg, prometheus.DefaultRegisterer, flag.Args(), in, os.Stdout); err != nil {
		code := exitCode(err)
		if code == exitInvalidQuery {
			slog.Error("invalid query", "error", err)
		} else {
			slog.Error("search server failed", "error", err)
		}
		os.Exit(code)
	}
}

const (
	exitFailure      = 1
	exitInvalidQuery = 2
)

// exitCode separates malformed input words, in queries or in the corpus,
// from every other failure.
func exitCode(err error) int {
	if apperrors.IsValidation(err) {
		return exitInvalidQuery
	}
	return exitFailure
}

// run builds the index from the configured corpus, runs the corpus queries,
// args and any lines read from in as one parallel batch, and writes one JSON
// line per query to out.
func run(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, args []string, in io.Reader, out io.Writer) error {
	slog.Info("starting search server",
		"workers", cfg.Executor.Workers,
		"corpus", cfg.Corpus.Path,
		"kafka_enabled", cfg.Kafka.Enabled,
	)

	m := metrics.New(reg)
	aggregator := analytics.NewAggregator()

	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, map[string]http.Handler{
			"/stats": analytics.NewHandler(aggregator),
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	publishers := []analytics.Publisher{aggregator}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		publishers = append(publishers, analytics.Guard("kafka-analytics", producer,
			resilience.BreakerConfig{}, resilience.RetryConfig{}))
		slog.Info("analytics publishing enabled",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.AnalyticsTopic,
		)
	}
	collector := analytics.NewCollector(cfg.Kafka.BufferSize, publishers)
	collector.Start(ctx)
	// Deferred after the producer so the final flush reaches Kafka before
	// the writer closes.
	defer collector.Close()

	idx, err := index.NewFromText(cfg.Index.StopWords,
		index.WithMetrics(m),
		index.WithLogger(logger.WithComponent("index")),
	)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	slog.Info("index created", "stop_words", idx.StopWords().Len())

	var queries []string
	if cfg.Corpus.Path != "" {
		c, err := corpus.Load(cfg.Corpus.Path)
		if err != nil {
			return err
		}
		if _, err := c.AddTo(idx, logger.WithComponent("corpus")); err != nil {
			return err
		}
		queries = append(queries, c.Queries...)
	}

	if cfg.Corpus.RemoveDuplicates {
		removed := dedup.RemoveDuplicates(idx,
			dedup.WithMetrics(m),
			dedup.WithReporter(collector),
			dedup.WithLogger(logger.WithComponent("dedup")),
		)
		slog.Info("duplicates removed", "count", len(removed), "remaining", idx.DocumentCount())
	}

	queries = append(queries, args...)
	if in != nil {
		lines, err := readLines(in)
		if err != nil {
			return err
		}
		queries = append(queries, lines...)
	}
	if len(queries) == 0 {
		slog.Warn("no queries to run")
		return nil
	}

	exec := executor.New(idx,
		executor.WithWorkers(cfg.Executor.Workers),
		executor.WithMetrics(m),
		executor.WithLogger(logger.WithComponent("query-executor")),
	)
	batchCtx := logger.WithBatchID(ctx, strconv.FormatInt(time.Now().UnixNano(), 36))
	results, err := exec.ProcessQueries(batchCtx, queries)
	if err != nil {
		return fmt.Errorf("processing queries: %w", err)
	}

	enc := json.NewEncoder(out)
	for i, q := range queries {
		if err := enc.Encode(queryResult{Query: q, Documents: results[i]}); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
	}

	// The batch is read-only, so replaying it through the request queue
	// sees the same result counts the executor returned.
	queue := requestqueue.New(idx,
		requestqueue.WithMetrics(m),
		requestqueue.WithTracker(collector),
		requestqueue.WithLogger(logger.WithComponent("request-queue")),
	)
	for _, q := range queries {
		if _, err := queue.AddFindRequestDefault(q); err != nil {
			return fmt.Errorf("tracking query %q: %w", q, err)
		}
	}
	slog.Info("queries processed",
		"queries", len(queries),
		"no_result_requests", queue.NoResultRequests(),
	)
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading queries: %w", err)
	}
	return lines, nil
}
