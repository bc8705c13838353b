package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/dedup"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/requestqueue"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
)

// Publisher receives flushed batches. *kafka.Producer and *Aggregator both
// implement it.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

const (
	defaultBufferSize    = 10000
	defaultBatchSize     = 100
	defaultFlushInterval = time.Second
)

// Collector buffers analytics events on a channel and hands them to its
// publishers in batches, either when a batch fills up or on every flush
// interval. Tracking never blocks: when the buffer is full the event is
// dropped.
type Collector struct {
	publishers    []Publisher
	eventCh       chan kafka.Event
	batchSize     int
	flushInterval time.Duration
	now           func() time.Time
	logger        *slog.Logger
	done          chan struct{}
}

type Option func(*Collector)

func WithBatchSize(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.flushInterval = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) { c.logger = l }
}

func NewCollector(bufferSize int, publishers []Publisher, opts ...Option) *Collector {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	c := &Collector{
		publishers:    publishers,
		eventCh:       make(chan kafka.Event, bufferSize),
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		now:           time.Now,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the publish loop. It runs until Close is called or ctx is
// cancelled, flushing whatever is still buffered before it returns.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		batch := make([]kafka.Event, 0, c.batchSize)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					c.flush(context.Background(), batch)
					return
				}
				batch = append(batch, event)
				if len(batch) >= c.batchSize {
					c.flush(ctx, batch)
					batch = make([]kafka.Event, 0, c.batchSize)
				}
			case <-ticker.C:
				if len(batch) > 0 {
					c.flush(ctx, batch)
					batch = make([]kafka.Event, 0, c.batchSize)
				}
			case <-ctx.Done():
				batch = c.drainRemaining(batch)
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				c.flush(flushCtx, batch)
				cancel()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// Track queues one event. Key selects the Kafka partition.
func (c *Collector) Track(key string, value any) {
	select {
	case c.eventCh <- kafka.Event{Key: key, Value: value}:
	default:
		c.logger.Warn("analytics event dropped (buffer full)", "key", key)
	}
}

// SearchRecorded turns a request queue entry into a search or zero-result
// event.
func (c *Collector) SearchRecorded(ev requestqueue.SearchEvent) {
	typ := EventSearch
	if ev.Returned == 0 {
		typ = EventZeroResult
	}
	c.Track(string(typ), SearchEvent{
		Type:      typ,
		Query:     ev.Query,
		Returned:  ev.Returned,
		Tick:      ev.Tick,
		Timestamp: c.now().UTC(),
	})
}

func (c *Collector) DuplicateRemoved(ev dedup.DuplicateEvent) {
	c.Track(string(EventDuplicateRemoved), DuplicateEvent{
		Type:        EventDuplicateRemoved,
		DocumentID:  ev.ID,
		DuplicateOf: ev.DuplicateOf,
		Timestamp:   c.now().UTC(),
	})
}

// Close stops accepting events and waits for the final flush. Track must
// not be called after Close.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) drainRemaining(batch []kafka.Event) []kafka.Event {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return batch
			}
			batch = append(batch, event)
		default:
			return batch
		}
	}
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) {
	if len(batch) == 0 {
		return
	}
	for _, p := range c.publishers {
		if err := p.PublishBatch(ctx, batch); err != nil {
			c.logger.Error("failed to publish analytics batch",
				"batch_size", len(batch),
				"error", err,
			)
		}
	}
	c.logger.Debug("analytics batch flushed", "events", len(batch))
}
