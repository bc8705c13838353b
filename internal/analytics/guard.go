package analytics

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

// guardedPublisher retries failed batches and stops calling a publisher
// that keeps failing until its breaker lets a probe through.
type guardedPublisher struct {
	next    Publisher
	name    string
	breaker *resilience.Breaker
	retry   resilience.RetryConfig
}

// Guard wraps p with retry and a circuit breaker. While the breaker is open
// batches fail fast with resilience.ErrCircuitOpen and the Collector drops
// them.
func Guard(name string, p Publisher, breaker resilience.BreakerConfig, retry resilience.RetryConfig) Publisher {
	return &guardedPublisher{
		next:    p,
		name:    name,
		breaker: resilience.NewBreaker(name, breaker),
		retry:   retry,
	}
}

func (g *guardedPublisher) PublishBatch(ctx context.Context, events []kafka.Event) error {
	return resilience.Retry(ctx, g.name, g.retry, func(ctx context.Context) error {
		return g.breaker.Execute(func() error {
			return g.next.PublishBatch(ctx, events)
		})
	})
}
