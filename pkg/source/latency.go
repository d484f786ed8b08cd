package source

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/umputun/scrollfeed/pkg/domain"
)

// Latency delays every page fetch by a random duration in [min, max),
// standing in for the round trip of a remote API.
type Latency struct {
	Source
	minDelay time.Duration
	maxDelay time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewLatency wraps src with a uniform random delay in [minDelay, maxDelay)
func NewLatency(src Source, minDelay, maxDelay time.Duration) *Latency {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Latency{Source: src, minDelay: minDelay, maxDelay: maxDelay, sleep: sleepCtx}
}

// FetchPage waits for the simulated latency, then delegates to the wrapped source
func (l *Latency) FetchPage(ctx context.Context, page int) ([]domain.Post, error) {
	if err := l.sleep(ctx, l.delay()); err != nil {
		return nil, err
	}
	return l.Source.FetchPage(ctx, page)
}

func (l *Latency) delay() time.Duration {
	spread := l.maxDelay - l.minDelay
	if spread <= 0 {
		return l.minDelay
	}
	return l.minDelay + rand.N(spread) //nolint:gosec // jitter only
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
