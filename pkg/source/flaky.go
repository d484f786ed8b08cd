package source

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/umputun/scrollfeed/pkg/domain"
)

// ErrInjected is returned by Flaky for simulated failures
var ErrInjected = errors.New("injected source failure")

// Flaky fails a share of page fetches, used to exercise the load failure path
type Flaky struct {
	Source
	rate float64
	roll func() float64
}

// NewFlaky wraps src to fail with probability rate, clamped to [0, 1]
func NewFlaky(src Source, rate float64) *Flaky {
	rate = max(0, min(rate, 1))
	return &Flaky{Source: src, rate: rate, roll: rand.Float64} //nolint:gosec // not for crypto
}

// FetchPage fails with ErrInjected or delegates to the wrapped source
func (f *Flaky) FetchPage(ctx context.Context, page int) ([]domain.Post, error) {
	if f.rate > 0 && f.roll() < f.rate {
		return nil, fmt.Errorf("fetch page %d: %w", page, ErrInjected)
	}
	return f.Source.FetchPage(ctx, page)
}
