// Package source provides post sources for the feed. All sources answer pages
// of posts with ids (page-1)*pageSize+offset, so pages never overlap.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/umputun/scrollfeed/pkg/domain"
)

// source types
const (
	TypeMock   = "mock"
	TypeSQLite = "sqlite"
)

// Source produces pages of posts on demand
type Source interface {
	FetchPage(ctx context.Context, page int) ([]domain.Post, error)
}

// Params defines the source chain built by New
type Params struct {
	Type        string
	PageSize    int
	Pages       int // pages seeded into an empty archive
	MinDelay    time.Duration
	MaxDelay    time.Duration
	FailureRate float64
	Seed        uint64
	Archive     *Archive // required for TypeSQLite
}

// New builds the base source for p.Type and wraps it with failure injection
// and simulated latency. The archive is seeded on first use.
func New(ctx context.Context, p Params) (Source, error) {
	gen := NewGenerator(p.PageSize, p.Seed)

	var src Source
	switch p.Type {
	case TypeMock, "":
		src = gen
	case TypeSQLite:
		if p.Archive == nil {
			return nil, fmt.Errorf("sqlite source requires archive")
		}
		if err := p.Archive.Seed(ctx, gen, p.Pages); err != nil {
			return nil, fmt.Errorf("seed archive: %w", err)
		}
		src = p.Archive
	default:
		return nil, fmt.Errorf("unknown source type %q", p.Type)
	}

	if p.FailureRate > 0 {
		src = NewFlaky(src, p.FailureRate)
	}
	if p.MaxDelay > 0 {
		src = NewLatency(src, p.MinDelay, p.MaxDelay)
	}
	return src, nil
}
