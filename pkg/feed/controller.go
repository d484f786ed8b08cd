// Package feed implements the paginated feed of a single session. Controller owns
// the loaded posts, the page cursor and the loading/hasMore flags; Trigger asks it
// for the next page when the last rendered post becomes visible.
package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/scrollfeed/pkg/domain"
)

// DefaultMaxPages is the page number after which the feed is considered exhausted
const DefaultMaxPages = 10

// Source produces pages of posts
type Source interface {
	FetchPage(ctx context.Context, page int) ([]domain.Post, error)
}

// Controller is the feed state machine. Idle -> Loading on an accepted load,
// Loading -> Idle or Exhausted when the page arrives, any state -> Loading on refresh.
//
// At most one load is in flight per epoch. Refresh starts a new epoch, and
// completions of loads started in an older epoch are dropped.
type Controller struct {
	source   Source
	pageSize int
	maxPages int

	mu      sync.Mutex
	posts   []domain.Post
	page    int
	loading bool
	hasMore bool
	epoch   uint64
	idle    chan struct{} // closed when the in-flight load of the current epoch ends
}

// Config holds configuration for Controller
type Config struct {
	Source   Source
	PageSize int // expected page size, shorter pages mean end of data
	MaxPages int // exhaustion threshold, 0 means DefaultMaxPages, negative disables it
}

// NewController makes a controller in the initial state: no posts, page 1, has more.
func NewController(cfg Config) *Controller {
	if cfg.MaxPages == 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	return &Controller{
		source:   cfg.Source,
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
		page:     1,
		hasMore:  true,
	}
}

// Start issues the automatic page-1 load of a new session in the background.
// The controller is loading when Start returns. Returns false if a load is in flight.
func (c *Controller) Start(ctx context.Context) bool {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return false
	}
	epoch := c.begin()
	c.mu.Unlock()

	go c.complete(ctx, epoch, 1, false)
	return true
}

// LoadPage loads page n and blocks until it is applied. Page 1 replaces the posts,
// other pages are appended. Returns false without doing anything if a load is in flight.
// Load failures are logged and otherwise ignored.
func (c *Controller) LoadPage(ctx context.Context, n int) bool {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return false
	}
	epoch := c.begin()
	c.mu.Unlock()

	c.complete(ctx, epoch, n, false)
	return true
}

// RequestNextPage advances the page cursor and loads the new page.
// Does nothing and returns false while loading or after the feed is exhausted.
// The cursor moves back if the load fails, so the same page is asked for next time.
func (c *Controller) RequestNextPage(ctx context.Context) bool {
	c.mu.Lock()
	if c.loading || !c.hasMore {
		c.mu.Unlock()
		return false
	}
	c.page++
	n := c.page
	epoch := c.begin()
	c.mu.Unlock()

	c.complete(ctx, epoch, n, true)
	return true
}

// Refresh drops all loaded posts and reloads page 1. It can be called while a load
// is in flight; that load's result is discarded when it arrives.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.epoch++
	c.posts = nil
	c.page = 1
	c.hasMore = true
	epoch := c.begin()
	c.mu.Unlock()

	c.complete(ctx, epoch, 1, false)
}

// Wait blocks until no load is in flight or ctx is done
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		if !c.loading {
			c.mu.Unlock()
			return nil
		}
		idle := c.idle
		c.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Snapshot returns a copy of the current feed state
func (c *Controller) Snapshot() domain.FeedState {
	c.mu.Lock()
	defer c.mu.Unlock()
	posts := make([]domain.Post, len(c.posts))
	copy(posts, c.posts)
	return domain.FeedState{Posts: posts, Page: c.page, Loading: c.loading, HasMore: c.hasMore}
}

// begin marks a load as in flight and returns its epoch. Must be called under lock.
func (c *Controller) begin() uint64 {
	if c.idle != nil {
		close(c.idle) // superseded by refresh, wake up waiters so they pick the new channel
	}
	c.idle = make(chan struct{})
	c.loading = true
	return c.epoch
}

// complete fetches page n and applies the result if epoch is still current
func (c *Controller) complete(ctx context.Context, epoch uint64, n int, rollback bool) {
	posts, err := c.source.FetchPage(ctx, n)

	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		lgr.Printf("[DEBUG] drop page %d of stale epoch %d, current %d", n, epoch, c.epoch)
		return
	}
	defer c.finish()

	if err != nil {
		lgr.Printf("[WARN] %v", fmt.Errorf("load page %d: %w", n, err))
		if rollback && c.page == n {
			c.page--
		}
		return
	}

	if n == 1 {
		c.posts = append([]domain.Post(nil), posts...)
	} else {
		c.posts = append(c.posts, posts...)
	}

	if c.exhausted(n, len(posts)) {
		c.hasMore = false
		lgr.Printf("[DEBUG] feed exhausted at page %d, %d posts loaded", n, len(c.posts))
	}
}

// finish releases the in-flight flag. Must be called under lock.
func (c *Controller) finish() {
	c.loading = false
	if c.idle != nil {
		close(c.idle)
		c.idle = nil
	}
}

// exhausted reports if page n with size posts is the last one
func (c *Controller) exhausted(n, size int) bool {
	if c.maxPages > 0 && n >= c.maxPages {
		return true
	}
	return c.pageSize > 0 && size < c.pageSize
}
