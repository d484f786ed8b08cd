package source

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/umputun/scrollfeed/pkg/domain"
)

// DefaultPageSize is the number of posts in a page
const DefaultPageSize = 10

// maxAge limits how far back generated post dates go
const maxAge = 10_000_000_000 * time.Millisecond

// Generator produces synthetic posts. Ids are derived from the page number,
// so pages are globally ordered and never overlap.
type Generator struct {
	pageSize int
	now      func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator makes a generator for pages of the given size. Zero seed picks a random one.
func NewGenerator(pageSize int, seed uint64) *Generator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{
		pageSize: pageSize,
		now:      time.Now,
		rnd:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // not for crypto
	}
}

// FetchPage returns exactly pageSize posts for the given 1-based page
func (g *Generator) FetchPage(ctx context.Context, page int) ([]domain.Post, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page %d", page)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.Page(page), nil
}

// Page generates posts for the given page without checks
func (g *Generator) Page(page int) []domain.Post {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	startID := int64((page-1)*g.pageSize + 1)
	posts := make([]domain.Post, 0, g.pageSize)
	for i := range g.pageSize {
		id := startID + int64(i)
		posts = append(posts, domain.Post{
			ID:    id,
			Title: fmt.Sprintf("Post %d: Lorem ipsum dolor sit amet", id),
			Content: fmt.Sprintf("This is the content for post %d. Lorem ipsum dolor sit amet, consectetur adipiscing elit. "+
				"Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua. "+
				"Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris.", id),
			Author:   fmt.Sprintf("User %d", g.rnd.IntN(100)+1),
			Date:     now.Add(-time.Duration(g.rnd.Int64N(int64(maxAge)))),
			Likes:    g.rnd.IntN(1000),
			Comments: g.rnd.IntN(50),
		})
	}
	return posts
}

// PageSize returns the number of posts per generated page
func (g *Generator) PageSize() int {
	return g.pageSize
}
