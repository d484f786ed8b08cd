package feed

import (
	"context"
	"sync"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/scrollfeed/pkg/domain"
)

// Pager is the part of Controller used by Trigger
type Pager interface {
	RequestNextPage(ctx context.Context) bool
	Snapshot() domain.FeedState
}

// Trigger watches the last rendered post and requests the next page once it is revealed.
// Only one subscription is active at a time; attaching to a new anchor releases the previous one.
type Trigger struct {
	pager Pager

	mu     sync.Mutex
	active *Subscription
}

// Subscription is a handle on the watched anchor. Its flags are guarded by the trigger lock.
type Subscription struct {
	mu       *sync.Mutex
	anchor   int64
	fired    bool
	released bool
}

// Anchor returns the id of the watched post
func (s *Subscription) Anchor() int64 { return s.anchor }

// Fired reports whether the subscription has already requested a page
func (s *Subscription) Fired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// Released reports whether the subscription is no longer watched
func (s *Subscription) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// NewTrigger makes a trigger for the given pager
func NewTrigger(pager Pager) *Trigger {
	return &Trigger{pager: pager}
}

// Attach points the trigger at the last post of state and returns the active subscription.
// Nothing is watched while loading, with no posts, or once the feed is exhausted.
func (t *Trigger) Attach(state domain.FeedState) *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state.Loading || !state.HasMore || len(state.Posts) == 0 {
		t.release()
		return nil
	}

	anchor := state.LastID()
	if t.active != nil && t.active.anchor == anchor && !t.active.fired {
		return t.active
	}
	t.release()
	t.active = &Subscription{mu: &t.mu, anchor: anchor}
	return t.active
}

// Fire handles the anchor becoming visible. The next page is requested only for the
// active anchor and only once per subscription. Returns true if the request was made.
func (t *Trigger) Fire(ctx context.Context, anchor int64) bool {
	t.mu.Lock()
	sub := t.active
	if sub == nil || sub.released || sub.fired || sub.anchor != anchor {
		t.mu.Unlock()
		lgr.Printf("[DEBUG] ignore trigger for anchor %d", anchor)
		return false
	}
	sub.fired = true
	t.mu.Unlock()

	requested := t.pager.RequestNextPage(ctx)
	t.Attach(t.pager.Snapshot())
	return requested
}

// Active returns the active subscription, nil if nothing is watched
func (t *Trigger) Active() *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Close releases the active subscription
func (t *Trigger) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.release()
}

// release drops the active subscription. Must be called under lock.
func (t *Trigger) release() {
	if t.active == nil {
		return
	}
	t.active.released = true
	t.active = nil
}
