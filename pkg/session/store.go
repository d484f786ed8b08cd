// Package session keeps the feed of every browser session. Each session owns its own
// feed controller and scroll trigger; nothing is shared between sessions.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/umputun/scrollfeed/pkg/feed"
)

// Session is a single browser session feed
type Session struct {
	ID      string
	Feed    *feed.Controller
	Trigger *feed.Trigger

	lastSeen time.Time
}

// Store creates, finds and evicts sessions
type Store struct {
	ctx         context.Context
	newFeed     func() *feed.Controller
	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// Config holds configuration for Store
type Config struct {
	NewFeed     func() *feed.Controller // makes a controller for a new session
	TTL         time.Duration           // idle time after which a session is evicted
	MaxSessions int                     // oldest sessions are evicted above this, 0 means no limit
}

// NewStore makes a session store. The initial page load of new sessions runs with ctx.
func NewStore(ctx context.Context, cfg Config) *Store {
	return &Store{
		ctx:         ctx,
		newFeed:     cfg.NewFeed,
		ttl:         cfg.TTL,
		maxSessions: cfg.MaxSessions,
		now:         time.Now,
		sessions:    map[string]*Session{},
	}
}

// Get returns the session with the given id and marks it as seen
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		sess.lastSeen = s.now()
	}
	return sess, ok
}

// Create makes a new session and starts loading its first page
func (s *Store) Create() *Session {
	ctrl := s.newFeed()
	sess := &Session{
		ID:       uuid.NewString(),
		Feed:     ctrl,
		Trigger:  feed.NewTrigger(ctrl),
		lastSeen: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	evicted := s.evictOverflow(sess.ID)
	s.mu.Unlock()

	for _, old := range evicted {
		old.Trigger.Close()
	}
	if len(evicted) > 0 {
		lgr.Printf("[INFO] evicted %d sessions over the limit of %d", len(evicted), s.maxSessions)
	}

	ctrl.Start(s.ctx)
	lgr.Printf("[DEBUG] session %s created", sess.ID)
	return sess
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than ttl and releases their triggers.
// Returns the number of removed sessions.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Trigger.Close()
	}
	if len(expired) > 0 {
		lgr.Printf("[DEBUG] swept %d idle sessions", len(expired))
	}
	return len(expired)
}

// Close releases all sessions
func (s *Store) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = map[string]*Session{}
	s.mu.Unlock()

	for _, sess := range all {
		sess.Trigger.Close()
	}
}

// RunJanitor sweeps idle sessions on the cron schedule until ctx is done
func (s *Store) RunJanitor(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", schedule, err)
	}
	c.Start()
	lgr.Printf("[INFO] session janitor started, schedule %q, ttl %v", schedule, s.ttl)

	<-ctx.Done()
	<-c.Stop().Done()
	s.Close()
	lgr.Printf("[INFO] session janitor stopped")
	return nil
}

// evictOverflow drops the least recently seen sessions above maxSessions, never the keep one.
// Must be called under lock.
func (s *Store) evictOverflow(keep string) []*Session {
	if s.maxSessions <= 0 || len(s.sessions) <= s.maxSessions {
		return nil
	}
	others := make([]*Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		if id != keep {
			others = append(others, sess)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i].lastSeen.Before(others[j].lastSeen) })

	evicted := others[:len(s.sessions)-s.maxSessions]
	for _, sess := range evicted {
		delete(s.sessions, sess.ID)
	}
	return evicted
}
