package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/scrollfeed/pkg/feed"
	"github.com/umputun/scrollfeed/pkg/source"
)

func newTestStore(ttl time.Duration, maxSessions int) *Store {
	return NewStore(context.Background(), Config{
		NewFeed: func() *feed.Controller {
			return feed.NewController(feed.Config{Source: source.NewGenerator(10, 7), PageSize: 10})
		},
		TTL:         ttl,
		MaxSessions: maxSessions,
	})
}

func TestStore_CreateStartsLoad(t *testing.T) {
	st := newTestStore(time.Minute, 0)
	sess := st.Create()
	require.NotNil(t, sess)
	assert.NotEmpty(t, sess.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sess.Feed.Wait(ctx))

	state := sess.Feed.Snapshot()
	assert.Len(t, state.Posts, 10)
	assert.Equal(t, int64(1), state.Posts[0].ID)
	assert.Equal(t, 1, state.Page)
	assert.True(t, state.HasMore)

	got, ok := st.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	_, ok = st.Get("unknown")
	assert.False(t, ok)
	assert.Equal(t, 1, st.Len())
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	st := newTestStore(time.Minute, 0)
	s1, s2 := st.Create(), st.Create()
	assert.NotEqual(t, s1.ID, s2.ID)

	ctx := context.Background()
	require.NoError(t, s1.Feed.Wait(ctx))
	require.NoError(t, s2.Feed.Wait(ctx))

	require.True(t, s1.Feed.RequestNextPage(ctx))
	assert.Len(t, s1.Feed.Snapshot().Posts, 20)
	assert.Len(t, s2.Feed.Snapshot().Posts, 10)
}

func TestStore_Sweep(t *testing.T) {
	st := newTestStore(10*time.Minute, 0)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	old := st.Create()
	require.NoError(t, old.Feed.Wait(context.Background()))
	sub := old.Trigger.Attach(old.Feed.Snapshot())
	require.NotNil(t, sub)

	now = now.Add(8 * time.Minute)
	fresh := st.Create()

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, st.Sweep())
	assert.Equal(t, 1, st.Len())

	_, ok := st.Get(old.ID)
	assert.False(t, ok)
	assert.True(t, sub.Released(), "trigger released on eviction")
	_, ok = st.Get(fresh.ID)
	assert.True(t, ok)
}

func TestStore_SweepDisabled(t *testing.T) {
	st := newTestStore(0, 0)
	st.Create()
	assert.Equal(t, 0, st.Sweep())
	assert.Equal(t, 1, st.Len())
}

func TestStore_MaxSessions(t *testing.T) {
	st := newTestStore(time.Hour, 2)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	first := st.Create()
	now = now.Add(time.Second)
	second := st.Create()
	now = now.Add(time.Second)
	third := st.Create()

	assert.Equal(t, 2, st.Len())
	_, ok := st.Get(first.ID)
	assert.False(t, ok, "least recently seen evicted")
	_, ok = st.Get(second.ID)
	assert.True(t, ok)
	_, ok = st.Get(third.ID)
	assert.True(t, ok)
}

func TestStore_RunJanitor(t *testing.T) {
	st := newTestStore(time.Millisecond, 0)
	st.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- st.RunJanitor(ctx, "@every 1s") }()

	require.Eventually(t, func() bool { return st.Len() == 0 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestStore_RunJanitorBadSchedule(t *testing.T) {
	st := newTestStore(time.Minute, 0)
	err := st.RunJanitor(context.Background(), "not a schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule session sweep")
}
