package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatency_FetchPage(t *testing.T) {
	var delays []time.Duration
	l := NewLatency(NewGenerator(10, 1), time.Second, 2*time.Second)
	l.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	for range 50 {
		posts, err := l.FetchPage(context.Background(), 2)
		require.NoError(t, err)
		require.Len(t, posts, 10)
		assert.Equal(t, int64(11), posts[0].ID)
	}
	require.Len(t, delays, 50)
	for _, d := range delays {
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 2*time.Second)
	}
}

func TestLatency_SleepFails(t *testing.T) {
	l := NewLatency(NewGenerator(10, 1), time.Second, time.Second)
	l.sleep = func(_ context.Context, d time.Duration) error {
		assert.Equal(t, time.Second, d, "fixed delay when min equals max")
		return errors.New("interrupted")
	}
	_, err := l.FetchPage(context.Background(), 1)
	require.EqualError(t, err, "interrupted")
}

func TestLatency_Canceled(t *testing.T) {
	l := NewLatency(NewGenerator(10, 1), time.Minute, 2*time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	st := time.Now()
	_, err := l.FetchPage(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(st), 5*time.Second)
}

func TestSleepCtx(t *testing.T) {
	require.NoError(t, sleepCtx(context.Background(), time.Millisecond))
	require.NoError(t, sleepCtx(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleepCtx(ctx, 0), context.Canceled)
}
