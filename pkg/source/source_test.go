package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("mock", func(t *testing.T) {
		src, err := New(ctx, Params{Type: TypeMock, PageSize: 10, Seed: 1})
		require.NoError(t, err)
		assert.IsType(t, &Generator{}, src)
	})

	t.Run("mock with failures and latency", func(t *testing.T) {
		src, err := New(ctx, Params{Type: TypeMock, PageSize: 10, MinDelay: time.Millisecond,
			MaxDelay: 2 * time.Millisecond, FailureRate: 0.5})
		require.NoError(t, err)
		lat, ok := src.(*Latency)
		require.True(t, ok)
		assert.IsType(t, &Flaky{}, lat.Source)
	})

	t.Run("sqlite", func(t *testing.T) {
		repos := setupRepos(t)
		src, err := New(ctx, Params{Type: TypeSQLite, PageSize: 4, Pages: 2, Seed: 9,
			Archive: NewArchive(repos.Post, repos.Setting, 4)})
		require.NoError(t, err)
		require.IsType(t, &Archive{}, src)

		posts, err := src.FetchPage(ctx, 2)
		require.NoError(t, err)
		require.Len(t, posts, 4)
		assert.Equal(t, int64(5), posts[0].ID)
	})

	t.Run("sqlite without archive", func(t *testing.T) {
		_, err := New(ctx, Params{Type: TypeSQLite})
		require.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := New(ctx, Params{Type: "kafka"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown source type "kafka"`)
	})
}
