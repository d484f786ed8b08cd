package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configContent := `
server:
  listen: ":9090"
  timeout: 45s
  base_url: https://feed.example.com
feed:
  page_size: 20
  max_pages: 5
source:
  type: sqlite
  min_delay: 100ms
  max_delay: 300ms
  failure_rate: 0.1
  seed: 42
database:
  dsn: "file:/tmp/feed.db"
session:
  ttl: 10m
  max_sessions: 50
  sweep: "@every 30s"
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "https://feed.example.com", cfg.Server.BaseURL)
		assert.Equal(t, 20, cfg.Feed.PageSize)
		assert.Equal(t, 5, cfg.Feed.MaxPages)
		assert.Equal(t, "sqlite", cfg.Source.Type)
		assert.Equal(t, 100*time.Millisecond, cfg.Source.MinDelay)
		assert.Equal(t, 300*time.Millisecond, cfg.Source.MaxDelay)
		assert.InDelta(t, 0.1, cfg.Source.FailureRate, 0.0001)
		assert.Equal(t, uint64(42), cfg.Source.Seed)
		assert.Equal(t, "file:/tmp/feed.db", cfg.Database.DSN)
		assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
		assert.Equal(t, 50, cfg.Session.MaxSessions)
		assert.Equal(t, "@every 30s", cfg.Session.Sweep)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "server:\n  listen: \":8081\"\n"))
		require.NoError(t, err)

		assert.Equal(t, ":8081", cfg.Server.Listen)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.Equal(t, 10, cfg.Feed.PageSize)
		assert.Equal(t, 10, cfg.Feed.MaxPages)
		assert.Equal(t, "mock", cfg.Source.Type)
		assert.Equal(t, time.Second, cfg.Source.MinDelay)
		assert.Equal(t, 2*time.Second, cfg.Source.MaxDelay)
		assert.Zero(t, cfg.Source.FailureRate)
		assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
		assert.Equal(t, 1000, cfg.Session.MaxSessions)
		assert.Equal(t, "@every 1m", cfg.Session.Sweep)
	})

	t.Run("no delay", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "source:\n  no_delay: true\n"))
		require.NoError(t, err)
		assert.Zero(t, cfg.Source.MinDelay)
		assert.Zero(t, cfg.Source.MaxDelay)
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("FEED_LISTEN", ":7070")
		cfg, err := Load(writeConfig(t, "server:\n  listen: \"${FEED_LISTEN}\"\n"))
		require.NoError(t, err)
		assert.Equal(t, ":7070", cfg.Server.Listen)
	})

	t.Run("file not found", func(t *testing.T) {
		cfg, err := Load("/non/existent/file.yml")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configContent := `
invalid yaml content
  with bad indentation
    and no structure
`
		cfg, err := Load(writeConfig(t, configContent))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "unknown source", content: "source:\n  type: kafka\n", errMsg: "source.type must be mock or sqlite"},
		{name: "delays reversed", content: "source:\n  min_delay: 2s\n  max_delay: 1s\n", errMsg: "max_delay must not be less"},
		{name: "failure rate", content: "source:\n  failure_rate: 1.5\n", errMsg: "failure_rate must be between 0 and 1"},
		{name: "short timeout", content: "server:\n  timeout: 10ms\n", errMsg: "server timeout must be at least 1 second"},
		{name: "negative page size", content: "feed:\n  page_size: -1\n", errMsg: "page_size must be at least 1"},
		{name: "sqlite without pages", content: "source:\n  type: sqlite\nfeed:\n  max_pages: -1\n", errMsg: "requires positive feed.max_pages"},
		{name: "short ttl", content: "session:\n  ttl: 1ms\n", errMsg: "session.ttl must be at least 1 second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "validate config")
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, 10, cfg.Feed.PageSize)
	assert.Equal(t, "mock", cfg.Source.Type)
}

func TestConfig_GetServerConfig(t *testing.T) {
	cfg := Default()
	cfg.Server.Listen = ":9090"
	cfg.Server.Timeout = 45 * time.Second

	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":9090", listen)
	assert.Equal(t, 45*time.Second, timeout)
	assert.Same(t, cfg, cfg.GetFullConfig())
}
