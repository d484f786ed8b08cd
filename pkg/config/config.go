package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,description=Base URL for RSS links"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Feed FeedConfig `yaml:"feed" json:"feed" jsonschema:"description=Feed pagination configuration"`

	Source SourceConfig `yaml:"source" json:"source" jsonschema:"description=Post source configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:scrollfeed.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration, used by the sqlite source"`

	Session SessionConfig `yaml:"session" json:"session" jsonschema:"description=Browser session configuration"`
}

// FeedConfig holds pagination settings
type FeedConfig struct {
	PageSize int `yaml:"page_size" json:"page_size" jsonschema:"default=10,minimum=1,description=Posts per page"`
	MaxPages int `yaml:"max_pages" json:"max_pages" jsonschema:"default=10,description=Page number after which the feed ends (negative for no limit)"`
}

// SourceConfig holds post source settings
type SourceConfig struct {
	Type        string        `yaml:"type" json:"type" jsonschema:"default=mock,enum=mock,enum=sqlite,description=Post source type"`
	MinDelay    time.Duration `yaml:"min_delay" json:"min_delay" jsonschema:"default=1s,description=Minimum simulated latency"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay" jsonschema:"default=2s,description=Maximum simulated latency (exclusive)"`
	FailureRate float64       `yaml:"failure_rate" json:"failure_rate" jsonschema:"default=0,minimum=0,maximum=1,description=Share of page loads that fail"`
	Seed        uint64        `yaml:"seed" json:"seed" jsonschema:"default=0,description=Random seed for generated posts (0 for random)"`
	NoDelay     bool          `yaml:"no_delay" json:"no_delay" jsonschema:"default=false,description=Disable simulated latency"`
}

// SessionConfig holds session lifecycle settings
type SessionConfig struct {
	TTL         time.Duration `yaml:"ttl" json:"ttl" jsonschema:"default=30m,description=Idle time before a session is dropped"`
	MaxSessions int           `yaml:"max_sessions" json:"max_sessions" jsonschema:"default=1000,description=Maximum number of live sessions"`
	Sweep       string        `yaml:"sweep" json:"sweep" jsonschema:"default=@every 1m,description=Cron schedule of idle session sweep"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finalize(&cfg)
}

// Default returns configuration with all defaults set, used when no config file is given
func Default() *Config {
	cfg, err := finalize(&Config{})
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// finalize sets defaults, validates and verifies cfg against the schema
func finalize(cfg *Config) (*Config, error) {
	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}

	// feed
	if cfg.Feed.PageSize == 0 {
		cfg.Feed.PageSize = 10
	}
	if cfg.Feed.MaxPages == 0 {
		cfg.Feed.MaxPages = 10
	}

	// source
	if cfg.Source.Type == "" {
		cfg.Source.Type = "mock"
	}
	if !cfg.Source.NoDelay && cfg.Source.MinDelay == 0 && cfg.Source.MaxDelay == 0 {
		cfg.Source.MinDelay = 1 * time.Second
		cfg.Source.MaxDelay = 2 * time.Second
	}

	// database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:scrollfeed.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// session
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 30 * time.Minute
	}
	if cfg.Session.MaxSessions == 0 {
		cfg.Session.MaxSessions = 1000
	}
	if cfg.Session.Sweep == "" {
		cfg.Session.Sweep = "@every 1m"
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	if cfg.Feed.PageSize < 1 {
		return fmt.Errorf("feed.page_size must be at least 1")
	}

	switch cfg.Source.Type {
	case "mock", "sqlite":
	default:
		return fmt.Errorf("source.type must be mock or sqlite, got %q", cfg.Source.Type)
	}
	if cfg.Source.MinDelay < 0 || cfg.Source.MaxDelay < 0 {
		return fmt.Errorf("source delays must be non-negative")
	}
	if cfg.Source.MaxDelay < cfg.Source.MinDelay {
		return fmt.Errorf("source.max_delay must not be less than source.min_delay")
	}
	if cfg.Source.FailureRate < 0 || cfg.Source.FailureRate > 1 {
		return fmt.Errorf("source.failure_rate must be between 0 and 1")
	}
	if cfg.Source.Type == "sqlite" && cfg.Feed.MaxPages < 1 {
		return fmt.Errorf("sqlite source requires positive feed.max_pages to seed the archive")
	}

	if cfg.Session.TTL < time.Second {
		return fmt.Errorf("session.ttl must be at least 1 second")
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetFullConfig returns the full configuration
func (c *Config) GetFullConfig() *Config {
	return c
}
