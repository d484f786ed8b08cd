package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/scrollfeed/pkg/config"
	"github.com/umputun/scrollfeed/pkg/feed"
	"github.com/umputun/scrollfeed/pkg/repository"
	"github.com/umputun/scrollfeed/pkg/session"
	"github.com/umputun/scrollfeed/pkg/source"
	"github.com/umputun/scrollfeed/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" description:"configuration file, defaults are used if not set"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)
	log.Printf("[INFO] starting scrollfeed version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run wires the post source, session store and HTTP server and serves until ctx is done
func run(ctx context.Context, opts Opts) error {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}

	params := source.Params{
		Type:        cfg.Source.Type,
		PageSize:    cfg.Feed.PageSize,
		Pages:       cfg.Feed.MaxPages,
		MinDelay:    cfg.Source.MinDelay,
		MaxDelay:    cfg.Source.MaxDelay,
		FailureRate: cfg.Source.FailureRate,
		Seed:        cfg.Source.Seed,
	}

	// the archive is the only source backed by the database
	var archive server.ArchiveReporter
	if cfg.Source.Type == source.TypeSQLite {
		repos, err := repository.NewRepositories(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if err := repos.Close(); err != nil {
				log.Printf("[WARN] failed to close database: %v", err)
			}
		}()
		params.Archive = source.NewArchive(repos.Post, repos.Setting, cfg.Feed.PageSize)
		archive = params.Archive
	}

	src, err := source.New(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to make post source: %w", err)
	}
	log.Printf("[INFO] source %s, page size %d, max pages %d, delay %v-%v, failure rate %.2f",
		cfg.Source.Type, cfg.Feed.PageSize, cfg.Feed.MaxPages, cfg.Source.MinDelay, cfg.Source.MaxDelay, cfg.Source.FailureRate)

	g, ctx := errgroup.WithContext(ctx)

	store := session.NewStore(ctx, session.Config{
		NewFeed: func() *feed.Controller {
			return feed.NewController(feed.Config{Source: src, PageSize: cfg.Feed.PageSize, MaxPages: cfg.Feed.MaxPages})
		},
		TTL:         cfg.Session.TTL,
		MaxSessions: cfg.Session.MaxSessions,
	})

	srv := server.New(cfg, store, archive, revision, opts.Debug)

	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error { return store.RunJanitor(ctx, cfg.Session.Sweep) })

	return g.Wait()
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
