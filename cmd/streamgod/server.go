package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/streamgo/internal/api/v1"
	"github.com/vmunix/streamgo/internal/catalog"
	"github.com/vmunix/streamgo/internal/config"
	"github.com/vmunix/streamgo/internal/events"
	"github.com/vmunix/streamgo/internal/handlers"
	"github.com/vmunix/streamgo/internal/history"
	"github.com/vmunix/streamgo/internal/importer"
	"github.com/vmunix/streamgo/internal/metadata"
	"github.com/vmunix/streamgo/internal/migrations"
	"github.com/vmunix/streamgo/internal/server"
	"github.com/vmunix/streamgo/pkg/tmdb"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(cfg config.ServerConfig) *slog.Logger {
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func runServer(configPath string) error {
	if configPath == "" {
		discovered, err := config.Discover()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		configPath = discovered
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := newLogger(cfg.Server)

	check := cfg.Check(configPath)
	for _, w := range check.Warnings {
		logger.Warn("config", "issue", w)
	}
	if check.Fatal() {
		return fmt.Errorf("config: %w", check)
	}

	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Database.Path+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := migrations.Up(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// === Stores and event plumbing ===
	store := catalog.NewStore(db)
	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, logger.With("component", "bus"))

	// === Metadata provider ===
	tmdbOpts := []tmdb.Option{
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithLogger(logger),
	}
	if cfg.TMDB.BaseURL != "" {
		tmdbOpts = append(tmdbOpts, tmdb.WithBaseURL(cfg.TMDB.BaseURL))
	}
	provider := tmdb.NewClient(cfg.TMDB.APIKey, tmdbOpts...)

	resolver := metadata.NewResolver(provider, logger,
		metadata.WithBatchLimit(cfg.Metadata.BatchLimit))

	var syncer *metadata.SeriesSyncer
	if cfg.Metadata.SyncEpisodes {
		syncer = metadata.NewSeriesSyncer(provider, store, logger)
	}

	// === Services ===
	hist := history.NewService(store, bus, logger)

	scanner := importer.NewScanner(afero.NewOsFs(), store, bus, importer.Config{
		MovieRoot:  cfg.Libraries.Movies.Root,
		SeriesRoot: cfg.Libraries.Series.Root,
	}, logger)

	// === API ===
	apiV1 := v1.New(v1.Deps{
		Store:    store,
		Resolver: resolver,
		History:  hist,
		Scanner:  scanner,
		EventLog: eventLog,
	}, logger)

	// === Runner ===
	runner := server.NewRunner(server.Deps{
		API:      apiV1.Handler(),
		Bus:      bus,
		Store:    store,
		Resolver: resolver,
		EventLog: eventLog,
		Handlers: []handlers.Handler{
			handlers.NewMetadataHandler(bus, resolver, syncer, store, logger.With("component", "metadata")),
		},
	}, server.Config{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		WarmOnStart:    cfg.Metadata.WarmOnStart,
		EventRetention: time.Duration(cfg.Events.RetentionDays) * 24 * time.Hour,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server starting",
		"version", version,
		"config", configPath,
		"database", cfg.Database.Path,
		"movies", cfg.Libraries.Movies.Root,
		"series", cfg.Libraries.Series.Root,
		"sync_episodes", cfg.Metadata.SyncEpisodes,
		"log_level", cfg.Server.LogLevel,
	)

	if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
