// Package server wires the HTTP API and the background event handlers
// into one supervised lifecycle.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/streamgo/internal/catalog"
	"github.com/vmunix/streamgo/internal/events"
	"github.com/vmunix/streamgo/internal/handlers"
	"github.com/vmunix/streamgo/internal/metadata"
)

// Config for the runner.
type Config struct {
	Addr           string
	WarmOnStart    bool          // resolve unpinned titles at startup
	EventRetention time.Duration // 0 disables event pruning
}

// Deps holds the components the runner supervises. API is required; the
// rest are optional and skipped when nil.
type Deps struct {
	API      http.Handler
	Bus      *events.Bus
	Store    *catalog.Store
	Resolver *metadata.Resolver
	EventLog *events.EventLog
	Handlers []handlers.Handler
}

// Runner manages the HTTP server and the event-driven components.
type Runner struct {
	deps   Deps
	config Config
	logger *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(deps Deps, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		deps:   deps,
		config: cfg,
		logger: logger.With("component", "runner"),
	}
}

// Run starts all components and blocks until the context is canceled or
// a component fails.
func (r *Runner) Run(ctx context.Context) error {
	r.pruneEvents()

	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    r.config.Addr,
		Handler: r.deps.API,
	}

	g.Go(func() error {
		r.logger.Info("http server listening", "addr", r.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	for _, h := range r.deps.Handlers {
		h := h
		g.Go(func() error {
			r.logger.Info("handler starting", "handler", h.Name())
			err := h.Start(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if r.config.WarmOnStart && r.deps.Resolver != nil && r.deps.Store != nil {
		g.Go(func() error {
			r.warmResolver(ctx)
			return nil
		})
	}

	err := g.Wait()
	if r.deps.Bus != nil {
		_ = r.deps.Bus.Close()
	}
	return err
}

// pruneEvents drops persisted events older than the retention window.
func (r *Runner) pruneEvents() {
	if r.deps.EventLog == nil || r.config.EventRetention <= 0 {
		return
	}
	removed, err := r.deps.EventLog.Prune(r.config.EventRetention)
	if err != nil {
		r.logger.Warn("event prune failed", "error", err)
		return
	}
	if removed > 0 {
		r.logger.Info("pruned events", "removed", removed)
	}
}

// warmResolver resolves every title that has no external id yet so the
// metadata cache is hot before the first request arrives.
func (r *Runner) warmResolver(ctx context.Context) {
	titles, _, err := r.deps.Store.ListTitles(catalog.TitleFilter{})
	if err != nil {
		r.logger.Warn("warm resolve skipped", "error", err)
		return
	}

	var reqs []metadata.Request
	for _, t := range titles {
		if t.TMDBID != nil {
			continue
		}
		reqs = append(reqs, metadata.Request{
			TitleID: t.ID,
			Title:   t.Title,
			Series:  t.Kind == catalog.KindSeries,
		})
	}
	if len(reqs) == 0 {
		return
	}

	r.logger.Info("warming metadata cache", "titles", len(reqs))
	results := r.deps.Resolver.ResolveBatch(ctx, reqs)

	resolved := 0
	for _, res := range results {
		if res != nil {
			resolved++
		}
	}
	r.logger.Info("metadata cache warmed", "resolved", resolved, "requested", len(reqs))
}
