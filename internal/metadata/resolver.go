// Package metadata resolves local titles to their canonical external
// metadata and caches the results in process memory.
package metadata

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc/pool"

	"github.com/vmunix/streamgo/internal/rank"
	"github.com/vmunix/streamgo/pkg/match"
	"github.com/vmunix/streamgo/pkg/tmdb"
)

const defaultBatchLimit = 4

// Request identifies one local title to resolve.
type Request struct {
	TitleID int64
	Title   string
	Series  bool
	TMDBID  *int64 // known external id from a previous resolution, if any
}

// Resolved is the canonical metadata record for a local title. Once
// cached it is shared across callers and never mutated.
type Resolved struct {
	TitleID      int64
	TMDBID       int64 // 0 when resolution fell back to title-only
	Title        string
	Series       bool
	PosterPath   string
	BackdropPath string
	Overview     string
	Confidence   match.Confidence
}

// Fallback reports whether the record carries provider metadata or is a
// title-only placeholder produced when resolution found nothing.
func (r *Resolved) Fallback() bool { return r.TMDBID == 0 }

// Resolver resolves and caches title metadata. Concurrent Resolve calls
// for the same title id may each perform a lookup; their cache writes are
// idempotent.
type Resolver struct {
	provider   Provider
	cache      *cache
	log        *slog.Logger
	batchLimit int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBatchLimit bounds the parallelism of ResolveBatch.
func WithBatchLimit(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.batchLimit = n
		}
	}
}

// NewResolver creates a resolver on top of a provider client.
func NewResolver(provider Provider, log *slog.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	r := &Resolver{
		provider:   provider,
		cache:      newCache(),
		log:        log.With("component", "resolver"),
		batchLimit: defaultBatchLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the canonical metadata for a local title, performing at
// most one provider search per title id for the process lifetime.
//
// Provider failures are absorbed: the caller gets a title-only fallback
// record rather than an error. The only error returned is the caller's own
// context cancellation, which aborts the in-flight lookup without writing
// to the cache.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Resolved, error) {
	if cached, ok := r.cache.get(req.TitleID); ok {
		return cached, nil
	}

	candidates, err := r.provider.Search(ctx, req.Title)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.log.Warn("provider search failed, using fallback", "title_id", req.TitleID, "title", req.Title, "error", err)
		candidates = nil
	}

	resolved := r.disambiguate(req, candidates)
	r.cache.set(req.TitleID, resolved)
	return resolved, nil
}

// disambiguate picks the winning candidate: a known external id first,
// then the top-ranked candidate, then a title-only fallback.
func (r *Resolver) disambiguate(req Request, candidates []tmdb.SearchResult) *Resolved {
	wantKind := tmdb.MediaMovie
	if req.Series {
		wantKind = tmdb.MediaTV
	}
	matching := candidates[:0:0]
	for _, c := range candidates {
		if c.Kind == wantKind {
			matching = append(matching, c)
		}
	}

	ranked := rank.Rank(req.Title, matching)

	var pick *tmdb.SearchResult
	if req.TMDBID != nil {
		for i := range ranked {
			if ranked[i].ID == *req.TMDBID {
				pick = &ranked[i]
				break
			}
		}
	}
	if pick == nil && len(ranked) > 0 {
		pick = &ranked[0]
	}

	if pick == nil {
		return &Resolved{
			TitleID: req.TitleID,
			Title:   req.Title,
			Series:  req.Series,
		}
	}

	return &Resolved{
		TitleID:      req.TitleID,
		TMDBID:       pick.ID,
		Title:        pick.Title,
		Series:       req.Series,
		PosterPath:   pick.PosterPath,
		BackdropPath: pick.BackdropPath,
		Overview:     pick.Overview,
		Confidence:   match.Grade(match.Score(req.Title, pick.Title)),
	}
}

// ResolveBatch resolves a collection of titles with bounded parallelism.
// Every item settles independently; a failed item yields a nil slot and
// does not abort its siblings. The returned slice is index-aligned with
// the input.
func (r *Resolver) ResolveBatch(ctx context.Context, reqs []Request) []*Resolved {
	out := make([]*Resolved, len(reqs))

	p := pool.New().WithMaxGoroutines(r.batchLimit)
	for i, req := range reqs {
		p.Go(func() {
			resolved, err := r.Resolve(ctx, req)
			if err != nil {
				r.log.Warn("batch item failed", "title_id", req.TitleID, "error", err)
				return
			}
			out[i] = resolved
		})
	}
	p.Wait()

	return out
}

// CacheSize reports how many titles have been resolved so far.
func (r *Resolver) CacheSize() int { return r.cache.len() }
