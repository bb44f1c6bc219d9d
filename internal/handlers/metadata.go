package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vmunix/streamgo/internal/catalog"
	"github.com/vmunix/streamgo/internal/events"
	"github.com/vmunix/streamgo/internal/metadata"
)

// MetadataHandler resolves external metadata for titles as they enter the
// catalog, so the first browse after an import does not pay the lookup
// cost. Series additionally get their episode catalog synced.
type MetadataHandler struct {
	*BaseHandler
	resolver *metadata.Resolver
	syncer   *metadata.SeriesSyncer
	store    *catalog.Store
}

// NewMetadataHandler creates a metadata handler. The syncer is optional;
// pass nil to skip episode sync for series.
func NewMetadataHandler(bus *events.Bus, resolver *metadata.Resolver, syncer *metadata.SeriesSyncer, store *catalog.Store, logger *slog.Logger) *MetadataHandler {
	return &MetadataHandler{
		BaseHandler: NewBaseHandler(bus, logger),
		resolver:    resolver,
		syncer:      syncer,
		store:       store,
	}
}

// Name returns the handler name.
func (h *MetadataHandler) Name() string {
	return "metadata"
}

// Start begins processing events.
func (h *MetadataHandler) Start(ctx context.Context) error {
	added := h.Bus().Subscribe(events.EventTitleAdded, 100)

	for {
		select {
		case e := <-added:
			if e == nil {
				return nil // Channel closed
			}
			h.handleTitleAdded(ctx, e.(*events.TitleAdded))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *MetadataHandler) handleTitleAdded(ctx context.Context, e *events.TitleAdded) {
	h.Logger().Info("resolving metadata", "title_id", e.TitleID, "title", e.Title)

	title, err := h.store.GetTitle(e.TitleID)
	if err != nil {
		h.Logger().Error("title vanished before resolution", "title_id", e.TitleID, "error", err)
		return
	}

	resolved, err := h.resolver.Resolve(ctx, metadata.Request{
		TitleID: title.ID,
		Title:   title.Title,
		Series:  title.Kind == catalog.KindSeries,
		TMDBID:  title.TMDBID,
	})
	if err != nil {
		h.Logger().Warn("resolution aborted", "title_id", e.TitleID, "error", err)
		return
	}

	if !resolved.Fallback() {
		if err := h.store.SetTitleTMDBID(title.ID, resolved.TMDBID); err != nil {
			// ErrConstraint means the title was pinned to a different id
			// since we looked; keep the persisted one.
			if !errors.Is(err, catalog.ErrConstraint) && !errors.Is(err, catalog.ErrDuplicate) {
				h.Logger().Error("persist tmdb id failed", "title_id", title.ID, "error", err)
				return
			}
			h.Logger().Warn("tmdb id already assigned", "title_id", title.ID, "tmdb_id", resolved.TMDBID)
		}
	}

	if err := h.Bus().Publish(ctx, &events.MetadataResolved{
		BaseEvent:  events.NewBaseEvent(events.EventMetadataResolved, events.EntityTitle, title.ID),
		TitleID:    title.ID,
		TMDBID:     resolved.TMDBID,
		Confidence: resolved.Confidence.String(),
		Fallback:   resolved.Fallback(),
	}); err != nil {
		h.Logger().Error("publish metadata event failed", "title_id", title.ID, "error", err)
	}

	if title.Kind == catalog.KindSeries && h.syncer != nil && !resolved.Fallback() {
		h.syncSeries(ctx, title.ID, resolved.TMDBID)
	}
}

func (h *MetadataHandler) syncSeries(ctx context.Context, seriesID, tmdbID int64) {
	added, err := h.syncer.Sync(ctx, seriesID, tmdbID)
	if err != nil {
		h.Logger().Warn("episode sync failed", "series_id", seriesID, "error", err)
		return
	}
	if added == 0 {
		return
	}

	if err := h.Bus().Publish(ctx, &events.EpisodesSynced{
		BaseEvent:     events.NewBaseEvent(events.EventEpisodesSynced, events.EntityTitle, seriesID),
		SeriesID:      seriesID,
		EpisodesAdded: added,
	}); err != nil {
		h.Logger().Error("publish sync event failed", "series_id", seriesID, "error", err)
	}
}
