package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/streamgo/internal/catalog"
)

// SeriesSyncer fills in the episode catalog of a local series from the
// provider's season listings. Existing episodes are left untouched, so a
// re-sync only adds what is missing.
type SeriesSyncer struct {
	provider Provider
	store    *catalog.Store
	log      *slog.Logger
}

// NewSeriesSyncer creates a syncer over the catalog store.
func NewSeriesSyncer(provider Provider, store *catalog.Store, log *slog.Logger) *SeriesSyncer {
	if log == nil {
		log = slog.Default()
	}
	return &SeriesSyncer{
		provider: provider,
		store:    store,
		log:      log.With("component", "series_syncer"),
	}
}

// Sync pulls the full season/episode listing for one series and inserts
// the episodes the catalog is missing. seriesID is the local title id,
// tmdbID the provider's. Returns the number of episodes added.
func (s *SeriesSyncer) Sync(ctx context.Context, seriesID, tmdbID int64) (int, error) {
	detail, err := s.provider.GetSeries(ctx, tmdbID)
	if err != nil {
		return 0, fmt.Errorf("fetch series %d: %w", tmdbID, err)
	}

	added := 0
	for _, season := range detail.Seasons {
		sd, err := s.provider.GetSeason(ctx, tmdbID, season)
		if err != nil {
			return added, fmt.Errorf("fetch season %d of series %d: %w", season, tmdbID, err)
		}

		for _, info := range sd.Episodes {
			_, err := s.store.GetEpisodeByNumber(seriesID, season, info.Episode)
			if err == nil {
				continue
			}
			if !errors.Is(err, catalog.ErrNotFound) {
				return added, fmt.Errorf("check episode s%02de%02d: %w", season, info.Episode, err)
			}

			ep := &catalog.Episode{
				SeriesID:       seriesID,
				Season:         season,
				Episode:        info.Episode,
				Title:          info.Name,
				RuntimeMinutes: info.RuntimeMinutes,
			}
			if err := s.store.AddEpisode(ep); err != nil {
				// A concurrent sync may have won the insert.
				if errors.Is(err, catalog.ErrDuplicate) {
					continue
				}
				return added, fmt.Errorf("add episode s%02de%02d: %w", season, info.Episode, err)
			}
			added++
		}
	}

	s.log.Info("series synced", "series_id", seriesID, "tmdb_id", tmdbID, "episodes_added", added)
	return added, nil
}
