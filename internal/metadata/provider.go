package metadata

import (
	"context"

	"github.com/vmunix/streamgo/pkg/tmdb"
)

//go:generate mockgen -source=provider.go -destination=mocks/provider.go -package=mocks

// Provider is the external catalog surface the resolver consumes.
// *tmdb.Client satisfies it.
type Provider interface {
	// Search returns raw candidates for a free-text query.
	Search(ctx context.Context, query string) ([]tmdb.SearchResult, error)

	// GetSeries fetches series detail by external id.
	GetSeries(ctx context.Context, id int64) (*tmdb.SeriesDetail, error)

	// GetSeason fetches the episode list for one season.
	GetSeason(ctx context.Context, seriesID int64, season int) (*tmdb.SeasonDetail, error)
}
