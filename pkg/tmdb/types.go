// Package tmdb provides a client for The Movie Database API.
package tmdb

import "time"

// MediaKind distinguishes movie results from TV results.
type MediaKind string

const (
	MediaMovie MediaKind = "movie"
	MediaTV    MediaKind = "tv"
)

// SearchResult is one raw candidate from a text search. Popularity is the
// provider-assigned signal; image paths are relative (see images.go).
type SearchResult struct {
	ID           int64
	Title        string
	Kind         MediaKind
	Popularity   float64
	PosterPath   string
	BackdropPath string
	Overview     string
}

// MovieDetail is the detail record for a movie.
type MovieDetail struct {
	ID             int64
	Title          string
	RuntimeMinutes int
	ReleaseDate    *time.Time
}

// SeriesDetail is the detail record for a TV series.
type SeriesDetail struct {
	ID          int64
	Name        string
	SeasonCount int
	Seasons     []int // season numbers >= 1, ascending
}

// SeasonDetail lists the episodes of one season.
type SeasonDetail struct {
	SeriesID int64
	Season   int
	Episodes []EpisodeInfo
}

// EpisodeInfo describes a single episode within a season.
type EpisodeInfo struct {
	Episode        int
	Name           string
	RuntimeMinutes int
}
