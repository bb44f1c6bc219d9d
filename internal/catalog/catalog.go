// Package catalog manages the local media library (titles, episodes, files,
// watch progress).
package catalog

import (
	"time"
)

// TitleKind distinguishes movies from series.
type TitleKind string

const (
	KindMovie  TitleKind = "movie"
	KindSeries TitleKind = "series"
)

// Title represents a movie or series in the local catalog.
//
// TMDBID is the external catalog identifier. It is unique per kind and
// immutable once set; use Store.SetTitleTMDBID to assign it.
type Title struct {
	ID             int64
	Kind           TitleKind
	TMDBID         *int64
	Title          string
	Year           int
	RuntimeMinutes int // 0 = unknown
	ReleaseDate    *time.Time
	AddedAt        time.Time
	UpdatedAt      time.Time
}

// Episode represents a single episode of a series.
// The (SeriesID, Season, Episode) triple is unique.
type Episode struct {
	ID             int64
	SeriesID       int64
	Season         int
	Episode        int
	Title          string
	RuntimeMinutes int
}

// MediaFile represents a playable file on disk. It belongs to exactly one
// movie or exactly one episode, expressed by Target.
type MediaFile struct {
	ID        int64
	Target    Target
	Path      string
	SizeBytes int64
	AddedAt   time.Time
}

// WatchProgress records a user's last-known playback position in a movie or
// episode. One row exists per (user, target); heartbeats overwrite it.
type WatchProgress struct {
	ID             int64
	UserID         int64
	Target         Target
	ElapsedSeconds int
	Completed      bool
	UpdatedAt      time.Time
}
