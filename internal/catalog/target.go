package catalog

import "fmt"

// TargetKind identifies which entity a Target points at.
type TargetKind string

const (
	TargetMovie   TargetKind = "movie"
	TargetEpisode TargetKind = "episode"
)

// Target points at exactly one movie or exactly one episode. The zero Target
// points at nothing and is rejected by store writes; the "both set" state is
// not representable.
type Target struct {
	kind TargetKind
	id   int64
}

// MovieTarget returns a Target pointing at a movie title.
func MovieTarget(movieID int64) Target {
	return Target{kind: TargetMovie, id: movieID}
}

// EpisodeTarget returns a Target pointing at an episode.
func EpisodeTarget(episodeID int64) Target {
	return Target{kind: TargetEpisode, id: episodeID}
}

// Kind returns the target kind. Empty for the zero Target.
func (t Target) Kind() TargetKind { return t.kind }

// ID returns the targeted entity's id.
func (t Target) ID() int64 { return t.id }

// IsZero reports whether the target points at nothing.
func (t Target) IsZero() bool { return t.kind == "" || t.id == 0 }

func (t Target) String() string {
	if t.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s/%d", t.kind, t.id)
}

// columns splits the target into the nullable movie_id/episode_id pair used
// by the schema.
func (t Target) columns() (movieID, episodeID *int64) {
	switch t.kind {
	case TargetMovie:
		return &t.id, nil
	case TargetEpisode:
		return nil, &t.id
	}
	return nil, nil
}

// targetFrom rebuilds a Target from scanned nullable columns.
func targetFrom(movieID, episodeID *int64) (Target, error) {
	switch {
	case movieID != nil && episodeID == nil:
		return MovieTarget(*movieID), nil
	case movieID == nil && episodeID != nil:
		return EpisodeTarget(*episodeID), nil
	}
	return Target{}, fmt.Errorf("row has movie_id=%v episode_id=%v: %w", movieID, episodeID, ErrInvariant)
}
