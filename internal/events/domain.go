package events

// Entity types
const (
	EntityTitle    = "title"
	EntityEpisode  = "episode"
	EntityProgress = "progress"
)

// Event type constants
const (
	EventTitleAdded       = "title.added"
	EventMetadataResolved = "metadata.resolved"
	EventEpisodesSynced   = "episodes.synced"
	EventProgressUpdated  = "progress.updated"
	EventFileDetected     = "file.detected"
)

// TitleAdded is emitted when a new title enters the catalog.
type TitleAdded struct {
	BaseEvent
	TitleID int64  `json:"title_id"`
	Kind    string `json:"kind"` // "movie" or "series"
	Title   string `json:"title"`
	Year    int    `json:"year,omitempty"`
}

// MetadataResolved is emitted when a title has been matched against the
// external provider. Fallback is true when the match produced only a
// title-only placeholder.
type MetadataResolved struct {
	BaseEvent
	TitleID    int64  `json:"title_id"`
	TMDBID     int64  `json:"tmdb_id,omitempty"`
	Confidence string `json:"confidence"`
	Fallback   bool   `json:"fallback"`
}

// EpisodesSynced is emitted after a series episode sync run.
type EpisodesSynced struct {
	BaseEvent
	SeriesID      int64 `json:"series_id"`
	EpisodesAdded int   `json:"episodes_added"`
}

// ProgressUpdated is emitted on every playback heartbeat write.
type ProgressUpdated struct {
	BaseEvent
	UserID         int64  `json:"user_id"`
	TargetKind     string `json:"target_kind"` // "movie" or "episode"
	TargetID       int64  `json:"target_id"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Completed      bool   `json:"completed"`
}

// FileDetected is emitted when the importer finds a media file on disk.
type FileDetected struct {
	BaseEvent
	TitleID int64  `json:"title_id"`
	Path    string `json:"path"`
}
