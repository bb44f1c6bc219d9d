package v1

import "time"

// titleResponse is the API representation of a catalog title.
type titleResponse struct {
	ID             int64      `json:"id"`
	Kind           string     `json:"kind"`
	TMDBID         *int64     `json:"tmdb_id,omitempty"`
	Title          string     `json:"title"`
	Year           int        `json:"year,omitempty"`
	RuntimeMinutes int        `json:"runtime_minutes,omitempty"`
	ReleaseDate    *time.Time `json:"release_date,omitempty"`
	AddedAt        time.Time  `json:"added_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// listTitlesResponse is the response for GET /titles.
type listTitlesResponse struct {
	Items  []titleResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// addTitleRequest is the request body for POST /titles.
type addTitleRequest struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Year  int    `json:"year"`
}

type episodeResponse struct {
	ID             int64  `json:"id"`
	SeriesID       int64  `json:"series_id"`
	Season         int    `json:"season"`
	Episode        int    `json:"episode"`
	Title          string `json:"title"`
	RuntimeMinutes int    `json:"runtime_minutes,omitempty"`
}

type listEpisodesResponse struct {
	Items []episodeResponse `json:"items"`
	Total int               `json:"total"`
}

// resolveRequest asks for metadata resolution of one stored title.
type resolveRequest struct {
	TitleID int64 `json:"title_id"`
}

// resolveBatchRequest asks for resolution of several stored titles.
type resolveBatchRequest struct {
	TitleIDs []int64 `json:"title_ids"`
}

// resolvedResponse is the API representation of resolved metadata.
// Image URLs are absolute, composed from the provider's image host.
type resolvedResponse struct {
	TitleID     int64  `json:"title_id"`
	TMDBID      int64  `json:"tmdb_id,omitempty"`
	Title       string `json:"title"`
	Series      bool   `json:"series"`
	PosterURL   string `json:"poster_url,omitempty"`
	BackdropURL string `json:"backdrop_url,omitempty"`
	Overview    string `json:"overview,omitempty"`
	Confidence  string `json:"confidence"`
	Fallback    bool   `json:"fallback"`
}

type resolveBatchResponse struct {
	Items []resolvedResponse `json:"items"`
}

// progressResponse is the API representation of one watch position.
type progressResponse struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	TargetKind     string    `json:"target_kind"`
	TargetID       int64     `json:"target_id"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	Completed      bool      `json:"completed"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// recordProgressRequest is the request body for POST /progress.
type recordProgressRequest struct {
	UserID         int64  `json:"user_id"`
	TargetKind     string `json:"target_kind"` // "movie" or "episode"
	TargetID       int64  `json:"target_id"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Completed      bool   `json:"completed"`
}

// EventResponse is the API representation of a persisted event.
type EventResponse struct {
	ID         int64  `json:"id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	OccurredAt string `json:"occurred_at"`
}

type listEventsResponse struct {
	Items  []EventResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type statusResponse struct {
	Status         string `json:"status"`
	Movies         int    `json:"movies"`
	Series         int    `json:"series"`
	ResolvedTitles int    `json:"resolved_titles"`
}

type scanResponse struct {
	TitlesAdded   int `json:"titles_added"`
	EpisodesAdded int `json:"episodes_added"`
	FilesAdded    int `json:"files_added"`
	Skipped       int `json:"skipped"`
}
