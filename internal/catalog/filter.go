package catalog

// TitleFilter specifies criteria for listing titles.
type TitleFilter struct {
	Kind   *TitleKind
	TMDBID *int64
	Title  *string
	Year   *int
	Limit  int // 0 = no limit
	Offset int
}

// EpisodeFilter specifies criteria for listing episodes.
type EpisodeFilter struct {
	SeriesID *int64
	Season   *int
	Limit    int
	Offset   int
}

// FileFilter specifies criteria for listing media files.
type FileFilter struct {
	Target *Target
	Limit  int
	Offset int
}

// ProgressFilter specifies criteria for listing watch progress rows.
// Results are always ordered most recently updated first.
type ProgressFilter struct {
	UserID     *int64
	TargetKind *TargetKind
	Completed  *bool
	Limit      int
	Offset     int
}
