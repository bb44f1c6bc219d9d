// internal/catalog/testutil_test.go
package catalog

import (
	"database/sql"
	_ "embed"
	"testing"

	_ "modernc.org/sqlite"
)

//go:embed testdata/schema.sql
var testSchema string

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

// addMovie inserts a movie title and returns it.
func addMovie(t *testing.T, store *Store, title string, year int) *Title {
	t.Helper()
	m := &Title{Kind: KindMovie, Title: title, Year: year}
	if err := store.AddTitle(m); err != nil {
		t.Fatalf("AddTitle(%q): %v", title, err)
	}
	return m
}

// addSeries inserts a series title and returns it.
func addSeries(t *testing.T, store *Store, title string, year int) *Title {
	t.Helper()
	s := &Title{Kind: KindSeries, Title: title, Year: year}
	if err := store.AddTitle(s); err != nil {
		t.Fatalf("AddTitle(%q): %v", title, err)
	}
	return s
}

// addEpisodeOf inserts an episode for the given series and returns it.
func addEpisodeOf(t *testing.T, store *Store, seriesID int64, season, episode int) *Episode {
	t.Helper()
	e := &Episode{SeriesID: seriesID, Season: season, Episode: episode}
	if err := store.AddEpisode(e); err != nil {
		t.Fatalf("AddEpisode(s%de%d): %v", season, episode, err)
	}
	return e
}
