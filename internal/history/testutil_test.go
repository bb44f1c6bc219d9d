package history_test

import (
	"database/sql"
	_ "embed"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmunix/streamgo/internal/catalog"
	_ "modernc.org/sqlite"
)

//go:embed testdata/schema.sql
var testSchema string

func setupStore(t *testing.T) (*catalog.Store, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return catalog.NewStore(db), db
}

func addTitle(t *testing.T, store *catalog.Store, kind catalog.TitleKind, name string) *catalog.Title {
	t.Helper()
	title := &catalog.Title{Kind: kind, Title: name}
	require.NoError(t, store.AddTitle(title))
	return title
}

func addEpisode(t *testing.T, store *catalog.Store, seriesID int64, season, episode int) *catalog.Episode {
	t.Helper()
	e := &catalog.Episode{SeriesID: seriesID, Season: season, Episode: episode}
	require.NoError(t, store.AddEpisode(e))
	return e
}

// insertProgress writes a progress row with an explicit timestamp, which
// UpsertProgress does not allow.
func insertProgress(t *testing.T, db *sql.DB, userID int64, target catalog.Target, elapsed int, completed bool, updatedAt string) {
	t.Helper()
	col := "movie_id"
	if target.Kind() == catalog.TargetEpisode {
		col = "episode_id"
	}
	_, err := db.Exec(
		"INSERT INTO watch_progress (user_id, "+col+", elapsed_seconds, completed, updated_at) VALUES (?, ?, ?, ?, ?)",
		userID, target.ID(), elapsed, completed, updatedAt,
	)
	require.NoError(t, err)
}
