package history_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/streamgo/internal/catalog"
	"github.com/vmunix/streamgo/internal/events"
	"github.com/vmunix/streamgo/internal/history"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestContinueWatching_SelectsInProgressOnly(t *testing.T) {
	store, db := setupStore(t)
	svc := history.NewService(store, nil, testLogger())

	started := addTitle(t, store, catalog.KindMovie, "Started")
	notStarted := addTitle(t, store, catalog.KindMovie, "Not Started")
	finished := addTitle(t, store, catalog.KindMovie, "Finished")

	insertProgress(t, db, 1, catalog.MovieTarget(started.ID), 600, false, "2026-08-01T10:00:00Z")
	insertProgress(t, db, 1, catalog.MovieTarget(notStarted.ID), 0, false, "2026-08-01T11:00:00Z")
	insertProgress(t, db, 1, catalog.MovieTarget(finished.ID), 7200, true, "2026-08-01T12:00:00Z")

	got, err := svc.ContinueWatching(1, catalog.TargetMovie)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, catalog.MovieTarget(started.ID), got[0].Target)
}

func TestContinueWatching_MostRecentFirst(t *testing.T) {
	store, db := setupStore(t)
	svc := history.NewService(store, nil, testLogger())

	older := addTitle(t, store, catalog.KindMovie, "Older")
	newer := addTitle(t, store, catalog.KindMovie, "Newer")

	insertProgress(t, db, 1, catalog.MovieTarget(older.ID), 100, false, "2026-08-01T10:00:00Z")
	insertProgress(t, db, 1, catalog.MovieTarget(newer.ID), 200, false, "2026-08-02T10:00:00Z")

	got, err := svc.ContinueWatching(1, catalog.TargetMovie)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, catalog.MovieTarget(newer.ID), got[0].Target)
	assert.Equal(t, catalog.MovieTarget(older.ID), got[1].Target)
}

func TestContinueWatching_FiltersByKindAndUser(t *testing.T) {
	store, db := setupStore(t)
	svc := history.NewService(store, nil, testLogger())

	movie := addTitle(t, store, catalog.KindMovie, "Movie")
	series := addTitle(t, store, catalog.KindSeries, "Series")
	ep := addEpisode(t, store, series.ID, 1, 1)

	insertProgress(t, db, 1, catalog.MovieTarget(movie.ID), 100, false, "2026-08-01T10:00:00Z")
	insertProgress(t, db, 1, catalog.EpisodeTarget(ep.ID), 200, false, "2026-08-01T11:00:00Z")
	insertProgress(t, db, 2, catalog.MovieTarget(movie.ID), 300, false, "2026-08-01T12:00:00Z")

	movies, err := svc.ContinueWatching(1, catalog.TargetMovie)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, int64(1), movies[0].UserID)
	assert.Equal(t, catalog.TargetMovie, movies[0].Target.Kind())

	episodes, err := svc.ContinueWatching(1, catalog.TargetEpisode)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, catalog.EpisodeTarget(ep.ID), episodes[0].Target)
}

func TestContinueWatching_CapsAtTwenty(t *testing.T) {
	store, db := setupStore(t)
	svc := history.NewService(store, nil, testLogger())

	for i := 0; i < 25; i++ {
		m := addTitle(t, store, catalog.KindMovie, fmt.Sprintf("Movie %02d", i))
		ts := fmt.Sprintf("2026-08-01T10:%02d:00Z", i%60)
		insertProgress(t, db, 1, catalog.MovieTarget(m.ID), 100+i, false, ts)
	}

	got, err := svc.ContinueWatching(1, catalog.TargetMovie)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestContinueWatching_OneEntryPerTarget(t *testing.T) {
	store, _ := setupStore(t)
	svc := history.NewService(store, nil, testLogger())

	movie := addTitle(t, store, catalog.KindMovie, "Rewatched")

	// Heartbeats overwrite the single row per (user, target).
	first := &catalog.WatchProgress{UserID: 1, Target: catalog.MovieTarget(movie.ID), ElapsedSeconds: 100}
	require.NoError(t, svc.Record(context.Background(), first))
	second := &catalog.WatchProgress{UserID: 1, Target: catalog.MovieTarget(movie.ID), ElapsedSeconds: 900}
	require.NoError(t, svc.Record(context.Background(), second))

	got, err := svc.ContinueWatching(1, catalog.TargetMovie)
	require.NoError(t, err)
	require.Len(t, got, 1, "superseded heartbeats must not surface")
	assert.Equal(t, 900, got[0].ElapsedSeconds)
}

func TestPopularTitles_CountDescZeroTail(t *testing.T) {
	store, db := setupStore(t)
	svc := history.NewService(store, nil, testLogger())

	a := addTitle(t, store, catalog.KindMovie, "Alpha")
	b := addTitle(t, store, catalog.KindMovie, "Beta")
	c := addTitle(t, store, catalog.KindMovie, "Gamma")

	// Five watchers each for A and B, none for C.
	for u := int64(1); u <= 5; u++ {
		ts := fmt.Sprintf("2026-08-0%dT10:00:00Z", u)
		insertProgress(t, db, u, catalog.MovieTarget(a.ID), 100, false, ts)
		insertProgress(t, db, u, catalog.MovieTarget(b.ID), 100, false, ts)
	}

	got, err := svc.PopularTitles(catalog.KindMovie)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, a.ID, got[0].ID, "count tie breaks by ascending id")
	assert.Equal(t, b.ID, got[1].ID)
	assert.Equal(t, c.ID, got[2].ID, "zero-count titles trail, not vanish")
}

func TestPopularTitles_EpisodesRollUpToSeries(t *testing.T) {
	store, db := setupStore(t)
	svc := history.NewService(store, nil, testLogger())

	quiet := addTitle(t, store, catalog.KindSeries, "Quiet Show")
	busy := addTitle(t, store, catalog.KindSeries, "Busy Show")

	quietEp := addEpisode(t, store, quiet.ID, 1, 1)
	busyEp1 := addEpisode(t, store, busy.ID, 1, 1)
	busyEp2 := addEpisode(t, store, busy.ID, 1, 2)

	insertProgress(t, db, 1, catalog.EpisodeTarget(quietEp.ID), 100, false, "2026-08-01T10:00:00Z")
	insertProgress(t, db, 1, catalog.EpisodeTarget(busyEp1.ID), 100, true, "2026-08-01T11:00:00Z")
	insertProgress(t, db, 1, catalog.EpisodeTarget(busyEp2.ID), 100, false, "2026-08-01T12:00:00Z")
	insertProgress(t, db, 2, catalog.EpisodeTarget(busyEp1.ID), 100, false, "2026-08-01T13:00:00Z")

	got, err := svc.PopularTitles(catalog.KindSeries)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, busy.ID, got[0].ID)
	assert.Equal(t, quiet.ID, got[1].ID)
}

func TestPopularTitles_CapsAtThirty(t *testing.T) {
	store, _ := setupStore(t)
	svc := history.NewService(store, nil, testLogger())

	for i := 0; i < 35; i++ {
		addTitle(t, store, catalog.KindMovie, fmt.Sprintf("Movie %02d", i))
	}

	got, err := svc.PopularTitles(catalog.KindMovie)
	require.NoError(t, err)
	assert.Len(t, got, 30)
}

func TestRecord_PersistsAndPublishes(t *testing.T) {
	store, _ := setupStore(t)
	bus := events.NewBus(nil, testLogger())
	defer bus.Close()
	svc := history.NewService(store, bus, testLogger())

	movie := addTitle(t, store, catalog.KindMovie, "Heat")
	ch := bus.Subscribe(events.EventProgressUpdated, 1)

	p := &catalog.WatchProgress{UserID: 3, Target: catalog.MovieTarget(movie.ID), ElapsedSeconds: 450}
	require.NoError(t, svc.Record(context.Background(), p))
	assert.Positive(t, p.ID)

	select {
	case e := <-ch:
		pu, ok := e.(*events.ProgressUpdated)
		require.True(t, ok)
		assert.Equal(t, int64(3), pu.UserID)
		assert.Equal(t, "movie", pu.TargetKind)
		assert.Equal(t, movie.ID, pu.TargetID)
		assert.Equal(t, 450, pu.ElapsedSeconds)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for progress event")
	}
}

func TestRecord_RejectsZeroTarget(t *testing.T) {
	store, _ := setupStore(t)
	svc := history.NewService(store, nil, testLogger())

	p := &catalog.WatchProgress{UserID: 1, ElapsedSeconds: 10}
	err := svc.Record(context.Background(), p)
	assert.ErrorIs(t, err, catalog.ErrInvariant)
}
