package handlers_test

import (
	"context"
	"database/sql"
	_ "embed"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/streamgo/internal/catalog"
	"github.com/vmunix/streamgo/internal/events"
	"github.com/vmunix/streamgo/internal/handlers"
	"github.com/vmunix/streamgo/internal/metadata"
	"github.com/vmunix/streamgo/internal/metadata/mocks"
	"github.com/vmunix/streamgo/pkg/tmdb"
	"go.uber.org/mock/gomock"
	_ "modernc.org/sqlite"
)

//go:embed testdata/schema.sql
var testSchema string

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStore(t *testing.T) *catalog.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return catalog.NewStore(db)
}

// startHandler runs the handler until the test ends.
func startHandler(t *testing.T, h handlers.Handler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = h.Start(ctx) }()
}

func publishTitleAdded(t *testing.T, bus *events.Bus, title *catalog.Title) {
	t.Helper()
	err := bus.Publish(context.Background(), &events.TitleAdded{
		BaseEvent: events.NewBaseEvent(events.EventTitleAdded, events.EntityTitle, title.ID),
		TitleID:   title.ID,
		Kind:      string(title.Kind),
		Title:     title.Title,
		Year:      title.Year,
	})
	require.NoError(t, err)
}

func waitResolved(t *testing.T, ch <-chan events.Event) *events.MetadataResolved {
	t.Helper()
	select {
	case e := <-ch:
		resolved, ok := e.(*events.MetadataResolved)
		require.True(t, ok)
		return resolved
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for metadata.resolved")
		return nil
	}
}

func TestMetadataHandler_ResolvesAndPersists(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := setupStore(t)
	bus := events.NewBus(nil, testLogger())
	defer bus.Close()

	mockProvider := mocks.NewMockProvider(ctrl)
	mockProvider.EXPECT().
		Search(gomock.Any(), "Heat").
		Return([]tmdb.SearchResult{
			{ID: 949, Title: "Heat", Kind: tmdb.MediaMovie, Popularity: 70},
		}, nil)

	resolver := metadata.NewResolver(mockProvider, testLogger())
	h := handlers.NewMetadataHandler(bus, resolver, nil, store, testLogger())

	resolved := bus.Subscribe(events.EventMetadataResolved, 10)
	startHandler(t, h)

	title := &catalog.Title{Kind: catalog.KindMovie, Title: "Heat", Year: 1995}
	require.NoError(t, store.AddTitle(title))
	publishTitleAdded(t, bus, title)

	e := waitResolved(t, resolved)
	assert.Equal(t, title.ID, e.TitleID)
	assert.Equal(t, int64(949), e.TMDBID)
	assert.False(t, e.Fallback)

	stored, err := store.GetTitle(title.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TMDBID)
	assert.Equal(t, int64(949), *stored.TMDBID)
}

func TestMetadataHandler_FallbackLeavesTitleUnpinned(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := setupStore(t)
	bus := events.NewBus(nil, testLogger())
	defer bus.Close()

	mockProvider := mocks.NewMockProvider(ctrl)
	mockProvider.EXPECT().
		Search(gomock.Any(), "Obscure Home Video").
		Return(nil, tmdb.ErrUnavailable)

	resolver := metadata.NewResolver(mockProvider, testLogger())
	h := handlers.NewMetadataHandler(bus, resolver, nil, store, testLogger())

	resolved := bus.Subscribe(events.EventMetadataResolved, 10)
	startHandler(t, h)

	title := &catalog.Title{Kind: catalog.KindMovie, Title: "Obscure Home Video"}
	require.NoError(t, store.AddTitle(title))
	publishTitleAdded(t, bus, title)

	e := waitResolved(t, resolved)
	assert.True(t, e.Fallback)
	assert.Zero(t, e.TMDBID)

	stored, err := store.GetTitle(title.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.TMDBID, "a fallback must not pin an external id")
}

func TestMetadataHandler_SyncsSeriesEpisodes(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := setupStore(t)
	bus := events.NewBus(nil, testLogger())
	defer bus.Close()

	mockProvider := mocks.NewMockProvider(ctrl)
	mockProvider.EXPECT().
		Search(gomock.Any(), "Fargo").
		Return([]tmdb.SearchResult{
			{ID: 60622, Title: "Fargo", Kind: tmdb.MediaTV, Popularity: 50},
		}, nil)
	mockProvider.EXPECT().
		GetSeries(gomock.Any(), int64(60622)).
		Return(&tmdb.SeriesDetail{ID: 60622, Name: "Fargo", SeasonCount: 1, Seasons: []int{1}}, nil)
	mockProvider.EXPECT().
		GetSeason(gomock.Any(), int64(60622), 1).
		Return(&tmdb.SeasonDetail{
			SeriesID: 60622,
			Season:   1,
			Episodes: []tmdb.EpisodeInfo{
				{Episode: 1, Name: "The Crocodile's Dilemma", RuntimeMinutes: 68},
				{Episode: 2, Name: "The Rooster Prince", RuntimeMinutes: 53},
			},
		}, nil)

	resolver := metadata.NewResolver(mockProvider, testLogger())
	syncer := metadata.NewSeriesSyncer(mockProvider, store, testLogger())
	h := handlers.NewMetadataHandler(bus, resolver, syncer, store, testLogger())

	synced := bus.Subscribe(events.EventEpisodesSynced, 10)
	startHandler(t, h)

	series := &catalog.Title{Kind: catalog.KindSeries, Title: "Fargo", Year: 2014}
	require.NoError(t, store.AddTitle(series))
	publishTitleAdded(t, bus, series)

	select {
	case e := <-synced:
		es, ok := e.(*events.EpisodesSynced)
		require.True(t, ok)
		assert.Equal(t, series.ID, es.SeriesID)
		assert.Equal(t, 2, es.EpisodesAdded)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for episodes.synced")
	}

	eps, total, err := store.ListEpisodes(catalog.EpisodeFilter{SeriesID: &series.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, eps, 2)
	assert.Equal(t, "The Crocodile's Dilemma", eps[0].Title)
}
