package v1

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	_ "modernc.org/sqlite"

	"github.com/vmunix/streamgo/internal/catalog"
	"github.com/vmunix/streamgo/internal/events"
	"github.com/vmunix/streamgo/internal/history"
	"github.com/vmunix/streamgo/internal/metadata"
	"github.com/vmunix/streamgo/internal/metadata/mocks"
	"github.com/vmunix/streamgo/pkg/tmdb"
)

//go:embed testdata/schema.sql
var testSchema string

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	require.NoError(t, err, "open db")
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err, "apply schema")
	return db
}

type testEnv struct {
	srv      *Server
	handler  http.Handler
	store    *catalog.Store
	provider *mocks.MockProvider
	eventLog *events.EventLog
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	ctrl := gomock.NewController(t)

	store := catalog.NewStore(db)
	provider := mocks.NewMockProvider(ctrl)
	resolver := metadata.NewResolver(provider, nil)
	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, nil)
	t.Cleanup(func() { _ = bus.Close() })
	hist := history.NewService(store, bus, nil)

	srv := New(Deps{
		Store:    store,
		Resolver: resolver,
		History:  hist,
		EventLog: eventLog,
	}, nil)

	return &testEnv{
		srv:      srv,
		handler:  srv.Handler(),
		store:    store,
		provider: provider,
		eventLog: eventLog,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "decode response: %s", w.Body.String())
	return v
}

func addTestTitle(t *testing.T, store *catalog.Store, kind catalog.TitleKind, title string, year int) *catalog.Title {
	t.Helper()
	ti := &catalog.Title{Kind: kind, Title: title, Year: year}
	require.NoError(t, store.AddTitle(ti))
	return ti
}

func TestListTitles_Empty(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodGet, "/api/v1/titles", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[listTitlesResponse](t, w)
	assert.Empty(t, resp.Items)
	assert.Zero(t, resp.Total)
}

func TestListTitles_FilterByKind(t *testing.T) {
	env := setupTestServer(t)
	addTestTitle(t, env.store, catalog.KindMovie, "Heat", 1995)
	addTestTitle(t, env.store, catalog.KindSeries, "Fargo", 2014)

	w := env.do(t, http.MethodGet, "/api/v1/titles?kind=movie", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[listTitlesResponse](t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Heat", resp.Items[0].Title)

	w = env.do(t, http.MethodGet, "/api/v1/titles?kind=cartoon", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddTitle(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodPost, "/api/v1/titles", `{"kind":"movie","title":"Heat","year":1995}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode[titleResponse](t, w)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "Heat", resp.Title)
	assert.Equal(t, 1995, resp.Year)
}

func TestAddTitle_Validation(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodPost, "/api/v1/titles", `{"kind":"album","title":"Heat"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/titles", `{"kind":"movie","title":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTitle_NotFound(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodGet, "/api/v1/titles/999", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode[errorResponse](t, w)
	assert.Equal(t, "NOT_FOUND", resp.Code)
}

func TestListEpisodes(t *testing.T) {
	env := setupTestServer(t)
	series := addTestTitle(t, env.store, catalog.KindSeries, "Fargo", 2014)
	for i := 1; i <= 3; i++ {
		ep := &catalog.Episode{SeriesID: series.ID, Season: 1, Episode: i, Title: fmt.Sprintf("Episode %d", i)}
		require.NoError(t, env.store.AddEpisode(ep))
	}

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/titles/%d/episodes", series.ID), "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[listEpisodesResponse](t, w)
	assert.Len(t, resp.Items, 3)
	assert.Equal(t, 3, resp.Total)
}

func TestSearchTitles_RequiresQuery(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodGet, "/api/v1/search", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[errorResponse](t, w)
	assert.Equal(t, "MISSING_QUERY", resp.Code)
}

func TestSearchTitles(t *testing.T) {
	env := setupTestServer(t)
	addTestTitle(t, env.store, catalog.KindMovie, "The Matrix", 1999)
	addTestTitle(t, env.store, catalog.KindMovie, "Heat", 1995)

	w := env.do(t, http.MethodGet, "/api/v1/search?q=matrix", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[listTitlesResponse](t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "The Matrix", resp.Items[0].Title)
}

func TestRecentTitles_RequiresKind(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodGet, "/api/v1/titles/recent", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveTitle(t *testing.T) {
	env := setupTestServer(t)
	title := addTestTitle(t, env.store, catalog.KindMovie, "The Matrix", 1999)

	env.provider.EXPECT().Search(gomock.Any(), "The Matrix").Return([]tmdb.SearchResult{
		{ID: 603, Title: "The Matrix", Kind: tmdb.MediaMovie, Popularity: 80, PosterPath: "/matrix.jpg", Overview: "A hacker."},
	}, nil)

	w := env.do(t, http.MethodPost, "/api/v1/metadata/resolve",
		fmt.Sprintf(`{"title_id":%d}`, title.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[resolvedResponse](t, w)
	assert.Equal(t, int64(603), resp.TMDBID)
	assert.Equal(t, "The Matrix", resp.Title)
	assert.False(t, resp.Fallback)
	assert.Contains(t, resp.PosterURL, "/matrix.jpg")
}

func TestResolveTitle_NotFound(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodPost, "/api/v1/metadata/resolve", `{"title_id":42}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolveBatch(t *testing.T) {
	env := setupTestServer(t)
	a := addTestTitle(t, env.store, catalog.KindMovie, "Heat", 1995)
	b := addTestTitle(t, env.store, catalog.KindMovie, "Alien", 1979)

	env.provider.EXPECT().Search(gomock.Any(), "Heat").Return([]tmdb.SearchResult{
		{ID: 949, Title: "Heat", Kind: tmdb.MediaMovie, Popularity: 40},
	}, nil)
	env.provider.EXPECT().Search(gomock.Any(), "Alien").Return([]tmdb.SearchResult{
		{ID: 348, Title: "Alien", Kind: tmdb.MediaMovie, Popularity: 60},
	}, nil)

	w := env.do(t, http.MethodPost, "/api/v1/metadata/resolve/batch",
		fmt.Sprintf(`{"title_ids":[%d,%d]}`, a.ID, b.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[resolveBatchResponse](t, w)
	assert.Len(t, resp.Items, 2)
}

func TestRecordProgress_And_ContinueWatching(t *testing.T) {
	env := setupTestServer(t)
	movie := addTestTitle(t, env.store, catalog.KindMovie, "Heat", 1995)

	w := env.do(t, http.MethodPost, "/api/v1/progress",
		fmt.Sprintf(`{"user_id":1,"target_kind":"movie","target_id":%d,"elapsed_seconds":1200}`, movie.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	posted := decode[progressResponse](t, w)
	assert.Equal(t, 1200, posted.ElapsedSeconds)

	w = env.do(t, http.MethodGet, "/api/v1/continue?user=1&kind=movie", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var rows []progressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, movie.ID, rows[0].TargetID)
}

func TestRecordProgress_InvalidTarget(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodPost, "/api/v1/progress",
		`{"user_id":1,"target_kind":"song","target_id":1,"elapsed_seconds":10}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[errorResponse](t, w)
	assert.Equal(t, "INVALID_TARGET", resp.Code)
}

func TestContinueWatching_RequiresUser(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodGet, "/api/v1/continue", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[errorResponse](t, w)
	assert.Equal(t, "MISSING_USER", resp.Code)
}

func TestPopularTitles_RequiresKind(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodGet, "/api/v1/popular", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[errorResponse](t, w)
	assert.Equal(t, "MISSING_KIND", resp.Code)
}

func TestListEvents(t *testing.T) {
	env := setupTestServer(t)
	_, err := env.eventLog.Append(events.TitleAdded{
		BaseEvent: events.NewBaseEvent(events.EventTitleAdded, events.EntityTitle, 1),
		TitleID:   1, Kind: "movie", Title: "Heat", Year: 1995,
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/v1/events", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[listEventsResponse](t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, events.EventTitleAdded, resp.Items[0].EventType)
	assert.Equal(t, 1, resp.Total)
}

func TestListTitleEvents(t *testing.T) {
	env := setupTestServer(t)
	title := addTestTitle(t, env.store, catalog.KindMovie, "Heat", 1995)
	_, err := env.eventLog.Append(events.TitleAdded{
		BaseEvent: events.NewBaseEvent(events.EventTitleAdded, events.EntityTitle, title.ID),
		TitleID:   title.ID, Kind: "movie", Title: "Heat", Year: 1995,
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/titles/%d/events", title.ID), "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[listEventsResponse](t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, title.ID, resp.Items[0].EntityID)

	w = env.do(t, http.MethodGet, "/api/v1/titles/999/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScan_NoScanner(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodPost, "/api/v1/scan", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode[errorResponse](t, w)
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Code)
}

func TestStatus(t *testing.T) {
	env := setupTestServer(t)
	addTestTitle(t, env.store, catalog.KindMovie, "Heat", 1995)
	addTestTitle(t, env.store, catalog.KindSeries, "Fargo", 2014)

	w := env.do(t, http.MethodGet, "/api/v1/status", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[statusResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Movies)
	assert.Equal(t, 1, resp.Series)
}

func TestRequestID_Assigned(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodGet, "/api/v1/status", "")

	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestRequestID_Preserved(t *testing.T) {
	env := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
}
