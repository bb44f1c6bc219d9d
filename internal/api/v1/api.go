// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vmunix/streamgo/internal/catalog"
	"github.com/vmunix/streamgo/internal/events"
	"github.com/vmunix/streamgo/internal/history"
	"github.com/vmunix/streamgo/internal/importer"
	"github.com/vmunix/streamgo/internal/metadata"
)

// Deps holds the server's collaborators. Store, Resolver and History are
// required; the rest are optional and their routes answer 503 when absent.
type Deps struct {
	Store    *catalog.Store
	Resolver *metadata.Resolver
	History  *history.Service
	Scanner  *importer.Scanner
	EventLog *events.EventLog
}

// Server is the v1 API server.
type Server struct {
	deps Deps
	log  *slog.Logger
}

// New creates a new v1 API server.
func New(deps Deps, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{deps: deps, log: log.With("component", "api")}
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Titles
	mux.HandleFunc("GET /api/v1/titles", s.listTitles)
	mux.HandleFunc("POST /api/v1/titles", s.addTitle)
	mux.HandleFunc("GET /api/v1/titles/recent", s.recentTitles)
	mux.HandleFunc("GET /api/v1/titles/{id}", s.getTitle)
	mux.HandleFunc("GET /api/v1/titles/{id}/episodes", s.listEpisodes)

	// Local catalog search
	mux.HandleFunc("GET /api/v1/search", s.searchTitles)

	// Metadata resolution
	mux.HandleFunc("POST /api/v1/metadata/resolve", s.resolveTitle)
	mux.HandleFunc("POST /api/v1/metadata/resolve/batch", s.resolveBatch)

	// Watch progress
	mux.HandleFunc("GET /api/v1/continue", s.continueWatching)
	mux.HandleFunc("GET /api/v1/popular", s.popularTitles)
	mux.HandleFunc("POST /api/v1/progress", s.recordProgress)

	// Events
	mux.HandleFunc("GET /api/v1/events", s.listEvents)
	mux.HandleFunc("GET /api/v1/titles/{id}/events", s.listTitleEvents)

	// System
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
	mux.HandleFunc("POST /api/v1/scan", s.requireScanner(s.triggerScan))
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.withRequestID(s.withLogging(mux))
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// pathID extracts an integer ID from the URL path.
func pathID(r *http.Request, name string) (int64, error) {
	idStr := r.PathValue(name)
	if idStr == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// queryString extracts an optional string from query string.
func queryString(r *http.Request, name string) *string {
	val := r.URL.Query().Get(name)
	if val == "" {
		return nil
	}
	return &val
}

// queryTitleKind parses an optional kind=movie|series parameter.
// Returns an error for unrecognized values.
func queryTitleKind(r *http.Request) (*catalog.TitleKind, error) {
	val := r.URL.Query().Get("kind")
	switch val {
	case "":
		return nil, nil
	case string(catalog.KindMovie):
		k := catalog.KindMovie
		return &k, nil
	case string(catalog.KindSeries):
		k := catalog.KindSeries
		return &k, nil
	}
	return nil, fmt.Errorf("kind must be 'movie' or 'series', got %q", val)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	_, movies, err := s.deps.Store.ListTitles(catalog.TitleFilter{Kind: kindPtr(catalog.KindMovie), Limit: 1})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	_, series, err := s.deps.Store.ListTitles(catalog.TitleFilter{Kind: kindPtr(catalog.KindSeries), Limit: 1})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:         "ok",
		Movies:         movies,
		Series:         series,
		ResolvedTitles: s.deps.Resolver.CacheSize(),
	})
}

func (s *Server) triggerScan(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Scanner.Scan(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SCAN_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{
		TitlesAdded:   res.TitlesAdded,
		EpisodesAdded: res.EpisodesAdded,
		FilesAdded:    res.FilesAdded,
		Skipped:       res.Skipped,
	})
}

func kindPtr(k catalog.TitleKind) *catalog.TitleKind { return &k }
