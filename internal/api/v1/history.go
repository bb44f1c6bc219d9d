package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vmunix/streamgo/internal/catalog"
)

func progressToResponse(p *catalog.WatchProgress) progressResponse {
	return progressResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		TargetKind:     string(p.Target.Kind()),
		TargetID:       p.Target.ID(),
		ElapsedSeconds: p.ElapsedSeconds,
		Completed:      p.Completed,
		UpdatedAt:      p.UpdatedAt,
	}
}

// queryTargetKind parses kind=movie|episode, defaulting to movie.
func queryTargetKind(r *http.Request) (catalog.TargetKind, error) {
	val := r.URL.Query().Get("kind")
	switch val {
	case "", string(catalog.TargetMovie):
		return catalog.TargetMovie, nil
	case string(catalog.TargetEpisode):
		return catalog.TargetEpisode, nil
	}
	return "", errors.New("kind must be 'movie' or 'episode'")
}

func (s *Server) continueWatching(w http.ResponseWriter, r *http.Request) {
	userID := int64(queryInt(r, "user", 0))
	if userID <= 0 {
		writeError(w, http.StatusBadRequest, "MISSING_USER", "user parameter is required")
		return
	}
	kind, err := queryTargetKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_KIND", err.Error())
		return
	}

	rows, err := s.deps.History.ContinueWatching(userID, kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	resp := make([]progressResponse, len(rows))
	for i, p := range rows {
		resp[i] = progressToResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) popularTitles(w http.ResponseWriter, r *http.Request) {
	kind, err := queryTitleKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_KIND", err.Error())
		return
	}
	if kind == nil {
		writeError(w, http.StatusBadRequest, "MISSING_KIND", "kind parameter is required")
		return
	}

	titles, err := s.deps.History.PopularTitles(*kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, titlesToList(titles, len(titles), len(titles), 0))
}

func (s *Server) recordProgress(w http.ResponseWriter, r *http.Request) {
	var req recordProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_USER", "user_id is required")
		return
	}

	var target catalog.Target
	switch catalog.TargetKind(req.TargetKind) {
	case catalog.TargetMovie:
		target = catalog.MovieTarget(req.TargetID)
	case catalog.TargetEpisode:
		target = catalog.EpisodeTarget(req.TargetID)
	default:
		writeError(w, http.StatusBadRequest, "INVALID_TARGET", "target_kind must be 'movie' or 'episode'")
		return
	}

	p := &catalog.WatchProgress{
		UserID:         req.UserID,
		Target:         target,
		ElapsedSeconds: req.ElapsedSeconds,
		Completed:      req.Completed,
	}
	if err := s.deps.History.Record(r.Context(), p); err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvariant):
			writeError(w, http.StatusBadRequest, "INVALID_TARGET", "progress must reference exactly one target")
		case errors.Is(err, catalog.ErrConstraint):
			writeError(w, http.StatusUnprocessableEntity, "UNKNOWN_TARGET", "target does not exist")
		default:
			writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, progressToResponse(p))
}
