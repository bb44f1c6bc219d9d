package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vmunix/streamgo/internal/catalog"
	"github.com/vmunix/streamgo/internal/metadata"
	"github.com/vmunix/streamgo/pkg/tmdb"
)

func resolvedToResponse(r *metadata.Resolved) resolvedResponse {
	return resolvedResponse{
		TitleID:     r.TitleID,
		TMDBID:      r.TMDBID,
		Title:       r.Title,
		Series:      r.Series,
		PosterURL:   tmdb.PosterURL(r.PosterPath, tmdb.DefaultPosterSize),
		BackdropURL: tmdb.BackdropURL(r.BackdropPath, tmdb.DefaultBackdropSize),
		Overview:    r.Overview,
		Confidence:  r.Confidence.String(),
		Fallback:    r.Fallback(),
	}
}

// resolveRequestFor loads a stored title and builds its resolver request.
func (s *Server) resolveRequestFor(titleID int64) (metadata.Request, error) {
	t, err := s.deps.Store.GetTitle(titleID)
	if err != nil {
		return metadata.Request{}, err
	}
	return metadata.Request{
		TitleID: t.ID,
		Title:   t.Title,
		Series:  t.Kind == catalog.KindSeries,
		TMDBID:  t.TMDBID,
	}, nil
}

func (s *Server) resolveTitle(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	mreq, err := s.resolveRequestFor(req.TitleID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Title not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	resolved, err := s.deps.Resolver.Resolve(r.Context(), mreq)
	if err != nil {
		// Only the caller's own cancellation surfaces here.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusRequestTimeout, "CANCELLED", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "RESOLVE_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resolvedToResponse(resolved))
}

func (s *Server) resolveBatch(w http.ResponseWriter, r *http.Request) {
	var req resolveBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	reqs := make([]metadata.Request, 0, len(req.TitleIDs))
	for _, id := range req.TitleIDs {
		mreq, err := s.resolveRequestFor(id)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				writeError(w, http.StatusNotFound, "NOT_FOUND", "Title not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
			return
		}
		reqs = append(reqs, mreq)
	}

	results := s.deps.Resolver.ResolveBatch(r.Context(), reqs)

	resp := resolveBatchResponse{Items: make([]resolvedResponse, 0, len(results))}
	for _, res := range results {
		if res == nil {
			continue
		}
		resp.Items = append(resp.Items, resolvedToResponse(res))
	}

	writeJSON(w, http.StatusOK, resp)
}
