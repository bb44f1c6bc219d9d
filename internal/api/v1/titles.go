package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vmunix/streamgo/internal/catalog"
)

func titleToResponse(t *catalog.Title) titleResponse {
	return titleResponse{
		ID:             t.ID,
		Kind:           string(t.Kind),
		TMDBID:         t.TMDBID,
		Title:          t.Title,
		Year:           t.Year,
		RuntimeMinutes: t.RuntimeMinutes,
		ReleaseDate:    t.ReleaseDate,
		AddedAt:        t.AddedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func titlesToList(items []*catalog.Title, total, limit, offset int) listTitlesResponse {
	resp := listTitlesResponse{
		Items:  make([]titleResponse, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i, t := range items {
		resp.Items[i] = titleToResponse(t)
	}
	return resp
}

func (s *Server) listTitles(w http.ResponseWriter, r *http.Request) {
	kind, err := queryTitleKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_KIND", err.Error())
		return
	}

	filter := catalog.TitleFilter{
		Kind:   kind,
		Year:   nil,
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if year := queryInt(r, "year", 0); year > 0 {
		filter.Year = &year
	}

	items, total, err := s.deps.Store.ListTitles(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, titlesToList(items, total, filter.Limit, filter.Offset))
}

func (s *Server) getTitle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	t, err := s.deps.Store.GetTitle(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Title not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, titleToResponse(t))
}

func (s *Server) addTitle(w http.ResponseWriter, r *http.Request) {
	var req addTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	kind := catalog.TitleKind(req.Kind)
	if kind != catalog.KindMovie && kind != catalog.KindSeries {
		writeError(w, http.StatusBadRequest, "INVALID_KIND", "kind must be 'movie' or 'series'")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "INVALID_TITLE", "title is required")
		return
	}

	t := &catalog.Title{Kind: kind, Title: req.Title, Year: req.Year}
	if err := s.deps.Store.AddTitle(t); err != nil {
		if errors.Is(err, catalog.ErrDuplicate) {
			writeError(w, http.StatusConflict, "DUPLICATE", "Title already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, titleToResponse(t))
}

func (s *Server) listEpisodes(w http.ResponseWriter, r *http.Request) {
	seriesID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	episodes, total, err := s.deps.Store.ListEpisodes(catalog.EpisodeFilter{SeriesID: &seriesID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	resp := listEpisodesResponse{
		Items: make([]episodeResponse, len(episodes)),
		Total: total,
	}
	for i, ep := range episodes {
		resp.Items[i] = episodeResponse{
			ID:             ep.ID,
			SeriesID:       ep.SeriesID,
			Season:         ep.Season,
			Episode:        ep.Episode,
			Title:          ep.Title,
			RuntimeMinutes: ep.RuntimeMinutes,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) searchTitles(w http.ResponseWriter, r *http.Request) {
	term := queryString(r, "q")
	if term == nil {
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "q parameter is required")
		return
	}
	kind, err := queryTitleKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_KIND", err.Error())
		return
	}

	items, err := s.deps.Store.SearchTitles(*term, kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, titlesToList(items, len(items), len(items), 0))
}

func (s *Server) recentTitles(w http.ResponseWriter, r *http.Request) {
	kind, err := queryTitleKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_KIND", err.Error())
		return
	}
	if kind == nil {
		writeError(w, http.StatusBadRequest, "MISSING_KIND", "kind parameter is required")
		return
	}

	items, err := s.deps.Store.RecentTitles(*kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, titlesToList(items, len(items), len(items), 0))
}
