package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client wraps HTTP calls to the streamgo server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new streamgo API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body any, result any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apiError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("server error %d: %s", resp.StatusCode, errResp.Error)
	}
	return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
}

// API response types (mirror server types)

type TitleResponse struct {
	ID             int64     `json:"id"`
	Kind           string    `json:"kind"`
	TMDBID         *int64    `json:"tmdb_id,omitempty"`
	Title          string    `json:"title"`
	Year           int       `json:"year,omitempty"`
	RuntimeMinutes int       `json:"runtime_minutes,omitempty"`
	AddedAt        time.Time `json:"added_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ListTitlesResponse struct {
	Items  []TitleResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type EpisodeResponse struct {
	ID             int64  `json:"id"`
	SeriesID       int64  `json:"series_id"`
	Season         int    `json:"season"`
	Episode        int    `json:"episode"`
	Title          string `json:"title"`
	RuntimeMinutes int    `json:"runtime_minutes,omitempty"`
}

type ListEpisodesResponse struct {
	Items []EpisodeResponse `json:"items"`
	Total int               `json:"total"`
}

type ResolvedResponse struct {
	TitleID     int64  `json:"title_id"`
	TMDBID      int64  `json:"tmdb_id,omitempty"`
	Title       string `json:"title"`
	Series      bool   `json:"series"`
	PosterURL   string `json:"poster_url,omitempty"`
	BackdropURL string `json:"backdrop_url,omitempty"`
	Overview    string `json:"overview,omitempty"`
	Confidence  string `json:"confidence"`
	Fallback    bool   `json:"fallback"`
}

type ResolveBatchResponse struct {
	Items []ResolvedResponse `json:"items"`
}

type ProgressResponse struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	TargetKind     string    `json:"target_kind"`
	TargetID       int64     `json:"target_id"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	Completed      bool      `json:"completed"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type EventResponse struct {
	ID         int64  `json:"id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	OccurredAt string `json:"occurred_at"`
}

type ListEventsResponse struct {
	Items  []EventResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type StatusResponse struct {
	Status         string `json:"status"`
	Movies         int    `json:"movies"`
	Series         int    `json:"series"`
	ResolvedTitles int    `json:"resolved_titles"`
}

type ScanResponse struct {
	TitlesAdded   int `json:"titles_added"`
	EpisodesAdded int `json:"episodes_added"`
	FilesAdded    int `json:"files_added"`
	Skipped       int `json:"skipped"`
}

// API methods

func (c *Client) Status() (*StatusResponse, error) {
	var out StatusResponse
	if err := c.get("/api/v1/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Titles(kind string, limit int) (*ListTitlesResponse, error) {
	params := url.Values{}
	if kind != "" {
		params.Set("kind", kind)
	}
	params.Set("limit", fmt.Sprintf("%d", limit))

	var out ListTitlesResponse
	if err := c.get("/api/v1/titles?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Title(id int64) (*TitleResponse, error) {
	var out TitleResponse
	if err := c.get(fmt.Sprintf("/api/v1/titles/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type addTitleRequest struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Year  int    `json:"year"`
}

func (c *Client) AddTitle(kind, title string, year int) (*TitleResponse, error) {
	var out TitleResponse
	if err := c.post("/api/v1/titles", addTitleRequest{Kind: kind, Title: title, Year: year}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Episodes(seriesID int64) (*ListEpisodesResponse, error) {
	var out ListEpisodesResponse
	if err := c.get(fmt.Sprintf("/api/v1/titles/%d/episodes", seriesID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Search(query, kind string) (*ListTitlesResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	if kind != "" {
		params.Set("kind", kind)
	}

	var out ListTitlesResponse
	if err := c.get("/api/v1/search?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Recent(kind string) (*ListTitlesResponse, error) {
	var out ListTitlesResponse
	if err := c.get("/api/v1/titles/recent?kind="+url.QueryEscape(kind), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Resolve(titleID int64) (*ResolvedResponse, error) {
	var out ResolvedResponse
	if err := c.post("/api/v1/metadata/resolve", map[string]int64{"title_id": titleID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResolveBatch(titleIDs []int64) (*ResolveBatchResponse, error) {
	var out ResolveBatchResponse
	if err := c.post("/api/v1/metadata/resolve/batch", map[string][]int64{"title_ids": titleIDs}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ContinueWatching(userID int64, kind string) ([]ProgressResponse, error) {
	params := url.Values{}
	params.Set("user", fmt.Sprintf("%d", userID))
	if kind != "" {
		params.Set("kind", kind)
	}

	var out []ProgressResponse
	if err := c.get("/api/v1/continue?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Popular(kind string) (*ListTitlesResponse, error) {
	var out ListTitlesResponse
	if err := c.get("/api/v1/popular?kind="+url.QueryEscape(kind), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type recordProgressRequest struct {
	UserID         int64  `json:"user_id"`
	TargetKind     string `json:"target_kind"`
	TargetID       int64  `json:"target_id"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Completed      bool   `json:"completed"`
}

func (c *Client) RecordProgress(req recordProgressRequest) (*ProgressResponse, error) {
	var out ProgressResponse
	if err := c.post("/api/v1/progress", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Events(limit int) (*ListEventsResponse, error) {
	var out ListEventsResponse
	if err := c.get(fmt.Sprintf("/api/v1/events?limit=%d", limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Scan() (*ScanResponse, error) {
	var out ScanResponse
	if err := c.post("/api/v1/scan", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
