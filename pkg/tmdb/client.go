package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org"
	defaultLanguage = "en-US"

	// placeholderTitle stands in for candidates the provider returns
	// without a title; they are ranked normally rather than discarded.
	placeholderTitle = "(untitled)"

	retryAttempts = 3
	retryDelay    = 250 * time.Millisecond
)

// Sentinel errors for TMDB API responses.
var (
	// ErrNotFound is returned when a detail lookup matches nothing.
	ErrNotFound = errors.New("title not found")

	// ErrUnavailable is returned when the provider cannot be reached or
	// answers with a server error after transport-level retries.
	ErrUnavailable = errors.New("metadata provider unavailable")
)

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	language   string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLanguage sets the metadata language (e.g. "it-IT").
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "tmdb")
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		language: defaultLanguage,
		baseURL:  defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON performs one GET against the API with bounded transport retries.
// 404 maps to ErrNotFound; network failures and 5xx map to ErrUnavailable.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	query.Set("language", c.language)
	reqURL := c.baseURL + path + "?" + query.Encode()

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(ErrNotFound)
			case resp.StatusCode >= http.StatusInternalServerError:
				return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(fmt.Errorf("%w: %s", ErrUnavailable, resp.Status))
			}

			if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil && c.log != nil {
		c.log.Debug("request failed", "path", path, "error", err)
	}
	return err
}

type searchMovieDTO struct {
	Results []struct {
		ID           int64   `json:"id"`
		Title        string  `json:"title"`
		Popularity   float64 `json:"popularity"`
		PosterPath   string  `json:"poster_path"`
		BackdropPath string  `json:"backdrop_path"`
		Overview     string  `json:"overview"`
	} `json:"results"`
}

type searchTVDTO struct {
	Results []struct {
		ID           int64   `json:"id"`
		Name         string  `json:"name"`
		Popularity   float64 `json:"popularity"`
		PosterPath   string  `json:"poster_path"`
		BackdropPath string  `json:"backdrop_path"`
		Overview     string  `json:"overview"`
	} `json:"results"`
}

// Search queries the movie and TV search endpoints concurrently and returns
// the combined raw candidates. An empty or whitespace query returns no
// results without touching the network. Candidates missing a title carry a
// placeholder label.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	var movies searchMovieDTO
	var shows searchTVDTO

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getJSON(ctx, "/3/search/movie", url.Values{"query": {query}}, &movies)
	})
	g.Go(func() error {
		return c.getJSON(ctx, "/3/search/tv", url.Values{"query": {query}}, &shows)
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	results := make([]SearchResult, 0, len(movies.Results)+len(shows.Results))
	for _, m := range movies.Results {
		title := m.Title
		if title == "" {
			title = placeholderTitle
		}
		results = append(results, SearchResult{
			ID:           m.ID,
			Title:        title,
			Kind:         MediaMovie,
			Popularity:   m.Popularity,
			PosterPath:   m.PosterPath,
			BackdropPath: m.BackdropPath,
			Overview:     m.Overview,
		})
	}
	for _, s := range shows.Results {
		title := s.Name
		if title == "" {
			title = placeholderTitle
		}
		results = append(results, SearchResult{
			ID:           s.ID,
			Title:        title,
			Kind:         MediaTV,
			Popularity:   s.Popularity,
			PosterPath:   s.PosterPath,
			BackdropPath: s.BackdropPath,
			Overview:     s.Overview,
		})
	}
	return results, nil
}

type movieDetailDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Runtime     int    `json:"runtime"`
	ReleaseDate string `json:"release_date"`
}

// GetMovie fetches movie detail by TMDB ID.
// Returns ErrNotFound if the id matches nothing.
func (c *Client) GetMovie(ctx context.Context, id int64) (*MovieDetail, error) {
	var dto movieDetailDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/3/movie/%d", id), nil, &dto); err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}

	detail := &MovieDetail{
		ID:             dto.ID,
		Title:          dto.Title,
		RuntimeMinutes: dto.Runtime,
	}
	if t, err := time.Parse("2006-01-02", dto.ReleaseDate); err == nil {
		detail.ReleaseDate = &t
	}
	return detail, nil
}

type seriesDetailDTO struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	NumberOfSeasons int    `json:"number_of_seasons"`
	Seasons         []struct {
		SeasonNumber int `json:"season_number"`
	} `json:"seasons"`
}

// GetSeries fetches series detail by TMDB ID.
// Returns ErrNotFound if the id matches nothing. Season zero (specials) is
// omitted from the season list.
func (c *Client) GetSeries(ctx context.Context, id int64) (*SeriesDetail, error) {
	var dto seriesDetailDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/3/tv/%d", id), nil, &dto); err != nil {
		return nil, fmt.Errorf("get series %d: %w", id, err)
	}

	detail := &SeriesDetail{
		ID:          dto.ID,
		Name:        dto.Name,
		SeasonCount: dto.NumberOfSeasons,
	}
	for _, s := range dto.Seasons {
		if s.SeasonNumber >= 1 {
			detail.Seasons = append(detail.Seasons, s.SeasonNumber)
		}
	}
	sort.Ints(detail.Seasons)
	return detail, nil
}

type seasonDetailDTO struct {
	Episodes []struct {
		EpisodeNumber int    `json:"episode_number"`
		Name          string `json:"name"`
		Runtime       int    `json:"runtime"`
	} `json:"episodes"`
}

// GetSeason fetches the episode list for one season of a series.
// Returns ErrNotFound if the series or season matches nothing. Episodes
// missing a name get a numbered fallback.
func (c *Client) GetSeason(ctx context.Context, seriesID int64, season int) (*SeasonDetail, error) {
	var dto seasonDetailDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/3/tv/%d/season/%d", seriesID, season), nil, &dto); err != nil {
		return nil, fmt.Errorf("get season %d of series %d: %w", season, seriesID, err)
	}

	detail := &SeasonDetail{SeriesID: seriesID, Season: season}
	for _, e := range dto.Episodes {
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("Episode %d", e.EpisodeNumber)
		}
		detail.Episodes = append(detail.Episodes, EpisodeInfo{
			Episode:        e.EpisodeNumber,
			Name:           name,
			RuntimeMinutes: e.Runtime,
		})
	}
	sort.Slice(detail.Episodes, func(i, j int) bool {
		return detail.Episodes[i].Episode < detail.Episodes[j].Episode
	})
	return detail, nil
}
