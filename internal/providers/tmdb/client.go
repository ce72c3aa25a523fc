package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediabrowse/catalogservice/internal/metrics"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "en-US"
	maxBodyBytes    = 4 << 20
)

// ErrUpstreamStatus is wrapped into every error caused by a non-2xx reply.
var ErrUpstreamStatus = errors.New("tmdb: unexpected status")

type Client struct {
	apiKey    string
	baseURL   string
	language  string
	userAgent string
	http      *http.Client
}

type Config struct {
	APIKey    string
	BaseURL   string
	Language  string
	UserAgent string
	Client    *http.Client
}

// Result is one entry of a discover or search page. Movies fill Title and
// ReleaseDate, TV shows fill Name and FirstAirDate.
type Result struct {
	ID            int      `json:"id"`
	Title         string   `json:"title,omitempty"`
	Name          string   `json:"name,omitempty"`
	Overview      string   `json:"overview"`
	PosterPath    string   `json:"poster_path,omitempty"`
	VoteAverage   float64  `json:"vote_average"`
	ReleaseDate   string   `json:"release_date,omitempty"`
	FirstAirDate  string   `json:"first_air_date,omitempty"`
	GenreIDs      []int    `json:"genre_ids,omitempty"`
	OriginCountry []string `json:"origin_country,omitempty"`
	IMDbID        string   `json:"imdb_id,omitempty"`
}

type Page struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type WatchProvider struct {
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path,omitempty"`
	DisplayPriority int    `json:"display_priority"`
}

type videosResponse struct {
	Results []Video `json:"results"`
}

type genresResponse struct {
	Genres []Genre `json:"genres"`
}

type watchProvidersResponse struct {
	Results []WatchProvider `json:"results"`
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = defaultLanguage
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		baseURL:   strings.TrimRight(baseURL, "/"),
		language:  language,
		userAgent: strings.TrimSpace(cfg.UserAgent),
		http:      httpClient,
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Discover fetches one page of /discover/{movie|tv}. params carries the
// filter parameters and is sent as-is.
func (c *Client) Discover(ctx context.Context, mediaType string, params url.Values) (Page, error) {
	var page Page
	err := c.get(ctx, "discover_"+mediaType, "/discover/"+mediaType, params, &page)
	return page, err
}

// Search fetches one page of /search/{movie|tv}.
func (c *Client) Search(ctx context.Context, mediaType string, params url.Values) (Page, error) {
	var page Page
	err := c.get(ctx, "search_"+mediaType, "/search/"+mediaType, params, &page)
	return page, err
}

func (c *Client) Videos(ctx context.Context, mediaType string, id int) ([]Video, error) {
	var response videosResponse
	path := "/" + mediaType + "/" + strconv.Itoa(id) + "/videos"
	if err := c.get(ctx, "videos_"+mediaType, path, c.withLanguage(nil), &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}

func (c *Client) Genres(ctx context.Context, mediaType string) ([]Genre, error) {
	var response genresResponse
	if err := c.get(ctx, "genres_"+mediaType, "/genre/"+mediaType+"/list", c.withLanguage(nil), &response); err != nil {
		return nil, err
	}
	return response.Genres, nil
}

func (c *Client) WatchProviders(ctx context.Context, mediaType, region string) ([]WatchProvider, error) {
	params := c.withLanguage(nil)
	if region = strings.TrimSpace(region); region != "" {
		params.Set("watch_region", region)
	}
	var response watchProvidersResponse
	if err := c.get(ctx, "watch_providers", "/watch/providers/"+mediaType, params, &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}

func (c *Client) withLanguage(params url.Values) url.Values {
	if params == nil {
		params = url.Values{}
	}
	if params.Get("language") == "" {
		params.Set("language", c.language)
	}
	return params
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, dest any) error {
	query := url.Values{}
	for key, values := range params {
		query[key] = append([]string(nil), values...)
	}
	query.Set("api_key", c.apiKey)

	reqURL := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	startedAt := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startedAt).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("tmdb %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("tmdb %s HTTP %d: %s: %w", endpoint, resp.StatusCode, strings.TrimSpace(string(body)), ErrUpstreamStatus)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("tmdb %s: read body: %w", endpoint, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("tmdb %s: decode: %w", endpoint, err)
	}
	return nil
}
