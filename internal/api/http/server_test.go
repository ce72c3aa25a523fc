package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"mediabrowse/catalogservice/internal/domain"
	"mediabrowse/catalogservice/internal/presenter"
)

var testNow = time.Date(2024, time.June, 15, 9, 30, 0, 0, time.UTC)

type fakeCatalogService struct {
	mu           sync.Mutex
	lastFilter   domain.Filter
	lastGenreArg string
	browseCalls  int

	result       domain.PageResult
	browseErr    error
	genres       []domain.Option
	genresErr    error
	providers    []domain.Option
	providersErr error
}

func (f *fakeCatalogService) Browse(ctx context.Context, filter domain.Filter) (domain.PageResult, error) {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	f.browseCalls++
	f.lastFilter = filter
	if f.browseErr != nil {
		return domain.PageResult{}, f.browseErr
	}
	return f.result, nil
}

func (f *fakeCatalogService) Genres(ctx context.Context, mediaType string) ([]domain.Option, error) {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastGenreArg = mediaType
	return f.genres, f.genresErr
}

func (f *fakeCatalogService) Providers(ctx context.Context) ([]domain.Option, error) {
	_ = ctx
	return f.providers, f.providersErr
}

type failingRenderer struct{}

func (failingRenderer) RenderPage(w io.Writer, view presenter.PageView) error {
	_, _ = w.Write([]byte("partial"))
	return errors.New("template exploded")
}

func newTestServer(t *testing.T, catalog CatalogService, options ...ServerOption) *Server {
	t.Helper()
	renderer, err := presenter.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	base := []ServerOption{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRenderer(renderer),
		WithClock(func() time.Time { return testNow }),
		WithRateLimit(0, 0),
	}
	return NewServer(catalog, append(base, options...)...)
}

func serve(server *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := serve(newTestServer(t, &fakeCatalogService{}), "/health")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBrowseAPIParsesFilter(t *testing.T) {
	fake := &fakeCatalogService{result: domain.PageResult{
		Items:      []domain.MediaItem{{ID: 603, MediaType: domain.MediaTypeMovie, Title: "The Matrix"}},
		TotalPages: 12,
	}}
	rec := serve(newTestServer(t, fake), "/api/browse?type=movie&year=2024&month=06&genre=28&country=KR&rating=7&provider=8&query=+matrix+&page=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	want := domain.Filter{
		Type: domain.MediaTypeMovie, Year: "2024", Month: "06", Genre: "28", Country: "KR",
		Rating: "7", Provider: "8", TVCategory: domain.FilterAll, Query: "matrix", Page: 3,
	}
	if fake.lastFilter != want {
		t.Fatalf("filter = %+v, want %+v", fake.lastFilter, want)
	}

	var payload struct {
		Items      []domain.MediaItem `json:"items"`
		TotalPages int                `json:"totalPages"`
		Page       int                `json:"page"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.TotalPages != 12 || payload.Page != 3 || len(payload.Items) != 1 || payload.Items[0].Title != "The Matrix" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestBrowseAPIDefaults(t *testing.T) {
	fake := &fakeCatalogService{}
	rec := serve(newTestServer(t, fake), "/api/browse?page=abc")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fake.lastFilter != domain.DefaultFilter(testNow) {
		t.Fatalf("filter = %+v, want defaults", fake.lastFilter)
	}
}

func TestBrowseAPIUpstreamFailure(t *testing.T) {
	fake := &fakeCatalogService{browseErr: errors.New("discover movie: tmdb: unexpected status 500")}
	rec := serve(newTestServer(t, fake), "/api/browse?type=movie")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "upstream_error" {
		t.Fatalf("unexpected error envelope: %s", rec.Body.String())
	}
}

func TestBrowseAPIRejectsLongQuery(t *testing.T) {
	fake := &fakeCatalogService{}
	rec := serve(newTestServer(t, fake), "/api/browse?query="+strings.Repeat("a", maxQueryLength+1))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if fake.browseCalls != 0 {
		t.Fatal("catalog must not be called for an invalid request")
	}
}

func TestGenresEndpoint(t *testing.T) {
	fake := &fakeCatalogService{genres: []domain.Option{{Value: "28", Label: "Action"}}}
	rec := serve(newTestServer(t, fake), "/api/genres?type=TV")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fake.lastGenreArg != "tv" {
		t.Fatalf("genre type = %q", fake.lastGenreArg)
	}
	if !strings.Contains(rec.Body.String(), `{"genres":[{"value":"28","label":"Action"}]}`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	serve(newTestServer(t, fake), "/api/genres")
	if fake.lastGenreArg != "all" {
		t.Fatalf("default genre type = %q", fake.lastGenreArg)
	}
}

func TestOptionEndpointsFailure(t *testing.T) {
	fake := &fakeCatalogService{genresErr: errors.New("down"), providersErr: errors.New("down")}
	server := newTestServer(t, fake)
	for _, target := range []string{"/api/genres?type=movie", "/api/watch-providers"} {
		if rec := serve(server, target); rec.Code != http.StatusBadGateway {
			t.Fatalf("%s: expected 502, got %d", target, rec.Code)
		}
	}
}

func TestWatchProvidersEmptyListIsArray(t *testing.T) {
	rec := serve(newTestServer(t, &fakeCatalogService{}), "/api/watch-providers")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `{"providers":[]}`) {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWatchEpisodeRedirect(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		status   int
		location string
	}{
		{"ok", "/watch/episode?slug=dark&season=2&episode=05", http.StatusFound, "https://popcornmovies.to/episode/dark/2-5"},
		{"missing season", "/watch/episode?slug=dark&episode=1", http.StatusBadRequest, ""},
		{"missing episode", "/watch/episode?slug=dark&season=1", http.StatusBadRequest, ""},
		{"bad number", "/watch/episode?slug=dark&season=x&episode=1", http.StatusBadRequest, ""},
		{"missing slug", "/watch/episode?season=1&episode=1", http.StatusBadRequest, ""},
	}
	server := newTestServer(t, &fakeCatalogService{})
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(server, tc.target)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if got := rec.Header().Get("Location"); got != tc.location {
				t.Fatalf("location = %q, want %q", got, tc.location)
			}
		})
	}
}

func TestBrowsePageRendersResults(t *testing.T) {
	fake := &fakeCatalogService{
		result: domain.PageResult{
			Items: []domain.MediaItem{{
				ID: 603, MediaType: domain.MediaTypeMovie, Title: "The Matrix",
				ReleaseDate: "2024-06-01", TrailerURL: "https://www.youtube.com/watch?v=abc",
			}},
			TotalPages: 4,
		},
		genres: []domain.Option{{Value: "28", Label: "Action"}},
	}
	rec := serve(newTestServer(t, fake), "/?type=movie&genre=28&page=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %s", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"The Matrix",
		"June 1, 2024",
		"https://popcornmovies.to/movie/the-matrix",
		`<option value="28" selected>Action</option>`,
		"2 of 4",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if fake.lastGenreArg != "movie" {
		t.Fatalf("page asked genres for %q", fake.lastGenreArg)
	}
}

func TestBrowsePageUpstreamFailure(t *testing.T) {
	fake := &fakeCatalogService{browseErr: errors.New("boom"), providersErr: errors.New("down")}
	rec := serve(newTestServer(t, fake), "/")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), pageFailureMessage) {
		t.Fatalf("failure page missing notice: %s", rec.Body.String())
	}
}

func TestBrowsePageRenderFailure(t *testing.T) {
	rec := serve(newTestServer(t, &fakeCatalogService{}, WithRenderer(failingRenderer{})), "/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "partial") {
		t.Fatal("partial render leaked into the response")
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	if rec := serve(newTestServer(t, &fakeCatalogService{}), "/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestNilCatalogIsServerError(t *testing.T) {
	server := NewServer(nil, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	for _, target := range []string{"/", "/api/browse", "/api/genres", "/api/watch-providers"} {
		if rec := serve(server, target); rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", target, rec.Code)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/browse", nil)
	rec := httptest.NewRecorder()
	newTestServer(t, &fakeCatalogService{}).Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestStaticAssetsServed(t *testing.T) {
	rec := serve(newTestServer(t, &fakeCatalogService{}), presenter.PlaceholderPath)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Fatalf("unexpected static response %d", rec.Code)
	}
}
