package apihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"mediabrowse/catalogservice/internal/domain"
	"mediabrowse/catalogservice/internal/presenter"
)

type CatalogService interface {
	Browse(ctx context.Context, filter domain.Filter) (domain.PageResult, error)
	Genres(ctx context.Context, mediaType string) ([]domain.Option, error)
	Providers(ctx context.Context) ([]domain.Option, error)
}

type PageRenderer interface {
	RenderPage(w io.Writer, view presenter.PageView) error
}

type Server struct {
	catalog   CatalogService
	renderer  PageRenderer
	logger    *slog.Logger
	now       func() time.Time
	rateRPS   float64
	rateBurst int
}

const (
	maxQueryLength = 500

	defaultRateRPS   = 50
	defaultRateBurst = 100

	pageFailureMessage = "Unable to load titles right now. Please try again later."
)

var errQueryTooLong = errors.New("query too long (max 500 characters)")

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithRenderer(renderer PageRenderer) ServerOption {
	return func(s *Server) {
		s.renderer = renderer
	}
}

func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRateLimit sets the inbound token bucket. A non-positive rps disables it.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		s.rateRPS = rps
		s.rateBurst = burst
	}
}

func NewServer(catalogService CatalogService, options ...ServerOption) *Server {
	server := &Server{
		catalog:   catalogService,
		logger:    slog.Default(),
		now:       time.Now,
		rateRPS:   defaultRateRPS,
		rateBurst: defaultRateBurst,
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	return server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/static/", presenter.StaticHandler())
	mux.HandleFunc("/api/browse", s.handleBrowseAPI)
	mux.HandleFunc("/api/genres", s.handleGenres)
	mux.HandleFunc("/api/watch-providers", s.handleWatchProviders)
	mux.HandleFunc("/watch/episode", s.handleWatchEpisode)
	mux.HandleFunc("/", s.handleBrowsePage)
	traced := otelhttp.NewHandler(requestIDMiddleware(loggingMiddleware(s.logger, mux)), "catalog-browser",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health" && !strings.HasPrefix(p, "/static/")
		}),
	)
	return recoveryMiddleware(s.logger, rateLimitMiddleware(s.rateRPS, s.rateBurst, metricsMiddleware(traced)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC(),
	})
}

func (s *Server) handleBrowsePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil || s.renderer == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "catalog page is not configured")
		return
	}

	now := s.now()
	filter, err := parseFilter(r, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var (
		result    domain.PageResult
		browseErr error
		genres    []domain.Option
		providers []domain.Option
	)
	ctx := r.Context()
	var g errgroup.Group
	g.Go(func() error {
		result, browseErr = s.catalog.Browse(ctx, filter)
		return nil
	})
	g.Go(func() error {
		genres = s.optionList(ctx, "genres", func(ctx context.Context) ([]domain.Option, error) {
			return s.catalog.Genres(ctx, string(filter.Type))
		})
		return nil
	})
	g.Go(func() error {
		providers = s.optionList(ctx, "providers", s.catalog.Providers)
		return nil
	})
	_ = g.Wait()

	status := http.StatusOK
	var view presenter.PageView
	if browseErr != nil {
		s.logger.Warn("browse page failed",
			slog.String("type", string(filter.Type)),
			slog.String("query", truncate(filter.Query, 80)),
			slog.Int("page", filter.Page),
			slog.String("error", browseErr.Error()),
		)
		status = http.StatusBadGateway
		view = presenter.NewErrorView(filter, genres, providers, now, pageFailureMessage)
	} else {
		view = presenter.NewPageView(filter, result, genres, providers, now)
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderPage(&buf, view); err != nil {
		s.logger.Error("render browse page failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// optionList fetches a dropdown vocabulary for the page. Failures degrade to
// an empty list.
func (s *Server) optionList(ctx context.Context, name string, fetch func(context.Context) ([]domain.Option, error)) []domain.Option {
	options, err := fetch(ctx)
	if err != nil {
		s.logger.Warn("option list unavailable",
			slog.String("list", name),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return options
}

func (s *Server) handleBrowseAPI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/browse" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "catalog service is not configured")
		return
	}

	filter, err := parseFilter(r, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	result, err := s.catalog.Browse(r.Context(), filter)
	if err != nil {
		s.logger.Warn("browse request failed",
			slog.String("type", string(filter.Type)),
			slog.String("query", truncate(filter.Query, 80)),
			slog.Int("page", filter.Page),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "upstream_error", "catalog lookup failed")
		return
	}

	s.logger.Info("browse completed",
		slog.String("type", string(filter.Type)),
		slog.Int("page", filter.Page),
		slog.Int("items", len(result.Items)),
		slog.Int("totalPages", result.TotalPages),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"items":      result.Items,
		"totalPages": result.TotalPages,
		"page":       filter.Page,
	})
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/genres" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "catalog service is not configured")
		return
	}

	mediaType := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))
	if mediaType == "" {
		mediaType = string(domain.MediaTypeAll)
	}
	genres, err := s.catalog.Genres(r.Context(), mediaType)
	if err != nil {
		s.logger.Warn("genres request failed", slog.String("type", mediaType), slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "upstream_error", "genre lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"genres": nonNilOptions(genres)})
}

func (s *Server) handleWatchProviders(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/watch-providers" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "catalog service is not configured")
		return
	}

	providers, err := s.catalog.Providers(r.Context())
	if err != nil {
		s.logger.Warn("watch providers request failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "upstream_error", "watch provider lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": nonNilOptions(providers)})
}

func (s *Server) handleWatchEpisode(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/watch/episode" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	slug := strings.TrimSpace(query.Get("slug"))
	if slug == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "slug is required")
		return
	}
	season, err := parseEpisodeNumber(query.Get("season"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "season "+err.Error())
		return
	}
	episode, err := parseEpisodeNumber(query.Get("episode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "episode "+err.Error())
		return
	}
	http.Redirect(w, r, presenter.EpisodeURL(url.PathEscape(slug), season, episode), http.StatusFound)
}

func parseEpisodeNumber(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("is required")
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return "", errors.New("must be a positive number")
	}
	return strconv.Itoa(parsed), nil
}

// parseFilter reads the filter from the query string and fills defaults.
// A missing or malformed page falls back to 1.
func parseFilter(r *http.Request, now time.Time) (domain.Filter, error) {
	query := r.URL.Query()
	filter := domain.Filter{
		Type:       domain.MediaType(strings.ToLower(strings.TrimSpace(query.Get("type")))),
		Year:       strings.TrimSpace(query.Get("year")),
		Month:      strings.TrimSpace(query.Get("month")),
		Genre:      strings.TrimSpace(query.Get("genre")),
		Country:    strings.TrimSpace(query.Get("country")),
		Rating:     strings.TrimSpace(query.Get("rating")),
		Provider:   strings.TrimSpace(query.Get("provider")),
		TVCategory: strings.TrimSpace(query.Get("tvCategory")),
		Query:      strings.TrimSpace(query.Get("query")),
	}
	if len(filter.Query) > maxQueryLength {
		return domain.Filter{}, errQueryTooLong
	}
	if page, err := strconv.Atoi(strings.TrimSpace(query.Get("page"))); err == nil && page > 0 {
		filter.Page = page
	}
	return filter.WithDefaults(now), nil
}

func nonNilOptions(options []domain.Option) []domain.Option {
	if options == nil {
		return []domain.Option{}
	}
	return options
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
