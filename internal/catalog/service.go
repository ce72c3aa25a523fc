package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mediabrowse/catalogservice/internal/domain"
	"mediabrowse/catalogservice/internal/providers/tmdb"
)

const defaultTrailerConcurrency = 10

// Client is the subset of the catalog API the service needs.
type Client interface {
	Discover(ctx context.Context, mediaType string, params url.Values) (tmdb.Page, error)
	Search(ctx context.Context, mediaType string, params url.Values) (tmdb.Page, error)
	Videos(ctx context.Context, mediaType string, id int) ([]tmdb.Video, error)
	Genres(ctx context.Context, mediaType string) ([]tmdb.Genre, error)
	WatchProviders(ctx context.Context, mediaType, region string) ([]tmdb.WatchProvider, error)
}

type Service struct {
	client             Client
	logger             *slog.Logger
	watchRegion        string
	trailerConcurrency int
	now                func() time.Time
}

type ServiceOption func(*Service)

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithWatchRegion(region string) ServiceOption {
	return func(s *Service) {
		if region = strings.ToUpper(strings.TrimSpace(region)); region != "" {
			s.watchRegion = region
		}
	}
}

func WithTrailerConcurrency(limit int) ServiceOption {
	return func(s *Service) {
		if limit > 0 {
			s.trailerConcurrency = limit
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(client Client, options ...ServiceOption) *Service {
	service := &Service{
		client:             client,
		logger:             slog.Default(),
		watchRegion:        defaultWatchRegion,
		trailerConcurrency: defaultTrailerConcurrency,
		now:                time.Now,
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	if service.logger == nil {
		service.logger = slog.Default()
	}
	return service
}

// Browse resolves one UI page for the filter: the items to show, each with a
// trailer link, and the page count to advertise. Any upstream failure fails
// the whole page.
func (s *Service) Browse(ctx context.Context, filter domain.Filter) (domain.PageResult, error) {
	filter = filter.WithDefaults(s.now())

	var (
		result domain.PageResult
		err    error
	)
	if filter.HasQuery() {
		result, err = s.search(ctx, filter)
	} else {
		result, err = s.discover(ctx, filter)
	}
	if err != nil {
		return domain.PageResult{}, err
	}

	result.Items = s.attachTrailers(ctx, result.Items)
	s.logger.Debug("catalog page resolved",
		slog.String("type", string(filter.Type)),
		slog.Bool("search", filter.HasQuery()),
		slog.Int("page", filter.Page),
		slog.Int("items", len(result.Items)),
		slog.Int("totalPages", result.TotalPages),
	)
	return result, nil
}

func (s *Service) search(ctx context.Context, f domain.Filter) (domain.PageResult, error) {
	types := f.MediaTypes()
	if len(types) == 1 {
		mediaType := types[0]
		page, err := s.client.Search(ctx, string(mediaType), searchParams(f, mediaType, f.Page, s.watchRegion))
		if err != nil {
			return domain.PageResult{}, fmt.Errorf("search %s: %w", mediaType, err)
		}
		return domain.PageResult{
			Items:      toMediaItems(page.Results, mediaType),
			TotalPages: page.TotalPages,
		}, nil
	}

	combined, err := s.fetchBoth(ctx, func(ctx context.Context, mediaType domain.MediaType) (tmdb.Page, error) {
		return s.client.Search(ctx, string(mediaType), searchParams(f, mediaType, 1, s.watchRegion))
	})
	if err != nil {
		return domain.PageResult{}, fmt.Errorf("search: %w", err)
	}
	return domain.PageResult{
		Items:      localPage(combined, f.Page, combinedPageSize),
		TotalPages: pageCount(len(combined), combinedPageSize),
	}, nil
}

func (s *Service) discover(ctx context.Context, f domain.Filter) (domain.PageResult, error) {
	types := f.MediaTypes()
	if len(types) == 1 {
		mediaType := types[0]
		size := uiPageSize(mediaType)
		page, err := s.client.Discover(ctx, string(mediaType), discoverParams(f, mediaType, upstreamPageFor(f.Page), s.watchRegion))
		if err != nil {
			return domain.PageResult{}, fmt.Errorf("discover %s: %w", mediaType, err)
		}
		return domain.PageResult{
			Items:      halfOfBatch(toMediaItems(page.Results, mediaType), f.Page, size),
			TotalPages: page.TotalPages * 2,
		}, nil
	}

	combined, err := s.fetchBoth(ctx, func(ctx context.Context, mediaType domain.MediaType) (tmdb.Page, error) {
		return s.client.Discover(ctx, string(mediaType), discoverParams(f, mediaType, 1, s.watchRegion))
	})
	if err != nil {
		return domain.PageResult{}, fmt.Errorf("discover: %w", err)
	}
	sortByDateDesc(combined)
	return domain.PageResult{
		Items:      localPage(combined, f.Page, combinedPageSize),
		TotalPages: pageCount(len(combined), combinedPageSize),
	}, nil
}

// fetchBoth runs the movie and TV requests concurrently and concatenates
// their results, movies first.
func (s *Service) fetchBoth(ctx context.Context, fetch func(context.Context, domain.MediaType) (tmdb.Page, error)) ([]domain.MediaItem, error) {
	var movies, shows tmdb.Page
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := fetch(gctx, domain.MediaTypeMovie)
		if err != nil {
			return fmt.Errorf("movie: %w", err)
		}
		movies = page
		return nil
	})
	g.Go(func() error {
		page, err := fetch(gctx, domain.MediaTypeTV)
		if err != nil {
			return fmt.Errorf("tv: %w", err)
		}
		shows = page
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := toMediaItems(movies.Results, domain.MediaTypeMovie)
	return append(items, toMediaItems(shows.Results, domain.MediaTypeTV)...), nil
}

func toMediaItems(results []tmdb.Result, mediaType domain.MediaType) []domain.MediaItem {
	items := make([]domain.MediaItem, 0, len(results))
	for _, r := range results {
		items = append(items, domain.MediaItem{
			ID:            r.ID,
			MediaType:     mediaType,
			Title:         r.Title,
			Name:          r.Name,
			ReleaseDate:   r.ReleaseDate,
			FirstAirDate:  r.FirstAirDate,
			Overview:      r.Overview,
			VoteAverage:   r.VoteAverage,
			PosterPath:    r.PosterPath,
			GenreIDs:      r.GenreIDs,
			OriginCountry: r.OriginCountry,
			IMDbID:        r.IMDbID,
		})
	}
	return items
}
