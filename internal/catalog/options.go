package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mediabrowse/catalogservice/internal/domain"
	"mediabrowse/catalogservice/internal/providers/tmdb"
)

// Genres returns the genre vocabulary for mediaType as options sorted by
// label. Any type other than movie or tv yields the union of both lists;
// on a shared id the TV name wins.
func (s *Service) Genres(ctx context.Context, mediaType string) ([]domain.Option, error) {
	switch domain.MediaType(strings.TrimSpace(mediaType)) {
	case domain.MediaTypeMovie, domain.MediaTypeTV:
		genres, err := s.client.Genres(ctx, strings.TrimSpace(mediaType))
		if err != nil {
			return nil, fmt.Errorf("genres %s: %w", mediaType, err)
		}
		return genreOptions(genres), nil
	}

	var movieGenres, tvGenres []tmdb.Genre
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		genres, err := s.client.Genres(gctx, string(domain.MediaTypeMovie))
		if err != nil {
			return fmt.Errorf("genres movie: %w", err)
		}
		movieGenres = genres
		return nil
	})
	g.Go(func() error {
		genres, err := s.client.Genres(gctx, string(domain.MediaTypeTV))
		if err != nil {
			return fmt.Errorf("genres tv: %w", err)
		}
		tvGenres = genres
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int]string, len(movieGenres)+len(tvGenres))
	for _, genre := range movieGenres {
		byID[genre.ID] = genre.Name
	}
	for _, genre := range tvGenres {
		byID[genre.ID] = genre.Name
	}
	merged := make([]tmdb.Genre, 0, len(byID))
	for id, name := range byID {
		merged = append(merged, tmdb.Genre{ID: id, Name: name})
	}
	return genreOptions(merged), nil
}

// Providers returns the streaming providers available in the configured
// watch region, sorted by name.
func (s *Service) Providers(ctx context.Context) ([]domain.Option, error) {
	providers, err := s.client.WatchProviders(ctx, string(domain.MediaTypeMovie), s.watchRegion)
	if err != nil {
		return nil, fmt.Errorf("watch providers: %w", err)
	}
	options := make([]domain.Option, 0, len(providers))
	for _, provider := range providers {
		name := strings.TrimSpace(provider.ProviderName)
		if provider.ProviderID <= 0 || name == "" {
			continue
		}
		options = append(options, domain.Option{Value: strconv.Itoa(provider.ProviderID), Label: name})
	}
	SortOptions(options)
	return options, nil
}

// WithHorror appends the Horror entry to a genre list that lacks it. The TV
// vocabulary has no Horror genre, but the Horror-TV keyword filter still
// needs a dropdown value.
func WithHorror(options []domain.Option) []domain.Option {
	for _, option := range options {
		if option.Value == horrorGenreID {
			return options
		}
	}
	out := make([]domain.Option, 0, len(options)+1)
	out = append(out, options...)
	out = append(out, domain.Option{Value: horrorGenreID, Label: "Horror"})
	SortOptions(out)
	return out
}

// SortOptions orders options by label using English collation, then by value.
func SortOptions(options []domain.Option) {
	collator := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(options, func(i, j int) bool {
		if c := collator.CompareString(options[i].Label, options[j].Label); c != 0 {
			return c < 0
		}
		return options[i].Value < options[j].Value
	})
}

func genreOptions(genres []tmdb.Genre) []domain.Option {
	options := make([]domain.Option, 0, len(genres))
	for _, genre := range genres {
		name := strings.TrimSpace(genre.Name)
		if name == "" {
			continue
		}
		options = append(options, domain.Option{Value: strconv.Itoa(genre.ID), Label: name})
	}
	SortOptions(options)
	return options
}
