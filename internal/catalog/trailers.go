package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"mediabrowse/catalogservice/internal/domain"
	"mediabrowse/catalogservice/internal/metrics"
	"mediabrowse/catalogservice/internal/providers/tmdb"
)

const (
	youtubeWatchURL  = "https://www.youtube.com/watch?v="
	youtubeSearchURL = "https://www.youtube.com/results?search_query="
)

// attachTrailers sets TrailerURL on a copy of every item. Lookups run
// concurrently and never fail the page.
func (s *Service) attachTrailers(ctx context.Context, items []domain.MediaItem) []domain.MediaItem {
	out := make([]domain.MediaItem, len(items))
	copy(out, items)

	var g errgroup.Group
	g.SetLimit(s.trailerConcurrency)
	for i := range out {
		g.Go(func() error {
			out[i].TrailerURL = s.trailerURL(ctx, out[i])
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Service) trailerURL(ctx context.Context, item domain.MediaItem) (link string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			metrics.TrailerLookupsTotal.WithLabelValues("error").Inc()
			s.logger.Error("trailer lookup panicked",
				slog.String("item", item.Key()),
				slog.String("error", fmt.Sprint(recovered)),
			)
			link = FallbackTrailerURL(item)
		}
	}()

	videos, err := s.client.Videos(ctx, string(item.MediaType), item.ID)
	if err != nil {
		metrics.TrailerLookupsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("trailer lookup failed",
			slog.String("item", item.Key()),
			slog.String("error", err.Error()),
		)
		return FallbackTrailerURL(item)
	}
	if key, ok := pickTrailer(videos); ok {
		metrics.TrailerLookupsTotal.WithLabelValues("found").Inc()
		return youtubeWatchURL + url.QueryEscape(key)
	}
	metrics.TrailerLookupsTotal.WithLabelValues("fallback").Inc()
	return FallbackTrailerURL(item)
}

// pickTrailer returns the key of the first YouTube video typed "Trailer".
func pickTrailer(videos []tmdb.Video) (string, bool) {
	for _, video := range videos {
		if video.Type == "Trailer" && video.Site == "YouTube" && video.Key != "" {
			return video.Key, true
		}
	}
	return "", false
}

// FallbackTrailerURL is a YouTube search for "<title> trailer".
func FallbackTrailerURL(item domain.MediaItem) string {
	title := item.DisplayTitle()
	if title == "" {
		title = "trailer"
	}
	return youtubeSearchURL + EncodeURIComponent(title+" trailer")
}

// EncodeURIComponent percent-encodes s for use inside a URL component,
// spaces included as %20.
func EncodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
