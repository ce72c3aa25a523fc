package catalog

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediabrowse/catalogservice/internal/domain"
)

const (
	// horrorGenreID is the movie vocabulary's Horror id. The TV genre list has
	// no Horror entry, so TV requests filter on horrorKeywordID instead.
	horrorGenreID   = "27"
	horrorKeywordID = "315058"

	defaultWatchRegion = "US"
)

var tvCategoryCodes = map[string]string{
	"documentary": "0",
	"news":        "1",
	"miniseries":  "2",
	"reality":     "3",
	"scripted":    "4",
	"talk_show":   "5",
	"video":       "6",
}

// MonthRange returns the first and last calendar day of year/month as
// YYYY-MM-DD strings. The last day is day 0 of the following month. Values
// that do not parse are passed through and the end day falls back to 31.
func MonthRange(year, month string) (string, string) {
	year = strings.TrimSpace(year)
	month = strings.TrimSpace(month)
	start := year + "-" + month + "-01"

	endDay := 31
	y, yErr := strconv.Atoi(year)
	m, mErr := strconv.Atoi(month)
	if yErr == nil && mErr == nil {
		endDay = time.Date(y, time.Month(m+1), 0, 0, 0, 0, 0, time.UTC).Day()
	}
	return start, year + "-" + month + "-" + strconv.Itoa(endDay)
}

// HorrorKeywordApplies reports whether the filter takes the TV Horror
// branch: genre is swapped for a keyword and the TV category is dropped.
func HorrorKeywordApplies(f domain.Filter) bool {
	return f.Type == domain.MediaTypeTV && strings.TrimSpace(f.Genre) == horrorGenreID
}

// filterParams maps the filter onto upstream query parameters for one media
// type. It does not set page, sort or query.
func filterParams(f domain.Filter, mediaType domain.MediaType, watchRegion string) url.Values {
	params := url.Values{}
	start, end := MonthRange(f.Year, f.Month)
	if mediaType == domain.MediaTypeMovie {
		params.Set("primary_release_date.gte", start)
		params.Set("primary_release_date.lte", end)
	} else {
		params.Set("first_air_date.gte", start)
		params.Set("first_air_date.lte", end)
	}

	if domain.IsSet(f.Country) {
		if mediaType == domain.MediaTypeMovie {
			params.Set("region", f.Country)
		} else {
			params.Set("with_origin_country", f.Country)
		}
	}

	horror := HorrorKeywordApplies(f)
	switch {
	case horror:
		params.Set("with_keywords", horrorKeywordID)
	case domain.IsSet(f.Genre):
		params.Set("with_genres", f.Genre)
	}

	if domain.IsSet(f.Rating) {
		params.Set("vote_average.gte", f.Rating)
	}
	if domain.IsSet(f.Provider) {
		if watchRegion == "" {
			watchRegion = defaultWatchRegion
		}
		params.Set("with_watch_providers", f.Provider)
		params.Set("watch_region", watchRegion)
	}
	if mediaType == domain.MediaTypeTV && !horror && domain.IsSet(f.TVCategory) {
		if code, ok := tvCategoryCodes[f.TVCategory]; ok {
			params.Set("with_type", code)
		}
	}
	return params
}

func discoverParams(f domain.Filter, mediaType domain.MediaType, upstreamPage int, watchRegion string) url.Values {
	params := filterParams(f, mediaType, watchRegion)
	params.Set("sort_by", "popularity.desc")
	params.Set("page", strconv.Itoa(upstreamPage))
	return params
}

func searchParams(f domain.Filter, mediaType domain.MediaType, upstreamPage int, watchRegion string) url.Values {
	params := filterParams(f, mediaType, watchRegion)
	params.Set("query", strings.TrimSpace(f.Query))
	params.Set("page", strconv.Itoa(upstreamPage))
	return params
}
