package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type MediaType string

const (
	MediaTypeAll   MediaType = "all"
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// FilterAll is the sentinel value of a categorical filter that is not applied.
const FilterAll = "all"

// Filter is the flat filter state carried in the page URL.
type Filter struct {
	Type       MediaType `json:"type"`
	Year       string    `json:"year"`
	Month      string    `json:"month"`
	Genre      string    `json:"genre"`
	Country    string    `json:"country"`
	Rating     string    `json:"rating"`
	Provider   string    `json:"provider"`
	TVCategory string    `json:"tvCategory"`
	Query      string    `json:"query"`
	Page       int       `json:"page"`
}

// DefaultFilter returns the filter used when the URL carries no values.
func DefaultFilter(now time.Time) Filter {
	return Filter{
		Type:       MediaTypeAll,
		Year:       strconv.Itoa(now.Year()),
		Month:      fmt.Sprintf("%02d", int(now.Month())),
		Genre:      FilterAll,
		Country:    FilterAll,
		Rating:     FilterAll,
		Provider:   FilterAll,
		TVCategory: FilterAll,
		Page:       1,
	}
}

// WithDefaults fills empty fields from DefaultFilter. Non-empty values are
// kept verbatim, including ones upstream will not understand.
func (f Filter) WithDefaults(now time.Time) Filter {
	defaults := DefaultFilter(now)
	if f.Type == "" {
		f.Type = defaults.Type
	}
	if f.Year == "" {
		f.Year = defaults.Year
	}
	if f.Month == "" {
		f.Month = defaults.Month
	}
	if f.Genre == "" {
		f.Genre = defaults.Genre
	}
	if f.Country == "" {
		f.Country = defaults.Country
	}
	if f.Rating == "" {
		f.Rating = defaults.Rating
	}
	if f.Provider == "" {
		f.Provider = defaults.Provider
	}
	if f.TVCategory == "" {
		f.TVCategory = defaults.TVCategory
	}
	if f.Page <= 0 {
		f.Page = defaults.Page
	}
	return f
}

func (f Filter) HasQuery() bool {
	return strings.TrimSpace(f.Query) != ""
}

// MediaTypes lists the media types a request must fetch. Any type other
// than movie or tv selects both.
func (f Filter) MediaTypes() []MediaType {
	switch f.Type {
	case MediaTypeMovie:
		return []MediaType{MediaTypeMovie}
	case MediaTypeTV:
		return []MediaType{MediaTypeTV}
	default:
		return []MediaType{MediaTypeMovie, MediaTypeTV}
	}
}

// IsSet reports whether a categorical filter value narrows the result set.
func IsSet(value string) bool {
	value = strings.TrimSpace(value)
	return value != "" && value != FilterAll
}

type MediaItem struct {
	ID            int       `json:"id"`
	MediaType     MediaType `json:"media_type"`
	Title         string    `json:"title,omitempty"`
	Name          string    `json:"name,omitempty"`
	ReleaseDate   string    `json:"release_date,omitempty"`
	FirstAirDate  string    `json:"first_air_date,omitempty"`
	Overview      string    `json:"overview"`
	VoteAverage   float64   `json:"vote_average"`
	PosterPath    string    `json:"poster_path,omitempty"`
	GenreIDs      []int     `json:"genre_ids,omitempty"`
	OriginCountry []string  `json:"origin_country,omitempty"`
	TrailerURL    string    `json:"trailerUrl,omitempty"`
	IMDbID        string    `json:"imdb_id,omitempty"`
}

// Key identifies an item across media types.
func (m MediaItem) Key() string {
	return string(m.MediaType) + "-" + strconv.Itoa(m.ID)
}

func (m MediaItem) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// Date is the release date for movies and the first air date for TV.
func (m MediaItem) Date() string {
	if m.MediaType == MediaTypeTV {
		return m.FirstAirDate
	}
	if m.ReleaseDate != "" {
		return m.ReleaseDate
	}
	return m.FirstAirDate
}

type PageResult struct {
	Items      []MediaItem `json:"items"`
	TotalPages int         `json:"totalPages"`
}

// Option is a dropdown entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
