package presenter

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"mediabrowse/catalogservice/internal/catalog"
	"mediabrowse/catalogservice/internal/domain"
)

const (
	notAvailable     = "N/A"
	posterBaseURL    = "https://image.tmdb.org/t/p/original"
	PlaceholderPath  = "/static/placeholder.svg"
	imdbTitleURL     = "https://www.imdb.com/title/"
	imdbFindURL      = "https://www.imdb.com/find?q="
	watchMovieURL    = "https://popcornmovies.to/movie/"
	watchEpisodeURL  = "https://popcornmovies.to/episode/"
	humanDateLayout  = "January 2, 2006"
	upstreamDateForm = "2006-01-02"
)

var genreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// Card is the display model of one result.
type Card struct {
	Key         string
	MediaType   domain.MediaType
	Title       string
	Overview    string
	ReleaseDate string
	Year        string
	HumanDate   string
	Rating      string
	Genres      string
	Country     string
	PosterURL   string
	IMDbURL     string
	WatchURL    string
	Slug        string
	TrailerURL  string
}

func (c Card) IsTV() bool {
	return c.MediaType == domain.MediaTypeTV
}

func NewCard(item domain.MediaItem) Card {
	title := item.DisplayTitle()
	if title == "" {
		title = "Untitled"
	}
	releaseDate := item.ReleaseDate
	if releaseDate == "" {
		releaseDate = item.FirstAirDate
	}
	if releaseDate == "" {
		releaseDate = notAvailable
	}

	slug := Slugify(title)
	card := Card{
		Key:         item.Key(),
		MediaType:   item.MediaType,
		Title:       title,
		Overview:    item.Overview,
		ReleaseDate: releaseDate,
		Year:        displayYear(releaseDate),
		HumanDate:   humanDate(releaseDate),
		Rating:      ratingText(item.VoteAverage),
		Genres:      genreText(item.GenreIDs),
		Country:     countryText(item),
		PosterURL:   PlaceholderPath,
		IMDbURL:     imdbFindURL + catalog.EncodeURIComponent(title),
		Slug:        slug,
		TrailerURL:  item.TrailerURL,
	}
	if item.PosterPath != "" {
		card.PosterURL = posterBaseURL + item.PosterPath
	}
	if item.IMDbID != "" {
		card.IMDbURL = imdbTitleURL + item.IMDbID
	}
	if item.MediaType != domain.MediaTypeTV {
		card.WatchURL = watchMovieURL + slug
	}
	if card.TrailerURL == "" {
		card.TrailerURL = catalog.FallbackTrailerURL(item)
	}
	return card
}

func NewCards(items []domain.MediaItem) []Card {
	cards := make([]Card, 0, len(items))
	for _, item := range items {
		cards = append(cards, NewCard(item))
	}
	return cards
}

// Slugify lowercases text and replaces each whitespace run with "-".
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inSpace := false
	for _, r := range strings.ToLower(text) {
		if isSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// EpisodeURL links to one episode of a show on the watch site.
func EpisodeURL(slug, season, episode string) string {
	return watchEpisodeURL + slug + "/" + season + "-" + episode
}

func displayYear(date string) string {
	if date == notAvailable {
		return notAvailable
	}
	year, _, _ := strings.Cut(date, "-")
	return year
}

func humanDate(date string) string {
	if date == notAvailable {
		return notAvailable
	}
	parsed, err := time.Parse(upstreamDateForm, date)
	if err != nil {
		return "Invalid Date"
	}
	return parsed.Format(humanDateLayout)
}

func ratingText(vote float64) string {
	if vote <= 0 {
		return "No ratings yet"
	}
	return strconv.FormatFloat(vote, 'f', -1, 64)
}

func genreText(ids []int) string {
	if len(ids) == 0 {
		return notAvailable
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := genreNames[id]; ok {
			names = append(names, name)
			continue
		}
		names = append(names, strconv.Itoa(id))
	}
	return strings.Join(names, ", ")
}

func countryText(item domain.MediaItem) string {
	if item.MediaType != domain.MediaTypeTV || len(item.OriginCountry) == 0 {
		return notAvailable
	}
	return strings.Join(item.OriginCountry, ", ")
}
