package presenter

import (
	"strconv"
	"time"

	"mediabrowse/catalogservice/internal/catalog"
	"mediabrowse/catalogservice/internal/domain"
)

const firstYear = 2000

var typeOptions = []domain.Option{
	{Value: string(domain.MediaTypeAll), Label: "All"},
	{Value: string(domain.MediaTypeMovie), Label: "Movies"},
	{Value: string(domain.MediaTypeTV), Label: "TV Shows"},
}

var monthOptions = []domain.Option{
	{Value: "01", Label: "January"},
	{Value: "02", Label: "February"},
	{Value: "03", Label: "March"},
	{Value: "04", Label: "April"},
	{Value: "05", Label: "May"},
	{Value: "06", Label: "June"},
	{Value: "07", Label: "July"},
	{Value: "08", Label: "August"},
	{Value: "09", Label: "September"},
	{Value: "10", Label: "October"},
	{Value: "11", Label: "November"},
	{Value: "12", Label: "December"},
}

var countryOptions = []domain.Option{
	{Value: domain.FilterAll, Label: "All"},
	{Value: "KR", Label: "Korea"},
	{Value: "ES", Label: "Spain"},
	{Value: "MY", Label: "Malaysia"},
	{Value: "CN", Label: "China"},
	{Value: "TH", Label: "Thailand"},
	{Value: "CA", Label: "Canada"},
	{Value: "FR", Label: "France"},
	{Value: "DE", Label: "Germany"},
	{Value: "IT", Label: "Italy"},
	{Value: "TR", Label: "Turkey"},
	{Value: "US", Label: "United States"},
	{Value: "GB", Label: "United Kingdom"},
	{Value: "AU", Label: "Australia"},
	{Value: "IN", Label: "India"},
}

var tvCategoryOptions = []domain.Option{
	{Value: domain.FilterAll, Label: "All TV Types"},
	{Value: "scripted", Label: "Scripted"},
	{Value: "documentary", Label: "Documentary"},
	{Value: "news", Label: "News"},
	{Value: "miniseries", Label: "Miniseries"},
	{Value: "reality", Label: "Reality"},
	{Value: "talk_show", Label: "Talk Show"},
}

func ratingOptions() []domain.Option {
	options := []domain.Option{{Value: domain.FilterAll, Label: "All Ratings"}}
	for i := 0; i <= 10; i++ {
		options = append(options, domain.Option{Value: strconv.Itoa(i), Label: strconv.Itoa(i)})
	}
	return options
}

func yearOptions(now time.Time) []domain.Option {
	options := make([]domain.Option, 0, now.Year()-firstYear+1)
	for y := firstYear; y <= now.Year(); y++ {
		year := strconv.Itoa(y)
		options = append(options, domain.Option{Value: year, Label: year})
	}
	return options
}

// genreOptions prefixes the fetched genres with the "all" entry. TV lists
// gain a Horror entry.
func genreOptions(mediaType domain.MediaType, fetched []domain.Option) []domain.Option {
	if mediaType == domain.MediaTypeTV {
		fetched = catalog.WithHorror(fetched)
	}
	options := make([]domain.Option, 0, len(fetched)+1)
	options = append(options, domain.Option{Value: domain.FilterAll, Label: "All Genres"})
	return append(options, fetched...)
}

func providerOptions(fetched []domain.Option) []domain.Option {
	options := make([]domain.Option, 0, len(fetched)+1)
	options = append(options, domain.Option{Value: domain.FilterAll, Label: "All Streaming Services"})
	return append(options, fetched...)
}

// Select is one dropdown of the filter form.
type Select struct {
	Name     string
	Label    string
	Selected string
	Options  []domain.Option
}

// FilterForm is the filter panel: the current values and every dropdown.
type FilterForm struct {
	Query      string
	Selects    []Select
	ShowTV     bool
	TVCategory string
}

// NewFilterForm lays out the dropdowns in display order. genres and
// providers are the fetched vocabularies; either may be empty.
func NewFilterForm(f domain.Filter, genres, providers []domain.Option, now time.Time) FilterForm {
	selects := []Select{
		{Name: "type", Label: "Type", Selected: string(f.Type), Options: typeOptions},
		{Name: "year", Label: "Year", Selected: f.Year, Options: yearOptions(now)},
		{Name: "month", Label: "Month", Selected: f.Month, Options: monthOptions},
		{Name: "genre", Label: "Genre", Selected: f.Genre, Options: genreOptions(f.Type, genres)},
		{Name: "country", Label: "Country", Selected: f.Country, Options: countryOptions},
		{Name: "rating", Label: "Minimum Rating", Selected: f.Rating, Options: ratingOptions()},
		{Name: "provider", Label: "Streaming Service", Selected: f.Provider, Options: providerOptions(providers)},
	}
	showTV := f.Type == domain.MediaTypeTV
	if showTV {
		selects = append(selects, Select{Name: "tvCategory", Label: "TV Category", Selected: f.TVCategory, Options: tvCategoryOptions})
	}
	return FilterForm{Query: f.Query, Selects: selects, ShowTV: showTV, TVCategory: f.TVCategory}
}
