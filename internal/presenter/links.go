package presenter

import (
	"net/url"
	"strconv"

	"mediabrowse/catalogservice/internal/domain"
)

// FilterValues encodes every filter field as URL query parameters.
func FilterValues(f domain.Filter) url.Values {
	values := url.Values{}
	values.Set("type", string(f.Type))
	values.Set("year", f.Year)
	values.Set("month", f.Month)
	values.Set("genre", f.Genre)
	values.Set("country", f.Country)
	values.Set("rating", f.Rating)
	values.Set("provider", f.Provider)
	values.Set("tvCategory", f.TVCategory)
	values.Set("query", f.Query)
	values.Set("page", strconv.Itoa(f.Page))
	return values
}

// PageURL is the browse URL for f with only the page replaced.
func PageURL(f domain.Filter, page int) string {
	f.Page = page
	return "/?" + FilterValues(f).Encode()
}

type Pagination struct {
	Current     int
	Total       int
	PrevURL     string
	NextURL     string
	HasPrevious bool
	HasNext     bool
}

// NewPagination builds previous and next links around the filter's page.
// A link at either bound is left empty and flagged disabled.
func NewPagination(f domain.Filter, totalPages int) Pagination {
	current := f.Page
	if current < 1 {
		current = 1
	}
	p := Pagination{
		Current:     current,
		Total:       totalPages,
		HasPrevious: current > 1,
		HasNext:     current < totalPages,
	}
	if p.HasPrevious {
		p.PrevURL = PageURL(f, current-1)
	}
	if p.HasNext {
		p.NextURL = PageURL(f, current+1)
	}
	return p
}
