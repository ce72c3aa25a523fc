package presenter

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"

	"mediabrowse/catalogservice/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// PageView is everything the browse page template needs.
type PageView struct {
	Filter     domain.Filter
	Form       FilterForm
	Cards      []Card
	Pagination Pagination
	Error      string
}

// NewPageView assembles the browse page for a resolved result.
func NewPageView(f domain.Filter, result domain.PageResult, genres, providers []domain.Option, now time.Time) PageView {
	return PageView{
		Filter:     f,
		Form:       NewFilterForm(f, genres, providers, now),
		Cards:      NewCards(result.Items),
		Pagination: NewPagination(f, result.TotalPages),
	}
}

// NewErrorView is the browse page with the filter panel and a failure notice
// in place of results.
func NewErrorView(f domain.Filter, genres, providers []domain.Option, now time.Time, message string) PageView {
	return PageView{
		Filter: f,
		Form:   NewFilterForm(f, genres, providers, now),
		Error:  message,
	}
}

type Renderer struct {
	page *template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"selected": func(current, value string) bool { return current == value },
	}
	page, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/browse.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{page: page}, nil
}

func (r *Renderer) RenderPage(w io.Writer, view PageView) error {
	if err := r.page.ExecuteTemplate(w, "layout", view); err != nil {
		return fmt.Errorf("render browse page: %w", err)
	}
	return nil
}

// StaticHandler serves the embedded assets under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("presenter: static assets missing: " + err.Error())
	}
	files := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}
