package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/lueurxax/fakenews-web/internal/ui"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template names.
const (
	tmplIndex     = "index.html"
	tmplFactCheck = "factcheck.html"
	tmplError     = "error.html"
)

const siteTitle = "Fake News Detector"

// Template function helpers.
var templateFuncs = template.FuncMap{
	"siteTitle": func() string { return siteTitle },
}

// Renderer handles HTML template rendering.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").
		Funcs(templateFuncs).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

// ErrorData contains data for rendering error pages.
type ErrorData struct {
	Code    int
	Title   string
	Message string
}

// RenderIndex renders the submission page, with the result when present.
func (r *Renderer) RenderIndex(w io.Writer, page *ui.Page) error {
	return r.execute(w, tmplIndex, page)
}

// RenderFactCheck renders the fact-check detail page.
func (r *Renderer) RenderFactCheck(w io.Writer, page *ui.DetailPage) error {
	return r.execute(w, tmplFactCheck, page)
}

// RenderError renders an error page.
func (r *Renderer) RenderError(w io.Writer, data *ErrorData) error {
	return r.execute(w, tmplError, data)
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("execute %s template: %w", name, err)
	}

	return nil
}

// StaticFS returns the embedded static assets rooted at static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	return sub
}
