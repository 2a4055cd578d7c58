// Package render plugs html/template into echo. Each page template is
// parsed together with the shared layout into its own template set, so
// pages cannot accidentally redefine each other's blocks.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates
var files embed.FS

var funcMap = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "—"
		}
		return t.Format("2006-01-02 15:04")
	},
	"datep": func(t *time.Time) string {
		if t == nil {
			return "Never"
		}
		return t.Format("2006-01-02 15:04")
	},
}

// Renderer satisfies echo.Renderer.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page under templates/pages against the layout.
func New() (*Renderer, error) {
	pages, err := fs.Glob(files, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	sets := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := path.Base(page)
		t, err := template.New("layout.html").Funcs(funcMap).ParseFS(files, "templates/layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		sets[name] = t
	}
	return &Renderer{templates: sets}, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("render: unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

// StaticFS serves the console's embedded assets.
//go:embed static
var StaticFS embed.FS
