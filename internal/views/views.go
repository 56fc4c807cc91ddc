// Package views renders the server-side HTML pages. Handlers hand over a
// plain Page value; everything else about presentation lives in the
// embedded templates.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"restaurant-web/internal/session"
)

//go:embed templates
var files embed.FS

// Page is the data contract between every handler and its template.
type Page struct {
	Title    string
	Flashes  []session.Flash
	LoggedIn bool
	IsAdmin  bool
	Data     any
}

type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	const op = "views.New"

	entries, err := fs.ReadDir(files, "templates/pages")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		tmpl, err := template.ParseFS(files, "templates/layout.html", "templates/pages/"+name)
		if err != nil {
			return nil, fmt.Errorf("%s: parse %s: %w", op, name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

func (v *Renderer) Render(w http.ResponseWriter, name string, page Page) {
	tmpl, ok := v.pages[name]
	if !ok {
		http.Error(w, "template not found: "+name, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", page); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}
