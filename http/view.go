package http

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
)

// ViewEngine renders template files from a directory.
type ViewEngine struct {
	dir string
	ext string
}

// NewViewEngine creates a ViewEngine. dir is the templates directory
// (e.g. "./views"), ext the file extension (e.g. ".html").
func NewViewEngine(dir, ext string) *ViewEngine {
	return &ViewEngine{dir: dir, ext: ext}
}

// Render writes the named template with data, returning parse or execute
// errors instead of writing a fallback body.
func (ve *ViewEngine) Render(w http.ResponseWriter, name string, data any) error {
	tmpl, err := template.ParseFiles(filepath.Join(ve.dir, name+ve.ext))
	if err != nil {
		return fmt.Errorf("view %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.Execute(w, data)
}

// View renders a template, writing a 500 on failure.
func (ve *ViewEngine) View(w http.ResponseWriter, name string, data any) {
	if err := ve.Render(w, name, data); err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
	}
}

// ViewWithLayout renders a template inside a base layout.
func (ve *ViewEngine) ViewWithLayout(w http.ResponseWriter, layout, name string, data any) {
	layoutPath := filepath.Join(ve.dir, layout+ve.ext)
	viewPath := filepath.Join(ve.dir, name+ve.ext)
	tmpl, err := template.ParseFiles(layoutPath, viewPath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, filepath.Base(layoutPath), data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
	}
}
