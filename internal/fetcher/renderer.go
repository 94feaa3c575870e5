package fetcher

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// HomeTemplate is the page rendered for the site root.
const HomeTemplate = "index.html"

//go:embed templates/*.html
var defaultTemplates embed.FS

// PageData is passed to every rendered template.
type PageData struct {
	Path  string
	Title string
}

// Renderer renders site templates in-process, without a network round trip.
// A failed template load is retried on the next call.
type Renderer struct {
	dir   string
	mu    sync.Mutex
	tmpl  *template.Template
	title string
}

// NewRenderer loads templates from dir, or from the embedded set when dir is empty.
func NewRenderer(dir, title string) *Renderer {
	return &Renderer{dir: dir, title: title}
}

func (r *Renderer) load() (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tmpl != nil {
		return r.tmpl, nil
	}

	var (
		tmpl *template.Template
		err  error
	)
	if r.dir == "" {
		tmpl, err = template.ParseFS(defaultTemplates, "templates/*.html")
	} else if _, statErr := os.Stat(r.dir); statErr != nil {
		err = fmt.Errorf("template directory: %w", statErr)
	} else {
		tmpl, err = template.ParseGlob(filepath.Join(r.dir, "*.html"))
	}
	if err != nil {
		return nil, err
	}
	r.tmpl = tmpl
	return tmpl, nil
}

// Check loads the templates now so a bad directory surfaces at startup.
func (r *Renderer) Check() error {
	if _, err := r.load(); err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	return nil
}

// Execute writes the named template to w.
func (r *Renderer) Execute(w io.Writer, name, path string) error {
	tmpl, err := r.load()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	return tmpl.ExecuteTemplate(w, name, PageData{Path: path, Title: r.title})
}

// Render returns the markup of the named template as served at "/".
func (r *Renderer) Render(name string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Execute(&buf, name, "/"); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
