// Package renderer executes the site's HTML templates into the build
// filesystem, minifying on the way out when enabled.
package renderer

import (
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// Renderer renders PageData through the site templates into DestFs. Layout
// is required; the index and 404 templates fall back to layout when the
// site does not provide them.
type Renderer struct {
	Layout   *template.Template
	Index    *template.Template
	NotFound *template.Template
	DestFs   afero.Fs
	Compress bool

	templateDir string
	cache       *templateCache
	logger      *slog.Logger

	assetsMu sync.RWMutex
	assets   map[string]string

	renderedMu sync.Mutex
	rendered   map[string]bool
}

func New(compress bool, destFs afero.Fs, templateDir string, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		DestFs:      destFs,
		Compress:    compress,
		templateDir: templateDir,
		cache:       newTemplateCache(templateDir),
		logger:      logger,
		rendered:    make(map[string]bool),
	}
	if err := r.loadTemplates(); err != nil {
		return nil, err
	}
	return r, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"lower":     strings.ToLower,
		"hasPrefix": strings.HasPrefix,
		"now":       time.Now,
		"formatDate": func(t time.Time) string {
			return t.Format("January 2, 2006")
		},
	}
}

func (r *Renderer) loadTemplates() error {
	funcMap := templateFuncs()

	layoutPath := filepath.Join(r.templateDir, "layout.html")
	layout, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath)
	if err != nil {
		return fmt.Errorf("load layout template: %w", err)
	}
	r.Layout = layout
	r.cache.record("layout.html")

	index, err := template.New("index.html").Funcs(funcMap).ParseFiles(filepath.Join(r.templateDir, "index.html"))
	if err != nil {
		r.logger.Warn("Index template not found, layout.html will serve the index", "error", err)
		index = nil
	} else {
		r.cache.record("index.html")
	}
	r.Index = index

	notFound, err := template.New("404.html").Funcs(funcMap).ParseFiles(filepath.Join(r.templateDir, "404.html"))
	if err != nil {
		r.logger.Warn("404 template not found, layout.html will serve the 404 page", "error", err)
		notFound = nil
	} else {
		r.cache.record("404.html")
	}
	r.NotFound = notFound

	return nil
}

// ReloadIfChanged re-parses the templates when any of them changed on disk
// since the last load. The dev server calls this before each rebuild.
func (r *Renderer) ReloadIfChanged() error {
	if !r.cache.changed() {
		return nil
	}
	r.logger.Info("Templates changed, reloading")
	return r.loadTemplates()
}

// SetAssets installs the fingerprinted asset name map injected into every
// rendered page.
func (r *Renderer) SetAssets(assets map[string]string) {
	r.assetsMu.Lock()
	r.assets = assets
	r.assetsMu.Unlock()
}

func (r *Renderer) GetAssets() map[string]string {
	r.assetsMu.RLock()
	defer r.assetsMu.RUnlock()
	return r.assets
}

// RegisterFile records an output path written during this build so the VFS
// sync only touches files that actually changed.
func (r *Renderer) RegisterFile(path string) {
	r.renderedMu.Lock()
	r.rendered[filepath.ToSlash(path)] = true
	r.renderedMu.Unlock()
}

func (r *Renderer) GetRenderedFiles() map[string]bool {
	r.renderedMu.Lock()
	defer r.renderedMu.Unlock()
	out := make(map[string]bool, len(r.rendered))
	for k := range r.rendered {
		out[k] = true
	}
	return out
}

func (r *Renderer) ClearRenderedFiles() {
	r.renderedMu.Lock()
	r.rendered = make(map[string]bool)
	r.renderedMu.Unlock()
}
