// Package run orchestrates site builds: loading content, rendering post and
// list pages through the template renderer, and syncing the in-memory output
// tree to disk.
package run

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/spf13/afero"

	"github.com/foliogen/folio/builder/cache"
	"github.com/foliogen/folio/builder/config"
	"github.com/foliogen/folio/builder/content"
	"github.com/foliogen/folio/builder/metrics"
	mdparser "github.com/foliogen/folio/builder/parser"
	"github.com/foliogen/folio/builder/renderer"
	"github.com/foliogen/folio/builder/services"
	"github.com/foliogen/folio/builder/utils"
	"github.com/foliogen/folio/builder/wordcount"
)

// Builder maintains the state for site builds. Safe for a single build at a
// time; the dev server serializes rebuilds through its watcher.
type Builder struct {
	cfg     *config.Config
	store   *content.Store
	context services.ContextService
	meta    services.MetadataService
	cache   *cache.Manager
	rnd     *renderer.Renderer
	metrics *metrics.BuildMetrics
	logger  *slog.Logger

	mu       sync.Mutex
	SourceFs afero.Fs
	DestFs   afero.Fs
}

// NewBuilder initializes a builder: opens the build cache, loads templates,
// and wires the content store to the post services.
func NewBuilder(cfg *config.Config, logger *slog.Logger) (*Builder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	utils.InitMinifier()

	manager, err := cache.Open(cfg.CacheDir, cfg.IsDev)
	if err != nil {
		return nil, fmt.Errorf("open build cache: %w", err)
	}

	// Rendered pages embed absolute links and template output, so a changed
	// BaseURL or template tree invalidates every cached page.
	tmplHash, err := utils.HashDirsFast([]string{cfg.TemplateDir})
	if err != nil {
		tmplHash = ""
	}
	cacheID := cache.HashString(cfg.BaseURL + "|" + strconv.Itoa(cache.SchemaVersion) + "|" + tmplHash)
	needsRebuild, err := manager.VerifyCacheID(cacheID)
	if err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("verify cache id: %w", err)
	}
	if needsRebuild {
		fmt.Println("🔄 Site configuration or templates changed. Forcing full rebuild.")
		cfg.ForceRebuild = true
		if err := manager.SetCacheID(cacheID); err != nil {
			_ = manager.Close()
			return nil, fmt.Errorf("store cache id: %w", err)
		}
	}

	sourceFs := afero.NewOsFs()
	destFs := afero.NewMemMapFs()

	m := metrics.NewBuildMetrics()
	store := content.NewStore(cfg, sourceFs, mdparser.New(cfg.BaseURL), wordcount.New(cfg.Language), logger, m)
	if cfg.IsDev {
		store.UseWeakRenderCache()
	}

	rnd, err := renderer.New(cfg.Minify, destFs, cfg.TemplateDir, logger)
	if err != nil {
		_ = manager.Close()
		return nil, err
	}

	urlFor := func(postID string) string { return pageURL(cfg.BaseURL, postID) }

	return &Builder{
		cfg:      cfg,
		store:    store,
		context:  services.NewContextService(cfg, store, urlFor, logger),
		meta:     services.NewMetadataService(store, logger),
		cache:    manager,
		rnd:      rnd,
		metrics:  m,
		logger:   logger,
		SourceFs: sourceFs,
		DestFs:   destFs,
	}, nil
}

// Metrics exposes the counters of the most recent build.
func (b *Builder) Metrics() *metrics.BuildMetrics {
	return b.metrics
}

// Cache exposes the build cache manager for CLI tooling.
func (b *Builder) Cache() *cache.Manager {
	return b.cache
}

// Close releases the build cache. Call once when the builder is done.
func (b *Builder) Close() error {
	return b.cache.Close()
}

// pageURL returns the public URL of a post page.
func pageURL(baseURL, id string) string {
	return baseURL + "/blog/" + id + ".html"
}

// outputRelPath returns the path of a post page relative to the output dir.
func outputRelPath(id string) string {
	return filepath.Join("blog", filepath.FromSlash(id)+".html")
}

func (b *Builder) outPath(rel string) string {
	return filepath.Join(b.cfg.OutputDir, rel)
}
