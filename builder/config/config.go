// Package config loads the site configuration from folio.yaml with
// command-line overrides.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/foliogen/folio/builder/utils"
)

// Owner identifies the site owner shown in page metadata.
type Owner struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	URL   string `yaml:"url"`
}

// Config is the full site configuration. Values come from folio.yaml
// (falling back to config.yaml), then CLI flags, then validation clamps.
type Config struct {
	// Site identity
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"baseURL"`
	Language    string `yaml:"language"`
	Owner       Owner  `yaml:"owner"`

	// Layout
	ContentDir  string `yaml:"contentDir"`
	OutputDir   string `yaml:"outputDir"`
	CacheDir    string `yaml:"cacheDir"`
	TemplateDir string `yaml:"templateDir"`
	StaticDir   string `yaml:"staticDir"`

	// Presentation
	TOCMaxDepth  int  `yaml:"tocMaxDepth"`
	HeaderOffset int  `yaml:"headerOffset"`
	PostsPerPage int  `yaml:"postsPerPage"`
	Minify       bool `yaml:"minify"`

	// Build
	IncludeDrafts bool `yaml:"includeDrafts"`
	Workers       int  `yaml:"workers"`
	Port          int  `yaml:"port"`

	ShutdownTimeout  time.Duration `yaml:"shutdownTimeout"`
	DebounceDuration time.Duration `yaml:"debounceDuration"`

	// Set by the CLI, never read from the file.
	ForceRebuild bool  `yaml:"-"`
	BuildVersion int64 `yaml:"-"`
	IsDev        bool  `yaml:"-"`
}

func defaults() *Config {
	return &Config{
		Title:            "Folio",
		Language:         "en",
		ContentDir:       "content",
		OutputDir:        "public",
		CacheDir:         ".folio-cache",
		TemplateDir:      "templates",
		StaticDir:        "static",
		TOCMaxDepth:      3,
		HeaderOffset:     80,
		PostsPerPage:     10,
		Minify:           true,
		Port:             8080,
		ShutdownTimeout:  5 * time.Second,
		DebounceDuration: 300 * time.Millisecond,
		BuildVersion:     time.Now().Unix(),
	}
}

// Load builds the configuration: folio.yaml (or config.yaml), then the
// given CLI args, then validation. Unknown flags are an error for the
// flag set but Load still returns usable defaults.
func Load(args []string) *Config {
	cfg := defaults()

	for _, name := range []string{"folio.yaml", "config.yaml"} {
		data, err := os.ReadFile(name)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err == nil {
			break
		}
		// Parse error: fall through with defaults rather than aborting.
		cfg = defaults()
		break
	}

	fs := flag.NewFlagSet("folio", flag.ContinueOnError)
	baseURL := fs.String("baseurl", cfg.BaseURL, "override the site base URL")
	drafts := fs.Bool("drafts", cfg.IncludeDrafts, "include draft posts")
	minify := fs.Bool("minify", cfg.Minify, "minify HTML/CSS/JS output")
	workers := fs.Int("workers", cfg.Workers, "worker count, 0 for auto")
	force := fs.Bool("force", false, "ignore the build cache")
	port := fs.Int("port", cfg.Port, "dev server port")
	_ = fs.Parse(args)

	cfg.BaseURL = *baseURL
	cfg.IncludeDrafts = *drafts
	cfg.Minify = *minify
	cfg.Workers = *workers
	cfg.ForceRebuild = *force
	cfg.Port = *port

	cfg.validate()
	cfg.resolvePaths()
	return cfg
}

// SetDevMode flips the dev-server fields: drafts visible, no minification.
func SetDevMode(cfg *Config, dev bool) {
	cfg.IsDev = dev
	if dev {
		cfg.IncludeDrafts = true
		cfg.Minify = false
	}
}

func (c *Config) validate() {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")

	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.Workers > utils.MaxWorkers {
		c.Workers = utils.MaxWorkers
	}
	if c.TOCMaxDepth > 6 {
		c.TOCMaxDepth = 6
	}
	if c.HeaderOffset < 0 {
		c.HeaderOffset = 0
	}
	if c.HeaderOffset > 500 {
		c.HeaderOffset = 500
	}
	if c.PostsPerPage < 1 {
		c.PostsPerPage = 1
	}
	if c.PostsPerPage > 100 {
		c.PostsPerPage = 100
	}
	if c.Port < 1 || c.Port > 65535 {
		c.Port = 8080
	}
	if c.ShutdownTimeout < time.Second {
		c.ShutdownTimeout = time.Second
	}
	if c.DebounceDuration < 10*time.Millisecond {
		c.DebounceDuration = 10 * time.Millisecond
	}
	if c.DebounceDuration > 5*time.Second {
		c.DebounceDuration = 5 * time.Second
	}
}

func (c *Config) resolvePaths() {
	for _, dir := range []*string{
		&c.ContentDir, &c.OutputDir, &c.CacheDir, &c.TemplateDir, &c.StaticDir,
	} {
		if abs, err := filepath.Abs(*dir); err == nil {
			*dir = abs
		}
	}
}
