package renderer

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// templateCache remembers the mtimes of the loaded templates so dev-server
// rebuilds only re-parse when something actually changed. Stat calls are
// rate limited by checkTTL.
type templateCache struct {
	dir      string
	mu       sync.Mutex
	mtimes   map[string]time.Time
	last     time.Time
	checkTTL time.Duration
}

var templateNames = []string{"layout.html", "index.html", "404.html"}

func newTemplateCache(dir string) *templateCache {
	return &templateCache{
		dir:      dir,
		mtimes:   make(map[string]time.Time),
		checkTTL: 2 * time.Second,
	}
}

func (tc *templateCache) record(name string) {
	info, err := os.Stat(filepath.Join(tc.dir, name))
	if err != nil {
		return
	}
	tc.mu.Lock()
	tc.mtimes[name] = info.ModTime()
	tc.mu.Unlock()
}

func (tc *templateCache) changed() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	now := time.Now()
	if now.Sub(tc.last) < tc.checkTTL {
		return false
	}
	tc.last = now

	for _, name := range templateNames {
		info, err := os.Stat(filepath.Join(tc.dir, name))
		if err != nil {
			continue
		}
		cached, ok := tc.mtimes[name]
		if !ok || info.ModTime().After(cached) {
			return true
		}
	}
	return false
}
