// Package metrics tracks build timing and counters.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

// BuildMetrics collects counters during a build. Counter methods are safe to
// call from worker goroutines.
type BuildMetrics struct {
	StartTime time.Time
	EndTime   time.Time

	postsProcessed atomic.Int64
	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
	filesWritten   atomic.Int64
	filesSkipped   atomic.Int64
	errors         atomic.Int64

	// Incremental build info, set once before the workers start.
	IsIncremental bool
	ChangedFiles  []string
}

// NewBuildMetrics creates a metrics instance with the clock started.
func NewBuildMetrics() *BuildMetrics {
	return &BuildMetrics{StartTime: time.Now()}
}

// RecordEnd marks the end of the build.
func (m *BuildMetrics) RecordEnd() {
	m.EndTime = time.Now()
}

// Reset zeroes the counters and restarts the clock. The dev server reuses
// one metrics instance across rebuilds.
func (m *BuildMetrics) Reset() {
	m.StartTime = time.Now()
	m.EndTime = time.Time{}
	m.postsProcessed.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.filesWritten.Store(0)
	m.filesSkipped.Store(0)
	m.errors.Store(0)
	m.IsIncremental = false
	m.ChangedFiles = nil
}

// TotalDuration returns the build duration so far, or the final duration
// after RecordEnd.
func (m *BuildMetrics) TotalDuration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

func (m *BuildMetrics) IncrementPostsProcessed() { m.postsProcessed.Add(1) }
func (m *BuildMetrics) IncrementCacheHit()       { m.cacheHits.Add(1) }
func (m *BuildMetrics) IncrementCacheMiss()      { m.cacheMisses.Add(1) }
func (m *BuildMetrics) IncrementFilesWritten()   { m.filesWritten.Add(1) }
func (m *BuildMetrics) IncrementFilesSkipped()   { m.filesSkipped.Add(1) }
func (m *BuildMetrics) IncrementErrors()         { m.errors.Add(1) }

func (m *BuildMetrics) PostsProcessed() int { return int(m.postsProcessed.Load()) }
func (m *BuildMetrics) CacheHits() int      { return int(m.cacheHits.Load()) }
func (m *BuildMetrics) CacheMisses() int    { return int(m.cacheMisses.Load()) }
func (m *BuildMetrics) FilesWritten() int   { return int(m.filesWritten.Load()) }
func (m *BuildMetrics) FilesSkipped() int   { return int(m.filesSkipped.Load()) }
func (m *BuildMetrics) Errors() int         { return int(m.errors.Load()) }

// CacheHitRate returns the render cache hit percentage.
func (m *BuildMetrics) CacheHitRate() float64 {
	hits := m.cacheHits.Load()
	total := hits + m.cacheMisses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// String returns a single-line build summary.
func (m *BuildMetrics) String() string {
	s := fmt.Sprintf("📊 Built %d posts in %v (cache: %d/%d hits, %.0f%%)",
		m.PostsProcessed(),
		m.TotalDuration().Round(time.Millisecond),
		m.CacheHits(),
		m.CacheHits()+m.CacheMisses(),
		m.CacheHitRate(),
	)
	if n := m.FilesSkipped(); n > 0 {
		s += fmt.Sprintf(", %d unchanged", n)
	}
	if n := m.Errors(); n > 0 {
		s += fmt.Sprintf(", ⚠️ %d failed", n)
	}
	return s
}
