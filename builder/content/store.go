package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	gParser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/foliogen/folio/builder/cache"
	"github.com/foliogen/folio/builder/config"
	"github.com/foliogen/folio/builder/metrics"
	"github.com/foliogen/folio/builder/models"
	mdParser "github.com/foliogen/folio/builder/parser"
	"github.com/foliogen/folio/builder/utils"
	"github.com/foliogen/folio/builder/wordcount"
)

// ErrNotFound is returned when a post or author id resolves to nothing.
var ErrNotFound = errors.New("content: not found")

// Subdirectories of cfg.ContentDir.
const (
	BlogSubdir    = "blog"
	AuthorsSubdir = "authors"
)

const descriptionFallbackLen = 160

// entry holds a loaded post with its parse-time derivations.
type entry struct {
	post *models.Post
	toc  []models.TOCEntry
}

// renderResult is the cached output of rendering one post.
type renderResult struct {
	HTML  string
	Words int
}

// Store is the filesystem-backed content store. Posts live under
// <contentDir>/blog (one file per post, one directory per post with
// subposts), authors under <contentDir>/authors. Load parses everything
// up front; rendering happens on demand through the render cache.
type Store struct {
	cfg       *config.Config
	fs        afero.Fs
	md        goldmark.Markdown
	estimator *wordcount.Estimator
	logger    *slog.Logger
	metrics   *metrics.BuildMetrics

	renderCache cache.Cache[string, renderResult]

	mu      sync.RWMutex
	posts   map[string]*entry
	authors map[string]*models.Author
}

// NewStore creates a content store with an in-memory render cache.
func NewStore(
	cfg *config.Config,
	fsys afero.Fs,
	md goldmark.Markdown,
	estimator *wordcount.Estimator,
	logger *slog.Logger,
	m *metrics.BuildMetrics,
) *Store {
	return &Store{
		cfg:         cfg,
		fs:          fsys,
		md:          md,
		estimator:   estimator,
		renderCache: cache.NewMemory[string, renderResult](),
		logger:      logger,
		metrics:     m,
		posts:       make(map[string]*entry),
		authors:     make(map[string]*models.Author),
	}
}

// UseWeakRenderCache swaps the render cache for one the GC may shrink under
// memory pressure. Meant for serve sessions that stay up for hours; call
// before Load.
func (s *Store) UseWeakRenderCache() {
	s.renderCache = cache.NewWeak[string, renderResult]()
}

// Load walks the content tree and parses every post and author file.
// Parsing fans out over a worker pool; results are collected under the
// store lock. A file that fails to parse is logged and skipped so one bad
// post never breaks the whole site.
func (s *Store) Load(ctx context.Context) error {
	blogDir := filepath.Join(s.cfg.ContentDir, BlogSubdir)
	authorsDir := filepath.Join(s.cfg.ContentDir, AuthorsSubdir)

	var files []string
	err := afero.Walk(s.fs, blogDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", blogDir, err)
	}

	posts := make(map[string]*entry, len(files))
	var mu sync.Mutex

	pool := utils.NewWorkerPool(ctx, s.cfg.Workers, func(path string) {
		e, err := s.parsePostFile(blogDir, path)
		if err != nil {
			s.logger.Warn("skipping post", "path", path, "error", err)
			if s.metrics != nil {
				s.metrics.IncrementErrors()
			}
			return
		}
		if e == nil {
			return
		}
		mu.Lock()
		if prev, ok := posts[e.post.ID]; ok {
			s.logger.Warn("duplicate post id", "id", e.post.ID, "kept", prev.post.Path, "dropped", e.post.Path)
		} else {
			posts[e.post.ID] = e
		}
		mu.Unlock()
	})
	pool.Start()
	for _, f := range files {
		pool.Submit(f)
	}
	pool.Stop()

	if err := ctx.Err(); err != nil {
		return err
	}

	authors, err := s.loadAuthors(authorsDir)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.posts = posts
	s.authors = authors
	s.mu.Unlock()
	s.renderCache.Clear()

	s.logger.Info("content loaded", "posts", len(posts), "authors", len(authors))
	return nil
}

// parsePostFile turns one markdown file into a post entry. Returns a nil
// entry for drafts when drafts are excluded.
func (s *Store) parsePostFile(blogDir, path string) (*entry, error) {
	source, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	rel, err := filepath.Rel(blogDir, path)
	if err != nil {
		return nil, fmt.Errorf("rel: %w", err)
	}
	id := idFromPath(rel)
	if id == "" {
		return nil, fmt.Errorf("cannot derive id from %s", rel)
	}

	pc := gParser.NewContext()
	docNode := s.md.Parser().Parse(text.NewReader(source), gParser.WithContext(pc))
	metaData := meta.Get(pc)

	draft := utils.GetBool(metaData, "draft")
	if draft && !s.cfg.IncludeDrafts {
		return nil, nil
	}

	post := &models.Post{
		ID:     id,
		Path:   filepath.ToSlash(filepath.Join(BlogSubdir, rel)),
		Source: source,
		Draft:  draft,
		Title:  utils.GetString(metaData, "title"),
		Order:  utils.GetInt(metaData, "order"),
		Image:  utils.GetString(metaData, "image"),
	}

	if post.Title == "" {
		s.logger.Warn("post has no title", "id", id)
		post.Title = id
	}

	if t, present, err := metaDate(metaData, "date"); present {
		if err != nil {
			s.logger.Warn("invalid date", "id", id, "error", err)
		} else {
			post.CreatedAt = t
		}
	}
	if t, present, err := metaDate(metaData, "updated"); present {
		switch {
		case err != nil:
			s.logger.Warn("invalid updated date", "id", id, "error", err)
		case t.Before(post.CreatedAt):
			s.logger.Warn("updated date precedes publish date, ignoring", "id", id)
		default:
			post.UpdatedAt = t
		}
	}

	for _, tag := range utils.GetSlice(metaData, "tags") {
		if slug := utils.Slugify(tag); slug != "" {
			post.Tags = append(post.Tags, slug)
		}
	}

	for _, raw := range utils.GetSlice(metaData, "authors") {
		ref, err := ParseAuthorRef(raw)
		if err != nil {
			s.logger.Warn("invalid author reference", "id", id, "ref", raw)
			continue
		}
		post.Authors = append(post.Authors, ref)
	}

	post.Description = utils.GetString(metaData, "description")
	if post.Description == "" {
		post.Description = descriptionFromText(mdParser.ExtractPlainText(docNode, source))
	}

	return &entry{post: post, toc: mdParser.GetTOC(pc)}, nil
}

// metaDate reads a frontmatter date. The YAML layer surfaces unquoted
// dates as time.Time and quoted ones as strings; both are accepted.
func metaDate(m map[string]interface{}, key string) (time.Time, bool, error) {
	v, ok := m[key]
	if !ok {
		return time.Time{}, false, nil
	}
	if t, ok := v.(time.Time); ok {
		return t, true, nil
	}

	s := fmt.Sprintf("%v", v)
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := utils.ParseDate(s)
	return t, true, err
}

// idFromPath derives a post id from a path relative to the blog dir:
// "intro.md" -> "intro", "intro/details.md" -> "intro/details",
// "intro/index.md" -> "intro".
func idFromPath(rel string) string {
	rel = strings.ToLower(filepath.ToSlash(rel))
	rel = strings.TrimSuffix(rel, ".md")
	rel = strings.TrimSuffix(rel, "/index")
	return strings.Trim(rel, "/")
}

// descriptionFromText truncates plain text to the fallback description
// length on a word boundary.
func descriptionFromText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= descriptionFallbackLen {
		return text
	}
	cut := strings.LastIndex(text[:descriptionFallbackLen], " ")
	if cut <= 0 {
		cut = descriptionFallbackLen
	}
	return text[:cut] + "…"
}

// Post returns the post with the given id.
func (s *Store) Post(id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %q: %w", id, ErrNotFound)
	}
	return e.post, nil
}

// Posts returns every loaded post, newest first.
func (s *Store) Posts() []*models.Post {
	s.mu.RLock()
	out := make([]*models.Post, 0, len(s.posts))
	for _, e := range s.posts {
		out = append(out, e.post)
	}
	s.mu.RUnlock()

	utils.SortPosts(out)
	return out
}

// MainPosts returns top-level posts (no subposts), newest first.
func (s *Store) MainPosts() []*models.Post {
	s.mu.RLock()
	out := make([]*models.Post, 0, len(s.posts))
	for _, e := range s.posts {
		if !IsSubpost(e.post.ID) {
			out = append(out, e.post)
		}
	}
	s.mu.RUnlock()

	utils.SortPosts(out)
	return out
}

// Subposts returns the subposts of parentID in reading order: oldest
// first, ties broken by the order field, then id.
func (s *Store) Subposts(parentID string) []*models.Post {
	s.mu.RLock()
	var out []*models.Post
	for _, e := range s.posts {
		if IsSubpost(e.post.ID) && ParentID(e.post.ID) == parentID {
			out = append(out, e.post)
		}
	}
	s.mu.RUnlock()

	utils.SortSubposts(out)
	return out
}

// Headings returns the post's H2..H6 headings in document order.
func (s *Store) Headings(id string) ([]models.TOCEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %q: %w", id, ErrNotFound)
	}
	return e.toc, nil
}

// RenderHTML renders the post body to HTML, caching by id and content hash
// so unchanged posts render once per session.
func (s *Store) RenderHTML(id string) (string, error) {
	s.mu.RLock()
	e, ok := s.posts[id]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("post %q: %w", id, ErrNotFound)
	}

	res, err := s.render(e.post)
	if err != nil {
		return "", err
	}
	return res.HTML, nil
}

// WordCount returns the prose word count of the rendered post body.
func (s *Store) WordCount(id string) (int, error) {
	s.mu.RLock()
	e, ok := s.posts[id]
	s.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("post %q: %w", id, ErrNotFound)
	}

	res, err := s.render(e.post)
	if err != nil {
		return 0, err
	}
	return res.Words, nil
}

// PlainText returns the post body stripped to prose. The search index feeds
// on this rather than the rendered HTML.
func (s *Store) PlainText(id string) (string, error) {
	s.mu.RLock()
	e, ok := s.posts[id]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("post %q: %w", id, ErrNotFound)
	}

	docNode := s.md.Parser().Parse(text.NewReader(e.post.Source))
	return mdParser.ExtractPlainText(docNode, e.post.Source), nil
}

func (s *Store) render(post *models.Post) (*renderResult, error) {
	key := post.ID + ":" + cache.HashContent(post.Source)

	if res, ok := s.renderCache.Get(key); ok {
		if s.metrics != nil {
			s.metrics.IncrementCacheHit()
		}
		return res, nil
	}

	return cache.GetOrCompute(s.renderCache, key, func() (*renderResult, error) {
		if s.metrics != nil {
			s.metrics.IncrementCacheMiss()
		}

		pc := gParser.NewContext()
		docNode := s.md.Parser().Parse(text.NewReader(post.Source), gParser.WithContext(pc))

		buf := utils.SharedBufferPool.Get()
		defer utils.SharedBufferPool.Put(buf)

		if err := s.md.Renderer().Render(buf, post.Source, docNode); err != nil {
			return nil, fmt.Errorf("render %s: %w", post.ID, err)
		}

		html := buf.String()
		return &renderResult{
			HTML:  html,
			Words: s.estimator.Count(html),
		}, nil
	})
}

// Tags returns every tag with its post count, sorted by count descending
// then name.
func (s *Store) Tags() []models.TagData {
	counts := make(map[string]int)
	s.mu.RLock()
	for _, e := range s.posts {
		for _, tag := range e.post.Tags {
			counts[tag]++
		}
	}
	s.mu.RUnlock()

	out := make([]models.TagData, 0, len(counts))
	for tag, n := range counts {
		out = append(out, models.TagData{Name: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// PostsByTag returns posts carrying the tag, newest first.
func (s *Store) PostsByTag(tag string) []*models.Post {
	tag = utils.Slugify(tag)

	s.mu.RLock()
	var out []*models.Post
	for _, e := range s.posts {
		for _, t := range e.post.Tags {
			if t == tag {
				out = append(out, e.post)
				break
			}
		}
	}
	s.mu.RUnlock()

	utils.SortPosts(out)
	return out
}

// PostsByAuthor returns posts referencing the author, newest first.
func (s *Store) PostsByAuthor(authorID string) []*models.Post {
	s.mu.RLock()
	var out []*models.Post
	for _, e := range s.posts {
		for _, ref := range e.post.Authors {
			if ref.ID == authorID {
				out = append(out, e.post)
				break
			}
		}
	}
	s.mu.RUnlock()

	utils.SortPosts(out)
	return out
}

// ReloadFile re-parses a single changed post file in place. Used by the dev
// server on file change events. Deleting the file removes the post.
func (s *Store) ReloadFile(path string) error {
	blogDir := filepath.Join(s.cfg.ContentDir, BlogSubdir)

	rel, err := filepath.Rel(blogDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("path %s is outside the blog dir", path)
	}
	id := idFromPath(rel)

	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return err
	}
	if !exists {
		s.mu.Lock()
		delete(s.posts, id)
		s.mu.Unlock()
		return nil
	}

	e, err := s.parsePostFile(blogDir, path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if e == nil {
		delete(s.posts, id)
	} else {
		s.posts[e.post.ID] = e
	}
	s.mu.Unlock()
	return nil
}

// IDForPath maps a source file path to the post id it loads under. Returns
// false for paths outside the blog dir.
func (s *Store) IDForPath(path string) (string, bool) {
	blogDir := filepath.Join(s.cfg.ContentDir, BlogSubdir)

	rel, err := filepath.Rel(blogDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return idFromPath(rel), true
}

// LastUpdated returns the most recent publish or update time across all
// posts, used for build metadata.
func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest time.Time
	for _, e := range s.posts {
		if e.post.CreatedAt.After(latest) {
			latest = e.post.CreatedAt
		}
		if e.post.UpdatedAt.After(latest) {
			latest = e.post.UpdatedAt
		}
	}
	return latest
}
