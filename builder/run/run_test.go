package run

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/foliogen/folio/builder/cache"
	"github.com/foliogen/folio/builder/config"
	"github.com/foliogen/folio/builder/content"
	mdparser "github.com/foliogen/folio/builder/parser"
	"github.com/foliogen/folio/builder/testutil"
	"github.com/foliogen/folio/builder/wordcount"
)

func TestPageURL(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"intro", "https://example.com/blog/intro.html"},
		{"intro/details", "https://example.com/blog/intro/details.html"},
	}
	for _, tt := range tests {
		if got := pageURL("https://example.com", tt.id); got != tt.want {
			t.Errorf("pageURL(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestOutputRelPath(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"intro", filepath.Join("blog", "intro.html")},
		{"intro/details", filepath.Join("blog", "intro", "details.html")},
	}
	for _, tt := range tests {
		if got := outputRelPath(tt.id); got != tt.want {
			t.Errorf("outputRelPath(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name             string
		page, per, total int
		wantLo, wantHi   int
	}{
		{"first page", 1, 10, 25, 0, 10},
		{"last partial page", 3, 10, 25, 20, 25},
		{"page past the end", 4, 10, 25, 25, 25},
		{"no posts", 1, 5, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := pageBounds(tt.page, tt.per, tt.total)
			if lo != tt.wantLo || hi != tt.wantHi {
				t.Errorf("pageBounds(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.per, tt.total, lo, hi, tt.wantLo, tt.wantHi)
			}
		})
	}
}

func TestBuildPaginator(t *testing.T) {
	base := "https://example.com"

	t.Run("single page", func(t *testing.T) {
		p := buildPaginator(1, 1, base)
		if p.HasPrev || p.HasNext {
			t.Errorf("single page should have no neighbors, got %+v", p)
		}
		if p.FirstURL != base+"/#latest" || p.LastURL != p.FirstURL {
			t.Errorf("FirstURL/LastURL = %q/%q, want both %q", p.FirstURL, p.LastURL, base+"/#latest")
		}
	})

	t.Run("first of three", func(t *testing.T) {
		p := buildPaginator(1, 3, base)
		if p.HasPrev {
			t.Error("page 1 should not have a previous page")
		}
		if !p.HasNext || p.NextURL != base+"/page/2/#latest" {
			t.Errorf("NextURL = %q, want %q", p.NextURL, base+"/page/2/#latest")
		}
		if p.LastURL != base+"/page/3/#latest" {
			t.Errorf("LastURL = %q, want %q", p.LastURL, base+"/page/3/#latest")
		}
	})

	t.Run("second page links back to the root", func(t *testing.T) {
		p := buildPaginator(2, 3, base)
		if p.PrevURL != base+"/#latest" {
			t.Errorf("PrevURL = %q, want %q", p.PrevURL, base+"/#latest")
		}
	})

	t.Run("last of three", func(t *testing.T) {
		p := buildPaginator(3, 3, base)
		if p.HasNext || p.NextURL != "" {
			t.Errorf("last page should have no next, got %+v", p)
		}
		if p.PrevURL != base+"/page/2/#latest" {
			t.Errorf("PrevURL = %q, want %q", p.PrevURL, base+"/page/2/#latest")
		}
	})
}

func TestChangeClassification(t *testing.T) {
	b := &Builder{cfg: &config.Config{
		ContentDir:  filepath.Join("/site", "content"),
		TemplateDir: filepath.Join("/site", "templates"),
	}}

	tests := []struct {
		path         string
		wantContent  bool
		wantTemplate bool
	}{
		{filepath.Join("/site", "content", "blog", "a.md"), true, false},
		{filepath.Join("/site", "content", "blog", "deep", "b.md"), true, false},
		{filepath.Join("/site", "content", "notes.txt"), false, false},
		{filepath.Join("/other", "x.md"), false, false},
		{filepath.Join("/site", "templates", "layout.html"), false, true},
		{filepath.Join("/site", "templates", "README.txt"), false, false},
		{filepath.Join("/site", "content-drafts", "a.md"), false, false},
	}
	for _, tt := range tests {
		if got := b.isContentMarkdown(tt.path); got != tt.wantContent {
			t.Errorf("isContentMarkdown(%q) = %v, want %v", tt.path, got, tt.wantContent)
		}
		if got := b.isTemplatePath(tt.path); got != tt.wantTemplate {
			t.Errorf("isTemplatePath(%q) = %v, want %v", tt.path, got, tt.wantTemplate)
		}
	}
}

func TestIsConfigPath(t *testing.T) {
	if !isConfigPath(filepath.Join("/site", "folio.yaml")) {
		t.Error("folio.yaml should classify as config")
	}
	if !isConfigPath("config.yaml") {
		t.Error("config.yaml should classify as config")
	}
	if isConfigPath(filepath.Join("/site", "data.yaml")) {
		t.Error("arbitrary yaml should not classify as config")
	}
}

// newPruneBuilder wires just enough of a Builder to exercise cache pruning:
// a content store over a memory fs and a real cache manager, no renderer.
func newPruneBuilder(t *testing.T, includeDrafts bool) (*Builder, afero.Fs) {
	t.Helper()

	fsys := afero.NewMemMapFs()
	cfg := &config.Config{ContentDir: "content", Workers: 2, IncludeDrafts: includeDrafts}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	manager, cleanup := testutil.CreateTestCache(t)
	t.Cleanup(cleanup)

	store := content.NewStore(cfg, fsys, mdparser.New(""), wordcount.New("en"), logger, nil)
	return &Builder{cfg: cfg, store: store, cache: manager, logger: logger}, fsys
}

func TestPruneStaleRecords(t *testing.T) {
	b, fsys := newPruneBuilder(t, false)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	testutil.WriteTestFile(t, fsys, "content/blog/keep.md", testutil.CreatePostMarkdown("Keep", day, nil, "Stays."))
	testutil.WriteTestFile(t, fsys, "content/blog/gone.md", testutil.CreatePostMarkdown("Gone", day, nil, "Leaves."))
	testutil.WriteTestFile(t, fsys, "content/authors/jdoe.md", "---\nname: Jane Doe\n---\n")
	testutil.WriteTestFile(t, fsys, "content/authors/ghost.md", "---\nname: Ghost Writer\n---\n")

	if err := b.store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	records := []*cache.PostRecord{
		{ID: "keep", Path: "blog/keep.md"},
		{ID: "gone", Path: "blog/gone.md"},
	}
	if err := b.commitRecords(records); err != nil {
		t.Fatalf("commitRecords: %v", err)
	}

	if err := fsys.Remove("content/blog/gone.md"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := fsys.Remove("content/authors/ghost.md"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := b.store.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	b.pruneStaleRecords()

	if rec, err := b.cache.GetPostByID("gone"); err != nil || rec != nil {
		t.Errorf("GetPostByID(gone) = (%+v, %v), want pruned", rec, err)
	}
	if rec, err := b.cache.GetPostByID("keep"); err != nil || rec == nil {
		t.Errorf("GetPostByID(keep) = (%+v, %v), want kept", rec, err)
	}
	if a, err := b.cache.GetAuthor("ghost"); err != nil || a != nil {
		t.Errorf("GetAuthor(ghost) = (%+v, %v), want pruned", a, err)
	}
	if a, err := b.cache.GetAuthor("jdoe"); err != nil || a == nil {
		t.Errorf("GetAuthor(jdoe) = (%+v, %v), want kept", a, err)
	}
}

func TestPruneKeepsDraftRecords(t *testing.T) {
	b, fsys := newPruneBuilder(t, false)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	testutil.WriteTestFile(t, fsys, "content/blog/keep.md", testutil.CreatePostMarkdown("Keep", day, nil, "Stays."))

	if err := b.store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	// A draft committed by an earlier dev build. Production loads skip the
	// draft, so it is absent from the store but its file may still exist.
	records := []*cache.PostRecord{
		{ID: "keep", Path: "blog/keep.md"},
		{ID: "wip", Path: "blog/wip.md", Draft: true},
	}
	if err := b.commitRecords(records); err != nil {
		t.Fatalf("commitRecords: %v", err)
	}

	b.pruneStaleRecords()

	if rec, err := b.cache.GetPostByID("wip"); err != nil || rec == nil {
		t.Errorf("GetPostByID(wip) = (%+v, %v), want draft record kept", rec, err)
	}

	b.cfg.IncludeDrafts = true
	b.pruneStaleRecords()

	if rec, err := b.cache.GetPostByID("wip"); err != nil || rec != nil {
		t.Errorf("GetPostByID(wip) = (%+v, %v), want pruned once drafts load", rec, err)
	}
}
