package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/foliogen/folio/builder/config"
	"github.com/foliogen/folio/builder/metrics"
	"github.com/foliogen/folio/builder/models"
	"github.com/foliogen/folio/builder/parser"
	"github.com/foliogen/folio/builder/testutil"
	"github.com/foliogen/folio/builder/wordcount"
)

var testFiles = map[string]string{
	"content/blog/intro.md": `---
title: Intro
date: 2024-01-02
tags:
  - Go
  - Tooling
authors:
  - authors/jdoe
---

## Setup

Getting started takes five words.

### Install

Run the installer.
`,
	"content/blog/intro/details.md": `---
title: Details
date: 2024-01-03
authors:
  - jdoe
---

More about the internals.
`,
	"content/blog/intro/extra.md": `---
title: Extra
date: 2024-01-01
order: 2
---

Extra material.
`,
	"content/blog/older.md": `---
title: Older
description: An older post.
date: 2023-06-01
tags:
  - go
---

Old content.
`,
	"content/blog/hidden.md": `---
title: Hidden
date: 2024-02-01
draft: true
---

Not ready yet.
`,
	"content/authors/jdoe.md": `---
name: Jane Doe
url: https://jdoe.example.com
---
`,
}

func newTestStore(t *testing.T, mutate func(*config.Config)) (*Store, afero.Fs, *metrics.BuildMetrics) {
	t.Helper()

	fsys := afero.NewMemMapFs()
	for path, body := range testFiles {
		if err := afero.WriteFile(fsys, path, []byte(body), 0644); err != nil {
			t.Fatalf("WriteFile(%s): %v", path, err)
		}
	}

	cfg := &config.Config{ContentDir: "content", Workers: 2}
	if mutate != nil {
		mutate(cfg)
	}

	m := metrics.NewBuildMetrics()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewStore(cfg, fsys, parser.New(""), wordcount.New("en"), logger, m)

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return store, fsys, m
}

func TestLoadAndLookup(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	post, err := store.Post("intro")
	if err != nil {
		t.Fatalf("Post(intro) error: %v", err)
	}
	if post.Title != "Intro" {
		t.Errorf("Title = %q, want %q", post.Title, "Intro")
	}
	if got := post.CreatedAt.Format("2006-01-02"); got != "2024-01-02" {
		t.Errorf("CreatedAt = %s, want 2024-01-02", got)
	}
	if len(post.Tags) != 2 || post.Tags[0] != "go" || post.Tags[1] != "tooling" {
		t.Errorf("Tags = %v, want [go tooling]", post.Tags)
	}
	if len(post.Authors) != 1 || post.Authors[0].ID != "jdoe" {
		t.Errorf("Authors = %v, want ref to jdoe", post.Authors)
	}

	if _, err := store.Post("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Post(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDraftsAreInvisible(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	if _, err := store.Post("hidden"); !errors.Is(err, ErrNotFound) {
		t.Errorf("draft should be invisible, got error %v", err)
	}
	for _, p := range store.Posts() {
		if p.ID == "hidden" {
			t.Error("draft leaked into Posts()")
		}
	}
}

func TestDraftsIncludedWhenConfigured(t *testing.T) {
	store, _, _ := newTestStore(t, func(cfg *config.Config) {
		cfg.IncludeDrafts = true
	})

	post, err := store.Post("hidden")
	if err != nil {
		t.Fatalf("Post(hidden) error: %v", err)
	}
	if !post.Draft {
		t.Error("Draft flag should survive loading")
	}
}

func TestMainPostsNewestFirst(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	main := store.MainPosts()
	if len(main) != 2 {
		t.Fatalf("MainPosts() returned %d posts, want 2", len(main))
	}
	if main[0].ID != "intro" || main[1].ID != "older" {
		t.Errorf("MainPosts() order = [%s %s], want [intro older]", main[0].ID, main[1].ID)
	}
	for _, p := range main {
		if IsSubpost(p.ID) {
			t.Errorf("MainPosts() contains subpost %s", p.ID)
		}
	}
}

func TestSubpostsInReadingOrder(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	subs := store.Subposts("intro")
	if len(subs) != 2 {
		t.Fatalf("Subposts(intro) returned %d posts, want 2", len(subs))
	}
	if subs[0].ID != "intro/extra" || subs[1].ID != "intro/details" {
		t.Errorf("Subposts(intro) order = [%s %s], want [intro/extra intro/details]",
			subs[0].ID, subs[1].ID)
	}

	if got := store.Subposts("older"); len(got) != 0 {
		t.Errorf("Subposts(older) = %v, want none", got)
	}
}

func TestHeadings(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	toc, err := store.Headings("intro")
	if err != nil {
		t.Fatalf("Headings(intro) error: %v", err)
	}
	if len(toc) != 2 {
		t.Fatalf("Headings(intro) returned %d entries, want 2", len(toc))
	}
	if toc[0].Text != "Setup" || toc[0].Level != 2 || toc[0].ID != "setup" {
		t.Errorf("first heading = %+v, want Setup/2/setup", toc[0])
	}
	if toc[1].Text != "Install" || toc[1].Level != 3 {
		t.Errorf("second heading = %+v, want Install/3", toc[1])
	}
}

func TestRenderHTML(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	html, err := store.RenderHTML("intro")
	if err != nil {
		t.Fatalf("RenderHTML(intro) error: %v", err)
	}
	if !strings.Contains(html, `<h2 id="setup">`) {
		t.Errorf("rendered HTML missing heading anchor: %s", html)
	}
	if strings.Contains(html, "title: Intro") {
		t.Error("frontmatter leaked into rendered HTML")
	}
}

func TestRenderIsCached(t *testing.T) {
	store, _, m := newTestStore(t, nil)

	if _, err := store.RenderHTML("intro"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.RenderHTML("intro"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.WordCount("intro"); err != nil {
		t.Fatal(err)
	}

	if got := m.CacheMisses(); got != 1 {
		t.Errorf("CacheMisses() = %d, want 1 (renders should share the cache)", got)
	}
}

func TestWordCount(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	words, err := store.WordCount("older")
	if err != nil {
		t.Fatalf("WordCount(older) error: %v", err)
	}
	if words != 2 {
		t.Errorf("WordCount(older) = %d, want 2", words)
	}
}

func TestDescriptionFallback(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	// Explicit description wins.
	older, _ := store.Post("older")
	if older.Description != "An older post." {
		t.Errorf("Description = %q, want the frontmatter value", older.Description)
	}

	// Missing description falls back to body text.
	details, _ := store.Post("intro/details")
	if !strings.Contains(details.Description, "More about the internals.") {
		t.Errorf("Description = %q, want body text fallback", details.Description)
	}
}

func TestTags(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	tags := store.Tags()
	if len(tags) != 2 {
		t.Fatalf("Tags() returned %d tags, want 2", len(tags))
	}
	if tags[0].Name != "go" || tags[0].Count != 2 {
		t.Errorf("tags[0] = %+v, want go with count 2", tags[0])
	}
	if tags[1].Name != "tooling" || tags[1].Count != 1 {
		t.Errorf("tags[1] = %+v, want tooling with count 1", tags[1])
	}

	byTag := store.PostsByTag("Go")
	if len(byTag) != 2 {
		t.Errorf("PostsByTag(Go) returned %d posts, want 2", len(byTag))
	}
}

func TestPostsByAuthor(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	posts := store.PostsByAuthor("jdoe")
	if len(posts) != 2 {
		t.Fatalf("PostsByAuthor(jdoe) returned %d posts, want 2", len(posts))
	}
	if posts[0].ID != "intro/details" || posts[1].ID != "intro" {
		t.Errorf("PostsByAuthor order = [%s %s], want [intro/details intro]",
			posts[0].ID, posts[1].ID)
	}
}

func TestAuthorLookup(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	a, err := store.Author(models.AuthorRef{Collection: "authors", ID: "jdoe"})
	if err != nil {
		t.Fatalf("Author(jdoe) error: %v", err)
	}
	if a.Name != "Jane Doe" {
		t.Errorf("Name = %q, want %q", a.Name, "Jane Doe")
	}
	if a.URL != "https://jdoe.example.com" {
		t.Errorf("URL = %q, want the frontmatter value", a.URL)
	}

	if _, err := store.Author(models.AuthorRef{Collection: "authors", ID: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown author error = %v, want ErrNotFound", err)
	}
	if _, err := store.Author(models.AuthorRef{Collection: "editors", ID: "jdoe"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown collection error = %v, want ErrNotFound", err)
	}
}

func TestReloadFile(t *testing.T) {
	store, fsys, _ := newTestStore(t, nil)

	updated := `---
title: Intro Revised
date: 2024-01-02
---

New body.
`
	if err := afero.WriteFile(fsys, "content/blog/intro.md", []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}
	if err := store.ReloadFile("content/blog/intro.md"); err != nil {
		t.Fatalf("ReloadFile() error: %v", err)
	}

	post, err := store.Post("intro")
	if err != nil {
		t.Fatal(err)
	}
	if post.Title != "Intro Revised" {
		t.Errorf("Title after reload = %q, want %q", post.Title, "Intro Revised")
	}

	// Deleting the file removes the post.
	if err := fsys.Remove("content/blog/older.md"); err != nil {
		t.Fatal(err)
	}
	if err := store.ReloadFile("content/blog/older.md"); err != nil {
		t.Fatalf("ReloadFile() after delete error: %v", err)
	}
	if _, err := store.Post("older"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted post still resolvable, error = %v", err)
	}
}

func TestReloadFileRejectsOutsidePaths(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	if err := store.ReloadFile("templates/base.html"); err == nil {
		t.Error("ReloadFile() outside the blog dir should fail")
	}
}

func TestLastUpdated(t *testing.T) {
	store, fsys, _ := newTestStore(t, nil)

	// The newest publish date among the loaded posts wins. The draft is
	// newer but excluded by default.
	if got := store.LastUpdated().Format("2006-01-02"); got != "2024-01-03" {
		t.Errorf("LastUpdated() = %s, want 2024-01-03", got)
	}

	// A later update on an older post moves the site forward.
	revised := `---
title: Older
date: 2023-06-01
updated: 2024-06-15
---

Old content, revised.
`
	if err := afero.WriteFile(fsys, "content/blog/older.md", []byte(revised), 0644); err != nil {
		t.Fatal(err)
	}
	if err := store.ReloadFile("content/blog/older.md"); err != nil {
		t.Fatalf("ReloadFile() error: %v", err)
	}
	if got := store.LastUpdated().Format("2006-01-02"); got != "2024-06-15" {
		t.Errorf("LastUpdated() after revision = %s, want 2024-06-15", got)
	}
}

func TestUpdatedBeforePublishIsIgnored(t *testing.T) {
	fsys := afero.NewMemMapFs()
	body := `---
title: Odd Dates
date: 2024-05-01
updated: 2024-01-01
---

Body.
`
	if err := afero.WriteFile(fsys, "content/blog/odd.md", []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{ContentDir: "content", Workers: 1}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewStore(cfg, fsys, parser.New(""), wordcount.New("en"), logger, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	post, err := store.Post("odd")
	if err != nil {
		t.Fatal(err)
	}
	if post.Updated() {
		t.Errorf("UpdatedAt = %v, want zero when it precedes the publish date", post.UpdatedAt)
	}
}

func TestIDFromPath(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"intro.md", "intro"},
		{"intro/details.md", "intro/details"},
		{"intro/index.md", "intro"},
		{"Intro.md", "intro"},
		{"deep/nested/part.md", "deep/nested/part"},
	}

	for _, tt := range tests {
		if got := idFromPath(tt.rel); got != tt.want {
			t.Errorf("idFromPath(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}

func TestParseAuthorRef(t *testing.T) {
	tests := []struct {
		raw     string
		want    models.AuthorRef
		wantErr bool
	}{
		{"authors/jdoe", models.AuthorRef{Collection: "authors", ID: "jdoe"}, false},
		{"jdoe", models.AuthorRef{Collection: "authors", ID: "jdoe"}, false},
		{"AUTHORS/JDoe", models.AuthorRef{Collection: "authors", ID: "jdoe"}, false},
		{" jdoe ", models.AuthorRef{Collection: "authors", ID: "jdoe"}, false},
		{"", models.AuthorRef{}, true},
		{"a/b/c", models.AuthorRef{}, true},
		{"authors/", models.AuthorRef{}, true},
	}

	for _, tt := range tests {
		got, err := ParseAuthorRef(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAuthorRef(%q) should fail", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAuthorRef(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAuthorRef(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func BenchmarkStoreLoad(b *testing.B) {
	sizes := []int{10, 100, 500}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Posts-%d", size), func(b *testing.B) {
			fsys := afero.NewMemMapFs()
			start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			for i := 0; i < size; i++ {
				body := testutil.CreatePostMarkdown(
					fmt.Sprintf("Post %d", i),
					start.AddDate(0, 0, i),
					[]string{"go", "notes"},
					"Opening paragraph.\n\n## Details\n\nA few sentences of body text.",
				)
				testutil.WriteTestFile(b, fsys, fmt.Sprintf("content/blog/post-%03d.md", i), body)
				if i%5 == 0 {
					sub := testutil.CreateSubpostMarkdown("Appendix", start.AddDate(0, 0, i), 1, "Extra material.")
					testutil.WriteTestFile(b, fsys, fmt.Sprintf("content/blog/post-%03d/appendix.md", i), sub)
				}
			}

			cfg := &config.Config{ContentDir: "content", Workers: 4}
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				store := NewStore(cfg, fsys, parser.New(""), wordcount.New("en"), logger, nil)
				if err := store.Load(context.Background()); err != nil {
					b.Fatalf("Load: %v", err)
				}
			}
		})
	}
}
