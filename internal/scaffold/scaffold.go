// Package scaffold creates new folio sites and post files.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/foliogen/folio/builder/config"
	"github.com/foliogen/folio/builder/content"
)

const defaultConfig = `# Site configuration
title: "My Folio Site"
description: "A personal site built with folio"
baseURL: "http://localhost:8080"
language: "en"

owner:
  name: "Your Name"
  email: ""
  url: ""

# Directories
contentDir: "content"
outputDir: "public"
cacheDir: ".folio-cache"
templateDir: "templates"
staticDir: "static"

# Rendering
tocMaxDepth: 3
headerOffset: 80
postsPerPage: 10
minify: true

# Build
includeDrafts: false
workers: 0
port: 8080
`

const welcomePost = `---
title: "Welcome to Folio"
date: "%s"
description: "Your first post, with a table of contents and a subpost."
tags: ["folio", "welcome"]
authors: ["owner"]
draft: false
---

## Getting started

Edit this file at ` + "`content/blog/welcome.md`" + `. The dev server rebuilds
and reloads the page on every save:

` + "```bash" + `
folio serve
` + "```" + `

## Subposts

A post becomes a series by adding files under a directory with its name.
This post has one subpost at ` + "`content/blog/welcome/going-deeper.md`" + `;
its headings appear in the table of contents on the left.

## Publishing

Run ` + "`folio build`" + ` and deploy the ` + "`public/`" + ` directory anywhere that
serves static files.
`

const welcomeSubpost = `---
title: "Going Deeper"
date: "%s"
description: "A subpost that extends the welcome series."
order: 1
draft: false
---

## Frontmatter

Posts and subposts share the same frontmatter keys. Subposts use ` + "`order`" + `
to fix their position in the series.

## Navigation

Subpost pages link back to their parent and to their siblings in reading
order.
`

const ownerAuthor = `---
name: "Your Name"
bio: "Write a short bio here."
url: ""
avatar: ""
---
`

const layoutHTML = `<!DOCTYPE html>
<html lang="{{.Config.Language}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.TabTitle}}</title>
{{if .Description}}<meta name="description" content="{{.Description}}">{{end}}
{{if .Permalink}}<link rel="canonical" href="{{.Permalink}}">{{end}}
{{$css := index .Assets "/static/css/main.css"}}
<link rel="stylesheet" href="{{.BaseURL}}{{if $css}}{{$css}}{{else}}/static/css/main.css{{end}}">
</head>
<body>
<div id="reading-progress"></div>
<header class="site-header">
<a class="site-title" href="{{.BaseURL}}/">{{.Config.Title}}</a>
<nav>
<a href="{{.BaseURL}}/">Home</a>
<a href="{{.BaseURL}}/tags/index.html">Tags</a>
<a href="{{.BaseURL}}/authors/index.html">Authors</a>
</nav>
</header>

{{if .Context}}
<div class="post-layout">
<aside class="toc-sidebar">
<nav id="toc" data-max-depth="{{.Config.TOCMaxDepth}}" data-header-offset="{{.Config.HeaderOffset}}">
<div id="toc-label">Contents</div>
{{range .Context.Sections}}
<div class="toc-section{{if .IsSubpost}} toc-subpost{{end}}">
{{if ne .PostID $.Context.Post.ID}}<span class="toc-section-title">{{.Title}}</span>{{end}}
<ul>
{{range .Headings}}<li class="toc-depth-{{.Depth}}"><a href="{{.Href}}">{{.Text}}</a></li>
{{end}}</ul>
</div>
{{end}}
</nav>
</aside>
<article class="post-content">
<h1>{{.Title}}</h1>
<div class="post-meta">
<time datetime="{{.Context.Post.CreatedAt.Format "2006-01-02"}}">{{formatDate .Context.Post.CreatedAt}}</time>
{{if .Context.Post.Updated}}<span>Updated {{formatDate .Context.Post.UpdatedAt}}</span>{{end}}
{{with .Context.Meta.CombinedWordCount}}<span>{{.}} words in series</span>{{else}}<span>{{.Context.Meta.WordCount}} words</span>{{end}}
{{range .Context.Meta.Authors}}<a class="author" href="{{$.BaseURL}}/authors/{{.ID}}.html">{{.Name}}</a>{{end}}
</div>
{{if .Context.NavItems}}
<nav class="family-nav">
{{range .Context.NavItems}}<a href="{{.Href}}"{{if .Current}} class="current"{{end}}>{{.Label}}</a>
{{end}}</nav>
{{end}}
{{.Content}}
<nav class="post-nav">
{{with .Context.Navigation.Parent}}<a class="nav-up" href="{{$.BaseURL}}/blog/{{.ID}}.html">↑ {{.Title}}</a>{{end}}
{{with .Context.Navigation.Newer}}<a class="nav-newer" href="{{$.BaseURL}}/blog/{{.ID}}.html">← {{.Title}}</a>{{end}}
{{with .Context.Navigation.Older}}<a class="nav-older" href="{{$.BaseURL}}/blog/{{.ID}}.html">{{.Title}} →</a>{{end}}
</nav>
{{range .Context.Post.Tags}}<a class="tag" href="{{$.BaseURL}}/tags/{{.}}.html">#{{.}}</a>{{end}}
</article>
</div>
{{else if .IsTagsIndex}}
<main class="page">
<h1>{{.Title}}</h1>
<ul class="tag-list">
{{range .AllTags}}<li><a href="{{.Link}}">#{{.Name}}</a> <span class="count">{{.Count}}</span></li>
{{end}}</ul>
</main>
{{else if .Author}}
<main class="page">
<h1>{{.Author.Name}}</h1>
{{if .Author.Bio}}<p>{{.Author.Bio}}</p>{{end}}
{{if .Author.URL}}<p><a href="{{.Author.URL}}">{{.Author.URL}}</a></p>{{end}}
<section class="post-list">
{{range .Posts}}
<article class="post-card">
<h2><a href="{{$.BaseURL}}/blog/{{.Post.ID}}.html">{{.Post.Title}}</a></h2>
<p>{{.Post.Description}}</p>
</article>
{{end}}</section>
</main>
{{else if .AllAuthors}}
<main class="page">
<h1>{{.Title}}</h1>
<ul class="author-list">
{{range .AllAuthors}}<li><a href="{{$.BaseURL}}/authors/{{.ID}}.html">{{.Name}}</a>{{if .Bio}} · {{.Bio}}{{end}}</li>
{{end}}</ul>
</main>
{{else if .Posts}}
<main class="page">
<h1>{{.Title}}</h1>
<section class="post-list">
{{range .Posts}}
<article class="post-card">
<h2><a href="{{$.BaseURL}}/blog/{{.Post.ID}}.html">{{.Post.Title}}</a></h2>
<div class="post-meta">
<time>{{formatDate .Post.CreatedAt}}</time>
{{if .HasSubposts}}<span>{{.SubpostCount}} parts</span>{{end}}
{{with .CombinedWordCount}}<span>{{.}} words</span>{{else}}<span>{{.WordCount}} words</span>{{end}}
</div>
<p>{{.Post.Description}}</p>
</article>
{{end}}</section>
</main>
{{else}}
<main class="page">{{.Content}}</main>
{{end}}

<footer class="site-footer">
<span>© {{now.Year}} {{.Config.Owner.Name}}</span>
</footer>
<script>window.__folio={base:"{{.BaseURL}}"{{if .Config.IsDev}},dev:true{{end}}};</script>
<script src="{{.BaseURL}}/static/wasm/wasm_exec.js" defer></script>
{{$js := index .Assets "/static/js/main.js"}}
<script src="{{.BaseURL}}{{if $js}}{{$js}}{{else}}/static/js/main.js{{end}}" defer></script>
</body>
</html>
`

const indexHTML = `<!DOCTYPE html>
<html lang="{{.Config.Language}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.TabTitle}}</title>
{{if .Description}}<meta name="description" content="{{.Description}}">{{end}}
{{$css := index .Assets "/static/css/main.css"}}
<link rel="stylesheet" href="{{.BaseURL}}{{if $css}}{{$css}}{{else}}/static/css/main.css{{end}}">
</head>
<body>
<header class="site-header">
<a class="site-title" href="{{.BaseURL}}/">{{.Config.Title}}</a>
<nav>
<a href="{{.BaseURL}}/tags/index.html">Tags</a>
<a href="{{.BaseURL}}/authors/index.html">Authors</a>
</nav>
</header>
<main class="page">
<h1 id="latest">Latest Posts</h1>
<section class="post-list">
{{range .Posts}}
<article class="post-card">
<h2><a href="{{$.BaseURL}}/blog/{{.Post.ID}}.html">{{.Post.Title}}</a></h2>
<div class="post-meta">
<time>{{formatDate .Post.CreatedAt}}</time>
{{if .HasSubposts}}<span>{{.SubpostCount}} parts</span>{{end}}
{{with .CombinedWordCount}}<span>{{.}} words</span>{{else}}<span>{{.WordCount}} words</span>{{end}}
{{range .Authors}}<span class="author">{{.Name}}</span>{{end}}
</div>
<p>{{.Post.Description}}</p>
{{range .Post.Tags}}<a class="tag" href="{{$.BaseURL}}/tags/{{.}}.html">#{{.}}</a>{{end}}
</article>
{{end}}</section>
{{with .Paginator}}{{if gt .TotalPages 1}}
<nav class="paginator">
{{if .HasPrev}}<a href="{{.PrevURL}}">← Newer</a>{{end}}
<span>Page {{.CurrentPage}} of {{.TotalPages}}</span>
{{if .HasNext}}<a href="{{.NextURL}}">Older →</a>{{end}}
</nav>
{{end}}{{end}}
</main>
<footer class="site-footer">
<span>© {{now.Year}} {{.Config.Owner.Name}}</span>
{{if not .LastUpdated.IsZero}}<span>Updated {{formatDate .LastUpdated}}</span>{{end}}
</footer>
<script>window.__folio={base:"{{.BaseURL}}"{{if .Config.IsDev}},dev:true{{end}}};</script>
{{$js := index .Assets "/static/js/main.js"}}
<script src="{{.BaseURL}}{{if $js}}{{$js}}{{else}}/static/js/main.js{{end}}" defer></script>
</body>
</html>
`

const notFoundHTML = `<!DOCTYPE html>
<html lang="{{.Config.Language}}">
<head>
<meta charset="utf-8">
<title>{{.TabTitle}}</title>
{{$css := index .Assets "/static/css/main.css"}}
<link rel="stylesheet" href="{{.BaseURL}}{{if $css}}{{$css}}{{else}}/static/css/main.css{{end}}">
</head>
<body>
<main class="page not-found">
<h1>404</h1>
<p>This page does not exist.</p>
<p><a href="{{.BaseURL}}/">Back to the front page</a></p>
</main>
</body>
</html>
`

const mainCSS = `:root {
  --fg: #1f2933;
  --muted: #6b7280;
  --accent: #6366f1;
  --bg: #ffffff;
  --border: #e5e7eb;
}

* { box-sizing: border-box; }
body {
  margin: 0;
  color: var(--fg);
  background: var(--bg);
  font-family: system-ui, -apple-system, "Segoe UI", sans-serif;
  line-height: 1.65;
}
a { color: var(--accent); text-decoration: none; }
a:hover { text-decoration: underline; }

#reading-progress {
  position: fixed;
  top: 0;
  left: 0;
  height: 3px;
  width: 0;
  background: var(--accent);
  z-index: 100;
}

.site-header {
  display: flex;
  justify-content: space-between;
  align-items: center;
  padding: 1rem 1.5rem;
  border-bottom: 1px solid var(--border);
}
.site-header nav a { margin-left: 1rem; }
.site-title { font-weight: 700; color: var(--fg); }

.page, .post-layout {
  max-width: 72rem;
  margin: 0 auto;
  padding: 2rem 1rem;
}

.post-layout {
  display: grid;
  grid-template-columns: 16rem minmax(0, 1fr);
  gap: 2rem;
}
.toc-sidebar { font-size: 0.875rem; }
#toc {
  position: sticky;
  top: 5rem;
  max-height: calc(100vh - 6rem);
  overflow-y: auto;
  padding-right: 0.5rem;
}
#toc ul { list-style: none; margin: 0; padding: 0; }
#toc li a {
  display: block;
  padding: 0.15rem 0.5rem;
  color: var(--muted);
  border-left: 2px solid transparent;
}
#toc li a.active {
  color: var(--accent);
  border-left-color: var(--accent);
}
#toc .toc-depth-2 a { padding-left: 1.25rem; }
#toc .toc-depth-3 a { padding-left: 2rem; }
.toc-section-title { display: block; margin-top: 0.75rem; font-weight: 600; }
#toc-label { font-weight: 600; margin-bottom: 0.5rem; }

.post-meta {
  display: flex;
  flex-wrap: wrap;
  gap: 0.75rem;
  color: var(--muted);
  font-size: 0.875rem;
  margin-bottom: 1.5rem;
}
.family-nav { display: flex; flex-wrap: wrap; gap: 0.5rem; margin-bottom: 1.5rem; }
.family-nav a {
  padding: 0.25rem 0.75rem;
  border: 1px solid var(--border);
  border-radius: 9999px;
  font-size: 0.875rem;
}
.family-nav a.current { background: var(--accent); color: #fff; border-color: var(--accent); }
.post-nav { display: flex; justify-content: space-between; gap: 1rem; margin-top: 3rem; }

.post-card { padding: 1.25rem 0; border-bottom: 1px solid var(--border); }
.post-card h2 { margin: 0 0 0.25rem; }
.tag { margin-right: 0.5rem; font-size: 0.875rem; }
.paginator { display: flex; justify-content: space-between; margin-top: 2rem; }
.site-footer {
  padding: 2rem 1rem;
  text-align: center;
  color: var(--muted);
  border-top: 1px solid var(--border);
  margin-top: 3rem;
}

@media (max-width: 48rem) {
  .post-layout { grid-template-columns: 1fr; }
  #toc { display: none; }
}
`

const mainJS = `(function () {
  var cfg = window.__folio || {};
  var base = cfg.base || "";

  if (cfg.dev && "EventSource" in window) {
    var es = new EventSource(base + "/events");
    es.onmessage = function (ev) {
      if (ev.data === "reload") window.location.reload();
    };
  }

  if (!("WebAssembly" in window) || typeof Go === "undefined") return;
  if (!document.querySelector(".post-content")) return;

  var go = new Go();
  fetch(base + "/static/wasm/scrollspy.wasm")
    .then(function (resp) {
      if (WebAssembly.instantiateStreaming) {
        return WebAssembly.instantiateStreaming(resp, go.importObject);
      }
      return resp.arrayBuffer().then(function (buf) {
        return WebAssembly.instantiate(buf, go.importObject);
      });
    })
    .then(function (result) {
      go.run(result.instance);
      if (window.initScrollspy) window.initScrollspy();
    })
    .catch(function (err) {
      console.error("scrollspy failed to load", err);
    });
})();
`

// Run initializes a new folio site in the target directory (default ".").
func Run(args []string) {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	fmt.Println("🌱 Initializing new folio site...")

	today := time.Now().Format("2006-01-02")
	files := []struct {
		rel  string
		body string
	}{
		{"folio.yaml", defaultConfig},
		{filepath.Join("content", "blog", "welcome.md"), fmt.Sprintf(welcomePost, today)},
		{filepath.Join("content", "blog", "welcome", "going-deeper.md"), fmt.Sprintf(welcomeSubpost, today)},
		{filepath.Join("content", "authors", "owner.md"), ownerAuthor},
		{filepath.Join("templates", "layout.html"), layoutHTML},
		{filepath.Join("templates", "index.html"), indexHTML},
		{filepath.Join("templates", "404.html"), notFoundHTML},
		{filepath.Join("static", "css", "main.css"), mainCSS},
		{filepath.Join("static", "js", "main.js"), mainJS},
	}

	for _, f := range files {
		if err := writeIfAbsent(filepath.Join(target, f.rel), f.body); err != nil {
			fmt.Printf("❌ %s: %v\n", f.rel, err)
		}
	}
	_ = os.MkdirAll(filepath.Join(target, "static", "wasm"), 0755)

	fmt.Println("✅ Site ready. Next steps:")
	fmt.Println("   folio serve    # dev server with live reload")
	fmt.Println("   folio build    # production build into public/")
}

func writeIfAbsent(path, body string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("↷  %s exists, skipping\n", path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return err
	}
	fmt.Printf("✅ Created %s\n", path)
	return nil
}

// slugUnsafe matches characters that are unsafe in filenames and URLs.
var slugUnsafe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// sanitizeSlug converts a title to a safe filename slug.
func sanitizeSlug(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugUnsafe.ReplaceAllString(slug, "")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if len(slug) > 100 {
		slug = slug[:100]
	}
	return slug
}

// NewPost creates a post file under the blog dir. With a parent slug as the
// second argument the file lands under the parent's directory as a subpost.
func NewPost(cfg *config.Config, args []string) {
	if len(args) < 1 || args[0] == "" {
		fmt.Println("Usage: folio post \"My New Post Title\" [parent-slug]")
		return
	}

	title := args[0]
	slug := sanitizeSlug(title)
	if slug == "" {
		fmt.Println("❌ Error: Title produces empty slug after sanitization")
		return
	}

	dir := filepath.Join(cfg.ContentDir, content.BlogSubdir)
	order := 0
	if len(args) > 1 && args[1] != "" {
		parent := sanitizeSlug(args[1])
		if parent == "" {
			fmt.Println("❌ Error: Parent produces empty slug after sanitization")
			return
		}
		if _, err := os.Stat(filepath.Join(dir, parent+".md")); err != nil {
			fmt.Printf("❌ Error: Parent post %s.md does not exist\n", parent)
			return
		}
		dir = filepath.Join(dir, parent)
		order = nextOrder(dir)
	}

	filename := filepath.Join(dir, slug+".md")
	if _, err := os.Stat(filename); err == nil {
		fmt.Println("❌ Error: File already exists:", filename)
		return
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "title: %q\n", title)
	fmt.Fprintf(&sb, "date: %q\n", time.Now().Format("2006-01-02"))
	sb.WriteString("description: \"Enter a short description here...\"\n")
	sb.WriteString("tags: []\n")
	if order > 0 {
		fmt.Fprintf(&sb, "order: %d\n", order)
	}
	sb.WriteString("draft: false\n")
	sb.WriteString("---\n\n## Introduction\n\nStart writing here...\n")

	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Println("Error creating directory:", err)
		return
	}
	if err := os.WriteFile(filename, []byte(sb.String()), 0644); err != nil {
		fmt.Println("Error creating file:", err)
		return
	}
	fmt.Printf("✅ Created: %s\n", filename)
}

// nextOrder returns one past the number of sibling subposts already present.
func nextOrder(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 1
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			n++
		}
	}
	return n + 1
}
