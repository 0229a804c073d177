package run

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/foliogen/folio/builder/content"
	"github.com/foliogen/folio/builder/models"
	"github.com/foliogen/folio/builder/utils"
)

// renderListPages renders the paginated index, the tag pages, and the author
// pages. Only main posts appear on the index; tag and author pages list every
// matching post.
func (b *Builder) renderListPages(ctx context.Context) {
	metas := b.metaFor(ctx, b.store.MainPosts())
	b.renderPagination(metas)
	b.renderTagPages(ctx)
	b.renderAuthorPages(ctx)
}

func (b *Builder) metaFor(ctx context.Context, posts []*models.Post) []models.PostMeta {
	out := make([]models.PostMeta, 0, len(posts))
	for _, p := range posts {
		m, err := b.meta.Meta(ctx, p.ID)
		if err != nil {
			b.logger.Warn("post metadata unavailable", "post", p.ID, "error", err)
			m = models.PostMeta{Post: p, IsSubpost: content.IsSubpost(p.ID)}
		}
		out = append(out, m)
	}
	return out
}

func (b *Builder) renderPagination(all []models.PostMeta) {
	cfg := b.cfg
	perPage := cfg.PostsPerPage
	if perPage <= 0 {
		perPage = len(all)
		if perPage == 0 {
			perPage = 1
		}
	}
	totalPages := int(math.Ceil(float64(len(all)) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}
	lastUpdated := b.store.LastUpdated()

	for i := 1; i <= totalPages; i++ {
		start, end := pageBounds(i, perPage, len(all))
		destPath, permalink := b.outPath("index.html"), cfg.BaseURL+"/"
		if i > 1 {
			destPath = b.outPath(filepath.Join("page", strconv.Itoa(i), "index.html"))
			permalink = fmt.Sprintf("%s/page/%d/", cfg.BaseURL, i)
		}
		data := models.PageData{
			Title:        cfg.Title,
			TabTitle:     cfg.Title,
			Description:  cfg.Description,
			BaseURL:      cfg.BaseURL,
			IsIndex:      true,
			Posts:        all[start:end],
			Paginator:    buildPaginator(i, totalPages, cfg.BaseURL),
			LastUpdated:  lastUpdated,
			Permalink:    permalink,
			BuildVersion: cfg.BuildVersion,
			Config:       cfg,
		}
		if err := b.rnd.RenderIndex(destPath, data); err != nil {
			b.metrics.IncrementErrors()
			b.logger.Error("render index failed", "page", i, "error", err)
		}
	}
}

// pageBounds returns the half-open slice bounds of one index page.
func pageBounds(page, perPage, total int) (int, int) {
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}

func buildPaginator(page, totalPages int, baseURL string) models.Paginator {
	p := models.Paginator{
		CurrentPage: page,
		TotalPages:  totalPages,
		HasPrev:     page > 1,
		HasNext:     page < totalPages,
		FirstURL:    baseURL + "/#latest",
		LastURL:     fmt.Sprintf("%s/page/%d/#latest", baseURL, totalPages),
	}
	if totalPages == 1 {
		p.LastURL = p.FirstURL
	}
	switch {
	case page > 2:
		p.PrevURL = fmt.Sprintf("%s/page/%d/#latest", baseURL, page-1)
	case page == 2:
		p.PrevURL = baseURL + "/#latest"
	}
	if page < totalPages {
		p.NextURL = fmt.Sprintf("%s/page/%d/#latest", baseURL, page+1)
	}
	return p
}

func (b *Builder) renderTagPages(ctx context.Context) {
	cfg := b.cfg
	tags := b.store.Tags()
	for i := range tags {
		tags[i].Link = fmt.Sprintf("%s/tags/%s.html", cfg.BaseURL, tags[i].Name)
	}

	index := models.PageData{
		Title:        "All Tags",
		TabTitle:     "All Topics | " + cfg.Title,
		IsTagsIndex:  true,
		AllTags:      tags,
		BaseURL:      cfg.BaseURL,
		Permalink:    cfg.BaseURL + "/tags/index.html",
		BuildVersion: cfg.BuildVersion,
		Config:       cfg,
	}
	if err := b.rnd.RenderPage(b.outPath(filepath.Join("tags", "index.html")), index); err != nil {
		b.metrics.IncrementErrors()
		b.logger.Error("render tags index failed", "error", err)
	}

	pool := utils.NewWorkerPool(ctx, cfg.Workers, func(tag models.TagData) {
		b.renderTagPage(ctx, tag)
	})
	pool.Start()
	for _, t := range tags {
		pool.Submit(t)
	}
	pool.Stop()
}

func (b *Builder) renderTagPage(ctx context.Context, tag models.TagData) {
	cfg := b.cfg
	data := models.PageData{
		Title:        "#" + tag.Name,
		TabTitle:     "#" + tag.Name + " | " + cfg.Title,
		IsIndex:      true,
		Posts:        b.metaFor(ctx, b.store.PostsByTag(tag.Name)),
		BaseURL:      cfg.BaseURL,
		Permalink:    tag.Link,
		BuildVersion: cfg.BuildVersion,
		Config:       cfg,
	}
	if err := b.rnd.RenderPage(b.outPath(filepath.Join("tags", tag.Name+".html")), data); err != nil {
		b.metrics.IncrementErrors()
		b.logger.Error("render tag page failed", "tag", tag.Name, "error", err)
	}
}

func (b *Builder) renderAuthorPages(ctx context.Context) {
	cfg := b.cfg
	authors := b.store.Authors()
	if len(authors) == 0 {
		return
	}

	all := make([]models.Author, 0, len(authors))
	for _, a := range authors {
		all = append(all, *a)
	}
	index := models.PageData{
		Title:        "Authors",
		TabTitle:     "Authors | " + cfg.Title,
		AllAuthors:   all,
		BaseURL:      cfg.BaseURL,
		Permalink:    cfg.BaseURL + "/authors/index.html",
		BuildVersion: cfg.BuildVersion,
		Config:       cfg,
	}
	if err := b.rnd.RenderPage(b.outPath(filepath.Join("authors", "index.html")), index); err != nil {
		b.metrics.IncrementErrors()
		b.logger.Error("render authors index failed", "error", err)
	}

	for _, a := range authors {
		data := models.PageData{
			Title:        a.Name,
			TabTitle:     a.Name + " | " + cfg.Title,
			Author:       a,
			IsIndex:      true,
			Posts:        b.metaFor(ctx, b.store.PostsByAuthor(a.ID)),
			BaseURL:      cfg.BaseURL,
			Permalink:    fmt.Sprintf("%s/authors/%s.html", cfg.BaseURL, a.ID),
			BuildVersion: cfg.BuildVersion,
			Config:       cfg,
		}
		if err := b.rnd.RenderPage(b.outPath(filepath.Join("authors", a.ID+".html")), data); err != nil {
			b.metrics.IncrementErrors()
			b.logger.Error("render author page failed", "author", a.ID, "error", err)
		}
	}
}

func (b *Builder) render404() {
	cfg := b.cfg
	data := models.PageData{
		TabTitle:     "404 - Page Not Found | " + cfg.Title,
		BaseURL:      cfg.BaseURL,
		BuildVersion: cfg.BuildVersion,
		Config:       cfg,
	}
	if err := b.rnd.Render404(b.outPath("404.html"), data); err != nil {
		b.metrics.IncrementErrors()
		b.logger.Error("render 404 failed", "error", err)
	}
}
