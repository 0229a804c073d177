package run

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/foliogen/folio/builder/cache"
	"github.com/foliogen/folio/builder/models"
	"github.com/foliogen/folio/builder/utils"
)

// renderPosts renders every post page through the worker pool. Posts whose
// source hash matches the cache and whose output already exists on disk are
// skipped unless force is set. Returns the cache records of rendered posts
// and whether any page changed.
func (b *Builder) renderPosts(ctx context.Context, force bool, workers int) ([]*cache.PostRecord, bool, error) {
	posts := b.store.Posts()
	fmt.Printf("📝 Processing %d posts...\n", len(posts))

	var (
		mu         sync.Mutex
		records    []*cache.PostRecord
		anyChanged bool
	)

	pool := utils.NewWorkerPool(ctx, workers, func(post *models.Post) {
		rec, changed, err := b.renderPost(ctx, post, force)
		if err != nil {
			b.metrics.IncrementErrors()
			b.logger.Error("render post failed", "post", post.ID, "error", err)
			return
		}
		mu.Lock()
		if rec != nil {
			records = append(records, rec)
		}
		anyChanged = anyChanged || changed
		mu.Unlock()
	})
	pool.Start()
	for _, p := range posts {
		pool.Submit(p)
	}
	pool.Stop()

	return records, anyChanged, ctx.Err()
}

func (b *Builder) renderPost(ctx context.Context, post *models.Post, force bool) (*cache.PostRecord, bool, error) {
	srcHash := cache.HashContent(post.Source)
	destPath := b.outPath(outputRelPath(post.ID))

	if !force && !b.cache.IsDirty(post.ID) {
		cached, err := b.cache.GetPostByID(post.ID)
		if err == nil && cached != nil && cached.ContentHash == srcHash {
			if _, statErr := os.Stat(destPath); statErr == nil {
				b.metrics.IncrementFilesSkipped()
				return nil, false, nil
			}
		}
	}

	pc, err := b.context.PostContext(ctx, post.ID)
	if err != nil {
		return nil, false, err
	}
	html, err := b.store.RenderHTML(post.ID)
	if err != nil {
		return nil, false, err
	}

	data := models.PageData{
		Title:        post.Title,
		TabTitle:     post.Title + " | " + b.cfg.Title,
		Description:  post.Description,
		BaseURL:      b.cfg.BaseURL,
		Content:      template.HTML(html),
		Context:      pc,
		BuildVersion: b.cfg.BuildVersion,
		Permalink:    pageURL(b.cfg.BaseURL, post.ID),
		Config:       b.cfg,
	}
	if post.Image != "" {
		data.Image = b.cfg.BaseURL + "/" + strings.TrimPrefix(post.Image, "/")
	}
	if err := b.rnd.RenderPage(destPath, data); err != nil {
		return nil, false, err
	}
	b.metrics.IncrementPostsProcessed()
	b.metrics.IncrementFilesWritten()

	rec := b.recordFor(post, pc, srcHash)
	if err := b.cache.StoreHTMLForPost(rec, []byte(html)); err != nil {
		b.logger.Warn("cache store failed", "post", post.ID, "error", err)
	}
	return rec, true, nil
}

// recordFor snapshots a rendered post into its cache record.
func (b *Builder) recordFor(post *models.Post, pc *models.PostContext, srcHash string) *cache.PostRecord {
	refs := make([]string, 0, len(post.Authors))
	for _, ref := range post.Authors {
		refs = append(refs, ref.Collection+"/"+ref.ID)
	}
	toc, _ := b.store.Headings(post.ID)

	var mod int64
	if info, err := b.SourceFs.Stat(filepath.Join(b.cfg.ContentDir, post.Path)); err == nil {
		mod = info.ModTime().Unix()
	}

	return &cache.PostRecord{
		ID:          post.ID,
		Path:        post.Path,
		ModTime:     mod,
		ContentHash: srcHash,
		Title:       post.Title,
		Description: post.Description,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
		Tags:        post.Tags,
		Authors:     refs,
		Draft:       post.Draft,
		Order:       post.Order,
		Image:       post.Image,
		WordCount:   pc.Meta.WordCount,
		TOC:         toc,
	}
}

// commitRecords writes the post and author records in one transaction.
func (b *Builder) commitRecords(records []*cache.PostRecord) error {
	authors := b.store.Authors()
	authorRecs := make([]*cache.AuthorRecord, 0, len(authors))
	for _, a := range authors {
		authorRecs = append(authorRecs, &cache.AuthorRecord{
			ID:          a.ID,
			ContentHash: cache.HashString(a.Name + "|" + a.Bio + "|" + a.Avatar + "|" + a.URL),
			Name:        a.Name,
			Avatar:      a.Avatar,
			Bio:         a.Bio,
			URL:         a.URL,
		})
	}
	if len(records) == 0 && len(authorRecs) == 0 {
		return nil
	}
	return b.cache.BatchCommit(records, authorRecs)
}

// pruneStaleRecords drops cache records whose source files no longer exist.
// Only safe after a full store load, when the store holds the complete live
// set. Draft records survive production builds, where drafts never load.
func (b *Builder) pruneStaleRecords() {
	livePosts := make(map[string]bool)
	for _, p := range b.store.Posts() {
		livePosts[p.ID] = true
	}
	ids, err := b.cache.ListAllPosts()
	if err != nil {
		b.logger.Warn("cache list failed", "error", err)
		return
	}
	pruned := 0
	for _, id := range ids {
		if livePosts[id] {
			continue
		}
		if !b.cfg.IncludeDrafts {
			if rec, err := b.cache.GetPostByID(id); err == nil && rec != nil && rec.Draft {
				continue
			}
		}
		if err := b.cache.DeletePost(id); err != nil {
			b.logger.Warn("cache delete failed", "post", id, "error", err)
			continue
		}
		pruned++
	}

	liveAuthors := make(map[string]bool)
	for _, a := range b.store.Authors() {
		liveAuthors[a.ID] = true
	}
	authorIDs, err := b.cache.ListAllAuthors()
	if err != nil {
		b.logger.Warn("cache list failed", "error", err)
		return
	}
	for _, id := range authorIDs {
		if liveAuthors[id] {
			continue
		}
		if err := b.cache.DeleteAuthor(id); err != nil {
			b.logger.Warn("cache delete failed", "author", id, "error", err)
			continue
		}
		pruned++
	}

	if pruned > 0 {
		b.logger.Info("cache pruned", "records", pruned)
	}
}
