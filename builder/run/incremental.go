package run

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/foliogen/folio/builder/cache"
	"github.com/foliogen/folio/builder/content"
	"github.com/foliogen/folio/builder/utils"
)

// BuildChanged rebuilds the smallest portion of the site for one changed
// file. Markdown edits fast-track through the family of the touched post;
// template and config changes force a full rebuild, everything else falls
// back to a normal build where unchanged posts skip via the cache.
func (b *Builder) BuildChanged(ctx context.Context, changedPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isContentMarkdown(changedPath) {
		if b.isTemplatePath(changedPath) || isConfigPath(changedPath) {
			b.cfg.ForceRebuild = true
		}
		return b.build(ctx)
	}

	start := time.Now()
	b.metrics.Reset()
	b.metrics.IsIncremental = true
	b.metrics.ChangedFiles = []string{changedPath}

	if err := b.store.ReloadFile(changedPath); err != nil {
		return fmt.Errorf("reload %s: %w", changedPath, err)
	}
	b.context.ClearCaches()
	b.meta.ClearCache()

	id, ok := b.store.IDForPath(changedPath)
	if !ok {
		return b.build(ctx)
	}

	// A subpost edit changes the parent's TOC and every sibling's nav, so
	// the whole family re-renders.
	parent := id
	if content.IsSubpost(id) {
		parent = content.ParentID(id)
	}
	family := []string{parent}
	for _, sp := range b.store.Subposts(parent) {
		family = append(family, sp.ID)
	}
	// Dirty marks survive a failed sync, so the next build re-renders the
	// family even though the source hashes match the cache.
	for _, fid := range family {
		b.cache.MarkDirty(fid)
	}

	var records []*cache.PostRecord
	for _, fid := range family {
		post, err := b.store.Post(fid)
		if err != nil {
			if delErr := b.cache.DeletePost(fid); delErr != nil {
				b.logger.Warn("cache delete failed", "post", fid, "error", delErr)
			}
			continue
		}
		rec, _, err := b.renderPost(ctx, post, true)
		if err != nil {
			b.metrics.IncrementErrors()
			b.logger.Error("render post failed", "post", post.ID, "error", err)
			continue
		}
		if rec != nil {
			records = append(records, rec)
		}
	}

	b.renderListPages(ctx)

	if err := b.commitRecords(records); err != nil {
		b.logger.Warn("cache commit failed", "error", err)
	}
	if err := utils.SyncVFS(b.DestFs, b.cfg.OutputDir, b.rnd.GetRenderedFiles()); err != nil {
		return fmt.Errorf("sync output: %w", err)
	}
	b.rnd.ClearRenderedFiles()
	b.cache.ClearDirty()

	b.metrics.RecordEnd()
	fmt.Printf("⚡ Rebuilt %d pages in %v\n", len(family), time.Since(start).Round(time.Millisecond))
	return nil
}

func (b *Builder) isContentMarkdown(path string) bool {
	if !strings.HasSuffix(path, ".md") {
		return false
	}
	return underDir(b.cfg.ContentDir, path)
}

func (b *Builder) isTemplatePath(path string) bool {
	return strings.HasSuffix(path, ".html") && underDir(b.cfg.TemplateDir, path)
}

func isConfigPath(path string) bool {
	base := filepath.Base(path)
	return base == "folio.yaml" || base == "config.yaml"
}

func underDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
