package run

import (
	"context"
	"fmt"
	"runtime"

	"github.com/foliogen/folio/builder/utils"
)

// Build executes a single full build pass.
func (b *Builder) Build(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.build(ctx)
}

func (b *Builder) build(ctx context.Context) error {
	cfg := b.cfg
	b.metrics.Reset()

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	fmt.Printf("🔨 Building site... (Version: %d) | Parallel Workers: %d\n", cfg.BuildVersion, workers)

	lock, err := utils.AcquireBuildLock(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("acquire build lock: %w", err)
	}
	defer func() { _ = lock.Release() }()

	if err := b.rnd.ReloadIfChanged(); err != nil {
		return err
	}

	force := cfg.ForceRebuild
	cfg.ForceRebuild = false

	if err := b.store.Load(ctx); err != nil {
		return fmt.Errorf("load content: %w", err)
	}

	// Post pages look hashed asset names up through the renderer, so assets
	// land in the VFS before any page renders.
	if err := b.copyStaticAndBuildAssets(); err != nil {
		return err
	}
	_ = utils.WriteFileVFS(b.DestFs, b.outPath(".nojekyll"), []byte(""))

	records, anyChanged, err := b.renderPosts(ctx, force, workers)
	if err != nil {
		return err
	}

	if force || anyChanged {
		b.renderListPages(ctx)
	}
	b.render404()

	if err := b.commitRecords(records); err != nil {
		b.logger.Warn("cache commit failed", "error", err)
	}
	b.pruneStaleRecords()
	if force {
		if res, err := b.cache.Sweep(); err == nil && res.Deleted > 0 {
			b.logger.Info("cache swept", "deleted", res.Deleted, "scanned", res.Scanned)
		}
	}

	if err := utils.SyncVFS(b.DestFs, cfg.OutputDir, b.rnd.GetRenderedFiles()); err != nil {
		return fmt.Errorf("sync output: %w", err)
	}
	b.rnd.ClearRenderedFiles()
	b.cache.ClearDirty()

	b.metrics.RecordEnd()
	fmt.Println(b.metrics.String())
	return nil
}
