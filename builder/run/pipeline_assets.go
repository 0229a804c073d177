package run

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/foliogen/folio/builder/utils"
)

// copyStaticAndBuildAssets copies the static tree into the output VFS and
// runs the esbuild pipeline over its CSS and JS, recording hashed output
// names for template lookups.
func (b *Builder) copyStaticAndBuildAssets() error {
	cfg := b.cfg
	staticDest := b.outPath("static")

	if ok, _ := afero.DirExists(b.SourceFs, cfg.StaticDir); !ok {
		b.logger.Warn("static directory missing", "dir", cfg.StaticDir)
		return nil
	}

	if err := utils.CopyDirFs(b.SourceFs, b.DestFs, cfg.StaticDir, staticDest, false); err != nil {
		return fmt.Errorf("copy static files: %w", err)
	}

	assets, err := utils.BuildAssetsEsbuild(b.SourceFs, b.DestFs, cfg.StaticDir, staticDest, cfg.Minify, b.rnd.RegisterFile)
	if err != nil {
		return fmt.Errorf("build assets: %w", err)
	}
	b.rnd.SetAssets(assets)
	return nil
}
