// Package clean removes build artifacts.
package clean

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foliogen/folio/builder/config"
)

// Run removes the output dir, and the cache dir when cleanCache is set.
// Directories are renamed aside first so deletion happens off the critical
// path and a rebuild can start immediately.
func Run(cfg *config.Config, cleanCache bool) {
	start := time.Now()

	cleanDirAsync(cfg.OutputDir)
	if cleanCache {
		cleanDirAsync(cfg.CacheDir)
	}

	fmt.Printf("🧹 Clean initiated in %v (backgrounding deletion).\n", time.Since(start))
}

func cleanDirAsync(absPath string) {
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return
	}

	tempName := fmt.Sprintf("%s_deleting_%d", filepath.Base(absPath), time.Now().UnixNano())
	tempPath := filepath.Join(filepath.Dir(absPath), tempName)

	fmt.Printf("🧹 Moving '%s' to trash...\n", absPath)
	if err := os.Rename(absPath, tempPath); err != nil {
		fmt.Printf("⚠️ Rename failed (%v), deleting synchronously...\n", err)
		if err := os.RemoveAll(absPath); err != nil {
			fmt.Printf("❌ Failed to remove '%s': %v\n", absPath, err)
		}
		return
	}

	go func() {
		_ = os.RemoveAll(tempPath)
	}()
}
