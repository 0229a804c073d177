package utils

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// SyncVFS synchronizes the targetDir directory from VFS to disk using
// parallel workers. If dirtyFiles is not nil, only files present in the map
// are synced, plus global artifacts that must always land on disk.
func SyncVFS(srcFs afero.Fs, targetDir string, dirtyFiles map[string]bool) error {
	fmt.Println("💾 Syncing in-memory filesystem to disk...")

	targetDirClean := filepath.Clean(targetDir)

	// Paths that must land on disk even when they are not in the dirty set,
	// keyed relative to the output dir.
	alwaysSync := map[string]bool{
		".nojekyll":                 true,
		"static/wasm/scrollspy.wasm": true,
		"static/wasm/wasm_exec.js":   true,
	}

	var filesToSync []string
	err := afero.Walk(srcFs, targetDirClean, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return os.MkdirAll(path, 0755)
		}

		if dirtyFiles != nil {
			rel, relErr := filepath.Rel(targetDirClean, path)
			if relErr != nil {
				rel = path
			}
			rel = filepath.ToSlash(rel)
			isStatic := strings.HasPrefix(rel, "static/")
			if !dirtyFiles[filepath.ToSlash(path)] && !alwaysSync[rel] && !isStatic {
				return nil
			}
		}

		filesToSync = append(filesToSync, path)
		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to scan VFS: %w", err)
	}

	numWorkers := runtime.NumCPU() * 2
	if numWorkers > 64 {
		numWorkers = 64
	}

	var wg sync.WaitGroup
	fileChan := make(chan string, len(filesToSync))
	errChan := make(chan error, len(filesToSync))

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range fileChan {
				if err := syncSingleFile(srcFs, path); err != nil {
					errChan <- err
				}
			}
		}()
	}

	for _, f := range filesToSync {
		fileChan <- f
	}
	close(fileChan)
	wg.Wait()
	close(errChan)

	if len(errChan) > 0 {
		return <-errChan
	}

	return nil
}

// createdDirs tracks directories already created in this process to avoid
// redundant MkdirAll calls.
var (
	createdDirs   = make(map[string]bool)
	createdDirsMu sync.RWMutex
)

func syncSingleFile(srcFs afero.Fs, path string) error {
	srcContent, err := afero.ReadFile(srcFs, path)
	if err != nil {
		return err
	}

	// Identical content on disk means nothing to do
	destContent, err := os.ReadFile(path)
	if err == nil && bytes.Equal(srcContent, destContent) {
		return nil
	}

	dir := filepath.Dir(path)

	createdDirsMu.RLock()
	exists := createdDirs[dir]
	createdDirsMu.RUnlock()

	if !exists {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		createdDirsMu.Lock()
		createdDirs[dir] = true
		createdDirsMu.Unlock()
	}

	return os.WriteFile(path, srcContent, 0644)
}
