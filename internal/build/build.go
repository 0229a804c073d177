// Package build keeps the scrollspy WASM binary in sync with its sources.
package build

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/foliogen/folio/builder/cache"
	"github.com/foliogen/folio/builder/utils"
)

// EnsureScrollspy rebuilds the scrollspy WASM binary into the static dir
// when its sources changed since the last build. The source hash persists in
// the build cache, so unchanged sources cost one metadata walk.
func EnsureScrollspy(manager *cache.Manager, staticDir string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	wasmOut := filepath.Join(staticDir, "wasm", "scrollspy.wasm")
	if err := os.MkdirAll(filepath.Dir(wasmOut), 0755); err != nil {
		return fmt.Errorf("create wasm dir: %w", err)
	}

	srcDirs := []string{
		filepath.Join("cmd", "scrollspy"),
		filepath.Join("builder", "scrollspy"),
	}
	if !dirsPresent(srcDirs) {
		// No source tree here (installed binary or detached site dir). Keep
		// whatever wasm is already present.
		if _, statErr := os.Stat(wasmOut); statErr == nil {
			return nil
		}
		return fmt.Errorf("scrollspy sources unavailable and %s missing", wasmOut)
	}
	srcHash, err := utils.HashDirsFast(srcDirs)
	if err != nil {
		return fmt.Errorf("hash scrollspy sources: %w", err)
	}

	cachedHash, _ := manager.GetWasmHash()
	if _, statErr := os.Stat(wasmOut); statErr == nil && cachedHash == srcHash {
		return nil
	}

	fmt.Println("🚀 Building scrollspy WASM...")
	cmd := exec.Command("go", "build", "-ldflags=-s -w", "-o", wasmOut, "./cmd/scrollspy")
	cmd.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("wasm build failed: %w", err)
	}

	if err := ensureWasmExec(filepath.Join(staticDir, "wasm", "wasm_exec.js")); err != nil {
		logger.Warn("wasm_exec.js unavailable", "error", err)
	}
	if err := manager.SetWasmHash(srcHash); err != nil {
		logger.Warn("failed to store wasm hash", "error", err)
	}
	fmt.Println("✅ WASM build complete.")
	return nil
}

func dirsPresent(dirs []string) bool {
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

// ensureWasmExec copies the Go runtime shim next to the wasm binary. Go
// moved it from misc/wasm to lib/wasm in 1.24.
func ensureWasmExec(dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	}
	out, err := exec.Command("go", "env", "GOROOT").Output()
	if err != nil {
		return fmt.Errorf("locate GOROOT: %w", err)
	}
	goroot := strings.TrimSpace(string(out))
	for _, rel := range []string{
		filepath.Join("lib", "wasm", "wasm_exec.js"),
		filepath.Join("misc", "wasm", "wasm_exec.js"),
	} {
		data, err := os.ReadFile(filepath.Join(goroot, rel))
		if err != nil {
			continue
		}
		return os.WriteFile(dest, data, 0644)
	}
	return fmt.Errorf("wasm_exec.js not found under %s", goroot)
}
