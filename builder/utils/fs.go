package utils

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

// NormalizePath lowercases a path, converts separators to forward slashes,
// and strips the content/ prefix so cache keys match across platforms.
func NormalizePath(path string) string {
	if !strings.Contains(path, "\\") && !strings.HasPrefix(path, "content/") {
		return strings.ToLower(path)
	}

	var b strings.Builder
	b.Grow(len(path))

	skipContent := strings.HasPrefix(path, "content/") || strings.HasPrefix(path, "content\\")
	start := 0
	if skipContent {
		start = 8
	}

	for i := start; i < len(path); i++ {
		c := path[i]
		if c == '\\' {
			b.WriteByte('/')
		} else if c >= 'A' && c <= 'Z' {
			b.WriteByte(c + 32)
		} else {
			b.WriteByte(c)
		}
	}

	result := b.String()

	if runtime.GOOS == "windows" && len(result) >= 2 && result[1] == ':' {
		return strings.ToUpper(result[:1]) + result[1:]
	}

	return result
}

// WriteFileVFS writes data to a virtual filesystem, creating parent
// directories as needed.
func WriteFileVFS(fs afero.Fs, path string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write VFS file %s: %w", path, err)
	}
	return nil
}

// CopyDirFs copies a directory tree between filesystems, minifying CSS and
// JS on the way when compress is set.
func CopyDirFs(srcFs, destFs afero.Fs, src, dst string, compress bool) error {
	return afero.Walk(srcFs, src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return destFs.MkdirAll(destPath, info.Mode())
		}

		data, err := afero.ReadFile(srcFs, path)
		if err != nil {
			return err
		}

		if compress && Minifier != nil {
			switch strings.ToLower(filepath.Ext(path)) {
			case ".css":
				if min, err := Minifier.Bytes("text/css", data); err == nil {
					data = min
				}
			case ".js":
				if min, err := Minifier.Bytes("text/javascript", data); err == nil {
					data = min
				}
			}
		}

		return WriteFileVFS(destFs, destPath, data)
	})
}

// HashDirsFast fingerprints directory trees from file metadata alone. Used
// to detect source changes without reading file contents.
func HashDirsFast(dirs []string) (string, error) {
	h := blake3.New()
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(h, "%s:%d:%d;", path, info.Size(), info.ModTime().UnixNano()); err != nil {
				return fmt.Errorf("failed to write to hash: %w", err)
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
