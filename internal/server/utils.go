package server

import (
	"fmt"
	"path/filepath"
	"strings"
)

// validatePath resolves userPath inside baseDir and rejects anything that
// escapes it.
func validatePath(baseDir, userPath string) (string, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base directory: %w", err)
	}

	cleanPath := filepath.Clean(userPath)
	absUserPath, err := filepath.Abs(filepath.Join(absBase, cleanPath))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	rel, err := filepath.Rel(absBase, absUserPath)
	if err != nil {
		return "", fmt.Errorf("path validation error: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt detected")
	}

	return absUserPath, nil
}

// normalizeRequestPath cleans the request path for consistent lookups across
// platforms.
func normalizeRequestPath(rawPath string) string {
	return filepath.ToSlash(filepath.Clean(rawPath))
}

// isHashedAsset reports whether filename carries a content hash from the
// asset pipeline, e.g. main.AB12CD34.css. Esbuild hashes are 8 uppercase
// base32 characters. Hashed assets cache forever.
func isHashedAsset(filename string) bool {
	parts := strings.Split(filename, ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 || len(hash) > 12 {
		return false
	}
	for _, c := range hash {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
