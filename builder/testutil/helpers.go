// Package testutil provides shared fixtures and assertions for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/foliogen/folio/builder/cache"
)

// CreateTestCache opens a cache manager in a fresh temp directory. The
// returned cleanup closes it.
func CreateTestCache(t *testing.T) (*cache.Manager, func()) {
	t.Helper()
	m, err := cache.Open(t.TempDir(), false)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	return m, func() {
		_ = m.Close()
	}
}

// WriteTestFile writes one file into fsys, creating parent directories.
func WriteTestFile(tb testing.TB, fsys afero.Fs, path, content string) {
	tb.Helper()
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		tb.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := afero.WriteFile(fsys, path, []byte(content), 0644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}

// AssertFileExists fails the test when path is missing from fsys.
func AssertFileExists(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if !exists {
		t.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test when path is present in fsys.
func AssertFileNotExists(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if exists {
		t.Errorf("expected file to not exist: %s", path)
	}
}

// AssertFileContent fails the test unless path holds exactly expected.
func AssertFileContent(t *testing.T, fsys afero.Fs, path string, expected []byte) {
	t.Helper()
	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if string(content) != string(expected) {
		t.Errorf("content of %s:\nexpected: %s\ngot: %s", path, expected, content)
	}
}
