package server

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	base := t.TempDir()

	got, err := validatePath(base, "/blog/intro.html")
	if err != nil {
		t.Fatalf("validatePath() error = %v", err)
	}
	want := filepath.Join(base, "blog", "intro.html")
	if got != want {
		t.Errorf("validatePath() = %q, want %q", got, want)
	}

	if _, err := validatePath(base, "../outside.txt"); err == nil {
		t.Error("validatePath() should reject paths escaping the base dir")
	}
	if _, err := validatePath(base, "../../etc/passwd"); err == nil {
		t.Error("validatePath() should reject deep traversal")
	}

	// A rooted path stays rooted at the base dir.
	got, err = validatePath(base, "/../../etc/passwd")
	if err != nil {
		t.Fatalf("validatePath() error = %v", err)
	}
	if !strings.HasPrefix(got, base) {
		t.Errorf("validatePath() = %q, escapes %q", got, base)
	}
}

func TestNormalizeRequestPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/blog//intro.html", "/blog/intro.html"},
		{"/a/./b", "/a/b"},
		{"/a/../b", "/b"},
	}
	for _, tt := range tests {
		if got := normalizeRequestPath(tt.in); got != tt.want {
			t.Errorf("normalizeRequestPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsHashedAsset(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"main.AB12CD34.css", true},
		{"app.XK5ZQ7AW.js", true},
		{"style.ABCD1234EF.css", true},
		{"main.css", false},
		{"main.min.css", false},
		{"archive.november.js", false},
		{"index.html", false},
	}
	for _, tt := range tests {
		if got := isHashedAsset(tt.name); got != tt.want {
			t.Errorf("isHashedAsset(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
