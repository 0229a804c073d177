package content

import "testing"

func TestIsSubpost(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"intro", false},
		{"intro/details", true},
		{"intro/details/deeper", true},
		{"", false},
		{"/leading", true},
		{"trailing/", true},
	}

	for _, tt := range tests {
		if got := IsSubpost(tt.id); got != tt.want {
			t.Errorf("IsSubpost(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestParentID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"intro/details", "intro"},
		{"intro/details/deeper", "intro"},
		{"a/b", "a"},
	}

	for _, tt := range tests {
		if got := ParentID(tt.id); got != tt.want {
			t.Errorf("ParentID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
