// Package content implements the filesystem-backed content store: post and
// author records parsed from markdown frontmatter, with draft filtering and
// cached rendering.
package content

import "strings"

// Separator nests a subpost id under its parent ("intro/details").
const Separator = "/"

// IsSubpost reports whether id names a subpost. The separator is the sole
// criterion; there is no other heuristic.
func IsSubpost(id string) bool {
	return strings.Contains(id, Separator)
}

// ParentID returns the id before the first separator. The result is only
// meaningful when IsSubpost(id) is true; callers must guard.
func ParentID(id string) string {
	if i := strings.Index(id, Separator); i >= 0 {
		return id[:i]
	}
	return id
}
