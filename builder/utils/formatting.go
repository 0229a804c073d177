package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/foliogen/folio/builder/models"
)

// SortPosts orders posts newest first. Equal dates fall back to reverse
// title order so the result is stable across builds. Posts without a date
// sink to the end.
func SortPosts(posts []*models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].Title > posts[j].Title
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// SortSubposts orders subposts in reading order: oldest first, then by the
// explicit order field, then by id.
func SortSubposts(posts []*models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.Before(posts[j].CreatedAt)
		}
		if posts[i].Order != posts[j].Order {
			return posts[i].Order < posts[j].Order
		}
		return posts[i].ID < posts[j].ID
	})
}

func GetString(m map[string]interface{}, k string) string {
	if v, ok := m[k]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func GetSlice(m map[string]interface{}, k string) []string {
	var res []string
	if v, ok := m[k]; ok {
		if l, ok := v.([]interface{}); ok {
			for _, i := range l {
				res = append(res, fmt.Sprintf("%v", i))
			}
		}
	}
	return res
}

func GetBool(m map[string]interface{}, k string) bool {
	if v, ok := m[k]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func GetInt(m map[string]interface{}, k string) int {
	switch v := m[k].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// ParseDate accepts YYYY-MM-DD dates and RFC 3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and replaces every non-alphanumeric run with a
// single hyphen.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
