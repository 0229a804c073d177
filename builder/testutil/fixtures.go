package testutil

import (
	"fmt"
	"strings"
	"time"
)

// CreatePostMarkdown builds post source text with the given frontmatter and
// body, in the shape the content store parses.
func CreatePostMarkdown(title string, date time.Time, tags []string, body string) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "title: %q\n", title)
	fmt.Fprintf(&sb, "date: %s\n", date.Format("2006-01-02"))
	if len(tags) > 0 {
		sb.WriteString("tags:\n")
		for _, tag := range tags {
			fmt.Fprintf(&sb, "  - %s\n", tag)
		}
	}
	sb.WriteString("---\n\n")
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	return sb.String()
}

// CreateSubpostMarkdown builds subpost source text with an explicit reading
// order.
func CreateSubpostMarkdown(title string, date time.Time, order int, body string) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "title: %q\n", title)
	fmt.Fprintf(&sb, "date: %s\n", date.Format("2006-01-02"))
	fmt.Fprintf(&sb, "order: %d\n", order)
	sb.WriteString("---\n\n")
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	return sb.String()
}
