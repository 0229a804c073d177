// Package services computes the per-post view context: aggregated metadata,
// newer/older/parent navigation, and multi-section tables of contents.
package services

import (
	"context"

	"github.com/foliogen/folio/builder/models"
)

// ContentSource is the slice of the content store the post services read.
// *content.Store satisfies it; tests substitute a mock.
type ContentSource interface {
	Post(id string) (*models.Post, error)
	MainPosts() []*models.Post
	Subposts(parentID string) []*models.Post
	Headings(id string) ([]models.TOCEntry, error)
	WordCount(id string) (int, error)
	Author(ref models.AuthorRef) (*models.Author, error)
}

// URLResolver turns a post id into the page URL the presentation layer
// serves it under. Injected so the services stay routing-agnostic.
type URLResolver func(postID string) string

// MetadataService aggregates computed metadata for one post.
type MetadataService interface {
	Meta(ctx context.Context, postID string) (models.PostMeta, error)
	ClearCache()
}

// NavigationService resolves newer/older/parent links.
type NavigationService interface {
	Neighbors(postID string) models.PostNavigation
}

// TOCService assembles table-of-contents sections for a post family.
type TOCService interface {
	Sections(ctx context.Context, currentID string, maxDepth int) ([]models.TOCSection, error)
}

// ContextService is the facade handing templates one complete post context.
type ContextService interface {
	PostContext(ctx context.Context, postID string) (*models.PostContext, error)
	ClearCaches()
}
