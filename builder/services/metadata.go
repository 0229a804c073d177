package services

import (
	"context"
	"log/slog"

	"github.com/foliogen/folio/builder/cache"
	"github.com/foliogen/folio/builder/content"
	"github.com/foliogen/folio/builder/models"
)

type metadataService struct {
	source   ContentSource
	resolver *AuthorResolver
	logger   *slog.Logger
	cache    cache.Cache[string, models.PostMeta]
}

// NewMetadataService creates the metadata aggregator with an in-memory
// result cache keyed by post id.
func NewMetadataService(source ContentSource, logger *slog.Logger) MetadataService {
	return &metadataService{
		source:   source,
		resolver: NewAuthorResolver(source, logger),
		logger:   logger,
		cache:    cache.NewMemory[string, models.PostMeta](),
	}
}

// Meta computes the aggregated metadata for one post. Missing posts (and
// drafts, which the store never surfaces) fail with content.ErrNotFound.
func (s *metadataService) Meta(ctx context.Context, postID string) (models.PostMeta, error) {
	if cached, ok := s.cache.Get(postID); ok {
		return *cached, nil
	}

	post, err := s.source.Post(postID)
	if err != nil {
		return models.PostMeta{}, err
	}

	words, err := s.source.WordCount(postID)
	if err != nil {
		s.logger.Warn("word count failed", "id", postID, "error", err)
	}

	meta := models.PostMeta{
		Post:      post,
		WordCount: words,
		IsSubpost: content.IsSubpost(postID),
	}

	// Subposts never aggregate: their counts stay zero and combined stays
	// absent regardless of what the store would return.
	if !meta.IsSubpost {
		subs := s.source.Subposts(postID)
		meta.SubpostCount = len(subs)
		meta.HasSubposts = len(subs) > 0

		if meta.HasSubposts {
			combined := words
			for _, sub := range subs {
				n, err := s.source.WordCount(sub.ID)
				if err != nil {
					s.logger.Warn("word count failed", "id", sub.ID, "error", err)
					continue
				}
				combined += n
			}
			meta.CombinedWordCount = &combined
		}
	}

	meta.Authors = s.resolver.Resolve(post.Authors)

	s.cache.Set(postID, &meta)
	return meta, nil
}

// ClearCache drops every cached result. Called after the content store
// reloads, since any post or subpost change can shift the aggregates.
func (s *metadataService) ClearCache() {
	s.cache.Clear()
}
