package services

import (
	"log/slog"
	"sync"

	"github.com/foliogen/folio/builder/models"
)

// AuthorResolver resolves frontmatter author references into full records.
type AuthorResolver struct {
	source ContentSource
	logger *slog.Logger
}

func NewAuthorResolver(source ContentSource, logger *slog.Logger) *AuthorResolver {
	return &AuthorResolver{source: source, logger: logger}
}

// Resolve looks up every reference in parallel and returns the successes in
// input order. A reference that fails to resolve is logged and dropped; one
// bad reference never fails the rest.
func (r *AuthorResolver) Resolve(refs []models.AuthorRef) []models.Author {
	if len(refs) == 0 {
		return nil
	}

	resolved := make([]*models.Author, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref models.AuthorRef) {
			defer wg.Done()
			a, err := r.source.Author(ref)
			if err != nil {
				r.logger.Warn("dropping unresolvable author", "collection", ref.Collection, "id", ref.ID, "error", err)
				return
			}
			resolved[i] = a
		}(i, ref)
	}
	wg.Wait()

	out := make([]models.Author, 0, len(refs))
	for _, a := range resolved {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}
