package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/foliogen/folio/builder/content"
	"github.com/foliogen/folio/builder/models"
)

// OverviewLabel titles the main post's TOC section. The post's own title
// already heads the page, so the section gets a fixed label instead.
const OverviewLabel = "Overview"

type tocService struct {
	source ContentSource
	urlFor URLResolver
	logger *slog.Logger
}

func NewTOCService(source ContentSource, urlFor URLResolver, logger *slog.Logger) TOCService {
	return &tocService{source: source, urlFor: urlFor, logger: logger}
}

// Sections assembles the TOC for the family of currentID: the main post's
// section first, then one per subpost in reading order. Posts without a
// qualifying heading are skipped. maxDepth <= 0 means no TOC; a missing
// post yields an empty result, not an error.
func (s *tocService) Sections(ctx context.Context, currentID string, maxDepth int) ([]models.TOCSection, error) {
	if maxDepth <= 0 {
		return nil, nil
	}

	parentID := currentID
	if content.IsSubpost(currentID) {
		parentID = content.ParentID(currentID)
	}
	if _, err := s.source.Post(parentID); err != nil {
		return nil, nil
	}

	var sections []models.TOCSection
	if hs := s.headingsFor(parentID, currentID, maxDepth); len(hs) > 0 {
		sections = append(sections, models.TOCSection{
			PostID:   parentID,
			Title:    OverviewLabel,
			Headings: hs,
		})
	}

	subs := s.source.Subposts(parentID)
	extracted := make([][]models.Heading, len(subs))
	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			extracted[i] = s.headingsFor(id, currentID, maxDepth)
		}(i, sub.ID)
	}
	wg.Wait()

	for i, sub := range subs {
		if len(extracted[i]) == 0 {
			continue
		}
		sections = append(sections, models.TOCSection{
			PostID:    sub.ID,
			Title:     sub.Title,
			IsSubpost: true,
			Headings:  extracted[i],
		})
	}
	return sections, nil
}

// headingsFor converts a post's headings into view models. Headings of the
// currently displayed post link to same-page fragments; other posts' link
// to their page plus the fragment. An extraction failure drops that post's
// section rather than failing the TOC.
func (s *tocService) headingsFor(postID, currentID string, maxDepth int) []models.Heading {
	entries, err := s.source.Headings(postID)
	if err != nil {
		s.logger.Warn("heading extraction failed", "id", postID, "error", err)
		return nil
	}

	var out []models.Heading
	for _, e := range entries {
		depth := e.Level - 1 // h2 is depth 1
		if depth > maxDepth {
			continue
		}

		href := "#" + e.ID
		if postID != currentID && s.urlFor != nil {
			href = s.urlFor(postID) + "#" + e.ID
		}
		out = append(out, models.Heading{
			Slug:  e.ID,
			Text:  e.Text,
			Depth: depth,
			Href:  href,
		})
	}
	return out
}
