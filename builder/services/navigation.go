package services

import (
	"log/slog"

	"github.com/foliogen/folio/builder/content"
	"github.com/foliogen/folio/builder/models"
)

type navigationService struct {
	source ContentSource
	logger *slog.Logger
}

func NewNavigationService(source ContentSource, logger *slog.Logger) NavigationService {
	return &navigationService{source: source, logger: logger}
}

// Neighbors resolves the newer/older/parent links for a post. Main posts
// walk the date-descending main list, so newer means the previous index.
// Subposts walk their siblings in reading order, so newer means the next
// index. A post that cannot be located yields an all-nil result.
func (s *navigationService) Neighbors(postID string) models.PostNavigation {
	var nav models.PostNavigation

	if content.IsSubpost(postID) {
		parentID := content.ParentID(postID)

		siblings := s.source.Subposts(parentID)
		if i := indexOf(siblings, postID); i >= 0 {
			if i+1 < len(siblings) {
				nav.Newer = siblings[i+1]
			}
			if i > 0 {
				nav.Older = siblings[i-1]
			}
		}

		if parent, err := s.source.Post(parentID); err == nil {
			nav.Parent = parent
		}
		return nav
	}

	mains := s.source.MainPosts()
	i := indexOf(mains, postID)
	if i < 0 {
		return nav
	}
	if i > 0 {
		nav.Newer = mains[i-1]
	}
	if i+1 < len(mains) {
		nav.Older = mains[i+1]
	}
	return nav
}

func indexOf(posts []*models.Post, id string) int {
	for i, p := range posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
