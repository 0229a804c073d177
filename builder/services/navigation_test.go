package services

import (
	"testing"

	"github.com/foliogen/folio/builder/models"
	"github.com/foliogen/folio/builder/services/mocks"
)

// threeMains returns a source with three main posts, newest first the way
// the store's MainPosts query delivers them.
func threeMains() *mocks.MockContentSource {
	src := mocks.NewMockContentSource()
	src.AddPost(&models.Post{ID: "march", Title: "March", CreatedAt: date("2025-03-01")})
	src.AddPost(&models.Post{ID: "feb", Title: "February", CreatedAt: date("2025-02-01")})
	src.AddPost(&models.Post{ID: "jan", Title: "January", CreatedAt: date("2025-01-01")})
	return src
}

func TestNeighborsMainPosts(t *testing.T) {
	svc := NewNavigationService(threeMains(), testLogger())

	tests := []struct {
		id    string
		newer string
		older string
	}{
		{"march", "", "feb"},
		{"feb", "march", "jan"},
		{"jan", "feb", ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			nav := svc.Neighbors(tt.id)

			if got := postID(nav.Newer); got != tt.newer {
				t.Errorf("Newer = %q, want %q", got, tt.newer)
			}
			if got := postID(nav.Older); got != tt.older {
				t.Errorf("Older = %q, want %q", got, tt.older)
			}
			if nav.Parent != nil {
				t.Errorf("Parent = %v, want nil for a main post", nav.Parent)
			}
		})
	}
}

func TestNeighborsAntisymmetry(t *testing.T) {
	src := threeMains()
	svc := NewNavigationService(src, testLogger())

	// For every adjacent pair in the main ordering, if B is A's older
	// neighbor then A is B's newer neighbor.
	for _, p := range src.Main {
		nav := svc.Neighbors(p.ID)
		if nav.Older != nil {
			back := svc.Neighbors(nav.Older.ID)
			if postID(back.Newer) != p.ID {
				t.Errorf("antisymmetry broken: %s.older = %s but %s.newer = %s",
					p.ID, nav.Older.ID, nav.Older.ID, postID(back.Newer))
			}
		}
		if nav.Newer != nil {
			back := svc.Neighbors(nav.Newer.ID)
			if postID(back.Older) != p.ID {
				t.Errorf("antisymmetry broken: %s.newer = %s but %s.older = %s",
					p.ID, nav.Newer.ID, nav.Newer.ID, postID(back.Older))
			}
		}
	}
}

func TestNeighborsSubposts(t *testing.T) {
	src := introFamily()
	svc := NewNavigationService(src, testLogger())

	// Siblings in reading order: details (01-02), extra (01-03).
	nav := svc.Neighbors("intro/details")
	if got := postID(nav.Newer); got != "intro/extra" {
		t.Errorf("Newer = %q, want intro/extra (next in reading order)", got)
	}
	if nav.Older != nil {
		t.Errorf("Older = %v, want nil for the first subpost", nav.Older)
	}
	if postID(nav.Parent) != "intro" {
		t.Errorf("Parent = %q, want intro", postID(nav.Parent))
	}

	nav = svc.Neighbors("intro/extra")
	if got := postID(nav.Older); got != "intro/details" {
		t.Errorf("Older = %q, want intro/details", got)
	}
	if nav.Newer != nil {
		t.Errorf("Newer = %v, want nil for the last subpost", nav.Newer)
	}
}

func TestNeighborsOnlySubpost(t *testing.T) {
	src := mocks.NewMockContentSource()
	src.AddPost(&models.Post{ID: "intro", Title: "Intro"})
	src.AddPost(&models.Post{ID: "intro/details", Title: "Details"})

	svc := NewNavigationService(src, testLogger())
	nav := svc.Neighbors("intro/details")

	if nav.Newer != nil || nav.Older != nil {
		t.Errorf("Newer/Older = %v/%v, want nil/nil for an only child", nav.Newer, nav.Older)
	}
	if postID(nav.Parent) != "intro" {
		t.Errorf("Parent = %q, want intro", postID(nav.Parent))
	}
}

func TestNeighborsUnknownPost(t *testing.T) {
	svc := NewNavigationService(threeMains(), testLogger())

	nav := svc.Neighbors("ghost")
	if nav.Newer != nil || nav.Older != nil || nav.Parent != nil {
		t.Errorf("Neighbors(ghost) = %+v, want all nil", nav)
	}

	// A subpost of a missing parent degrades the same way.
	nav = svc.Neighbors("ghost/sub")
	if nav.Newer != nil || nav.Older != nil || nav.Parent != nil {
		t.Errorf("Neighbors(ghost/sub) = %+v, want all nil", nav)
	}
}

func postID(p *models.Post) string {
	if p == nil {
		return ""
	}
	return p.ID
}
