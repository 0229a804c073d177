package services

import (
	"testing"

	"github.com/foliogen/folio/builder/models"
	"github.com/foliogen/folio/builder/services/mocks"
)

func TestResolvePreservesOrder(t *testing.T) {
	src := mocks.NewMockContentSource()
	src.AuthorsByID["alice"] = &models.Author{ID: "alice", Name: "Alice"}
	src.AuthorsByID["bob"] = &models.Author{ID: "bob", Name: "Bob"}
	src.AuthorsByID["carol"] = &models.Author{ID: "carol", Name: "Carol"}

	r := NewAuthorResolver(src, testLogger())
	got := r.Resolve([]models.AuthorRef{
		{Collection: "authors", ID: "carol"},
		{Collection: "authors", ID: "ghost"},
		{Collection: "authors", ID: "alice"},
		{Collection: "authors", ID: "bob"},
	})

	// The failure in the middle is dropped; the rest keep input order.
	want := []string{"Carol", "Alice", "Bob"}
	if len(got) != len(want) {
		t.Fatalf("Resolve() returned %d authors, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("Resolve()[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestResolveEmpty(t *testing.T) {
	r := NewAuthorResolver(mocks.NewMockContentSource(), testLogger())

	if got := r.Resolve(nil); got != nil {
		t.Errorf("Resolve(nil) = %v, want nil", got)
	}
	if got := r.Resolve([]models.AuthorRef{}); got != nil {
		t.Errorf("Resolve(empty) = %v, want nil", got)
	}
}

func TestResolveAllFail(t *testing.T) {
	r := NewAuthorResolver(mocks.NewMockContentSource(), testLogger())

	got := r.Resolve([]models.AuthorRef{{Collection: "authors", ID: "ghost"}})
	if len(got) != 0 {
		t.Errorf("Resolve() = %v, want empty", got)
	}
}
