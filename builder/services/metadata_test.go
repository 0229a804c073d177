package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/foliogen/folio/builder/content"
	"github.com/foliogen/folio/builder/models"
	"github.com/foliogen/folio/builder/services/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// introFamily builds a main post with two subposts and one author.
func introFamily() *mocks.MockContentSource {
	src := mocks.NewMockContentSource()

	src.AddPost(&models.Post{
		ID: "intro", Title: "Intro", CreatedAt: date("2025-01-01"),
		Authors: []models.AuthorRef{{Collection: "authors", ID: "jdoe"}},
	})
	src.AddPost(&models.Post{
		ID: "intro/details", Title: "Details", CreatedAt: date("2025-01-02"),
	})
	src.AddPost(&models.Post{
		ID: "intro/extra", Title: "Extra", CreatedAt: date("2025-01-03"),
	})

	src.Words["intro"] = 100
	src.Words["intro/details"] = 50
	src.Words["intro/extra"] = 25

	src.AuthorsByID["jdoe"] = &models.Author{ID: "jdoe", Name: "Jane Doe"}
	return src
}

func TestMetaMainPostWithSubposts(t *testing.T) {
	svc := NewMetadataService(introFamily(), testLogger())

	meta, err := svc.Meta(context.Background(), "intro")
	if err != nil {
		t.Fatalf("Meta(intro) error: %v", err)
	}

	if meta.WordCount != 100 {
		t.Errorf("WordCount = %d, want 100", meta.WordCount)
	}
	if meta.IsSubpost {
		t.Error("IsSubpost = true for a main post")
	}
	if meta.SubpostCount != 2 {
		t.Errorf("SubpostCount = %d, want 2", meta.SubpostCount)
	}
	if !meta.HasSubposts {
		t.Error("HasSubposts = false, want true")
	}
	if meta.CombinedWordCount == nil {
		t.Fatal("CombinedWordCount = nil, want 175")
	}
	if *meta.CombinedWordCount != 175 {
		t.Errorf("CombinedWordCount = %d, want 175", *meta.CombinedWordCount)
	}
	if len(meta.Authors) != 1 || meta.Authors[0].Name != "Jane Doe" {
		t.Errorf("Authors = %v, want [Jane Doe]", meta.Authors)
	}
}

func TestMetaSubpostInvariant(t *testing.T) {
	src := introFamily()
	// Even a poisoned sibling list must not leak into subpost metadata.
	src.Subs["intro/details"] = []*models.Post{{ID: "intro/details/bogus"}}

	svc := NewMetadataService(src, testLogger())
	meta, err := svc.Meta(context.Background(), "intro/details")
	if err != nil {
		t.Fatalf("Meta(intro/details) error: %v", err)
	}

	if !meta.IsSubpost {
		t.Error("IsSubpost = false for a subpost")
	}
	if meta.SubpostCount != 0 {
		t.Errorf("SubpostCount = %d, want 0", meta.SubpostCount)
	}
	if meta.HasSubposts {
		t.Error("HasSubposts = true for a subpost")
	}
	if meta.CombinedWordCount != nil {
		t.Errorf("CombinedWordCount = %d, want absent", *meta.CombinedWordCount)
	}
	if meta.WordCount != 50 {
		t.Errorf("WordCount = %d, want 50", meta.WordCount)
	}
}

func TestMetaMainPostWithoutSubposts(t *testing.T) {
	src := mocks.NewMockContentSource()
	src.AddPost(&models.Post{ID: "solo", Title: "Solo"})
	src.Words["solo"] = 42

	svc := NewMetadataService(src, testLogger())
	meta, err := svc.Meta(context.Background(), "solo")
	if err != nil {
		t.Fatalf("Meta(solo) error: %v", err)
	}

	if meta.CombinedWordCount != nil {
		t.Error("CombinedWordCount should be absent without subposts")
	}
	if meta.HasSubposts || meta.SubpostCount != 0 {
		t.Errorf("HasSubposts/SubpostCount = %v/%d, want false/0", meta.HasSubposts, meta.SubpostCount)
	}
}

func TestMetaNotFound(t *testing.T) {
	svc := NewMetadataService(mocks.NewMockContentSource(), testLogger())

	_, err := svc.Meta(context.Background(), "ghost")
	if !errors.Is(err, content.ErrNotFound) {
		t.Errorf("Meta(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestMetaIsCached(t *testing.T) {
	src := introFamily()
	svc := NewMetadataService(src, testLogger())

	if _, err := svc.Meta(context.Background(), "intro"); err != nil {
		t.Fatal(err)
	}
	first := src.Calls("WordCount")

	if _, err := svc.Meta(context.Background(), "intro"); err != nil {
		t.Fatal(err)
	}
	if got := src.Calls("WordCount"); got != first {
		t.Errorf("WordCount calls grew from %d to %d on a cached read", first, got)
	}

	svc.ClearCache()
	if _, err := svc.Meta(context.Background(), "intro"); err != nil {
		t.Fatal(err)
	}
	if got := src.Calls("WordCount"); got == first {
		t.Error("ClearCache() did not force recomputation")
	}
}

func TestMetaDropsUnresolvableAuthor(t *testing.T) {
	src := introFamily()
	src.PostsByID["intro"].Authors = []models.AuthorRef{
		{Collection: "authors", ID: "jdoe"},
		{Collection: "authors", ID: "ghost"},
	}

	svc := NewMetadataService(src, testLogger())
	meta, err := svc.Meta(context.Background(), "intro")
	if err != nil {
		t.Fatalf("Meta(intro) error: %v", err)
	}

	if len(meta.Authors) != 1 || meta.Authors[0].ID != "jdoe" {
		t.Errorf("Authors = %v, want only jdoe", meta.Authors)
	}
}

func TestMetaWordCountFailure(t *testing.T) {
	src := introFamily()
	src.WordCountErrs["intro"] = errors.New("render exploded")
	src.WordCountErrs["intro/extra"] = errors.New("render exploded")

	svc := NewMetadataService(src, testLogger())
	meta, err := svc.Meta(context.Background(), "intro")
	if err != nil {
		t.Fatalf("Meta(intro) error: %v", err)
	}

	if meta.WordCount != 0 {
		t.Errorf("WordCount = %d, want 0 after a failed count", meta.WordCount)
	}
	// Combined keeps the successes: 0 (own, failed) + 50 (details).
	if meta.CombinedWordCount == nil || *meta.CombinedWordCount != 50 {
		t.Errorf("CombinedWordCount = %v, want 50", meta.CombinedWordCount)
	}
}
