// Package mocks provides mock implementations for testing
package mocks

import (
	"fmt"
	"sync"

	"github.com/foliogen/folio/builder/content"
	"github.com/foliogen/folio/builder/models"
)

// MockContentSource is a mock implementation of services.ContentSource
// backed by plain maps. Zero value maps mean "nothing there"; the error
// maps force failures for specific ids.
type MockContentSource struct {
	PostsByID   map[string]*models.Post
	Main        []*models.Post
	Subs        map[string][]*models.Post
	TOCs        map[string][]models.TOCEntry
	Words       map[string]int
	AuthorsByID map[string]*models.Author

	WordCountErrs map[string]error
	HeadingErrs   map[string]error

	mu        sync.Mutex
	CallCount map[string]int
}

// NewMockContentSource creates an empty mock content source.
func NewMockContentSource() *MockContentSource {
	return &MockContentSource{
		PostsByID:     make(map[string]*models.Post),
		Subs:          make(map[string][]*models.Post),
		TOCs:          make(map[string][]models.TOCEntry),
		Words:         make(map[string]int),
		AuthorsByID:   make(map[string]*models.Author),
		WordCountErrs: make(map[string]error),
		HeadingErrs:   make(map[string]error),
		CallCount:     make(map[string]int),
	}
}

// AddPost registers a post under its id and, when it is a main post,
// appends it to the main list.
func (m *MockContentSource) AddPost(p *models.Post) {
	m.PostsByID[p.ID] = p
	if content.IsSubpost(p.ID) {
		parent := content.ParentID(p.ID)
		m.Subs[parent] = append(m.Subs[parent], p)
	} else {
		m.Main = append(m.Main, p)
	}
}

func (m *MockContentSource) recordCall(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CallCount == nil {
		m.CallCount = make(map[string]int)
	}
	m.CallCount[method]++
}

// Calls returns how often a method was invoked.
func (m *MockContentSource) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount[method]
}

func (m *MockContentSource) Post(id string) (*models.Post, error) {
	m.recordCall("Post")
	if p, ok := m.PostsByID[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("post %q: %w", id, content.ErrNotFound)
}

func (m *MockContentSource) MainPosts() []*models.Post {
	m.recordCall("MainPosts")
	return m.Main
}

func (m *MockContentSource) Subposts(parentID string) []*models.Post {
	m.recordCall("Subposts")
	return m.Subs[parentID]
}

func (m *MockContentSource) Headings(id string) ([]models.TOCEntry, error) {
	m.recordCall("Headings")
	if err, ok := m.HeadingErrs[id]; ok {
		return nil, err
	}
	if _, ok := m.PostsByID[id]; !ok {
		return nil, fmt.Errorf("post %q: %w", id, content.ErrNotFound)
	}
	return m.TOCs[id], nil
}

func (m *MockContentSource) WordCount(id string) (int, error) {
	m.recordCall("WordCount")
	if err, ok := m.WordCountErrs[id]; ok {
		return 0, err
	}
	if _, ok := m.PostsByID[id]; !ok {
		return 0, fmt.Errorf("post %q: %w", id, content.ErrNotFound)
	}
	return m.Words[id], nil
}

func (m *MockContentSource) Author(ref models.AuthorRef) (*models.Author, error) {
	m.recordCall("Author")
	if ref.Collection == content.AuthorsSubdir {
		if a, ok := m.AuthorsByID[ref.ID]; ok {
			return a, nil
		}
	}
	return nil, fmt.Errorf("author %q: %w", ref.ID, content.ErrNotFound)
}
