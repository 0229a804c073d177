package content

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	meta "github.com/yuin/goldmark-meta"
	gParser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/foliogen/folio/builder/models"
	"github.com/foliogen/folio/builder/utils"
)

// ParseAuthorRef parses a frontmatter author reference. Accepted forms are
// "authors/jdoe" and the bare "jdoe", which implies the authors collection.
func ParseAuthorRef(raw string) (models.AuthorRef, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return models.AuthorRef{}, errors.New("empty author reference")
	}

	parts := strings.Split(raw, "/")
	switch len(parts) {
	case 1:
		return models.AuthorRef{Collection: AuthorsSubdir, ID: parts[0]}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return models.AuthorRef{}, fmt.Errorf("malformed author reference %q", raw)
		}
		return models.AuthorRef{Collection: parts[0], ID: parts[1]}, nil
	default:
		return models.AuthorRef{}, fmt.Errorf("malformed author reference %q", raw)
	}
}

// loadAuthors parses every markdown file in the authors directory. Author
// files are few, so this runs serially.
func (s *Store) loadAuthors(dir string) (map[string]*models.Author, error) {
	authors := make(map[string]*models.Author)

	err := afero.Walk(s.fs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}

		a, err := s.parseAuthorFile(path)
		if err != nil {
			s.logger.Warn("skipping author", "path", path, "error", err)
			return nil
		}
		authors[a.ID] = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return authors, nil
}

func (s *Store) parseAuthorFile(path string) (*models.Author, error) {
	source, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	id := strings.ToLower(strings.TrimSuffix(filepath.Base(path), ".md"))

	pc := gParser.NewContext()
	s.md.Parser().Parse(text.NewReader(source), gParser.WithContext(pc))
	metaData := meta.Get(pc)

	a := &models.Author{
		ID:     id,
		Name:   utils.GetString(metaData, "name"),
		Avatar: utils.GetString(metaData, "avatar"),
		Bio:    utils.GetString(metaData, "bio"),
		URL:    utils.GetString(metaData, "url"),
	}
	if a.Name == "" {
		a.Name = id
	}
	return a, nil
}

// Author resolves an author reference.
func (s *Store) Author(ref models.AuthorRef) (*models.Author, error) {
	if ref.Collection != AuthorsSubdir {
		return nil, fmt.Errorf("collection %q: %w", ref.Collection, ErrNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.authors[ref.ID]
	if !ok {
		return nil, fmt.Errorf("author %q: %w", ref.ID, ErrNotFound)
	}
	return a, nil
}

// Authors returns every author sorted by display name.
func (s *Store) Authors() []*models.Author {
	s.mu.RLock()
	out := make([]*models.Author, 0, len(s.authors))
	for _, a := range s.authors {
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
