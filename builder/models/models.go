// Package models defines the data structures shared by the content store,
// services, and templates.
package models

import (
	"html/template"
	"time"
)

// TOCEntry is a raw heading collected by the markdown parser, before any
// depth filtering or link generation.
type TOCEntry struct {
	ID    string `msgpack:"id"`
	Text  string `msgpack:"text"`
	Level int    `msgpack:"level"`
}

// AuthorRef points at an author record in a named collection. It is a lookup
// key, not data.
type AuthorRef struct {
	Collection string
	ID         string
}

// Author is a resolved author record.
type Author struct {
	ID     string
	Name   string
	Avatar string
	Bio    string
	URL    string
}

// Post is a single content record. The ID doubles as the nesting indicator:
// an ID containing a slash ("intro/details") marks a subpost of "intro".
type Post struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time // zero when the post was never updated
	Tags        []string
	Authors     []AuthorRef
	Draft       bool
	Order       int
	Image       string
	Path        string // source path relative to the content dir
	Source      []byte // raw markdown, frontmatter included
}

// Updated reports whether the post carries a modification date.
func (p *Post) Updated() bool {
	return !p.UpdatedAt.IsZero()
}

// PostMeta is the computed view of a post: word counts, subpost aggregates,
// and resolved authors.
//
// Invariant: IsSubpost implies SubpostCount == 0, HasSubposts == false and
// CombinedWordCount == nil.
type PostMeta struct {
	Post              *Post
	WordCount         int
	CombinedWordCount *int // own count + all subposts; nil unless the post has subposts
	IsSubpost         bool
	SubpostCount      int
	HasSubposts       bool
	Authors           []Author
}

// PostNavigation holds the neighbor links for a post. For main posts the
// neighbors range over all main posts (newest first) and Parent is nil; for
// subposts they range over siblings in reading order and Parent is the
// owning main post.
type PostNavigation struct {
	Newer  *Post
	Older  *Post
	Parent *Post
}

// Heading is a display-ready TOC entry. Href is either a same-page fragment
// ("#slug") or a link to another post's page plus the fragment.
type Heading struct {
	Slug  string
	Text  string
	Depth int
	Href  string
}

// TOCSection groups the headings of one post for table-of-contents display.
// A post page shows one section per heading-bearing post in its family: the
// main post first, then each subpost in reading order.
type TOCSection struct {
	PostID    string
	Title     string
	IsSubpost bool
	Headings  []Heading
}

// NavItem is a prebuilt sidebar/header link for a post family.
type NavItem struct {
	ID      string
	Label   string
	Href    string
	Current bool
	Subpost bool
}

// PostContext bundles everything a post page needs: metadata, neighbor
// navigation, TOC sections, and the view models derived from them.
type PostContext struct {
	Post        *Post
	Meta        PostMeta
	Navigation  PostNavigation
	Sections    []TOCSection
	Headings    []Heading // the current post's own headings
	SubpostIDs  []string
	IsSubpost   bool
	HasSubposts bool
	NavItems    []NavItem
}

// TagData represents a tag and its frequency for the tag index.
type TagData struct {
	Name  string
	Link  string
	Count int
}

// Paginator describes one page of a paginated post list.
type Paginator struct {
	CurrentPage int
	TotalPages  int
	HasPrev     bool
	HasNext     bool
	PrevURL     string
	NextURL     string
	FirstURL    string
	LastURL     string
}

// PageData is the context passed to HTML templates.
type PageData struct {
	Title        string
	TabTitle     string
	Description  string
	BaseURL      string
	Content      template.HTML
	Meta         map[string]interface{}
	IsIndex      bool
	IsTagsIndex  bool
	Posts        []PostMeta
	AllTags      []TagData
	Author       *Author
	AllAuthors   []Author
	Context      *PostContext
	Paginator    Paginator
	LastUpdated  time.Time
	BuildVersion int64
	Permalink    string
	Image        string
	Assets       map[string]string

	// Config is the site configuration, left untyped so templates can reach
	// arbitrary fields without an import cycle.
	Config interface{}
}
