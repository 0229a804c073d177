// Package cache provides a BoltDB + content-addressed filesystem cache for
// folio. Parsed posts and rendered HTML survive across builds, so incremental
// rebuilds only touch files whose content hash changed.
package cache

import (
	"encoding/hex"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"

	"github.com/foliogen/folio/builder/models"
)

// PostRecord stores the cached parse and render state of a single post.
type PostRecord struct {
	ID          string                 `msgpack:"id"`
	Path        string                 `msgpack:"path"`
	ModTime     int64                  `msgpack:"mod_time"`
	ContentHash string                 `msgpack:"content_hash"`
	HTMLHash    string                 `msgpack:"html_hash,omitempty"`   // Only for large posts
	InlineHTML  []byte                 `msgpack:"inline_html,omitempty"` // < 32KB posts stored inline
	Compressed  bool                   `msgpack:"compressed"`
	Title       string                 `msgpack:"title"`
	Description string                 `msgpack:"description"`
	CreatedAt   time.Time              `msgpack:"created_at"`
	UpdatedAt   time.Time              `msgpack:"updated_at"`
	Tags        []string               `msgpack:"tags"`
	Authors     []string               `msgpack:"authors"` // raw frontmatter refs, e.g. "authors/jdoe"
	Draft       bool                   `msgpack:"draft"`
	Order       int                    `msgpack:"order"`
	Image       string                 `msgpack:"image"`
	WordCount   int                    `msgpack:"word_count"`
	TOC         []models.TOCEntry      `msgpack:"toc"`
	Meta        map[string]interface{} `msgpack:"meta"`
}

// AuthorRecord stores the cached state of an author page.
type AuthorRecord struct {
	ID          string `msgpack:"id"`
	Path        string `msgpack:"path"`
	ModTime     int64  `msgpack:"mod_time"`
	ContentHash string `msgpack:"content_hash"`
	Name        string `msgpack:"name"`
	Avatar      string `msgpack:"avatar"`
	Bio         string `msgpack:"bio"`
	URL         string `msgpack:"url"`
	InlineHTML  []byte `msgpack:"inline_html,omitempty"`
}

// InlineHTMLThreshold is the size under which rendered HTML is stored inline
// in the record rather than in the content-addressed store.
const InlineHTMLThreshold = 32 * 1024

// CacheStats holds runtime statistics
type CacheStats struct {
	TotalPosts    int   `msgpack:"total_posts"`
	TotalAuthors  int   `msgpack:"total_authors"`
	StoreBytes    int64 `msgpack:"store_bytes"`
	LastGC        int64 `msgpack:"last_gc"`
	BuildCount    int   `msgpack:"build_count"`
	SchemaVersion int   `msgpack:"schema_version"`
	InlinePosts   int   `msgpack:"inline_posts"`
	HashedPosts   int   `msgpack:"hashed_posts"`
}

// CompressionType indicates how an artifact is stored
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionZstdFast
	CompressionZstdLevel3
)

// Constants for compression thresholds
const (
	RawThreshold  = 8 * 1024   // < 8KB stored raw
	FastZstdMax   = 128 * 1024 // 8KB-128KB use zstd fast
	SchemaVersion = 1
)

// HashContent computes BLAKE3 hash of content and returns hex string
func HashContent(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashString computes BLAKE3 hash of a string
func HashString(s string) string {
	return HashContent([]byte(s))
}

// Encode serializes a value to msgpack bytes
func Encode(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode deserializes msgpack bytes to a value
func Decode(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}
