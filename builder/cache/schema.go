package cache

// BoltDB bucket names
const (
	BucketPosts   = "posts"   // {PostID} -> PostRecord
	BucketPaths   = "paths"   // {filepath} -> PostID
	BucketAuthors = "authors" // {AuthorID} -> AuthorRecord

	// Index buckets (set-based, value is empty)
	BucketTags = "tags" // {tag}/{PostID} -> empty

	// Global metadata
	BucketMeta  = "meta"  // schema_version, cache_id
	BucketStats = "stats" // last_gc, build_count

	// Meta keys
	KeySchemaVersion = "schema_version"
	KeyCacheID       = "cache_id"
	KeyLastGC        = "last_gc"
	KeyBuildCount    = "build_count"
	KeyWasmHash      = "wasm_hash"
)

// AllBuckets returns all bucket names for initialization
func AllBuckets() []string {
	return []string{
		BucketPosts,
		BucketPaths,
		BucketAuthors,
		BucketTags,
		BucketMeta,
		BucketStats,
	}
}
