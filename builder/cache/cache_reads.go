package cache

import (
	"bytes"
	"encoding/binary"

	bolt "go.etcd.io/bbolt"

	"github.com/foliogen/folio/builder/utils"
)

// getCachedItem retrieves a generic item from a bucket
func getCachedItem[T any](db *bolt.DB, bucketName string, key []byte) (*T, error) {
	var result *T
	err := db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return nil
		}
		data := bucket.Get(key)
		if data == nil {
			return nil
		}

		var item T
		if err := Decode(data, &item); err != nil {
			return err
		}
		result = &item
		return nil
	})
	return result, err
}

// GetPostByID retrieves a post record by its ID
func (m *Manager) GetPostByID(id string) (*PostRecord, error) {
	return getCachedItem[PostRecord](m.db, BucketPosts, []byte(id))
}

// GetPostByPath looks up a post by its file path in a single transaction
func (m *Manager) GetPostByPath(path string) (*PostRecord, error) {
	normalizedPath := utils.NormalizePath(path)

	var result *PostRecord
	err := m.db.View(func(tx *bolt.Tx) error {
		paths := tx.Bucket([]byte(BucketPaths))
		if paths == nil {
			return nil
		}
		id := paths.Get([]byte(normalizedPath))
		if id == nil {
			return nil
		}

		posts := tx.Bucket([]byte(BucketPosts))
		if posts == nil {
			return nil
		}
		data := posts.Get(id)
		if data == nil {
			return nil
		}

		var rec PostRecord
		if err := Decode(data, &rec); err != nil {
			return err
		}
		result = &rec
		return nil
	})

	return result, err
}

// GetPostsByIDs retrieves multiple post records in a single transaction
func (m *Manager) GetPostsByIDs(ids []string) (map[string]*PostRecord, error) {
	result := make(map[string]*PostRecord, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketPosts))

		for _, id := range ids {
			data := bucket.Get([]byte(id))
			if data == nil {
				continue
			}

			rec := new(PostRecord)
			if err := Decode(data, rec); err != nil {
				continue
			}
			result[id] = rec
		}
		return nil
	})

	return result, err
}

// ListAllPosts returns all post IDs
func (m *Manager) ListAllPosts() ([]string, error) {
	var ids []string
	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketPosts))
		return bucket.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

// GetPostsByTag returns all post IDs with a given tag
func (m *Manager) GetPostsByTag(tag string) ([]string, error) {
	prefix := []byte(tag + "/")
	var ids []string

	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketTags))
		c := bucket.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			ids = append(ids, string(k[len(prefix):]))
		}
		return nil
	})

	return ids, err
}

// GetAuthor retrieves an author record by ID
func (m *Manager) GetAuthor(id string) (*AuthorRecord, error) {
	return getCachedItem[AuthorRecord](m.db, BucketAuthors, []byte(id))
}

// ListAllAuthors returns all author IDs
func (m *Manager) ListAllAuthors() ([]string, error) {
	var ids []string
	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketAuthors))
		return bucket.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

// GetHTMLContent retrieves rendered HTML for a post
func (m *Manager) GetHTMLContent(rec *PostRecord) ([]byte, error) {
	if len(rec.InlineHTML) > 0 {
		return rec.InlineHTML, nil
	}
	if rec.HTMLHash == "" {
		return nil, nil
	}
	return m.store.Get("html", rec.HTMLHash, rec.Compressed)
}

// GetWasmHash retrieves the stored WASM source hash
func (m *Manager) GetWasmHash() (string, error) {
	var hash string
	err := m.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(BucketMeta))
		data := meta.Get([]byte(KeyWasmHash))
		if data != nil {
			hash = string(data)
		}
		return nil
	})
	return hash, err
}

// Stats returns current cache statistics
func (m *Manager) Stats() (*CacheStats, error) {
	stats := &CacheStats{
		SchemaVersion: SchemaVersion,
	}

	err := m.db.View(func(tx *bolt.Tx) error {
		postsBucket := tx.Bucket([]byte(BucketPosts))
		stats.TotalPosts = postsBucket.Stats().KeyN

		authorsBucket := tx.Bucket([]byte(BucketAuthors))
		stats.TotalAuthors = authorsBucket.Stats().KeyN

		statsBucket := tx.Bucket([]byte(BucketStats))
		if data := statsBucket.Get([]byte(KeyBuildCount)); data != nil {
			stats.BuildCount = int(binary.BigEndian.Uint32(data))
		}
		if data := statsBucket.Get([]byte(KeyLastGC)); data != nil {
			stats.LastGC = int64(binary.BigEndian.Uint64(data))
		}

		return postsBucket.ForEach(func(k, v []byte) error {
			var rec PostRecord
			if err := Decode(v, &rec); err == nil {
				if len(rec.InlineHTML) > 0 {
					stats.InlinePosts++
				} else if rec.HTMLHash != "" {
					stats.HashedPosts++
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	htmlSize, _ := m.store.Size("html")
	stats.StoreBytes = htmlSize

	return stats, nil
}
