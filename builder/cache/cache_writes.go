package cache

import (
	"encoding/binary"

	bolt "go.etcd.io/bbolt"

	"github.com/foliogen/folio/builder/utils"
)

// BatchCommit commits post and author records in a single transaction.
// Encoding happens outside the write lock.
func (m *Manager) BatchCommit(posts []*PostRecord, authors []*AuthorRecord) error {
	encoded := encodedRecordPool.Get().([]encodedRecord)[:0]
	defer func() {
		for i := range encoded {
			encoded[i] = encodedRecord{}
		}
		encodedRecordPool.Put(encoded)
	}()

	for _, rec := range posts {
		data, err := Encode(rec)
		if err != nil {
			return err
		}
		encoded = append(encoded, encodedRecord{
			Key:  []byte(rec.ID),
			Data: data,
			Path: []byte(utils.NormalizePath(rec.Path)),
			Tags: rec.Tags,
		})
	}

	var authorOps []batchOp
	for _, rec := range authors {
		data, err := Encode(rec)
		if err != nil {
			return err
		}
		authorOps = append(authorOps, batchOp{key: []byte(rec.ID), value: data})
	}

	totalTags := 0
	for _, er := range encoded {
		totalTags += len(er.Tags)
	}

	postOps := make([]batchOp, 0, len(encoded))
	pathOps := make([]batchOp, 0, len(encoded))
	tagOps := make([]batchOp, 0, totalTags)

	for _, er := range encoded {
		postOps = append(postOps, batchOp{key: er.Key, value: er.Data})
		pathOps = append(pathOps, batchOp{key: er.Path, value: er.Key})
		for _, tag := range er.Tags {
			tagOps = append(tagOps, batchOp{key: []byte(tag + "/" + string(er.Key)), value: nil})
		}
	}

	return m.db.Update(func(tx *bolt.Tx) error {
		if err := writeOps(tx.Bucket([]byte(BucketPosts)), postOps); err != nil {
			return err
		}
		if err := writeOps(tx.Bucket([]byte(BucketPaths)), pathOps); err != nil {
			return err
		}
		if err := writeOps(tx.Bucket([]byte(BucketTags)), tagOps); err != nil {
			return err
		}
		if err := writeOps(tx.Bucket([]byte(BucketAuthors)), authorOps); err != nil {
			return err
		}

		stats := tx.Bucket([]byte(BucketStats))
		buildCount := uint32(1)
		if data := stats.Get([]byte(KeyBuildCount)); data != nil {
			buildCount = binary.BigEndian.Uint32(data) + 1
		}
		countData := make([]byte, 4)
		binary.BigEndian.PutUint32(countData, buildCount)
		return stats.Put([]byte(KeyBuildCount), countData)
	})
}

// StoreHTMLForPost stores rendered HTML for a post, inlining if small
func (m *Manager) StoreHTMLForPost(rec *PostRecord, content []byte) error {
	if len(content) < InlineHTMLThreshold {
		rec.InlineHTML = content
		rec.HTMLHash = ""
		rec.Compressed = false
		return nil
	}
	hash, ct, err := m.store.Put("html", content)
	if err != nil {
		return err
	}
	rec.HTMLHash = hash
	rec.InlineHTML = nil
	rec.Compressed = ct != CompressionNone
	return nil
}

// DeletePost removes a post and its associated index entries
func (m *Manager) DeletePost(id string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		postsBucket := tx.Bucket([]byte(BucketPosts))
		pathsBucket := tx.Bucket([]byte(BucketPaths))
		tagsBucket := tx.Bucket([]byte(BucketTags))

		key := []byte(id)

		if data := postsBucket.Get(key); data != nil {
			var rec PostRecord
			if err := Decode(data, &rec); err == nil {
				_ = pathsBucket.Delete([]byte(utils.NormalizePath(rec.Path)))
				for _, tag := range rec.Tags {
					_ = tagsBucket.Delete([]byte(tag + "/" + id))
				}
			}
		}

		return postsBucket.Delete(key)
	})
}

// DeleteAuthor removes an author record
func (m *Manager) DeleteAuthor(id string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketAuthors)).Delete([]byte(id))
	})
}

// SetWasmHash stores the WASM source hash
func (m *Manager) SetWasmHash(hash string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(BucketMeta))
		return meta.Put([]byte(KeyWasmHash), []byte(hash))
	})
}
