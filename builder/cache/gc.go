package cache

import (
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"
)

// SweepResult summarizes a garbage collection pass over the content store.
type SweepResult struct {
	LiveHashes int
	Scanned    int
	Deleted    int
	Duration   time.Duration
}

// Sweep removes store artifacts that no post record references anymore.
// Records shrink to inline storage or change hash when content changes, so
// old artifacts accumulate until swept.
func (m *Manager) Sweep() (*SweepResult, error) {
	start := time.Now()

	live := make(map[string]bool)
	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketPosts))
		return bucket.ForEach(func(_, v []byte) error {
			var rec PostRecord
			if err := Decode(v, &rec); err == nil && rec.HTMLHash != "" {
				live[rec.HTMLHash] = true
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	hashes, err := m.store.ListHashes("html")
	if err != nil {
		return nil, err
	}

	deleted := 0
	for _, hash := range hashes {
		if !live[hash] {
			_ = m.store.Delete("html", hash)
			deleted++
		}
	}

	err = m.db.Update(func(tx *bolt.Tx) error {
		stats := tx.Bucket([]byte(BucketStats))
		ts := make([]byte, 8)
		binary.BigEndian.PutUint64(ts, uint64(time.Now().Unix()))
		return stats.Put([]byte(KeyLastGC), ts)
	})
	if err != nil {
		return nil, err
	}

	return &SweepResult{
		LiveHashes: len(live),
		Scanned:    len(hashes),
		Deleted:    deleted,
		Duration:   time.Since(start),
	}, nil
}
