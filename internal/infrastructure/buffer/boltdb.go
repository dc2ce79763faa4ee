package buffer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const defaultBatch = 50

// Store persists buffered operations in a single BoltDB bucket.
type Store struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

// Open creates the BoltDB file and bucket when missing.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "buffer"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create buffer dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open buffer: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, bucket: []byte(bucket), now: time.Now}, nil
}

func (s *Store) ready() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return nil
}

// Enqueue stores item under a priority-then-age key.
func (s *Store) Enqueue(item Item) error {
	if err := s.ready(); err != nil {
		return err
	}
	item.normalize(s.now())
	item.bucketKey = item.key()

	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(item.bucketKey, payload)
	})
}

// GetBatch returns up to limit items in key order without removing them.
// Undecodable records are skipped.
func (s *Store) GetBatch(limit int) ([]Item, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultBatch
	}

	items := make([]Item, 0, limit)
	err := s.db.View(func(tx *bolt.Tx) error {
		return forEach(tx.Bucket(s.bucket), func(k []byte, item Item) bool {
			item.bucketKey = append([]byte(nil), k...)
			items = append(items, item)
			return len(items) < limit
		})
	})
	return items, err
}

// Remove deletes item, falling back to a scan by ID when its key is unknown.
func (s *Store) Remove(item Item) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if len(item.bucketKey) > 0 {
			return b.Delete(item.bucketKey)
		}
		var key []byte
		_ = forEach(b, func(k []byte, stored Item) bool {
			if stored.ID == item.ID {
				key = append([]byte(nil), k...)
				return false
			}
			return true
		})
		if key == nil {
			return nil
		}
		return b.Delete(key)
	})
}

// Requeue moves item to the back of its priority lane.
func (s *Store) Requeue(item Item) error {
	if err := s.Remove(item); err != nil {
		return err
	}
	item.bucketKey = nil
	item.Timestamp = s.now()
	return s.Enqueue(item)
}

func (s *Store) Size() (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup drops items queued before olderThan.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var expired [][]byte
		_ = forEach(b, func(k []byte, item Item) bool {
			if item.Timestamp.Before(olderThan) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return true
		})
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	return removed, err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func forEach(b *bolt.Bucket, fn func(k []byte, item Item) bool) error {
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var item Item
		if err := json.Unmarshal(v, &item); err != nil {
			continue
		}
		if !fn(k, item) {
			return nil
		}
	}
	return nil
}

func formatKey(priority int, ts time.Time, id string) string {
	return fmt.Sprintf("%d_%020d_%s", priority, ts.UnixNano(), id)
}
