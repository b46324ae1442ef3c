// Package cache stores segmentation results in a bbolt database keyed by a
// hash of the source and the options that produced them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/phobologic/funcseg/internal/model"
)

// schemaVersion is mixed into every key; bump it when segment output changes.
const schemaVersion = "1"

var (
	bucketSegments = []byte("segments")
	bucketMeta     = []byte("meta")
	keySchema      = []byte("schema")
)

// Store is a segment cache. It is safe for concurrent use.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the cache at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketSegments, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("creating bucket %s: %w", b, err)
			}
		}
		meta := tx.Bucket(bucketMeta)
		if v := meta.Get(keySchema); v != nil && string(v) != schemaVersion {
			// Stale layout: drop every entry.
			if err := tx.DeleteBucket(bucketSegments); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucketSegments); err != nil {
				return err
			}
		}
		return meta.Put(keySchema, []byte(schemaVersion))
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key derives the cache key for src processed with the given variant
// (for example whether normalization was applied).
func Key(src []byte, variant string) []byte {
	h := sha256.New()
	h.Write([]byte(schemaVersion))
	h.Write([]byte{0})
	h.Write([]byte(variant))
	h.Write([]byte{0})
	h.Write(src)
	return []byte(hex.EncodeToString(h.Sum(nil)))
}

// Get returns the cached segments for key. ok is false on a miss.
func (s *Store) Get(key []byte) (segs []model.Segment, ok bool, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSegments).Get(key)
		if data == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(data, &segs)
	})
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return segs, ok, nil
}

// Put stores segs under key.
func (s *Store) Put(key []byte, segs []model.Segment) error {
	data, err := json.Marshal(segs)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSegments).Put(key, data)
	})
}

// Len reports the number of cached entries.
func (s *Store) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketSegments).Stats().KeyN
		return nil
	})
	return n, err
}
