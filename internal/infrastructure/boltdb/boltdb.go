package boltdb

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names used by the embedded store driver.
var (
	BucketTimers    = []byte("timers")
	BucketTemplates = []byte("timer_templates")
)

// Open initializes the BoltDB file and ensures every bucket exists.
func Open(path string) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{BucketTimers, BucketTemplates} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Size returns the number of keys stored in bucket.
func Size(db *bolt.DB, bucket []byte) (int, error) {
	if db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return bolt.ErrBucketNotFound
		}
		count = b.Stats().KeyN
		return nil
	})
	return count, err
}
