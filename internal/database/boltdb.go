package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/y0ug/defacemon/internal/database/models"
	"go.etcd.io/bbolt"
)

var (
	baselineBucket = []byte("baseline")
	currentKey     = []byte("current")
)

// BoltDB implements the Database interface using bbolt.
type BoltDB struct {
	db   *bbolt.DB
	path string
}

// NewBoltDB opens (or creates) the bolt file at path.
func NewBoltDB(path string) (*BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	return &BoltDB{db: db, path: path}, nil
}

// Initialize sets up the necessary buckets.
func (b *BoltDB) Initialize(ctx context.Context) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(baselineBucket)
		if err != nil {
			return fmt.Errorf("create baseline bucket: %v", err)
		}
		return nil
	})
}

func (b *BoltDB) Close(context.Context) error {
	return b.db.Close()
}

// SaveBaseline replaces the stored record in a single transaction.
func (b *BoltDB) SaveBaseline(ctx context.Context, baseline models.Baseline) error {
	data, err := encodeBaseline(baseline)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(baselineBucket).Put(currentKey, data)
	})
}

// LoadBaseline retrieves and decodes the stored record.
func (b *BoltDB) LoadBaseline(ctx context.Context) (models.Baseline, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(baselineBucket).Get(currentKey)
		if v == nil {
			return ErrBaselineNotFound
		}
		// v is only valid for the life of the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return models.Baseline{}, err
	}
	return decodeBaseline(data)
}

// BaselineExists reports whether a record is stored.
func (b *BoltDB) BaselineExists(ctx context.Context) (bool, error) {
	exists := false
	err := b.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(baselineBucket).Get(currentKey) != nil
		return nil
	})
	return exists, err
}

// DeleteBaseline removes the stored record.
func (b *BoltDB) DeleteBaseline(ctx context.Context) (bool, error) {
	deleted := false
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(baselineBucket)
		if bucket.Get(currentKey) == nil {
			return nil
		}
		deleted = true
		return bucket.Delete(currentKey)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
