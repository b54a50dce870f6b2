// Package database persists resolved catalog identifiers using BoltDB.
package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/amaumene/gosubfetch/internal/constants"
)

const (
	// Default database file permissions
	dbFileMode = 0600
	dbDirMode  = 0755
)

var catalogBucket = []byte("catalog_ids")

// CatalogEntry maps a search text to the catalog identifier it resolved to.
type CatalogEntry struct {
	Query     string    `json:"query"`
	CatalogID string    `json:"catalog_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Database defines the interface for data persistence operations.
type Database interface {
	// GetCatalogID returns the stored entry for query, or nil when absent.
	GetCatalogID(query string) (*CatalogEntry, error)
	// StoreCatalogID inserts or replaces the entry for entry.Query.
	StoreCatalogID(entry *CatalogEntry) error
	// PurgeOlderThan deletes entries created before now-maxAge.
	PurgeOlderThan(maxAge time.Duration) (int, error)
	Close() error
}

// BoltDB implements the Database interface using BoltDB.
type BoltDB struct {
	db *bolt.DB
}

// NewBolt opens (creating if needed) the database at dbPath.
func NewBolt(dbPath string) (*BoltDB, error) {
	if dbPath == "" {
		dbPath = constants.DefaultDatabasePath
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), dbDirMode); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, dbFileMode, &bolt.Options{Timeout: constants.DatabaseOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(catalogBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// Close closes the database connection.
func (b *BoltDB) Close() error {
	return b.db.Close()
}

func (b *BoltDB) GetCatalogID(query string) (*CatalogEntry, error) {
	var entry *CatalogEntry
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(catalogBucket).Get([]byte(query))
		if raw == nil {
			return nil
		}
		entry = &CatalogEntry{}
		return json.Unmarshal(raw, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog id: %w", err)
	}
	return entry, nil
}

func (b *BoltDB) StoreCatalogID(entry *CatalogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode catalog id: %w", err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(catalogBucket).Put([]byte(entry.Query), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to store catalog id: %w", err)
	}
	return nil
}

func (b *BoltDB) PurgeOlderThan(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	purged := 0

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(catalogBucket)
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var entry CatalogEntry
			if err := json.Unmarshal(v, &entry); err != nil || entry.CreatedAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		purged = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge catalog ids: %w", err)
	}
	return purged, nil
}
