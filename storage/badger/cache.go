package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/glyphica/iconsearch/core"
	"github.com/glyphica/iconsearch/storage"
)

// VectorCache implements storage.VectorCache on BadgerDB.
type VectorCache struct {
	backend *Backend
}

var _ storage.VectorCache = (*VectorCache)(nil)

// NewVectorCache creates a vector cache over the backend.
func NewVectorCache(backend *Backend) *VectorCache {
	return &VectorCache{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (c *VectorCache) Close() error {
	return nil
}

// Get returns the cached vector set under key.
func (c *VectorCache) Get(ctx context.Context, key string) ([]core.VectorStoreItem, bool, error) {
	var items []core.VectorStoreItem
	found := false

	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCacheKey(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			items, unmarshalErr = storage.UnmarshalItems(val)
			if unmarshalErr != nil {
				return unmarshalErr
			}
			found = true
			return nil
		})
	}, false)

	if err != nil {
		return nil, false, err
	}
	return items, found, nil
}

// Put replaces the entire vector set under key.
func (c *VectorCache) Put(ctx context.Context, key string, items []core.VectorStoreItem) error {
	value := storage.MarshalItems(items)
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCacheKey(key), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Delete removes the vector set under key.
func (c *VectorCache) Delete(ctx context.Context, key string) error {
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCacheKey(key)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
