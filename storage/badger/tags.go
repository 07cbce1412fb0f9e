package badger

import (
	"bytes"
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/glyphica/iconsearch/storage"
)

// TagStore implements storage.TagStore on BadgerDB.
type TagStore struct {
	backend *Backend
}

var _ storage.TagStore = (*TagStore)(nil)

// NewTagStore creates a tag overlay store over the backend.
func NewTagStore(backend *Backend) *TagStore {
	return &TagStore{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (s *TagStore) Close() error {
	return nil
}

// GetTags returns the persisted tag list for an icon.
func (s *TagStore) GetTags(ctx context.Context, iconID string) ([]string, bool, error) {
	var tags []string
	found := false

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeTagKey(iconID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			tags, unmarshalErr = storage.UnmarshalTags(val)
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
	return tags, found, nil
}

// PutTags replaces the persisted tag list for an icon.
func (s *TagStore) PutTags(ctx context.Context, iconID string, tags []string) error {
	value := storage.MarshalTags(tags)
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeTagKey(iconID), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// All returns every persisted overlay, keyed by icon ID.
func (s *TagStore) All(ctx context.Context) (map[string][]string, error) {
	overlays := make(map[string][]string)
	prefix := []byte(tagOverlayPrefix + ":")

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			iconID := string(bytes.TrimPrefix(item.Key(), prefix))

			err := item.Value(func(val []byte) error {
				tags, unmarshalErr := storage.UnmarshalTags(val)
				if unmarshalErr != nil {
					return unmarshalErr
				}
				overlays[iconID] = tags
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return overlays, nil
}
