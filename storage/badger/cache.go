package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lacuna/core"
	"github.com/poiesic/lacuna/storage"
)

// Cache implements storage.EmbeddingCache for BadgerDB. Entries are keyed
// by the content-derived ID of their (model, language, concept) triple, and
// a per-model index supports counting and purging one model's entries.
type Cache struct {
	backend *Backend
}

var _ storage.EmbeddingCache = (*Cache)(nil)

// NewCache creates an embedding cache over the backend.
//
// Returns storage.EmbeddingCache interface to enforce abstraction.
func NewCache(backend *Backend) (storage.EmbeddingCache, error) {
	return newCache(backend)
}

func newCache(backend *Backend) (*Cache, error) {
	return &Cache{backend: backend}, nil
}

// Close releases resources. The cache does not own the backend.
func (c *Cache) Close() error {
	return nil
}

// Get retrieves a cached embedding by its (model, language, concept) triple.
func (c *Cache) Get(ctx context.Context, model, language, conceptID string) (*core.CachedEmbedding, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	key := makeEmbeddingKey(core.CachedEmbeddingID(model, language, conceptID))

	var embedding *core.CachedEmbedding
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			embedding, err = storage.UnmarshalCachedEmbedding(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return embedding, nil
}

// Put stores embeddings, filling in content-derived IDs and timestamps.
func (c *Cache) Put(ctx context.Context, embeddings ...*core.CachedEmbedding) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		for _, embedding := range embeddings {
			if embedding.Id == 0 {
				embedding.Id = core.IDFromContent(embedding.CacheKey())
			}
			if embedding.InsertedAt.IsZero() {
				embedding.InsertedAt = time.Now().UTC()
			}

			key := makeEmbeddingKey(embedding.Id)
			if err := tx.Set(key, storage.MarshalCachedEmbedding(embedding)); err != nil {
				return err
			}

			indexKey := makeModelIndexKey(embedding.Model, embedding.Id)
			if err := tx.Set(indexKey, storage.MarshalID(embedding.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountModel returns the number of cached embeddings for a model.
func (c *Cache) CountModel(ctx context.Context, model string) (int, error) {
	if c.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeModelIndexPrefix(model)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// DeleteModel removes every cached embedding for a model, including the
// index entries.
func (c *Cache) DeleteModel(ctx context.Context, model string) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeModelIndexPrefix(model)
		iter := tx.NewIterator(opts)

		var indexKeys [][]byte
		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			indexKeys = append(indexKeys, item.KeyCopy(nil))

			err := item.Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				iter.Close()
				return err
			}
		}
		iter.Close()

		for _, id := range ids {
			if err := tx.Delete(makeEmbeddingKey(id)); err != nil {
				return err
			}
		}
		for _, key := range indexKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
