package storage

import (
	"context"

	"github.com/poiesic/lacuna/core"
)

// EmbeddingCache stores embeddings keyed by (model, language, concept) so
// that repeated benchmark runs reuse prior provider calls instead of
// re-embedding. Implementations must be thread-safe and support concurrent
// access.
type EmbeddingCache interface {
	// Get retrieves a cached embedding.
	// Returns ErrNotFound if the triple has not been cached.
	Get(ctx context.Context, model, language, conceptID string) (*core.CachedEmbedding, error)

	// Put stores one or more embeddings. Entries without an Id get a
	// content-derived one; InsertedAt is set if zero. Existing entries for
	// the same triple are overwritten.
	Put(ctx context.Context, embeddings ...*core.CachedEmbedding) error

	// CountModel returns the number of cached embeddings for a model.
	CountModel(ctx context.Context, model string) (int, error)

	// DeleteModel removes every cached embedding for a model.
	DeleteModel(ctx context.Context, model string) error

	// Close closes the storage backend and releases resources.
	Close() error
}
