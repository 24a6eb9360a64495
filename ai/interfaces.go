package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float64, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch, in input order. Batch calls are more efficient than repeated
	// EmbedText calls.
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Provider is one embedding model under benchmark. Providers load their
// model lazily and memoize it; Available probes whether the model can
// actually serve so the benchmark suite can skip dead providers and
// continue with the rest.
type Provider interface {
	// ModelID is the stable identifier results are keyed by.
	ModelID() string

	// ModelName is the human-readable model name for reports.
	ModelName() string

	// Embedder returns the embedding service. Safe for concurrent use.
	Embedder() Embedder

	// Available reports whether the provider can serve embeddings right
	// now. A false result is a skip signal, never an error.
	Available(ctx context.Context) bool

	// Close releases resources held by the provider.
	// After Close the provider should not be used.
	Close() error
}
