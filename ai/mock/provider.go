package mock

import (
	"context"

	"github.com/poiesic/lacuna/ai"
)

// MockProvider is a test double for ai.Provider backed by a MockEmbedder.
type MockProvider struct {
	// ID and Name override the reported model identity.
	ID   string
	Name string

	// AvailableFunc is called by Available if set; otherwise the provider
	// reports available.
	AvailableFunc func(ctx context.Context) bool

	embedder *MockEmbedder
	closed   bool
}

// NewMockProvider creates a provider that serves deterministic embeddings.
func NewMockProvider(id string) ai.Provider {
	return &MockProvider{
		ID:       id,
		embedder: NewMockEmbedder(),
	}
}

// ModelID returns the configured model ID.
func (m *MockProvider) ModelID() string {
	return m.ID
}

// ModelName returns the configured display name, defaulting to the ID.
func (m *MockProvider) ModelName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// Embedder returns the underlying mock embedder.
func (m *MockProvider) Embedder() ai.Embedder {
	return m.embedder
}

// Available reports true unless overridden or closed.
func (m *MockProvider) Available(ctx context.Context) bool {
	if m.closed {
		return false
	}
	if m.AvailableFunc != nil {
		return m.AvailableFunc(ctx)
	}
	return true
}

// Close marks the provider unavailable.
func (m *MockProvider) Close() error {
	m.closed = true
	return nil
}

// GetMockEmbedder exposes the concrete embedder for test assertions.
func (m *MockProvider) GetMockEmbedder() *MockEmbedder {
	return m.embedder
}
