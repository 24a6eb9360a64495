package ai_test

import (
	"context"
	"testing"

	"github.com/poiesic/lacuna/ai"
	"github.com/poiesic/lacuna/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	alpha := mock.NewMockProvider("alpha")
	beta := mock.NewMockProvider("beta")
	registry := ai.NewRegistry(alpha, beta)

	t.Run("get by model id", func(t *testing.T) {
		p, ok := registry.Get("alpha")
		require.True(t, ok)
		assert.Equal(t, "alpha", p.ModelID())

		_, ok = registry.Get("missing")
		assert.False(t, ok)
	})

	t.Run("all preserves registration order", func(t *testing.T) {
		all := registry.All()
		require.Len(t, all, 2)
		assert.Equal(t, "alpha", all[0].ModelID())
		assert.Equal(t, "beta", all[1].ModelID())
	})

	t.Run("available filters dead providers", func(t *testing.T) {
		beta.(*mock.MockProvider).AvailableFunc = func(context.Context) bool { return false }
		defer func() { beta.(*mock.MockProvider).AvailableFunc = nil }()

		live := registry.Available(context.Background())
		require.Len(t, live, 1)
		assert.Equal(t, "alpha", live[0].ModelID())
	})
}

func TestMockEmbedderDeterminism(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	ctx := context.Background()

	first, err := embedder.EmbedText(ctx, "saudade")
	require.NoError(t, err)
	second, err := embedder.EmbedText(ctx, "saudade")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 384)
	assert.Equal(t, 2, embedder.CallCount())

	other, err := embedder.EmbedText(ctx, "hygge")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}
