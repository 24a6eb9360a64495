package storage

import (
	"testing"
	"time"

	"github.com/poiesic/lacuna/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalID(t *testing.T) {
	id := core.IDFromContent("minilm/en:saudade")

	data := MarshalID(id)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalID(data)
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}

func TestMarshalCachedEmbedding(t *testing.T) {
	embedding := &core.CachedEmbedding{
		Id:         core.CachedEmbeddingID("minilm", "en", "saudade"),
		Model:      "minilm",
		Language:   "en",
		ConceptId:  "saudade",
		Vector:     []float64{0.1, -0.2, 0.3},
		InsertedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	data := MarshalCachedEmbedding(embedding)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCachedEmbedding(data)
	require.NoError(t, err)
	assert.Equal(t, embedding, decoded)
}

func TestUnmarshalCachedEmbedding_Garbage(t *testing.T) {
	_, err := UnmarshalCachedEmbedding([]byte{0xff})
	assert.Error(t, err)
}
