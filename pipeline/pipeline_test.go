package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lacuna/ai/mock"
	"github.com/poiesic/lacuna/cluster"
	"github.com/poiesic/lacuna/core"
	"github.com/poiesic/lacuna/storage/badger"
)

func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()

	config := DefaultConfig()
	config.Workers = 2

	p, err := New(append([]Option{WithConfig(config)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

// newTestSet builds a two-language set whose concepts carry distinct
// definitions per language.
func newTestSet(n int) *core.ConceptSet {
	set := &core.ConceptSet{
		Languages: []string{"en", "de"},
		Reference: "en",
	}
	topics := []string{"longing", "threshold", "weather", "kinship", "debt", "silence", "harvest", "drift"}
	for i := 0; i < n; i++ {
		topic := topics[i%len(topics)]
		id := fmt.Sprintf("concept-%02d", i)
		set.Concepts = append(set.Concepts, &core.Concept{
			ID: id,
			Labels: map[string]string{
				"en": fmt.Sprintf("%s %d", topic, i),
				"de": fmt.Sprintf("%s-de %d", topic, i),
			},
			Definitions: map[string]string{
				"en": fmt.Sprintf("an English sense of %s, variant %d", topic, i),
				"de": fmt.Sprintf("eine deutsche Lesart von %s, Variante %d", topic, i),
			},
			Confidence: 0.9,
			Source:     "curated",
		})
	}
	return set
}

func TestPipelineRun(t *testing.T) {
	p := newTestPipeline(t)
	provider := mock.NewMockProvider("test-model")
	set := newTestSet(10)

	result, err := p.Run(context.Background(), provider, set)
	require.NoError(t, err)

	assert.Equal(t, "test-model", result.ModelID)
	assert.Equal(t, 384, result.Dimension)
	assert.Equal(t, 10, result.Stats.TotalConcepts)
	assert.Equal(t, 10, result.Stats.ValidConcepts)
	assert.Equal(t, len(result.ConceptOrder), result.Stats.ValidConcepts)
	require.NotEmpty(t, result.ConceptOrder)

	frame := p.config.Projector.Bound * p.config.Projector.Margin
	for _, id := range result.ConceptOrder {
		cr := result.Concepts[id]
		require.NotNil(t, cr, "every ordered concept has a result")
		for _, lang := range set.Languages {
			pos := cr.Positions[lang]
			assert.LessOrEqual(t, math.Abs(pos.X), frame+1e-9, lang)
			assert.LessOrEqual(t, math.Abs(pos.Y), frame+1e-9, lang)
			w := cr.Weights[lang]
			assert.GreaterOrEqual(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)
		}
		assert.GreaterOrEqual(t, cr.Divergence, 0.0)
		assert.LessOrEqual(t, cr.Divergence, 2.0)
		assert.InDelta(t, 1.0, cr.CosineToReference["en"], 1e-9,
			"reference language is identical to itself")
	}

	for _, lang := range set.Languages {
		matrix := result.Pairwise[lang]
		require.Len(t, matrix, len(result.ConceptOrder))
		for i, row := range matrix {
			assert.Zero(t, row[i], "diagonal is zero")
			for _, v := range row {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	}
}

func TestPipelineRun_Deterministic(t *testing.T) {
	set1 := newTestSet(8)
	set2 := newTestSet(8)

	p := newTestPipeline(t)
	r1, err := p.Run(context.Background(), mock.NewMockProvider("m"), set1)
	require.NoError(t, err)
	r2, err := p.Run(context.Background(), mock.NewMockProvider("m"), set2)
	require.NoError(t, err)

	require.Equal(t, r1.ConceptOrder, r2.ConceptOrder)
	for _, id := range r1.ConceptOrder {
		assert.Equal(t, r1.Concepts[id].Positions, r2.Concepts[id].Positions)
		assert.Equal(t, r1.Concepts[id].Clusters, r2.Concepts[id].Clusters)
	}
}

func TestPipelineRun_ProviderUnavailable(t *testing.T) {
	p := newTestPipeline(t)
	provider := mock.NewMockProvider("down").(*mock.MockProvider)
	provider.AvailableFunc = func(ctx context.Context) bool { return false }

	_, err := p.Run(context.Background(), provider, newTestSet(4))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestPipelineRun_InvalidSet(t *testing.T) {
	p := newTestPipeline(t)
	set := &core.ConceptSet{Languages: []string{"en"}, Reference: "fr"}

	_, err := p.Run(context.Background(), mock.NewMockProvider("m"), set)
	require.Error(t, err)
}

func TestPipelineRun_EmptyValidSet(t *testing.T) {
	p := newTestPipeline(t)
	set := newTestSet(5)
	for _, c := range set.Concepts {
		c.Confidence = 0.1 // Below the confidence gate
	}

	result, err := p.Run(context.Background(), mock.NewMockProvider("m"), set)
	require.NoError(t, err, "an empty valid set is not an error")

	assert.Equal(t, 5, result.Stats.TotalConcepts)
	assert.Zero(t, result.Stats.ValidConcepts)
	assert.Equal(t, 5, result.Stats.RejectedConcepts)
	assert.Empty(t, result.ConceptOrder)
	assert.Empty(t, result.Concepts)
	require.NotEmpty(t, result.Stats.Warnings)
	assert.Contains(t, result.Stats.Warnings[len(result.Stats.Warnings)-1], "no concepts")
}

func TestPipelineRun_CuratedClusters(t *testing.T) {
	p := newTestPipeline(t)
	set := newTestSet(6)
	groups := []string{"emotion", "emotion", "emotion", "nature", "nature", "nature"}
	for i, c := range set.Concepts {
		c.Cluster = groups[i]
	}

	result, err := p.Run(context.Background(), mock.NewMockProvider("m"), set)
	require.NoError(t, err)
	require.Len(t, result.ConceptOrder, 6)

	first := result.Concepts[result.ConceptOrder[0]]
	for _, id := range result.ConceptOrder[:3] {
		cr := result.Concepts[id]
		assert.Equal(t, first.Clusters["en"], cr.Clusters["en"], "curated group stays together")
		assert.Equal(t, cr.Clusters["en"], cr.Clusters["de"], "curated labels are language-independent")
	}
	last := result.Concepts[result.ConceptOrder[5]]
	assert.NotEqual(t, first.Clusters["en"], last.Clusters["en"])
	assert.NotEqual(t, cluster.Noise, first.Clusters["en"])
}

func TestPipelineRun_CacheAvoidsReembedding(t *testing.T) {
	cache, backend, err := badger.NewMemoryCache()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	p := newTestPipeline(t, WithCache(cache))
	provider := mock.NewMockProvider("cached-model").(*mock.MockProvider)

	_, err = p.Run(context.Background(), provider, newTestSet(6))
	require.NoError(t, err)
	firstCalls := provider.GetMockEmbedder().CallCount()
	require.Greater(t, firstCalls, 0, "first run must hit the provider")

	count, err := cache.CountModel(context.Background(), "cached-model")
	require.NoError(t, err)
	assert.Equal(t, 12, count, "six concepts in two languages")

	_, err = p.Run(context.Background(), provider, newTestSet(6))
	require.NoError(t, err)
	assert.Equal(t, firstCalls, provider.GetMockEmbedder().CallCount(),
		"second run is served entirely from cache")
}

func TestPipelineRun_PartialLanguageCoverage(t *testing.T) {
	p := newTestPipeline(t)
	set := newTestSet(6)
	// One concept has no German text at all.
	gapID := set.Concepts[2].ID
	set.Concepts[2].Labels = map[string]string{"en": set.Concepts[2].Labels["en"]}
	set.Concepts[2].Definitions = map[string]string{"en": set.Concepts[2].Definitions["en"]}

	result, err := p.Run(context.Background(), mock.NewMockProvider("m"), set)
	require.NoError(t, err, "partial coverage degrades, never fails")
	assert.NotEmpty(t, result.ConceptOrder)

	cr := result.Concepts[gapID]
	require.NotNil(t, cr)
	assert.Equal(t, 0.5, cr.Weights["de"],
		"a missing embedding carries the neutral weight")
	assert.False(t, cr.Lacuna["de"],
		"absence of data in a language is not a detected gap")
}

func TestPipelineRun_ExternalReferenceCorpus(t *testing.T) {
	// An axis-aligned corpus is nowhere near the mock provider's
	// hash-derived vectors, so measuring against it rejects every concept.
	corpus := make([][]float64, 3)
	for i := range corpus {
		corpus[i] = make([]float64, 384)
		corpus[i][i] = 1
	}

	p := newTestPipeline(t, WithReferenceCorpus(corpus))
	result, err := p.Run(context.Background(), mock.NewMockProvider("m"), newTestSet(6))
	require.NoError(t, err)

	assert.Zero(t, result.Stats.ValidConcepts)
	assert.Equal(t, 6, result.Stats.RejectedConcepts)
	for _, reason := range result.Stats.RejectionReasons {
		assert.Contains(t, reason, "Outlier")
	}
	require.NotEmpty(t, result.Stats.RejectionReasons)
}

func TestPipelineRun_RetriesTransientEmbedFailures(t *testing.T) {
	config := DefaultConfig()
	config.Workers = 1 // Serialize the per-language batches
	config.RetryAttempts = 3
	config.RetryBaseDelay = time.Millisecond

	p, err := New(WithConfig(config))
	require.NoError(t, err)
	t.Cleanup(p.Release)

	provider := mock.NewMockProvider("flaky").(*mock.MockProvider)
	emb := provider.GetMockEmbedder()
	failures := 0
	emb.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float64, error) {
		if failures < 2 {
			failures++
			return nil, errors.New("backend overloaded")
		}
		emb.EmbedTextsFunc = nil
		return emb.EmbedTexts(ctx, texts)
	}

	result, err := p.Run(context.Background(), provider, newTestSet(6))
	require.NoError(t, err, "two transient failures sit inside the retry budget")
	assert.Equal(t, 2, failures)
	assert.Equal(t, 6, result.Stats.ValidConcepts)
}

func TestEmbeddingText(t *testing.T) {
	c := &core.Concept{
		Labels:      map[string]string{"en": "saudade"},
		Definitions: map[string]string{"en": "a deep longing for something absent"},
	}
	assert.Equal(t, "a deep longing for something absent", embeddingText(c, "en"))
	assert.Equal(t, "", embeddingText(c, "de"))

	c.Definitions = nil
	assert.Equal(t, "saudade", embeddingText(c, "en"))
}
