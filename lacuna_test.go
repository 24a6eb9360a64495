package lacuna

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lacuna/ai"
	"github.com/poiesic/lacuna/ai/mock"
	"github.com/poiesic/lacuna/benchmark"
	"github.com/poiesic/lacuna/core"
	"github.com/poiesic/lacuna/pipeline"
)

func engineConfig() *pipeline.Config {
	config := pipeline.DefaultConfig()
	config.Workers = 2
	return config
}

func benchConfig() *benchmark.Config {
	config := benchmark.DefaultConfig()
	config.Permutations = 49
	config.Workers = 2
	return config
}

func newEngineSet(n int) *core.ConceptSet {
	set := &core.ConceptSet{
		Languages: []string{"en", "de"},
		Reference: "en",
	}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("concept-%02d", i)
		set.Concepts = append(set.Concepts, &core.Concept{
			ID: id,
			Labels: map[string]string{
				"en": fmt.Sprintf("label %d", i),
				"de": fmt.Sprintf("Etikett %d", i),
			},
			Definitions: map[string]string{
				"en": fmt.Sprintf("the %dth notion in English", i),
				"de": fmt.Sprintf("der %dte Begriff auf Deutsch", i),
			},
			Confidence: 0.9,
		})
	}
	return set
}

func TestNewEngine(t *testing.T) {
	t.Run("with disk cache", func(t *testing.T) {
		e, err := NewEngine(
			[]ai.Provider{mock.NewMockProvider("model-a")},
			WithCachePath(t.TempDir()),
			WithPipelineConfig(engineConfig()),
			WithBenchmarkConfig(benchConfig()),
		)
		require.NoError(t, err)
		require.NotNil(t, e)
		defer e.Close()

		assert.NotNil(t, e.Registry())
		assert.NotNil(t, e.Cache())
	})

	t.Run("without cache", func(t *testing.T) {
		e, err := NewEngine(
			[]ai.Provider{mock.NewMockProvider("model-a")},
			WithPipelineConfig(engineConfig()),
			WithBenchmarkConfig(benchConfig()),
		)
		require.NoError(t, err)
		defer e.Close()

		assert.Nil(t, e.Cache())
	})
}

func TestEngine_Analyze(t *testing.T) {
	e, err := NewEngine(
		[]ai.Provider{mock.NewMockProvider("model-a")},
		WithMemoryCache(),
		WithPipelineConfig(engineConfig()),
		WithBenchmarkConfig(benchConfig()),
	)
	require.NoError(t, err)
	defer e.Close()

	result, err := e.Analyze(context.Background(), "model-a", newEngineSet(8))
	require.NoError(t, err)
	assert.Equal(t, "model-a", result.ModelID)
	assert.NotEmpty(t, result.ConceptOrder)

	_, err = e.Analyze(context.Background(), "no-such-model", newEngineSet(8))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestEngine_Benchmark(t *testing.T) {
	down := mock.NewMockProvider("model-down").(*mock.MockProvider)
	down.AvailableFunc = func(ctx context.Context) bool { return false }

	e, err := NewEngine(
		[]ai.Provider{
			mock.NewMockProvider("model-a"),
			mock.NewMockProvider("model-b"),
			down,
		},
		WithMemoryCache(),
		WithPipelineConfig(engineConfig()),
		WithBenchmarkConfig(benchConfig()),
	)
	require.NoError(t, err)
	defer e.Close()

	report, err := e.Benchmark(context.Background(), newEngineSet(8))
	require.NoError(t, err)

	assert.Len(t, report.Runs, 2)
	assert.Len(t, report.Metrics, 2)
	assert.Equal(t, []string{"model-down"}, report.Skipped)

	require.NotNil(t, report.Comparison)
	assert.ElementsMatch(t, []string{"model-a", "model-b"}, report.Comparison.Models)
	for _, ranking := range report.Comparison.Rankings {
		assert.Len(t, ranking, 2)
	}
}
