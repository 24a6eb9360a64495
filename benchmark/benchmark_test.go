package benchmark

import (
	"math"
	"math/rand"
	"testing"

	"github.com/poiesic/lacuna/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSuite(t *testing.T, config *Config) *Suite {
	t.Helper()
	s, err := NewSuite(WithConfig(config))
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s
}

func TestCLAS(t *testing.T) {
	t.Run("identical embeddings contribute exactly one", func(t *testing.T) {
		set := &core.ConceptSet{
			Languages: []string{"en", "de"},
			Reference: "en",
			Concepts:  []*core.Concept{{ID: "same"}},
		}
		set.SetEmbedding("en", "same", []float64{0.3, 0.4})
		set.SetEmbedding("de", "same", []float64{0.3, 0.4})

		result := CLAS(set)
		assert.Equal(t, 1.0, result.Pairs["en-de"])
		assert.Equal(t, 1.0, result.Average)
	})

	t.Run("averages per pair and overall", func(t *testing.T) {
		set := &core.ConceptSet{
			Languages: []string{"en", "de", "ja"},
			Reference: "en",
			Concepts:  []*core.Concept{{ID: "a"}, {ID: "b"}},
		}
		set.SetEmbedding("en", "a", []float64{1, 0})
		set.SetEmbedding("de", "a", []float64{0, 1})
		set.SetEmbedding("en", "b", []float64{1, 0})
		set.SetEmbedding("de", "b", []float64{1, 0})
		set.SetEmbedding("ja", "a", []float64{1, 0})

		result := CLAS(set)
		assert.InDelta(t, 0.5, result.Pairs["en-de"], 1e-9)
		assert.InDelta(t, 1.0, result.Pairs["en-ja"], 1e-9)
		assert.InDelta(t, 0.75, result.Average, 1e-9)
	})

	t.Run("concepts missing either side are skipped", func(t *testing.T) {
		set := &core.ConceptSet{
			Languages: []string{"en", "de"},
			Reference: "en",
			Concepts:  []*core.Concept{{ID: "partial"}},
		}
		set.SetEmbedding("en", "partial", []float64{1, 0})

		result := CLAS(set)
		assert.Empty(t, result.Pairs)
		assert.Equal(t, 0.0, result.Average)
	})
}

func TestCorrelation(t *testing.T) {
	t.Run("pearson perfect and inverse", func(t *testing.T) {
		x := []float64{1, 2, 3, 4}
		assert.InDelta(t, 1.0, pearson(x, []float64{2, 4, 6, 8}), 1e-9)
		assert.InDelta(t, -1.0, pearson(x, []float64{8, 6, 4, 2}), 1e-9)
	})

	t.Run("pearson zero variance", func(t *testing.T) {
		assert.Equal(t, 0.0, pearson([]float64{1, 1, 1}, []float64{1, 2, 3}))
	})

	t.Run("spearman sees through monotone nonlinearity", func(t *testing.T) {
		x := []float64{1, 2, 3, 4, 5}
		y := []float64{1, 8, 27, 64, 125}
		assert.InDelta(t, 1.0, spearman(x, y), 1e-9)
	})

	t.Run("ranks average ties", func(t *testing.T) {
		assert.Equal(t, []float64{1.5, 1.5, 3}, ranks([]float64{2, 2, 5}))
	})
}

// randomDistances builds a symmetric zero-diagonal matrix with values in
// [0, 1].
func randomDistances(n int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := rng.Float64()
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}

func TestTopologyPreservation(t *testing.T) {
	s := newTestSuite(t, &Config{Permutations: 99, Seed: 5})

	t.Run("identical structures correlate perfectly", func(t *testing.T) {
		m := randomDistances(12, 1)
		result := s.TopologyPreservation(map[string][][]float64{"en": m, "de": m}, "en", []string{"en", "de"})

		corr := result.Pairs["en-de"]
		assert.InDelta(t, 1.0, corr.R, 1e-9)
		assert.Greater(t, corr.P, 0.0)
		assert.LessOrEqual(t, corr.P, 1.0)
		assert.Less(t, corr.P, 0.05, "structure this strong must be significant")
	})

	t.Run("unrelated structures are insignificant", func(t *testing.T) {
		result := s.TopologyPreservation(map[string][][]float64{
			"en": randomDistances(12, 2),
			"de": randomDistances(12, 3),
		}, "en", []string{"en", "de"})

		corr := result.Pairs["en-de"]
		assert.Less(t, math.Abs(corr.R), 0.5)
		assert.Greater(t, corr.P, 0.0)
		assert.LessOrEqual(t, corr.P, 1.0)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		matrices := map[string][][]float64{
			"en": randomDistances(10, 4),
			"de": randomDistances(10, 5),
		}
		first := s.TopologyPreservation(matrices, "en", []string{"en", "de"})
		second := s.TopologyPreservation(matrices, "en", []string{"en", "de"})
		assert.Equal(t, first, second)
	})

	t.Run("missing reference yields empty result", func(t *testing.T) {
		result := s.TopologyPreservation(map[string][][]float64{"de": randomDistances(5, 6)}, "en", []string{"en", "de"})
		assert.Empty(t, result.Pairs)
	})
}

// detectionFixture builds a two-cluster layout in en with one ground-truth
// lacuna either near or far from its cluster's centroid.
func detectionFixture(lacunaDistance float64) (*core.ConceptSet, *core.ModelResult) {
	set := &core.ConceptSet{
		Languages: []string{"en"},
		Reference: "en",
	}
	result := &core.ModelResult{
		ModelID:  "fixture",
		Concepts: make(map[string]*core.ConceptResult),
	}

	add := func(id string, x, y float64, clusterLabel int, ghost bool) {
		c := &core.Concept{ID: id}
		if ghost {
			c.Ghost = map[string]bool{"en": true}
		}
		set.Concepts = append(set.Concepts, c)
		set.SetEmbedding("en", id, []float64{x, y})
		result.Concepts[id] = &core.ConceptResult{
			Positions: map[string]core.Position{"en": {X: x, Y: y}},
			Clusters:  map[string]int{"en": clusterLabel},
		}
	}

	add("a", -10, 0, 0, false)
	add("b", -12, 2, 0, false)
	add("c", -11, -2, 0, false)
	add("gap", -11+lacunaDistance, 0, 0, true)
	return set, result
}

func TestLacunaDetection(t *testing.T) {
	s := newTestSuite(t, &Config{Permutations: 9})

	t.Run("distant lacuna is detected", func(t *testing.T) {
		set, result := detectionFixture(30)
		detection := s.LacunaDetection(set, result)
		rate := detection.PerLanguage["en"]
		assert.Equal(t, 1, rate.Expected)
		assert.Equal(t, 1, rate.Detected)
		assert.Equal(t, 1.0, rate.Rate)
	})

	t.Run("nearby lacuna is missed", func(t *testing.T) {
		set, result := detectionFixture(3)
		detection := s.LacunaDetection(set, result)
		rate := detection.PerLanguage["en"]
		assert.Equal(t, 1, rate.Expected)
		assert.Equal(t, 0, rate.Detected)
		assert.Equal(t, 0.0, rate.Rate)
	})

	t.Run("no expected lacunae is vacuously satisfied", func(t *testing.T) {
		set, result := detectionFixture(30)
		for _, c := range set.Concepts {
			c.Ghost = nil
		}
		detection := s.LacunaDetection(set, result)
		assert.Equal(t, 1.0, detection.PerLanguage["en"].Rate)
		assert.Equal(t, 0, detection.PerLanguage["en"].Expected)
	})

	t.Run("lacuna without clustered siblings counts as detected", func(t *testing.T) {
		set, result := detectionFixture(3)
		// Strand the lacuna in its own cluster label.
		result.Concepts["gap"].Clusters["en"] = 7
		detection := s.LacunaDetection(set, result)
		assert.Equal(t, 1, detection.PerLanguage["en"].Detected)
	})
}

func TestCompare(t *testing.T) {
	results := []*core.MetricResult{
		{
			ModelID:         "collapser",
			CLAS:            core.CLASResult{Average: 0.95},
			Topology:        core.TopologyResult{Average: 0.9},
			Coherence:       core.CoherenceResult{Average: 0.5},
			LacunaDetection: core.LacunaDetectionResult{Average: 0.5},
		},
		{
			ModelID:         "preserver",
			CLAS:            core.CLASResult{Average: 0.4},
			Topology:        core.TopologyResult{Average: 0.8},
			Coherence:       core.CoherenceResult{Average: 0.6},
			LacunaDetection: core.LacunaDetectionResult{Average: 0.9},
		},
	}

	comparison := Compare(results)

	t.Run("clas ranks ascending", func(t *testing.T) {
		assert.Equal(t, []string{"preserver", "collapser"}, comparison.Rankings[MetricCLAS])
	})

	t.Run("topology ranks descending", func(t *testing.T) {
		assert.Equal(t, []string{"collapser", "preserver"}, comparison.Rankings[MetricTopology])
	})

	t.Run("composite favors the preserver", func(t *testing.T) {
		preserver := (1 - 0.4 + 0.8 + 0.6 + 0.9) / 4
		assert.InDelta(t, preserver, comparison.Scores[MetricComposite]["preserver"], 1e-9)
		assert.Equal(t, "preserver", comparison.Rankings[MetricComposite][0])
	})

	t.Run("p values stay in the unit interval", func(t *testing.T) {
		// (count+1)/(perms+1) can never be 0 and caps at 1.
		p := func(count, perms int) float64 { return float64(count+1) / float64(perms+1) }
		assert.Greater(t, p(0, 999), 0.0)
		assert.Equal(t, 1.0, p(999, 999))
	})
}

func TestSuiteEvaluate(t *testing.T) {
	set, modelResult := detectionFixture(30)
	modelResult.Pairwise = map[string][][]float64{"en": randomDistances(4, 8)}

	s := newTestSuite(t, &Config{Permutations: 19})
	metrics, err := s.Evaluate(set, modelResult)
	require.NoError(t, err)

	assert.Equal(t, "fixture", metrics.ModelID)
	assert.Equal(t, 1.0, metrics.LacunaDetection.Average)
	composite := metrics.Composite()
	assert.False(t, math.IsNaN(composite))
}
