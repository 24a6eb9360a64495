package benchmark

import (
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lacuna/cluster"
	"github.com/poiesic/lacuna/core"
)

// Config holds the benchmark suite parameters.
type Config struct {
	// Permutations is the trial count for topology significance testing.
	Permutations int

	// Method selects the topology correlation: MethodSpearman (default) or
	// MethodPearson.
	Method string

	// Seed makes permutation trials reproducible.
	Seed int64

	// DetectionDistance is the Euclidean distance in the terrain frame
	// beyond which a ground-truth lacuna counts as detected.
	DetectionDistance float64

	// Workers sizes the permutation-trial pool. Defaults to half the CPUs.
	Workers int
}

// DefaultConfig returns the standard benchmark parameters.
func DefaultConfig() *Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Config{
		Permutations:      DefaultPermutations,
		Method:            MethodSpearman,
		Seed:              1,
		DetectionDistance: DefaultDetectionDistance,
		Workers:           workers,
	}
}

// Suite evaluates benchmark metrics for model outputs over a shared concept
// set and ranks models against each other.
type Suite struct {
	config *Config
	logger *slog.Logger
	pool   *ants.Pool
}

// Option configures a Suite.
type Option func(*Suite) error

// WithConfig replaces the benchmark parameters.
func WithConfig(config *Config) Option {
	return func(s *Suite) error {
		if config == nil {
			config = DefaultConfig()
		}
		if config.Permutations < 1 {
			config.Permutations = DefaultPermutations
		}
		if config.Method == "" {
			config.Method = MethodSpearman
		}
		if config.DetectionDistance <= 0 {
			config.DetectionDistance = DefaultDetectionDistance
		}
		s.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Suite) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSuite creates a benchmark suite with default parameters.
// Call Release when done to free the trial pool.
func NewSuite(opts ...Option) (*Suite, error) {
	s := &Suite{
		config: DefaultConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	pool, err := newTrialPool(s.config.Workers)
	if err != nil {
		return nil, err
	}
	s.pool = pool

	return s, nil
}

// Release frees the permutation-trial pool. The suite should not be used
// after calling Release.
func (s *Suite) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Evaluate computes the full metric record for one model's output over the
// concept set it was produced from.
func (s *Suite) Evaluate(set *core.ConceptSet, result *core.ModelResult) (*core.MetricResult, error) {
	if err := core.ValidateConceptSet(set); err != nil {
		return nil, err
	}

	metrics := &core.MetricResult{
		ModelID:         result.ModelID,
		CLAS:            CLAS(set),
		Topology:        s.TopologyPreservation(result.Pairwise, set.Reference, set.Languages),
		Coherence:       s.Coherence(set, result),
		LacunaDetection: s.LacunaDetection(set, result),
	}

	s.logger.Info("model evaluated",
		"model", result.ModelID,
		"clas", metrics.CLAS.Average,
		"topology", metrics.Topology.Average,
		"coherence", metrics.Coherence.Average,
		"lacuna_detection", metrics.LacunaDetection.Average,
		"composite", metrics.Composite())

	return metrics, nil
}

// Coherence averages the per-language silhouette over the model's cluster
// labels and the set's high-dimensional embeddings.
func (s *Suite) Coherence(set *core.ConceptSet, result *core.ModelResult) core.CoherenceResult {
	coherence := core.CoherenceResult{PerLanguage: make(map[string]float64)}

	var total float64
	for _, lang := range set.Languages {
		ids, vectors := set.LanguageMatrix(lang)
		if len(vectors) == 0 {
			continue
		}

		labels := make([]int, len(ids))
		for i, id := range ids {
			labels[i] = cluster.Noise
			if cr, ok := result.Concepts[id]; ok {
				if label, ok := cr.Clusters[lang]; ok {
					labels[i] = label
				}
			}
		}

		score := cluster.Silhouette(vectors, labels)
		coherence.PerLanguage[lang] = score
		total += score
	}

	if len(coherence.PerLanguage) > 0 {
		coherence.Average = total / float64(len(coherence.PerLanguage))
	}
	return coherence
}
