package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lacuna/ai"
	"github.com/poiesic/lacuna/cluster"
	"github.com/poiesic/lacuna/core"
	"github.com/poiesic/lacuna/project"
	"github.com/poiesic/lacuna/score"
	"github.com/poiesic/lacuna/storage"
	"github.com/poiesic/lacuna/validate"
	"github.com/poiesic/lacuna/vector"
)

// Config holds the pipeline parameters.
type Config struct {
	// Validator carries the quality-gate thresholds.
	Validator *validate.Config

	// Projector carries the reduction and terrain parameters.
	Projector *project.Config

	// MinClusterSize is the density-clustering floor.
	MinClusterSize int

	// RetryAttempts and RetryBaseDelay govern provider call retries.
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// Workers sizes the per-language worker pool.
	Workers int
}

// DefaultConfig returns the standard pipeline parameters.
func DefaultConfig() *Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Config{
		Validator:      validate.DefaultConfig(),
		Projector:      project.DefaultConfig(),
		MinClusterSize: cluster.DefaultMinClusterSize,
		RetryAttempts:  3,
		RetryBaseDelay: time.Second,
		Workers:        workers,
	}
}

// Pipeline runs the full analysis for one model over one concept set:
// embed (cache-aware), validate, project, cluster, and score, producing a
// core.ModelResult. The pipeline itself holds no per-run state and may be
// reused across models.
type Pipeline struct {
	config    *Config
	cache     storage.EmbeddingCache
	validator *validate.Validator
	projector *project.Projector
	progress  *ProgressTracker
	reference [][]float64
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithConfig replaces the pipeline parameters.
func WithConfig(config *Config) Option {
	return func(p *Pipeline) error {
		if config == nil {
			config = DefaultConfig()
		}
		if config.Validator == nil {
			config.Validator = validate.DefaultConfig()
		}
		if config.Projector == nil {
			config.Projector = project.DefaultConfig()
		}
		if config.MinClusterSize < 2 {
			config.MinClusterSize = cluster.DefaultMinClusterSize
		}
		if config.RetryAttempts < 1 {
			config.RetryAttempts = 1
		}
		p.config = config
		return nil
	}
}

// WithCache sets the embedding cache consulted before provider calls.
// Without a cache every run re-embeds from scratch.
func WithCache(cache storage.EmbeddingCache) Option {
	return func(p *Pipeline) error {
		p.cache = cache
		return nil
	}
}

// WithProgress attaches a progress tracker for embedding work.
func WithProgress(progress *ProgressTracker) Option {
	return func(p *Pipeline) error {
		p.progress = progress
		return nil
	}
}

// WithReferenceCorpus supplies external embeddings the validator measures
// extremity against. The corpus must come from outside the analyzed set;
// without one the extremity gate is skipped.
func WithReferenceCorpus(vectors [][]float64) Option {
	return func(p *Pipeline) error {
		p.reference = vectors
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// New creates a pipeline with default parameters.
// Call Release when done to free the worker pool.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		config: DefaultConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	validator, err := validate.NewValidator(
		validate.WithConfig(p.config.Validator),
		validate.WithLogger(p.logger),
	)
	if err != nil {
		return nil, err
	}
	p.validator = validator

	projector, err := project.NewProjector(
		project.WithConfig(p.config.Projector),
		project.WithLogger(p.logger),
	)
	if err != nil {
		return nil, err
	}
	p.projector = projector

	pool, err := ants.NewPool(p.config.Workers)
	if err != nil {
		return nil, err
	}
	p.pool = pool

	return p, nil
}

// Release frees the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Run executes the full analysis for one provider over the concept set.
// A provider that fails its availability probe returns
// ErrProviderUnavailable so the caller can skip the model and continue.
// A set with no surviving concepts is not an error: the result carries an
// explanatory stats record and empty concept data.
func (p *Pipeline) Run(ctx context.Context, provider ai.Provider, set *core.ConceptSet) (*core.ModelResult, error) {
	if err := core.ValidateConceptSet(set); err != nil {
		return nil, err
	}
	if !provider.Available(ctx) {
		return nil, ErrProviderUnavailable
	}

	if p.progress != nil {
		p.progress.Start()
		defer p.progress.Finish()
	}

	if err := p.embed(ctx, provider, set); err != nil {
		return nil, err
	}

	validated, err := p.validator.Validate(set, p.reference, nil)
	if err != nil {
		return nil, err
	}

	result := &core.ModelResult{
		ModelID:   provider.ModelID(),
		ModelName: provider.ModelName(),
		Concepts:  make(map[string]*core.ConceptResult),
		Stats: core.RunStats{
			TotalConcepts:    len(set.Concepts),
			ValidConcepts:    len(validated.Valid),
			RejectedConcepts: len(validated.Rejected),
			RejectionReasons: validated.Reasons,
			Warnings:         validated.Warnings,
		},
	}

	if len(validated.Valid) == 0 {
		result.Stats.Warnings = append(result.Stats.Warnings,
			"no concepts with valid embeddings in any language")
		p.logger.Warn("pipeline run produced an empty valid set",
			"model", provider.ModelID(), "rejected", len(validated.Rejected))
		return result, nil
	}

	p.analyze(validated.Valid, set, result)

	p.logger.Info("pipeline run complete",
		"model", provider.ModelID(),
		"concepts", len(result.ConceptOrder),
		"languages", len(set.Languages))
	return result, nil
}

// analyze derives positions, weights, clusters, divergence, and lacuna
// flags for the validated concepts and fills the model result.
func (p *Pipeline) analyze(valid []*core.ValidatedConcept, set *core.ConceptSet, result *core.ModelResult) {
	order := make([]string, len(valid))
	for i, vc := range valid {
		order[i] = vc.Concept.ID
	}
	result.ConceptOrder = order
	result.Dimension = embeddingDimension(valid)

	// Row-corresponding matrices per language; concepts missing a language
	// get a zero vector so alignment stays index-stable.
	matrices := make(map[string][][]float64, len(set.Languages))
	for _, lang := range set.Languages {
		matrix := make([][]float64, len(valid))
		for i, vc := range valid {
			if emb, ok := vc.Embeddings[lang]; ok {
				matrix[i] = emb
				continue
			}
			matrix[i] = make([]float64, result.Dimension)
			p.logger.Warn("missing embedding, substituting zero vector",
				"concept", vc.Concept.ID, "language", lang)
		}
		matrices[lang] = matrix
	}

	positions, err := p.projector.Project(matrices, set.Reference)
	if err != nil {
		// Row correspondence is constructed above; only a degenerate set
		// reaches this, and it degrades to the zero layout.
		p.logger.Error("projection failed, using zero layout", "err", err)
		positions = make(map[string][][]float64, len(set.Languages))
		for _, lang := range set.Languages {
			layout := make([][]float64, len(valid))
			for i := range layout {
				layout[i] = make([]float64, 2)
			}
			positions[lang] = layout
		}
	}

	labels := p.clusterLanguages(valid, matrices, set.Languages)

	// Reported weights use the centroid formula; ghost flags use the
	// norm formula over the same full set.
	weights := make(map[string][]float64, len(set.Languages))
	normWeights := make(map[string][]float64, len(set.Languages))
	for _, lang := range set.Languages {
		weights[lang] = score.CentroidWeights(matrices[lang], labels[lang])
		normWeights[lang] = score.NormWeights(matrices[lang])
	}
	ghosts := score.GhostFlags(normWeights, set.Languages)
	lacunae := score.DensityLacunae(matrices, set.Reference, set.Languages)

	result.Pairwise = make(map[string][][]float64, len(set.Languages))
	for _, lang := range set.Languages {
		dist := vector.DistanceMatrix(matrices[lang])
		vector.NormalizeDistances(dist)
		result.Pairwise[lang] = dist
	}

	for i, vc := range valid {
		cr := &core.ConceptResult{
			Positions:         make(map[string]core.Position, len(set.Languages)),
			Weights:           make(map[string]float64, len(set.Languages)),
			CosineToReference: make(map[string]float64, len(set.Languages)),
			Clusters:          make(map[string]int, len(set.Languages)),
			Lacuna:            make(map[string]bool, len(set.Languages)),
			Divergence:        score.Divergence(vc.Embeddings, set.Languages),
		}

		refEmb := vc.Embeddings[set.Reference]
		for _, lang := range set.Languages {
			pos := positions[lang][i]
			cr.Positions[lang] = core.Position{X: pos[0], Y: pos[1]}
			cr.Weights[lang] = weights[lang][i]
			cr.Clusters[lang] = labels[lang][i]

			if emb, ok := vc.Embeddings[lang]; ok && refEmb != nil {
				cr.CosineToReference[lang] = vector.Cosine(emb, refEmb)
			}

			flag := ghosts[i][lang]
			if _, ok := vc.Embeddings[lang]; ok && lacunae[i][lang] {
				flag = true
			}
			cr.Lacuna[lang] = flag
		}

		result.Concepts[vc.Concept.ID] = cr
	}
}

// clusterLanguages assigns cluster labels per language: curated labels win
// when the set carries them, density clustering otherwise.
func (p *Pipeline) clusterLanguages(valid []*core.ValidatedConcept, matrices map[string][][]float64, languages []string) map[string][]int {
	concepts := make([]*core.Concept, len(valid))
	for i, vc := range valid {
		concepts[i] = vc.Concept
	}

	labels := make(map[string][]int, len(languages))
	if curated, ok := cluster.CuratedLabels(concepts); ok {
		for _, lang := range languages {
			labels[lang] = curated
		}
		return labels
	}

	for _, lang := range languages {
		labels[lang] = cluster.DensityClusters(matrices[lang], p.config.MinClusterSize)
	}
	return labels
}

func embeddingDimension(valid []*core.ValidatedConcept) int {
	for _, vc := range valid {
		for _, emb := range vc.Embeddings {
			if len(emb) > 0 {
				return len(emb)
			}
		}
	}
	return 0
}
