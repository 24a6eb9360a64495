// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package lacuna

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/lacuna/ai"
	"github.com/poiesic/lacuna/benchmark"
	"github.com/poiesic/lacuna/core"
	"github.com/poiesic/lacuna/pipeline"
	"github.com/poiesic/lacuna/storage"
	"github.com/poiesic/lacuna/storage/badger"
)

// ErrUnknownModel indicates a model ID with no registered provider.
var ErrUnknownModel = errors.New("unknown model")

// Engine bundles the providers, the embedding cache, the per-model pipeline,
// and the benchmark suite into one ready-to-use unit.
type Engine struct {
	registry *ai.Registry
	backend  *badger.Backend
	cache    storage.EmbeddingCache
	pipeline *pipeline.Pipeline
	suite    *benchmark.Suite
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	cachePath       string
	memoryCache     bool
	pipelineConfig  *pipeline.Config
	benchmarkConfig *benchmark.Config
	progress        *pipeline.ProgressTracker
	reference       [][]float64
	logger          *slog.Logger
}

// WithCachePath enables the on-disk embedding cache at the given directory.
func WithCachePath(path string) EngineOption {
	return func(o *engineOptions) {
		o.cachePath = path
	}
}

// WithMemoryCache enables an in-memory embedding cache. Useful for tests
// and one-shot runs.
func WithMemoryCache() EngineOption {
	return func(o *engineOptions) {
		o.memoryCache = true
	}
}

// WithPipelineConfig replaces the pipeline parameters.
func WithPipelineConfig(config *pipeline.Config) EngineOption {
	return func(o *engineOptions) {
		o.pipelineConfig = config
	}
}

// WithBenchmarkConfig replaces the benchmark parameters.
func WithBenchmarkConfig(config *benchmark.Config) EngineOption {
	return func(o *engineOptions) {
		o.benchmarkConfig = config
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithProgress attaches a progress tracker to the engine's pipeline.
func WithProgress(progress *pipeline.ProgressTracker) EngineOption {
	return func(o *engineOptions) {
		o.progress = progress
	}
}

// WithReferenceCorpus supplies external embeddings that validation measures
// topical extremity against. Without one the extremity gate is skipped.
func WithReferenceCorpus(vectors [][]float64) EngineOption {
	return func(o *engineOptions) {
		o.reference = vectors
	}
}

// NewEngine builds an engine over the given providers. Without a cache
// option every run re-embeds from scratch.
func NewEngine(providers []ai.Provider, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		pipelineConfig:  pipeline.DefaultConfig(),
		benchmarkConfig: benchmark.DefaultConfig(),
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	e := &Engine{
		registry: ai.NewRegistry(providers...),
		logger:   options.logger,
	}

	if options.cachePath != "" || options.memoryCache {
		backend, err := badger.OpenBackend(options.cachePath, options.memoryCache)
		if err != nil {
			return nil, err
		}
		cache, err := badger.NewCache(backend)
		if err != nil {
			backend.Close()
			return nil, err
		}
		e.backend = backend
		e.cache = cache
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithConfig(options.pipelineConfig),
		pipeline.WithLogger(options.logger),
	}
	if e.cache != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithCache(e.cache))
	}
	if options.progress != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithProgress(options.progress))
	}
	if len(options.reference) > 0 {
		pipelineOpts = append(pipelineOpts, pipeline.WithReferenceCorpus(options.reference))
	}
	p, err := pipeline.New(pipelineOpts...)
	if err != nil {
		e.closeStorage()
		return nil, err
	}
	e.pipeline = p

	suite, err := benchmark.NewSuite(
		benchmark.WithConfig(options.benchmarkConfig),
		benchmark.WithLogger(options.logger),
	)
	if err != nil {
		p.Release()
		e.closeStorage()
		return nil, err
	}
	e.suite = suite

	return e, nil
}

// Close releases the worker pools, closes the providers, and closes the
// cache backend.
func (e *Engine) Close() error {
	e.pipeline.Release()
	e.suite.Release()

	if err := e.registry.Close(); err != nil {
		e.logger.Error("error closing providers", "err", err)
	}
	return e.closeStorage()
}

func (e *Engine) closeStorage() error {
	if e.backend == nil {
		return nil
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing cache backend", "err", err)
		return err
	}
	return nil
}

// Registry returns the engine's provider registry.
func (e *Engine) Registry() *ai.Registry {
	return e.registry
}

// Cache returns the embedding cache, nil when none was configured.
func (e *Engine) Cache() storage.EmbeddingCache {
	return e.cache
}

// Analyze runs the full pipeline for one registered model over the set.
func (e *Engine) Analyze(ctx context.Context, modelID string, set *core.ConceptSet) (*core.ModelResult, error) {
	provider, ok := e.registry.Get(modelID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}
	return e.pipeline.Run(ctx, provider, set)
}

// BenchmarkReport is the output of a multi-model benchmark: per-model runs
// and metric records, the cross-model comparison, and the IDs of models
// skipped because their provider was unavailable.
type BenchmarkReport struct {
	Runs       map[string]*core.ModelResult
	Metrics    []*core.MetricResult
	Comparison *core.Comparison
	Skipped    []string
}

// Benchmark runs every registered provider over the set and ranks the
// results. Unavailable providers are skipped with a warning; any other
// pipeline failure aborts the benchmark.
func (e *Engine) Benchmark(ctx context.Context, set *core.ConceptSet) (*BenchmarkReport, error) {
	report := &BenchmarkReport{
		Runs: make(map[string]*core.ModelResult),
	}

	for _, provider := range e.registry.All() {
		result, err := e.pipeline.Run(ctx, provider, set)
		if errors.Is(err, pipeline.ErrProviderUnavailable) {
			e.logger.Warn("skipping unavailable model", "model", provider.ModelID())
			report.Skipped = append(report.Skipped, provider.ModelID())
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", provider.ModelID(), err)
		}

		metrics, err := e.suite.Evaluate(set, result)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", provider.ModelID(), err)
		}

		report.Runs[provider.ModelID()] = result
		report.Metrics = append(report.Metrics, metrics)
	}

	report.Comparison = benchmark.Compare(report.Metrics)
	return report, nil
}
