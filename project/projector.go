package project

import (
	"fmt"
	"log/slog"
)

// Config holds the projector parameters: the reduction settings plus the
// terrain extent the final layouts are scaled into.
type Config struct {
	Reducer *ReducerConfig

	// Bound is the terrain half-width; positions land in [-Bound, Bound].
	Bound float64

	// Margin leaves headroom at the terrain edges.
	Margin float64
}

// DefaultConfig returns the standard projection parameters.
func DefaultConfig() *Config {
	return &Config{
		Reducer: DefaultReducerConfig(),
		Bound:   DefaultBound,
		Margin:  DefaultMargin,
	}
}

// Projector turns per-language embedding matrices into comparable 2D
// terrain layouts: each language is reduced independently, the reference
// language is scaled into the terrain, and every other language is
// Procrustes-aligned onto the reference before scaling carries over.
type Projector struct {
	config *Config
	logger *slog.Logger
}

// Option configures a Projector.
type Option func(*Projector) error

// WithConfig replaces the projection parameters.
func WithConfig(config *Config) Option {
	return func(p *Projector) error {
		if config == nil {
			config = DefaultConfig()
		}
		if config.Reducer == nil {
			config.Reducer = DefaultReducerConfig()
		}
		p.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Projector) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewProjector creates a projector with default parameters.
func NewProjector(opts ...Option) (*Projector, error) {
	p := &Projector{
		config: DefaultConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Project reduces each language's embeddings to a 2D terrain layout. All
// matrices must be in row correspondence (one row per concept, same order
// across languages). The reference language anchors the shared frame: its
// layout is scaled into the terrain directly, and each other language is
// aligned onto it before inheriting the terrain scale.
func (p *Projector) Project(matrices map[string][][]float64, reference string) (map[string][][]float64, error) {
	refMatrix, ok := matrices[reference]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReferenceLanguage, reference)
	}

	n := len(refMatrix)
	for lang, m := range matrices {
		if len(m) != n {
			return nil, fmt.Errorf("%w: %s has %d rows, reference has %d",
				ErrRowMismatch, lang, len(m), n)
		}
	}

	raw := make(map[string][][]float64, len(matrices))
	for lang, m := range matrices {
		raw[lang] = Reduce(m, p.config.Reducer)
		p.logger.Debug("reduced language embeddings", "language", lang, "concepts", len(m))
	}

	out := make(map[string][][]float64, len(matrices))
	refTerrain := ScaleToTerrain(raw[reference], p.config.Bound, p.config.Margin)
	out[reference] = refTerrain

	for lang, layout := range raw {
		if lang == reference {
			continue
		}
		// Alignment matches geometry but inherits the source's variance, so
		// every aligned layout is rescaled into the same bounded square.
		out[lang] = ScaleToTerrain(Align(layout, refTerrain), p.config.Bound, p.config.Margin)
	}

	p.logger.Info("projection complete", "languages", len(out), "concepts", n, "reference", reference)
	return out, nil
}
