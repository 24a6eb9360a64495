package validate

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/lacuna/core"
	"github.com/poiesic/lacuna/vector"
)

// Default gate thresholds.
const (
	DefaultConfidenceMin      = 0.5
	DefaultDuplicateThreshold = 0.85
	DefaultUniformityMin      = 0.3
	DefaultCrossLanguageMax   = 0.92
	DefaultExtremityMin       = 0.35
)

// Config holds the validator's gate thresholds.
type Config struct {
	// ConfidenceMin rejects concepts extracted below this confidence.
	ConfidenceMin float64

	// DuplicateThreshold is the cosine similarity above which two concepts
	// in the same language count as duplicates.
	DuplicateThreshold float64

	// UniformityMin is the per-language spread score below which a warning
	// (not a rejection) is emitted.
	UniformityMin float64

	// CrossLanguageMax rejects concepts whose average cross-language
	// similarity exceeds it: such concepts carry no cross-lingual signal.
	CrossLanguageMax float64

	// ExtremityMin rejects topical outliers when a reference set is given.
	ExtremityMin float64
}

// DefaultConfig returns a Config with the standard gate thresholds.
func DefaultConfig() *Config {
	return &Config{
		ConfidenceMin:      DefaultConfidenceMin,
		DuplicateThreshold: DefaultDuplicateThreshold,
		UniformityMin:      DefaultUniformityMin,
		CrossLanguageMax:   DefaultCrossLanguageMax,
		ExtremityMin:       DefaultExtremityMin,
	}
}

// Validator filters a candidate concept set through a fixed sequence of
// quality gates. Earlier rejections pre-empt later compute, and the first
// applicable rejection reason wins.
type Validator struct {
	config *Config
	logger *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator) error

// WithConfig replaces the gate thresholds.
func WithConfig(config *Config) Option {
	return func(v *Validator) error {
		if config == nil {
			config = DefaultConfig()
		}
		v.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) error {
		if logger == nil {
			logger = slog.Default()
		}
		v.logger = logger
		return nil
	}
}

// NewValidator creates a validator with default thresholds.
func NewValidator(opts ...Option) (*Validator, error) {
	v := &Validator{
		config: DefaultConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// Result is the output of one validation pass: two disjoint sets plus the
// reason map and per-language uniformity diagnostics.
type Result struct {
	Valid      []*core.ValidatedConcept
	Rejected   []*core.RejectedConcept
	Reasons    map[string]string
	Uniformity map[string]float64
	Warnings   []string
}

// Validate runs all gates over the set, in order: malformed-input check,
// confidence, externally supplied pre-rejections, per-language duplicates,
// uniformity diagnostic (warning only), cross-language similarity, and,
// when reference is non-empty, extremity against the reference embeddings.
//
// preRejected carries external semantic-coherence judgments (concept ID to
// reason); those rejections take precedence over the numeric gates. An
// empty set yields an empty result, never an error.
func (v *Validator) Validate(set *core.ConceptSet, reference [][]float64, preRejected map[string]string) (*Result, error) {
	if err := core.ValidateConceptSet(set); err != nil {
		return nil, err
	}

	result := &Result{
		Reasons:    make(map[string]string),
		Uniformity: make(map[string]float64),
	}
	if len(set.Concepts) == 0 {
		return result, nil
	}

	rejected := make(map[string]string)
	reject := func(id, reason string) {
		if _, done := rejected[id]; !done {
			rejected[id] = reason
		}
	}

	// Gate 1: malformed input and extraction confidence.
	remaining := make([]*core.Concept, 0, len(set.Concepts))
	for _, c := range set.Concepts {
		if err := core.ValidateConcept(c); err != nil {
			reject(conceptID(c), fmt.Sprintf("Malformed concept: %v", err))
			continue
		}
		if c.Confidence < v.config.ConfidenceMin {
			reject(c.ID, fmt.Sprintf("Low confidence: %.2f < %.2f", c.Confidence, v.config.ConfidenceMin))
			continue
		}
		remaining = append(remaining, c)
	}

	// Gate 2: external coherence judgments pre-empt the numeric gates.
	kept := remaining[:0]
	for _, c := range remaining {
		if reason, ok := preRejected[c.ID]; ok {
			reject(c.ID, reason)
			continue
		}
		kept = append(kept, c)
	}
	remaining = kept

	// Gate 3: per-language duplicate detection. Among a flagged pair the
	// later concept (by iteration order) is rejected.
	for _, lang := range set.Languages {
		ids, vectors := languageMatrix(set, remaining, lang)
		for _, pair := range vector.FindDuplicates(vectors, v.config.DuplicateThreshold) {
			reject(ids[pair.J], fmt.Sprintf("Duplicate of %s (%s, cos=%.3f)", ids[pair.I], lang, pair.Similarity))
		}
	}

	// Duplicate rejections pre-empt the remaining gates.
	active := make([]*core.Concept, 0, len(remaining))
	for _, c := range remaining {
		if _, done := rejected[c.ID]; !done {
			active = append(active, c)
		}
	}

	// Gate 4: uniformity diagnostic, informational only.
	for _, lang := range set.Languages {
		_, vectors := languageMatrix(set, active, lang)
		if len(vectors) < 2 {
			continue
		}
		score := UniformityScore(vectors)
		result.Uniformity[lang] = score
		v.logger.Debug("uniformity score", "language", lang, "score", score)
		if score < v.config.UniformityMin {
			warning := fmt.Sprintf("%s embeddings are too uniform (%.3f < %.2f) - definitions may be too generic",
				lang, score, v.config.UniformityMin)
			result.Warnings = append(result.Warnings, warning)
			v.logger.Warn("uniformity below minimum", "language", lang, "score", score)
		}
	}

	// Gate 5: cross-language similarity ceiling.
	for _, c := range remaining {
		if _, done := rejected[c.ID]; done {
			continue
		}
		sim, ok := CrossLanguageSimilarity(conceptEmbeddings(set, c), set.Languages)
		if !ok {
			continue
		}
		if sim > v.config.CrossLanguageMax {
			reject(c.ID, fmt.Sprintf("No structural difference across languages (cross-lang sim=%.3f > %.2f)",
				sim, v.config.CrossLanguageMax))
			v.logger.Debug("rejecting cross-language near-identical concept", "concept", c.ID, "similarity", sim)
		}
	}

	// Gate 6: extremity against the reference set, when supplied.
	extremity := make(map[string]float64)
	if len(reference) > 0 {
		for _, c := range remaining {
			if _, done := rejected[c.ID]; done {
				continue
			}
			var sum float64
			var count int
			for _, lang := range set.Languages {
				if emb, ok := set.Embedding(lang, c.ID); ok {
					sum += ExtremityScore(emb, reference)
					count++
				}
			}
			if count == 0 {
				continue
			}
			score := sum / float64(count)
			extremity[c.ID] = score
			if score < v.config.ExtremityMin {
				reject(c.ID, fmt.Sprintf("Outlier (extremity=%.3f)", score))
			}
		}
	}

	// Assemble the two disjoint sets.
	for _, c := range set.Concepts {
		id := conceptID(c)
		if reason, ok := rejected[id]; ok {
			result.Rejected = append(result.Rejected, &core.RejectedConcept{Concept: c, Reason: reason})
			result.Reasons[id] = reason
			continue
		}
		inRemaining := false
		for _, r := range remaining {
			if r.ID == c.ID {
				inRemaining = true
				break
			}
		}
		if !inRemaining {
			continue
		}

		score, scored := extremity[c.ID]
		if !scored {
			score = 1
		}
		result.Valid = append(result.Valid, &core.ValidatedConcept{
			Concept:    c,
			Embeddings: conceptEmbeddings(set, c),
			Scores: core.ValidationScores{
				Confidence: c.Confidence,
				Extremity:  score,
			},
		})
	}

	v.logger.Info("validation complete",
		"valid", len(result.Valid),
		"rejected", len(result.Rejected),
		"warnings", len(result.Warnings))

	return result, nil
}

// conceptID tolerates nil and empty-ID concepts so malformed input can still
// be reported under a stable key.
func conceptID(c *core.Concept) string {
	if c == nil {
		return "(nil)"
	}
	if c.ID == "" {
		return "(missing-id)"
	}
	return c.ID
}

// languageMatrix gathers embeddings for the given concepts in order,
// skipping concepts without an embedding in the language.
func languageMatrix(set *core.ConceptSet, concepts []*core.Concept, language string) ([]string, [][]float64) {
	ids := make([]string, 0, len(concepts))
	vectors := make([][]float64, 0, len(concepts))
	for _, c := range concepts {
		if v, ok := set.Embedding(language, c.ID); ok {
			ids = append(ids, c.ID)
			vectors = append(vectors, v)
		}
	}
	return ids, vectors
}

// conceptEmbeddings collects one concept's embeddings keyed by language.
func conceptEmbeddings(set *core.ConceptSet, c *core.Concept) map[string][]float64 {
	out := make(map[string][]float64)
	for _, lang := range set.Languages {
		if v, ok := set.Embedding(lang, c.ID); ok {
			out[lang] = v
		}
	}
	return out
}
