package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for cached entities.
// It is generated using content-based hashing so that identical content
// produces identical IDs across runs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Concept is a single cross-lingual idea with labels and definitions per
// language. Cluster and Ghost may carry curated ground truth; computed runs
// never write Ghost back onto the input concept.
type Concept struct {
	ID          string
	Labels      map[string]string
	Definitions map[string]string
	Cluster     string
	Confidence  float64
	Ghost       map[string]bool
	Hero        bool
	Source      string // "curated" or "embedding"
}

// HasDefinition reports whether the concept carries a definition for the
// given language.
func (c *Concept) HasDefinition(language string) bool {
	if c.Definitions == nil {
		return false
	}
	_, ok := c.Definitions[language]
	return ok
}

// IsGhost reports the curated ghost flag for a language, false when no
// ground truth is present.
func (c *Concept) IsGhost(language string) bool {
	if c.Ghost == nil {
		return false
	}
	return c.Ghost[language]
}

// EmbeddingKey builds the canonical "{language}:{conceptID}" key used to
// index embeddings in a ConceptSet and in the embedding cache.
func EmbeddingKey(language, conceptID string) string {
	return language + ":" + conceptID
}

// ConceptSet is the full input to one pipeline run: the concepts, the
// languages under study, the reference language all others are aligned to,
// and one embedding per (concept, language) pair keyed by EmbeddingKey.
type ConceptSet struct {
	Languages  []string
	Reference  string
	Concepts   []*Concept
	Embeddings map[string][]float64
}

// Embedding returns the embedding for a (language, concept) pair.
func (s *ConceptSet) Embedding(language, conceptID string) ([]float64, bool) {
	if s.Embeddings == nil {
		return nil, false
	}
	v, ok := s.Embeddings[EmbeddingKey(language, conceptID)]
	return v, ok
}

// SetEmbedding stores the embedding for a (language, concept) pair.
func (s *ConceptSet) SetEmbedding(language, conceptID string, vector []float64) {
	if s.Embeddings == nil {
		s.Embeddings = make(map[string][]float64)
	}
	s.Embeddings[EmbeddingKey(language, conceptID)] = vector
}

// LanguageMatrix gathers, in concept order, the IDs and embeddings of every
// concept that has an embedding in the given language.
func (s *ConceptSet) LanguageMatrix(language string) ([]string, [][]float64) {
	ids := make([]string, 0, len(s.Concepts))
	vectors := make([][]float64, 0, len(s.Concepts))
	for _, c := range s.Concepts {
		if v, ok := s.Embedding(language, c.ID); ok {
			ids = append(ids, c.ID)
			vectors = append(vectors, v)
		}
	}
	return ids, vectors
}

// ConceptLanguages returns the languages of the set for which a concept has
// an embedding, in set language order.
func (s *ConceptSet) ConceptLanguages(conceptID string) []string {
	langs := make([]string, 0, len(s.Languages))
	for _, lang := range s.Languages {
		if _, ok := s.Embedding(lang, conceptID); ok {
			langs = append(langs, lang)
		}
	}
	return langs
}

// ValidationScores carries the per-concept scores computed during
// validation.
type ValidationScores struct {
	Confidence float64
	Extremity  float64
}

// ValidatedConcept is a concept that passed every validator gate, together
// with its embeddings per language.
type ValidatedConcept struct {
	Concept    *Concept
	Embeddings map[string][]float64
	Scores     ValidationScores
}

// RejectedConcept is a concept that failed a validator gate, annotated with
// a human-readable reason. The first applicable reason wins.
type RejectedConcept struct {
	Concept *Concept
	Reason  string
}

// Position is a 2D coordinate in the shared bounded frame.
type Position struct {
	X float64
	Y float64
}

// ConceptResult holds everything derived for one concept by a pipeline run.
type ConceptResult struct {
	Positions         map[string]Position
	Weights           map[string]float64
	CosineToReference map[string]float64
	Clusters          map[string]int
	Lacuna            map[string]bool
	Divergence        float64
}

// RunStats summarizes a pipeline run, including the explanatory record
// produced when the valid set comes out empty.
type RunStats struct {
	TotalConcepts    int
	ValidConcepts    int
	RejectedConcepts int
	RejectionReasons map[string]string
	Warnings         []string
}

// ModelResult is the full output record for one model over one concept set.
// All matrices and arrays are indexed by ConceptOrder. Pairwise distance
// matrices are symmetric, zero-diagonal, normalized to [0, 1].
type ModelResult struct {
	ModelID      string
	ModelName    string
	Dimension    int
	ConceptOrder []string
	Concepts     map[string]*ConceptResult
	Pairwise     map[string][][]float64
	Stats        RunStats
}

// Correlation pairs a correlation coefficient with its permutation p-value.
type Correlation struct {
	R float64
	P float64
}

// CLASResult reports the Cross-Lingual Alignment Score per language pair
// and overall. Lower is better for this domain: it means the model keeps
// languages apart.
type CLASResult struct {
	Pairs   map[string]float64
	Average float64
}

// TopologyResult reports distance-structure correlation per language pair.
type TopologyResult struct {
	Pairs   map[string]Correlation
	Average float64
}

// CoherenceResult reports silhouette-based cluster coherence per language.
type CoherenceResult struct {
	PerLanguage map[string]float64
	Average     float64
}

// LacunaRate reports ground-truth lacuna detection counts for one language.
type LacunaRate struct {
	Rate     float64
	Expected int
	Detected int
}

// LacunaDetectionResult reports lacuna detection per language and overall.
type LacunaDetectionResult struct {
	PerLanguage map[string]LacunaRate
	Average     float64
}

// MetricResult is one benchmarked model's full metric record. Immutable
// once computed; consumed only for ranking.
type MetricResult struct {
	ModelID         string
	CLAS            CLASResult
	Topology        TopologyResult
	Coherence       CoherenceResult
	LacunaDetection LacunaDetectionResult
}

// Composite is the overall model score: ((1-CLAS) + topology + coherence +
// lacuna detection) / 4.
func (m *MetricResult) Composite() float64 {
	return ((1-m.CLAS.Average) + m.Topology.Average + m.Coherence.Average + m.LacunaDetection.Average) / 4
}

// Comparison ranks a group of models by each metric and by composite score.
type Comparison struct {
	Models   []string
	Rankings map[string][]string
	Scores   map[string]map[string]float64
}

// CachedEmbedding is one embedding stored in the on-disk cache, keyed by a
// content-derived ID so that re-running a benchmark reuses prior work.
type CachedEmbedding struct {
	Id         ID
	Model      string
	Language   string
	ConceptId  string
	Vector     []float64
	InsertedAt time.Time
}

// CacheKey returns the string the cache ID is derived from.
func (e *CachedEmbedding) CacheKey() string {
	return e.Model + "/" + EmbeddingKey(e.Language, e.ConceptId)
}

// CachedEmbeddingID computes the cache ID for a (model, language, concept)
// triple.
func CachedEmbeddingID(model, language, conceptID string) ID {
	return IDFromContent(model + "/" + EmbeddingKey(language, conceptID))
}
