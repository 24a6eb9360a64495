package validate

import (
	"math"

	"github.com/poiesic/lacuna/vector"
)

// clip bounds a score to [lo, hi].
func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// UniformityScore measures how spread out a language's embedding set is.
//
// Low values mean the embeddings are all near-identical, which usually
// signals overly generic definitions. The composite is
// clip(1 - mean(similarities) + min(std, 0.3), 0, 1) over all pairwise
// similarities. Fewer than 2 vectors score a neutral 1.
func UniformityScore(vectors [][]float64) float64 {
	if len(vectors) < 2 {
		return 1
	}

	sims := vector.UpperTriangle(vector.SimilarityMatrix(vectors))
	if len(sims) == 0 {
		return 1
	}

	var mean float64
	for _, s := range sims {
		mean += s
	}
	mean /= float64(len(sims))

	var variance float64
	for _, s := range sims {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(sims))

	bonus := math.Sqrt(variance)
	if bonus > 0.3 {
		bonus = 0.3
	}
	return clip(1-mean+bonus, 0, 1)
}

// ExtremityScore measures how well an embedding fits a reference set:
// 0.7 * max similarity + 0.3 * mean similarity, clipped to [0, 1].
// Low values flag topical outliers. An empty reference scores a neutral 1.
func ExtremityScore(embedding []float64, reference [][]float64) float64 {
	if len(reference) == 0 {
		return 1
	}

	q := vector.Normalize(embedding)
	var max, sum float64
	max = -1
	for _, ref := range reference {
		sim := vector.Dot(q, vector.Normalize(ref))
		if sim > max {
			max = sim
		}
		sum += sim
	}
	mean := sum / float64(len(reference))

	return clip(max*0.7+mean*0.3, 0, 1)
}

// CrossLanguageSimilarity averages the pairwise cosine similarities of one
// concept's embeddings across all language pairs. The second return value
// is false when fewer than two languages are present.
func CrossLanguageSimilarity(embeddings map[string][]float64, languages []string) (float64, bool) {
	vectors := make([][]float64, 0, len(languages))
	for _, lang := range languages {
		if v, ok := embeddings[lang]; ok {
			vectors = append(vectors, v)
		}
	}
	if len(vectors) < 2 {
		return 0, false
	}

	var sum float64
	var count int
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			sum += vector.Cosine(vectors[i], vectors[j])
			count++
		}
	}
	return sum / float64(count), true
}
