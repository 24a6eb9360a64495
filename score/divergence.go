package score

import "github.com/poiesic/lacuna/vector"

// Divergence measures how much a concept's meaning drifts across languages:
// one minus the mean pairwise cosine similarity over every language pair
// the concept has embeddings for. A concept present in fewer than two
// languages has no cross-lingual signal and scores 0.
func Divergence(embeddings map[string][]float64, languages []string) float64 {
	var sum float64
	var pairs int
	for i := 0; i < len(languages); i++ {
		a, ok := embeddings[languages[i]]
		if !ok {
			continue
		}
		for j := i + 1; j < len(languages); j++ {
			b, ok := embeddings[languages[j]]
			if !ok {
				continue
			}
			sum += vector.Cosine(a, b)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return 1 - sum/float64(pairs)
}
