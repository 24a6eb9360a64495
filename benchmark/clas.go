package benchmark

import (
	"github.com/poiesic/lacuna/core"
	"github.com/poiesic/lacuna/vector"
)

// CLAS computes the Cross-Lingual Alignment Score: for each
// reference/comparison language pair, the mean cosine similarity between
// each concept's two embeddings, plus the overall average. Lower is better
// here: a low score means the model keeps languages structurally apart
// instead of collapsing them onto one another.
//
// Concepts missing an embedding on either side of a pair are skipped; a
// pair with no shared concepts is omitted from the report.
func CLAS(set *core.ConceptSet) core.CLASResult {
	result := core.CLASResult{Pairs: make(map[string]float64)}

	var total float64
	for _, lang := range set.Languages {
		if lang == set.Reference {
			continue
		}

		var sum float64
		var count int
		for _, c := range set.Concepts {
			ref, ok := set.Embedding(set.Reference, c.ID)
			if !ok {
				continue
			}
			cmp, ok := set.Embedding(lang, c.ID)
			if !ok {
				continue
			}
			sum += vector.Cosine(ref, cmp)
			count++
		}
		if count == 0 {
			continue
		}

		result.Pairs[pairKey(set.Reference, lang)] = sum / float64(count)
		total += sum / float64(count)
	}

	if len(result.Pairs) > 0 {
		result.Average = total / float64(len(result.Pairs))
	}
	return result
}

func pairKey(reference, language string) string {
	return reference + "-" + language
}
