package score

import (
	"sort"

	"github.com/poiesic/lacuna/vector"
)

// Density-lacuna parameters.
const (
	// lacunaNeighbors is the kNN window for local density estimation.
	lacunaNeighbors = 5

	// lacunaRatioMin flags a concept whose neighborhood in a comparison
	// language is this many times sparser than in the reference.
	lacunaRatioMin = 2.0

	// lacunaDenominatorFloor guards the sparsity ratio.
	lacunaDenominatorFloor = 1e-10
)

// DensityLacunae flags concepts that sit in dense semantic neighborhoods in
// the reference language but in sparse ones elsewhere: the signature of a
// lexical gap. Matrices map language to embeddings in shared concept order.
// The result has one map per concept keyed by non-reference language, so a
// concept dispersed in only one language is flagged only there.
//
// Concept i is a lacuna in a language when either its local kNN distance
// there exceeds twice the reference's, or it is tighter than the reference
// median while looser than that language's 75th percentile.
func DensityLacunae(matrices map[string][][]float64, reference string, languages []string) []map[string]bool {
	refMatrix := matrices[reference]
	flags := make([]map[string]bool, len(refMatrix))
	for i := range flags {
		flags[i] = make(map[string]bool, len(languages))
	}
	if len(refMatrix) < 2 {
		return flags
	}

	refDensity := vector.AverageKNNDistances(refMatrix, lacunaNeighbors)
	refMedian := percentile(refDensity, 0.5)

	for _, lang := range languages {
		if lang == reference {
			continue
		}
		matrix := matrices[lang]
		if len(matrix) != len(refMatrix) {
			continue
		}

		density := vector.AverageKNNDistances(matrix, lacunaNeighbors)
		upperQuartile := percentile(density, 0.75)

		for i := range flags {
			ref := refDensity[i]
			if ref < lacunaDenominatorFloor {
				ref = lacunaDenominatorFloor
			}
			if density[i]/ref > lacunaRatioMin {
				flags[i][lang] = true
				continue
			}
			if refDensity[i] < refMedian && density[i] > upperQuartile {
				flags[i][lang] = true
			}
		}
	}
	return flags
}

// percentile returns the value at the given fraction of the sorted data,
// with linear interpolation between ranks.
func percentile(data []float64, fraction float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	rank := fraction * float64(len(sorted)-1)
	lo := int(rank)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
