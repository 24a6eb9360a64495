package score

import (
	"math"

	"github.com/poiesic/lacuna/vector"
)

// Weight bounds for the centroid strategy; rescaling keeps every concept
// visible on the terrain.
const (
	centroidWeightFloor = 0.2
	centroidWeightCeil  = 1.0

	// weightSpreadEpsilon guards the min-max rescales against a flat
	// distribution.
	weightSpreadEpsilon = 1e-6

	neutralWeight = 0.5
)

// NormWeights scores concepts by embedding magnitude, min-max rescaled to
// [0, 1]. Embedding norms track how much semantic mass a model assigns a
// term, so they make a cheap salience proxy. Zero-norm rows stand for
// missing embeddings: they get the neutral 0.5 and stay out of the min-max
// anchors. When the present norms are all (near) equal there is no signal
// and every concept gets the neutral 0.5.
func NormWeights(vectors [][]float64) []float64 {
	weights := make([]float64, len(vectors))
	if len(vectors) == 0 {
		return weights
	}

	norms := make([]float64, len(vectors))
	min, max := math.Inf(1), math.Inf(-1)
	present := false
	for i, v := range vectors {
		norms[i] = vector.Norm(v)
		if norms[i] == 0 {
			continue
		}
		present = true
		min = math.Min(min, norms[i])
		max = math.Max(max, norms[i])
	}

	flat := !present || max-min < weightSpreadEpsilon
	for i := range weights {
		if norms[i] == 0 || flat {
			weights[i] = neutralWeight
			continue
		}
		weights[i] = (norms[i] - min) / (max - min)
	}
	return weights
}

// CentroidWeights scores concepts by cosine similarity to their own
// cluster's centroid, mapped from [-1, 1] onto [0, 1] and then min-max
// rescaled into [0.2, 1.0] across the set. Centrality reads as semantic
// prominence: concepts near their cluster's core carry its vocabulary,
// peripheral ones are still kept visible by the 0.2 floor.
//
// labels assigns each row a cluster; negative labels are noise and score
// the neutral 0.5 before rescaling. Zero-norm rows stand for missing
// embeddings and get the neutral 0.5 untouched.
func CentroidWeights(vectors [][]float64, labels []int) []float64 {
	weights := make([]float64, len(vectors))
	if len(vectors) == 0 {
		return weights
	}

	missing := make([]bool, len(vectors))
	for i, v := range vectors {
		missing[i] = vector.Norm(v) == 0
	}

	centroids := clusterCentroids(vectors, labels, missing)

	raw := make([]float64, len(vectors))
	min, max := math.Inf(1), math.Inf(-1)
	for i, v := range vectors {
		if missing[i] {
			continue
		}
		raw[i] = neutralWeight
		if label := labelAt(labels, i); label >= 0 {
			if center, ok := centroids[label]; ok {
				raw[i] = (vector.Cosine(v, center) + 1) / 2
			}
		}
		min = math.Min(min, raw[i])
		max = math.Max(max, raw[i])
	}

	flat := math.IsInf(min, 1) || max-min < weightSpreadEpsilon
	span := centroidWeightCeil - centroidWeightFloor
	for i := range weights {
		if missing[i] || flat {
			weights[i] = neutralWeight
			continue
		}
		weights[i] = centroidWeightFloor + span*(raw[i]-min)/(max-min)
	}
	return weights
}

// clusterCentroids averages the member vectors of each non-noise cluster.
func clusterCentroids(vectors [][]float64, labels []int, missing []bool) map[int][]float64 {
	sums := make(map[int][]float64)
	counts := make(map[int]int)
	for i, v := range vectors {
		if missing[i] {
			continue
		}
		label := labelAt(labels, i)
		if label < 0 {
			continue
		}
		sum, ok := sums[label]
		if !ok {
			sum = make([]float64, len(v))
			sums[label] = sum
		}
		for d := 0; d < len(sum) && d < len(v); d++ {
			sum[d] += v[d]
		}
		counts[label]++
	}

	for label, sum := range sums {
		for d := range sum {
			sum[d] /= float64(counts[label])
		}
	}
	return sums
}

func labelAt(labels []int, i int) int {
	if i >= len(labels) {
		return -1
	}
	return labels[i]
}
