package cluster

import (
	"math"

	"github.com/poiesic/lacuna/vector"
)

// Silhouette scores how well the labels separate the vectors, averaged over
// all non-noise points: for each point, (b-a)/max(a,b) where a is the mean
// cosine distance to its own cluster and b the mean distance to the nearest
// other cluster. Returns 0 when the score is undefined: fewer than two
// clusters, or as many clusters as scored points.
func Silhouette(vectors [][]float64, labels []int) float64 {
	dist := vector.DistanceMatrix(vectors)

	members := make(map[int][]int)
	for i, label := range labels {
		if i >= len(vectors) {
			break
		}
		if label == Noise {
			continue
		}
		members[label] = append(members[label], i)
	}

	var scored int
	for _, m := range members {
		scored += len(m)
	}
	if len(members) < 2 || len(members) >= scored {
		return 0
	}

	var total float64
	for label, own := range members {
		for _, i := range own {
			a := meanDistance(dist, i, own)

			b := math.Inf(1)
			for other, m := range members {
				if other == label {
					continue
				}
				if d := meanDistance(dist, i, m); d < b {
					b = d
				}
			}

			if denom := math.Max(a, b); denom > 0 {
				total += (b - a) / denom
			}
		}
	}
	return total / float64(scored)
}

// meanDistance averages the distances from point i to the members of a
// cluster, excluding i itself. A singleton own-cluster contributes 0.
func meanDistance(dist [][]float64, i int, members []int) float64 {
	var sum float64
	var count int
	for _, j := range members {
		if j == i {
			continue
		}
		sum += dist[i][j]
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
