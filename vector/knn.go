package vector

import "sort"

// selfMatchCeiling filters near-identical hits out of neighbor queries;
// a similarity this high means the query vector itself is in the set.
const selfMatchCeiling = 0.999

// Neighbor is one hit from a nearest-neighbor query.
type Neighbor struct {
	Index      int
	Similarity float64
}

// Nearest returns the top n neighbors of query within vectors, ranked by
// cosine similarity descending. Near-identical matches (similarity above
// 0.999) are skipped, since they are almost certainly the query itself.
func Nearest(query []float64, vectors [][]float64, n int) []Neighbor {
	if n <= 0 || len(vectors) == 0 {
		return nil
	}

	q := Normalize(query)
	candidates := make([]Neighbor, 0, len(vectors))
	for i, v := range vectors {
		candidates = append(candidates, Neighbor{Index: i, Similarity: Dot(q, Normalize(v))})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	neighbors := make([]Neighbor, 0, n)
	for _, c := range candidates {
		if c.Similarity > selfMatchCeiling {
			continue
		}
		neighbors = append(neighbors, c)
		if len(neighbors) == n {
			break
		}
	}
	return neighbors
}

// AverageKNNDistances computes, for each vector, the mean cosine distance to
// its k nearest neighbors within the set (excluding itself). k is capped at
// N-1; if fewer than 2 vectors are present the result is all zeros.
func AverageKNNDistances(vectors [][]float64, k int) []float64 {
	n := len(vectors)
	averages := make([]float64, n)
	if n < 2 || k < 1 {
		return averages
	}
	if k > n-1 {
		k = n - 1
	}

	dist := DistanceMatrix(vectors)
	row := make([]float64, 0, n-1)
	for i := 0; i < n; i++ {
		row = row[:0]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			row = append(row, dist[i][j])
		}
		sort.Float64s(row)

		var sum float64
		for _, d := range row[:k] {
			sum += d
		}
		averages[i] = sum / float64(k)
	}
	return averages
}
