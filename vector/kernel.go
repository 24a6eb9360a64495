package vector

import "math"

// epsilon guards cosine denominators against zero vectors.
const epsilon = 1e-10

// Norm returns the L2 norm of a vector.
func Norm(v []float64) float64 {
	var sum float64
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}

// Normalize normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func Normalize(v []float64) []float64 {
	if len(v) == 0 {
		return v
	}

	magnitude := Norm(v)

	// Can't normalize zero vector
	if magnitude == 0 {
		result := make([]float64, len(v))
		return result
	}

	result := make([]float64, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}

// Dot returns the dot product of two vectors. Vectors of unequal length are
// compared over their shared prefix.
func Dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Cosine returns the cosine similarity between two vectors.
func Cosine(a, b []float64) float64 {
	return Dot(a, b) / (Norm(a)*Norm(b) + epsilon)
}

// SimilarityMatrix computes the (N, N) pairwise cosine similarity matrix for
// a set of vectors. The matrix is symmetric and the diagonal is exactly 1.
func SimilarityMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	normalized := make([][]float64, n)
	for i, v := range vectors {
		normalized[i] = Normalize(v)
	}

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := Dot(normalized[i], normalized[j])
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}
	return matrix
}

// DistanceMatrix computes the (N, N) pairwise cosine distance matrix
// (1 - cosine similarity). Symmetric, zero diagonal.
func DistanceMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	normalized := make([][]float64, n)
	for i, v := range vectors {
		normalized[i] = Normalize(v)
	}

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist := 1 - Dot(normalized[i], normalized[j])
			matrix[i][j] = dist
			matrix[j][i] = dist
		}
	}
	return matrix
}

// NormalizeDistances rescales a distance matrix in place so values fall in
// [0, 1]. A zero matrix is returned unchanged.
func NormalizeDistances(matrix [][]float64) [][]float64 {
	var max float64
	for _, row := range matrix {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	if max == 0 {
		return matrix
	}
	for _, row := range matrix {
		for j := range row {
			row[j] /= max
		}
	}
	return matrix
}

// UpperTriangle flattens the strict upper triangle of a square matrix
// (excluding the diagonal) in row-major order.
func UpperTriangle(matrix [][]float64) []float64 {
	n := len(matrix)
	out := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, matrix[i][j])
		}
	}
	return out
}

// DuplicatePair identifies two vectors whose cosine similarity exceeds a
// duplicate threshold. I < J always holds; callers keep I and reject J.
type DuplicatePair struct {
	I          int
	J          int
	Similarity float64
}

// FindDuplicates returns all unordered index pairs whose cosine similarity
// exceeds threshold, annotated with the similarity. All qualifying pairs are
// reported; ties are not broken. Fewer than 2 vectors yields no pairs.
func FindDuplicates(vectors [][]float64, threshold float64) []DuplicatePair {
	if len(vectors) < 2 {
		return nil
	}

	matrix := SimilarityMatrix(vectors)
	var pairs []DuplicatePair
	n := len(vectors)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if matrix[i][j] > threshold {
				pairs = append(pairs, DuplicatePair{I: i, J: j, Similarity: matrix[i][j]})
			}
		}
	}
	return pairs
}
