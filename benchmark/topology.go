package benchmark

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lacuna/core"
	"github.com/poiesic/lacuna/vector"
)

// Correlation methods for topology preservation.
const (
	MethodSpearman = "spearman"
	MethodPearson  = "pearson"
)

// DefaultPermutations is the trial count for the significance test.
const DefaultPermutations = 999

// topologyPair runs one reference/comparison correlation with its
// permutation test. The permutation trials are independent, so they fan out
// over the suite's worker pool; each trial gets its own seeded source so
// results stay reproducible regardless of scheduling.
func (s *Suite) topologyPair(reference, comparison [][]float64) core.Correlation {
	refFlat := vector.UpperTriangle(reference)
	cmpFlat := vector.UpperTriangle(comparison)
	if len(refFlat) == 0 || len(refFlat) != len(cmpFlat) {
		return core.Correlation{R: 0, P: 1}
	}

	correlate := spearman
	if s.config.Method == MethodPearson {
		correlate = pearson
	}

	observed := correlate(refFlat, cmpFlat)
	threshold := math.Abs(observed)

	n := len(comparison)
	perms := s.config.Permutations

	var exceed int64
	var wg sync.WaitGroup
	for trial := 0; trial < perms; trial++ {
		seed := s.config.Seed + int64(trial)
		wg.Add(1)
		task := func() {
			defer wg.Done()

			rng := rand.New(rand.NewSource(seed))
			perm := rng.Perm(n)
			permFlat := permutedUpperTriangle(comparison, perm)
			if math.Abs(correlate(refFlat, permFlat)) >= threshold {
				atomic.AddInt64(&exceed, 1)
			}
		}
		if err := s.pool.Submit(task); err != nil {
			// Pool closed or overloaded; run the trial inline.
			task()
		}
	}
	wg.Wait()

	return core.Correlation{
		R: observed,
		P: float64(exceed+1) / float64(perms+1),
	}
}

// TopologyPreservation correlates the reference language's pairwise
// distance structure against each other language's, with a permutation
// significance test: the comparison matrix's row/column order is shuffled
// and the correlation recomputed, and the p-value is
// (trials at or above the observed magnitude + 1) / (trials + 1).
func (s *Suite) TopologyPreservation(pairwise map[string][][]float64, reference string, languages []string) core.TopologyResult {
	result := core.TopologyResult{Pairs: make(map[string]core.Correlation)}

	refMatrix, ok := pairwise[reference]
	if !ok {
		return result
	}

	var total float64
	for _, lang := range languages {
		if lang == reference {
			continue
		}
		matrix, ok := pairwise[lang]
		if !ok || len(matrix) != len(refMatrix) {
			continue
		}

		corr := s.topologyPair(refMatrix, matrix)
		result.Pairs[pairKey(reference, lang)] = corr
		total += corr.R
		s.logger.Debug("topology pair scored",
			"pair", pairKey(reference, lang), "r", corr.R, "p", corr.P)
	}

	if len(result.Pairs) > 0 {
		result.Average = total / float64(len(result.Pairs))
	}
	return result
}

// permutedUpperTriangle flattens the upper triangle of the matrix under a
// row/column permutation.
func permutedUpperTriangle(matrix [][]float64, perm []int) []float64 {
	n := len(matrix)
	out := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, matrix[perm[i]][perm[j]])
		}
	}
	return out
}

// newTrialPool builds the worker pool used for permutation trials.
func newTrialPool(size int) (*ants.Pool, error) {
	if size < 1 {
		size = 1
	}
	return ants.NewPool(size)
}
