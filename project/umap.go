package project

import (
	"math"
	"math/rand"
	"sort"

	"github.com/poiesic/lacuna/vector"
)

// Reducer defaults.
const (
	DefaultNeighbors = 10
	DefaultMinDist   = 0.3
	DefaultEpochs    = 200
	DefaultSeed      = 42

	negativeSamples = 5
	gradientClip    = 4.0
	initialSpread   = 10.0
)

// minPointsForReduction is the degenerate-case cutoff: with 4 or fewer
// points a neighborhood graph carries no structure, so reduction emits the
// zero layout instead.
const minPointsForReduction = 5

// ReducerConfig controls the neighborhood-graph reduction.
type ReducerConfig struct {
	// Neighbors is the target neighborhood size; capped at N-1.
	Neighbors int

	// MinDist is the minimum spacing between points in the 2D layout.
	MinDist float64

	// Epochs is the number of layout optimization passes.
	Epochs int

	// Seed drives the layout initialization and edge sampling, making runs
	// reproducible.
	Seed int64
}

// DefaultReducerConfig returns the standard reduction parameters.
func DefaultReducerConfig() *ReducerConfig {
	return &ReducerConfig{
		Neighbors: DefaultNeighbors,
		MinDist:   DefaultMinDist,
		Epochs:    DefaultEpochs,
		Seed:      DefaultSeed,
	}
}

// Reduce projects high-dimensional vectors to 2D with a neighborhood-graph
// embedding over the cosine metric: a fuzzy k-NN graph is built with
// per-point bandwidth calibration, symmetrized, and laid out by stochastic
// gradient descent with negative sampling.
//
// For 4 or fewer points it returns the zero layout; this is the documented
// degenerate-case policy, not an error.
func Reduce(vectors [][]float64, config *ReducerConfig) [][]float64 {
	if config == nil {
		config = DefaultReducerConfig()
	}

	n := len(vectors)
	layout := make([][]float64, n)
	for i := range layout {
		layout[i] = make([]float64, 2)
	}
	if n < minPointsForReduction {
		return layout
	}

	k := config.Neighbors
	if k > n-1 {
		k = n - 1
	}
	if k < 1 {
		k = 1
	}

	dist := vector.DistanceMatrix(vectors)
	graph := fuzzyGraph(dist, k)
	a, b := fitCurve(config.MinDist)

	rng := rand.New(rand.NewSource(config.Seed))
	for i := range layout {
		layout[i][0] = (rng.Float64()*2 - 1) * initialSpread
		layout[i][1] = (rng.Float64()*2 - 1) * initialSpread
	}

	optimizeLayout(layout, graph, a, b, config.Epochs, rng)
	return layout
}

// edge is one weighted link in the symmetrized neighborhood graph.
type edge struct {
	from   int
	to     int
	weight float64
}

// fuzzyGraph builds the symmetrized fuzzy neighborhood graph from a
// distance matrix. Each point gets a local connectivity offset (distance to
// its nearest neighbor) and a bandwidth calibrated so the neighborhood's
// total membership equals log2(k).
func fuzzyGraph(dist [][]float64, k int) []edge {
	n := len(dist)
	weights := make([][]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}

	order := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		order = order[:0]
		for j := 0; j < n; j++ {
			if j != i {
				order = append(order, j)
			}
		}
		sort.Slice(order, func(x, y int) bool {
			return dist[i][order[x]] < dist[i][order[y]]
		})
		neighbors := order[:k]

		rho := dist[i][neighbors[0]]
		sigma := calibrateBandwidth(dist[i], neighbors, rho, math.Log2(float64(k)))

		for _, j := range neighbors {
			d := dist[i][j] - rho
			if d < 0 {
				d = 0
			}
			if sigma > 0 {
				weights[i][j] = math.Exp(-d / sigma)
			} else {
				weights[i][j] = 1
			}
		}
	}

	// Symmetrize: w = w + wT - w*wT (fuzzy set union).
	var edges []edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := weights[i][j] + weights[j][i] - weights[i][j]*weights[j][i]
			if w > 0 {
				edges = append(edges, edge{from: i, to: j, weight: w})
			}
		}
	}
	return edges
}

// calibrateBandwidth binary-searches the smooth-kNN bandwidth sigma so the
// neighborhood memberships sum to the target.
func calibrateBandwidth(row []float64, neighbors []int, rho, target float64) float64 {
	lo, hi := 0.0, math.Inf(1)
	sigma := 1.0

	for iter := 0; iter < 64; iter++ {
		var sum float64
		for _, j := range neighbors {
			d := row[j] - rho
			if d <= 0 {
				sum++
				continue
			}
			sum += math.Exp(-d / sigma)
		}

		if math.Abs(sum-target) < 1e-5 {
			break
		}
		if sum > target {
			hi = sigma
			sigma = (lo + hi) / 2
		} else {
			lo = sigma
			if math.IsInf(hi, 1) {
				sigma *= 2
			} else {
				sigma = (lo + hi) / 2
			}
		}
	}
	return sigma
}

// fitCurve finds the (a, b) pair for the low-dimensional similarity curve
// 1/(1 + a*d^(2b)) approximating the target membership: 1 below minDist,
// exp(-(d - minDist)) beyond it. Coarse grid search with one refinement
// pass; deterministic.
func fitCurve(minDist float64) (float64, float64) {
	const samples = 64
	xs := make([]float64, samples)
	ys := make([]float64, samples)
	for i := 0; i < samples; i++ {
		x := 3.0 * float64(i+1) / samples
		xs[i] = x
		if x <= minDist {
			ys[i] = 1
		} else {
			ys[i] = math.Exp(-(x - minDist))
		}
	}

	loss := func(a, b float64) float64 {
		var sum float64
		for i := range xs {
			fit := 1.0 / (1.0 + a*math.Pow(xs[i], 2*b))
			d := fit - ys[i]
			sum += d * d
		}
		return sum
	}

	bestA, bestB := 1.0, 1.0
	best := math.Inf(1)
	search := func(aLo, aHi, bLo, bHi, step float64) {
		for a := aLo; a <= aHi; a += step {
			for b := bLo; b <= bHi; b += step {
				if l := loss(a, b); l < best {
					best, bestA, bestB = l, a, b
				}
			}
		}
	}

	search(0.2, 3.0, 0.5, 2.0, 0.05)
	search(bestA-0.05, bestA+0.05, bestB-0.05, bestB+0.05, 0.005)
	return bestA, bestB
}

// optimizeLayout runs SGD with negative sampling over the graph edges.
// Attractive forces follow the fitted similarity curve; repulsive forces
// come from uniformly sampled non-neighbors. The learning rate decays
// linearly to zero.
func optimizeLayout(layout [][]float64, edges []edge, a, b float64, epochs int, rng *rand.Rand) {
	n := len(layout)
	if epochs < 1 || len(edges) == 0 {
		return
	}

	for epoch := 0; epoch < epochs; epoch++ {
		alpha := 1.0 - float64(epoch)/float64(epochs)

		for _, e := range edges {
			// Sample edges proportionally to membership strength.
			if rng.Float64() > e.weight {
				continue
			}

			i, j := e.from, e.to
			moveAttract(layout[i], layout[j], a, b, alpha)

			for s := 0; s < negativeSamples; s++ {
				k := rng.Intn(n)
				if k == i || k == j {
					continue
				}
				moveRepulse(layout[i], layout[k], a, b, alpha)
			}
		}
	}
}

func moveAttract(p, q []float64, a, b, alpha float64) {
	dx := p[0] - q[0]
	dy := p[1] - q[1]
	d2 := dx*dx + dy*dy
	if d2 <= 0 {
		return
	}

	coeff := (-2.0 * a * b * math.Pow(d2, b-1)) / (1.0 + a*math.Pow(d2, b))
	gx := clipGradient(coeff * dx)
	gy := clipGradient(coeff * dy)
	p[0] += alpha * gx
	p[1] += alpha * gy
	q[0] -= alpha * gx
	q[1] -= alpha * gy
}

func moveRepulse(p, q []float64, a, b, alpha float64) {
	dx := p[0] - q[0]
	dy := p[1] - q[1]
	d2 := dx*dx + dy*dy

	coeff := (2.0 * b) / ((0.001 + d2) * (1.0 + a*math.Pow(d2, b)))
	p[0] += alpha * clipGradient(coeff*dx)
	p[1] += alpha * clipGradient(coeff*dy)
}

func clipGradient(g float64) float64 {
	if g > gradientClip {
		return gradientClip
	}
	if g < -gradientClip {
		return -gradientClip
	}
	return g
}
