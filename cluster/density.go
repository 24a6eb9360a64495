package cluster

import (
	"math"
	"sort"

	"github.com/poiesic/lacuna/vector"
)

// Noise is the label for points that belong to no cluster.
const Noise = -1

// DefaultMinClusterSize is the smallest group that counts as a cluster;
// smaller components become noise.
const DefaultMinClusterSize = 3

// DensityClusters groups vectors by local density over the cosine metric.
// Core distances smooth the metric into mutual reachability, a minimum
// spanning tree links the points, and the tree is cut at its unusually long
// edges; connected components below minClusterSize are labeled Noise.
// Labels are dense integers ordered by each cluster's first member index.
func DensityClusters(vectors [][]float64, minClusterSize int) []int {
	n := len(vectors)
	labels := make([]int, n)
	if minClusterSize < 2 {
		minClusterSize = DefaultMinClusterSize
	}
	if n < minClusterSize {
		for i := range labels {
			labels[i] = Noise
		}
		return labels
	}

	dist := vector.DistanceMatrix(vectors)
	core := coreDistances(dist, minClusterSize)

	reach := func(i, j int) float64 {
		return math.Max(dist[i][j], math.Max(core[i], core[j]))
	}

	edges := spanningTree(n, reach)
	keep := cutLongEdges(edges)
	return componentLabels(n, keep, minClusterSize)
}

// coreDistances returns each point's distance to its k-th nearest neighbor
// (k = minClusterSize - 1, capped at N-1).
func coreDistances(dist [][]float64, minClusterSize int) []float64 {
	n := len(dist)
	k := minClusterSize - 1
	if k > n-1 {
		k = n - 1
	}

	core := make([]float64, n)
	row := make([]float64, 0, n-1)
	for i := 0; i < n; i++ {
		row = row[:0]
		for j := 0; j < n; j++ {
			if j != i {
				row = append(row, dist[i][j])
			}
		}
		sort.Float64s(row)
		core[i] = row[k-1]
	}
	return core
}

type treeEdge struct {
	from   int
	to     int
	weight float64
}

// spanningTree builds the minimum spanning tree over the reachability
// metric with Prim's algorithm.
func spanningTree(n int, reach func(i, j int) float64) []treeEdge {
	inTree := make([]bool, n)
	best := make([]float64, n)
	parent := make([]int, n)
	for i := range best {
		best[i] = math.Inf(1)
		parent[i] = -1
	}

	best[0] = 0
	edges := make([]treeEdge, 0, n-1)
	for range n {
		next := -1
		for i := 0; i < n; i++ {
			if !inTree[i] && (next == -1 || best[i] < best[next]) {
				next = i
			}
		}
		inTree[next] = true
		if parent[next] >= 0 {
			edges = append(edges, treeEdge{from: parent[next], to: next, weight: best[next]})
		}

		for i := 0; i < n; i++ {
			if inTree[i] {
				continue
			}
			if w := reach(next, i); w < best[i] {
				best[i] = w
				parent[i] = next
			}
		}
	}
	return edges
}

// cutLongEdges drops tree edges whose weight sits more than one standard
// deviation above the mean, splitting the tree at density boundaries.
func cutLongEdges(edges []treeEdge) []treeEdge {
	if len(edges) == 0 {
		return edges
	}

	var mean float64
	for _, e := range edges {
		mean += e.weight
	}
	mean /= float64(len(edges))

	var variance float64
	for _, e := range edges {
		d := e.weight - mean
		variance += d * d
	}
	variance /= float64(len(edges))
	threshold := mean + math.Sqrt(variance)

	keep := make([]treeEdge, 0, len(edges))
	for _, e := range edges {
		if e.weight <= threshold {
			keep = append(keep, e)
		}
	}
	return keep
}

// componentLabels assigns dense cluster labels to the connected components
// of the kept edges; undersized components become Noise.
func componentLabels(n int, edges []treeEdge, minClusterSize int) []int {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	for _, e := range edges {
		parent[find(e.from)] = find(e.to)
	}

	sizes := make(map[int]int)
	for i := 0; i < n; i++ {
		sizes[find(i)]++
	}

	labels := make([]int, n)
	next := 0
	assigned := make(map[int]int)
	for i := 0; i < n; i++ {
		root := find(i)
		if sizes[root] < minClusterSize {
			labels[i] = Noise
			continue
		}
		id, ok := assigned[root]
		if !ok {
			id = next
			assigned[root] = id
			next++
		}
		labels[i] = id
	}
	return labels
}
