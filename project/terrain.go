package project

import "math"

// Terrain defaults: positions land inside a square of half-width Bound,
// with Margin leaving headroom at the edges.
const (
	DefaultBound  = 35.0
	DefaultMargin = 0.85
)

// ScaleToTerrain centers the layout and scales it uniformly so the furthest
// coordinate lands at bound*margin. A zero-spread layout collapses to the
// origin. Returns a new slice.
func ScaleToTerrain(positions [][]float64, bound, margin float64) [][]float64 {
	out := make([][]float64, len(positions))
	for i := range out {
		out[i] = make([]float64, 2)
	}
	if len(positions) == 0 {
		return out
	}

	mean := centroid(positions)
	var maxAbs float64
	for _, p := range positions {
		maxAbs = math.Max(maxAbs, math.Abs(p[0]-mean[0]))
		maxAbs = math.Max(maxAbs, math.Abs(p[1]-mean[1]))
	}
	if maxAbs <= 0 {
		return out
	}

	factor := bound * margin / maxAbs
	for i, p := range positions {
		out[i][0] = (p[0] - mean[0]) * factor
		out[i][1] = (p[1] - mean[1]) * factor
	}
	return out
}
