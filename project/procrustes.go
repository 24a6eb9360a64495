package project

import "math"

// Align maps source points onto target's frame with an orthogonal
// Procrustes transform: both point sets are centered and scaled to unit
// total variance, the optimal 2x2 rotation (or reflection) is solved in
// closed form, and the rotated source is re-scaled and re-centered to match
// the target. The two sets must be in row correspondence.
//
// Fewer than two points, mismatched lengths, or a degenerate (zero-spread)
// set returns a centered copy of source shifted to the target centroid.
func Align(source, target [][]float64) [][]float64 {
	n := len(source)
	aligned := make([][]float64, n)
	for i := range aligned {
		aligned[i] = make([]float64, 2)
	}
	if n == 0 {
		return aligned
	}

	srcMean := centroid(source)
	tgtMean := centroid(target)

	if n < 2 || len(target) != n {
		for i := range source {
			aligned[i][0] = source[i][0] - srcMean[0] + tgtMean[0]
			aligned[i][1] = source[i][1] - srcMean[1] + tgtMean[1]
		}
		return aligned
	}

	srcScale := spread(source, srcMean)
	tgtScale := spread(target, tgtMean)
	if srcScale <= 0 || tgtScale <= 0 {
		for i := range source {
			aligned[i][0] = source[i][0] - srcMean[0] + tgtMean[0]
			aligned[i][1] = source[i][1] - srcMean[1] + tgtMean[1]
		}
		return aligned
	}

	// Cross-covariance of the normalized point sets.
	var m00, m01, m10, m11 float64
	for i := 0; i < n; i++ {
		sx := (source[i][0] - srcMean[0]) / srcScale
		sy := (source[i][1] - srcMean[1]) / srcScale
		tx := (target[i][0] - tgtMean[0]) / tgtScale
		ty := (target[i][1] - tgtMean[1]) / tgtScale
		m00 += sx * tx
		m01 += sx * ty
		m10 += sy * tx
		m11 += sy * ty
	}

	// The best orthogonal map is either a pure rotation or a reflection;
	// each has a closed-form optimum in 2D, and the one with the larger
	// trace objective wins.
	rotGain := math.Hypot(m00+m11, m10-m01)
	refGain := math.Hypot(m00-m11, m10+m01)

	var r00, r01, r10, r11 float64
	if rotGain >= refGain {
		theta := math.Atan2(m10-m01, m00+m11)
		c, s := math.Cos(theta), math.Sin(theta)
		r00, r01, r10, r11 = c, -s, s, c
	} else {
		theta := math.Atan2(m10+m01, m00-m11)
		c, s := math.Cos(theta), math.Sin(theta)
		r00, r01, r10, r11 = c, s, s, -c
	}

	for i := 0; i < n; i++ {
		sx := (source[i][0] - srcMean[0]) / srcScale
		sy := (source[i][1] - srcMean[1]) / srcScale
		aligned[i][0] = (sx*r00+sy*r10)*tgtScale + tgtMean[0]
		aligned[i][1] = (sx*r01+sy*r11)*tgtScale + tgtMean[1]
	}
	return aligned
}

func centroid(points [][]float64) [2]float64 {
	var c [2]float64
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c[0] += p[0]
		c[1] += p[1]
	}
	c[0] /= float64(len(points))
	c[1] /= float64(len(points))
	return c
}

// spread is the root total variance of the centered point set (Frobenius
// norm of the centered coordinates).
func spread(points [][]float64, mean [2]float64) float64 {
	var sum float64
	for _, p := range points {
		dx := p[0] - mean[0]
		dy := p[1] - mean[1]
		sum += dx*dx + dy*dy
	}
	return math.Sqrt(sum)
}
