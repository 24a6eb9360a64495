package benchmark

import (
	"math"

	"github.com/poiesic/lacuna/cluster"
	"github.com/poiesic/lacuna/core"
)

// DefaultDetectionDistance is the terrain-frame Euclidean distance beyond
// which a ground-truth lacuna counts as detected.
const DefaultDetectionDistance = 15.0

// LacunaDetection scores how well the model's geometry surfaces the curated
// ground-truth lacunae. Per language, cluster centroids are computed from
// the non-lacuna concepts' positions; a ground-truth lacuna is detected
// when its position sits further than the detection distance from its
// cluster's centroid (a lacuna with no clustered siblings is trivially
// detected). A language with no expected lacunae is vacuously satisfied at
// rate 1.0.
func (s *Suite) LacunaDetection(set *core.ConceptSet, result *core.ModelResult) core.LacunaDetectionResult {
	detection := core.LacunaDetectionResult{PerLanguage: make(map[string]core.LacunaRate)}

	var total float64
	for _, lang := range set.Languages {
		rate := s.detectLanguage(set, result, lang)
		detection.PerLanguage[lang] = rate
		total += rate.Rate
	}

	if len(detection.PerLanguage) > 0 {
		detection.Average = total / float64(len(detection.PerLanguage))
	}
	return detection
}

func (s *Suite) detectLanguage(set *core.ConceptSet, result *core.ModelResult, lang string) core.LacunaRate {
	type centroidAcc struct {
		x, y  float64
		count int
	}
	centroids := make(map[int]*centroidAcc)

	var expected []*core.Concept
	for _, c := range set.Concepts {
		cr, ok := result.Concepts[c.ID]
		if !ok {
			continue
		}
		if _, ok := cr.Positions[lang]; !ok {
			continue
		}

		if c.IsGhost(lang) {
			expected = append(expected, c)
			continue
		}

		label, ok := cr.Clusters[lang]
		if !ok || label == cluster.Noise {
			continue
		}
		acc, ok := centroids[label]
		if !ok {
			acc = &centroidAcc{}
			centroids[label] = acc
		}
		pos := cr.Positions[lang]
		acc.x += pos.X
		acc.y += pos.Y
		acc.count++
	}

	if len(expected) == 0 {
		return core.LacunaRate{Rate: 1.0}
	}

	detected := 0
	for _, c := range expected {
		cr := result.Concepts[c.ID]
		pos := cr.Positions[lang]

		label, ok := cr.Clusters[lang]
		acc := centroids[label]
		if !ok || acc == nil || acc.count == 0 {
			// No non-lacuna siblings to anchor a centroid; counts as
			// detected.
			detected++
			continue
		}

		cx := acc.x / float64(acc.count)
		cy := acc.y / float64(acc.count)
		if math.Hypot(pos.X-cx, pos.Y-cy) > s.config.DetectionDistance {
			detected++
		}
	}

	return core.LacunaRate{
		Rate:     float64(detected) / float64(len(expected)),
		Expected: len(expected),
		Detected: detected,
	}
}
