package benchmark

import (
	"sort"

	"github.com/poiesic/lacuna/core"
)

// Metric names used in comparison rankings.
const (
	MetricCLAS      = "clas"
	MetricTopology  = "topology"
	MetricCoherence = "coherence"
	MetricLacuna    = "lacuna_detection"
	MetricComposite = "composite"
)

// Compare ranks the evaluated models on every metric and on the composite
// score. CLAS ranks ascending (lower preserves language differences);
// everything else ranks descending. Ties break on model ID for stable
// output.
func Compare(results []*core.MetricResult) *core.Comparison {
	comparison := &core.Comparison{
		Rankings: make(map[string][]string),
		Scores:   make(map[string]map[string]float64),
	}

	for _, metric := range []string{MetricCLAS, MetricTopology, MetricCoherence, MetricLacuna, MetricComposite} {
		comparison.Scores[metric] = make(map[string]float64)
	}

	for _, r := range results {
		comparison.Models = append(comparison.Models, r.ModelID)
		comparison.Scores[MetricCLAS][r.ModelID] = r.CLAS.Average
		comparison.Scores[MetricTopology][r.ModelID] = r.Topology.Average
		comparison.Scores[MetricCoherence][r.ModelID] = r.Coherence.Average
		comparison.Scores[MetricLacuna][r.ModelID] = r.LacunaDetection.Average
		comparison.Scores[MetricComposite][r.ModelID] = r.Composite()
	}
	sort.Strings(comparison.Models)

	for metric, scores := range comparison.Scores {
		ranked := make([]string, len(comparison.Models))
		copy(ranked, comparison.Models)

		ascending := metric == MetricCLAS
		sort.SliceStable(ranked, func(a, b int) bool {
			sa, sb := scores[ranked[a]], scores[ranked[b]]
			if sa == sb {
				return ranked[a] < ranked[b]
			}
			if ascending {
				return sa < sb
			}
			return sa > sb
		})
		comparison.Rankings[metric] = ranked
	}

	return comparison
}
