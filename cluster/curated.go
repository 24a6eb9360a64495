package cluster

import "github.com/poiesic/lacuna/core"

// CuratedLabels reads cluster assignments from the concepts' curated
// Cluster field, mapping names to dense integers in first-appearance order.
// Concepts without a curated cluster become Noise. The second return is
// false when no concept carries a curated label, in which case the caller
// should fall back to density clustering.
func CuratedLabels(concepts []*core.Concept) ([]int, bool) {
	labels := make([]int, len(concepts))
	assigned := make(map[string]int)
	any := false

	for i, c := range concepts {
		if c == nil || c.Cluster == "" {
			labels[i] = Noise
			continue
		}
		any = true
		id, ok := assigned[c.Cluster]
		if !ok {
			id = len(assigned)
			assigned[c.Cluster] = id
		}
		labels[i] = id
	}
	return labels, any
}
