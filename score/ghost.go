package score

// Ghost thresholds. A concept is a ghost in a language when its weight
// there is negligible in absolute terms, or dwarfed by its weight in some
// other language.
const (
	ghostAbsoluteMax = 0.15
	ghostRatioMin    = 2.5

	// ghostClamp keeps the ratio test away from near-zero denominators and
	// from firing on uniformly tiny weights.
	ghostClamp = 0.01
)

// GhostFlags marks per-language ghost presence for each concept. weights
// maps language to a weight slice in shared concept order; every language
// slice must have the same length. The result has one map per concept,
// keyed by language.
//
// A concept ghosts in a language when its weight falls below 0.15, or when
// its maximum weight in any other language exceeds 2.5 times the local
// weight (both sides clamped to 0.01 so vanishing weights cannot produce
// spurious ratios).
func GhostFlags(weights map[string][]float64, languages []string) []map[string]bool {
	var count int
	for _, lang := range languages {
		if len(weights[lang]) > count {
			count = len(weights[lang])
		}
	}

	flags := make([]map[string]bool, count)
	for i := range flags {
		flags[i] = make(map[string]bool, len(languages))

		for _, lang := range languages {
			w := weightAt(weights[lang], i)

			maxOther := 0.0
			for _, other := range languages {
				if other == lang {
					continue
				}
				if ow := weightAt(weights[other], i); ow > maxOther {
					maxOther = ow
				}
			}

			local := w
			if local < ghostClamp {
				local = ghostClamp
			}
			ratioFires := maxOther > ghostClamp && maxOther/local > ghostRatioMin

			flags[i][lang] = w < ghostAbsoluteMax || ratioFires
		}
	}
	return flags
}

func weightAt(weights []float64, i int) float64 {
	if i >= len(weights) {
		return 0
	}
	return weights[i]
}
