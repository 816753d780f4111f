package bandit

import (
	"sort"

	"github.com/rakutenrewards/go-bandit/domain"
)

// weightedSample draws one key from weights using a uniform draw from
// src, via inverse-CDF sampling over the map's keys in sorted order.
// Sorting first is what keeps softmax's choice for a given draw, and
// any property test of determinism, reproducible (spec.md §4.3.2:
// "iteration order over arms must be stable").
func weightedSample(weights map[string]float64, src Source) string {
	names := sortedKeys(weights)
	if len(names) == 0 {
		return ""
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return names[src.Intn(len(names))]
	}

	draw := src.Float64() * total
	cumulative := 0.0
	for _, name := range names {
		cumulative += weights[name]
		if draw < cumulative {
			return name
		}
	}
	return names[len(names)-1]
}

// normalize renormalizes an already-computed weight map so its values
// sum to 1, falling back to a uniform distribution when the total is
// non-positive (spec.md P4: selection probabilities must sum to 1).
func normalize(weights map[string]float64) map[string]float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	out := make(map[string]float64, len(weights))
	if total <= 0 {
		if len(weights) == 0 {
			return out
		}
		uniform := 1.0 / float64(len(weights))
		for name := range weights {
			out[name] = uniform
		}
		return out
	}
	for name, w := range weights {
		out[name] = w / total
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedArms returns a copy of arms sorted by name, ascending. Every
// policy iterates arms in this order so choices are deterministic for
// a given entropy source and problem trace.
func sortedArms(arms []domain.ArmSnapshot) []domain.ArmSnapshot {
	out := make([]domain.ArmSnapshot, len(arms))
	copy(out, arms)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
