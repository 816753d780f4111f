package bandit

import "github.com/rakutenrewards/go-bandit/domain"

// randomPolicy implements spec.md §4.3.4: uniform choice, no state
// accumulation on reward.
type randomPolicy struct{}

func (randomPolicy) Choose(arms []domain.ArmSnapshot, _ domain.Params, _ uint64, src Source) string {
	return arms[src.Intn(len(arms))].Name
}

func (randomPolicy) SelectionProbabilities(arms []domain.ArmSnapshot, _ domain.Params, _ uint64) map[string]float64 {
	uniform := 1 / float64(len(arms))
	out := make(map[string]float64, len(arms))
	for _, a := range arms {
		out[a.Name] = uniform
	}
	return out
}

func (randomPolicy) AppliesReward() bool { return false }
