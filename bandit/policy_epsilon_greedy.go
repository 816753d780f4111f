package bandit

import "github.com/rakutenrewards/go-bandit/domain"

// epsilonGreedyPolicy implements spec.md §4.3.1: exploit the current
// optimum with probability 1-epsilon, otherwise explore uniformly.
type epsilonGreedyPolicy struct{}

func (epsilonGreedyPolicy) Choose(arms []domain.ArmSnapshot, params domain.Params, _ uint64, src Source) string {
	if src.Float64() < params.Epsilon {
		return arms[src.Intn(len(arms))].Name
	}
	return argOptimum(arms, params.Maximize)
}

func (epsilonGreedyPolicy) SelectionProbabilities(arms []domain.ArmSnapshot, params domain.Params, _ uint64) map[string]float64 {
	k := float64(len(arms))
	out := make(map[string]float64, len(arms))
	for _, a := range arms {
		out[a.Name] = params.Epsilon / k
	}
	best := argOptimum(arms, params.Maximize)
	out[best] = 1 - params.Epsilon + params.Epsilon/k
	return out
}

func (epsilonGreedyPolicy) AppliesReward() bool { return true }
