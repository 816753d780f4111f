package bandit

import (
	"math"

	"github.com/rakutenrewards/go-bandit/domain"
)

// softmaxPolicy implements spec.md §4.3.3, with the minimization
// transform replaced per spec.md §9's open question: instead of
// flip(p)(a) = 2/k - p(a) (not a valid distribution whenever any
// p(a) > 2/k), minimizing applies softmax to -mean(a)/T rather than
// inverting an already-computed maximizing distribution. This is
// documented as a deliberate deviation, not an oversight.
type softmaxPolicy struct{}

func (softmaxPolicy) temperature(arms []domain.ArmSnapshot, params domain.Params) float64 {
	var total uint64
	for _, a := range arms {
		total += a.State.N
	}
	t := params.StartingTemperature - params.TempDecayPerStep*float64(total)
	if t < params.MinTemperature {
		t = params.MinTemperature
	}
	return t
}

func (s softmaxPolicy) weights(arms []domain.ArmSnapshot, params domain.Params) map[string]float64 {
	t := s.temperature(arms, params)
	sign := 1.0
	if !params.Maximize {
		sign = -1.0
	}
	out := make(map[string]float64, len(arms))
	for _, a := range arms {
		out[a.Name] = math.Exp(sign * a.State.MeanReward / t)
	}
	return out
}

func (s softmaxPolicy) Choose(arms []domain.ArmSnapshot, params domain.Params, _ uint64, src Source) string {
	p := normalize(s.weights(arms, params))
	return weightedSample(p, src)
}

func (s softmaxPolicy) SelectionProbabilities(arms []domain.ArmSnapshot, params domain.Params, _ uint64) map[string]float64 {
	return normalize(s.weights(arms, params))
}

func (softmaxPolicy) AppliesReward() bool { return true }
