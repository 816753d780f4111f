package bandit

import (
	"math"

	"github.com/rakutenrewards/go-bandit/domain"
)

// ucb1Policy implements spec.md §4.3.2. While every live arm is
// unrewarded (n(a) == 1) it round-robins over them instead of
// evaluating the UCB formula. Once some arms are rewarded, it
// round-robins over the remaining unrewarded arms only when
// chooseIndex mod k falls below their count, and otherwise evaluates
// the UCB formula over all live arms.
type ucb1Policy struct{}

// coldStart reports whether the cold-start round-robin branch applies
// for this chooseIndex, and if so which arm it selects. arms must
// already be sorted by name.
func (ucb1Policy) coldStart(arms []domain.ArmSnapshot, chooseIndex uint64) (string, bool) {
	k := len(arms)
	unrewarded := make([]domain.ArmSnapshot, 0, k)
	for _, a := range arms {
		if a.State.N == 1 {
			unrewarded = append(unrewarded, a)
		}
	}
	u := len(unrewarded)
	if u == 0 {
		return "", false
	}
	idx := int(chooseIndex % uint64(k))
	if u == k {
		return unrewarded[idx].Name, true
	}
	if idx < u {
		return unrewarded[idx].Name, true
	}
	return "", false
}

func (p ucb1Policy) Choose(arms []domain.ArmSnapshot, params domain.Params, chooseIndex uint64, _ Source) string {
	if name, ok := p.coldStart(arms, chooseIndex); ok {
		return name
	}
	return argOptimum(ucbScores(arms, params), params.Maximize)
}

func (p ucb1Policy) SelectionProbabilities(arms []domain.ArmSnapshot, params domain.Params, chooseIndex uint64) map[string]float64 {
	k := float64(len(arms))
	out := make(map[string]float64, len(arms))
	if _, ok := p.coldStart(arms, chooseIndex); ok {
		for _, a := range arms {
			out[a.Name] = 1 / k
		}
		return out
	}
	best := argOptimum(ucbScores(arms, params), params.Maximize)
	for _, a := range arms {
		if a.Name == best {
			out[a.Name] = 1.0
		} else {
			out[a.Name] = 0.0
		}
	}
	return out
}

// ucbScores computes mean(a) +/- explorationMult*sqrt(2*ln(N)/n(a))
// for every live arm (+ when maximizing, - when minimizing), stored in
// MeanReward of the returned snapshots so argOptimum can pick the
// largest score when maximizing and the smallest when minimizing.
func ucbScores(arms []domain.ArmSnapshot, params domain.Params) []domain.ArmSnapshot {
	var total uint64
	for _, a := range arms {
		total += a.State.N
	}
	logN := math.Log(float64(total))

	sign := 1.0
	if !params.Maximize {
		sign = -1.0
	}

	out := make([]domain.ArmSnapshot, len(arms))
	for i, a := range arms {
		bonus := params.ExplorationMult * math.Sqrt(2*logN/float64(a.State.N))
		out[i] = domain.ArmSnapshot{
			Name: a.Name,
			State: domain.ArmState{
				N:          a.State.N,
				MeanReward: a.State.MeanReward + sign*bonus,
			},
		}
	}
	return out
}

func (ucb1Policy) AppliesReward() bool { return true }
