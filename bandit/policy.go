package bandit

import "github.com/rakutenrewards/go-bandit/domain"

// Policy is one selection algorithm: epsilon-greedy, UCB1, softmax or
// random. Engine dispatches to one by domain.Params.Algo and never
// branches on the algorithm itself — every spec.md §4.3 difference
// lives inside a Policy implementation.
type Policy interface {
	// Choose picks one arm out of arms (already sorted by name) given
	// params, the current choose counter (pre-increment, i.e. the
	// index this call occupies), and an entropy source.
	Choose(arms []domain.ArmSnapshot, params domain.Params, chooseIndex uint64, src Source) string

	// SelectionProbabilities reports, without mutating any counter,
	// the probability Choose would assign to each live arm at the
	// given (not-yet-incremented) choose counter.
	SelectionProbabilities(arms []domain.ArmSnapshot, params domain.Params, chooseIndex uint64) map[string]float64

	// AppliesReward reports whether this policy's reward hook
	// accumulates state at all. Every policy except random uses the
	// default scale-and-update hook; random's hook is a no-op since it
	// never consults arm state when choosing (spec.md §4.3.4).
	AppliesReward() bool
}

// policies is the static registry every Engine consults. It is
// unexported and built once at init time, mirroring the teacher's
// business/bandit/bandit_service.go strategy map from algo name to
// struct, generalized here from two strategies (LinUCB, epsilon) to
// the four spec.md names.
var policies = map[domain.Algorithm]Policy{
	domain.EpsilonGreedy: epsilonGreedyPolicy{},
	domain.UCB1:          ucb1Policy{},
	domain.Softmax:       softmaxPolicy{},
	domain.Random:        randomPolicy{},
}

// policyFor returns the Policy registered for algo. It panics on an
// unknown algorithm since that indicates a validation gap upstream
// (domain.NewValidator's oneof tag should have rejected it already)
// rather than a recoverable runtime condition.
func policyFor(algo domain.Algorithm) Policy {
	if !algo.Valid() {
		panic("bandit: no policy registered for algorithm " + string(algo))
	}
	return policies[algo]
}

// argOptimum returns the name of the arm with the best mean reward:
// the maximum if maximize is true, else the minimum. Ties resolve to
// the first arm in arms' iteration order (arms must already be sorted
// by name — spec.md §4.3.2's tie-break rule applies to every policy,
// not just UCB1).
func argOptimum(arms []domain.ArmSnapshot, maximize bool) string {
	best := arms[0]
	for _, a := range arms[1:] {
		if maximize {
			if a.State.MeanReward > best.State.MeanReward {
				best = a
			}
		} else {
			if a.State.MeanReward < best.State.MeanReward {
				best = a
			}
		}
	}
	return best.Name
}
