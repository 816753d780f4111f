package storage

import "github.com/rakutenrewards/go-bandit/domain"

// applySingleReward implements the scale-and-update arithmetic of
// spec.md §4.2 for one reward. It is the single source of truth the
// MemoryBackend calls directly and RedisBackend mirrors in Lua — see
// scripts.go's recordRewardScript, which must stay in lockstep with
// this function.
func applySingleReward(old domain.ArmState, maxReward, lowerBound, reward float64) (domain.ArmState, float64) {
	r := reward
	if r < lowerBound {
		r = lowerBound
	}
	newMax := maxReward
	if r > newMax {
		newMax = r
	}

	var s float64
	if newMax == lowerBound {
		s = lowerBound
	} else {
		s = (r - lowerBound) / (newMax - lowerBound)
	}

	delta := s - old.MeanReward
	newState := domain.ArmState{
		N:          old.N + 1,
		MeanReward: old.MeanReward + delta/float64(old.N+1),
		Deleted:    old.Deleted,
	}
	return newState, newMax
}

// applyBulkReward implements the parallel-variance bulk update of
// spec.md §4.2 for a pre-aggregated {mean, max, count} batch.
func applyBulkReward(old domain.ArmState, maxReward, lowerBound float64, mean, max float64, count uint64) (domain.ArmState, float64) {
	mu := mean
	if mu < lowerBound {
		mu = lowerBound
	}
	x := max
	if x < lowerBound {
		x = lowerBound
	}
	newMax := maxReward
	if x > newMax {
		newMax = x
	}

	var s float64
	if newMax == lowerBound {
		s = lowerBound
	} else {
		s = (mu - lowerBound) / (newMax - lowerBound)
	}

	delta := s - old.MeanReward
	newN := old.N + count
	newState := domain.ArmState{
		N:          newN,
		MeanReward: old.MeanReward + delta*(float64(count)/float64(newN)),
		Deleted:    old.Deleted,
	}
	return newState, newMax
}
