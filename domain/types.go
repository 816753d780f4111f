// Package domain holds the wire/schema types shared by the bandit
// engine and its storage backends: algorithm parameters, arm state,
// and the request schemas the engine validates at its boundary. It
// mirrors the teacher's domain package (domain/bandit.go,
// domain/bandit_config.go), which plays the same role of a
// dependency-free type layer shared by a business service and its
// repositories.
package domain

// Algorithm identifies one of the four selection policies an
// experiment can run. It is stored as a plain string so it round-trips
// through the remote backend's params hash without a translation
// table (spec.md §4.4: "algo stored as string").
type Algorithm string

const (
	EpsilonGreedy Algorithm = "epsilon_greedy"
	UCB1          Algorithm = "ucb1"
	Softmax       Algorithm = "softmax"
	Random        Algorithm = "random"
)

// Valid reports whether a is one of the four known algorithms.
func (a Algorithm) Valid() bool {
	switch a {
	case EpsilonGreedy, UCB1, Softmax, Random:
		return true
	default:
		return false
	}
}

// Params are the immutable-after-init parameters of one experiment.
// Only the fields relevant to Algo are meaningful; the others are
// zero. See WithDefaults for the per-algorithm defaults applied by
// Engine.Init after validation.
type Params struct {
	Algo             Algorithm `json:"algo" validate:"required,oneof=epsilon_greedy ucb1 softmax random"`
	Maximize         bool      `json:"maximize"`
	RewardLowerBound float64   `json:"reward_lower_bound"`

	// Epsilon is required, in (0, 1), for Algo == EpsilonGreedy only.
	Epsilon float64 `json:"epsilon,omitempty"`

	// ExplorationMult is positive, for Algo == UCB1 only. Defaults to 1.0.
	ExplorationMult float64 `json:"exploration_mult,omitempty"`

	// StartingTemperature, TempDecayPerStep and MinTemperature are all
	// positive, for Algo == Softmax only.
	StartingTemperature float64 `json:"starting_temperature,omitempty"`
	TempDecayPerStep    float64 `json:"temp_decay_per_step,omitempty"`
	MinTemperature      float64 `json:"min_temperature,omitempty"`
}

// WithDefaults returns a copy of p with per-algorithm defaults filled
// in for any field left at its zero value. It never overrides a
// caller-supplied value, so calling it twice is a no-op.
func (p Params) WithDefaults() Params {
	if p.Algo == UCB1 && p.ExplorationMult == 0 {
		p.ExplorationMult = 1.0
	}
	return p
}

// ArmState is the per-arm accumulator. N starts at 1 (not 0) so the
// Welford-style update in reward.go never divides by zero before the
// first real reward — see spec.md §3, invariant I1.
type ArmState struct {
	N          uint64  `json:"n"`
	MeanReward float64 `json:"mean_reward"`
	Deleted    bool    `json:"deleted"`
}

// NewArmState returns the default state for a freshly created arm.
func NewArmState() ArmState {
	return ArmState{N: 1, MeanReward: 0.0}
}

// ArmSnapshot pairs an arm's name with a point-in-time copy of its
// state, as read by a Policy for Choose/SelectionProbabilities.
type ArmSnapshot struct {
	Name  string
	State ArmState
}

// LearnerRef is the minimal reference to an experiment used by
// Choose, ArmSelectionProbabilities, Reward and BulkReward.
type LearnerRef struct {
	Algo           Algorithm `json:"algo" validate:"required,oneof=epsilon_greedy ucb1 softmax random"`
	ExperimentName string    `json:"experiment_name" validate:"required,excludesall=:"`
}

// Learner is the full payload accepted by Engine.Init.
type Learner struct {
	LearnerRef
	ArmNames []string `json:"arm_names" validate:"required,min=1,unique,dive,required,excludesall=:"`
	Params   Params   `json:"params" validate:"required"`
}

// RewardRequest is a single delayed reward attributable to a prior
// choice.
type RewardRequest struct {
	ArmName     string  `json:"arm_name" validate:"required,excludesall=:"`
	RewardValue float64 `json:"reward_value" validate:"finite"`
}

// BulkRewardRequest is a pre-aggregated batch of rewards for one arm.
// Count must be at least 1 and Mean must not exceed Max.
type BulkRewardRequest struct {
	ArmName string  `json:"arm_name" validate:"required,excludesall=:"`
	Mean    float64 `json:"mean" validate:"finite"`
	Max     float64 `json:"max" validate:"finite"`
	Count   uint64  `json:"count" validate:"required,gte=1"`
}
