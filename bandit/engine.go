package bandit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rakutenrewards/go-bandit/domain"
	"github.com/rakutenrewards/go-bandit/pkg/logger"
	"github.com/rakutenrewards/go-bandit/storage"
)

// Engine is the entry point every host embeds: it validates requests
// at the boundary, dispatches to the Policy registered for an
// experiment's algorithm, and delegates all state to a
// storage.Backend. Generalized from the teacher's BanditService, which
// plays the identical role of validating, logging and delegating to
// repositories rather than holding state itself.
type Engine struct {
	backend   storage.Backend
	validator *validator.Validate
	entropy   Source
}

// Option configures an Engine constructed by NewEngine.
type Option func(*Engine)

// WithEntropySource overrides the default math/rand-backed Source,
// letting tests seed deterministic choice sequences (spec.md §6).
func WithEntropySource(src Source) Option {
	return func(e *Engine) { e.entropy = src }
}

// WithValidator overrides the default validator, letting a host share
// one *validator.Validate across its own boundary and this engine's.
func WithValidator(v *validator.Validate) Option {
	return func(e *Engine) { e.validator = v }
}

// NewEngine builds an Engine backed by backend. Without options it
// validates with domain.NewValidator() and draws entropy from a
// math/rand source with the fixed seed 1.
func NewEngine(backend storage.Backend, opts ...Option) *Engine {
	e := &Engine{
		backend:   backend,
		validator: domain.NewValidator(),
		entropy:   NewMathRandSource(1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) validate(op string, v any) error {
	if err := e.validator.Struct(v); err != nil {
		return domain.NewValidationError(op, err)
	}
	return nil
}

// Init creates an experiment with its parameters and initial arm set.
// It is idempotent: calling it again for an existing experiment name
// is a no-op regardless of whether the payload differs (spec.md I6).
func (e *Engine) Init(ctx context.Context, learner domain.Learner) error {
	if err := e.validate("init", learner); err != nil {
		return err
	}
	if err := storage.ValidateName(learner.ExperimentName); err != nil {
		return err
	}
	for _, arm := range learner.ArmNames {
		if err := storage.ValidateName(arm); err != nil {
			return err
		}
	}

	params := learner.Params.WithDefaults()
	if err := e.backend.InitExperiment(ctx, learner.ExperimentName, params, learner.ArmNames); err != nil {
		return fmt.Errorf("bandit: init %q: %w", learner.ExperimentName, err)
	}

	logger.Info("bandit_init",
		"experiment", learner.ExperimentName,
		"algo", string(params.Algo),
		"arms", len(learner.ArmNames),
	)
	return nil
}

// liveArms loads params and the sorted, live arm snapshots for an
// experiment. Every read path that needs a Policy goes through this
// so the sort order (spec.md §4.3.2's determinism requirement) is
// applied exactly once. ok is false when the experiment has zero live
// arms — a normal, expected condition (spec.md §4.1/§4.5's "choose on
// zero live arms: returns none"), never reported as an error, matching
// how storage.Backend.GetArmStates itself returns an empty map rather
// than an error for this case.
func (e *Engine) liveArms(ctx context.Context, experimentName string) (params domain.Params, arms []domain.ArmSnapshot, ok bool, err error) {
	params, err = e.backend.GetParams(ctx, experimentName)
	if err != nil {
		return domain.Params{}, nil, false, fmt.Errorf("bandit: get params %q: %w", experimentName, err)
	}

	states, err := e.backend.GetArmStates(ctx, experimentName)
	if err != nil {
		return domain.Params{}, nil, false, fmt.Errorf("bandit: get arm states %q: %w", experimentName, err)
	}

	arms = make([]domain.ArmSnapshot, 0, len(states))
	for name, state := range states {
		arms = append(arms, domain.ArmSnapshot{Name: name, State: state})
	}
	arms = sortedArms(arms)

	if len(arms) == 0 {
		return params, nil, false, nil
	}
	return params, arms, true, nil
}

// Choose selects and returns the name of one live arm for ref's
// experiment, advancing that experiment's choose counter. It returns
// ("", nil) if the experiment currently has no live arms (spec.md
// §4.1: "choose … if no live arms, return none").
func (e *Engine) Choose(ctx context.Context, ref domain.LearnerRef) (string, error) {
	if err := e.validate("choose", ref); err != nil {
		return "", err
	}

	start := time.Now()

	params, arms, ok, err := e.liveArms(ctx, ref.ExperimentName)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	newCount, err := e.backend.IncrChooseCount(ctx, ref.ExperimentName)
	if err != nil {
		return "", fmt.Errorf("bandit: incr choose count %q: %w", ref.ExperimentName, err)
	}
	chooseIndex := newCount - 1

	chosen := policyFor(params.Algo).Choose(arms, params, chooseIndex, e.entropy)

	ChoicesTotal.WithLabelValues(ref.ExperimentName, string(params.Algo)).Inc()
	ChooseDuration.WithLabelValues(ref.ExperimentName, string(params.Algo)).Observe(time.Since(start).Seconds())
	logger.Debug("bandit_choose",
		"trace_id", TraceIDFromContext(ctx),
		"experiment", ref.ExperimentName,
		"algo", string(params.Algo),
		"chosen_arm", chosen,
		"choose_index", chooseIndex,
	)
	return chosen, nil
}

// ArmSelectionProbabilities reports the probability distribution
// Choose would sample from right now, without incrementing the choose
// counter (spec.md §9's resolution of the read-only/increment
// ambiguity: read-only, no increment). It returns an empty, non-nil
// map if the experiment currently has no live arms (spec.md §4.1).
func (e *Engine) ArmSelectionProbabilities(ctx context.Context, ref domain.LearnerRef) (map[string]float64, error) {
	if err := e.validate("arm_selection_probabilities", ref); err != nil {
		return nil, err
	}

	params, arms, ok, err := e.liveArms(ctx, ref.ExperimentName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]float64{}, nil
	}

	chooseIndex, err := e.backend.GetChooseCount(ctx, ref.ExperimentName)
	if err != nil {
		return nil, fmt.Errorf("bandit: get choose count %q: %w", ref.ExperimentName, err)
	}

	return policyFor(params.Algo).SelectionProbabilities(arms, params, chooseIndex), nil
}

// Reward applies a single delayed reward to req.ArmName under ref's
// experiment. A missing or hard-deleted arm is silently ignored
// (spec.md §4.1), as is any reward under an algorithm whose policy
// does not accumulate state (random).
func (e *Engine) Reward(ctx context.Context, ref domain.LearnerRef, req domain.RewardRequest) error {
	if err := e.validate("reward", ref); err != nil {
		return err
	}
	if err := e.validate("reward", req); err != nil {
		return err
	}

	start := time.Now()

	params, err := e.backend.GetParams(ctx, ref.ExperimentName)
	if err != nil {
		return fmt.Errorf("bandit: get params %q: %w", ref.ExperimentName, err)
	}

	if !policyFor(params.Algo).AppliesReward() {
		return nil
	}

	if err := e.backend.RecordReward(ctx, ref.ExperimentName, req.ArmName, params.RewardLowerBound, req.RewardValue); err != nil {
		return fmt.Errorf("bandit: record reward %q/%q: %w", ref.ExperimentName, req.ArmName, err)
	}

	RewardsTotal.WithLabelValues(ref.ExperimentName, "single").Inc()
	RewardLatency.WithLabelValues(ref.ExperimentName, "single").Observe(time.Since(start).Seconds())
	logger.Debug("bandit_reward",
		"trace_id", TraceIDFromContext(ctx),
		"experiment", ref.ExperimentName,
		"arm", req.ArmName,
		"reward", req.RewardValue,
	)
	return nil
}

// BulkReward applies a pre-aggregated {mean, max, count} batch to
// req.ArmName, with the same no-op semantics as Reward for a missing,
// deleted, or non-accumulating arm/algorithm.
func (e *Engine) BulkReward(ctx context.Context, ref domain.LearnerRef, req domain.BulkRewardRequest) error {
	if err := e.validate("bulk_reward", ref); err != nil {
		return err
	}
	if err := e.validate("bulk_reward", req); err != nil {
		return err
	}

	start := time.Now()

	params, err := e.backend.GetParams(ctx, ref.ExperimentName)
	if err != nil {
		return fmt.Errorf("bandit: get params %q: %w", ref.ExperimentName, err)
	}

	if !policyFor(params.Algo).AppliesReward() {
		return nil
	}

	if err := e.backend.BulkReward(ctx, ref.ExperimentName, req.ArmName, params.RewardLowerBound, req.Mean, req.Max, req.Count); err != nil {
		return fmt.Errorf("bandit: bulk reward %q/%q: %w", ref.ExperimentName, req.ArmName, err)
	}

	RewardsTotal.WithLabelValues(ref.ExperimentName, "bulk").Inc()
	RewardLatency.WithLabelValues(ref.ExperimentName, "bulk").Observe(time.Since(start).Seconds())
	logger.Debug("bandit_bulk_reward",
		"trace_id", TraceIDFromContext(ctx),
		"experiment", ref.ExperimentName,
		"arm", req.ArmName,
		"mean", req.Mean,
		"max", req.Max,
		"count", req.Count,
	)
	return nil
}

// CreateArm adds armName to experimentName with default state, or
// restores its prior state if it was soft-deleted.
func (e *Engine) CreateArm(ctx context.Context, experimentName, armName string) error {
	if err := storage.ValidateName(armName); err != nil {
		return err
	}
	if err := e.backend.CreateArm(ctx, experimentName, armName); err != nil {
		return fmt.Errorf("bandit: create arm %q/%q: %w", experimentName, armName, err)
	}
	return nil
}

// SoftDeleteArm marks armName deleted without discarding its state.
func (e *Engine) SoftDeleteArm(ctx context.Context, experimentName, armName string) error {
	if err := e.backend.SoftDeleteArm(ctx, experimentName, armName); err != nil {
		return fmt.Errorf("bandit: soft delete arm %q/%q: %w", experimentName, armName, err)
	}
	return nil
}

// HardDeleteArm permanently removes armName and its state.
func (e *Engine) HardDeleteArm(ctx context.Context, experimentName, armName string) error {
	if err := e.backend.HardDeleteArm(ctx, experimentName, armName); err != nil {
		return fmt.Errorf("bandit: hard delete arm %q/%q: %w", experimentName, armName, err)
	}
	return nil
}

// GetArmStates returns the live arm states for experimentName.
func (e *Engine) GetArmStates(ctx context.Context, experimentName string) (map[string]domain.ArmState, error) {
	states, err := e.backend.GetArmStates(ctx, experimentName)
	if err != nil {
		return nil, fmt.Errorf("bandit: get arm states %q: %w", experimentName, err)
	}
	return states, nil
}

// GetArmNames returns the live arm names for experimentName.
func (e *Engine) GetArmNames(ctx context.Context, experimentName string) ([]string, error) {
	names, err := e.backend.GetArmNames(ctx, experimentName)
	if err != nil {
		return nil, fmt.Errorf("bandit: get arm names %q: %w", experimentName, err)
	}
	return names, nil
}

// Reset removes every experiment the underlying backend owns. Intended
// for test harnesses, not production request paths.
func (e *Engine) Reset(ctx context.Context) error {
	if err := e.backend.Reset(ctx); err != nil {
		return fmt.Errorf("bandit: reset: %w", err)
	}
	return nil
}
