package bandit

import (
	"context"
	"testing"

	"github.com/rakutenrewards/go-bandit/domain"
	"github.com/rakutenrewards/go-bandit/storage"
)

func newTestEngine() *Engine {
	return NewEngine(storage.NewMemoryBackend(), WithEntropySource(NewMathRandSource(42)))
}

func TestEngineInitThenChoose(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	learner := domain.Learner{
		LearnerRef: domain.LearnerRef{Algo: domain.UCB1, ExperimentName: "exp1"},
		ArmNames:   []string{"a", "b", "c"},
		Params:     domain.Params{Algo: domain.UCB1, Maximize: true},
	}
	if err := e.Init(ctx, learner); err != nil {
		t.Fatalf("init: %v", err)
	}

	ref := domain.LearnerRef{Algo: domain.UCB1, ExperimentName: "exp1"}
	want := []string{"a", "b", "c", "a"}
	for i, w := range want {
		got, err := e.Choose(ctx, ref)
		if err != nil {
			t.Fatalf("choose %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("choose %d: expected %s, got %s", i, w, got)
		}
	}
}

func TestEngineInitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	learner := domain.Learner{
		LearnerRef: domain.LearnerRef{Algo: domain.Random, ExperimentName: "exp1"},
		ArmNames:   []string{"a"},
		Params:     domain.Params{Algo: domain.Random, Maximize: true},
	}
	if err := e.Init(ctx, learner); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := e.Init(ctx, learner); err != nil {
		t.Fatalf("second init: %v", err)
	}
}

func TestEngineInitRejectsInvalidParams(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	learner := domain.Learner{
		LearnerRef: domain.LearnerRef{Algo: domain.EpsilonGreedy, ExperimentName: "exp1"},
		ArmNames:   []string{"a", "b"},
		Params:     domain.Params{Algo: domain.EpsilonGreedy, Epsilon: 1.5}, // out of (0, 1)
	}
	if err := e.Init(ctx, learner); err == nil {
		t.Fatalf("expected validation error for epsilon out of range")
	}
}

func TestEngineInitRejectsReservedSeparatorInName(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	learner := domain.Learner{
		LearnerRef: domain.LearnerRef{Algo: domain.Random, ExperimentName: "exp1"},
		ArmNames:   []string{"bad:name"},
		Params:     domain.Params{Algo: domain.Random},
	}
	if err := e.Init(ctx, learner); err == nil {
		t.Fatalf("expected validation error for arm name containing ':'")
	}
}

func TestEngineRewardUpdatesArmState(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	learner := domain.Learner{
		LearnerRef: domain.LearnerRef{Algo: domain.UCB1, ExperimentName: "exp1"},
		ArmNames:   []string{"a", "b"},
		Params:     domain.Params{Algo: domain.UCB1, Maximize: true, RewardLowerBound: -1},
	}
	if err := e.Init(ctx, learner); err != nil {
		t.Fatalf("init: %v", err)
	}

	ref := domain.LearnerRef{Algo: domain.UCB1, ExperimentName: "exp1"}
	if err := e.Reward(ctx, ref, domain.RewardRequest{ArmName: "a", RewardValue: -0.5}); err != nil {
		t.Fatalf("reward: %v", err)
	}

	states, err := e.GetArmStates(ctx, "exp1")
	if err != nil {
		t.Fatalf("get arm states: %v", err)
	}
	if states["a"].N != 2 {
		t.Fatalf("expected n=2 after one reward, got %d", states["a"].N)
	}
}

func TestEngineRewardIsNoOpForRandomAlgorithm(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	learner := domain.Learner{
		LearnerRef: domain.LearnerRef{Algo: domain.Random, ExperimentName: "exp1"},
		ArmNames:   []string{"a"},
		Params:     domain.Params{Algo: domain.Random},
	}
	if err := e.Init(ctx, learner); err != nil {
		t.Fatalf("init: %v", err)
	}

	ref := domain.LearnerRef{Algo: domain.Random, ExperimentName: "exp1"}
	if err := e.Reward(ctx, ref, domain.RewardRequest{ArmName: "a", RewardValue: 0.9}); err != nil {
		t.Fatalf("reward: %v", err)
	}

	states, err := e.GetArmStates(ctx, "exp1")
	if err != nil {
		t.Fatalf("get arm states: %v", err)
	}
	if states["a"].N != 1 {
		t.Fatalf("expected random policy's reward hook to be a no-op, got n=%d", states["a"].N)
	}
}

func TestEngineArmSelectionProbabilitiesDoesNotAdvanceChooseCounter(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	learner := domain.Learner{
		LearnerRef: domain.LearnerRef{Algo: domain.UCB1, ExperimentName: "exp1"},
		ArmNames:   []string{"a", "b"},
		Params:     domain.Params{Algo: domain.UCB1, Maximize: true},
	}
	if err := e.Init(ctx, learner); err != nil {
		t.Fatalf("init: %v", err)
	}

	ref := domain.LearnerRef{Algo: domain.UCB1, ExperimentName: "exp1"}
	if _, err := e.ArmSelectionProbabilities(ctx, ref); err != nil {
		t.Fatalf("arm selection probabilities: %v", err)
	}
	if _, err := e.ArmSelectionProbabilities(ctx, ref); err != nil {
		t.Fatalf("arm selection probabilities: %v", err)
	}

	// choose counter should still be 0, so the next real Choose starts
	// the cold-start round-robin at "a".
	got, err := e.Choose(ctx, ref)
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if got != "a" {
		t.Fatalf("expected first live choose to be a, got %s", got)
	}
}

func TestEngineSoftDeleteExcludesArmFromChoice(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	learner := domain.Learner{
		LearnerRef: domain.LearnerRef{Algo: domain.Random, ExperimentName: "exp1"},
		ArmNames:   []string{"a", "b"},
		Params:     domain.Params{Algo: domain.Random},
	}
	if err := e.Init(ctx, learner); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := e.SoftDeleteArm(ctx, "exp1", "b"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	names, err := e.GetArmNames(ctx, "exp1")
	if err != nil {
		t.Fatalf("get arm names: %v", err)
	}
	if len(names) != 1 || names[0] != "a" {
		t.Fatalf("expected only arm a to remain live, got %v", names)
	}
}

func TestEngineChooseWithNoLiveArmsReturnsNoneNotError(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	learner := domain.Learner{
		LearnerRef: domain.LearnerRef{Algo: domain.Random, ExperimentName: "exp1"},
		ArmNames:   []string{"a"},
		Params:     domain.Params{Algo: domain.Random},
	}
	if err := e.Init(ctx, learner); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := e.SoftDeleteArm(ctx, "exp1", "a"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	ref := domain.LearnerRef{Algo: domain.Random, ExperimentName: "exp1"}
	got, err := e.Choose(ctx, ref)
	if err != nil {
		t.Fatalf("expected no error when there are no live arms, got %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty arm name (none), got %q", got)
	}
}

func TestEngineArmSelectionProbabilitiesWithNoLiveArmsReturnsEmptyMap(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	learner := domain.Learner{
		LearnerRef: domain.LearnerRef{Algo: domain.Random, ExperimentName: "exp1"},
		ArmNames:   []string{"a"},
		Params:     domain.Params{Algo: domain.Random},
	}
	if err := e.Init(ctx, learner); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := e.SoftDeleteArm(ctx, "exp1", "a"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	ref := domain.LearnerRef{Algo: domain.Random, ExperimentName: "exp1"}
	got, err := e.ArmSelectionProbabilities(ctx, ref)
	if err != nil {
		t.Fatalf("expected no error when there are no live arms, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty, non-nil map, got %v", got)
	}
}
