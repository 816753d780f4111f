package storage

import (
	"context"
	"testing"

	"github.com/rakutenrewards/go-bandit/domain"
)

func newTestBackend(t *testing.T) *MemoryBackend {
	t.Helper()
	return NewMemoryBackend()
}

func TestMemoryBackend_InitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	params := domain.Params{Algo: domain.UCB1, Maximize: true, ExplorationMult: 1.0}

	if err := b.InitExperiment(ctx, "exp", params, []string{"a", "b"}); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := b.RecordReward(ctx, "exp", "a", 0, 0.8); err != nil {
		t.Fatalf("record reward: %v", err)
	}

	if err := b.InitExperiment(ctx, "exp", domain.Params{Algo: domain.Random}, []string{"z"}); err != nil {
		t.Fatalf("second init: %v", err)
	}

	got, err := b.GetParams(ctx, "exp")
	if err != nil {
		t.Fatalf("get params: %v", err)
	}
	if got.Algo != domain.UCB1 {
		t.Fatalf("expected second init to be a no-op, got algo %q", got.Algo)
	}

	states, err := b.GetArmStates(ctx, "exp")
	if err != nil {
		t.Fatalf("get arm states: %v", err)
	}
	if states["a"].N != 2 {
		t.Fatalf("expected arm a's reward to survive the second init, got n=%d", states["a"].N)
	}
}

func TestMemoryBackend_UnknownExperiment(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	if _, err := b.GetParams(ctx, "missing"); err != ErrExperimentNotFound {
		t.Fatalf("expected ErrExperimentNotFound, got %v", err)
	}
	if _, err := b.GetArmStates(ctx, "missing"); err != ErrExperimentNotFound {
		t.Fatalf("expected ErrExperimentNotFound, got %v", err)
	}
}

func TestMemoryBackend_RewardOnMissingArmIsNoOp(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	if err := b.InitExperiment(ctx, "exp", domain.Params{Algo: domain.Random}, []string{"a"}); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := b.RecordReward(ctx, "exp", "does-not-exist", 0, 1.0); err != nil {
		t.Fatalf("record reward on missing arm should be a silent no-op, got %v", err)
	}
}

func TestMemoryBackend_SoftDeleteExcludesFromStatesButKeepsState(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	if err := b.InitExperiment(ctx, "exp", domain.Params{Algo: domain.Random}, []string{"a", "b"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := b.RecordReward(ctx, "exp", "a", 0, 0.7); err != nil {
		t.Fatalf("record reward: %v", err)
	}
	if err := b.SoftDeleteArm(ctx, "exp", "a"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	states, err := b.GetArmStates(ctx, "exp")
	if err != nil {
		t.Fatalf("get arm states: %v", err)
	}
	if _, ok := states["a"]; ok {
		t.Fatalf("expected soft-deleted arm to be excluded")
	}

	if err := b.CreateArm(ctx, "exp", "a"); err != nil {
		t.Fatalf("recreate arm: %v", err)
	}
	states, err = b.GetArmStates(ctx, "exp")
	if err != nil {
		t.Fatalf("get arm states: %v", err)
	}
	if states["a"].N != 2 {
		t.Fatalf("expected restored arm to keep its prior state, got n=%d", states["a"].N)
	}
}

func TestMemoryBackend_HardDeleteDiscardsState(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	if err := b.InitExperiment(ctx, "exp", domain.Params{Algo: domain.Random}, []string{"a"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := b.RecordReward(ctx, "exp", "a", 0, 0.9); err != nil {
		t.Fatalf("record reward: %v", err)
	}
	if err := b.HardDeleteArm(ctx, "exp", "a"); err != nil {
		t.Fatalf("hard delete: %v", err)
	}
	if err := b.CreateArm(ctx, "exp", "a"); err != nil {
		t.Fatalf("recreate arm: %v", err)
	}

	states, err := b.GetArmStates(ctx, "exp")
	if err != nil {
		t.Fatalf("get arm states: %v", err)
	}
	if states["a"].N != 1 {
		t.Fatalf("expected hard-deleted arm to restart at default state, got n=%d", states["a"].N)
	}
}

func TestMemoryBackend_RecordRewardArithmetic(t *testing.T) {
	// spec.md scenario S4: rewardLowerBound=-1, recordReward(arm1, -0.5)
	// against default mean=0, n=1, maxReward=1.0 yields mean=0.125, n=2.
	ctx := context.Background()
	b := newTestBackend(t)
	if err := b.InitExperiment(ctx, "exp", domain.Params{Algo: domain.UCB1, RewardLowerBound: -1}, []string{"arm1"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := b.RecordReward(ctx, "exp", "arm1", -1, -0.5); err != nil {
		t.Fatalf("record reward: %v", err)
	}

	states, err := b.GetArmStates(ctx, "exp")
	if err != nil {
		t.Fatalf("get arm states: %v", err)
	}
	got := states["arm1"]
	if got.N != 2 {
		t.Fatalf("expected n=2, got %d", got.N)
	}
	if diff := got.MeanReward - 0.125; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected mean=0.125, got %v", got.MeanReward)
	}
}

func TestMemoryBackend_ChooseCounter(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	if err := b.InitExperiment(ctx, "exp", domain.Params{Algo: domain.Random}, []string{"a"}); err != nil {
		t.Fatalf("init: %v", err)
	}

	for i := uint64(1); i <= 3; i++ {
		n, err := b.IncrChooseCount(ctx, "exp")
		if err != nil {
			t.Fatalf("incr choose count: %v", err)
		}
		if n != i {
			t.Fatalf("expected count %d, got %d", i, n)
		}
	}

	got, err := b.GetChooseCount(ctx, "exp")
	if err != nil {
		t.Fatalf("get choose count: %v", err)
	}
	if got != 3 {
		t.Fatalf("expected get to not mutate the counter, got %d", got)
	}
}

func TestMemoryBackend_Reset(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	if err := b.InitExperiment(ctx, "exp", domain.Params{Algo: domain.Random}, []string{"a"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := b.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := b.GetParams(ctx, "exp"); err != ErrExperimentNotFound {
		t.Fatalf("expected experiment to be gone after reset, got %v", err)
	}
}
