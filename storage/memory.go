package storage

import (
	"context"
	"sync"

	"github.com/rakutenrewards/go-bandit/domain"
)

// experimentCell is the single mutable unit the MemoryBackend locks:
// one mutex per experiment, so unrelated experiments never contend —
// the redesign spec.md §9 calls for, generalized from torua's
// internal/storage.MemoryStore (one sync.RWMutex around a single
// map[string][]byte) to one lock per experiment instead of one lock
// for the whole store.
type experimentCell struct {
	mu sync.Mutex

	params      domain.Params
	armNames    map[string]struct{} // full set, including soft-deleted
	arms        map[string]domain.ArmState
	maxReward   float64
	chooseCount uint64
}

// MemoryBackend is the single-process storage backend: one
// concurrency-safe map of experiments, each guarded by its own mutex.
// It satisfies Backend and is the reference implementation P2 checks
// RedisBackend against for identical choice sequences.
type MemoryBackend struct {
	mu          sync.RWMutex
	experiments map[string]*experimentCell
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{experiments: make(map[string]*experimentCell)}
}

var _ Backend = (*MemoryBackend)(nil)

func (m *MemoryBackend) cell(experimentName string) (*experimentCell, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.experiments[experimentName]
	return c, ok
}

func (m *MemoryBackend) ExistsExperiment(ctx context.Context, experimentName string) (bool, error) {
	_, ok := m.cell(experimentName)
	return ok, nil
}

func (m *MemoryBackend) InitExperiment(ctx context.Context, experimentName string, params domain.Params, armNames []string) error {
	m.mu.Lock()
	if _, ok := m.experiments[experimentName]; ok {
		m.mu.Unlock()
		return nil // idempotent: spec.md I6
	}

	names := make(map[string]struct{}, len(armNames))
	arms := make(map[string]domain.ArmState, len(armNames))
	for _, name := range armNames {
		names[name] = struct{}{}
		arms[name] = domain.NewArmState()
	}

	m.experiments[experimentName] = &experimentCell{
		params:      params,
		armNames:    names,
		arms:        arms,
		maxReward:   1.0,
		chooseCount: 0,
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) GetParams(ctx context.Context, experimentName string) (domain.Params, error) {
	c, ok := m.cell(experimentName)
	if !ok {
		return domain.Params{}, ErrExperimentNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params, nil
}

func (m *MemoryBackend) GetArmStates(ctx context.Context, experimentName string) (map[string]domain.ArmState, error) {
	c, ok := m.cell(experimentName)
	if !ok {
		return nil, ErrExperimentNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]domain.ArmState, len(c.arms))
	for name, st := range c.arms {
		if st.Deleted {
			continue
		}
		out[name] = st
	}
	return out, nil
}

func (m *MemoryBackend) GetArmNames(ctx context.Context, experimentName string) ([]string, error) {
	states, err := m.GetArmStates(ctx, experimentName)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(states))
	for name := range states {
		out = append(out, name)
	}
	return out, nil
}

func (m *MemoryBackend) CreateArm(ctx context.Context, experimentName, armName string) error {
	c, ok := m.cell(experimentName)
	if !ok {
		return ErrExperimentNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.armNames[armName] = struct{}{}
	if st, exists := c.arms[armName]; exists {
		st.Deleted = false
		c.arms[armName] = st
		return nil
	}
	c.arms[armName] = domain.NewArmState()
	return nil
}

func (m *MemoryBackend) SoftDeleteArm(ctx context.Context, experimentName, armName string) error {
	c, ok := m.cell(experimentName)
	if !ok {
		return ErrExperimentNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	st, exists := c.arms[armName]
	if !exists {
		return nil
	}
	st.Deleted = true
	c.arms[armName] = st
	return nil
}

func (m *MemoryBackend) HardDeleteArm(ctx context.Context, experimentName, armName string) error {
	c, ok := m.cell(experimentName)
	if !ok {
		return ErrExperimentNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.arms, armName)
	delete(c.armNames, armName)
	return nil
}

func (m *MemoryBackend) RecordReward(ctx context.Context, experimentName, armName string, lowerBound, reward float64) error {
	c, ok := m.cell(experimentName)
	if !ok {
		return nil // missing-target: silent no-op, spec.md §4.5
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	st, exists := c.arms[armName]
	if !exists || st.Deleted {
		return nil
	}

	newState, newMax := applySingleReward(st, c.maxReward, lowerBound, reward)
	c.arms[armName] = newState
	c.maxReward = newMax
	return nil
}

func (m *MemoryBackend) BulkReward(ctx context.Context, experimentName, armName string, lowerBound, mean, max float64, count uint64) error {
	c, ok := m.cell(experimentName)
	if !ok {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	st, exists := c.arms[armName]
	if !exists || st.Deleted {
		return nil
	}

	newState, newMax := applyBulkReward(st, c.maxReward, lowerBound, mean, max, count)
	c.arms[armName] = newState
	c.maxReward = newMax
	return nil
}

func (m *MemoryBackend) IncrChooseCount(ctx context.Context, experimentName string) (uint64, error) {
	c, ok := m.cell(experimentName)
	if !ok {
		return 0, ErrExperimentNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chooseCount++
	return c.chooseCount, nil
}

func (m *MemoryBackend) GetChooseCount(ctx context.Context, experimentName string) (uint64, error) {
	c, ok := m.cell(experimentName)
	if !ok {
		return 0, ErrExperimentNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chooseCount, nil
}

func (m *MemoryBackend) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.experiments = make(map[string]*experimentCell)
	return nil
}
