// Package storage implements the capability set of spec.md §4.4: a
// StorageBackend abstraction with two concrete, interchangeable
// implementations — an in-process MemoryBackend and a RedisBackend
// using server-side Lua scripts for atomicity — so the engine package
// can be built against the Backend interface and swap backends at
// wiring time.
package storage

import (
	"context"
	"errors"

	"github.com/rakutenrewards/go-bandit/domain"
)

// ErrExperimentNotFound is returned by read operations (GetParams,
// GetArmStates, GetArmNames, GetChooseCount) when the named experiment
// has never been initialized. InitExperiment, RecordReward and
// BulkReward never return it: init is idempotent-creating, and a
// reward for an unknown arm or experiment is a no-op per spec.md §4.5.
// MemoryBackend's CreateArm, SoftDeleteArm, HardDeleteArm and
// IncrChooseCount do return it for an unknown experiment;
// RedisBackend's do not.
var ErrExperimentNotFound = errors.New("storage: experiment not found")

// Backend is the storage capability set of spec.md §4.4. Every method
// is serializable with respect to a single experiment; RecordReward
// and BulkReward additionally guarantee the read-modify-write of
// spec.md §4.2 happens as one atomic transaction (spec.md §5).
type Backend interface {
	// ExistsExperiment reports whether experimentName has been
	// initialized (regardless of whether it has any live arms).
	ExistsExperiment(ctx context.Context, experimentName string) (bool, error)

	// InitExperiment creates the experiment with params and armNames
	// if it does not already exist. A no-op if it does (spec.md I6).
	InitExperiment(ctx context.Context, experimentName string, params domain.Params, armNames []string) error

	// GetParams returns the experiment's immutable parameters.
	// Returns ErrExperimentNotFound if the experiment does not exist.
	GetParams(ctx context.Context, experimentName string) (domain.Params, error)

	// GetArmStates returns the live (non-soft-deleted) arms and their
	// state. Returns an empty, non-nil map if the experiment has no
	// live arms; ErrExperimentNotFound if it doesn't exist at all.
	GetArmStates(ctx context.Context, experimentName string) (map[string]domain.ArmState, error)

	// GetArmNames returns the names of live arms only.
	GetArmNames(ctx context.Context, experimentName string) ([]string, error)

	// CreateArm adds armName with default state, or clears its
	// deleted flag (restoring prior state) if it was soft-deleted.
	CreateArm(ctx context.Context, experimentName, armName string) error

	// SoftDeleteArm marks armName deleted without discarding state.
	SoftDeleteArm(ctx context.Context, experimentName, armName string) error

	// HardDeleteArm permanently removes armName and its state.
	HardDeleteArm(ctx context.Context, experimentName, armName string) error

	// RecordReward atomically applies a single scaled reward to
	// armName (spec.md §4.2). A no-op if armName is absent or
	// hard-deleted.
	RecordReward(ctx context.Context, experimentName, armName string, lowerBound, reward float64) error

	// BulkReward atomically applies a pre-aggregated {mean, max,
	// count} batch to armName (spec.md §4.2). A no-op if armName is
	// absent or hard-deleted. Precondition: mean <= max.
	BulkReward(ctx context.Context, experimentName, armName string, lowerBound, mean, max float64, count uint64) error

	// IncrChooseCount atomically increments and returns the new
	// choose counter for experimentName.
	IncrChooseCount(ctx context.Context, experimentName string) (uint64, error)

	// GetChooseCount returns the current choose counter without
	// incrementing it.
	GetChooseCount(ctx context.Context, experimentName string) (uint64, error)

	// Reset removes every experiment owned by this backend.
	Reset(ctx context.Context) error
}
