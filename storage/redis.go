package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rakutenrewards/go-bandit/domain"
)

// RedisBackend is the remote storage backend: a thin client over a
// shared *redis.Client with no client-side cache (spec.md §5 — "each
// operation is a round-trip"). Every mutation that must be atomic is
// a single EVAL of a script from scripts.go, grounded on
// internal/repository/redis/redis.go and pkg/database/redis/redis.go
// from the teacher, which wrap *redis.Client the same way for token
// storage — generalized here from ad hoc Get/Set calls to scripted
// read-modify-write transactions because spec.md §4.4 requires
// atomicity that plain GET+SET cannot give.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend wraps an already-configured *redis.Client. Use
// config.RedisConfig with redis.NewClient to build one the way
// pkg/database/redis.NewRedisClient does in the teacher.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

var _ Backend = (*RedisBackend)(nil)

func (r *RedisBackend) ExistsExperiment(ctx context.Context, experimentName string) (bool, error) {
	n, err := r.client.Exists(ctx, paramsKey(experimentName)).Result()
	if err != nil {
		return false, fmt.Errorf("storage: exists experiment: %w", err)
	}
	return n == 1, nil
}

func (r *RedisBackend) InitExperiment(ctx context.Context, experimentName string, params domain.Params, armNames []string) error {
	args := make([]any, 0, 9+len(armNames))
	args = append(args,
		experimentName,
		string(params.Algo),
		boolToFlag(params.Maximize),
		formatFloat(params.RewardLowerBound),
		formatFloat(params.Epsilon),
		formatFloat(params.ExplorationMult),
		formatFloat(params.StartingTemperature),
		formatFloat(params.TempDecayPerStep),
		formatFloat(params.MinTemperature),
	)
	for _, name := range armNames {
		args = append(args, name)
	}

	if err := r.client.Eval(ctx, initExperimentScript, nil, args...).Err(); err != nil {
		return fmt.Errorf("storage: init experiment: %w", err)
	}
	return nil
}

func (r *RedisBackend) GetParams(ctx context.Context, experimentName string) (domain.Params, error) {
	m, err := r.client.HGetAll(ctx, paramsKey(experimentName)).Result()
	if err != nil {
		return domain.Params{}, fmt.Errorf("storage: get params: %w", err)
	}
	if len(m) == 0 {
		return domain.Params{}, ErrExperimentNotFound
	}

	return domain.Params{
		Algo:                domain.Algorithm(m["algo"]),
		Maximize:            m["maximize"] == "1",
		RewardLowerBound:    parseFloat(m["reward_lower_bound"]),
		Epsilon:             parseFloat(m["epsilon"]),
		ExplorationMult:     parseFloat(m["exploration_mult"]),
		StartingTemperature: parseFloat(m["starting_temperature"]),
		TempDecayPerStep:    parseFloat(m["temp_decay_per_step"]),
		MinTemperature:      parseFloat(m["min_temperature"]),
	}, nil
}

func (r *RedisBackend) GetArmStates(ctx context.Context, experimentName string) (map[string]domain.ArmState, error) {
	exists, err := r.ExistsExperiment(ctx, experimentName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrExperimentNotFound
	}

	res, err := r.client.Eval(ctx, getArmStatesScript, nil, experimentName).Result()
	if err != nil {
		return nil, fmt.Errorf("storage: get arm states: %w", err)
	}

	rows, _ := res.([]any)
	out := make(map[string]domain.ArmState, len(rows)/4)
	for i := 0; i+3 < len(rows); i += 4 {
		name, _ := rows[i].(string)
		n, _ := rows[i+1].(string)
		mean, _ := rows[i+2].(string)
		deleted, _ := rows[i+3].(string)

		if deleted == "1" {
			continue
		}
		out[name] = domain.ArmState{
			N:          uint64(parseFloat(n)),
			MeanReward: parseFloat(mean),
			Deleted:    false,
		}
	}
	return out, nil
}

func (r *RedisBackend) GetArmNames(ctx context.Context, experimentName string) ([]string, error) {
	states, err := r.GetArmStates(ctx, experimentName)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	return names, nil
}

func (r *RedisBackend) CreateArm(ctx context.Context, experimentName, armName string) error {
	if err := r.client.Eval(ctx, createArmScript, nil, experimentName, armName).Err(); err != nil {
		return fmt.Errorf("storage: create arm: %w", err)
	}
	return nil
}

func (r *RedisBackend) SoftDeleteArm(ctx context.Context, experimentName, armName string) error {
	if err := r.client.Eval(ctx, softDeleteArmScript, nil, experimentName, armName).Err(); err != nil {
		return fmt.Errorf("storage: soft delete arm: %w", err)
	}
	return nil
}

func (r *RedisBackend) HardDeleteArm(ctx context.Context, experimentName, armName string) error {
	if err := r.client.Eval(ctx, hardDeleteArmScript, nil, experimentName, armName).Err(); err != nil {
		return fmt.Errorf("storage: hard delete arm: %w", err)
	}
	return nil
}

func (r *RedisBackend) RecordReward(ctx context.Context, experimentName, armName string, lowerBound, reward float64) error {
	err := r.client.Eval(ctx, recordRewardScript, nil,
		experimentName, armName, formatFloat(lowerBound), formatFloat(reward)).Err()
	if err != nil {
		return fmt.Errorf("storage: record reward: %w", err)
	}
	return nil
}

func (r *RedisBackend) BulkReward(ctx context.Context, experimentName, armName string, lowerBound, mean, max float64, count uint64) error {
	err := r.client.Eval(ctx, bulkRewardScript, nil,
		experimentName, armName, formatFloat(lowerBound), formatFloat(mean), formatFloat(max), count).Err()
	if err != nil {
		return fmt.Errorf("storage: bulk reward: %w", err)
	}
	return nil
}

func (r *RedisBackend) IncrChooseCount(ctx context.Context, experimentName string) (uint64, error) {
	n, err := r.client.Incr(ctx, chooseCountKey(experimentName)).Result()
	if err != nil {
		return 0, fmt.Errorf("storage: incr choose count: %w", err)
	}
	return uint64(n), nil
}

func (r *RedisBackend) GetChooseCount(ctx context.Context, experimentName string) (uint64, error) {
	v, err := r.client.Get(ctx, chooseCountKey(experimentName)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, ErrExperimentNotFound
		}
		return 0, fmt.Errorf("storage: get choose count: %w", err)
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("storage: parse choose count: %w", err)
	}
	return n, nil
}

func (r *RedisBackend) Reset(ctx context.Context) error {
	if err := r.client.Eval(ctx, resetScript, nil).Err(); err != nil {
		return fmt.Errorf("storage: reset: %w", err)
	}
	return nil
}

func boolToFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// formatFloat matches the teacher's "values stringified; numeric
// fields must round-trip through parse" requirement (spec.md §4.4):
// 'g' with -1 precision is the shortest representation that parses
// back to the exact same float64.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
