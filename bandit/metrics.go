package bandit

import "github.com/prometheus/client_golang/prometheus"

var (
	// ChoicesTotal counts every Engine.Choose call by experiment and
	// the algorithm that served it.
	ChoicesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_choices_total",
			Help: "Count of bandit choose calls by experiment and algorithm.",
		},
		[]string{"experiment", "algo"},
	)

	// RewardsTotal counts every reward absorbed, split between single
	// and bulk paths, by experiment.
	RewardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_rewards_total",
			Help: "Count of rewards applied by experiment and reward kind.",
		},
		[]string{"experiment", "kind"},
	)

	// ChooseDuration observes wall time spent inside Engine.Choose,
	// including the backend round-trip.
	ChooseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bandit_choose_duration_seconds",
			Help:    "Latency of Engine.Choose, including backend round-trip.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"experiment", "algo"},
	)

	// RewardLatency observes wall time spent inside Engine.Reward and
	// Engine.BulkReward, including the backend round-trip.
	RewardLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bandit_reward_duration_seconds",
			Help:    "Latency of Engine.Reward/BulkReward, including backend round-trip.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"experiment", "kind"},
	)
)

func init() {
	prometheus.MustRegister(ChoicesTotal, RewardsTotal, ChooseDuration, RewardLatency)
}
