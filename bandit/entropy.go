package bandit

import "math/rand"

// Source is the injectable entropy provider spec.md §6 requires: every
// policy draws its randomness from one, so tests can seed it for
// deterministic choice sequences instead of depending on the quality
// of any particular RNG (explicitly out of scope per spec.md §1).
type Source interface {
	// Float64 returns a pseudo-random number in [0, 1).
	Float64() float64
	// Intn returns a pseudo-random number in [0, n).
	Intn(n int) int
	// NormFloat64 returns a pseudo-random number from the standard
	// normal distribution (mean 0, stddev 1).
	NormFloat64() float64
}

// mathRandSource wraps math/rand.Rand, the source math/rand is used
// for throughout the teacher's business/bandit package (scoring.go's
// rand.NormFloat64, bandit_service.go's rand.Float64).
type mathRandSource struct {
	r *rand.Rand
}

// NewMathRandSource returns a Source backed by a seeded math/rand.Rand.
// Two sources created with the same seed produce identical draw
// sequences, which is what spec.md's P2/P5 determinism properties
// require.
func NewMathRandSource(seed int64) Source {
	return &mathRandSource{r: rand.New(rand.NewSource(seed))}
}

func (s *mathRandSource) Float64() float64    { return s.r.Float64() }
func (s *mathRandSource) Intn(n int) int       { return s.r.Intn(n) }
func (s *mathRandSource) NormFloat64() float64 { return s.r.NormFloat64() }
