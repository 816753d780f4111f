package bandit

import (
	"math"
	"testing"

	"github.com/rakutenrewards/go-bandit/domain"
)

// stubSource returns fixed values regardless of how many times it is
// called, letting a test pin an exact draw.
type stubSource struct {
	f64  float64
	intn int
}

func (s stubSource) Float64() float64     { return s.f64 }
func (s stubSource) Intn(int) int         { return s.intn }
func (s stubSource) NormFloat64() float64 { return 0 }

func TestNormalizeSumsToOne(t *testing.T) {
	weights := map[string]float64{"a": 1, "b": 2, "c": 3}
	got := normalize(weights)

	var total float64
	for _, p := range got {
		total += p
	}
	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("expected probabilities to sum to 1, got %v", total)
	}
	if got["c"] <= got["b"] || got["b"] <= got["a"] {
		t.Fatalf("expected relative ordering to be preserved, got %v", got)
	}
}

func TestNormalizeFallsBackToUniformOnNonPositiveTotal(t *testing.T) {
	weights := map[string]float64{"a": 0, "b": 0}
	got := normalize(weights)
	if got["a"] != 0.5 || got["b"] != 0.5 {
		t.Fatalf("expected uniform fallback, got %v", got)
	}
}

func TestWeightedSampleDeterministicForFixedDraw(t *testing.T) {
	weights := map[string]float64{"a": 0.5, "b": 0.5}
	// sorted keys are ["a", "b"]; a draw below the cumulative for "a"
	// (0.5) must return "a".
	got := weightedSample(weights, stubSource{f64: 0.1})
	if got != "a" {
		t.Fatalf("expected a, got %s", got)
	}
	got = weightedSample(weights, stubSource{f64: 0.9})
	if got != "b" {
		t.Fatalf("expected b, got %s", got)
	}
}

func TestSortedArmsOrdersByName(t *testing.T) {
	arms := []domain.ArmSnapshot{
		{Name: "c"}, {Name: "a"}, {Name: "b"},
	}
	got := sortedArms(arms)
	want := []string{"a", "b", "c"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("expected sorted order %v, got %v", want, got)
		}
	}
	// original slice must be untouched
	if arms[0].Name != "c" {
		t.Fatalf("sortedArms must not mutate its input")
	}
}
