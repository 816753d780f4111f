package domain

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// NewValidator builds the *validator.Validate the engine uses to
// enforce spec.md §6's schemas before any state is touched
// (spec.md §4.5: "Invalid parameter record at init: fatal"). It is
// exported so a host's own HTTP boundary layer can reuse the exact
// same rules the engine enforces internally, the way the teacher's
// rest.BanditHandler shares validator.New() with the business layer.
func NewValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("finite", validateFinite)

	v.RegisterStructValidation(validateParamsStruct, Params{})
	v.RegisterStructValidation(validateBulkRewardStruct, BulkRewardRequest{})

	return v
}

func validateFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validateParamsStruct(sl validator.StructLevel) {
	p := sl.Current().Interface().(Params)

	switch p.Algo {
	case EpsilonGreedy:
		if !(p.Epsilon > 0 && p.Epsilon < 1) {
			sl.ReportError(p.Epsilon, "Epsilon", "Epsilon", "epsilon_range", "")
		}
	case UCB1:
		if p.ExplorationMult < 0 {
			sl.ReportError(p.ExplorationMult, "ExplorationMult", "ExplorationMult", "exploration_mult_positive", "")
		}
	case Softmax:
		if p.StartingTemperature <= 0 {
			sl.ReportError(p.StartingTemperature, "StartingTemperature", "StartingTemperature", "temperature_positive", "")
		}
		if p.TempDecayPerStep <= 0 {
			sl.ReportError(p.TempDecayPerStep, "TempDecayPerStep", "TempDecayPerStep", "temperature_positive", "")
		}
		if p.MinTemperature <= 0 {
			sl.ReportError(p.MinTemperature, "MinTemperature", "MinTemperature", "temperature_positive", "")
		}
	}

	if math.IsNaN(p.RewardLowerBound) || math.IsInf(p.RewardLowerBound, 0) {
		sl.ReportError(p.RewardLowerBound, "RewardLowerBound", "RewardLowerBound", "finite", "")
	}
}

func validateBulkRewardStruct(sl validator.StructLevel) {
	b := sl.Current().Interface().(BulkRewardRequest)
	if b.Mean > b.Max {
		sl.ReportError(b.Mean, "Mean", "Mean", "lte_max", "")
	}
}

// ValidationError wraps a validator.ValidationErrors with the name of
// the operation that failed, matching the "expound-style
// structural messages" error taxonomy of spec.md §7.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("bandit: invalid %s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError wraps err (typically validator.ValidationErrors)
// as a *ValidationError tagged with the operation that failed.
func NewValidationError(op string, err error) *ValidationError {
	return &ValidationError{Op: op, Err: err}
}
