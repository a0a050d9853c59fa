// Package engine holds what the valuation engines share: the result contract
// and the three-state arithmetic every formula goes through.
package engine

import (
	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/core"
)

// Result is the immutable record an engine returns.
type Result interface {
	// Metrics lists the result's display metrics in order.
	Metrics() core.Metrics
}

// Require unwraps a value, failing with MissingInput naming field when it
// is absent.
func Require(v null.Float, field string) (float64, error) {
	if !v.Valid {
		return 0, core.Errorf(core.ErrMissingInput, "%s", field)
	}
	return v.Float64, nil
}

// Div divides num by den. Missing operands are MissingInput; a zero
// denominator or a quotient outside float64 range is DegenerateArithmetic.
func Div(num, den null.Float) (null.Float, error) {
	if !num.Valid || !den.Valid {
		return null.Float{}, core.ErrMissingInput
	}
	if den.Float64 == 0 {
		return null.Float{}, core.Errorf(core.ErrDegenerateArithmetic, "division by zero")
	}
	q := num.Float64 / den.Float64
	if !core.IsFinite(q) {
		return null.Float{}, core.Errorf(core.ErrDegenerateArithmetic, "non-finite quotient %g / %g", num.Float64, den.Float64)
	}
	return null.FloatFrom(q), nil
}

// SumPresent adds values, treating missing ones as zero. The sum is missing
// only when every operand is missing.
func SumPresent(vs ...null.Float) null.Float {
	var sum float64
	present := false
	for _, v := range vs {
		if v.Valid {
			sum += v.Float64
			present = true
		}
	}
	if !present {
		return null.Float{}
	}
	return null.FloatFrom(sum)
}

// OrZero returns the value or zero when missing.
func OrZero(v null.Float) float64 {
	return v.ValueOrZero()
}
