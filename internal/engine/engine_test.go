package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/statement"
)

func TestDiv(t *testing.T) {
	tests := []struct {
		name    string
		num     null.Float
		den     null.Float
		want    float64
		wantErr *core.Error
	}{
		{"simple", null.FloatFrom(10), null.FloatFrom(4), 2.5, nil},
		{"zero numerator", null.FloatFrom(0), null.FloatFrom(4), 0, nil},
		{"zero denominator", null.FloatFrom(10), null.FloatFrom(0), 0, core.ErrDegenerateArithmetic},
		{"missing numerator", null.Float{}, null.FloatFrom(4), 0, core.ErrMissingInput},
		{"missing denominator", null.FloatFrom(10), null.Float{}, 0, core.ErrMissingInput},
		{"overflowing quotient", null.FloatFrom(math.MaxFloat64), null.FloatFrom(1e-10), 0, core.ErrDegenerateArithmetic},
		{"infinite numerator", null.FloatFrom(math.Inf(1)), null.FloatFrom(2), 0, core.ErrDegenerateArithmetic},
		{"nan operand", null.FloatFrom(math.NaN()), null.FloatFrom(2), 0, core.ErrDegenerateArithmetic},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Div(tc.num, tc.den)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if got.Valid {
					t.Error("expected invalid value on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Float64 != tc.want {
				t.Errorf("Div = %f, want %f", got.Float64, tc.want)
			}
		})
	}
}

func TestSumPresent(t *testing.T) {
	if SumPresent(null.Float{}, null.Float{}).Valid {
		t.Error("all missing should stay missing")
	}

	got := SumPresent(null.FloatFrom(0), null.FloatFrom(0))
	if !got.Valid || got.Float64 != 0 {
		t.Errorf("present zeros should sum to a present zero, got %+v", got)
	}

	got = SumPresent(null.FloatFrom(5), null.Float{})
	if got.Float64 != 5 {
		t.Errorf("missing operand should count as zero, got %f", got.Float64)
	}
}

func TestRequire(t *testing.T) {
	row := statement.NewRow(time.Now(), "USD", map[string]null.Float{
		statement.NetIncome: null.FloatFrom(12),
	})

	v, err := Require(row.Get(statement.NetIncome), statement.NetIncome)
	if err != nil || v != 12 {
		t.Errorf("Require = %f, %v", v, err)
	}

	_, err = Require(row.Get(statement.TotalRevenue), statement.TotalRevenue)
	if !errors.Is(err, core.ErrMissingInput) {
		t.Errorf("expected MISSING_INPUT, got %v", err)
	}

	var absent *statement.Row
	_, err = Require(absent.Get(statement.TotalRevenue), statement.TotalRevenue)
	if !errors.Is(err, core.ErrMissingInput) {
		t.Errorf("nil row should be missing input, got %v", err)
	}
}

func TestOrZero(t *testing.T) {
	if OrZero(null.Float{}) != 0 {
		t.Error("missing should read as zero")
	}
	if OrZero(null.FloatFrom(3)) != 3 {
		t.Error("present value should pass through")
	}
}
