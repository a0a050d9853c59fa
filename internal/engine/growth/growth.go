// Package growth computes compound annual growth rates from the income
// statement history.
package growth

import (
	"fmt"
	"math"

	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/engine"
	"github.com/newthinker/valuator/internal/statement"
)

// DefaultYears is the lookback used when none is given.
const DefaultYears = 5

// RevenueMetric returns the revenue CAGR metric name for an n-year window.
func RevenueMetric(n int) string {
	return fmt.Sprintf("Revenue_CAGR_%dY", n)
}

// NetIncomeMetric returns the net income CAGR metric name for an n-year window.
func NetIncomeMetric(n int) string {
	return fmt.Sprintf("Net_Income_CAGR_%dY", n)
}

// Rate is a growth rate and, when it is missing, the reason.
type Rate struct {
	Value  null.Float
	Reason error
}

// Result holds the CAGRs over the effective window.
type Result struct {
	Years     int
	From      string
	To        string
	Revenue   Rate
	NetIncome Rate
}

// Metrics implements engine.Result.
func (r Result) Metrics() core.Metrics {
	return core.Metrics{
		core.MetricOf(RevenueMetric(r.Years), r.Revenue.Value, r.Revenue.Reason),
		core.MetricOf(NetIncomeMetric(r.Years), r.NetIncome.Value, r.NetIncome.Reason),
	}
}

var _ engine.Result = Result{}

// CAGR returns (end/start)^(1/periods) - 1. It is valid only when both values
// are present, start is positive and periods is positive. A negative
// end/start ratio has no real root and is DegenerateArithmetic.
func CAGR(start, end null.Float, periods int) (null.Float, error) {
	if !start.Valid || !end.Valid {
		return null.Float{}, core.ErrMissingInput
	}
	if periods <= 0 {
		return null.Float{}, core.Errorf(core.ErrInsufficientHistory, "periods must be positive, got %d", periods)
	}
	if start.Float64 <= 0 {
		return null.Float{}, core.Errorf(core.ErrDegenerateArithmetic, "non-positive start value %g", start.Float64)
	}
	ratio := end.Float64 / start.Float64
	if ratio < 0 {
		return null.Float{}, core.Errorf(core.ErrDegenerateArithmetic, "negative growth ratio %g", ratio)
	}
	return null.FloatFrom(math.Pow(ratio, 1/float64(periods)) - 1), nil
}

// Window returns the effective lookback for a table of n rows.
func Window(years, rows int) int {
	if years <= 0 {
		years = DefaultYears
	}
	return max(min(years, rows-1), 0)
}

// Evaluate computes revenue and net income CAGR between the row `window`
// periods back and the latest row.
func Evaluate(income *statement.Table, years int) (Result, error) {
	n := Window(years, income.Len())
	if n == 0 {
		return Result{}, core.Errorf(core.ErrInsufficientHistory,
			"need at least 2 income rows, have %d", income.Len())
	}

	start, end := income.Back(n), income.Latest()
	return Result{
		Years:     n,
		From:      start.Period(),
		To:        end.Period(),
		Revenue:   rate(start, end, statement.TotalRevenue, n),
		NetIncome: rate(start, end, statement.NetIncome, n),
	}, nil
}

// Unavailable is reported when the whole engine is skipped. No window could
// be formed, so the metric names carry the requested lookback rather than
// the history actually held: a five year request against a single income
// row reports Revenue_CAGR_5Y, not Revenue_CAGR_0Y.
func Unavailable(years int, reason error) core.Metrics {
	if years <= 0 {
		years = DefaultYears
	}
	return core.Metrics{
		core.Unavailable(RevenueMetric(years), reason),
		core.Unavailable(NetIncomeMetric(years), reason),
	}
}

func rate(start, end *statement.Row, field string, n int) Rate {
	v, err := CAGR(start.Get(field), end.Get(field), n)
	if err != nil {
		return Rate{Reason: fmt.Errorf("%s: %w", field, err)}
	}
	return Rate{Value: v}
}
