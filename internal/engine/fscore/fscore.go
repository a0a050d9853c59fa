// Package fscore computes the Piotroski F-Score: nine binary year-over-year
// tests across profitability, leverage and efficiency, summed to 0..9.
package fscore

import (
	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/engine"
	"github.com/newthinker/valuator/internal/statement"
)

// MetricFScore is the display name of the score.
const MetricFScore = "Piotroski_F_Score"

// Minimum history for the score.
const (
	MinIncomeRows   = 3
	MinBalanceRows  = 3
	MinCashFlowRows = 1
)

// Test names in scoring order.
const (
	TestPositiveNetIncome   = "positive_net_income"
	TestPositiveCashFlow    = "positive_operating_cash_flow"
	TestHigherROA           = "higher_return_on_assets"
	TestCashFlowOverIncome  = "cash_flow_exceeds_net_income"
	TestLowerLeverage       = "lower_long_term_debt_ratio"
	TestHigherCurrentRatio  = "higher_current_ratio"
	TestNoDilution          = "no_dilution"
	TestHigherGrossMargin   = "higher_gross_margin"
	TestHigherAssetTurnover = "higher_asset_turnover"
)

// Test is the outcome of one of the nine tests. A test that could not be
// evaluated because an operand was missing scores zero.
type Test struct {
	Name      string
	Evaluated bool
	Passed    bool
	Reason    error
}

// Point returns 1 for a passed test.
func (t Test) Point() int {
	if t.Passed {
		return 1
	}
	return 0
}

// Result is the score and the per-test breakdown.
type Result struct {
	Period string
	Score  int
	Tests  []Test
}

// Metrics implements engine.Result.
func (r Result) Metrics() core.Metrics {
	return core.Metrics{core.Available(MetricFScore, float64(r.Score))}
}

var _ engine.Result = Result{}

// Unavailable is the metric reported when the score is skipped.
func Unavailable(reason error) core.Metrics {
	return core.Metrics{core.Unavailable(MetricFScore, reason)}
}

// period holds the inputs for one side of the year-over-year comparison.
type period struct {
	netIncome          null.Float
	revenue            null.Float
	grossProfit        null.Float
	longTermDebt       null.Float
	totalAssets        null.Float
	currentAssets      null.Float
	currentLiabilities null.Float
	commonStock        null.Float
	avgAssets          null.Float
}

func newPeriod(inc, bs, bsPrior *statement.Row) period {
	return period{
		netIncome:          inc.Get(statement.NetIncome),
		revenue:            inc.Get(statement.TotalRevenue),
		grossProfit:        inc.Get(statement.GrossProfit),
		longTermDebt:       bs.Get(statement.LongTermDebt),
		totalAssets:        bs.Get(statement.TotalAssets),
		currentAssets:      bs.Get(statement.TotalCurrentAssets),
		currentLiabilities: bs.Get(statement.TotalCurrentLiabilities),
		commonStock:        bs.Get(statement.CommonStock),
		avgAssets:          averageAssets(bs, bsPrior),
	}
}

// averageAssets is the trailing two-point average of total assets.
func averageAssets(bs, bsPrior *statement.Row) null.Float {
	cur, prior := bs.Get(statement.TotalAssets), bsPrior.Get(statement.TotalAssets)
	if !cur.Valid || !prior.Valid {
		return null.Float{}
	}
	return null.FloatFrom((cur.Float64 + prior.Float64) / 2)
}

// Evaluate scores the latest period T against T-1. Average assets need
// balance sheets at T, T-1 and T-2. With less history the whole score is
// skipped with InsufficientHistory.
func Evaluate(income, balance, cashflow *statement.Table) (Result, error) {
	if income.Len() < MinIncomeRows || balance.Len() < MinBalanceRows || cashflow.Len() < MinCashFlowRows {
		return Result{}, core.Errorf(core.ErrInsufficientHistory,
			"need %d income, %d balance, %d cash flow rows; have %d, %d, %d",
			MinIncomeRows, MinBalanceRows, MinCashFlowRows,
			income.Len(), balance.Len(), cashflow.Len())
	}

	incT, incT1 := income.Latest(), income.Back(1)
	bsT, bsT1, bsT2 := balance.Latest(), balance.Back(1), balance.Back(2)

	cfT := cashflow.Find(incT.PeriodEnd)
	if cfT == nil {
		cfT = cashflow.Latest()
	}

	cur := newPeriod(incT, bsT, bsT1)
	prev := newPeriod(incT1, bsT1, bsT2)
	ocf := cfT.Get(statement.OperatingCashflow)

	tests := []Test{
		positive(TestPositiveNetIncome, cur.netIncome),
		positive(TestPositiveCashFlow, ocf),
		higherROA(cur, prev),
		compare(TestCashFlowOverIncome, ocf, cur.netIncome, greater),
		ratioCompare(TestLowerLeverage, cur.longTermDebt, cur.totalAssets, prev.longTermDebt, prev.totalAssets, less),
		ratioCompare(TestHigherCurrentRatio, cur.currentAssets, cur.currentLiabilities, prev.currentAssets, prev.currentLiabilities, greater),
		compare(TestNoDilution, cur.commonStock, prev.commonStock, lessOrEqual),
		ratioCompare(TestHigherGrossMargin, cur.grossProfit, cur.revenue, prev.grossProfit, prev.revenue, greater),
		ratioCompare(TestHigherAssetTurnover, cur.revenue, cur.avgAssets, prev.revenue, prev.avgAssets, greater),
	}

	score := 0
	for _, t := range tests {
		score += t.Point()
	}

	return Result{
		Period: incT.Period(),
		Score:  score,
		Tests:  tests,
	}, nil
}

type comparison func(a, b float64) bool

func greater(a, b float64) bool     { return a > b }
func less(a, b float64) bool        { return a < b }
func lessOrEqual(a, b float64) bool { return a <= b }

func missing(name string, err error) Test {
	if err == nil {
		err = core.ErrMissingInput
	}
	return Test{Name: name, Reason: err}
}

func positive(name string, v null.Float) Test {
	return compare(name, v, null.FloatFrom(0), greater)
}

func compare(name string, a, b null.Float, cmp comparison) Test {
	if !a.Valid || !b.Valid {
		return missing(name, nil)
	}
	return Test{Name: name, Evaluated: true, Passed: cmp(a.Float64, b.Float64)}
}

func ratioCompare(name string, numCur, denCur, numPrev, denPrev null.Float, cmp comparison) Test {
	cur, err := engine.Div(numCur, denCur)
	if err != nil {
		return missing(name, err)
	}
	prev, err := engine.Div(numPrev, denPrev)
	if err != nil {
		return missing(name, err)
	}
	return compare(name, cur, prev, cmp)
}

// higherROA is only evaluated when both average-asset denominators are
// positive.
func higherROA(cur, prev period) Test {
	if !cur.avgAssets.Valid || !prev.avgAssets.Valid {
		return missing(TestHigherROA, nil)
	}
	if cur.avgAssets.Float64 <= 0 || prev.avgAssets.Float64 <= 0 {
		return missing(TestHigherROA, core.Errorf(core.ErrDegenerateArithmetic, "non-positive average assets"))
	}
	return ratioCompare(TestHigherROA, cur.netIncome, cur.avgAssets, prev.netIncome, prev.avgAssets, greater)
}
