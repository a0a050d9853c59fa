// Package ratio computes single-period valuation, profitability and solvency
// ratios. Every ratio is independent: one missing input never blocks another.
package ratio

import (
	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/engine"
	"github.com/newthinker/valuator/internal/statement"
)

// Metric names in display order.
const (
	MetricPE              = "P/E_Ratio"
	MetricPB              = "P/B_Ratio"
	MetricPS              = "P/S_Ratio"
	MetricDividendYield   = "Dividend_Yield"
	MetricNetProfitMargin = "Net_Profit_Margin"
	MetricReturnOnEquity  = "Return_on_Equity"
	MetricDebtToEquity    = "Debt_to_Equity"
)

// Value is a ratio and, when it is missing, the reason.
type Value struct {
	Value  null.Float
	Reason error
}

// Result holds every ratio for one period.
type Result struct {
	PeriodEnd       string
	PE              Value
	PB              Value
	PS              Value
	DividendYield   Value
	NetProfitMargin Value
	ReturnOnEquity  Value
	DebtToEquity    Value
}

// Metrics implements engine.Result.
func (r Result) Metrics() core.Metrics {
	return core.Metrics{
		core.MetricOf(MetricPE, r.PE.Value, r.PE.Reason),
		core.MetricOf(MetricPB, r.PB.Value, r.PB.Reason),
		core.MetricOf(MetricPS, r.PS.Value, r.PS.Reason),
		core.MetricOf(MetricDividendYield, r.DividendYield.Value, r.DividendYield.Reason),
		core.MetricOf(MetricNetProfitMargin, r.NetProfitMargin.Value, r.NetProfitMargin.Reason),
		core.MetricOf(MetricReturnOnEquity, r.ReturnOnEquity.Value, r.ReturnOnEquity.Reason),
		core.MetricOf(MetricDebtToEquity, r.DebtToEquity.Value, r.DebtToEquity.Reason),
	}
}

var _ engine.Result = Result{}

// Evaluate computes the ratios from the overview and the latest income and
// balance-sheet rows. Nil rows are treated as absent statements.
func Evaluate(overview core.Overview, income, balance *statement.Row) Result {
	return Result{
		PeriodEnd:       income.Period(),
		PE:              fromOverview(overview, core.FieldPERatio),
		PB:              fromOverview(overview, core.FieldPriceToBook),
		PS:              fromOverview(overview, core.FieldPriceToSales),
		DividendYield:   fromOverview(overview, core.FieldDividendYield),
		NetProfitMargin: divide(income.Get(statement.NetIncome), income.Get(statement.TotalRevenue)),
		ReturnOnEquity:  divide(income.Get(statement.NetIncome), balance.Get(statement.TotalShareholderEquity)),
		DebtToEquity:    debtToEquity(balance),
	}
}

func fromOverview(o core.Overview, key string) Value {
	v := o.Number(key)
	if !v.Valid {
		return Value{Reason: core.Errorf(core.ErrMissingInput, "overview %s", key)}
	}
	return Value{Value: v}
}

func divide(num, den null.Float) Value {
	v, err := engine.Div(num, den)
	return Value{Value: v, Reason: err}
}

// debtToEquity treats a single missing debt component as zero, but reports
// the ratio missing when neither component is reported.
func debtToEquity(balance *statement.Row) Value {
	debt := engine.SumPresent(
		balance.Get(statement.LongTermDebt),
		balance.Get(statement.ShortTermDebt),
	)
	if !debt.Valid {
		return Value{Reason: core.Errorf(core.ErrMissingInput, "%s and %s", statement.LongTermDebt, statement.ShortTermDebt)}
	}
	return divide(debt, balance.Get(statement.TotalShareholderEquity))
}
