// Package dcf values a company with a five-year discounted free cash flow
// model and a perpetuity-growth terminal value.
package dcf

import (
	"math"

	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/engine"
	"github.com/newthinker/valuator/internal/statement"
	"gonum.org/v1/gonum/floats"
)

// Horizon is the number of explicitly projected years.
const Horizon = 5

// Metric names in display order.
const (
	MetricEnterpriseValue = "DCF_Enterprise_Value"
	MetricEquityValue     = "DCF_Equity_Value"
	MetricSharePrice      = "DCF_Implied_Share_Price"
)

// Inputs are the statement and overview values the model reads.
type Inputs struct {
	OperatingCashflow   null.Float
	CapitalExpenditures null.Float
	LongTermDebt        null.Float
	ShortTermDebt       null.Float
	Cash                null.Float
	SharesOutstanding   null.Float
}

// InputsFrom reads the model inputs from the latest cash-flow and balance
// rows and the overview. Nil rows leave their inputs missing.
func InputsFrom(cashflow, balance *statement.Row, overview core.Overview) Inputs {
	return Inputs{
		OperatingCashflow:   cashflow.Get(statement.OperatingCashflow),
		CapitalExpenditures: cashflow.Get(statement.CapitalExpenditures),
		LongTermDebt:        balance.Get(statement.LongTermDebt),
		ShortTermDebt:       balance.Get(statement.ShortTermDebt),
		Cash:                balance.Get(statement.CashAndEquivalents),
		SharesOutstanding:   overview.Number(core.FieldSharesOutstanding),
	}
}

// Rates are the growth and discount assumptions. Where they came from is the
// caller's business.
type Rates struct {
	Growth         float64
	Discount       float64
	TerminalGrowth float64
}

// Figure is a valuation output and, when it is missing, the reason.
type Figure struct {
	Value  null.Float
	Reason error
}

func figure(v float64) Figure {
	if !core.IsFinite(v) {
		return Figure{Reason: core.Errorf(core.ErrDegenerateArithmetic, "non-finite value %g", v)}
	}
	return Figure{Value: null.FloatFrom(v)}
}

// Result is the full valuation breakdown.
type Result struct {
	Rates           Rates
	BaseFCF         float64
	Projected       []float64
	Discounted      []float64
	TerminalValue   null.Float
	PVTerminal      null.Float
	NetDebt         float64
	EnterpriseValue Figure
	EquityValue     Figure
	SharePrice      Figure
}

// Metrics implements engine.Result.
func (r Result) Metrics() core.Metrics {
	return core.Metrics{
		core.MetricOf(MetricEnterpriseValue, r.EnterpriseValue.Value, r.EnterpriseValue.Reason),
		core.MetricOf(MetricEquityValue, r.EquityValue.Value, r.EquityValue.Reason),
		core.MetricOf(MetricSharePrice, r.SharePrice.Value, r.SharePrice.Reason),
	}
}

var _ engine.Result = Result{}

// Unavailable is reported when the model cannot start.
func Unavailable(reason error) core.Metrics {
	return core.Metrics{
		core.Unavailable(MetricEnterpriseValue, reason),
		core.Unavailable(MetricEquityValue, reason),
		core.Unavailable(MetricSharePrice, reason),
	}
}

// BaseFCF is operating cash flow less the magnitude of capital expenditures.
// Providers report capex with either sign.
func BaseFCF(in Inputs) (float64, error) {
	ocf, err := engine.Require(in.OperatingCashflow, statement.OperatingCashflow)
	if err != nil {
		return 0, err
	}
	capex, err := engine.Require(in.CapitalExpenditures, statement.CapitalExpenditures)
	if err != nil {
		return 0, err
	}
	return ocf - math.Abs(capex), nil
}

// Value runs the model. It fails only when base free cash flow is missing.
// A discount rate not above the terminal growth rate, or not above -100%,
// leaves enterprise value, equity value and share price unavailable with
// DegenerateArithmetic.
func Value(in Inputs, rates Rates) (Result, error) {
	base, err := BaseFCF(in)
	if err != nil {
		return Result{}, err
	}

	r := Result{
		Rates:     rates,
		BaseFCF:   base,
		Projected: make([]float64, Horizon),
		NetDebt: engine.OrZero(in.LongTermDebt) + engine.OrZero(in.ShortTermDebt) -
			engine.OrZero(in.Cash),
	}
	for i := range r.Projected {
		r.Projected[i] = base * math.Pow(1+rates.Growth, float64(i+1))
	}

	if err := checkRates(rates); err != nil {
		if !core.IsFinite(rates.Growth) {
			r.Projected = nil
		}
		r.EnterpriseValue = Figure{Reason: err}
		r.EquityValue = Figure{Reason: err}
		r.SharePrice = Figure{Reason: err}
		return r, nil
	}

	r.Discounted = make([]float64, Horizon)
	for i, fcf := range r.Projected {
		r.Discounted[i] = fcf / math.Pow(1+rates.Discount, float64(i+1))
	}

	tv := r.Projected[Horizon-1] * (1 + rates.TerminalGrowth) / (rates.Discount - rates.TerminalGrowth)
	pvTV := tv / math.Pow(1+rates.Discount, Horizon)
	r.TerminalValue = figure(tv).Value
	r.PVTerminal = figure(pvTV).Value

	ev := floats.Sum(r.Discounted) + pvTV
	equity := ev - r.NetDebt
	r.EnterpriseValue = figure(ev)
	r.EquityValue = figure(equity)
	r.SharePrice = sharePrice(equity, in.SharesOutstanding)

	return r, nil
}

func checkRates(rates Rates) error {
	for _, rate := range []float64{rates.Growth, rates.Discount, rates.TerminalGrowth} {
		if !core.IsFinite(rate) {
			return core.Errorf(core.ErrDegenerateArithmetic, "non-finite rate %g", rate)
		}
	}
	if rates.Discount <= -1 {
		return core.Errorf(core.ErrDegenerateArithmetic,
			"discount rate %.4f must exceed -1", rates.Discount)
	}
	if rates.Discount <= rates.TerminalGrowth {
		return core.Errorf(core.ErrDegenerateArithmetic,
			"discount rate %.4f must exceed terminal growth %.4f", rates.Discount, rates.TerminalGrowth)
	}
	return nil
}

func sharePrice(equity float64, shares null.Float) Figure {
	v, err := engine.Div(null.FloatFrom(equity), shares)
	if err != nil {
		return Figure{Reason: err}
	}
	return Figure{Value: v}
}
