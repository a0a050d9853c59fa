// Package capm computes the cost of equity with the capital asset pricing
// model.
package capm

import (
	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/engine"
)

// MetricCostOfEquity is the display name of the cost of equity.
const MetricCostOfEquity = "Cost_of_Equity"

// Params are the market assumptions.
type Params struct {
	RiskFreeRate float64
	MarketReturn float64
}

// Result holds the cost of equity and the inputs that produced it.
type Result struct {
	RiskFreeRate float64
	MarketReturn float64
	RiskPremium  float64
	Beta         null.Float
	CostOfEquity null.Float
	Reason       error
}

// Metrics implements engine.Result.
func (r Result) Metrics() core.Metrics {
	return core.Metrics{core.MetricOf(MetricCostOfEquity, r.CostOfEquity, r.Reason)}
}

var _ engine.Result = Result{}

// CostOfEquity returns rf + beta * (rm - rf).
func CostOfEquity(rf, rm, beta float64) float64 {
	return rf + beta*(rm-rf)
}

// Evaluate reads beta from the overview. A missing or non-numeric beta
// leaves the cost of equity unavailable.
func Evaluate(overview core.Overview, p Params) Result {
	r := Result{
		RiskFreeRate: p.RiskFreeRate,
		MarketReturn: p.MarketReturn,
		RiskPremium:  p.MarketReturn - p.RiskFreeRate,
		Beta:         overview.Number(core.FieldBeta),
	}
	if !r.Beta.Valid {
		r.Reason = core.Errorf(core.ErrMissingInput, "overview %s", core.FieldBeta)
		return r
	}
	r.CostOfEquity = null.FloatFrom(CostOfEquity(p.RiskFreeRate, p.MarketReturn, r.Beta.Float64))
	return r
}
