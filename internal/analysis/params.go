package analysis

import (
	"fmt"

	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/core"
)

// Default market and model assumptions.
const (
	DefaultRiskFreeRate     = 0.0411
	DefaultMarketReturn     = 0.09
	DefaultTerminalGrowth   = 0.02
	DefaultYears            = 5
	DefaultFallbackGrowth   = 0.08
	DefaultFallbackDiscount = 0.09
)

// Params are the assumptions an analysis runs with.
type Params struct {
	RiskFreeRate   float64
	MarketReturn   float64
	TerminalGrowth float64
	Years          int

	// GrowthOverride, when set, replaces the historical revenue CAGR as the
	// DCF growth rate.
	GrowthOverride null.Float

	FallbackGrowth   float64
	FallbackDiscount float64
}

// DefaultParams returns the standard assumptions.
func DefaultParams() Params {
	return Params{
		RiskFreeRate:     DefaultRiskFreeRate,
		MarketReturn:     DefaultMarketReturn,
		TerminalGrowth:   DefaultTerminalGrowth,
		Years:            DefaultYears,
		FallbackGrowth:   DefaultFallbackGrowth,
		FallbackDiscount: DefaultFallbackDiscount,
	}
}

// Validate rejects assumptions that make the fallback DCF undefined.
func (p Params) Validate() error {
	rates := map[string]float64{
		"risk free rate":    p.RiskFreeRate,
		"market return":     p.MarketReturn,
		"terminal growth":   p.TerminalGrowth,
		"fallback growth":   p.FallbackGrowth,
		"fallback discount": p.FallbackDiscount,
	}
	if p.GrowthOverride.Valid {
		rates["growth override"] = p.GrowthOverride.Float64
	}
	for name, v := range rates {
		if !core.IsFinite(v) {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("%s must be a finite number, got %g", name, v))
		}
	}
	if p.Years < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("years must not be negative, got %d", p.Years))
	}
	if p.FallbackDiscount <= p.TerminalGrowth {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fallback discount %.4f must exceed terminal growth %.4f", p.FallbackDiscount, p.TerminalGrowth))
	}
	return nil
}
