// Package analysis runs the valuation engines over one company and merges
// their results into a report.
package analysis

import (
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/engine/capm"
	"github.com/newthinker/valuator/internal/engine/dcf"
	"github.com/newthinker/valuator/internal/engine/fscore"
	"github.com/newthinker/valuator/internal/engine/growth"
	"github.com/newthinker/valuator/internal/engine/ratio"
	"github.com/newthinker/valuator/internal/statement"
	"go.uber.org/zap"
)

// Input is everything the engines read. Nil tables are absent statements.
type Input struct {
	Symbol   string
	Overview core.Overview
	Income   *statement.Table
	Balance  *statement.Table
	CashFlow *statement.Table
}

func (in *Input) set(kind statement.Kind, t *statement.Table) {
	switch kind {
	case statement.KindIncome:
		in.Income = t
	case statement.KindBalance:
		in.Balance = t
	case statement.KindCashFlow:
		in.CashFlow = t
	}
}

// Analyzer runs the engines. It holds no per-analysis state and is safe for
// concurrent use.
type Analyzer struct {
	params Params
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewAnalyzer creates an analyzer with the given assumptions.
func NewAnalyzer(params Params, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		params: params,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Params returns the analyzer's assumptions.
func (a *Analyzer) Params() Params {
	return a.params
}

// Analyze runs ratio, F-Score, growth and CAPM, then the DCF on the rates
// they produce. An engine that cannot run reports its metrics unavailable
// and never stops the others.
func (a *Analyzer) Analyze(in Input) Report {
	log := a.logger.With(zap.String("symbol", in.Symbol))

	r := Report{
		ID:          a.newID(),
		Symbol:      in.Symbol,
		Header:      headerOf(in.Overview),
		Period:      in.Income.Latest().Period(),
		GeneratedAt: a.now().UTC(),
	}

	ratios := ratio.Evaluate(in.Overview, in.Income.Latest(), in.Balance.Latest())
	r.Metrics = append(r.Metrics, ratios.Metrics()...)

	score, err := fscore.Evaluate(in.Income, in.Balance, in.CashFlow)
	if err != nil {
		log.Warn("f-score skipped", zap.Error(err))
		r.Metrics = append(r.Metrics, fscore.Unavailable(err)...)
	} else {
		r.FScore = &score
		r.Metrics = append(r.Metrics, score.Metrics()...)
	}

	hist, histErr := growth.Evaluate(in.Income, a.params.Years)
	if histErr != nil {
		log.Warn("growth skipped", zap.Error(histErr))
		r.Metrics = append(r.Metrics, growth.Unavailable(a.params.Years, histErr)...)
	} else {
		r.Metrics = append(r.Metrics, hist.Metrics()...)
	}

	coe := capm.Evaluate(in.Overview, capm.Params{
		RiskFreeRate: a.params.RiskFreeRate,
		MarketReturn: a.params.MarketReturn,
	})
	r.Metrics = append(r.Metrics, coe.Metrics()...)

	rates := dcf.Rates{TerminalGrowth: a.params.TerminalGrowth}
	rates.Growth, r.GrowthSource = a.growthRate(hist, histErr)
	rates.Discount, r.DiscountSource = a.discountRate(coe)
	r.Metrics = append(r.Metrics,
		core.Available(MetricDCFGrowthRate, rates.Growth),
		core.Available(MetricDCFDiscountRate, rates.Discount),
	)
	if r.GrowthSource == SourceFallback || r.DiscountSource == SourceFallback {
		log.Info("dcf using fallback rates",
			zap.String("growth_source", r.GrowthSource),
			zap.String("discount_source", r.DiscountSource),
		)
	}

	valuation, err := dcf.Value(dcf.InputsFrom(in.CashFlow.Latest(), in.Balance.Latest(), in.Overview), rates)
	if err != nil {
		log.Warn("dcf skipped", zap.Error(err))
		r.Metrics = append(r.Metrics, dcf.Unavailable(err)...)
	} else {
		r.DCF = &valuation
		r.Metrics = append(r.Metrics, valuation.Metrics()...)
	}

	for _, m := range r.Unavailable() {
		log.Debug("metric unavailable",
			zap.String("metric", m.Name),
			zap.String("reason", m.ReasonCode()),
			zap.Error(m.Reason),
		)
	}

	return r
}

// growthRate picks the DCF growth: the override, else a positive revenue
// CAGR, else the fallback.
func (a *Analyzer) growthRate(hist growth.Result, histErr error) (float64, string) {
	if a.params.GrowthOverride.Valid {
		return a.params.GrowthOverride.Float64, SourceOverride
	}
	if histErr == nil && hist.Revenue.Value.Valid && hist.Revenue.Value.Float64 > 0 {
		return hist.Revenue.Value.Float64, SourceRevenueCAGR
	}
	return a.params.FallbackGrowth, SourceFallback
}

func (a *Analyzer) discountRate(coe capm.Result) (float64, string) {
	if coe.CostOfEquity.Valid {
		return coe.CostOfEquity.Float64, SourceCAPM
	}
	return a.params.FallbackDiscount, SourceFallback
}

func headerOf(o core.Overview) Header {
	return Header{
		Name:      o.TextOr(core.FieldName, ""),
		Sector:    o.TextOr(core.FieldSector, "N/A"),
		Industry:  o.TextOr(core.FieldIndustry, "N/A"),
		MarketCap: o.TextOr(core.FieldMarketCap, ""),
		EPS:       o.TextOr(core.FieldEPS, "N/A"),
		Beta:      o.TextOr(core.FieldBeta, "N/A"),
	}
}
