package analysis

import (
	"time"

	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/engine/dcf"
	"github.com/newthinker/valuator/internal/engine/fscore"
)

// Metric names the coordinator adds for the DCF assumptions.
const (
	MetricDCFGrowthRate   = "DCF_Growth_Rate"
	MetricDCFDiscountRate = "DCF_Discount_Rate"
)

// Where a DCF rate came from.
const (
	SourceOverride    = "override"
	SourceRevenueCAGR = "revenue_cagr"
	SourceCAPM        = "capm"
	SourceFallback    = "fallback"
)

// Header is the company context shown above the metrics. Values are the raw
// provider text.
type Header struct {
	Name      string `json:"name,omitempty"`
	Sector    string `json:"sector,omitempty"`
	Industry  string `json:"industry,omitempty"`
	MarketCap string `json:"market_cap,omitempty"`
	EPS       string `json:"eps,omitempty"`
	Beta      string `json:"beta,omitempty"`
}

// Report is the ordered result of one analysis.
type Report struct {
	ID             string       `json:"id"`
	Symbol         string       `json:"symbol"`
	Header         Header       `json:"header"`
	Period         string       `json:"period,omitempty"`
	GeneratedAt    time.Time    `json:"generated_at"`
	Metrics        core.Metrics `json:"metrics"`
	GrowthSource   string       `json:"growth_source"`
	DiscountSource string       `json:"discount_source"`
	Warnings       []string     `json:"warnings,omitempty"`
	ArchivePath    string       `json:"archive_path,omitempty"`

	// Breakdowns for detailed rendering. Nil when the engine was skipped.
	FScore *fscore.Result `json:"-"`
	DCF    *dcf.Result    `json:"-"`
}

// Metric returns a metric by name.
func (r *Report) Metric(name string) (core.Metric, bool) {
	return r.Metrics.Get(name)
}

// Unavailable returns the metrics that could not be computed.
func (r *Report) Unavailable() core.Metrics {
	var out core.Metrics
	for _, m := range r.Metrics {
		if !m.IsAvailable() {
			out = append(out, m)
		}
	}
	return out
}
