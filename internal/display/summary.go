// Package display renders analysis reports for terminals.
package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/analysis"
	"github.com/newthinker/valuator/internal/core"
	"github.com/shopspring/decimal"
)

const (
	rule    = "=================================================="
	missing = "N/A"
)

// Summary writes the report in the classic summary layout: company header,
// overview figures, then every metric in report order.
func Summary(w io.Writer, r analysis.Report) error {
	p := &printer{w: w}

	title := r.Symbol
	if r.Header.Name != "" {
		title = fmt.Sprintf("%s (%s)", r.Symbol, r.Header.Name)
	}
	p.line("")
	p.line(rule)
	p.linef("      ANALYSIS SUMMARY: %s", title)
	p.line(rule)
	p.linef("Sector: %s", orMissing(r.Header.Sector))
	p.linef("Industry: %s", orMissing(r.Header.Industry))
	if r.Period != "" {
		p.linef("Fiscal Period: %s", r.Period)
	}

	p.line("")
	p.line("--- Key Metrics (from Overview) ---")
	p.linef("Market Cap: %s", Integer(r.Header.MarketCap))
	p.linef("EPS: %s", orMissing(r.Header.EPS))
	p.linef("Beta: %s", orMissing(r.Header.Beta))

	p.line("")
	p.line("--- Quantitative Models & Ratios ---")
	if len(r.Metrics) == 0 {
		p.line("No ratios calculated.")
	}
	for _, m := range r.Metrics {
		if m.IsAvailable() {
			p.linef("%s: %s", m.Name, Fixed(m.Value.Float64, 4))
			continue
		}
		p.linef("%s: %s (%s)", m.Name, missing, m.ReasonCode())
	}

	if len(r.Warnings) > 0 {
		p.line("")
		p.line("--- Warnings ---")
		for _, warn := range r.Warnings {
			p.linef("! %s", warn)
		}
	}
	p.line(rule)
	return p.err
}

// Breakdown writes the intermediate figures behind the F-Score and the DCF.
// Engines that did not run are skipped.
func Breakdown(w io.Writer, r analysis.Report) error {
	p := &printer{w: w}

	if r.FScore != nil {
		p.line("")
		p.linef("--- Piotroski F-Score: %d/9 (%s vs prior year) ---", r.FScore.Score, r.FScore.Period)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, t := range r.FScore.Tests {
			outcome := "fail"
			switch {
			case !t.Evaluated:
				outcome = "n/a"
			case t.Passed:
				outcome = "pass"
			}
			fmt.Fprintf(tw, "  %s\t%s\n", t.Name, outcome)
		}
		p.check(tw.Flush())
	}

	if d := r.DCF; d != nil {
		p.line("")
		p.line("--- Simplified DCF ---")
		p.linef("Assumptions: Growth=%s (%s), Discount=%s (%s), Terminal Growth=%s",
			Fixed(d.Rates.Growth, 4), r.GrowthSource,
			Fixed(d.Rates.Discount, 4), r.DiscountSource,
			Fixed(d.Rates.TerminalGrowth, 4))
		p.linef("Base FCF: %s", Money(d.BaseFCF))

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "  Year\tProjected FCF\tPresent Value\t")
		for i := range d.Projected {
			pv := missing
			if i < len(d.Discounted) {
				pv = Money(d.Discounted[i])
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s\t\n", i+1, Money(d.Projected[i]), pv)
		}
		p.check(tw.Flush())

		p.linef("Terminal Value: %s", moneyOr(d.TerminalValue))
		p.linef("PV of Terminal Value: %s", moneyOr(d.PVTerminal))
		p.linef("Enterprise Value: %s", moneyOr(d.EnterpriseValue.Value))
		p.linef("Net Debt: %s", Money(d.NetDebt))
		p.linef("Equity Value: %s", moneyOr(d.EquityValue.Value))
		p.linef("IMPLIED SHARE PRICE: %s", fixedOr(d.SharePrice.Value, 2))
	}
	return p.err
}

// Fixed renders v with exactly places decimals. NaN and infinities render
// as N/A.
func Fixed(v float64, places int32) string {
	if !core.IsFinite(v) {
		return missing
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Money renders v with two decimals and thousands separators.
func Money(v float64) string {
	if !core.IsFinite(v) {
		return missing
	}
	return group(decimal.NewFromFloat(v).StringFixed(2))
}

// Integer renders a provider number as a whole number with thousands
// separators, or N/A when it does not parse.
func Integer(raw string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return missing
	}
	return group(d.Truncate(0).String())
}

func moneyOr(v null.Float) string {
	if !v.Valid {
		return missing
	}
	return Money(v.Float64)
}

func fixedOr(v null.Float, places int32) string {
	if !v.Valid {
		return missing
	}
	return Fixed(v.Float64, places)
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}

// group inserts thousands separators into a plain decimal string.
func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err == nil {
		_, p.err = fmt.Fprintln(p.w, s)
	}
}

func (p *printer) linef(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *printer) check(err error) {
	if p.err == nil {
		p.err = err
	}
}
