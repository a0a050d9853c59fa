// Package statement holds annual financial-statement rows and the ordered
// tables built from them. Tables are read-only once constructed.
package statement

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/core"
)

// Kind identifies a statement type. Values match the provider function names.
type Kind string

const (
	KindIncome   Kind = "INCOME_STATEMENT"
	KindBalance  Kind = "BALANCE_SHEET"
	KindCashFlow Kind = "CASH_FLOW"
)

// Kinds lists every statement kind in fetch order.
var Kinds = []Kind{KindIncome, KindBalance, KindCashFlow}

// Field names used by the engines.
const (
	FiscalDateEnding = "fiscalDateEnding"
	ReportedCurrency = "reportedCurrency"

	// Income statement
	TotalRevenue = "totalRevenue"
	GrossProfit  = "grossProfit"
	NetIncome    = "netIncome"

	// Balance sheet
	TotalAssets             = "totalAssets"
	TotalCurrentAssets      = "totalCurrentAssets"
	TotalCurrentLiabilities = "totalCurrentLiabilities"
	TotalShareholderEquity  = "totalShareholderEquity"
	LongTermDebt            = "longTermDebt"
	ShortTermDebt           = "shortTermDebt"
	CommonStock             = "commonStock"
	CashAndEquivalents      = "cashAndCashEquivalentsAtCarryingValue"

	// Cash flow
	OperatingCashflow   = "operatingCashflow"
	CapitalExpenditures = "capitalExpenditures"
)

// DateLayout is the layout of fiscalDateEnding.
const DateLayout = "2006-01-02"

// Row is one fiscal period of one statement.
type Row struct {
	PeriodEnd time.Time
	Currency  string
	fields    map[string]null.Float
}

// NewRow copies fields into a new row.
func NewRow(periodEnd time.Time, currency string, fields map[string]null.Float) Row {
	return Row{
		PeriodEnd: periodEnd,
		Currency:  currency,
		fields:    maps.Clone(fields),
	}
}

// Get returns a field value; absent fields are invalid, never zero.
func (r *Row) Get(field string) null.Float {
	if r == nil {
		return null.Float{}
	}
	return r.fields[field]
}

// Period formats the period end date.
func (r *Row) Period() string {
	if r == nil {
		return ""
	}
	return r.PeriodEnd.Format(DateLayout)
}

// ParseRecord converts a provider record of strings into a row.
// fiscalDateEnding is required; every other field except the currency is
// coerced to a number with the missing-value policy of core.ParseNumber.
func ParseRecord(rec map[string]string) (Row, error) {
	raw, ok := rec[FiscalDateEnding]
	if !ok {
		return Row{}, core.Errorf(core.ErrMissingInput, "record has no %s", FiscalDateEnding)
	}
	periodEnd, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Row{}, core.WrapError(core.ErrInvalidTable, fmt.Errorf("parsing %s %q: %w", FiscalDateEnding, raw, err))
	}

	fields := make(map[string]null.Float, len(rec))
	for k, v := range rec {
		if k == FiscalDateEnding || k == ReportedCurrency {
			continue
		}
		fields[k] = core.ParseNumber(v)
	}

	return Row{
		PeriodEnd: periodEnd,
		Currency:  rec[ReportedCurrency],
		fields:    fields,
	}, nil
}

// Table is an ordered set of rows, oldest first, with unique period ends.
// A nil *Table behaves as an empty table.
type Table struct {
	kind Kind
	rows []Row
}

// NewTable sorts rows oldest-to-newest and rejects duplicate period ends.
func NewTable(kind Kind, rows []Row) (*Table, error) {
	sorted := slices.Clone(rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PeriodEnd.Before(sorted[j].PeriodEnd)
	})

	for i, r := range sorted {
		if r.PeriodEnd.IsZero() {
			return nil, core.Errorf(core.ErrInvalidTable, "%s row %d has no period end", kind, i)
		}
		if i > 0 && r.PeriodEnd.Equal(sorted[i-1].PeriodEnd) {
			return nil, core.Errorf(core.ErrInvalidTable, "%s has duplicate period end %s", kind, r.Period())
		}
	}

	return &Table{kind: kind, rows: sorted}, nil
}

// ParseTable parses provider records and builds a table.
func ParseTable(kind Kind, records []map[string]string) (*Table, error) {
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		row, err := ParseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%s record %d: %w", kind, i, err)
		}
		rows = append(rows, row)
	}
	return NewTable(kind, rows)
}

// Kind returns the statement kind.
func (t *Table) Kind() Kind {
	if t == nil {
		return ""
	}
	return t.kind
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// At returns the row at position i counted from the oldest.
func (t *Table) At(i int) *Row {
	if i < 0 || i >= t.Len() {
		return nil
	}
	r := t.rows[i]
	return &r
}

// Latest returns period T, or nil for an empty table.
func (t *Table) Latest() *Row {
	return t.Back(0)
}

// Back returns period T-n, or nil when the table is too short.
func (t *Table) Back(n int) *Row {
	return t.At(t.Len() - 1 - n)
}

// Find returns the row whose period end equals periodEnd.
func (t *Table) Find(periodEnd time.Time) *Row {
	for i := 0; i < t.Len(); i++ {
		if t.rows[i].PeriodEnd.Equal(periodEnd) {
			return t.At(i)
		}
	}
	return nil
}
