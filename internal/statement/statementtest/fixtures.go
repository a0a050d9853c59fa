// Package statementtest builds statement tables for tests.
package statementtest

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/statement"
)

// Year returns the fiscal year end for year y.
func Year(y int) time.Time {
	return time.Date(y, 12, 31, 0, 0, 0, 0, time.UTC)
}

// Columns maps a field to its values, oldest first. NaN marks a missing cell.
type Columns map[string][]float64

// Table builds a table of len(years) rows from columns. It panics on bad
// input since it only runs in tests.
func Table(kind statement.Kind, startYear int, cols Columns) *statement.Table {
	n := 0
	for _, vs := range cols {
		n = max(n, len(vs))
	}

	rows := make([]statement.Row, 0, n)
	for i := 0; i < n; i++ {
		fields := make(map[string]null.Float)
		for name, vs := range cols {
			if i >= len(vs) || vs[i] != vs[i] {
				continue
			}
			fields[name] = null.FloatFrom(vs[i])
		}
		rows = append(rows, statement.NewRow(Year(startYear+i), "USD", fields))
	}

	t, err := statement.NewTable(kind, rows)
	if err != nil {
		panic(fmt.Sprintf("statementtest: %v", err))
	}
	return t
}

// Healthy is three years of a company improving on every F-Score test,
// with revenue and net income both growing 20% a year.
type Healthy struct {
	Income   *statement.Table
	Balance  *statement.Table
	CashFlow *statement.Table
}

// NewHealthy builds the Healthy fixture for fiscal years 2021 to 2023.
func NewHealthy() Healthy {
	return Healthy{
		Income: Table(statement.KindIncome, 2021, Columns{
			statement.TotalRevenue: {100, 120, 144},
			statement.GrossProfit:  {40, 50, 63},
			statement.NetIncome:    {10, 12, 14.4},
		}),
		Balance: Table(statement.KindBalance, 2021, Columns{
			statement.TotalAssets:             {200, 220, 242},
			statement.TotalCurrentAssets:      {150, 160, 180},
			statement.TotalCurrentLiabilities: {100, 100, 100},
			statement.TotalShareholderEquity:  {100, 110, 121},
			statement.LongTermDebt:            {100, 100, 100},
			statement.ShortTermDebt:           {10, 10, 10},
			statement.CommonStock:             {50, 50, 50},
			statement.CashAndEquivalents:      {30, 35, 40},
		}),
		CashFlow: Table(statement.KindCashFlow, 2021, Columns{
			statement.OperatingCashflow:   {15, 18, 120},
			statement.CapitalExpenditures: {-5, -6, -20},
		}),
	}
}
