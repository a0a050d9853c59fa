package statement

import (
	"errors"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseRecord(t *testing.T) {
	row, err := ParseRecord(map[string]string{
		FiscalDateEnding: "2023-09-30",
		ReportedCurrency: "USD",
		TotalRevenue:     "383285000000",
		NetIncome:        "None",
		GrossProfit:      "0",
	})
	require.NoError(t, err)

	assert.Equal(t, date("2023-09-30"), row.PeriodEnd)
	assert.Equal(t, "USD", row.Currency)
	assert.Equal(t, 383285000000.0, row.Get(TotalRevenue).Float64)
	assert.False(t, row.Get(NetIncome).Valid, "None must read as missing")
	assert.True(t, row.Get(GrossProfit).Valid, "zero must stay present")
	assert.Equal(t, 0.0, row.Get(GrossProfit).Float64)
	assert.False(t, row.Get(TotalAssets).Valid, "absent field")
	assert.Equal(t, "2023-09-30", row.Period())
}

func TestParseRecord_Errors(t *testing.T) {
	_, err := ParseRecord(map[string]string{TotalRevenue: "1"})
	assert.True(t, errors.Is(err, core.ErrMissingInput))

	_, err = ParseRecord(map[string]string{FiscalDateEnding: "30/09/2023"})
	assert.True(t, errors.Is(err, core.ErrInvalidTable))
}

func TestNewTable_SortsOldestFirst(t *testing.T) {
	rows := []Row{
		NewRow(date("2023-12-31"), "USD", nil),
		NewRow(date("2021-12-31"), "USD", nil),
		NewRow(date("2022-12-31"), "USD", nil),
	}

	table, err := NewTable(KindIncome, rows)
	require.NoError(t, err)

	require.Equal(t, 3, table.Len())
	assert.Equal(t, "2021-12-31", table.At(0).Period())
	assert.Equal(t, "2023-12-31", table.Latest().Period())
	assert.Equal(t, "2022-12-31", table.Back(1).Period())
	assert.Equal(t, "2021-12-31", table.Back(2).Period())
	assert.Nil(t, table.Back(3))
	assert.Equal(t, KindIncome, table.Kind())
}

func TestNewTable_RejectsDuplicates(t *testing.T) {
	rows := []Row{
		NewRow(date("2022-12-31"), "USD", nil),
		NewRow(date("2022-12-31"), "USD", nil),
	}

	_, err := NewTable(KindBalance, rows)
	assert.True(t, errors.Is(err, core.ErrInvalidTable))
}

func TestNewTable_RejectsZeroDate(t *testing.T) {
	_, err := NewTable(KindBalance, []Row{{}})
	assert.True(t, errors.Is(err, core.ErrInvalidTable))
}

func TestTable_NilIsEmpty(t *testing.T) {
	var table *Table

	assert.Equal(t, 0, table.Len())
	assert.Nil(t, table.Latest())
	assert.Nil(t, table.At(0))
	assert.Nil(t, table.Find(date("2023-12-31")))
	assert.Equal(t, Kind(""), table.Kind())

	var row *Row
	assert.False(t, row.Get(NetIncome).Valid)
	assert.Empty(t, row.Period())
}

func TestTable_ReadOnly(t *testing.T) {
	fields := map[string]null.Float{NetIncome: null.FloatFrom(10)}
	table, err := NewTable(KindIncome, []Row{NewRow(date("2023-12-31"), "USD", fields)})
	require.NoError(t, err)

	fields[NetIncome] = null.FloatFrom(99)
	assert.Equal(t, 10.0, table.Latest().Get(NetIncome).Float64)

	latest := table.Latest()
	latest.PeriodEnd = date("1999-12-31")
	assert.Equal(t, "2023-12-31", table.Latest().Period())
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable(KindCashFlow, []map[string]string{
		{FiscalDateEnding: "2023-12-31", OperatingCashflow: "120", CapitalExpenditures: "-20"},
		{FiscalDateEnding: "2022-12-31", OperatingCashflow: "100", CapitalExpenditures: "N/A"},
	})
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, 100.0, table.At(0).Get(OperatingCashflow).Float64)
	assert.Equal(t, 120.0, table.At(1).Get(OperatingCashflow).Float64)

	assert.False(t, table.At(0).Get(CapitalExpenditures).Valid)
	assert.Equal(t, -20.0, table.At(1).Get(CapitalExpenditures).Float64)

	assert.NotNil(t, table.Find(date("2022-12-31")))
	assert.Nil(t, table.Find(date("2020-12-31")))
}

func TestParseTable_BadRecord(t *testing.T) {
	_, err := ParseTable(KindIncome, []map[string]string{{TotalRevenue: "1"}})
	assert.Error(t, err)
}
