package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		valid bool
		want  float64
	}{
		{"123.45", true, 123.45},
		{"0", true, 0},
		{"-42", true, -42},
		{" 7 ", true, 7},
		{"1.5e3", true, 1500},
		{"N/A", false, 0},
		{"None", false, 0},
		{"-", false, 0},
		{"", false, 0},
		{"abc", false, 0},
		{"NaN", false, 0},
		{"1e400", false, 0},
		{"-1e400", false, 0},
	}

	for _, tc := range tests {
		got := ParseNumber(tc.input)
		if got.Valid != tc.valid {
			t.Errorf("ParseNumber(%q).Valid = %v, want %v", tc.input, got.Valid, tc.valid)
			continue
		}
		if tc.valid && got.Float64 != tc.want {
			t.Errorf("ParseNumber(%q) = %f, want %f", tc.input, got.Float64, tc.want)
		}
	}
}

func TestParseNumber_ZeroIsNotMissing(t *testing.T) {
	zero := ParseNumber("0")
	missing := ParseNumber("None")

	assert.True(t, zero.Valid)
	assert.Equal(t, 0.0, zero.Float64)
	assert.False(t, missing.Valid)
}

func TestOverview_Immutable(t *testing.T) {
	fields := map[string]string{FieldBeta: "1.2"}
	o := NewOverview(fields)

	fields[FieldBeta] = "9.9"
	assert.Equal(t, 1.2, o.Number(FieldBeta).Float64)
}

func TestOverview_Text(t *testing.T) {
	o := NewOverview(map[string]string{
		FieldName:   "Apple Inc",
		FieldSector: "N/A",
	})

	name, ok := o.Text(FieldName)
	assert.True(t, ok)
	assert.Equal(t, "Apple Inc", name)

	_, ok = o.Text(FieldSector)
	assert.False(t, ok, "sentinel should read as absent")

	assert.Equal(t, "N/A", o.TextOr(FieldIndustry, "N/A"))
	assert.False(t, o.IsEmpty())
	assert.True(t, NewOverview(nil).IsEmpty())
}

func TestOverview_Number(t *testing.T) {
	o := NewOverview(map[string]string{
		FieldPERatio: "28.5",
		FieldBeta:    "N/A",
	})

	assert.True(t, o.Number(FieldPERatio).Valid)
	assert.False(t, o.Number(FieldBeta).Valid)
	assert.False(t, o.Number(FieldEPS).Valid)
}

func TestMetric_Constructors(t *testing.T) {
	m := Available("P/E_Ratio", 12.5)
	assert.True(t, m.IsAvailable())
	assert.Empty(t, m.ReasonCode())

	u := Unavailable("Beta", nil)
	assert.False(t, u.IsAvailable())
	assert.Equal(t, "MISSING_INPUT", u.ReasonCode())

	d := Unavailable("DCF_Enterprise_Value", WrapError(ErrDegenerateArithmetic, errors.New("d == g")))
	assert.Equal(t, "DEGENERATE_ARITHMETIC", d.ReasonCode())

	plain := Unavailable("x", errors.New("boom"))
	assert.Equal(t, "UNKNOWN", plain.ReasonCode())
}

func TestMetric_JSON(t *testing.T) {
	ms := Metrics{
		Available("Net_Profit_Margin", 0.25),
		Unavailable("Cost_of_Equity", ErrMissingInput),
	}

	data, err := json.Marshal(ms)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"name":"Net_Profit_Margin","value":0.25},
		{"name":"Cost_of_Equity","value":null,"reason":"MISSING_INPUT","detail":"[MISSING_INPUT] required input is missing"}
	]`, string(data))

	var back Metrics
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 2)
	assert.Equal(t, 0.25, back[0].Value.Float64)
	assert.False(t, back[1].IsAvailable())
	assert.Equal(t, "MISSING_INPUT", back[1].ReasonCode())
}

func TestMetrics_Lookup(t *testing.T) {
	ms := Metrics{
		Available("a", 1),
		Available("b", 2),
	}

	m, ok := ms.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2.0, m.Value.Float64)

	_, ok = ms.Get("c")
	assert.False(t, ok)

	assert.False(t, ms.Value("c").Valid)
	assert.Equal(t, []string{"a", "b"}, ms.Names())
}

func TestMetric_NonFiniteIsDegenerate(t *testing.T) {
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		m := Available("P/E_Ratio", v)
		assert.False(t, m.IsAvailable())
		assert.Equal(t, "DEGENERATE_ARITHMETIC", m.ReasonCode())

		m = MetricOf("P/E_Ratio", null.FloatFrom(v), nil)
		assert.False(t, m.IsAvailable())

		_, err := json.Marshal(Metrics{m})
		assert.NoError(t, err, "report JSON must survive a non-finite input")
	}
}
