package core

import (
	"encoding/json"
	"errors"
	"maps"
	"math"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// Overview field keys as reported by the provider.
const (
	FieldSymbol            = "Symbol"
	FieldName              = "Name"
	FieldSector            = "Sector"
	FieldIndustry          = "Industry"
	FieldMarketCap         = "MarketCapitalization"
	FieldPERatio           = "PERatio"
	FieldPriceToBook       = "PriceToBookRatio"
	FieldPriceToSales      = "PriceToSalesRatioTTM"
	FieldDividendYield     = "DividendYield"
	FieldBeta              = "Beta"
	FieldEPS               = "EPS"
	FieldSharesOutstanding = "SharesOutstanding"
)

// missingSentinels are provider strings that mean "no value".
var missingSentinels = map[string]struct{}{
	"":     {},
	"N/A":  {},
	"None": {},
	"none": {},
	"null": {},
	"-":    {},
}

// ParseNumber coerces a provider string into a three-state value.
// Sentinels, unparsable text and values outside float64 range are absent;
// "0" is a present zero.
func ParseNumber(s string) null.Float {
	s = strings.TrimSpace(s)
	if _, ok := missingSentinels[s]; ok {
		return null.Float{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return null.Float{}
	}
	f := d.InexactFloat64()
	if !IsFinite(f) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Overview is a point-in-time company snapshot. It is immutable once built.
type Overview struct {
	fields map[string]string
}

// NewOverview copies fields into a new snapshot.
func NewOverview(fields map[string]string) Overview {
	return Overview{fields: maps.Clone(fields)}
}

// IsEmpty reports whether the snapshot has no fields at all.
func (o Overview) IsEmpty() bool {
	return len(o.fields) == 0
}

// Text returns the raw field, with sentinels reported as absent.
func (o Overview) Text(key string) (string, bool) {
	v, ok := o.fields[key]
	if !ok {
		return "", false
	}
	if _, missing := missingSentinels[strings.TrimSpace(v)]; missing {
		return "", false
	}
	return v, true
}

// TextOr returns the field or def when absent.
func (o Overview) TextOr(key, def string) string {
	if v, ok := o.Text(key); ok {
		return v
	}
	return def
}

// Number parses a numeric field.
func (o Overview) Number(key string) null.Float {
	v, ok := o.fields[key]
	if !ok {
		return null.Float{}
	}
	return ParseNumber(v)
}

// Metric is a single named result. Value is invalid when the metric could
// not be computed; Reason then says why.
type Metric struct {
	Name   string
	Value  null.Float
	Reason error
}

// Available builds a computed metric. A NaN or infinite value is reported
// as DegenerateArithmetic instead.
func Available(name string, v float64) Metric {
	if !IsFinite(v) {
		return Unavailable(name, Errorf(ErrDegenerateArithmetic, "non-finite result %g", v))
	}
	return Metric{Name: name, Value: null.FloatFrom(v)}
}

// Unavailable builds a metric that could not be computed.
func Unavailable(name string, reason error) Metric {
	if reason == nil {
		reason = ErrMissingInput
	}
	return Metric{Name: name, Reason: reason}
}

// MetricOf builds a metric from a three-state value.
func MetricOf(name string, v null.Float, reason error) Metric {
	if v.Valid {
		return Available(name, v.Float64)
	}
	return Unavailable(name, reason)
}

// IsAvailable reports whether the metric carries a value.
func (m Metric) IsAvailable() bool {
	return m.Value.Valid
}

// ReasonCode returns the error code of an unavailable metric.
func (m Metric) ReasonCode() string {
	if m.Reason == nil {
		return ""
	}
	var coreErr *Error
	if errors.As(m.Reason, &coreErr) {
		return coreErr.Code
	}
	return "UNKNOWN"
}

type metricJSON struct {
	Name   string     `json:"name"`
	Value  null.Float `json:"value"`
	Reason string     `json:"reason,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

// MarshalJSON renders the metric with an explicit null for unavailable values.
func (m Metric) MarshalJSON() ([]byte, error) {
	out := metricJSON{Name: m.Name, Value: m.Value}
	if !m.Value.Valid {
		out.Reason = m.ReasonCode()
		if m.Reason != nil {
			out.Detail = m.Reason.Error()
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a metric; the reason is restored as a bare code.
func (m *Metric) UnmarshalJSON(data []byte) error {
	var in metricJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m.Name = in.Name
	m.Value = in.Value
	m.Reason = nil
	if !in.Value.Valid && in.Reason != "" {
		m.Reason = &Error{Code: in.Reason, Message: in.Detail}
	}
	return nil
}

// Metrics is an ordered list of metrics; order is display order.
type Metrics []Metric

// Get finds a metric by name.
func (ms Metrics) Get(name string) (Metric, bool) {
	for _, m := range ms {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Value returns the metric value by name, invalid when missing.
func (ms Metrics) Value(name string) null.Float {
	m, ok := ms.Get(name)
	if !ok {
		return null.Float{}
	}
	return m.Value
}

// Names returns metric names in order.
func (ms Metrics) Names() []string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name
	}
	return names
}
