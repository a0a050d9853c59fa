package alphavantage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/statement"
)

// Envelope keys Alpha Vantage uses instead of an HTTP error status.
const (
	keyNote         = "Note"
	keyInformation  = "Information"
	keyErrorMessage = "Error Message"
)

// checkEnvelope maps provider notices carried in a 200 response to errors.
func checkEnvelope(raw map[string]json.RawMessage) error {
	for _, key := range []string{keyNote, keyInformation} {
		if msg, ok := raw[key]; ok {
			return core.WrapError(core.ErrRateLimited, fmt.Errorf("%s", unquote(msg)))
		}
	}
	if msg, ok := raw[keyErrorMessage]; ok {
		return core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("%s", unquote(msg)))
	}
	return nil
}

func unquote(msg json.RawMessage) string {
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return string(msg)
	}
	return s
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	if len(body) == 0 {
		return nil, core.Errorf(core.ErrNoData, "empty response")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("decoding response: %w", err))
	}
	if len(raw) == 0 {
		return nil, core.Errorf(core.ErrNoData, "empty response")
	}
	if err := checkEnvelope(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ParseOverview decodes an OVERVIEW payload.
func ParseOverview(body []byte) (core.Overview, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return core.Overview{}, err
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := scalar(v); ok {
			fields[k] = s
		}
	}
	return core.NewOverview(fields), nil
}

// ParseStatements decodes the annualReports of a statement payload.
func ParseStatements(kind statement.Kind, body []byte) (*statement.Table, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	var reports []map[string]json.RawMessage
	if r, ok := raw["annualReports"]; ok {
		if err := json.Unmarshal(r, &reports); err != nil {
			return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("decoding annualReports: %w", err))
		}
	}
	if len(reports) == 0 {
		return nil, core.Errorf(core.ErrNoData, "no annual reports for %s", kind)
	}

	records := make([]map[string]string, len(reports))
	for i, rep := range reports {
		rec := make(map[string]string, len(rep))
		for k, v := range rep {
			if s, ok := scalar(v); ok {
				rec[k] = s
			}
		}
		records[i] = rec
	}
	return statement.ParseTable(kind, records)
}

// scalar renders a JSON string or number as text. Nulls, objects and arrays
// are dropped.
func scalar(v json.RawMessage) (string, bool) {
	if string(bytes.TrimSpace(v)) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String(), true
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return strconv.FormatBool(b), true
	}
	return "", false
}
