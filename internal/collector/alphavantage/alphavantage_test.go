package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/valuator/internal/collector"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureServer serves testdata/{function}.json and checks the query string.
func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("apikey") != "demo" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		data, err := os.ReadFile(filepath.Join("testdata", q.Get("function")+".json"))
		if err != nil {
			w.Write([]byte(`{}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string, opts ...Option) *AlphaVantage {
	t.Helper()
	a := New("demo", opts...)
	require.NoError(t, a.Init(collector.Config{BaseURL: baseURL, Timeout: 2 * time.Second}))
	return a
}

type memRecorder struct {
	mu       sync.Mutex
	payloads map[string][]byte
}

func (m *memRecorder) RecordPayload(ctx context.Context, symbol, function string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payloads == nil {
		m.payloads = map[string][]byte{}
	}
	m.payloads[symbol+"/"+function] = payload
	return nil
}

func TestAlphaVantage_ImplementsCollector(t *testing.T) {
	var _ collector.FundamentalCollector = (*AlphaVantage)(nil)
	assert.Equal(t, "alphavantage", New("").Name())
}

func TestAlphaVantage_InitRequiresKey(t *testing.T) {
	err := New("").Init(collector.Config{})
	assert.True(t, errors.Is(err, core.ErrConfigMissing))
}

func TestAlphaVantage_FetchOverview(t *testing.T) {
	srv := fixtureServer(t)
	rec := &memRecorder{}
	a := newClient(t, srv.URL, WithRecorder(rec))

	o, err := a.FetchOverview(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", o.TextOr(core.FieldName, ""))
	assert.Equal(t, 1.1, o.Number(core.FieldBeta).Float64)
	assert.False(t, o.Number("ForwardPE").Valid)
	assert.Contains(t, rec.payloads, "ACME/OVERVIEW")
}

func TestAlphaVantage_FetchStatements(t *testing.T) {
	srv := fixtureServer(t)
	a := newClient(t, srv.URL)

	income, err := a.FetchStatements(context.Background(), "ACME", statement.KindIncome)
	require.NoError(t, err)

	require.Equal(t, 3, income.Len())
	assert.Equal(t, "2021-12-31", income.At(0).Period())
	assert.Equal(t, "2023-12-31", income.Latest().Period())
	assert.Equal(t, 144.0, income.Latest().Get(statement.TotalRevenue).Float64)
	assert.Equal(t, "USD", income.Latest().Currency)
	assert.False(t, income.Latest().Get("ebitda").Valid)

	for _, kind := range []statement.Kind{statement.KindBalance, statement.KindCashFlow} {
		tbl, err := a.FetchStatements(context.Background(), "ACME", kind)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, tbl.Kind())
		assert.Equal(t, 3, tbl.Len())
	}
}

func TestAlphaVantage_ProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr *core.Error
		status2 string
	}{
		{"rate limit note", 200, `{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`, core.ErrRateLimited, "rate_limited"},
		{"information notice", 200, `{"Information":"premium endpoint"}`, core.ErrRateLimited, "rate_limited"},
		{"unknown symbol", 200, `{"Error Message":"Invalid API call."}`, core.ErrSymbolNotFound, "error"},
		{"empty object", 200, `{}`, core.ErrNoData, "no_data"},
		{"empty body", 200, ``, core.ErrNoData, "no_data"},
		{"server error", 503, `oops`, core.ErrCollectorFailed, "error"},
		{"not json", 200, `<html>`, core.ErrCollectorFailed, "error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			rec := &memRecorder{}
			var observed []string
			a := newClient(t, srv.URL, WithRecorder(rec), WithObserver(func(c, f, s string) {
				observed = append(observed, s)
			}))

			_, err := a.FetchOverview(context.Background(), "ACME")
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			assert.Empty(t, rec.payloads, "failed payloads must not be recorded")
			assert.Equal(t, []string{tc.status2}, observed)
		})
	}
}

func TestAlphaVantage_NoAnnualReports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"ACME","annualReports":[]}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).FetchStatements(context.Background(), "ACME", statement.KindCashFlow)
	assert.True(t, errors.Is(err, core.ErrNoData))
}

func TestAlphaVantage_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newClient(t, srv.URL).FetchOverview(ctx, "ACME")
	assert.True(t, errors.Is(err, core.ErrCollectorTimeout), "got %v", err)
}

func TestAlphaVantage_InvalidSymbol(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).FetchOverview(context.Background(), "ACME&function=X")
	assert.True(t, errors.Is(err, core.ErrSymbolNotFound))
	assert.False(t, called)
}

func TestParseStatements_DuplicatePeriod(t *testing.T) {
	body := []byte(`{"annualReports":[
		{"fiscalDateEnding":"2023-12-31","netIncome":"1"},
		{"fiscalDateEnding":"2023-12-31","netIncome":"2"}]}`)

	_, err := ParseStatements(statement.KindIncome, body)
	assert.True(t, errors.Is(err, core.ErrInvalidTable))
}

func TestParseOverview_NumbersAndNulls(t *testing.T) {
	o, err := ParseOverview([]byte(`{"Symbol":"X","Beta":1.25,"PERatio":null}`))
	require.NoError(t, err)

	assert.Equal(t, 1.25, o.Number(core.FieldBeta).Float64)
	_, ok := o.Text(core.FieldPERatio)
	assert.False(t, ok)
}
