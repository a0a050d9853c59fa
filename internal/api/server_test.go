package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/valuator/internal/analysis"
	"github.com/newthinker/valuator/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAnalyst struct{}

func (stubAnalyst) Run(ctx context.Context, symbol string) (analysis.Report, error) {
	return analysis.Report{ID: "r1", Symbol: symbol}, nil
}

func (stubAnalyst) RunBatch(ctx context.Context, symbols []string, workers int) []analysis.BatchResult {
	out := make([]analysis.BatchResult, len(symbols))
	for i, sym := range symbols {
		out[i] = analysis.BatchResult{Symbol: sym, Report: &analysis.Report{Symbol: sym}}
	}
	return out
}

func newTestServer(t *testing.T, cfg Config, reg *metrics.Registry) http.Handler {
	t.Helper()
	if cfg.MaxJobs == 0 {
		cfg.MaxJobs = 10
	}
	srv, err := NewServer(cfg, Dependencies{Analyst: stubAnalyst{}, Metrics: reg}, zap.NewNop())
	require.NoError(t, err)
	return srv.Handler()
}

func do(h http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	h := newTestServer(t, Config{}, nil)

	w := do(h, "GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(metrics.RequestIDHeader))
}

func TestServer_Analysis(t *testing.T) {
	h := newTestServer(t, Config{}, nil)

	w := do(h, "GET", "/api/v1/analysis/ACME", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"symbol":"ACME"`)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, Config{}, nil)

	w := do(h, "DELETE", "/api/v1/analysis/ACME", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_APIAuth(t *testing.T) {
	h := newTestServer(t, Config{APIKey: "test-key"}, nil)

	w := do(h, "GET", "/api/v1/analysis/ACME", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "without key")

	w = do(h, "GET", "/api/v1/analysis/ACME", map[string]string{"X-API-Key": "test-key"})
	assert.Equal(t, http.StatusOK, w.Code, "with key")

	w = do(h, "GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health stays open")
}

func TestServer_Metrics(t *testing.T) {
	reg := metrics.NewRegistry()
	h := newTestServer(t, Config{MetricsPath: "/metrics", JobTTL: time.Hour}, reg)

	do(h, "GET", "/api/v1/analysis/ACME", nil)

	w := do(h, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), `path="GET /api/v1/analysis/{symbol}"`)
	assert.Contains(t, string(body), "valuator_batch_jobs_active")
}

func TestServer_MetricsDisabled(t *testing.T) {
	h := newTestServer(t, Config{}, nil)

	w := do(h, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewServer_RequiresAnalyst(t *testing.T) {
	_, err := NewServer(Config{}, Dependencies{}, nil)
	assert.Error(t, err)
}
