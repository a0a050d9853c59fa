// Package alphavantage collects company overviews and annual statements from
// the Alpha Vantage fundamentals API.
package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newthinker/valuator/internal/collector"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/statement"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public API host.
	DefaultBaseURL = "https://www.alphavantage.co"

	// FunctionOverview is the company overview endpoint.
	FunctionOverview = "OVERVIEW"

	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 8 << 20
)

// Observer is told the outcome of every provider call.
type Observer func(collector, function, status string)

// AlphaVantage implements collector.FundamentalCollector.
type AlphaVantage struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	recorder collector.PayloadRecorder
	observe  Observer
	logger   *zap.Logger
}

// Option configures the collector.
type Option func(*AlphaVantage)

// WithRecorder keeps every successful raw payload.
func WithRecorder(r collector.PayloadRecorder) Option {
	return func(a *AlphaVantage) { a.recorder = r }
}

// WithObserver reports call outcomes, typically to metrics.
func WithObserver(o Observer) Option {
	return func(a *AlphaVantage) { a.observe = o }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *AlphaVantage) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *AlphaVantage) { a.client = c }
}

// New creates an Alpha Vantage collector.
func New(apiKey string, opts ...Option) *AlphaVantage {
	a := &AlphaVantage{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		observe: func(string, string, string) {},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AlphaVantage) Name() string { return "alphavantage" }

func (a *AlphaVantage) Init(cfg collector.Config) error {
	if cfg.APIKey != "" {
		a.apiKey = cfg.APIKey
	}
	if cfg.BaseURL != "" {
		a.baseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		a.client.Timeout = cfg.Timeout
	}
	if a.apiKey == "" {
		return core.Errorf(core.ErrConfigMissing, "alphavantage: api_key is required")
	}
	return nil
}

// FetchOverview fetches the company overview.
func (a *AlphaVantage) FetchOverview(ctx context.Context, symbol string) (core.Overview, error) {
	body, err := a.query(ctx, FunctionOverview, symbol)
	if err != nil {
		return core.Overview{}, err
	}
	return ParseOverview(body)
}

// FetchStatements fetches one annual statement.
func (a *AlphaVantage) FetchStatements(ctx context.Context, symbol string, kind statement.Kind) (*statement.Table, error) {
	body, err := a.query(ctx, string(kind), symbol)
	if err != nil {
		return nil, err
	}
	return ParseStatements(kind, body)
}

func (a *AlphaVantage) query(ctx context.Context, function, symbol string) ([]byte, error) {
	sym, err := collector.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	body, err := a.get(ctx, function, sym)
	a.observe(a.Name(), function, statusOf(err))
	if err != nil {
		a.logger.Debug("alphavantage request failed",
			zap.String("function", function),
			zap.String("symbol", sym),
			zap.Error(err),
		)
		return nil, err
	}

	if a.recorder != nil {
		if err := a.recorder.RecordPayload(ctx, sym, function, body); err != nil {
			a.logger.Warn("failed to record payload",
				zap.String("function", function),
				zap.String("symbol", sym),
				zap.Error(err),
			)
		}
	}
	return body, nil
}

func (a *AlphaVantage) get(ctx context.Context, function, symbol string) ([]byte, error) {
	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("apikey", a.apiKey)
	u := fmt.Sprintf("%s/query?%s", a.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, core.WrapError(core.ErrCollectorTimeout, fmt.Errorf("%s %s: %w", function, symbol, err))
		}
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("%s %s: %w", function, symbol, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("%s %s: unexpected status %d", function, symbol, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("reading response: %w", err))
	}

	// Validate the envelope before the payload can be recorded.
	if _, err := decodeObject(body); err != nil {
		return nil, err
	}
	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, core.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, core.ErrNoData):
		return "no_data"
	case errors.Is(err, core.ErrCollectorTimeout):
		return "timeout"
	default:
		return "error"
	}
}

var _ collector.FundamentalCollector = (*AlphaVantage)(nil)
