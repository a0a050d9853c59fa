package collector

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/statement"
)

// FundamentalCollector fetches the company overview and annual statements
// for a ticker.
type FundamentalCollector interface {
	// Metadata
	Name() string

	// Lifecycle
	Init(cfg Config) error

	// Data fetching
	FetchOverview(ctx context.Context, symbol string) (core.Overview, error)
	FetchStatements(ctx context.Context, symbol string, kind statement.Kind) (*statement.Table, error)
}

// PayloadRecorder keeps raw provider responses for later replay.
type PayloadRecorder interface {
	RecordPayload(ctx context.Context, symbol, function string, payload []byte) error
}

// validSymbol matches tickers like AAPL, BRK.B, RDS-A, 0700.HK
var validSymbol = regexp.MustCompile(`^[A-Z0-9]{1,10}([.\-][A-Z0-9]{1,4})?$`)

// NormalizeSymbol upper-cases and validates a ticker.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("symbol cannot be empty"))
	}
	if !validSymbol.MatchString(s) {
		return "", core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("invalid symbol format: %q", symbol))
	}
	return s, nil
}
