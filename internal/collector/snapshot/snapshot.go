// Package snapshot replays provider payloads recorded in the archive, so an
// analysis can be rerun offline.
package snapshot

import (
	"context"
	"fmt"

	"github.com/newthinker/valuator/internal/collector"
	"github.com/newthinker/valuator/internal/collector/alphavantage"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/statement"
)

// Loader reads a recorded payload. archive.Records implements it.
type Loader interface {
	LoadPayload(ctx context.Context, symbol, function string) ([]byte, error)
}

// Snapshot implements collector.FundamentalCollector over recorded payloads.
type Snapshot struct {
	loader Loader
}

// New creates a replay collector.
func New(loader Loader) *Snapshot {
	return &Snapshot{loader: loader}
}

func (s *Snapshot) Name() string { return "snapshot" }

func (s *Snapshot) Init(cfg collector.Config) error {
	if s.loader == nil {
		return core.Errorf(core.ErrConfigMissing, "snapshot: archive is not configured")
	}
	return nil
}

func (s *Snapshot) FetchOverview(ctx context.Context, symbol string) (core.Overview, error) {
	body, err := s.load(ctx, symbol, alphavantage.FunctionOverview)
	if err != nil {
		return core.Overview{}, err
	}
	return alphavantage.ParseOverview(body)
}

func (s *Snapshot) FetchStatements(ctx context.Context, symbol string, kind statement.Kind) (*statement.Table, error) {
	body, err := s.load(ctx, symbol, string(kind))
	if err != nil {
		return nil, err
	}
	return alphavantage.ParseStatements(kind, body)
}

func (s *Snapshot) load(ctx context.Context, symbol, function string) ([]byte, error) {
	sym, err := collector.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	body, err := s.loader.LoadPayload(ctx, sym, function)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s %s: %w", sym, function, err)
	}
	return body, nil
}

var _ collector.FundamentalCollector = (*Snapshot)(nil)
