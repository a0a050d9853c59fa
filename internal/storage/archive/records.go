package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"
)

// Path prefixes.
const (
	RawPrefix    = "raw"
	ReportPrefix = "reports"
)

// RawPath is where the raw provider payload for one function is kept.
func RawPath(symbol, function string) string {
	return path.Join(RawPrefix, strings.ToUpper(symbol), function+".json")
}

// ReportPath is where a finished report is kept, bucketed by UTC day.
func ReportPath(symbol string, at time.Time, id string) string {
	return path.Join(ReportPrefix, strings.ToUpper(symbol), at.UTC().Format("2006-01-02"), id+".json")
}

// Records stores payloads and reports on top of a Storage.
type Records struct {
	store Storage
}

// NewRecords wraps store. A nil store makes every write a no-op and every
// read fail.
func NewRecords(store Storage) *Records {
	return &Records{store: store}
}

// Enabled reports whether a backend is configured.
func (r *Records) Enabled() bool {
	return r != nil && r.store != nil
}

// RecordPayload keeps a raw provider response.
func (r *Records) RecordPayload(ctx context.Context, symbol, function string, payload []byte) error {
	if !r.Enabled() {
		return nil
	}
	if err := r.store.Write(ctx, RawPath(symbol, function), payload); err != nil {
		return fmt.Errorf("recording %s %s: %w", symbol, function, err)
	}
	return nil
}

// LoadPayload returns a previously recorded provider response.
func (r *Records) LoadPayload(ctx context.Context, symbol, function string) ([]byte, error) {
	if !r.Enabled() {
		return nil, fmt.Errorf("archive disabled")
	}
	return r.store.Read(ctx, RawPath(symbol, function))
}

// SaveReport writes report as indented JSON and returns its path.
func (r *Records) SaveReport(ctx context.Context, symbol string, at time.Time, id string, report any) (string, error) {
	if !r.Enabled() {
		return "", nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	p := ReportPath(symbol, at, id)
	if err := r.store.Write(ctx, p, data); err != nil {
		return "", fmt.Errorf("saving report %s: %w", p, err)
	}
	return p, nil
}

// ListReports returns the stored report paths for a symbol.
func (r *Records) ListReports(ctx context.Context, symbol string) ([]string, error) {
	if !r.Enabled() {
		return nil, nil
	}
	return r.store.List(ctx, path.Join(ReportPrefix, strings.ToUpper(symbol)))
}
