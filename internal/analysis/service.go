package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newthinker/valuator/internal/collector"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/statement"
	"github.com/newthinker/valuator/internal/storage/archive"
	"go.uber.org/zap"
)

// Recorder receives service outcomes. metrics.Registry implements it.
type Recorder interface {
	RecordAnalysis(status string, duration float64)
	RecordUnavailable(metric, reason string)
	RecordArchiveWrite(kind string, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordAnalysis(string, float64)   {}
func (nopRecorder) RecordUnavailable(string, string) {}
func (nopRecorder) RecordArchiveWrite(string, error) {}

// Service fetches a company's data, analyzes it and archives the report.
type Service struct {
	collector collector.FundamentalCollector
	analyzer  *Analyzer
	records   *archive.Records
	metrics   Recorder
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithArchive saves every report.
func WithArchive(r *archive.Records) Option {
	return func(s *Service) { s.records = r }
}

// WithRecorder reports outcomes, typically to metrics.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a service over one collector.
func NewService(c collector.FundamentalCollector, a *Analyzer, opts ...Option) *Service {
	s := &Service{
		collector: c,
		analyzer:  a,
		metrics:   nopRecorder{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run analyzes one ticker. A failed fetch leaves that input absent and is
// listed in the report warnings. Run fails only for an invalid symbol, a
// cancelled context, or when nothing at all could be fetched.
func (s *Service) Run(ctx context.Context, symbol string) (Report, error) {
	start := time.Now()
	report, err := s.run(ctx, symbol)

	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordAnalysis(status, time.Since(start).Seconds())
	return report, err
}

func (s *Service) run(ctx context.Context, symbol string) (Report, error) {
	sym, err := collector.NormalizeSymbol(symbol)
	if err != nil {
		return Report{}, err
	}
	log := s.logger.With(zap.String("symbol", sym), zap.String("collector", s.collector.Name()))

	in := Input{Symbol: sym}
	var fetchErrs []error
	var warnings []string
	fail := func(what string, err error) {
		fetchErrs = append(fetchErrs, err)
		warnings = append(warnings, fmt.Sprintf("%s: %v", what, err))
		log.Warn("fetch failed", zap.String("function", what), zap.Error(err))
	}

	in.Overview, err = s.collector.FetchOverview(ctx, sym)
	switch {
	case err != nil:
		fail("OVERVIEW", err)
	case in.Overview.IsEmpty():
		fail("OVERVIEW", core.Errorf(core.ErrNoData, "empty overview"))
	}

	for _, kind := range statement.Kinds {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		t, err := s.collector.FetchStatements(ctx, sym, kind)
		if err != nil {
			fail(string(kind), err)
			continue
		}
		in.set(kind, t)
	}

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if len(fetchErrs) == 1+len(statement.Kinds) {
		return Report{}, core.WrapError(core.ErrNoData, fmt.Errorf("%s: %w", sym, errors.Join(fetchErrs...)))
	}

	report := s.analyzer.Analyze(in)
	report.Warnings = warnings

	for _, m := range report.Unavailable() {
		s.metrics.RecordUnavailable(m.Name, m.ReasonCode())
	}

	if s.records.Enabled() {
		path, err := s.records.SaveReport(ctx, sym, report.GeneratedAt, report.ID, report)
		s.metrics.RecordArchiveWrite("report", err)
		if err != nil {
			log.Warn("failed to archive report", zap.Error(err))
		} else {
			report.ArchivePath = path
		}
	}

	log.Info("analysis complete",
		zap.String("report_id", report.ID),
		zap.Int("metrics", len(report.Metrics)),
		zap.Int("unavailable", len(report.Unavailable())),
	)
	return report, nil
}
