package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/newthinker/valuator/internal/analysis"
	"github.com/newthinker/valuator/internal/collector"
	"github.com/newthinker/valuator/internal/collector/alphavantage"
	"github.com/newthinker/valuator/internal/collector/snapshot"
	"github.com/newthinker/valuator/internal/config"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/metrics"
	"github.com/newthinker/valuator/internal/storage/archive"
	"go.uber.org/zap"
)

// loadConfig reads .env, the optional config file and the environment.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if cfgFile == "" {
		log.Debug("no config file specified, using defaults and environment")
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// buildService assembles collector, archive and analyzer. reg may be nil.
func buildService(cfg *config.Config, log *zap.Logger, reg *metrics.Registry, offline bool) (*analysis.Service, error) {
	store, err := archive.New(cfg.Archive.Backend())
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	records := archive.NewRecords(store)

	collectors := collector.NewRegistry()

	avOpts := []alphavantage.Option{alphavantage.WithLogger(log)}
	if cfg.AlphaVantage.Record {
		avOpts = append(avOpts, alphavantage.WithRecorder(records))
	}
	if reg != nil {
		avOpts = append(avOpts, alphavantage.WithObserver(reg.RecordCollectorRequest))
	}
	collectors.Register(alphavantage.New(cfg.AlphaVantage.APIKey, avOpts...))
	if records.Enabled() {
		collectors.Register(snapshot.New(records))
	}

	name := "alphavantage"
	if offline {
		name = "snapshot"
	}
	c, ok := collectors.Get(name)
	if !ok {
		return nil, core.Errorf(core.ErrConfigMissing, "%s collector needs an archive (archive.type)", name)
	}
	if err := c.Init(collector.Config{
		APIKey:  cfg.AlphaVantage.APIKey,
		BaseURL: cfg.AlphaVantage.BaseURL,
		Timeout: cfg.AlphaVantage.Timeout,
	}); err != nil {
		return nil, fmt.Errorf("initializing %s: %w", name, err)
	}

	opts := []analysis.Option{analysis.WithLogger(log)}
	if records.Enabled() {
		opts = append(opts, analysis.WithArchive(records))
	}
	if reg != nil {
		opts = append(opts, analysis.WithRecorder(reg))
	}

	log.Debug("service ready",
		zap.String("collector", c.Name()),
		zap.Strings("available", collectors.Names()),
		zap.Bool("archive", records.Enabled()))

	analyzer := analysis.NewAnalyzer(cfg.Valuation.Params(), log)
	return analysis.NewService(c, analyzer, opts...), nil
}
