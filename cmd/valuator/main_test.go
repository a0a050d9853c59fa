package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/valuator/internal/config"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/engine/fscore"
	"github.com/newthinker/valuator/internal/storage/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordedArchive returns a local archive holding the ACME fixture payloads.
func recordedArchive(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	store, err := archive.NewLocalFS(dir)
	require.NoError(t, err)
	rec := archive.NewRecords(store)

	for _, fn := range []string{"OVERVIEW", "INCOME_STATEMENT", "BALANCE_SHEET", "CASH_FLOW"} {
		data, err := os.ReadFile(filepath.Join("..", "..", "internal", "collector", "alphavantage", "testdata", fn+".json"))
		require.NoError(t, err)
		require.NoError(t, rec.RecordPayload(context.Background(), "ACME", fn, data))
	}
	return dir
}

func offlineConfig(t *testing.T) *config.Config {
	cfg := config.Defaults()
	cfg.Archive.Type = archive.TypeLocalFS
	cfg.Archive.Path = recordedArchive(t)
	return cfg
}

func TestBuildService_Offline(t *testing.T) {
	cfg := offlineConfig(t)

	svc, err := buildService(cfg, zap.NewNop(), nil, true)
	require.NoError(t, err)

	report, err := svc.Run(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "ACME", report.Symbol)
	assert.Equal(t, "Acme Corp", report.Header.Name)
	assert.Empty(t, report.Warnings)
	assert.NotEmpty(t, report.ArchivePath)

	score, ok := report.Metric(fscore.MetricFScore)
	require.True(t, ok)
	assert.True(t, score.IsAvailable())
}

func TestBuildService_OfflineWithoutArchive(t *testing.T) {
	_, err := buildService(config.Defaults(), zap.NewNop(), nil, true)
	assert.True(t, errors.Is(err, core.ErrConfigMissing), "got %v", err)
}

func TestBuildService_OnlineNeedsAPIKey(t *testing.T) {
	_, err := buildService(config.Defaults(), zap.NewNop(), nil, false)
	assert.True(t, errors.Is(err, core.ErrConfigMissing), "got %v", err)
}

func TestAnalyzeCommand_Offline(t *testing.T) {
	cfg := offlineConfig(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("archive:\n  type: localfs\n  path: "+cfg.Archive.Path+"\n"), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"analyze", "ACME", "--offline", "--details", "-c", cfgPath})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		offline, analyzeDetails, cfgFile = false, false, ""
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "ANALYSIS SUMMARY: ACME (Acme Corp)")
	assert.Contains(t, out.String(), "Piotroski_F_Score: 9.0000")
	assert.Contains(t, out.String(), "--- Simplified DCF ---")
}

func TestReportsCommand(t *testing.T) {
	cfg := offlineConfig(t)
	store, err := archive.NewLocalFS(cfg.Archive.Path)
	require.NoError(t, err)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	saved, err := archive.NewRecords(store).SaveReport(context.Background(), "ACME", at, "report-1", map[string]string{"symbol": "ACME"})
	require.NoError(t, err)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("archive:\n  type: localfs\n  path: "+cfg.Archive.Path+"\n"), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"reports", "acme", "-c", cfgPath})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		cfgFile = ""
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, saved+"\n", out.String())
}

func TestReportsCommand_NeedsArchive(t *testing.T) {
	rootCmd.SetArgs([]string{"reports", "ACME"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	assert.True(t, errors.Is(err, core.ErrConfigMissing), "got %v", err)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "valuator dev")
}
