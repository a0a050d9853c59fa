package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/newthinker/valuator/internal/analysis"
	"github.com/newthinker/valuator/internal/display"
	"github.com/newthinker/valuator/internal/logger"
	"github.com/spf13/cobra"
)

var (
	analyzeYears   int
	analyzeGrowth  float64
	analyzeJSON    bool
	analyzeDetails bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Analyze one company",
	Long:  "Fetch fundamentals for a ticker and print ratios, F-Score, growth, CAPM and DCF results",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeYears, "years", 0, "growth lookback in years (default from config)")
	analyzeCmd.Flags().Float64Var(&analyzeGrowth, "growth", 0, "override the DCF growth rate, e.g. 0.05")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeDetails, "details", false, "include the F-Score and DCF breakdown")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("years") {
		cfg.Valuation.Years = analyzeYears
	}
	if cmd.Flags().Changed("growth") {
		cfg.Valuation.GrowthOverride = &analyzeGrowth
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	svc, err := buildService(cfg, log, nil, offline)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := svc.Run(ctx, args[0])
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", args[0], err)
	}

	return printReport(cmd.OutOrStdout(), report, analyzeJSON, analyzeDetails)
}

func printReport(w io.Writer, report analysis.Report, asJSON, details bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	if err := display.Summary(w, report); err != nil {
		return err
	}
	if details {
		return display.Breakdown(w, report)
	}
	return nil
}
