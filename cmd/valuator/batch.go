package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/newthinker/valuator/internal/display"
	"github.com/newthinker/valuator/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batchWorkers int
	batchJSON    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [ticker...]",
	Short: "Analyze several companies concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "concurrent analyses (default from config)")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "print results as JSON")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	workers := cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		workers = batchWorkers
	}

	svc, err := buildService(cfg, log, nil, offline)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := svc.RunBatch(ctx, args, workers)

	out := cmd.OutOrStdout()
	if batchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(out, "\n%s: analysis failed: %v\n", res.Symbol, res.Err)
			continue
		}
		if err := display.Summary(out, *res.Report); err != nil {
			return err
		}
	}

	log.Debug("batch finished", zap.Int("symbols", len(results)), zap.Int("failed", failed))
	if failed == len(results) {
		return fmt.Errorf("all %d analyses failed", failed)
	}
	return nil
}
