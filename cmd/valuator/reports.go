package main

import (
	"fmt"

	"github.com/newthinker/valuator/internal/collector"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/logger"
	"github.com/newthinker/valuator/internal/storage/archive"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports [ticker]",
	Short: "List archived reports for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE:  runReports,
}

func init() {
	rootCmd.AddCommand(reportsCmd)
}

func runReports(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	sym, err := collector.NormalizeSymbol(args[0])
	if err != nil {
		return err
	}

	store, err := archive.New(cfg.Archive.Backend())
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	records := archive.NewRecords(store)
	if !records.Enabled() {
		return core.Errorf(core.ErrConfigMissing, "listing reports needs an archive (archive.type)")
	}

	paths, err := records.ListReports(cmd.Context(), sym)
	if err != nil {
		return fmt.Errorf("listing reports for %s: %w", sym, err)
	}
	out := cmd.OutOrStdout()
	if len(paths) == 0 {
		fmt.Fprintf(out, "no archived reports for %s\n", sym)
		return nil
	}
	for _, p := range paths {
		fmt.Fprintln(out, p)
	}
	return nil
}
