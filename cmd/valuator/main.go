package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	offline bool
)

var rootCmd = &cobra.Command{
	Use:   "valuator",
	Short: "Valuator - quantitative fundamental analysis",
	Long: `Valuator fetches company fundamentals and computes valuation ratios,
the Piotroski F-Score, historical growth, CAPM cost of equity and a
simplified discounted cash flow.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "replay recorded provider payloads from the archive")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
