package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Mercator Saturn - deterministic transaction screening engine",
	Long: `Mercator Saturn is a deterministic rule evaluation engine for screening
financial transactions in a payment network.

It provides:
  - Declarative YAML screening rules with nested conditions
  - Severity-based conflict resolution (block > flag > allow)
  - State-aware amount limits driven by observed network flow
  - Complete, auditable evaluation traces for every decision
  - Hot reload of rule files without dropping traffic`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
