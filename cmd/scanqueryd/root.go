// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the scanqueryd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scanqueryd",
		Short: "scanqueryd - a read-only range-scan query service",
		Long: `scanqueryd serves bounded range scans with predicate filtering
over an embedded ordered key-value store of JSON trace records.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newCheckQueryCmd())

	return cmd
}
