// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package main

import (
	"encoding/json"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/scanquery/scanquery/internal/config"
	"github.com/scanquery/scanquery/internal/kvengine"
	"github.com/scanquery/scanquery/internal/predicate"
)

// newScanCmd creates the scan subcommand, a one-shot CLI equivalent of
// POST /v1/scan for ad hoc inspection of a data directory.
func newScanCmd() *cobra.Command {
	var dataDir, queryPath, startKey, endKey string
	var maxCount int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single bounded scan against a data directory",
		Long: `Run a single bounded scan against an embedded data directory and
print the matching records as JSON lines, without starting a server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, dataDir, queryPath, startKey, endKey, maxCount)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data_dir", "", "path to the data directory (required)")
	cmd.Flags().StringVar(&queryPath, "query", "", "path to a JSON predicate document (omit to match everything)")
	cmd.Flags().StringVar(&startKey, "start_key", "", "resume key, exclusive (raw bytes as UTF-8)")
	cmd.Flags().StringVar(&endKey, "end_key", "", "end key, exclusive (raw bytes as UTF-8)")
	cmd.Flags().IntVar(&maxCount, "max_count", config.DefaultMaxCount, "maximum records to return (0 = unbounded)")

	return cmd
}

func runScan(cmd *cobra.Command, dataDir, queryPath, startKey, endKey string, maxCount int) error {
	if dataDir == "" {
		return oops.Code("CONFIG_INVALID").Errorf("--data_dir is required")
	}

	var pred predicate.Predicate
	if queryPath != "" {
		data, err := os.ReadFile(queryPath)
		if err != nil {
			return oops.Code("QUERY_READ_FAILED").With("path", queryPath).Wrap(err)
		}
		compiled, err := predicate.Compile(data)
		if err != nil {
			return oops.Code("QUERY_COMPILE_FAILED").With("path", queryPath).Wrap(err)
		}
		pred = compiled
	}

	instance, err := kvengine.Open(cmd.Context(), kvengine.Config{Dir: dataDir, Mode: kvengine.ModeReadOnly})
	if err != nil {
		return oops.Code("STORE_OPEN_FAILED").With("data_dir", dataDir).Wrap(err)
	}
	defer func() { _ = instance.Close() }()

	resp, err := instance.Scan(cmd.Context(), kvengine.ScanRequest{
		Predicate: pred,
		StartKey:  []byte(startKey),
		EndKey:    []byte(endKey),
		MaxCount:  maxCount,
	})
	if err != nil {
		return oops.Code("SCAN_FAILED").With("data_dir", dataDir).Wrap(err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, v := range resp.Values {
		var raw json.RawMessage = v
		if err := enc.Encode(raw); err != nil {
			return oops.Code("SCAN_OUTPUT_FAILED").Wrap(err)
		}
	}

	cmd.PrintErrf("visited=%d matched=%d more=%t\n", resp.RecordsVisited, resp.RecordsMatched, resp.More)
	return nil
}
