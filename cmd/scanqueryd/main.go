// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

// Command scanqueryd serves bounded range scans with predicate
// filtering over an embedded ordered key-value store.
package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/scanquery/scanquery/pkg/errutil"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := NewRootCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	if err == nil {
		return
	}

	if !errors.Is(err, errCheckQueryInvalid) {
		errutil.LogError(slog.Default(), "scanqueryd exited with error", err)
		cmd.PrintErrln(err)
	}
	os.Exit(1)
}
