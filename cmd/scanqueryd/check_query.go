// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package main

import (
	"fmt"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/scanquery/scanquery/internal/predicate"
)

// newCheckQueryCmd creates the check-query subcommand: a pure syntax
// check of a predicate document, with no store access, for use in
// CI or authoring tools. Exits non-zero if the predicate is invalid.
func newCheckQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-query <path>",
		Short: "Validate a predicate document without running a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckQuery(cmd, args[0])
		},
	}

	return cmd
}

func runCheckQuery(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return oops.Code("QUERY_READ_FAILED").With("path", path).Wrap(err)
	}

	if err := predicate.CheckQuery(data); err != nil {
		cmd.PrintErrln(fmt.Sprintf("invalid: %v", err))
		return errCheckQueryInvalid
	}

	cmd.Println("valid")
	return nil
}

// errCheckQueryInvalid signals that the diagnostic was already printed
// to stderr. main.go silences cobra's own error printing and skips
// printing this error, so the message isn't shown twice.
var errCheckQueryInvalid = oops.Code("QUERY_INVALID").Errorf("predicate document is invalid")
