// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package kvengine

import "github.com/samber/oops"

// Error codes the scan engine reports, per spec.md §7.
const (
	ErrOpenFailure      = "OPEN_FAILURE"
	ErrCloseFailure     = "CLOSE_FAILURE"
	ErrIterationFailure = "ITERATION_FAILURE"
)

func openErrorf(dir string, err error) error {
	return oops.Code(ErrOpenFailure).With("dir", dir).Wrap(err)
}

func closeErrorf(dir string, err error) error {
	return oops.Code(ErrCloseFailure).With("dir", dir).Wrap(err)
}

func iterationErrorf(scanID string, err error) error {
	return oops.Code(ErrIterationFailure).With("scan_id", scanID).Wrap(err)
}
