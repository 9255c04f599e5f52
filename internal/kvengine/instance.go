// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

// Package kvengine opens the ordered key-value store holding trace
// records and runs bounded, snapshot-consistent predicate scans over
// it (spec.md §4.2, §5). The store is badger/v4 standing in for the
// reference implementation's read-only/secondary RocksDB handle.
package kvengine

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Mode selects how an Instance attaches to the store directory,
// mirroring the reference's OpenForReadOnly and OpenAsSecondary handle
// kinds (spec.md §3.1).
type Mode int

const (
	// ModeReadOnly opens the directory directly; no writer may hold
	// the directory open concurrently.
	ModeReadOnly Mode = iota
	// ModeSecondary opens the primary's data directory (Dir) writable,
	// with the value log placed in a separate scratch directory
	// (SecondaryDir). Badger has no native secondary-instance concept,
	// and this is not a live follower: a writable open takes Dir's
	// exclusive lock, so it fails while a primary writer holds the
	// directory open (Open retries it, see Config).
	ModeSecondary
)

// Config describes how to open a store directory.
type Config struct {
	Dir  string
	Mode Mode

	// SecondaryDir is the follower's private scratch value directory.
	// Required when Mode is ModeSecondary, ignored otherwise.
	SecondaryDir string

	// OpenRetryAttempts and OpenRetryBaseDelay govern retrying a
	// secondary-mode open against a primary that has the directory
	// transiently locked. Retry happens only at open time — never
	// while a scan is in flight (spec.md §5).
	OpenRetryAttempts  uint64
	OpenRetryBaseDelay time.Duration
}

// Instance is a live handle on a store directory.
type Instance struct {
	db   *badger.DB
	mode Mode
}

// Open attaches to the store directory per cfg. In ModeSecondary it
// retries with exponential backoff — the primary may hold a transient
// lock during its own open — up to OpenRetryAttempts times.
func Open(ctx context.Context, cfg Config) (*Instance, error) {
	switch cfg.Mode {
	case ModeReadOnly:
		db, err := badger.Open(badger.DefaultOptions(cfg.Dir).WithReadOnly(true))
		if err != nil {
			return nil, openErrorf(cfg.Dir, err)
		}
		return &Instance{db: db, mode: cfg.Mode}, nil

	case ModeSecondary:
		if cfg.SecondaryDir == "" {
			return nil, openErrorf(cfg.Dir, errors.New("secondary mode requires a scratch value directory"))
		}
		opts := badger.DefaultOptions(cfg.Dir).
			WithValueDir(cfg.SecondaryDir).
			WithReadOnly(false)

		backoff := retry.WithMaxRetries(cfg.OpenRetryAttempts, retry.NewExponential(cfg.OpenRetryBaseDelay))
		var db *badger.DB
		if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			opened, err := badger.Open(opts)
			if err != nil {
				return retry.RetryableError(err)
			}
			db = opened
			return nil
		}); err != nil {
			return nil, openErrorf(cfg.Dir, err)
		}
		return &Instance{db: db, mode: cfg.Mode}, nil

	default:
		return nil, openErrorf(cfg.Dir, oops.Errorf("unknown mode %d", cfg.Mode))
	}
}

// Close releases the underlying store handle.
func (i *Instance) Close() error {
	if err := i.db.Close(); err != nil {
		return closeErrorf(i.db.Opts().Dir, err)
	}
	return nil
}

// newScanID produces a per-scan correlation identifier for logging; it
// has no bearing on scan semantics.
func newScanID() string {
	return ulid.Make().String()
}
