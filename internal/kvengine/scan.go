// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package kvengine

import (
	"bytes"
	"context"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/scanquery/scanquery/internal/predicate"
)

// ScanRequest describes a single bounded, paginated range scan
// (spec.md §4.2).
type ScanRequest struct {
	// Predicate filters records; a nil Predicate matches everything.
	Predicate predicate.Predicate
	// StartKey, if non-empty, seeks to this key and excludes the
	// record found there (it was already returned by the prior page).
	StartKey []byte
	// EndKey, if non-empty, is an exclusive upper bound.
	EndKey []byte
	// MaxCount caps the number of matching records in the returned
	// page. Zero or negative means unbounded.
	MaxCount int
}

// Scan runs req against a single snapshot of the store (a badger
// read-only transaction, standing in for the reference's RocksDB
// snapshot) and returns one page of results. Every exit path releases
// the iterator and the snapshot.
//
// Badger's iterator has no native upper-bound option, unlike RocksDB's
// iterate_upper_bound; EndKey is enforced here with an explicit
// bytes.Compare against each visited key instead (DESIGN.md).
func (i *Instance) Scan(ctx context.Context, req ScanRequest) (*Response, error) {
	scanID := newScanID()

	txn := i.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	resp := &Response{}

	for it.Seek(req.StartKey); it.Valid(); it.Next() {
		select {
		case <-ctx.Done():
			return nil, iterationErrorf(scanID, ctx.Err())
		default:
		}

		item := it.Item()
		key := item.KeyCopy(nil)

		if len(req.EndKey) > 0 && bytes.Compare(key, req.EndKey) >= 0 {
			break
		}
		if len(req.StartKey) > 0 && bytes.Equal(key, req.StartKey) {
			continue
		}

		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, iterationErrorf(scanID, err)
		}
		resp.RecordsVisited++

		doc, err := predicate.ParseDocument(val)
		if err != nil {
			slog.Debug("scan skipped unparseable record",
				"scan_id", scanID, "key", string(key), "error", err)
			continue
		}
		if req.Predicate != nil && !req.Predicate.Evaluate(doc) {
			continue
		}

		resp.Values = append(resp.Values, val)
		resp.LastKey = key
		resp.RecordsMatched++

		if req.MaxCount > 0 && len(resp.Values) >= req.MaxCount {
			resp.More = true
			break
		}
	}

	return resp, nil
}
