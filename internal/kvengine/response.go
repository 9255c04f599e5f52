// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package kvengine

// Response is a single page of scan results (spec.md §3.4).
type Response struct {
	// Values holds the raw JSON bytes of every record that matched the
	// predicate, in key order.
	Values [][]byte
	// More reports whether additional matching records may exist past
	// LastKey.
	More bool
	// LastKey is the key of the last record in Values. A caller
	// resuming the scan passes this back as the next request's
	// StartKey; the record at that exact key is excluded from the
	// resumed page (spec.md §9's start_key exclusion rule).
	LastKey []byte

	// RecordsVisited and RecordsMatched are per-page counters fed to
	// the scanquery_records_visited_total/scanquery_records_matched_total
	// metrics; they carry no resumption semantics.
	RecordsVisited int
	RecordsMatched int
}
