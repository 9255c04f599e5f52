// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package predicate

import (
	"encoding/json"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// documentJSON decodes JSON the way the predicate evaluator needs it:
// numbers come back as json.Number rather than float64, so that a
// value like 7 (no fraction/exponent) can be told apart from 7.0 —
// matching the int64-vs-double type discrimination the reference
// implementation's JSON library (rapidjson) gives for free. The
// standard library's decoder can do the same with UseNumber, but
// json-iterator is the parser this pack's own Kubernetes client
// brings in for exactly this "fast, type-discriminating JSON
// document" role (see DESIGN.md), so the scan engine's hot per-record
// parse path uses it instead of encoding/json.
var documentJSON = jsoniter.Config{
	UseNumber: true,
}.Froze()

// ParseDocument decodes a single JSON value (object, array, or
// scalar) into its navigable form for Get/evaluation. A parse failure
// here is the spec.md §7 "RecordSkipped" case, never a hard error —
// callers in the scan engine are expected to skip the record on error
// rather than abort the scan.
func ParseDocument(raw []byte) (any, error) {
	var v any
	if err := documentJSON.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// isFloatLiteral reports whether a JSON number literal was written
// with a fraction or exponent, i.e. whether it should be treated as
// a float rather than an integer scalar.
func isFloatLiteral(n json.Number) bool {
	return strings.ContainsAny(string(n), ".eE")
}

// extract pulls a typed scalar out of a decoded JSON value, returning
// ok=false whenever the value is absent (handled by the caller before
// this is reached), of the wrong JSON kind, or — for the numeric
// kinds — written with the wrong literal shape (int64 extraction
// rejects "7.0", float64 extraction rejects "7"). This is the single
// generic dispatch point spec.md §9 asks for in place of the
// reference's three hand-duplicated template instantiations per
// operator.
func extract[T Scalar](v any) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case int64:
		num, ok := v.(json.Number)
		if !ok || isFloatLiteral(num) {
			return zero, false
		}
		i, err := num.Int64()
		if err != nil {
			return zero, false
		}
		return any(i).(T), true
	case float64:
		num, ok := v.(json.Number)
		if !ok || !isFloatLiteral(num) {
			return zero, false
		}
		f, err := num.Float64()
		if err != nil {
			return zero, false
		}
		return any(f).(T), true
	case string:
		s, ok := v.(string)
		if !ok {
			return zero, false
		}
		return any(s).(T), true
	default:
		return zero, false
	}
}

// requireInt64 parses a wire-format JSON number field as an int64,
// rejecting a value carrying a fraction or exponent (spec.md §4.1.1:
// "required fields present with the right JSON kinds").
func requireInt64(num json.Number) (int64, error) {
	if isFloatLiteral(num) {
		return 0, syntaxErrorf("expected integer literal, got %q", string(num))
	}
	return strconv.ParseInt(string(num), 10, 64)
}

// requireFloat64 parses a wire-format JSON number field as a float64.
// Unlike requireInt64 this accepts any numeric literal: a bare "5" is
// still a valid float constant for a Between<float>/RightCompare<float>
// node even though it has no fraction.
func requireFloat64(num json.Number) (float64, error) {
	return strconv.ParseFloat(string(num), 64)
}
