// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package predicate

import (
	"github.com/samber/oops"
)

// ErrSyntax classifies every compile-time failure spec.md §7 calls
// PredicateSyntax: malformed JSON, missing type, unknown tag, a
// missing or mistyped required field, an ill-formed path, or a bad
// op string. Callers should treat any non-nil Compile error as this
// kind; there is no partial tree on failure.
const ErrSyntax = "PREDICATE_SYNTAX"

func syntaxErrorf(format string, args ...any) error {
	return oops.Code(ErrSyntax).Errorf(format, args...)
}

func syntaxError(ctxKey string, ctxVal any, format string, args ...any) error {
	return oops.Code(ErrSyntax).With(ctxKey, ctxVal).Errorf(format, args...)
}
