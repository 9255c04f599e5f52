// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package predicate

import "strconv"

// Segment is one step of a compiled Path: either a JSON object key or
// a JSON array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path is the compiled form of a column string: an ordered list of
// Segment values, computed once at Predicate construction. Evaluation
// never reparses the original string.
type Path []Segment

// ParsePath compiles a column string into a Path per the grammar:
//
//	Path    = Segment ( "." Segment )*
//	Segment = ObjectKey | ArrayIndex
//	ObjectKey  = one or more bytes; "\" begins an escape
//	ArrayIndex = a segment whose first byte is "#", followed by base-10 digits
//
// Legal escapes are \., \", \', \\, \#; any other escape is an error.
// Empty segments are forbidden. A "#" only starts a segment: one that
// appears after any non-"#" byte already accumulated in the current
// segment is kept as a literal "#" in an object key — this mirrors
// the reference implementation's lenient (if ambiguous) behavior
// rather than rejecting it; see spec.md §4.1.2 and §9.
func ParsePath(path string) (Path, error) {
	if path == "" {
		return nil, syntaxError("path", path, "empty path")
	}

	var segments Path
	var tmp []byte
	isIndex := false
	i, n := 0, len(path)

	flush := func() error {
		if len(tmp) == 0 {
			return syntaxError("path", path, "empty path segment")
		}
		if isIndex {
			idx, err := strconv.Atoi(string(tmp))
			if err != nil || idx < 0 {
				return syntaxError("path", path, "invalid array index segment %q", string(tmp))
			}
			segments = append(segments, Segment{Index: idx, IsIndex: true})
		} else {
			segments = append(segments, Segment{Key: string(tmp)})
		}
		tmp = nil
		isIndex = false
		return nil
	}

	for i < n {
		b := path[i]
		switch {
		case b == '\\':
			i++
			if i == n {
				return nil, syntaxError("path", path, "dangling escape at end of path")
			}
			switch path[i] {
			case '.', '"', '\'', '\\', '#':
				tmp = append(tmp, path[i])
				i++
			default:
				return nil, syntaxError("path", path, "illegal escape \\%c", path[i])
			}
		case b == '.':
			if err := flush(); err != nil {
				return nil, err
			}
			i++
		case b == '#':
			if len(tmp) > 0 {
				// Not the first byte of this segment: literal '#'.
				tmp = append(tmp, b)
			} else if !isIndex {
				isIndex = true
			} else {
				return nil, syntaxError("path", path, "unexpected second '#' marker in segment")
			}
			i++
		default:
			tmp = append(tmp, b)
			i++
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return segments, nil
}

// Get navigates doc (the decoded form of a JSON document — nil,
// bool, json.Number, string, []any, or map[string]any) following
// path, returning the value found and whether the full path resolved.
func Get(doc any, path Path) (any, bool) {
	cur := doc
	for _, seg := range path {
		if seg.IsIndex {
			arr, ok := cur.([]any)
			if !ok || seg.Index < 0 || seg.Index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.Index]
		} else {
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			v, ok := obj[seg.Key]
			if !ok {
				return nil, false
			}
			cur = v
		}
	}
	return cur, true
}
