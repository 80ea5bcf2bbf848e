package selector

import (
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Resolve extracts the value identified by sel from a decoded JSON
// document. The document is the output of encoding/json unmarshalling
// into any: objects are map[string]any, arrays are []any.
//
// The second return value is false when the selector resolves to
// nothing: an empty selector, a missing or null intermediate value on
// a dotted path, or a path query with no matches. Resolution stops at
// the first missing step; it never returns an error.
//
// Path queries that match multiple nodes yield the first match. The
// query engine walks documents in source order, so "first" is the
// first node encountered in the document.
func Resolve(doc any, sel string) (any, bool) {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return nil, false
	}

	if strings.HasPrefix(sel, "$") {
		return resolveQuery(doc, sel)
	}
	return resolvePath(doc, sel)
}

// resolveQuery evaluates a "$"-prefixed JSONPath expression.
// A query that fails to parse is treated the same as one that matches
// nothing.
func resolveQuery(doc any, sel string) (any, bool) {
	expr, err := jp.ParseString(sel)
	if err != nil {
		return nil, false
	}

	matches := expr.Get(doc)
	if len(matches) == 0 {
		return nil, false
	}
	return matches[0], true
}

// resolvePath walks a dot-separated property path. Empty segments
// (from leading, trailing, or doubled dots) are skipped. The walk
// short-circuits to undefined the moment an intermediate value is
// absent, null, or not an object.
func resolvePath(doc any, sel string) (any, bool) {
	cur := doc
	for _, seg := range strings.Split(sel, ".") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}

		next, ok := obj[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}

	if cur == nil {
		return nil, false
	}
	return cur, true
}
