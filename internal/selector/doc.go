// Package selector extracts values from decoded JSON documents using a
// user-configured selector string.
//
// Two selector forms are supported:
//
//   - Path queries: selectors beginning with "$" are evaluated as
//     JSONPath expressions (e.g. "$.state.on", "$.channels[0].level").
//   - Dotted paths: any other selector is split on "." and walked
//     property-by-property (e.g. "state.on").
//
// Resolution never fails. A selector that matches nothing — including
// a malformed path query — reports "undefined" via the second return
// value, and the caller decides what that means.
package selector
