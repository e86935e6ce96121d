// Package parser reads hitassert check files.
//
// A check file is YAML with an optional variables map and a list of checks.
// Each check names a source for the actual collection, display labels, and
// one expectation:
//
//	checks:
//	  - name: users
//	    source: {inline: [alice, bob]}
//	    expect:
//	      op: contains_exactly
//	      values: [alice, bob]
//	      in_order: true
//
// Files are validated against an embedded JSON schema before decoding so
// every structural problem is reported at once.
package parser
