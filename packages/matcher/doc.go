// Package matcher provides named predicates over a single value.
//
// A Matcher pairs a description with a pure test function. Matchers are
// plain values: they can be built ad hoc, copied freely and compared only
// by what they describe and how they behave.
//
// Built-in constructors:
//   - Equals: deep equality against a literal
//   - Contains, StartsWith, EndsWith: string and slice containment
//   - Matches, Regexp: glob and regular expression matching
//   - IsIn, TypeOf, Schema: membership, JSON type and JSON schema checks
//   - Not, Any, Never: combinators
package matcher
