// Package matching reconciles an actual ordered sequence against expected
// matchers.
//
// Every operation is built on greedy first-seen consumption: matchers are
// processed in caller order and each one takes the lowest indexed element
// it accepts that no earlier matcher has taken. This is not a maximum
// matching. An earlier matcher can take an element a later matcher needed,
// which then fails even though some other assignment would have succeeded.
//
// Operations:
//   - ContainsExactly: every matcher consumes an element and nothing is left over
//   - ContainsAtLeast: every matcher consumes an element, leftovers allowed
//   - ContainsNoneOf: none of the values occurs
//   - ContainsPredicate, NotContainsPredicate: existential checks
//   - HasSize: length check
//
// ContainsExactly and ContainsAtLeast return an Ordering whose Check
// verifies, on demand, that the consumed elements appear in the order the
// matchers were given.
package matching
