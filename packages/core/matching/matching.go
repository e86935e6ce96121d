package matching

import (
	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
	"github.com/abdul-hamid-achik/hitassert/packages/matcher"
)

// Outcome is the verdict of one engine operation. Passed is true exactly
// when Kinds is empty.
type Outcome struct {
	Passed bool
	Kinds  []diagnostic.Kind

	Missing    []matcher.Matcher
	Unexpected []any
	Found      []any
	Matched    []any

	ExpectedSize int
	ActualSize   int
}

func (o *Outcome) fail(k diagnostic.Kind) {
	o.Kinds = append(o.Kinds, k)
	o.Passed = false
}

// ContainsExactly requires every matcher to consume a distinct element and
// every element to be consumed.
func ContainsExactly(actual []any, ms []matcher.Matcher) (Outcome, *Ordering) {
	c := Consume(actual, ms)
	out := Outcome{Passed: true, ExpectedSize: len(ms), ActualSize: len(actual)}

	if len(c.Missing) > 0 {
		out.fail(diagnostic.MissingRequired)
		out.Missing = pick(ms, c.Missing)
	}
	if unconsumed := c.Unconsumed(); len(unconsumed) > 0 {
		out.fail(diagnostic.UnexpectedPresent)
		out.Unexpected = make([]any, len(unconsumed))
		for k, j := range unconsumed {
			out.Unexpected[k] = actual[j]
		}
	}

	return out, newOrdering(out.Passed, c.Assignment)
}

// ContainsAtLeast requires every matcher to consume a distinct element.
// Leftover elements are ignored.
func ContainsAtLeast(actual []any, ms []matcher.Matcher) (Outcome, *Ordering) {
	c := Consume(actual, ms)
	out := Outcome{Passed: true, ExpectedSize: len(ms), ActualSize: len(actual)}

	if len(c.Missing) > 0 {
		out.fail(diagnostic.MissingRequired)
		out.Missing = pick(ms, c.Missing)
	}

	return out, newOrdering(out.Passed, c.Assignment)
}

// ContainsNoneOf fails when any element equals one of values. Found lists
// each offending value at most once, in values order.
func ContainsNoneOf(actual []any, values []any) Outcome {
	out := Outcome{Passed: true, ExpectedSize: len(values), ActualSize: len(actual)}

	for _, v := range values {
		eq := matcher.Equals(v)
		if ContainsPredicate(out.Found, eq).Passed {
			continue
		}
		if ContainsPredicate(actual, eq).Passed {
			out.Found = append(out.Found, v)
		}
	}
	if len(out.Found) > 0 {
		out.fail(diagnostic.ForbiddenPresent)
	}

	return out
}

// ContainsPredicate passes when at least one element satisfies m.
func ContainsPredicate(actual []any, m matcher.Matcher) Outcome {
	out := Outcome{ExpectedSize: 1, ActualSize: len(actual)}
	for _, v := range actual {
		if m.Test(v) {
			out.Passed = true
			return out
		}
	}
	out.fail(diagnostic.NoMatchFound)
	out.Missing = []matcher.Matcher{m}
	return out
}

// NotContainsPredicate passes when no element satisfies m. Matched lists
// every element that did.
func NotContainsPredicate(actual []any, m matcher.Matcher) Outcome {
	out := Outcome{Passed: true, ExpectedSize: 1, ActualSize: len(actual)}
	for _, v := range actual {
		if m.Test(v) {
			out.Matched = append(out.Matched, v)
		}
	}
	if len(out.Matched) > 0 {
		out.fail(diagnostic.UnwantedMatchFound)
	}
	return out
}

// HasSize passes when actual has exactly n elements.
func HasSize(actual []any, n int) Outcome {
	out := Outcome{Passed: true, ExpectedSize: n, ActualSize: len(actual)}
	if len(actual) != n {
		out.fail(diagnostic.SizeMismatch)
	}
	return out
}

func pick(ms []matcher.Matcher, idx []int) []matcher.Matcher {
	out := make([]matcher.Matcher, len(idx))
	for k, i := range idx {
		out[k] = ms[i]
	}
	return out
}
