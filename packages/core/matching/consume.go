package matching

import (
	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
	"github.com/abdul-hamid-achik/hitassert/packages/matcher"
)

// Assignment maps matcher indices to the element each consumed, in
// increasing matcher order. Each element index appears at most once.
type Assignment []diagnostic.Pair

// Consumption is the outcome of one greedy pass.
type Consumption struct {
	Assignment Assignment
	// Missing holds the indices of matchers that found no free element.
	Missing []int
	// Consumed marks, per actual index, whether a matcher took the element.
	Consumed []bool
}

// Consume assigns each matcher, in order, to the lowest indexed unconsumed
// element it accepts.
func Consume(actual []any, ms []matcher.Matcher) Consumption {
	c := Consumption{
		Assignment: make(Assignment, 0, len(ms)),
		Consumed:   make([]bool, len(actual)),
	}

	for i, m := range ms {
		found := false
		for j, v := range actual {
			if c.Consumed[j] || !m.Test(v) {
				continue
			}
			c.Consumed[j] = true
			c.Assignment = append(c.Assignment, diagnostic.Pair{Matcher: i, Element: j})
			found = true
			break
		}
		if !found {
			c.Missing = append(c.Missing, i)
		}
	}

	return c
}

// Unconsumed returns the indices of elements no matcher took.
func (c Consumption) Unconsumed() []int {
	var out []int
	for j, used := range c.Consumed {
		if !used {
			out = append(out, j)
		}
	}
	return out
}
