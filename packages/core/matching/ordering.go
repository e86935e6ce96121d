package matching

import (
	"sort"

	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
)

// Ordering is the deferred order check returned alongside a membership
// outcome. It holds its own copy of the assignment and can be checked any
// number of times with the same verdict.
type Ordering struct {
	membershipPassed bool
	assignment       Assignment
}

// OrderVerdict is the result of Ordering.Check.
type OrderVerdict struct {
	Passed bool
	// MembershipFailed is set when the membership check already failed; the
	// verdict is then a failure built from the partial assignment.
	MembershipFailed bool
	// Offending lists the assignment pairs where element order went backwards
	// relative to matcher order, each with its predecessor.
	Offending []diagnostic.Pair
}

func newOrdering(membershipPassed bool, a Assignment) *Ordering {
	sorted := make(Assignment, len(a))
	copy(sorted, a)
	sort.SliceStable(sorted, func(x, y int) bool {
		return sorted[x].Matcher < sorted[y].Matcher
	})
	return &Ordering{membershipPassed: membershipPassed, assignment: sorted}
}

// Assignment returns a copy of the pairs the order check inspects.
func (o *Ordering) Assignment() Assignment {
	out := make(Assignment, len(o.assignment))
	copy(out, o.assignment)
	return out
}

// Check passes when the consumed element indices, read in matcher order,
// are strictly increasing and membership passed.
func (o *Ordering) Check() OrderVerdict {
	v := OrderVerdict{Passed: true}

	lastAdded := -1
	for k := 1; k < len(o.assignment); k++ {
		prev, cur := o.assignment[k-1], o.assignment[k]
		if cur.Element > prev.Element {
			continue
		}
		if lastAdded != k-1 {
			v.Offending = append(v.Offending, prev)
		}
		v.Offending = append(v.Offending, cur)
		lastAdded = k
	}

	if len(v.Offending) > 0 {
		v.Passed = false
	}
	if !o.membershipPassed {
		v.Passed = false
		v.MembershipFailed = true
	}
	return v
}
