package subjects

import (
	"github.com/abdul-hamid-achik/hitassert/packages/core/matching"
	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
)

// Ordered is returned by the exactly and at-least operations. Calling
// InOrder additionally requires the matched elements to appear in the
// order the expectations were given; not calling it accepts any order.
type Ordered struct {
	subject  *CollectionSubject
	ordering *matching.Ordering
	expected []string
	// invalid marks an Ordered whose membership check could not run.
	invalid bool
}

func failedOrdered(s *CollectionSubject) *Ordered {
	return &Ordered{subject: s, invalid: true}
}

// Verdict runs the order check without reporting.
func (o *Ordered) Verdict() matching.OrderVerdict {
	if o.invalid {
		return matching.OrderVerdict{MembershipFailed: true}
	}
	return o.ordering.Check()
}

// InOrder reports an OutOfOrder failure when the matched elements are not
// in the requested order. If membership already failed, the check is a
// best effort over the partial assignment and always fails. It may be
// called repeatedly and returns the same verdict each time.
func (o *Ordered) InOrder() bool {
	v := o.Verdict()
	if v.Passed {
		return true
	}

	r := o.subject.record(diagnostic.OpInOrder, diagnostic.OutOfOrder)
	r.Expected = o.expected
	r.OutOfOrder = v.Offending
	if v.MembershipFailed {
		r.Message = "membership check failed; order checked against a partial match"
	}
	o.subject.sink.Report(r)
	return false
}
