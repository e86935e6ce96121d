package subjects

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
	"github.com/abdul-hamid-achik/hitassert/packages/matcher"
)

// IntSubject asserts on an integer, such as a collection size.
type IntSubject struct {
	actual  int
	sink    diagnostic.Sink
	subject string
}

// NewIntSubject creates an IntSubject labelled with subject.
func NewIntSubject(sink diagnostic.Sink, actual int, subject string) *IntSubject {
	if sink == nil {
		sink = diagnostic.Discard
	}
	return &IntSubject{actual: actual, sink: sink, subject: subject}
}

// Actual returns the wrapped value.
func (s *IntSubject) Actual() int {
	return s.actual
}

// Equals checks the value is exactly n.
func (s *IntSubject) Equals(n int) *IntSubject {
	if s.actual != n {
		s.fail(diagnostic.OpEquals, n, fmt.Sprintf("expected %s to equal %d, got %d", s.label(), n, s.actual))
	}
	return s
}

// IsAtLeast checks the value is n or more.
func (s *IntSubject) IsAtLeast(n int) *IntSubject {
	if s.actual < n {
		s.fail(diagnostic.OpIsAtLeast, n, fmt.Sprintf("expected %s to be at least %d, got %d", s.label(), n, s.actual))
	}
	return s
}

// IsAtMost checks the value is n or less.
func (s *IntSubject) IsAtMost(n int) *IntSubject {
	if s.actual > n {
		s.fail(diagnostic.OpIsAtMost, n, fmt.Sprintf("expected %s to be at most %d, got %d", s.label(), n, s.actual))
	}
	return s
}

func (s *IntSubject) fail(op string, expected int, msg string) {
	s.sink.Report(diagnostic.Record{
		Kinds:        []diagnostic.Kind{diagnostic.ValueMismatch},
		Operation:    op,
		Subject:      s.subject,
		Actual:       []any{s.actual},
		Expected:     []string{fmt.Sprintf("%d", expected)},
		ExpectedSize: expected,
		ActualSize:   s.actual,
		Message:      msg,
	})
}

// report files a size failure on behalf of a collection, using base to
// fill in the collection's own record fields.
func (s *IntSubject) report(op string, kind diagnostic.Kind, expected int, base func(string, ...diagnostic.Kind) diagnostic.Record) {
	r := base(op, kind)
	r.ExpectedSize = expected
	r.ActualSize = s.actual
	s.sink.Report(r)
}

func (s *IntSubject) label() string {
	if s.subject == "" {
		return "value"
	}
	return s.subject
}

// ValueSubject asserts on a single arbitrary value.
type ValueSubject struct {
	actual  any
	sink    diagnostic.Sink
	subject string
}

// NewValueSubject creates a ValueSubject labelled with subject.
func NewValueSubject(sink diagnostic.Sink, actual any, subject string) *ValueSubject {
	if sink == nil {
		sink = diagnostic.Discard
	}
	return &ValueSubject{actual: actual, sink: sink, subject: subject}
}

// Actual returns the wrapped value.
func (s *ValueSubject) Actual() any {
	return s.actual
}

// Equals checks the value equals v.
func (s *ValueSubject) Equals(v any) *ValueSubject {
	m := matcher.Equals(v)
	if !m.Test(s.actual) {
		s.fail(diagnostic.OpEquals, m.Description(),
			fmt.Sprintf("expected %s to equal %s, got %s", s.label(), m.Description(), matcher.Describe(s.actual)))
	}
	return s
}

// NotEquals checks the value differs from v.
func (s *ValueSubject) NotEquals(v any) *ValueSubject {
	m := matcher.Equals(v)
	if m.Test(s.actual) {
		s.fail(diagnostic.OpNotEquals, m.Description(),
			fmt.Sprintf("expected %s not to equal %s", s.label(), m.Description()))
	}
	return s
}

// IsIn checks the value equals one of values.
func (s *ValueSubject) IsIn(values ...any) *ValueSubject {
	m := matcher.IsIn(values...)
	if !m.Test(s.actual) {
		s.fail(diagnostic.OpIsIn, m.Description(),
			fmt.Sprintf("expected %s to be in %s, got %s", s.label(), matcher.DescribeAll(values), matcher.Describe(s.actual)))
	}
	return s
}

// Satisfies checks the value against m.
func (s *ValueSubject) Satisfies(m matcher.Matcher) *ValueSubject {
	if !m.Test(s.actual) {
		s.fail(diagnostic.OpSatisfies, m.Description(),
			fmt.Sprintf("expected %s to be %s, got %s", s.label(), m.Description(), matcher.Describe(s.actual)))
	}
	return s
}

func (s *ValueSubject) fail(op, expected, msg string) {
	s.sink.Report(diagnostic.Record{
		Kinds:     []diagnostic.Kind{diagnostic.ValueMismatch},
		Operation: op,
		Subject:   s.subject,
		Actual:    []any{s.actual},
		Expected:  []string{expected},
		Message:   msg,
	})
}

func (s *ValueSubject) label() string {
	if s.subject == "" {
		return "value"
	}
	return s.subject
}
