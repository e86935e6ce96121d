package subjects

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitassert/packages/core/matching"
	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
	"github.com/abdul-hamid-achik/hitassert/packages/matcher"
)

// Options configures how a collection is labelled in failure records.
type Options struct {
	// ContainerName labels the collection, e.g. "files". Defaults to "collection".
	ContainerName string
	// ElementPluralName labels its elements, e.g. "paths". Defaults to "elements".
	ElementPluralName string
	// Sortable allows renderers to sort lists for display.
	Sortable bool
	// Subject is the call chain that produced the value, e.g. "target.files".
	Subject string
}

// CollectionSubject is a fluent handle over an ordered sequence.
type CollectionSubject struct {
	actual []any
	opts   Options
	sink   diagnostic.Sink
}

// New creates a CollectionSubject over actual. The slice is copied; the
// caller's data is never modified. A nil sink discards failures.
func New(sink diagnostic.Sink, actual []any, opts Options) *CollectionSubject {
	if sink == nil {
		sink = diagnostic.Discard
	}
	values := make([]any, len(actual))
	copy(values, actual)
	return &CollectionSubject{actual: values, opts: opts, sink: sink}
}

// Of creates a CollectionSubject from a typed slice.
func Of[T any](sink diagnostic.Sink, actual []T, opts Options) *CollectionSubject {
	values := make([]any, len(actual))
	for i, v := range actual {
		values[i] = v
	}
	return New(sink, values, opts)
}

// FromValue creates a CollectionSubject from any slice, array or map value.
// See ToSlice for how maps are ordered.
func FromValue(sink diagnostic.Sink, actual any, opts Options) (*CollectionSubject, error) {
	values, err := ToSlice(actual)
	if err != nil {
		return nil, err
	}
	return New(sink, values, opts), nil
}

// Actual returns a copy of the wrapped sequence.
func (s *CollectionSubject) Actual() []any {
	out := make([]any, len(s.actual))
	copy(out, s.actual)
	return out
}

// Options returns the subject's display settings.
func (s *CollectionSubject) Options() Options {
	return s.opts
}

// Size returns a subject over the collection length.
func (s *CollectionSubject) Size() *IntSubject {
	return &IntSubject{actual: len(s.actual), sink: s.sink, subject: s.label() + ".size()"}
}

// HasSize checks the collection has exactly n elements.
func (s *CollectionSubject) HasSize(n int) *CollectionSubject {
	if out := matching.HasSize(s.actual, n); !out.Passed {
		s.Size().report(diagnostic.OpHasSize, diagnostic.SizeMismatch, n, s.record)
	}
	return s
}

// IsEmpty checks the collection has no elements.
func (s *CollectionSubject) IsEmpty() *CollectionSubject {
	if out := matching.HasSize(s.actual, 0); !out.Passed {
		s.Size().report(diagnostic.OpIsEmpty, diagnostic.SizeMismatch, 0, s.record)
	}
	return s
}

// Contains checks that some element equals v.
func (s *CollectionSubject) Contains(v any) *CollectionSubject {
	m := matcher.Equals(v)
	out := matching.ContainsPredicate(s.actual, m)
	if !out.Passed {
		r := s.record(diagnostic.OpContains, diagnostic.MissingRequired)
		r.Expected = []string{m.Description()}
		r.Missing = []string{m.Description()}
		s.sink.Report(r)
	}
	return s
}

// NotContains checks that no element equals v.
func (s *CollectionSubject) NotContains(v any) *CollectionSubject {
	out := matching.ContainsNoneOf(s.actual, []any{v})
	if !out.Passed {
		r := s.record(diagnostic.OpNotContains, out.Kinds...)
		r.Expected = []string{matcher.Describe(v)}
		r.Found = out.Found
		s.sink.Report(r)
	}
	return s
}

// ContainsExactly checks the collection holds exactly values, with
// multiplicity. Use the returned Ordered to also require their order.
func (s *CollectionSubject) ContainsExactly(values ...any) *Ordered {
	return s.exactly(diagnostic.OpContainsExactly, matcher.EqualsAll(values...))
}

// ContainsExactlyIn is ContainsExactly with the expected values given as a
// collection, converted with ToSlice.
func (s *CollectionSubject) ContainsExactlyIn(expected any) *Ordered {
	values, ok := s.expand(diagnostic.OpContainsExactly, expected)
	if !ok {
		return failedOrdered(s)
	}
	return s.ContainsExactly(values...)
}

// ContainsExactlyPredicates checks each matcher consumes a distinct element
// and no element is left over.
func (s *CollectionSubject) ContainsExactlyPredicates(ms ...matcher.Matcher) *Ordered {
	return s.exactly(diagnostic.OpContainsExactlyPredicates, ms)
}

// ContainsAtLeast checks the collection holds values, with multiplicity.
// Other elements are allowed.
func (s *CollectionSubject) ContainsAtLeast(values ...any) *Ordered {
	return s.atLeast(diagnostic.OpContainsAtLeast, matcher.EqualsAll(values...))
}

// ContainsAtLeastIn is ContainsAtLeast with the expected values given as a
// collection, converted with ToSlice.
func (s *CollectionSubject) ContainsAtLeastIn(expected any) *Ordered {
	values, ok := s.expand(diagnostic.OpContainsAtLeast, expected)
	if !ok {
		return failedOrdered(s)
	}
	return s.ContainsAtLeast(values...)
}

// ContainsAtLeastPredicates checks each matcher consumes a distinct element.
func (s *CollectionSubject) ContainsAtLeastPredicates(ms ...matcher.Matcher) *Ordered {
	return s.atLeast(diagnostic.OpContainsAtLeastPredicates, ms)
}

// ContainsNoneOf checks that no element equals any of values.
func (s *CollectionSubject) ContainsNoneOf(values ...any) *CollectionSubject {
	out := matching.ContainsNoneOf(s.actual, values)
	if !out.Passed {
		r := s.record(diagnostic.OpContainsNoneOf, out.Kinds...)
		r.Expected = matcher.Descriptions(matcher.EqualsAll(values...))
		r.Found = out.Found
		s.sink.Report(r)
	}
	return s
}

// ContainsNoneIn is ContainsNoneOf with the values given as a collection.
func (s *CollectionSubject) ContainsNoneIn(values any) *CollectionSubject {
	expanded, ok := s.expand(diagnostic.OpContainsNoneOf, values)
	if !ok {
		return s
	}
	return s.ContainsNoneOf(expanded...)
}

// ContainsPredicate checks that at least one element satisfies m.
func (s *CollectionSubject) ContainsPredicate(m matcher.Matcher) *CollectionSubject {
	out := matching.ContainsPredicate(s.actual, m)
	if !out.Passed {
		r := s.record(diagnostic.OpContainsPredicate, out.Kinds...)
		r.Expected = []string{m.Description()}
		r.Missing = []string{m.Description()}
		s.sink.Report(r)
	}
	return s
}

// NotContainsPredicate checks that no element satisfies m.
func (s *CollectionSubject) NotContainsPredicate(m matcher.Matcher) *CollectionSubject {
	out := matching.NotContainsPredicate(s.actual, m)
	if !out.Passed {
		r := s.record(diagnostic.OpNotContainsPredicate, out.Kinds...)
		r.Expected = []string{m.Description()}
		r.Matched = out.Matched
		s.sink.Report(r)
	}
	return s
}

// Offset returns a subject for the element at index i. An out of range
// index is reported once and the returned subject discards further failures.
func (s *CollectionSubject) Offset(i int) *ValueSubject {
	label := fmt.Sprintf("%s[%d]", s.label(), i)
	if i < 0 || i >= len(s.actual) {
		r := s.record(diagnostic.OpOffset, diagnostic.SizeMismatch)
		r.ExpectedSize = i + 1
		r.ActualSize = len(s.actual)
		r.Message = fmt.Sprintf("expected %s to have an element at offset %d, size is %d", s.containerLabel(), i, len(s.actual))
		s.sink.Report(r)
		return &ValueSubject{sink: diagnostic.Discard, subject: label}
	}
	return &ValueSubject{actual: s.actual[i], sink: s.sink, subject: label}
}

// TransformOptions describes a derived collection. Loop flattens each
// element into zero or more elements, Filter keeps matching elements, and
// Map converts each survivor. Steps run in that order; nil steps are skipped.
type TransformOptions struct {
	Desc   string
	Loop   func(any) []any
	Filter *matcher.Matcher
	Map    func(any) any
}

// Transform returns a new subject over a derived collection. It shares the
// sink and display settings; the subject label records the transform.
func (s *CollectionSubject) Transform(t TransformOptions) *CollectionSubject {
	values := s.actual
	if t.Loop != nil {
		var flat []any
		for _, v := range values {
			flat = append(flat, t.Loop(v)...)
		}
		values = flat
	}
	if t.Filter != nil {
		var kept []any
		for _, v := range values {
			if t.Filter.Test(v) {
				kept = append(kept, v)
			}
		}
		values = kept
	}
	if t.Map != nil {
		mapped := make([]any, len(values))
		for i, v := range values {
			mapped[i] = t.Map(v)
		}
		values = mapped
	}

	desc := t.Desc
	if desc == "" && t.Filter != nil {
		desc = "filter=" + t.Filter.Description()
	}
	opts := s.opts
	opts.Subject = fmt.Sprintf("%s.transform(%s)", s.label(), desc)
	return New(s.sink, values, opts)
}

func (s *CollectionSubject) exactly(op string, ms []matcher.Matcher) *Ordered {
	out, ord := matching.ContainsExactly(s.actual, ms)
	if !out.Passed {
		r := s.record(op, out.Kinds...)
		r.Expected = matcher.Descriptions(ms)
		r.Missing = matcher.Descriptions(out.Missing)
		r.Unexpected = out.Unexpected
		s.sink.Report(r)
	}
	return &Ordered{subject: s, ordering: ord, expected: matcher.Descriptions(ms)}
}

func (s *CollectionSubject) atLeast(op string, ms []matcher.Matcher) *Ordered {
	out, ord := matching.ContainsAtLeast(s.actual, ms)
	if !out.Passed {
		r := s.record(op, out.Kinds...)
		r.Expected = matcher.Descriptions(ms)
		r.Missing = matcher.Descriptions(out.Missing)
		s.sink.Report(r)
	}
	return &Ordered{subject: s, ordering: ord, expected: matcher.Descriptions(ms)}
}

// expand converts an expected-values collection, reporting a conversion
// failure instead of returning an error.
func (s *CollectionSubject) expand(op string, expected any) ([]any, bool) {
	values, err := ToSlice(expected)
	if err != nil {
		r := s.record(op, diagnostic.MissingRequired)
		r.Message = fmt.Sprintf("invalid expected values: %v", err)
		s.sink.Report(r)
		return nil, false
	}
	return values, true
}

func (s *CollectionSubject) record(op string, kinds ...diagnostic.Kind) diagnostic.Record {
	return diagnostic.Record{
		Kinds:         kinds,
		Operation:     op,
		Subject:       s.opts.Subject,
		Container:     s.opts.ContainerName,
		ElementPlural: s.opts.ElementPluralName,
		Sortable:      s.opts.Sortable,
		Actual:        s.Actual(),
		ActualSize:    len(s.actual),
	}
}

func (s *CollectionSubject) label() string {
	if s.opts.Subject != "" {
		return s.opts.Subject
	}
	return s.containerLabel()
}

func (s *CollectionSubject) containerLabel() string {
	if s.opts.ContainerName != "" {
		return s.opts.ContainerName
	}
	return "collection"
}
