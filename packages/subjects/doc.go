// Package subjects provides fluent assertion handles over actual values.
//
// A CollectionSubject wraps an ordered sequence together with display
// settings and a diagnostic sink:
//
//	s := subjects.Of(sink, []string{"a", "b"}, subjects.Options{ContainerName: "names"})
//	s.ContainsExactly("b", "a").InOrder() // membership passes, order is reported
//	s.ContainsNoneOf("z").HasSize(2)
//
// Failures are reported to the sink and never abort the caller, so a chain
// keeps going after the first problem. Scalar subjects (IntSubject,
// ValueSubject) back the size and offset checks.
package subjects
