package runner

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitassert/packages/core/env"
	"github.com/abdul-hamid-achik/hitassert/packages/core/parser"
	"github.com/abdul-hamid-achik/hitassert/packages/matcher"
	"github.com/abdul-hamid-achik/hitassert/packages/source"
	"github.com/abdul-hamid-achik/hitassert/packages/subjects"
)

// dispatch runs one expectation against the subject. Failures go to the
// subject's sink; the returned error is for expectations that cannot be
// evaluated at all, such as a bad regexp.
func dispatch(s *subjects.CollectionSubject, exp *parser.Expectation, baseDir string, resolver *env.Resolver) error {
	values := make([]any, len(exp.Values))
	for i, v := range resolver.ResolveValues(exp.Values) {
		values[i] = source.Normalize(v)
	}

	resolve := func(v any) any { return source.Normalize(resolver.ResolveValue(v)) }
	build := func(specs ...*parser.MatcherSpec) ([]matcher.Matcher, error) {
		resolved := make([]*parser.MatcherSpec, len(specs))
		for i, spec := range specs {
			resolved[i] = spec.Resolve(resolve)
		}
		ms, err := parser.BuildAll(resolved, baseDir)
		if err != nil {
			return nil, fmt.Errorf("building matcher: %w", err)
		}
		return ms, nil
	}

	switch exp.Operator {
	case parser.OpContainsExactly, parser.OpContainsAtLeast:
		var ord *subjects.Ordered
		if exp.Matchers != nil {
			ms, err := build(exp.Matchers...)
			if err != nil {
				return err
			}
			if exp.Operator == parser.OpContainsExactly {
				ord = s.ContainsExactlyPredicates(ms...)
			} else {
				ord = s.ContainsAtLeastPredicates(ms...)
			}
		} else if exp.Operator == parser.OpContainsExactly {
			ord = s.ContainsExactly(values...)
		} else {
			ord = s.ContainsAtLeast(values...)
		}
		if exp.InOrder {
			ord.InOrder()
		}

	case parser.OpContainsNoneOf:
		s.ContainsNoneOf(values...)

	case parser.OpContains:
		for _, v := range values {
			s.Contains(v)
		}

	case parser.OpNotContains:
		for _, v := range values {
			s.NotContains(v)
		}

	case parser.OpContainsPredicate, parser.OpNotContainsPredicate:
		ms, err := build(exp.Matcher)
		if err != nil {
			return err
		}
		if exp.Operator == parser.OpContainsPredicate {
			s.ContainsPredicate(ms[0])
		} else {
			s.NotContainsPredicate(ms[0])
		}

	case parser.OpHasSize:
		s.HasSize(exp.Size)

	case parser.OpIsEmpty:
		s.IsEmpty()

	default:
		return fmt.Errorf("unsupported operator: %s", exp.Operator)
	}

	return nil
}
