package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/hitassert/packages/matcher"
)

var matcherKinds = map[string]struct{}{
	"equals":      {},
	"contains":    {},
	"starts_with": {},
	"ends_with":   {},
	"matches":     {},
	"regexp":      {},
	"is_in":       {},
	"type":        {},
	"schema":      {},
	"not":         {},
	"any":         {},
	"never":       {},
}

// Build turns the MatcherSpec into a matcher. Relative schema paths are resolved
// against baseDir.
func (m *MatcherSpec) Build(baseDir string) (matcher.Matcher, error) {
	switch m.Kind {
	case "not":
		inner, err := m.Not.Build(baseDir)
		if err != nil {
			return matcher.Matcher{}, err
		}
		return matcher.Not(inner), nil
	case "equals":
		return matcher.Equals(m.Arg), nil
	case "contains":
		return matcher.Contains(m.Arg), nil
	case "starts_with":
		s, err := m.stringArg()
		if err != nil {
			return matcher.Matcher{}, err
		}
		return matcher.StartsWith(s), nil
	case "ends_with":
		s, err := m.stringArg()
		if err != nil {
			return matcher.Matcher{}, err
		}
		return matcher.EndsWith(s), nil
	case "matches":
		s, err := m.stringArg()
		if err != nil {
			return matcher.Matcher{}, err
		}
		return matcher.Matches(s), nil
	case "regexp":
		s, err := m.stringArg()
		if err != nil {
			return matcher.Matcher{}, err
		}
		return matcher.Regexp(s)
	case "is_in":
		values, ok := m.Arg.([]any)
		if !ok {
			return matcher.Matcher{}, fmt.Errorf("is_in: expected a list, got %T", m.Arg)
		}
		return matcher.IsIn(values...), nil
	case "type":
		s, err := m.stringArg()
		if err != nil {
			return matcher.Matcher{}, err
		}
		return matcher.TypeOf(s), nil
	case "schema":
		doc, err := m.schemaDocument(baseDir)
		if err != nil {
			return matcher.Matcher{}, err
		}
		return matcher.Schema(doc)
	case "any", "never":
		want, ok := m.Arg.(bool)
		if !ok {
			return matcher.Matcher{}, fmt.Errorf("%s: expected a boolean, got %T", m.Kind, m.Arg)
		}
		if want == (m.Kind == "any") {
			return matcher.Any(), nil
		}
		return matcher.Never(), nil
	}
	return matcher.Matcher{}, fmt.Errorf("unknown matcher: %s", m.Kind)
}

// BuildAll builds every spec in order.
func BuildAll(specs []*MatcherSpec, baseDir string) ([]matcher.Matcher, error) {
	out := make([]matcher.Matcher, 0, len(specs))
	for i, spec := range specs {
		m, err := spec.Build(baseDir)
		if err != nil {
			return nil, fmt.Errorf("matcher %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Resolve returns a copy of the MatcherSpec with fn applied to its argument.
func (m *MatcherSpec) Resolve(fn func(any) any) *MatcherSpec {
	out := &MatcherSpec{Kind: m.Kind}
	if m.Not != nil {
		out.Not = m.Not.Resolve(fn)
		return out
	}
	out.Arg = fn(m.Arg)
	return out
}

func (m *MatcherSpec) stringArg() (string, error) {
	s, ok := m.Arg.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected a string, got %T", m.Kind, m.Arg)
	}
	return s, nil
}

func (m *MatcherSpec) schemaDocument(baseDir string) ([]byte, error) {
	switch arg := m.Arg.(type) {
	case string:
		path := arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file: %w", err)
		}
		return data, nil
	case map[string]any:
		return json.Marshal(arg)
	}
	return nil, fmt.Errorf("schema: expected a path or an object, got %T", m.Arg)
}
