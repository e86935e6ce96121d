package parser

import "fmt"

type File struct {
	Path      string
	Variables map[string]any
	Checks    []*Check
}

type Check struct {
	Name        string
	Description string
	Tags        []string
	Skip        string
	Only        bool
	Source      *Source
	Container   string
	Elements    string
	Sortable    *bool
	Expect      *Expectation
	Line        int
}

// SourceKind says where a check's actual collection comes from.
type SourceKind int

const (
	SourceInline SourceKind = iota
	SourceFile
	SourceSQL
)

func (k SourceKind) String() string {
	switch k {
	case SourceInline:
		return "inline"
	case SourceFile:
		return "file"
	case SourceSQL:
		return "sql"
	default:
		return "unknown"
	}
}

type Source struct {
	Kind   SourceKind
	Inline []any
	File   string
	Path   string
	DB     string
	Query  string
	Column string
	Line   int
}

type Expectation struct {
	Operator Operator
	Values   []any
	Matchers []*MatcherSpec
	Matcher  *MatcherSpec
	Size     int
	InOrder  bool
	Line     int
}

// MatcherSpec is a declarative matcher such as {contains: "b"}. Not is set
// for the "not" kind and holds the inverted spec.
type MatcherSpec struct {
	Kind string
	Arg  any
	Not  *MatcherSpec
}

func (m *MatcherSpec) String() string {
	if m.Not != nil {
		return "not " + m.Not.String()
	}
	return fmt.Sprintf("%s %v", m.Kind, m.Arg)
}

type Operator int

const (
	OpContainsExactly Operator = iota
	OpContainsAtLeast
	OpContainsNoneOf
	OpContains
	OpNotContains
	OpContainsPredicate
	OpNotContainsPredicate
	OpHasSize
	OpIsEmpty
)

var operatorNames = map[Operator]string{
	OpContainsExactly:      "contains_exactly",
	OpContainsAtLeast:      "contains_at_least",
	OpContainsNoneOf:       "contains_none_of",
	OpContains:             "contains",
	OpNotContains:          "not_contains",
	OpContainsPredicate:    "contains_predicate",
	OpNotContainsPredicate: "not_contains_predicate",
	OpHasSize:              "has_size",
	OpIsEmpty:              "is_empty",
}

func (op Operator) String() string {
	if name, ok := operatorNames[op]; ok {
		return name
	}
	return "unknown"
}

// ParseOperator maps an operator name from a check file to its Operator.
func ParseOperator(name string) (Operator, error) {
	for op, n := range operatorNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operator: %s", name)
}

// Ordered reports whether the operator supports in_order.
func (op Operator) Ordered() bool {
	return op == OpContainsExactly || op == OpContainsAtLeast
}

type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
