package matcher

import (
	"fmt"
	"strings"
)

// Describe renders a value the way it appears in expectation lists: strings
// are quoted, everything else uses its default format.
func Describe(v any) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case Matcher:
		return val.Description()
	case nil:
		return "nil"
	}
	return fmt.Sprintf("%v", v)
}

// DescribeAll renders a list of values as "[a, b, c]".
func DescribeAll(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Describe(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Descriptions returns the description of every matcher, in order.
func Descriptions(ms []Matcher) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Description()
	}
	return out
}
