package matcher

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/xeipuuv/gojsonschema"
)

// Matcher is a named boolean test over one value.
type Matcher struct {
	description string
	test        func(any) bool
}

// New creates a Matcher from a description and a test function. The test
// must be pure: it may be called any number of times, in any order.
func New(description string, test func(any) bool) Matcher {
	if test == nil {
		test = func(any) bool { return false }
	}
	return Matcher{description: description, test: test}
}

// Description returns the human readable description of the matcher.
func (m Matcher) Description() string {
	return m.description
}

// Test reports whether v satisfies the matcher. A zero Matcher matches nothing.
func (m Matcher) Test(v any) bool {
	if m.test == nil {
		return false
	}
	return m.test(v)
}

func (m Matcher) String() string {
	return "<matcher " + m.description + ">"
}

// Equals matches values deeply equal to expected.
func Equals(expected any) Matcher {
	return New(Describe(expected), func(v any) bool {
		return equal(expected, v)
	})
}

// EqualsAll wraps each literal in an Equals matcher, preserving order.
func EqualsAll(values ...any) []Matcher {
	ms := make([]Matcher, len(values))
	for i, v := range values {
		ms[i] = Equals(v)
	}
	return ms
}

// Contains matches strings containing the substring s, or slices with an
// element equal to s.
func Contains(s any) Matcher {
	return New(fmt.Sprintf("<contains %s>", Describe(s)), func(v any) bool {
		if str, ok := v.(string); ok {
			sub, ok := s.(string)
			return ok && strings.Contains(str, sub)
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if equal(s, rv.Index(i).Interface()) {
				return true
			}
		}
		return false
	})
}

// StartsWith matches strings with the given prefix.
func StartsWith(prefix string) Matcher {
	return New(fmt.Sprintf("<starts with %q>", prefix), func(v any) bool {
		str, ok := v.(string)
		return ok && strings.HasPrefix(str, prefix)
	})
}

// EndsWith matches strings with the given suffix.
func EndsWith(suffix string) Matcher {
	return New(fmt.Sprintf("<ends with %q>", suffix), func(v any) bool {
		str, ok := v.(string)
		return ok && strings.HasSuffix(str, suffix)
	})
}

// Matches matches strings against a glob pattern where "*" stands for any
// run of characters. The whole string must match.
func Matches(glob string) Matcher {
	parts := strings.Split(glob, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re := regexp.MustCompile("^(?s:" + strings.Join(parts, ".*") + ")$")
	return New(fmt.Sprintf("<matches %q>", glob), func(v any) bool {
		str, ok := v.(string)
		return ok && re.MatchString(str)
	})
}

// Regexp matches the string form of a value against a regular expression.
// Slashes around the pattern are stripped.
func Regexp(pattern string) (Matcher, error) {
	pattern = strings.TrimPrefix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")

	re, err := regexp.Compile(pattern)
	if err != nil {
		return Matcher{}, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return New(fmt.Sprintf("<matches /%s/>", pattern), func(v any) bool {
		return re.MatchString(fmt.Sprintf("%v", v))
	}), nil
}

// MustRegexp is like Regexp but panics on an invalid pattern.
func MustRegexp(pattern string) Matcher {
	m, err := Regexp(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// IsIn matches values equal to one of values.
func IsIn(values ...any) Matcher {
	return New(fmt.Sprintf("<is in %s>", DescribeAll(values)), func(v any) bool {
		for _, candidate := range values {
			if equal(candidate, v) {
				return true
			}
		}
		return false
	})
}

// TypeOf matches values whose JSON type is name: null, boolean, number,
// string, array or object. Other values match their Go type name.
func TypeOf(name string) Matcher {
	return New(fmt.Sprintf("<type %s>", name), func(v any) bool {
		return TypeName(v) == name
	})
}

// TypeName returns the JSON type name of v.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return reflect.TypeOf(v).String()
}

// Schema matches values that validate against the given JSON schema document.
func Schema(schemaJSON []byte) (Matcher, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return Matcher{}, fmt.Errorf("invalid JSON schema: %w", err)
	}
	return New("<satisfies schema>", func(v any) bool {
		result, err := schema.Validate(gojsonschema.NewGoLoader(v))
		return err == nil && result.Valid()
	}), nil
}

// Not inverts m.
func Not(m Matcher) Matcher {
	return New("<not "+m.Description()+">", func(v any) bool {
		return !m.Test(v)
	})
}

// Any matches every value.
func Any() Matcher {
	return New("<any value>", func(any) bool { return true })
}

// Never matches no value.
func Never() Matcher {
	return New("<never matches>", func(any) bool { return false })
}

func equal(expected, actual any) bool {
	return assert.ObjectsAreEqual(expected, actual)
}
