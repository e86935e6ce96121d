package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquals(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		value    any
		passed   bool
	}{
		{name: "same string", expected: "a", value: "a", passed: true},
		{name: "different string", expected: "a", value: "ab", passed: false},
		{name: "same int", expected: 1, value: 1, passed: true},
		{name: "int vs int64", expected: 1, value: int64(1), passed: false},
		{name: "deep slice", expected: []int{1, 2}, value: []int{1, 2}, passed: true},
		{name: "bytes", expected: []byte("x"), value: []byte("x"), passed: true},
		{name: "nil", expected: nil, value: nil, passed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.passed, Equals(tt.expected).Test(tt.value))
		})
	}
}

func TestEquals_Description(t *testing.T) {
	assert.Equal(t, `"a"`, Equals("a").Description())
	assert.Equal(t, "3", Equals(3).Description())
	assert.Equal(t, "nil", Equals(nil).Description())
}

func TestEqualsAll_PreservesOrder(t *testing.T) {
	ms := EqualsAll(1, 2, 1)
	require.Len(t, ms, 3)
	assert.Equal(t, []string{"1", "2", "1"}, Descriptions(ms))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("b").Test("abc"))
	assert.False(t, Contains("z").Test("abc"))
	assert.True(t, Contains(2).Test([]int{1, 2}))
	assert.False(t, Contains(3).Test([]int{1, 2}))
	assert.False(t, Contains("a").Test(42))
	assert.Equal(t, `<contains "b">`, Contains("b").Description())
}

func TestStartsEndsWith(t *testing.T) {
	assert.True(t, StartsWith("ab").Test("abc"))
	assert.False(t, StartsWith("bc").Test("abc"))
	assert.True(t, EndsWith("bc").Test("abc"))
	assert.False(t, EndsWith("ab").Test("abc"))
	assert.False(t, EndsWith("1").Test(1))
}

func TestMatches_Glob(t *testing.T) {
	tests := []struct {
		glob   string
		value  string
		passed bool
	}{
		{"*.go", "main.go", true},
		{"*.go", "main.go.txt", false},
		{"a*c", "abbbc", true},
		{"a.c", "abc", false},
		{"exact", "exact", true},
		{"*", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.glob+"/"+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.passed, Matches(tt.glob).Test(tt.value))
		})
	}
}

func TestRegexp(t *testing.T) {
	m, err := Regexp("/^a+b$/")
	require.NoError(t, err)
	assert.True(t, m.Test("aab"))
	assert.False(t, m.Test("abb"))
	assert.Equal(t, "<matches /^a+b$/>", m.Description())

	_, err = Regexp("(")
	assert.Error(t, err)
	assert.Panics(t, func() { MustRegexp("(") })
}

func TestIsIn(t *testing.T) {
	m := IsIn("a", "b")
	assert.True(t, m.Test("b"))
	assert.False(t, m.Test("c"))
	assert.Equal(t, `<is in ["a", "b"]>`, m.Description())
}

func TestTypeOf(t *testing.T) {
	assert.True(t, TypeOf("string").Test("x"))
	assert.True(t, TypeOf("number").Test(3))
	assert.True(t, TypeOf("number").Test(3.5))
	assert.True(t, TypeOf("boolean").Test(true))
	assert.True(t, TypeOf("null").Test(nil))
	assert.True(t, TypeOf("array").Test([]string{"a"}))
	assert.True(t, TypeOf("object").Test(map[string]any{}))
	assert.False(t, TypeOf("string").Test(1))
}

func TestSchema(t *testing.T) {
	m, err := Schema([]byte(`{
		"type": "object",
		"required": ["id"],
		"properties": {"id": {"type": "integer"}}
	}`))
	require.NoError(t, err)

	assert.True(t, m.Test(map[string]any{"id": 1}))
	assert.False(t, m.Test(map[string]any{"name": "x"}))
	assert.False(t, m.Test("not an object"))

	_, err = Schema([]byte(`{"type": 12}`))
	assert.Error(t, err)
}

func TestCombinators(t *testing.T) {
	assert.True(t, Any().Test(nil))
	assert.False(t, Never().Test("anything"))
	assert.True(t, Not(Equals(1)).Test(2))
	assert.False(t, Not(Equals(1)).Test(1))
	assert.Equal(t, "<not 1>", Not(Equals(1)).Description())
}

func TestZeroMatcher(t *testing.T) {
	var m Matcher
	assert.False(t, m.Test(1))
	assert.False(t, New("nil test", nil).Test(1))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, `"x"`, Describe("x"))
	assert.Equal(t, "<any value>", Describe(Any()))
	assert.Equal(t, `[1, "a", nil]`, DescribeAll([]any{1, "a", nil}))
}
