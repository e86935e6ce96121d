package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		name     string
		record   Record
		expected string
	}{
		{
			name:     "size mismatch",
			record:   Record{Kinds: []Kind{SizeMismatch}, ExpectedSize: 4, ActualSize: 3, Container: "files"},
			expected: "expected files to have size 4, got 3",
		},
		{
			name:     "exactly",
			record:   Record{Operation: OpContainsExactly, Kinds: []Kind{MissingRequired}, Expected: []string{"1", "2"}},
			expected: "expected collection to contain exactly 2 elements",
		},
		{
			name:     "at least",
			record:   Record{Operation: OpContainsAtLeast, Kinds: []Kind{MissingRequired}, Expected: []string{"1"}, ElementPlural: "ints"},
			expected: "expected collection to contain at least 1 ints",
		},
		{
			name:     "none of",
			record:   Record{Operation: OpContainsNoneOf, Kinds: []Kind{ForbiddenPresent}, Expected: []string{"2", "9"}},
			expected: "expected collection to contain none of 2 elements",
		},
		{
			name:     "order",
			record:   Record{Operation: OpInOrder, Kinds: []Kind{OutOfOrder}},
			expected: "expected collection to contain elements in the requested order",
		},
		{
			name:     "message fallback",
			record:   Record{Operation: OpEquals, Kinds: []Kind{ValueMismatch}, Message: "expected 1, got 2"},
			expected: "expected 1, got 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Summary(tt.record))
		})
	}
}

func TestRender_SortsWhenSortable(t *testing.T) {
	r := Record{
		Operation:  OpContainsExactly,
		Kinds:      []Kind{MissingRequired, UnexpectedPresent},
		Expected:   []string{`"b"`, `"a"`},
		Missing:    []string{`"b"`},
		Unexpected: []any{"z", "c"},
		Actual:     []any{"z", "a", "c"},
	}

	unsorted := Render(r)
	assert.Contains(t, unsorted, `unexpected: ["z", "c"]`)
	assert.Contains(t, unsorted, `actual collection: ["z", "a", "c"]`)

	r.Sortable = true
	sorted := Render(r)
	assert.Contains(t, sorted, `expected: ["a", "b"]`)
	assert.Contains(t, sorted, `unexpected: ["c", "z"]`)
	assert.Contains(t, sorted, `actual collection: ["a", "c", "z"]`)
	assert.Equal(t, []any{"z", "c"}, r.Unexpected, "rendering must not reorder caller data")
}

func TestRender_OutOfOrderPairs(t *testing.T) {
	r := Record{
		Operation:  OpInOrder,
		Kinds:      []Kind{OutOfOrder},
		Expected:   []string{"1", "2", "1"},
		OutOfOrder: []Pair{{Matcher: 1, Element: 2}, {Matcher: 2, Element: 1}},
		Actual:     []any{1, 1, 2},
	}

	out := Render(r)
	assert.Contains(t, out, "2 matched elements at index 2")
	assert.Contains(t, out, "1 matched elements at index 1")
}

func TestRenderVerbose(t *testing.T) {
	out := RenderVerbose(Record{Kinds: []Kind{SizeMismatch}, ExpectedSize: 1, Actual: []any{"x"}})
	assert.Contains(t, out, "expected collection to have size 1, got 0")
	assert.Contains(t, out, `(string) (len=1) "x"`)
}
