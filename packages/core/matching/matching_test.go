package matching

import (
	"math/rand"
	"testing"

	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
	"github.com/abdul-hamid-achik/hitassert/packages/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(values ...int) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func TestConsume_GreedyFirstSeen(t *testing.T) {
	actual := ints(1, 2, 1, 3)
	c := Consume(actual, matcher.EqualsAll(1, 1, 4))

	assert.Equal(t, Assignment{{Matcher: 0, Element: 0}, {Matcher: 1, Element: 2}}, c.Assignment)
	assert.Equal(t, []int{2}, c.Missing)
	assert.Equal(t, []bool{true, false, true, false}, c.Consumed)
	assert.Equal(t, []int{1, 3}, c.Unconsumed())
}

func TestConsume_DoesNotMutateActual(t *testing.T) {
	actual := []any{"a", "b"}
	Consume(actual, matcher.EqualsAll("b", "a"))
	assert.Equal(t, []any{"a", "b"}, actual)
}

// Scenario A: an earlier matcher steals the element a later one needed.
func TestContainsExactly_GreedyStealing(t *testing.T) {
	actual := []any{"a", "ab", "abc"}
	ms := []matcher.Matcher{matcher.Contains("a"), matcher.Contains("b"), matcher.Equals("a")}

	out, ord := ContainsExactly(actual, ms)

	assert.False(t, out.Passed)
	require.Len(t, out.Missing, 1)
	assert.Equal(t, `"a"`, out.Missing[0].Description())
	assert.Equal(t, []any{"abc"}, out.Unexpected)
	assert.Equal(t, []diagnostic.Kind{diagnostic.MissingRequired, diagnostic.UnexpectedPresent}, out.Kinds)

	verdict := ord.Check()
	assert.False(t, verdict.Passed)
	assert.True(t, verdict.MembershipFailed)
}

// Scenario B: membership passes, order does not.
func TestContainsExactly_OrderMismatch(t *testing.T) {
	out, ord := ContainsExactly(ints(1, 1, 2), matcher.EqualsAll(1, 2, 1))

	assert.True(t, out.Passed)
	assert.Empty(t, out.Kinds)
	assert.Equal(t, Assignment{{Matcher: 0, Element: 0}, {Matcher: 1, Element: 2}, {Matcher: 2, Element: 1}}, ord.Assignment())

	verdict := ord.Check()
	assert.False(t, verdict.Passed)
	assert.False(t, verdict.MembershipFailed)
	assert.Equal(t, []diagnostic.Pair{{Matcher: 1, Element: 2}, {Matcher: 2, Element: 1}}, verdict.Offending)
}

func TestContainsExactly_InOrder(t *testing.T) {
	out, ord := ContainsExactly(ints(1, 2, 3), matcher.EqualsAll(1, 2, 3))
	assert.True(t, out.Passed)
	assert.True(t, ord.Check().Passed)
}

func TestContainsExactly_Multiplicity(t *testing.T) {
	tests := []struct {
		name     string
		actual   []any
		expected []any
		passed   bool
	}{
		{name: "duplicates satisfied", actual: ints(1, 1), expected: ints(1, 1), passed: true},
		{name: "too few duplicates", actual: ints(1, 2), expected: ints(1, 1), passed: false},
		{name: "extra element", actual: ints(1, 1, 1), expected: ints(1, 1), passed: false},
		{name: "both empty", actual: nil, expected: nil, passed: true},
		{name: "same length different multiset", actual: ints(1, 2), expected: ints(2, 2), passed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := ContainsExactly(tt.actual, matcher.EqualsAll(tt.expected...))
			assert.Equal(t, tt.passed, out.Passed)
		})
	}
}

// Scenario C: at least with slack.
func TestContainsAtLeast_Slack(t *testing.T) {
	out, ord := ContainsAtLeast(ints(1, 2, 3, 4), matcher.EqualsAll(2, 4))

	assert.True(t, out.Passed)
	assert.Empty(t, out.Unexpected)
	assert.True(t, ord.Check().Passed)
}

func TestContainsAtLeast_Missing(t *testing.T) {
	out, ord := ContainsAtLeast(ints(1, 2), matcher.EqualsAll(2, 5, 2))

	assert.False(t, out.Passed)
	assert.Equal(t, []string{"5", "2"}, matcher.Descriptions(out.Missing))
	assert.Equal(t, []diagnostic.Kind{diagnostic.MissingRequired}, out.Kinds)
	assert.False(t, ord.Check().Passed)
}

func TestContainsAtLeast_OrderFails(t *testing.T) {
	out, ord := ContainsAtLeast(ints(4, 3, 2, 1), matcher.EqualsAll(2, 4))
	assert.True(t, out.Passed)

	verdict := ord.Check()
	assert.False(t, verdict.Passed)
	assert.Equal(t, []diagnostic.Pair{{Matcher: 0, Element: 2}, {Matcher: 1, Element: 0}}, verdict.Offending)
}

// Scenario D.
func TestContainsNoneOf(t *testing.T) {
	out := ContainsNoneOf(ints(1, 2, 3), ints(2, 9))
	assert.False(t, out.Passed)
	assert.Equal(t, []any{2}, out.Found)
	assert.Equal(t, []diagnostic.Kind{diagnostic.ForbiddenPresent}, out.Kinds)

	out = ContainsNoneOf(ints(1, 2, 3), ints(4, 5))
	assert.True(t, out.Passed)
	assert.Empty(t, out.Found)
}

func TestContainsNoneOf_FoundListedOnce(t *testing.T) {
	tests := []struct {
		name      string
		actual    []any
		forbidden []any
		found     []any
	}{
		{name: "repeated forbidden value", actual: ints(1, 2, 3), forbidden: ints(2, 2, 9), found: ints(2)},
		{name: "repeated in actual", actual: ints(2, 2, 2), forbidden: ints(2), found: ints(2)},
		{name: "values order kept", actual: ints(1, 2, 3), forbidden: ints(3, 1, 3, 1), found: ints(3, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ContainsNoneOf(tt.actual, tt.forbidden)
			assert.False(t, out.Passed)
			assert.Equal(t, tt.found, out.Found)
		})
	}
}

func TestContainsPredicate(t *testing.T) {
	out := ContainsPredicate([]any{"x", "yz"}, matcher.Contains("z"))
	assert.True(t, out.Passed)

	out = ContainsPredicate([]any{"x", "y"}, matcher.Contains("z"))
	assert.False(t, out.Passed)
	assert.Equal(t, []diagnostic.Kind{diagnostic.NoMatchFound}, out.Kinds)

	out = ContainsPredicate(nil, matcher.Any())
	assert.False(t, out.Passed)
}

func TestNotContainsPredicate(t *testing.T) {
	out := NotContainsPredicate([]any{"x", "y"}, matcher.Contains("z"))
	assert.True(t, out.Passed)

	out = NotContainsPredicate([]any{"az", "b", "zz"}, matcher.Contains("z"))
	assert.False(t, out.Passed)
	assert.Equal(t, []any{"az", "zz"}, out.Matched)
	assert.Equal(t, []diagnostic.Kind{diagnostic.UnwantedMatchFound}, out.Kinds)
}

// Scenario E.
func TestHasSize(t *testing.T) {
	out := HasSize(ints(1, 2, 3), 3)
	assert.True(t, out.Passed)

	out = HasSize(ints(1, 2, 3), 4)
	assert.False(t, out.Passed)
	assert.Equal(t, []diagnostic.Kind{diagnostic.SizeMismatch}, out.Kinds)
	assert.Equal(t, 3, out.ActualSize)
	assert.Equal(t, 4, out.ExpectedSize)
}

func TestExactly_LengthNecessaryNotSufficient(t *testing.T) {
	actual := []any{"a", "ab"}
	ms := []matcher.Matcher{matcher.Contains("a"), matcher.Equals("a")}

	out, _ := ContainsExactly(actual, ms)
	assert.Equal(t, len(actual), len(ms))
	assert.False(t, out.Passed, "equal lengths do not guarantee a greedy match")

	out, _ = ContainsExactly([]any{"a"}, ms)
	assert.False(t, out.Passed)
}

func TestOrdering_Idempotent(t *testing.T) {
	_, ord := ContainsExactly(ints(1, 1, 2), matcher.EqualsAll(1, 2, 1))

	first := ord.Check()
	second := ord.Check()
	assert.Equal(t, first, second)
	assert.Len(t, ord.Assignment(), 3)
}

func TestOperations_Idempotent(t *testing.T) {
	actual := []any{"a", "ab", "abc"}
	ms := []matcher.Matcher{matcher.Contains("a"), matcher.Contains("b"), matcher.Equals("a")}

	out1, ord1 := ContainsExactly(actual, ms)
	out2, ord2 := ContainsExactly(actual, ms)

	assert.Equal(t, out1.Passed, out2.Passed)
	assert.Equal(t, out1.Kinds, out2.Kinds)
	assert.Equal(t, out1.Unexpected, out2.Unexpected)
	assert.Equal(t, matcher.Descriptions(out1.Missing), matcher.Descriptions(out2.Missing))
	assert.Equal(t, ord1.Check(), ord2.Check())
}

func TestOrdering_AssignmentIsCopied(t *testing.T) {
	_, ord := ContainsExactly(ints(1, 2), matcher.EqualsAll(1, 2))
	a := ord.Assignment()
	a[0].Element = 99
	assert.True(t, ord.Check().Passed)
}

func TestExactly_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 500; iter++ {
		actual := randomInts(rng, rng.Intn(6))
		expected := randomInts(rng, rng.Intn(6))
		ms := matcher.EqualsAll(expected...)

		out, ord := ContainsExactly(actual, ms)
		c := Consume(actual, ms)
		greedyOK := len(c.Missing) == 0 && len(c.Unconsumed()) == 0
		require.Equal(t, greedyOK, out.Passed, "actual=%v expected=%v", actual, expected)

		if out.Passed {
			require.Equal(t, len(actual), len(ms))
		} else {
			require.False(t, ord.Check().Passed, "order check must not pass after a failed membership")
		}
	}
}

func TestAtLeast_MonotonicUnderShrinking(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for iter := 0; iter < 500; iter++ {
		actual := randomInts(rng, rng.Intn(8))
		expected := randomInts(rng, rng.Intn(5))

		out, _ := ContainsAtLeast(actual, matcher.EqualsAll(expected...))
		if !out.Passed {
			continue
		}

		var sub []any
		for _, v := range expected {
			if rng.Intn(2) == 0 {
				sub = append(sub, v)
			}
		}
		subOut, _ := ContainsAtLeast(actual, matcher.EqualsAll(sub...))
		require.True(t, subOut.Passed, "actual=%v expected=%v sub=%v", actual, expected, sub)
	}
}

func randomInts(rng *rand.Rand, n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = rng.Intn(4)
	}
	return out
}
