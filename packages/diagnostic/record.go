// Package diagnostic carries structured assertion failures from the
// matching engine to whoever renders them.
//
// Subjects never abort on failure. Each failing operation produces one
// Record and hands it to a Sink; execution then continues so a single test
// can report several independent problems.
package diagnostic

// Kind classifies a reported failure.
type Kind string

const (
	SizeMismatch       Kind = "size_mismatch"
	MissingRequired    Kind = "missing_required"
	UnexpectedPresent  Kind = "unexpected_present"
	ForbiddenPresent   Kind = "forbidden_present"
	NoMatchFound       Kind = "no_match_found"
	UnwantedMatchFound Kind = "unwanted_match_found"
	OutOfOrder         Kind = "out_of_order"

	// ValueMismatch is reported by the scalar subjects that collection
	// operations delegate to.
	ValueMismatch Kind = "value_mismatch"
)

// Operation names recorded in Record.Operation.
const (
	OpHasSize                   = "has_size"
	OpIsEmpty                   = "is_empty"
	OpContains                  = "contains"
	OpNotContains               = "not_contains"
	OpContainsExactly           = "contains_exactly"
	OpContainsExactlyPredicates = "contains_exactly_predicates"
	OpContainsAtLeast           = "contains_at_least"
	OpContainsAtLeastPredicates = "contains_at_least_predicates"
	OpContainsNoneOf            = "contains_none_of"
	OpContainsPredicate         = "contains_predicate"
	OpNotContainsPredicate      = "not_contains_predicate"
	OpInOrder                   = "in_order"
	OpOffset                    = "offset"
	OpEquals                    = "equals"
	OpNotEquals                 = "not_equals"
	OpIsAtLeast                 = "is_at_least"
	OpIsAtMost                  = "is_at_most"
	OpIsIn                      = "is_in"
	OpSatisfies                 = "satisfies"
)

// Pair is one entry of a match assignment: the matcher at index Matcher
// consumed the actual element at index Element.
type Pair struct {
	Matcher int `json:"matcher"`
	Element int `json:"element"`
}

// Record describes one failing operation.
type Record struct {
	Kinds         []Kind `json:"kinds"`
	Operation     string `json:"operation"`
	Subject       string `json:"subject,omitempty"`
	Container     string `json:"container,omitempty"`
	ElementPlural string `json:"elementPlural,omitempty"`
	Sortable      bool   `json:"sortable,omitempty"`

	Actual   []any    `json:"actual,omitempty"`
	Expected []string `json:"expected,omitempty"`

	Missing    []string `json:"missing,omitempty"`
	Unexpected []any    `json:"unexpected,omitempty"`
	Found      []any    `json:"found,omitempty"`
	Matched    []any    `json:"matched,omitempty"`
	OutOfOrder []Pair   `json:"outOfOrder,omitempty"`

	ExpectedSize int `json:"expectedSize,omitempty"`
	ActualSize   int `json:"actualSize,omitempty"`

	// Message is free form context for failures the fields above cannot
	// express, such as an out of range offset.
	Message string `json:"message,omitempty"`
}

// Has reports whether k is among the record's kinds.
func (r Record) Has(k Kind) bool {
	for _, kind := range r.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// ContainerLabel returns the container display name, defaulting to "collection".
func (r Record) ContainerLabel() string {
	if r.Container == "" {
		return "collection"
	}
	return r.Container
}

// ElementLabel returns the element plural display name, defaulting to "elements".
func (r Record) ElementLabel() string {
	if r.ElementPlural == "" {
		return "elements"
	}
	return r.ElementPlural
}
