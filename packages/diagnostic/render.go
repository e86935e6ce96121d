package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// Summary returns a one line description of the failure.
func Summary(r Record) string {
	container := r.ContainerLabel()
	elements := r.ElementLabel()

	switch {
	case r.Has(SizeMismatch) && r.Message != "":
		return r.Message
	case r.Has(SizeMismatch):
		return fmt.Sprintf("expected %s to have size %d, got %d", container, r.ExpectedSize, r.ActualSize)
	case r.Has(MissingRequired) || r.Has(UnexpectedPresent):
		switch r.Operation {
		case OpContainsAtLeast, OpContainsAtLeastPredicates, OpContains:
			return fmt.Sprintf("expected %s to contain at least %d %s", container, len(r.Expected), elements)
		}
		return fmt.Sprintf("expected %s to contain exactly %d %s", container, len(r.Expected), elements)
	case r.Has(ForbiddenPresent):
		return fmt.Sprintf("expected %s to contain none of %d %s", container, len(r.Expected), elements)
	case r.Has(NoMatchFound):
		return fmt.Sprintf("expected %s to contain %s matching %s", container, elements, strings.Join(r.Expected, ", "))
	case r.Has(UnwantedMatchFound):
		return fmt.Sprintf("expected %s to contain no %s matching %s", container, elements, strings.Join(r.Expected, ", "))
	case r.Has(OutOfOrder):
		return fmt.Sprintf("expected %s to contain %s in the requested order", container, elements)
	}
	if r.Message != "" {
		return r.Message
	}
	return fmt.Sprintf("%s failed on %s", r.Operation, container)
}

// Render returns the multi line failure text for a record. Lists are sorted
// for display when the record is sortable.
func Render(r Record) string {
	var b strings.Builder
	b.WriteString(Summary(r))
	b.WriteString("\n")

	if r.Subject != "" {
		fmt.Fprintf(&b, "  subject: %s\n", r.Subject)
	}
	if len(r.Expected) > 0 {
		fmt.Fprintf(&b, "  expected: %s\n", list(r.Expected, r.Sortable))
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(&b, "  missing: %s\n", list(r.Missing, r.Sortable))
	}
	if len(r.Unexpected) > 0 {
		fmt.Fprintf(&b, "  unexpected: %s\n", list(format(r.Unexpected), r.Sortable))
	}
	if len(r.Found) > 0 {
		fmt.Fprintf(&b, "  found: %s\n", list(format(r.Found), r.Sortable))
	}
	if len(r.Matched) > 0 {
		fmt.Fprintf(&b, "  matched: %s\n", list(format(r.Matched), r.Sortable))
	}
	for _, p := range r.OutOfOrder {
		desc := fmt.Sprintf("#%d", p.Matcher)
		if p.Matcher < len(r.Expected) {
			desc = r.Expected[p.Matcher]
		}
		fmt.Fprintf(&b, "  %s matched %s at index %d\n", desc, r.ElementLabel(), p.Element)
	}
	if r.Message != "" && !r.Has(SizeMismatch) {
		fmt.Fprintf(&b, "  %s\n", r.Message)
	}
	if r.Has(ValueMismatch) {
		fmt.Fprintf(&b, "  actual: %s", list(format(r.Actual), false))
		return b.String()
	}
	fmt.Fprintf(&b, "  actual %s: %s", r.ContainerLabel(), list(format(r.Actual), r.Sortable))
	return b.String()
}

// RenderVerbose is Render followed by a full dump of the actual collection.
func RenderVerbose(r Record) string {
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
	return Render(r) + "\n" + cfg.Sdump(r.Actual)
}

func format(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			out[i] = fmt.Sprintf("%q", s)
			continue
		}
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}

func list(items []string, sortable bool) string {
	if sortable {
		items = append([]string(nil), items...)
		sort.Strings(items)
	}
	return "[" + strings.Join(items, ", ") + "]"
}
