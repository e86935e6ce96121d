package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitassert/packages/core/runner"
	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
)

type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable is implemented by formatters that write everything at the end.
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Formats lists the names accepted by New.
var Formats = []string{"console", "json", "junit", "tap"}

// New returns the formatter for format writing to w.
func New(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	case "tap":
		return NewTAPFormatter(TAPWithWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// failureLines renders every record of a failed check, one summary line each.
func failureLines(r *runner.CheckResult) []string {
	lines := make([]string, 0, len(r.Records))
	for _, rec := range r.Records {
		lines = append(lines, diagnostic.Summary(rec))
	}
	return lines
}

func failureText(r *runner.CheckResult) string {
	parts := make([]string, 0, len(r.Records))
	for _, rec := range r.Records {
		parts = append(parts, diagnostic.Render(rec))
	}
	return strings.Join(parts, "\n\n")
}
