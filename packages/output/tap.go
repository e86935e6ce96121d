package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitassert/packages/core/runner"
	"gopkg.in/yaml.v3"
)

// TAPFormatter writes check results as TAP version 13. Failed checks carry
// a YAML diagnostic block.
type TAPFormatter struct {
	writer  io.Writer
	results []tapLine
	errors  []string
}

type tapLine struct {
	name      string
	ok        bool
	directive string
	diag      *tapDiagnostic
}

type tapDiagnostic struct {
	Message    string   `yaml:"message,omitempty"`
	Severity   string   `yaml:"severity"`
	File       string   `yaml:"file"`
	Operator   string   `yaml:"operator,omitempty"`
	Kinds      []string `yaml:"kinds,omitempty"`
	Failures   []string `yaml:"failures,omitempty"`
	DurationMS int64    `yaml:"duration_ms"`
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		line := tapLine{name: r.Name, ok: r.Passed || r.Skipped}

		switch {
		case r.Skipped:
			reason := r.SkipReason
			if reason == "filtered out" {
				reason = ""
			}
			line.directive = strings.TrimSpace("SKIP " + reason)
		case r.Error != nil:
			line.diag = &tapDiagnostic{
				Message:    r.Error.Error(),
				Severity:   "error",
				File:       result.File,
				Operator:   r.Operator,
				DurationMS: r.Duration.Milliseconds(),
			}
		case !r.Passed:
			line.diag = &tapDiagnostic{
				Severity:   "fail",
				File:       result.File,
				Operator:   r.Operator,
				Kinds:      recordKinds(r),
				Failures:   failureLines(r),
				DurationMS: r.Duration.Milliseconds(),
			}
		}

		f.results = append(f.results, line)
	}
}

// FormatError keeps err until Flush, where it is written as a comment
// after the plan.
func (f *TAPFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *TAPFormatter) FormatHeader(version string) {}

// Flush writes the plan followed by one line per check.
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	fmt.Fprintf(f.writer, "TAP version 13\n1..%d\n", len(f.results))
	for _, e := range f.errors {
		fmt.Fprintf(f.writer, "# error: %s\n", strings.ReplaceAll(e, "\n", "\n# "))
	}

	for i, line := range f.results {
		status := "ok"
		if !line.ok {
			status = "not ok"
		}
		fmt.Fprintf(f.writer, "%s %d - %s", status, i+1, line.name)
		if line.directive != "" {
			fmt.Fprintf(f.writer, " # %s", line.directive)
		}
		fmt.Fprintln(f.writer)

		if line.diag != nil {
			block, err := yamlBlock(line.diag)
			if err != nil {
				return fmt.Errorf("encoding TAP diagnostic: %w", err)
			}
			fmt.Fprintf(f.writer, "  ---\n%s  ...\n", block)
		}
	}

	fmt.Fprintf(f.writer, "# time %dms\n", totalDuration.Milliseconds())
	return nil
}

// yamlBlock encodes v as YAML indented two spaces, as TAP 13 expects.
func yamlBlock(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	var out strings.Builder
	for _, l := range strings.SplitAfter(buf.String(), "\n") {
		if l != "" {
			out.WriteString("  " + l)
		}
	}
	return out.String(), nil
}

func recordKinds(r *runner.CheckResult) []string {
	seen := make(map[string]bool)
	var kinds []string
	for _, rec := range r.Records {
		for _, k := range rec.Kinds {
			if !seen[string(k)] {
				seen[string(k)] = true
				kinds = append(kinds, string(k))
			}
		}
	}
	return kinds
}
