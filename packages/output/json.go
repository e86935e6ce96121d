package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitassert/packages/core/runner"
	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
	"github.com/google/uuid"
)

type JSONOutput struct {
	RunID    string      `json:"runId"`
	Summary  JSONSummary `json:"summary"`
	Checks   []JSONCheck `json:"checks"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type JSONCheck struct {
	Name       string              `json:"name"`
	File       string              `json:"file"`
	Tags       []string            `json:"tags,omitempty"`
	Operator   string              `json:"operator"`
	Passed     bool                `json:"passed"`
	Skipped    bool                `json:"skipped,omitempty"`
	SkipReason string              `json:"skipReason,omitempty"`
	Duration   float64             `json:"duration"`
	Error      string              `json:"error,omitempty"`
	Actual     []any               `json:"actual,omitempty"`
	Failures   []diagnostic.Record `json:"failures,omitempty"`
	Messages   []string            `json:"messages,omitempty"`
}

type JSONFormatter struct {
	writer io.Writer
	runID  string
	checks []JSONCheck
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		runID:  uuid.NewString(),
		checks: make([]JSONCheck, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// JSONWithRunID fixes the run id instead of generating one.
func JSONWithRunID(id string) JSONOption {
	return func(f *JSONFormatter) {
		f.runID = id
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		check := JSONCheck{
			Name:     r.Name,
			File:     result.File,
			Tags:     r.Tags,
			Operator: r.Operator,
			Passed:   r.Passed,
			Skipped:  r.Skipped,
			Duration: float64(r.Duration.Milliseconds()),
			Actual:   r.Actual,
			Failures: r.Records,
			Messages: failureLines(r),
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			check.SkipReason = r.SkipReason
		}
		if r.Error != nil {
			check.Error = r.Error.Error()
		}
		if len(check.Messages) == 0 {
			check.Messages = nil
		}

		f.checks = append(f.checks, check)
	}
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual check results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, c := range f.checks {
		if c.Skipped {
			skipped++
		} else if c.Passed {
			passed++
		} else {
			failed++
		}
	}

	output := JSONOutput{
		RunID: f.runID,
		Summary: JSONSummary{
			Total:   len(f.checks),
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Checks:   f.checks,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
