// Package metrics exports aggregate statistics about hitassert check runs.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitassert/packages/core/runner"
	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
)

// Result values used in CheckMetrics.Result and per operator counts.
const (
	ResultPassed  = "passed"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
	ResultError   = "error"
)

// CheckMetrics is the outcome of a single check.
type CheckMetrics struct {
	CheckName    string    `json:"check_name"`
	File         string    `json:"file"`
	Operator     string    `json:"operator,omitempty"`
	Result       string    `json:"result"`
	DurationMs   float64   `json:"duration_ms"`
	ActualSize   int       `json:"actual_size"`
	RecordCount  int       `json:"record_count"`
	FailureKinds []string  `json:"failure_kinds,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// AggregateMetrics summarizes every recorded check.
type AggregateMetrics struct {
	TotalChecks     int64                         `json:"total_checks"`
	PassedCount     int64                         `json:"passed_count"`
	FailedCount     int64                         `json:"failed_count"`
	SkippedCount    int64                         `json:"skipped_count"`
	ErrorCount      int64                         `json:"error_count"`
	TotalDurationMs float64                       `json:"total_duration_ms"`
	MinDurationMs   float64                       `json:"min_duration_ms"`
	MaxDurationMs   float64                       `json:"max_duration_ms"`
	AvgDurationMs   float64                       `json:"avg_duration_ms"`
	ByOperator      map[string]*OperatorAggregate `json:"by_operator"`
	FailureKinds    map[string]int64              `json:"failure_kinds"`
}

// OperatorAggregate counts outcomes for one expectation operator.
type OperatorAggregate struct {
	Operator string `json:"operator"`
	Passed   int64  `json:"passed"`
	Failed   int64  `json:"failed"`
	Errors   int64  `json:"errors"`
}

func newAggregate() *AggregateMetrics {
	return &AggregateMetrics{
		ByOperator:   make(map[string]*OperatorAggregate),
		FailureKinds: make(map[string]int64),
	}
}

// Exporter is the interface for metrics exporters
type Exporter interface {
	// Export writes the aggregate to the target destination
	Export(metrics *AggregateMetrics) error

	// ExportSingle receives each check as it is recorded
	ExportSingle(metric *CheckMetrics) error

	Close() error
}

// Collector aggregates check metrics and fans them out to exporters.
type Collector struct {
	metrics   []*CheckMetrics
	aggregate *AggregateMetrics
	exporters []Exporter
}

func NewCollector(exporters ...Exporter) *Collector {
	return &Collector{
		metrics:   make([]*CheckMetrics, 0),
		aggregate: newAggregate(),
		exporters: exporters,
	}
}

// FromRunResult converts every check of a file run.
func FromRunResult(result *runner.RunResult) []*CheckMetrics {
	now := time.Now()
	out := make([]*CheckMetrics, 0, len(result.Results))
	for _, r := range result.Results {
		m := &CheckMetrics{
			CheckName:   r.Name,
			File:        result.File,
			Operator:    r.Operator,
			DurationMs:  float64(r.Duration.Microseconds()) / 1000,
			ActualSize:  len(r.Actual),
			RecordCount: len(r.Records),
			Timestamp:   now,
		}
		switch {
		case r.Skipped:
			m.Result = ResultSkipped
		case r.Error != nil:
			m.Result = ResultError
		case r.Passed:
			m.Result = ResultPassed
		default:
			m.Result = ResultFailed
		}
		m.FailureKinds = failureKinds(r.Records)
		out = append(out, m)
	}
	return out
}

func failureKinds(records []diagnostic.Record) []string {
	seen := make(map[string]bool)
	var kinds []string
	for _, rec := range records {
		for _, k := range rec.Kinds {
			if !seen[string(k)] {
				seen[string(k)] = true
				kinds = append(kinds, string(k))
			}
		}
	}
	sort.Strings(kinds)
	return kinds
}

// RecordRun records every check of a file run.
func (c *Collector) RecordRun(result *runner.RunResult) {
	for _, m := range FromRunResult(result) {
		c.Record(m)
	}
}

// Record records a check metric
func (c *Collector) Record(m *CheckMetrics) {
	c.metrics = append(c.metrics, m)
	c.aggregate.add(m)

	for _, exp := range c.exporters {
		_ = exp.ExportSingle(m)
	}
}

func (a *AggregateMetrics) add(m *CheckMetrics) {
	a.TotalChecks++

	switch m.Result {
	case ResultSkipped:
		a.SkippedCount++
		return
	case ResultPassed:
		a.PassedCount++
	case ResultFailed:
		a.FailedCount++
	case ResultError:
		a.ErrorCount++
	}

	// Durations cover executed checks only.
	executed := a.PassedCount + a.FailedCount + a.ErrorCount
	a.TotalDurationMs += m.DurationMs
	if executed == 1 {
		a.MinDurationMs = m.DurationMs
		a.MaxDurationMs = m.DurationMs
	} else {
		if m.DurationMs < a.MinDurationMs {
			a.MinDurationMs = m.DurationMs
		}
		if m.DurationMs > a.MaxDurationMs {
			a.MaxDurationMs = m.DurationMs
		}
	}
	a.AvgDurationMs = a.TotalDurationMs / float64(executed)

	op, ok := a.ByOperator[m.Operator]
	if !ok {
		op = &OperatorAggregate{Operator: m.Operator}
		a.ByOperator[m.Operator] = op
	}
	switch m.Result {
	case ResultPassed:
		op.Passed++
	case ResultFailed:
		op.Failed++
	case ResultError:
		op.Errors++
	}

	for _, k := range m.FailureKinds {
		a.FailureKinds[k]++
	}
}

// GetAggregate returns the aggregated metrics
func (c *Collector) GetAggregate() *AggregateMetrics {
	return c.aggregate
}

// Metrics returns the recorded checks in order.
func (c *Collector) Metrics() []*CheckMetrics {
	return c.metrics
}

// Flush exports all aggregated metrics
func (c *Collector) Flush() error {
	for _, exp := range c.exporters {
		if err := exp.Export(c.aggregate); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all exporters
func (c *Collector) Close() error {
	for _, exp := range c.exporters {
		if err := exp.Close(); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Export formats accepted by NewExporter.
const (
	FormatJSON       = "json"
	FormatPrometheus = "prometheus"
)

// NewExporter returns the exporter for format writing to path, or to w when
// path is empty.
func NewExporter(format, path string, w io.Writer) (Exporter, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		if path != "" {
			return NewJSONExporter(WithJSONFile(path)), nil
		}
		return NewJSONExporter(WithJSONWriter(w)), nil
	case FormatPrometheus:
		if path != "" {
			return NewPrometheusExporter(WithPrometheusFile(path)), nil
		}
		return NewPrometheusExporter(WithPrometheusWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown metrics format %q (want json or prometheus)", format)
}
