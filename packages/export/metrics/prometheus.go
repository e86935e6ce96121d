package metrics

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// PrometheusExporter writes metrics in the Prometheus text exposition
// format, suitable for the node exporter textfile collector.
type PrometheusExporter struct {
	writer   io.Writer
	filePath string
}

type PrometheusOption func(*PrometheusExporter)

func WithPrometheusWriter(w io.Writer) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.writer = w
	}
}

// WithPrometheusFile writes the metrics to path, replacing it atomically.
func WithPrometheusFile(path string) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.filePath = path
	}
}

func NewPrometheusExporter(opts ...PrometheusOption) *PrometheusExporter {
	p := &PrometheusExporter{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PrometheusExporter) Export(metrics *AggregateMetrics) error {
	var buf bytes.Buffer
	writeMetrics(&buf, metrics)

	return emit(buf.Bytes(), p.filePath, p.writer)
}

// ExportSingle is a no-op; Prometheus only sees the aggregate.
func (p *PrometheusExporter) ExportSingle(metric *CheckMetrics) error {
	return nil
}

func (p *PrometheusExporter) Close() error {
	return nil
}

func writeMetrics(w io.Writer, a *AggregateMetrics) {
	fmt.Fprintf(w, "# HELP hitassert_checks_total Checks by result\n")
	fmt.Fprintf(w, "# TYPE hitassert_checks_total counter\n")
	fmt.Fprintf(w, "hitassert_checks_total{result=%q} %d\n", ResultPassed, a.PassedCount)
	fmt.Fprintf(w, "hitassert_checks_total{result=%q} %d\n", ResultFailed, a.FailedCount)
	fmt.Fprintf(w, "hitassert_checks_total{result=%q} %d\n", ResultSkipped, a.SkippedCount)
	fmt.Fprintf(w, "hitassert_checks_total{result=%q} %d\n", ResultError, a.ErrorCount)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP hitassert_check_duration_ms Check duration in milliseconds\n")
	fmt.Fprintf(w, "# TYPE hitassert_check_duration_ms gauge\n")
	fmt.Fprintf(w, "hitassert_check_duration_ms{stat=\"min\"} %.2f\n", a.MinDurationMs)
	fmt.Fprintf(w, "hitassert_check_duration_ms{stat=\"max\"} %.2f\n", a.MaxDurationMs)
	fmt.Fprintf(w, "hitassert_check_duration_ms{stat=\"avg\"} %.2f\n", a.AvgDurationMs)
	fmt.Fprintln(w)

	if len(a.ByOperator) > 0 {
		fmt.Fprintf(w, "# HELP hitassert_operator_checks_total Executed checks by operator and result\n")
		fmt.Fprintf(w, "# TYPE hitassert_operator_checks_total counter\n")
		for _, name := range sortedKeys(a.ByOperator) {
			op := a.ByOperator[name]
			label := sanitizeLabel(name)
			fmt.Fprintf(w, "hitassert_operator_checks_total{operator=\"%s\",result=%q} %d\n", label, ResultPassed, op.Passed)
			fmt.Fprintf(w, "hitassert_operator_checks_total{operator=\"%s\",result=%q} %d\n", label, ResultFailed, op.Failed)
			fmt.Fprintf(w, "hitassert_operator_checks_total{operator=\"%s\",result=%q} %d\n", label, ResultError, op.Errors)
		}
		fmt.Fprintln(w)
	}

	if len(a.FailureKinds) > 0 {
		fmt.Fprintf(w, "# HELP hitassert_failures_total Failed checks by failure kind\n")
		fmt.Fprintf(w, "# TYPE hitassert_failures_total counter\n")
		for _, kind := range sortedKeys(a.FailureKinds) {
			fmt.Fprintf(w, "hitassert_failures_total{kind=\"%s\"} %d\n", sanitizeLabel(kind), a.FailureKinds[kind])
		}
	}
}

// sanitizeLabel makes a string safe for use as a Prometheus label value
func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
