package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// JSONExporter writes the aggregate, a per-file breakdown and every check
// as one JSON document.
type JSONExporter struct {
	writer   io.Writer
	filePath string
	compact  bool
	started  time.Time
	checks   []*CheckMetrics
}

type JSONOption func(*JSONExporter)

func WithJSONWriter(w io.Writer) JSONOption {
	return func(j *JSONExporter) {
		j.writer = w
	}
}

// WithJSONFile writes the document to path, replacing it atomically.
func WithJSONFile(path string) JSONOption {
	return func(j *JSONExporter) {
		j.filePath = path
	}
}

func WithJSONCompact() JSONOption {
	return func(j *JSONExporter) {
		j.compact = true
	}
}

func NewJSONExporter(opts ...JSONOption) *JSONExporter {
	j := &JSONExporter{started: time.Now()}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

type JSONMetricsOutput struct {
	Metadata JSONMetadata      `json:"metadata"`
	Summary  *AggregateMetrics `json:"summary"`
	Files    []FileMetrics     `json:"files"`
	Checks   []*CheckMetrics   `json:"checks"`
}

type JSONMetadata struct {
	GeneratedAt string  `json:"generated_at"`
	ElapsedMs   float64 `json:"elapsed_ms"`
}

// FileMetrics counts outcomes for one check file.
type FileMetrics struct {
	File    string `json:"file"`
	Checks  int    `json:"checks"`
	Passed  int    `json:"passed"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
	Errors  int    `json:"errors"`
}

func (j *JSONExporter) ExportSingle(metric *CheckMetrics) error {
	j.checks = append(j.checks, metric)
	return nil
}

func (j *JSONExporter) Export(metrics *AggregateMetrics) error {
	now := time.Now()
	doc := JSONMetricsOutput{
		Metadata: JSONMetadata{
			GeneratedAt: now.Format(time.RFC3339),
			ElapsedMs:   float64(now.Sub(j.started).Microseconds()) / 1000,
		},
		Summary: metrics,
		Files:   byFile(j.checks),
		Checks:  j.checks,
	}

	var data []byte
	var err error
	if j.compact {
		data, err = json.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling metrics: %w", err)
	}
	return emit(append(data, '\n'), j.filePath, j.writer)
}

func (j *JSONExporter) Close() error {
	j.checks = nil
	return nil
}

// byFile groups checks by file, keeping the order files were first seen.
func byFile(checks []*CheckMetrics) []FileMetrics {
	index := make(map[string]int)
	files := make([]FileMetrics, 0)
	for _, c := range checks {
		i, ok := index[c.File]
		if !ok {
			i = len(files)
			index[c.File] = i
			files = append(files, FileMetrics{File: c.File})
		}
		f := &files[i]
		f.Checks++
		switch c.Result {
		case ResultPassed:
			f.Passed++
		case ResultFailed:
			f.Failed++
		case ResultSkipped:
			f.Skipped++
		case ResultError:
			f.Errors++
		}
	}
	return files
}

// emit writes data to path (through a temp file and rename) and to w, when
// each is set.
func emit(data []byte, path string, w io.Writer) error {
	if path != "" {
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, data, 0644); err != nil {
			return fmt.Errorf("writing metrics file: %w", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("writing metrics file: %w", err)
		}
	}
	if w != nil {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}
