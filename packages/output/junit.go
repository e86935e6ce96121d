package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitassert/packages/core/runner"
	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
	"github.com/abdul-hamid-achik/hitassert/packages/matcher"
)

// JUnitTestSuites is the root element; there is one suite per check file.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr,omitempty"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName    xml.Name        `xml:"testcase"`
	Name       string          `xml:"name,attr"`
	ClassName  string          `xml:"classname,attr"`
	Time       float64         `xml:"time,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	Failure    *JUnitProblem   `xml:"failure,omitempty"`
	Error      *JUnitProblem   `xml:"error,omitempty"`
	Skipped    *JUnitSkipped   `xml:"skipped,omitempty"`
	SystemOut  string          `xml:"system-out,omitempty"`
}

type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// JUnitProblem is the body of a <failure> or <error> element.
type JUnitProblem struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

type JUnitFormatter struct {
	writer io.Writer
	suites []JUnitTestSuite
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

func (f *JUnitFormatter) FormatResult(result *runner.RunResult) {
	suite := JUnitTestSuite{
		Name:      result.File,
		Tests:     len(result.Results),
		Time:      result.Duration.Seconds(),
		Timestamp: time.Now().Format(time.RFC3339),
		TestCases: make([]JUnitTestCase, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		tc := junitCase(result.File, r)
		switch {
		case tc.Skipped != nil:
			suite.Skipped++
		case tc.Error != nil:
			suite.Errors++
		case tc.Failure != nil:
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	f.suites = append(f.suites, suite)
}

// junitCase converts one check. A check that could not be evaluated becomes
// an <error>; a check with failure records becomes a <failure>.
func junitCase(file string, r *runner.CheckResult) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      r.Name,
		ClassName: file,
		Time:      r.Duration.Seconds(),
	}
	if r.Operator != "" {
		tc.Properties = append(tc.Properties, JUnitProperty{Name: "operator", Value: r.Operator})
	}
	if len(r.Tags) > 0 {
		tc.Properties = append(tc.Properties, JUnitProperty{Name: "tags", Value: strings.Join(r.Tags, ",")})
	}

	switch {
	case r.Skipped:
		tc.Skipped = &JUnitSkipped{Message: r.SkipReason}
	case r.Error != nil:
		tc.Error = &JUnitProblem{Message: r.Error.Error(), Type: "error"}
	case !r.Passed:
		message := "check failed"
		if len(r.Records) > 0 {
			message = diagnostic.Summary(r.Records[0])
		}
		tc.Failure = &JUnitProblem{
			Message: message,
			Type:    r.Operator,
			Content: failureText(r),
		}
		tc.SystemOut = "actual: " + matcher.DescribeAll(r.Actual)
	}
	return tc
}

func (f *JUnitFormatter) FormatError(err error) {}

func (f *JUnitFormatter) FormatHeader(version string) {}

// Flush writes the accumulated JUnit XML output.
func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	root := JUnitTestSuites{
		Name:       "hitassert",
		Time:       totalDuration.Seconds(),
		Timestamp:  time.Now().Format(time.RFC3339),
		TestSuites: f.suites,
	}
	for _, s := range f.suites {
		root.Tests += s.Tests
		root.Failures += s.Failures
		root.Errors += s.Errors
		root.Skipped += s.Skipped
	}

	if _, err := io.WriteString(f.writer, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f.writer)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encoding JUnit report: %w", err)
	}
	_, err := io.WriteString(f.writer, "\n")
	return err
}
