package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/hitassert/packages/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var diffOutputFlag string

var diffCmd = &cobra.Command{
	Use:   "diff <results1.json> <results2.json>",
	Short: "Compare two check result files",
	Long: `Compare two JSON result files written by "hitassert run -o json" and
show which checks regressed, which were fixed and which were added or
removed. Exits with status 1 when any check regressed.

Examples:
  hitassert diff before.json after.json
  hitassert diff before.json after.json --output json`,
	Args: cobra.ExactArgs(2),
	RunE: diffCommand,
}

func init() {
	diffCmd.Flags().StringVarP(&diffOutputFlag, "output", "o", "console", "Output format: console, json")
}

// Status changes between two runs of the same check
const (
	StatusRegressed = "regressed"
	StatusFixed     = "fixed"
	StatusUnchanged = "unchanged"
	StatusNew       = "new"
	StatusRemoved   = "removed"
)

// DiffResult holds the comparison result
type DiffResult struct {
	File1       string            `json:"file1"`
	File2       string            `json:"file2"`
	Comparisons []CheckComparison `json:"comparisons"`
	Summary     DiffSummary       `json:"summary"`
}

type CheckComparison struct {
	Name     string   `json:"name"`
	File     string   `json:"file"`
	Status   string   `json:"status"`
	Passed1  bool     `json:"passed1"`
	Passed2  bool     `json:"passed2"`
	Failures []string `json:"failures,omitempty"`
}

type DiffSummary struct {
	Total     int `json:"total"`
	Regressed int `json:"regressed"`
	Fixed     int `json:"fixed"`
	Unchanged int `json:"unchanged"`
	New       int `json:"new"`
	Removed   int `json:"removed"`
}

func diffCommand(cmd *cobra.Command, args []string) error {
	file1, file2 := args[0], args[1]

	results1, err := loadResultsFile(file1)
	if err != nil {
		return withExitCode(ExitUsageError, fmt.Errorf("failed to load %s: %w", file1, err))
	}

	results2, err := loadResultsFile(file2)
	if err != nil {
		return withExitCode(ExitUsageError, fmt.Errorf("failed to load %s: %w", file2, err))
	}

	diff := compareResults(file1, file2, results1, results2)

	switch strings.ToLower(diffOutputFlag) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(diff); err != nil {
			return err
		}
	default:
		outputDiffConsole(cmd.OutOrStdout(), diff)
	}

	if diff.Summary.Regressed > 0 {
		return withExitCode(ExitCheckFailure, nil)
	}
	return nil
}

func loadResultsFile(path string) (*output.JSONOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var results output.JSONOutput
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, err
	}

	return &results, nil
}

func checkKey(c output.JSONCheck) string {
	return c.File + "::" + c.Name
}

// compareResults matches checks by file and name. Skipped checks count as
// absent from their run.
func compareResults(file1, file2 string, results1, results2 *output.JSONOutput) *DiffResult {
	diff := &DiffResult{File1: file1, File2: file2}

	checks1 := make(map[string]output.JSONCheck)
	checks2 := make(map[string]output.JSONCheck)
	for _, c := range results1.Checks {
		if !c.Skipped {
			checks1[checkKey(c)] = c
		}
	}
	for _, c := range results2.Checks {
		if !c.Skipped {
			checks2[checkKey(c)] = c
		}
	}

	keys := make([]string, 0, len(checks1)+len(checks2))
	for key := range checks1 {
		keys = append(keys, key)
	}
	for key := range checks2 {
		if _, ok := checks1[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		c1, in1 := checks1[key]
		c2, in2 := checks2[key]

		comp := CheckComparison{Passed1: c1.Passed, Passed2: c2.Passed}
		switch {
		case in1 && in2:
			comp.Name, comp.File = c2.Name, c2.File
			switch {
			case c1.Passed && !c2.Passed:
				comp.Status = StatusRegressed
				comp.Failures = failureMessages(c2)
				diff.Summary.Regressed++
			case !c1.Passed && c2.Passed:
				comp.Status = StatusFixed
				diff.Summary.Fixed++
			default:
				comp.Status = StatusUnchanged
				diff.Summary.Unchanged++
			}
		case in1:
			comp.Name, comp.File = c1.Name, c1.File
			comp.Status = StatusRemoved
			diff.Summary.Removed++
		default:
			comp.Name, comp.File = c2.Name, c2.File
			comp.Status = StatusNew
			comp.Failures = failureMessages(c2)
			diff.Summary.New++
		}

		diff.Comparisons = append(diff.Comparisons, comp)
		diff.Summary.Total++
	}

	return diff
}

func failureMessages(c output.JSONCheck) []string {
	if c.Error != "" {
		return []string{c.Error}
	}
	return c.Messages
}

func outputDiffConsole(w io.Writer, diff *DiffResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(w, "\n%s\n", bold("Check Results Comparison"))
	fmt.Fprintf(w, "  %s: %s\n", cyan("File 1"), diff.File1)
	fmt.Fprintf(w, "  %s: %s\n\n", cyan("File 2"), diff.File2)

	for _, c := range diff.Comparisons {
		var marker string
		switch c.Status {
		case StatusRegressed:
			marker = red("✗ regressed")
		case StatusFixed:
			marker = green("✓ fixed")
		case StatusNew:
			marker = yellow("+ new")
		case StatusRemoved:
			marker = yellow("- removed")
		default:
			continue
		}
		fmt.Fprintf(w, "  %s  %s (%s)\n", marker, c.Name, c.File)
		for _, msg := range c.Failures {
			fmt.Fprintf(w, "      %s %s\n", red("→"), msg)
		}
	}

	s := diff.Summary
	fmt.Fprintf(w, "\n%s %d regressed, %d fixed, %d unchanged, %d new, %d removed (%d total)\n",
		bold("Summary:"), s.Regressed, s.Fixed, s.Unchanged, s.New, s.Removed, s.Total)
}
