package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/hitassert/packages/core/config"
	"github.com/abdul-hamid-achik/hitassert/packages/core/parser"
	"github.com/abdul-hamid-achik/hitassert/packages/core/runner"
	"github.com/abdul-hamid-achik/hitassert/packages/output"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingChecks = `checks:
  - name: exact
    source:
      inline: [a, b]
    expect:
      op: contains_exactly
      values: [b, a]
`

const failingChecks = `checks:
  - name: missing c
    source:
      inline: [a, b]
    expect:
      op: contains_at_least
      values: [a, c]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitUsageError, exitCode(errors.New("unknown flag: --nope")))
	assert.Equal(t, ExitParseError, exitCode(withExitCode(ExitParseError, errors.New("bad"))))
	assert.Equal(t, ExitConfigError, exitCode(withExitCode(ExitConfigError, nil)))

	err := withExitCode(ExitCheckFailure, os.ErrNotExist)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "exit status", withExitCode(1, nil).Error())
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.check.yaml", passingChecks)
	writeFile(t, dir, "nested/b.hitassert", passingChecks)
	writeFile(t, dir, "nested/data.json", "[]")

	files, err := collectFiles([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.check.yaml"),
		filepath.Join(dir, "nested", "b.hitassert"),
	}, files)

	files, err = collectFiles([]string{filepath.Join(dir, "nested", "data.json")})
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = collectFiles([]string{filepath.Join(dir, "missing")})
	assert.ErrorContains(t, err, "cannot access")
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	ok := writeFile(t, dir, "ok.check.yaml", passingChecks)
	assert.NoError(t, validateFile(ok))

	badRegexp := writeFile(t, dir, "re.check.yaml", `checks:
  - name: bad pattern
    source:
      inline: [a]
    expect:
      op: contains_predicate
      matcher: {regexp: "("}
`)
	assert.ErrorContains(t, validateFile(badRegexp), `check "bad pattern"`)

	badInList := writeFile(t, dir, "list.check.yaml", `checks:
  - name: second is bad
    source:
      inline: [a, b]
    expect:
      op: contains_at_least
      matchers: [{equals: a}, {regexp: "("}]
`)
	assert.ErrorContains(t, validateFile(badInList), `check "second is bad": matcher 1:`)

	templated := writeFile(t, dir, "var.check.yaml", `checks:
  - name: templated
    source:
      inline: [a]
    expect:
      op: contains_predicate
      matcher: {not: {regexp: "{{pattern}}"}}
`)
	assert.NoError(t, validateFile(templated))

	broken := writeFile(t, dir, "broken.check.yaml", "checks: [")
	var perr *parser.ParseError
	assert.ErrorAs(t, validateFile(broken), &perr)
}

func TestDryRun(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "a.check.yaml", `checks:
  - name: first
    source: {inline: [1]}
    expect: {op: is_empty}
  - name: later
    skip: not ready
    source: {inline: [1]}
    expect: {op: has_size, size: 1}
`)
	var buf bytes.Buffer
	require.NoError(t, dryRun(&buf, []string{good}))
	assert.Equal(t, "Would run: "+good+"\n  - first [is_empty]\n  - later [has_size] (skip: not ready)\n", buf.String())

	bad := writeFile(t, dir, "b.check.yaml", "nope: 1")
	buf.Reset()
	err := dryRun(&buf, []string{bad})
	assert.Equal(t, ExitParseError, exitCode(err))
	assert.Contains(t, buf.String(), "Error in "+bad)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, zerolog.WarnLevel, newLogger(&buf, 0, false, true).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger(&buf, 1, false, true).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, newLogger(&buf, 3, false, true).GetLevel())
	assert.Equal(t, zerolog.Disabled, newLogger(&buf, 2, true, true).GetLevel())

	logger := newLogger(&buf, 0, false, true)
	logger.Warn().Str("file", "a.check.yaml").Msg("unresolved variable")
	assert.Contains(t, buf.String(), "unresolved variable")
	assert.Contains(t, buf.String(), "file=a.check.yaml")
}

func TestBuildRunnerConfig_FromConfigFile(t *testing.T) {
	fileConfig := config.DefaultConfig()
	fileConfig.Parallel = config.BoolPtr(true)
	fileConfig.Sortable = config.BoolPtr(true)
	fileConfig.Concurrency = 2
	fileConfig.ContainerName = "users"
	fileConfig.EnvFile = "/tmp/.env"
	fileConfig.Variables = map[string]any{"a": 1}

	cfg := buildRunnerConfig(&cobra.Command{}, fileConfig, nil)
	assert.True(t, cfg.Parallel)
	assert.True(t, cfg.Sortable)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "users", cfg.ContainerName)
	assert.Equal(t, "/tmp/.env", cfg.EnvFile)
	assert.Equal(t, map[string]any{"a": 1}, cfg.Variables)
}

func TestOutputPath(t *testing.T) {
	fileConfig := config.DefaultConfig()
	assert.Equal(t, "", outputPath("junit", fileConfig))

	fileConfig.OutputDir = "reports"
	assert.Equal(t, filepath.Join("reports", "hitassert-results.xml"), outputPath("junit", fileConfig))
	assert.Equal(t, "", outputPath("console", fileConfig))
}

func TestInitProject(t *testing.T) {
	dir := t.TempDir()
	c := &cobra.Command{}
	var out bytes.Buffer
	c.SetOut(&out)

	require.NoError(t, initProject(c, dir))
	assert.Contains(t, out.String(), "hitassert project initialized!")

	f, err := parser.ParseFile(filepath.Join(dir, "example.check.yaml"))
	require.NoError(t, err)
	require.Len(t, f.Checks, 4)
	assert.Equal(t, parser.OpContainsExactly, f.Checks[0].Expect.Operator)
	assert.True(t, f.Checks[0].Expect.InOrder)
	assert.Equal(t, "users.json", f.Checks[0].Source.File)
	assert.Equal(t, "alice", f.Variables["admin"])

	cfg, err := config.FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "collection", cfg.ContainerName)

	err = initProject(c, dir)
	assert.ErrorContains(t, err, "file already exists")
}

func TestCompareResults(t *testing.T) {
	before := &output.JSONOutput{Checks: []output.JSONCheck{
		{Name: "a", File: "x.check.yaml", Passed: true},
		{Name: "b", File: "x.check.yaml", Passed: false},
		{Name: "c", File: "x.check.yaml", Passed: true},
		{Name: "gone", File: "x.check.yaml", Passed: true},
		{Name: "skipped", File: "x.check.yaml", Skipped: true},
	}}
	after := &output.JSONOutput{Checks: []output.JSONCheck{
		{Name: "a", File: "x.check.yaml", Passed: false, Messages: []string{"expected collection to contain exactly 2 elements"}},
		{Name: "b", File: "x.check.yaml", Passed: true},
		{Name: "c", File: "x.check.yaml", Passed: true},
		{Name: "fresh", File: "x.check.yaml", Passed: false, Error: "loading source: boom"},
		{Name: "skipped", File: "x.check.yaml", Passed: true},
	}}

	diff := compareResults("before.json", "after.json", before, after)
	assert.Equal(t, DiffSummary{Total: 6, Regressed: 1, Fixed: 1, Unchanged: 1, New: 2, Removed: 1}, diff.Summary)

	byName := map[string]CheckComparison{}
	for _, c := range diff.Comparisons {
		byName[c.Name] = c
	}
	assert.Equal(t, StatusRegressed, byName["a"].Status)
	assert.Equal(t, []string{"expected collection to contain exactly 2 elements"}, byName["a"].Failures)
	assert.Equal(t, StatusFixed, byName["b"].Status)
	assert.Equal(t, StatusUnchanged, byName["c"].Status)
	assert.Equal(t, StatusRemoved, byName["gone"].Status)
	assert.Equal(t, StatusNew, byName["fresh"].Status)
	assert.Equal(t, []string{"loading source: boom"}, byName["fresh"].Failures)
	assert.Equal(t, StatusNew, byName["skipped"].Status)
}

func TestDiffConsole(t *testing.T) {
	diff := &DiffResult{
		File1: "before.json",
		File2: "after.json",
		Comparisons: []CheckComparison{
			{Name: "a", File: "x.check.yaml", Status: StatusRegressed, Failures: []string{"boom"}},
			{Name: "c", File: "x.check.yaml", Status: StatusUnchanged},
		},
		Summary: DiffSummary{Total: 2, Regressed: 1, Unchanged: 1},
	}

	color.NoColor = true
	var buf bytes.Buffer
	outputDiffConsole(&buf, diff)
	out := buf.String()
	assert.Contains(t, out, "regressed  a (x.check.yaml)")
	assert.Contains(t, out, "boom")
	assert.NotContains(t, out, "  c (x.check.yaml)")
	assert.Contains(t, out, "1 regressed, 0 fixed, 1 unchanged, 0 new, 0 removed (2 total)")
}

func TestRunCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "checks/pass.check.yaml", passingChecks)
	writeFile(t, dir, "checks/fail.check.yaml", failingChecks)
	report := filepath.Join(dir, "out", "report.json")

	rootCmd.SetArgs([]string{"run", filepath.Join(dir, "checks"), "-o", "json", "--output-file", report, "-q"})
	err := rootCmd.Execute()
	assert.Equal(t, ExitCheckFailure, exitCode(err))

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var results output.JSONOutput
	require.NoError(t, json.Unmarshal(data, &results))
	assert.Equal(t, output.JSONSummary{Total: 2, Passed: 1, Failed: 1}, results.Summary)
	assert.NotEmpty(t, results.RunID)
}

func TestNewNotifyManager(t *testing.T) {
	t.Cleanup(func() {
		notifyFlag, notifyOnFlag, slackWebhookFlag = "", "failure", ""
	})

	m, err := newNotifyManager()
	require.NoError(t, err)
	assert.Nil(t, m)

	notifyFlag = "slack"
	_, err = newNotifyManager()
	assert.ErrorContains(t, err, "--slack-webhook is required")

	slackWebhookFlag = "http://localhost/hook"
	notifyOnFlag = "never"
	_, err = newNotifyManager()
	assert.ErrorContains(t, err, "unknown notify policy")

	notifyOnFlag = "always"
	m, err = newNotifyManager()
	require.NoError(t, err)
	assert.NotNil(t, m)

	notifyFlag = "pager"
	_, err = newNotifyManager()
	assert.ErrorContains(t, err, `unknown notification service "pager"`)
}

func TestReport_Metrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hitassert.prom")
	metricsFlag, metricsFileFlag = "prometheus", path
	t.Cleanup(func() { metricsFlag, metricsFileFlag = "", "" })

	totals := runTotals{results: []*runner.RunResult{{
		File:    "a.check.yaml",
		Passed:  1,
		Results: []*runner.CheckResult{{Name: "exact", Operator: "contains_exactly", Passed: true}},
	}}}
	require.NoError(t, report(&cobra.Command{}, totals, nil, zerolog.Nop()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `hitassert_checks_total{result="passed"} 1`)
}

func TestRunTotalsCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, runTotals{passed: 2}.code())
	assert.Equal(t, ExitCheckFailure, runTotals{failed: 1}.code())
	assert.Equal(t, ExitParseError, runTotals{failed: 1, errored: true}.code())
}

func TestCompletionCandidates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.check.yaml", `checks:
  - name: admins
    tags: [smoke, users]
    source:
      inline: [a]
    expect:
      op: has_size
      size: 1
  - name: audit
    tags: [slow]
    source:
      inline: []
    expect:
      op: is_empty
`)
	b := writeFile(t, dir, "b.check.yaml", passingChecks)
	broken := writeFile(t, dir, "broken.check.yaml", "checks: [")
	files := []string{a, b, broken}

	assert.Equal(t, []string{"admins", "audit"}, completionCandidates(files, checkNames, "a"))
	assert.Equal(t, []string{"exact"}, completionCandidates(files, checkNames, "ex"))
	assert.Equal(t, []string{"slow", "smoke"}, completionCandidates(files, checkTags, "s"))
	assert.Equal(t, []string{"smoke,users"}, completionCandidates(files, checkTags, "smoke,u"))
	assert.Empty(t, completionCandidates(files, checkTags, "zzz"))
}
