package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hitassert/packages/core/config"
	"github.com/abdul-hamid-achik/hitassert/packages/core/env"
	"github.com/abdul-hamid-achik/hitassert/packages/core/parser"
	"github.com/abdul-hamid-achik/hitassert/packages/core/runner"
	"github.com/abdul-hamid-achik/hitassert/packages/export/metrics"
	"github.com/abdul-hamid-achik/hitassert/packages/notify"
	"github.com/abdul-hamid-achik/hitassert/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>",
	Short: "Run checks from hitassert files",
	Long: `Run checks defined in .check.yaml, .check.yml or .hitassert files.

Examples:
  hitassert run users.check.yaml
  hitassert run ./checks/ --tags smoke
  hitassert run ./checks/ --name "admins*" -v
  hitassert run ./checks/ -o junit --output-file report.xml
  hitassert run ./checks/ --env-file .env.ci --parallel`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	envFileFlag     string
	nameFlag        string
	tagsFlag        string
	verboseFlag     int // 0=off, 1=-v, 2=-vv
	quietFlag       bool
	bailFlag        bool
	noColorFlag     bool
	dryRunFlag      bool
	outputFlag      string
	outputFileFlag  string
	parallelFlag    bool
	concurrencyFlag int
	watchFlag       bool
	configFlag      string
	sortableFlag    bool

	// Metrics flags
	metricsFlag     string
	metricsFileFlag string

	// Notification flags
	notifyFlag       string
	notifyOnFlag     string
	slackWebhookFlag string
	slackChannelFlag string
)

func init() {
	// Core flags
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("HITASSERT_ENV_FILE", ""), "Path to .env file for variable interpolation (env: HITASSERT_ENV_FILE)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("HITASSERT_CONFIG", ""), "Path to config file (env: HITASSERT_CONFIG)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only checks matching name pattern")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("HITASSERT_TAGS", ""), "Run only checks with specified tags (comma-separated) (env: HITASSERT_TAGS)")

	// Output flags
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v, -vv for more detail)")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("HITASSERT_QUIET", false), "Suppress all output except errors (env: HITASSERT_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("HITASSERT_NO_COLOR", false), "Disable colored output (env: HITASSERT_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("HITASSERT_OUTPUT", "console"), "Output format: console, json, junit, tap (env: HITASSERT_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("HITASSERT_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: HITASSERT_OUTPUT_FILE)")
	runCmd.Flags().BoolVar(&sortableFlag, "sortable", getEnvBool("HITASSERT_SORTABLE", false), "Sort collections in failure messages (env: HITASSERT_SORTABLE)")

	// Execution flags
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("HITASSERT_BAIL", false), "Stop on first failure (env: HITASSERT_BAIL)")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Parse and show what would run without executing")
	runCmd.Flags().BoolVarP(&parallelFlag, "parallel", "p", getEnvBool("HITASSERT_PARALLEL", false), "Run checks of a file in parallel (env: HITASSERT_PARALLEL)")
	runCmd.Flags().IntVar(&concurrencyFlag, "concurrency", getEnvInt("HITASSERT_CONCURRENCY", config.DefaultConcurrency), "Number of concurrent checks when running in parallel (env: HITASSERT_CONCURRENCY)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run checks")

	// Metrics flags
	runCmd.Flags().StringVar(&metricsFlag, "metrics", getEnvString("HITASSERT_METRICS", ""), "Metrics export format: json, prometheus (env: HITASSERT_METRICS)")
	runCmd.Flags().StringVar(&metricsFileFlag, "metrics-file", getEnvString("HITASSERT_METRICS_FILE", ""), "Output file for metrics (default: stderr) (env: HITASSERT_METRICS_FILE)")

	// Notification flags
	runCmd.Flags().StringVar(&notifyFlag, "notify", getEnvString("HITASSERT_NOTIFY", ""), "Notification service: slack (env: HITASSERT_NOTIFY)")
	runCmd.Flags().StringVar(&notifyOnFlag, "notify-on", getEnvString("HITASSERT_NOTIFY_ON", "failure"), "When to notify: always, failure, success, recovery (env: HITASSERT_NOTIFY_ON)")
	runCmd.Flags().StringVar(&slackWebhookFlag, "slack-webhook", getEnvString("SLACK_WEBHOOK", ""), "Slack webhook URL (env: SLACK_WEBHOOK)")
	runCmd.Flags().StringVar(&slackChannelFlag, "slack-channel", getEnvString("SLACK_CHANNEL", ""), "Slack channel override (env: SLACK_CHANNEL)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// explicit reports whether a flag was given on the command line or through
// its environment fallback, in which case it wins over the config file.
func explicit(cmd *cobra.Command, name, envKey string) bool {
	return cmd.Flags().Changed(name) || os.Getenv(envKey) != ""
}

// newLogger builds the CLI logger. Verbosity 0 logs warnings, 1 info and
// 2 or more debug.
func newLogger(w io.Writer, verbosity int, quiet, noColor bool) zerolog.Logger {
	if quiet {
		return zerolog.Nop()
	}

	level := zerolog.WarnLevel
	switch {
	case verbosity >= 2:
		level = zerolog.DebugLevel
	case verbosity == 1:
		level = zerolog.InfoLevel
	}

	out := zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// buildRunnerConfig overlays the command line on the config file.
func buildRunnerConfig(cmd *cobra.Command, fileConfig *config.Config, logger *zerolog.Logger) *runner.Config {
	var tagsFilter []string
	if tagsFlag != "" {
		for _, t := range strings.Split(tagsFlag, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				tagsFilter = append(tagsFilter, t)
			}
		}
	}

	cfg := &runner.Config{
		Verbose:           verboseFlag > 0 || fileConfig.GetVerbose(),
		Bail:              fileConfig.GetBail(),
		NameFilter:        nameFlag,
		TagsFilter:        tagsFilter,
		Parallel:          fileConfig.GetParallel(),
		Concurrency:       fileConfig.Concurrency,
		Sortable:          fileConfig.GetSortable(),
		ContainerName:     fileConfig.ContainerName,
		ElementPluralName: fileConfig.ElementPluralName,
		EnvFile:           fileConfig.EnvFile,
		Variables:         fileConfig.Variables,
		Logger:            logger,
	}

	if explicit(cmd, "bail", "HITASSERT_BAIL") {
		cfg.Bail = bailFlag
	}
	if explicit(cmd, "parallel", "HITASSERT_PARALLEL") {
		cfg.Parallel = parallelFlag
	}
	if explicit(cmd, "concurrency", "HITASSERT_CONCURRENCY") {
		cfg.Concurrency = concurrencyFlag
	}
	if explicit(cmd, "sortable", "HITASSERT_SORTABLE") {
		cfg.Sortable = sortableFlag
	}
	if envFileFlag != "" {
		cfg.EnvFile = envFileFlag
	}

	return cfg
}

// outputFormat picks the format from the flag, then the first configured
// reporter.
func outputFormat(cmd *cobra.Command, fileConfig *config.Config) string {
	if explicit(cmd, "output", "HITASSERT_OUTPUT") || len(fileConfig.Reporters) == 0 {
		return outputFlag
	}
	return fileConfig.Reporters[0]
}

func outputPath(format string, fileConfig *config.Config) string {
	if outputFileFlag != "" {
		return outputFileFlag
	}
	if fileConfig.OutputDir == "" || format == "console" {
		return ""
	}
	ext := map[string]string{"json": "json", "junit": "xml", "tap": "tap"}[format]
	return filepath.Join(fileConfig.OutputDir, "hitassert-results."+ext)
}

type runTotals struct {
	passed, failed, skipped int
	errored                 bool
	duration                time.Duration
	results                 []*runner.RunResult
}

func (t runTotals) code() int {
	switch {
	case t.errored:
		return ExitParseError
	case t.failed > 0:
		return ExitCheckFailure
	}
	return ExitSuccess
}

func runCommand(cmd *cobra.Command, args []string) error {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	noColor := noColorFlag || quietFlag || fileConfig.GetNoColor()
	logger := newLogger(cmd.ErrOrStderr(), verboseFlag, quietFlag, noColor)
	cfg := buildRunnerConfig(cmd, fileConfig, &logger)

	if cfg.EnvFile != "" {
		if _, err := env.LoadDotEnv(cfg.EnvFile); err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("cannot load env file: %w", err))
		}
	}

	format := outputFormat(cmd, fileConfig)
	var outWriter io.Writer = cmd.OutOrStdout()
	if path := outputPath(format, fileConfig); path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return withExitCode(ExitConfigError, fmt.Errorf("cannot create output directory: %w", err))
			}
		}
		f, err := os.Create(path)
		if err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("cannot create output file: %w", err))
		}
		defer f.Close()
		outWriter = f
	} else if quietFlag && format == "console" {
		outWriter = io.Discard
	}

	notifier, err := newNotifyManager()
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	if metricsFlag != "" {
		if _, err := metrics.NewExporter(metricsFlag, "", io.Discard); err != nil {
			return withExitCode(ExitUsageError, err)
		}
	}

	newFormatter := func() (output.Formatter, error) {
		return output.New(format, outWriter, cfg.Verbose, noColor)
	}
	formatter, err := newFormatter()
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	files, err := collectFiles(args)
	if err != nil {
		formatter.FormatError(err)
		return withExitCode(ExitUsageError, err)
	}

	if len(files) == 0 {
		err := fmt.Errorf("no %s files found", strings.Join(parser.Extensions, ", "))
		return withExitCode(ExitUsageError, err)
	}

	if dryRunFlag {
		return dryRun(cmd.OutOrStdout(), files)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.NewRunner(cfg)

	formatter.FormatHeader(version)
	totals := runFiles(ctx, r, files, formatter, cfg.Bail)
	if err := flush(formatter, totals.duration); err != nil {
		return err
	}
	if err := report(cmd, totals, notifier, logger); err != nil {
		return withExitCode(ExitConfigError, err)
	}

	if !watchFlag {
		if code := totals.code(); code != ExitSuccess {
			return withExitCode(code, nil)
		}
		return nil
	}

	return watch(ctx, cmd, args, files, func() {
		formatter, err := newFormatter()
		if err != nil {
			return
		}
		totals := runFiles(ctx, r, files, formatter, cfg.Bail)
		_ = flush(formatter, totals.duration)
		if err := report(cmd, totals, notifier, logger); err != nil {
			logger.Error().Err(err).Msg("reporting run")
		}
	})
}

func runFiles(ctx context.Context, r *runner.Runner, files []string, formatter output.Formatter, bail bool) runTotals {
	var totals runTotals
	start := time.Now()

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}

		result, err := r.RunFileContext(ctx, file)
		if err != nil {
			formatter.FormatError(fmt.Errorf("%s: %w", file, err))
			totals.errored = true
			if bail {
				break
			}
			continue
		}

		formatter.FormatResult(result)
		totals.results = append(totals.results, result)
		totals.passed += result.Passed
		totals.failed += result.Failed
		totals.skipped += result.Skipped

		if bail && result.Failed > 0 {
			break
		}
	}

	totals.duration = time.Since(start)
	return totals
}

func newNotifyManager() (*notify.Manager, error) {
	if notifyFlag == "" {
		return nil, nil
	}

	on, err := notify.ParseNotifyOn(notifyOnFlag)
	if err != nil {
		return nil, err
	}

	var notifiers []notify.Notifier
	for _, service := range strings.Split(notifyFlag, ",") {
		switch strings.ToLower(strings.TrimSpace(service)) {
		case "slack":
			if slackWebhookFlag == "" {
				return nil, fmt.Errorf("--slack-webhook is required when using --notify slack")
			}
			var opts []notify.SlackOption
			if slackChannelFlag != "" {
				opts = append(opts, notify.WithSlackChannel(slackChannelFlag))
			}
			notifiers = append(notifiers, notify.NewSlackNotifier(slackWebhookFlag, opts...))
		case "":
		default:
			return nil, fmt.Errorf("unknown notification service %q", service)
		}
	}
	return notify.NewManager(on, notifiers...), nil
}

// report exports metrics and sends notifications for a finished run.
// Notification failures are logged rather than failing the run.
func report(cmd *cobra.Command, totals runTotals, notifier *notify.Manager, logger zerolog.Logger) error {
	if metricsFlag != "" {
		exporter, err := metrics.NewExporter(metricsFlag, metricsFileFlag, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		collector := metrics.NewCollector(exporter)
		for _, result := range totals.results {
			collector.RecordRun(result)
		}
		if err := collector.Flush(); err != nil {
			return err
		}
		if err := collector.Close(); err != nil {
			return err
		}
	}

	if notifier != nil {
		if err := notifier.Notify(notify.Summarize(totals.results, totals.duration)); err != nil {
			logger.Warn().Err(err).Msg("sending notification")
		}
	}
	return nil
}

func flush(formatter output.Formatter, d time.Duration) error {
	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(d); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}
	return nil
}

func dryRun(w io.Writer, files []string) error {
	hasErrors := false
	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(w, "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}
		fmt.Fprintf(w, "Would run: %s\n", file)
		for _, c := range f.Checks {
			status := ""
			if c.Skip != "" {
				status = " (skip: " + c.Skip + ")"
			}
			fmt.Fprintf(w, "  - %s [%s]%s\n", c.Name, c.Expect.Operator, status)
		}
	}
	if hasErrors {
		return withExitCode(ExitParseError, nil)
	}
	return nil
}

func watch(ctx context.Context, cmd *cobra.Command, args, files []string, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Data files next to the checks trigger a re-run too.
	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to watch %s: %v\n", dir, err)
			}
			watchedDirs[dir] = true
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() && !watchedDirs[path] {
					_ = watcher.Add(path)
					watchedDirs[path] = true
				}
				return nil
			})
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				name := event.Name
				debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running checks...\n\n", name)
					rerun()
					fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && parser.IsCheckFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if parser.IsCheckFile(arg) {
			files = append(files, arg)
		}
	}

	return files, nil
}
