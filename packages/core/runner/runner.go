package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/hitassert/packages/core/env"
	"github.com/abdul-hamid-achik/hitassert/packages/core/parser"
	"github.com/abdul-hamid-achik/hitassert/packages/diagnostic"
	"github.com/abdul-hamid-achik/hitassert/packages/source"
	"github.com/abdul-hamid-achik/hitassert/packages/subjects"
	"github.com/rs/zerolog"
)

const (
	// DefaultConcurrency is the default number of concurrent checks in parallel mode
	DefaultConcurrency = 5
)

type Runner struct {
	resolver *env.Resolver
	config   *Config
	logger   zerolog.Logger
}

type Config struct {
	Verbose     bool
	Bail        bool
	NameFilter  string
	TagsFilter  []string
	Parallel    bool
	Concurrency int

	// Display defaults, overridden per check.
	Sortable          bool
	ContainerName     string
	ElementPluralName string

	EnvFile   string
	Variables map[string]any

	// Logger receives debug traces and, when Verbose is set, every failure
	// record. Nil disables logging.
	Logger *zerolog.Logger

	// Opener overrides how database sources connect.
	Opener source.Opener
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	resolver := env.NewResolver()
	resolver.SetWarnFunc(func(format string, args ...any) {
		logger.Warn().Msgf(format, args...)
	})

	return &Runner{
		resolver: resolver,
		config:   cfg,
		logger:   logger,
	}
}

type RunResult struct {
	File     string
	Results  []*CheckResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
}

type CheckResult struct {
	Name       string
	Tags       []string
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Operator   string
	Actual     []any
	Records    []diagnostic.Record
	Error      error
}

func (r *Runner) RunFile(path string) (*RunResult, error) {
	return r.RunFileContext(context.Background(), path)
}

func (r *Runner) RunFileContext(ctx context.Context, path string) (*RunResult, error) {
	file, err := parser.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	resolver, err := r.fileResolver(file)
	if err != nil {
		return nil, err
	}

	return r.runChecks(ctx, file, resolver)
}

// fileResolver layers variables by increasing precedence: the check file,
// the runner config, the env file and HITASSERT_VAR_ environment variables.
func (r *Runner) fileResolver(file *parser.File) (*env.Resolver, error) {
	var dotenv map[string]any
	if r.config.EnvFile != "" {
		vars, err := env.LoadDotEnv(r.config.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
		dotenv = env.StringMap(vars)
	}

	resolver := r.resolver.Clone()
	resolver.SetVariables(env.MergeVariables(
		file.Variables,
		r.config.Variables,
		dotenv,
		env.LoadSystemEnv(env.SystemPrefix),
	))
	return resolver, nil
}

func (r *Runner) runChecks(ctx context.Context, file *parser.File, resolver *env.Resolver) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		File: file.Path,
	}

	baseDir := filepath.Dir(file.Path)
	loader := source.NewLoader(baseDir)
	if r.config.Opener != nil {
		loader.WithOpener(r.config.Opener)
	}
	defer func() {
		if err := loader.Close(); err != nil {
			r.logger.Warn().Err(err).Msg("closing database sources")
		}
	}()

	r.logger.Debug().Str("file", file.Path).Int("checks", len(file.Checks)).Msg("running file")

	hasOnly := false
	for _, check := range file.Checks {
		if check.Only {
			hasOnly = true
			break
		}
	}

	var runnable []*parser.Check
	for _, check := range file.Checks {
		if !r.shouldRun(check, hasOnly) {
			result.Results = append(result.Results, skipped(check, "filtered out"))
			result.Skipped++
			continue
		}
		if check.Skip != "" {
			result.Results = append(result.Results, skipped(check, check.Skip))
			result.Skipped++
			continue
		}
		runnable = append(runnable, check)
	}

	if r.config.Parallel {
		for _, checkResult := range r.runParallel(ctx, runnable, baseDir, resolver, loader) {
			result.Results = append(result.Results, checkResult)
			if checkResult.Passed {
				result.Passed++
			} else {
				result.Failed++
			}
		}
	} else {
		for _, check := range runnable {
			if ctx.Err() != nil {
				break
			}
			checkResult := r.runCheck(ctx, check, baseDir, resolver, loader)
			result.Results = append(result.Results, checkResult)
			if checkResult.Passed {
				result.Passed++
			} else {
				result.Failed++
				if r.config.Bail {
					break
				}
			}
		}
	}

	result.Duration = time.Since(start)
	r.logger.Debug().
		Str("file", file.Path).
		Int("passed", result.Passed).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("file done")
	return result, nil
}

func (r *Runner) runParallel(ctx context.Context, checks []*parser.Check, baseDir string, resolver *env.Resolver, loader *source.Loader) []*CheckResult {
	concurrency := r.config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*CheckResult, len(checks))
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, check := range checks {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, c *parser.Check) {
			defer wg.Done()
			defer func() { <-sem }()

			results[idx] = r.runCheck(ctx, c, baseDir, resolver, loader)
		}(i, check)
	}

	wg.Wait()
	return results
}

func (r *Runner) shouldRun(check *parser.Check, hasOnly bool) bool {
	if hasOnly && !check.Only {
		return false
	}

	if r.config.NameFilter != "" && !matchesPattern(check.Name, r.config.NameFilter) {
		return false
	}

	if len(r.config.TagsFilter) > 0 && !hasAnyTag(check.Tags, r.config.TagsFilter) {
		return false
	}

	return true
}

func (r *Runner) runCheck(ctx context.Context, check *parser.Check, baseDir string, resolver *env.Resolver, loader *source.Loader) *CheckResult {
	start := time.Now()
	result := &CheckResult{
		Name:     check.Name,
		Tags:     check.Tags,
		Operator: check.Expect.Operator.String(),
	}
	log := r.logger.With().Str("check", check.Name).Logger()

	actual, err := loader.Load(ctx, resolveSource(check.Source, resolver))
	if err != nil {
		result.Error = fmt.Errorf("loading source: %w", err)
		result.Duration = time.Since(start)
		log.Debug().Err(err).Msg("source failed")
		return result
	}
	result.Actual = actual
	log.Debug().Str("source", check.Source.Kind.String()).Int("elements", len(actual)).Msg("source loaded")

	collector := diagnostic.NewCollector()
	var sink diagnostic.Sink = collector
	if r.config.Verbose {
		sink = diagnostic.Multi(collector, diagnostic.LogSink(log))
	}

	subject := subjects.New(sink, actual, r.options(check))
	if err := dispatch(subject, check.Expect, baseDir, resolver); err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	result.Records = collector.Records()
	result.Passed = len(result.Records) == 0
	result.Duration = time.Since(start)
	log.Debug().Bool("passed", result.Passed).Int("records", len(result.Records)).Dur("duration", result.Duration).Msg("check done")
	return result
}

func (r *Runner) options(check *parser.Check) subjects.Options {
	opts := subjects.Options{
		ContainerName:     r.config.ContainerName,
		ElementPluralName: r.config.ElementPluralName,
		Sortable:          r.config.Sortable,
	}
	if check.Container != "" {
		opts.ContainerName = check.Container
	}
	if check.Elements != "" {
		opts.ElementPluralName = check.Elements
	}
	if check.Sortable != nil {
		opts.Sortable = *check.Sortable
	}
	return opts
}

func resolveSource(src *parser.Source, resolver *env.Resolver) *parser.Source {
	resolved := *src
	resolved.Inline = resolver.ResolveValues(src.Inline)
	resolved.File = resolver.Resolve(src.File)
	resolved.Path = resolver.Resolve(src.Path)
	resolved.DB = resolver.Resolve(src.DB)
	resolved.Query = resolver.Resolve(src.Query)
	resolved.Column = resolver.Resolve(src.Column)
	return &resolved
}

func skipped(check *parser.Check, reason string) *CheckResult {
	return &CheckResult{
		Name:       check.Name,
		Tags:       check.Tags,
		Skipped:    true,
		SkipReason: reason,
		Operator:   check.Expect.Operator.String(),
	}
}

// matchesPattern supports a leading and/or trailing "*" wildcard.
func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	prefix := strings.HasPrefix(pattern, "*")
	suffix := strings.HasSuffix(pattern, "*")
	core := strings.Trim(pattern, "*")

	switch {
	case prefix && suffix:
		return strings.Contains(name, core)
	case prefix:
		return strings.HasSuffix(name, core)
	case suffix:
		return strings.HasPrefix(name, core)
	}
	return name == pattern
}

func hasAnyTag(tags []string, filters []string) bool {
	for _, filter := range filters {
		for _, tag := range tags {
			if tag == filter {
				return true
			}
		}
	}
	return false
}
