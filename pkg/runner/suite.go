package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/specvital/grammarsnap/pkg/engine"
)

const (
	// DefaultWorkers indicates that the suite should use GOMAXPROCS as the worker count.
	DefaultWorkers = 0
	// DefaultTimeout is the default suite timeout duration.
	DefaultTimeout = 5 * time.Minute
	// MaxWorkers is the maximum number of concurrent workers allowed.
	MaxWorkers = 1024
	// FixtureExt is the extension of fixture files.
	FixtureExt = ".test"
)

// DefaultSkipDirs contains directory names that are skipped by default during discovery.
var DefaultSkipDirs = []string{
	".git",
	"node_modules",
}

// Case is a discovered fixture.
type Case struct {
	// Path is the fixture path (root joined with the relative path).
	Path string
	// Language is the composed language identifier taken from the first
	// directory below the suite root.
	Language string
}

// SuiteResult contains the outcome of a suite run.
type SuiteResult struct {
	// Results contains one entry per fixture that ran, sorted by path.
	Results []CaseResult

	// Errors contains non-fatal discovery errors.
	Errors []error

	// Stats provides run statistics.
	Stats SuiteStats
}

// SuiteStats provides statistics about a suite run.
type SuiteStats struct {
	// Discovered is the number of fixtures found.
	Discovered int
	// Passed is the number of fixtures that passed or were recorded.
	Passed int
	// Failed is the number of fixtures that failed.
	Failed int
	// Skipped is the number of fixtures that did not run.
	Skipped int
	// Written is the number of fixture files rewritten.
	Written int
	// Duration is the total run duration.
	Duration time.Duration
}

// Failures returns the results of failed fixtures.
func (r *SuiteResult) Failures() []CaseResult {
	var failed []CaseResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// OK reports whether every discovered fixture ran and passed.
func (r *SuiteResult) OK() bool {
	return r.Stats.Failed == 0 && r.Stats.Skipped == 0 && len(r.Errors) == 0
}

// Suite discovers fixtures below a root directory and runs them in parallel.
//
// Every directory directly below the root is named after the composed
// language identifier of the fixtures it contains, e.g. "css+markup".
type Suite struct {
	runner  *Runner
	options *Options
}

// NewSuite creates a suite that loads engine instances from loader.
func NewSuite(loader engine.Loader, opts ...Option) *Suite {
	runner := NewRunner(loader, opts...)
	return &Suite{
		runner:  runner,
		options: runner.options,
	}
}

// Run discovers and runs all fixtures below root.
func (s *Suite) Run(ctx context.Context, root string) (*SuiteResult, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	cases, errs, err := s.discover(ctx, root)
	if err != nil {
		if ctxErr := suiteContextError(ctx); ctxErr != nil {
			return &SuiteResult{}, ctxErr
		}
		return nil, err
	}

	result := s.runCases(ctx, cases)
	result.Errors = append(result.Errors, errs...)
	result.Stats.Duration = time.Since(startTime)

	s.options.Logger.Info("suite finished",
		slog.String("root", root),
		slog.Int("discovered", result.Stats.Discovered),
		slog.Int("passed", result.Stats.Passed),
		slog.Int("failed", result.Stats.Failed),
		slog.Int("written", result.Stats.Written),
		slog.Duration("duration", result.Stats.Duration),
	)

	return result, suiteContextError(ctx)
}

// RunCases runs the given fixtures. This bypasses discovery.
func (s *Suite) RunCases(ctx context.Context, cases []Case) (*SuiteResult, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	result := s.runCases(ctx, cases)
	result.Stats.Duration = time.Since(startTime)

	return result, suiteContextError(ctx)
}

// Discover returns the fixtures below root sorted by path.
func (s *Suite) Discover(ctx context.Context, root string) ([]Case, error) {
	cases, errs, err := s.discover(ctx, root)
	if err != nil {
		return nil, err
	}
	return cases, errors.Join(errs...)
}

func (s *Suite) discover(ctx context.Context, root string) ([]Case, []error, error) {
	skipSet := buildSkipSet(append(append([]string{}, DefaultSkipDirs...), s.options.SkipDirs...))

	var (
		cases []Case
		errs  []error
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if walkErr != nil {
			if path == root {
				return walkErr
			}
			errs = append(errs, fmt.Errorf("access error at %s: %w", path, walkErr))
			return nil
		}

		if d.IsDir() {
			if path != root && skipSet[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(d.Name(), FixtureExt) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("compute relative path for %s: %w", path, err))
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		language, _, nested := strings.Cut(relPath, "/")
		if !nested {
			return nil
		}

		if len(s.options.Patterns) > 0 && !matchesAnyPattern(relPath, s.options.Patterns) {
			return nil
		}

		cases = append(cases, Case{Path: path, Language: language})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("discover fixtures in %s: %w", root, err)
	}

	sort.Slice(cases, func(i, j int) bool {
		return cases[i].Path < cases[j].Path
	})

	return cases, errs, nil
}

func (s *Suite) runCases(ctx context.Context, cases []Case) *SuiteResult {
	workers := s.options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	var (
		mu      sync.Mutex
		results = make([]CaseResult, 0, len(cases))
	)

	for _, c := range cases {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			res := s.runner.Run(gCtx, c.Language, c.Path, s.options.Mode)
			s.options.Logger.Debug("fixture finished",
				slog.String("path", res.Path),
				slog.Bool("ok", res.Err == nil),
				slog.Bool("written", res.Written),
				slog.Duration("duration", res.Duration),
			)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	// Sort by path for deterministic output order.
	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	result := &SuiteResult{
		Results: results,
		Stats:   SuiteStats{Discovered: len(cases)},
	}
	for _, res := range results {
		if res.Err != nil {
			result.Stats.Failed++
		} else {
			result.Stats.Passed++
		}
		if res.Written {
			result.Stats.Written++
		}
	}
	result.Stats.Skipped = result.Stats.Discovered - len(results)

	return result
}

func suiteContextError(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrSuiteTimeout
	case errors.Is(err, context.Canceled):
		return ErrSuiteCancelled
	default:
		return nil
	}
}

func buildSkipSet(patterns []string) map[string]bool {
	skipSet := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		skipSet[p] = true
	}
	return skipSet
}

func matchesAnyPattern(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
