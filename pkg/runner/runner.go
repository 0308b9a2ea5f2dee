// Package runner verifies and records snapshot fixtures.
//
// A fixture is run in one of three modes: verify compares only, insert also
// records missing expectations, and overwrite records the actual value
// whenever it differs from the expectation.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/specvital/grammarsnap/pkg/compare"
	"github.com/specvital/grammarsnap/pkg/domain"
	"github.com/specvital/grammarsnap/pkg/engine"
	"github.com/specvital/grammarsnap/pkg/fixture"
	"github.com/specvital/grammarsnap/pkg/langspec"
)

// DefaultCommand records missing expectations when followed by a fixture
// path.
const DefaultCommand = "grammarsnap run --mode insert"

// CaseResult is the outcome of one fixture.
type CaseResult struct {
	// Path is the fixture path.
	Path string
	// Language is the composed language identifier the fixture ran with.
	Language string
	// Err is nil if the fixture passed or was recorded.
	Err error
	// Written reports whether the fixture file was rewritten.
	Written bool
	// Duration is the time spent on the fixture.
	Duration time.Duration
}

// Runner runs single fixtures against an engine.
type Runner struct {
	loader  engine.Loader
	options *Options
}

// NewRunner creates a runner that loads engine instances from loader.
func NewRunner(loader engine.Loader, opts ...Option) *Runner {
	return &Runner{
		loader:  loader,
		options: newOptions(opts),
	}
}

// RunTestCase runs the fixture at filePath with the languages of
// languageIdentifier in the given mode.
func RunTestCase(ctx context.Context, loader engine.Loader, languageIdentifier, filePath string, mode domain.Mode) error {
	return NewRunner(loader).RunTestCase(ctx, languageIdentifier, filePath, mode)
}

// RunTestCase runs the fixture at filePath with the languages of
// languageIdentifier in the given mode.
func (r *Runner) RunTestCase(ctx context.Context, languageIdentifier, filePath string, mode domain.Mode) error {
	return r.Run(ctx, languageIdentifier, filePath, mode).Err
}

// Run runs one fixture and reports its outcome.
func (r *Runner) Run(ctx context.Context, languageIdentifier, filePath string, mode domain.Mode) CaseResult {
	start := time.Now()
	written, err := r.run(ctx, languageIdentifier, filePath, mode)
	return CaseResult{
		Path:     filePath,
		Language: languageIdentifier,
		Err:      err,
		Written:  written,
		Duration: time.Since(start),
	}
}

func (r *Runner) run(ctx context.Context, languageIdentifier, path string, mode domain.Mode) (bool, error) {
	f, err := fixture.ReadFile(path)
	if err != nil {
		return false, &CaseError{Err: err, Path: path, Phase: PhaseRead}
	}
	spec, err := langspec.Parse(languageIdentifier)
	if err != nil {
		return false, &CaseError{Err: err, Path: path, Phase: PhaseRead}
	}

	inst, err := r.loader.Load(ctx, spec.Languages)
	if err != nil {
		return false, &CaseError{Err: err, Path: path, Phase: PhaseLoad}
	}

	c := r.options.Comparators.ForFile(path)
	actual, err := c.Execute(ctx, inst, f.Code, spec.MainLanguage)
	if err != nil {
		return false, &CaseError{Err: err, Path: path, Phase: PhaseExecute}
	}

	logger := r.options.Logger.With(slog.String("path", path), slog.String("comparator", c.Name()))

	if f.Expected == "" {
		if !mode.Writes() {
			return false, &MissingExpectationError{Path: path, Command: r.options.Command}
		}
		if err := r.record(path, f, c, actual); err != nil {
			return false, err
		}
		logger.Info("recorded missing expectation")
		return true, nil
	}

	if c.Equals(actual, f.Expected) {
		return false, nil
	}

	loc := compare.Location{
		Path:              path,
		Description:       f.Description,
		ExpectedLineStart: f.ExpectedLineStart(),
	}
	if mode != domain.ModeOverwrite {
		return false, c.AssertEqual(actual, f.Expected, loc)
	}

	if err := c.AssertEqual(actual, f.Expected, loc); errors.Is(err, ErrUnparsableExpectedData) {
		logger.Warn("overwriting unparsable expectation", slog.Any("error", err))
	}
	if err := r.record(path, f, c, actual); err != nil {
		return false, err
	}
	logger.Info("overwrote expectation")
	return true, nil
}

func (r *Runner) record(path string, f *fixture.TestCaseFile, c compare.Comparator, actual any) error {
	rendered, err := c.Render(actual)
	if err != nil {
		return &CaseError{Err: err, Path: path, Phase: PhaseExecute}
	}
	f.Expected = rendered
	if err := fixture.WriteFile(path, f); err != nil {
		return &CaseError{Err: err, Path: path, Phase: PhaseWrite}
	}
	return nil
}
