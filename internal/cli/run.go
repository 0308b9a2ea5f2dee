package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/specvital/grammarsnap/pkg/compare"
	"github.com/specvital/grammarsnap/pkg/config"
	"github.com/specvital/grammarsnap/pkg/domain"
	"github.com/specvital/grammarsnap/pkg/engine"
	"github.com/specvital/grammarsnap/pkg/runner"
)

// DefaultRoot is the fixture root used without flag or configuration.
const DefaultRoot = "testdata"

type runFlags struct {
	configPath string
	insert     bool
	mode       string
	patterns   []string
	root       string
	timeout    time.Duration
	update     bool
	verbose    bool
	workers    int
}

func newRunCmd(loader engine.Loader) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [path...]",
		Short: "Verify or record snapshot fixtures",
		Long: `Run snapshot fixtures.

Without paths every fixture below the root runs. Each directory directly
below the root names the languages its fixtures load, e.g. "css+markup".
Paths may be fixture files or fixture roots.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixtures(cmd, loader, flags, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "configuration file (default "+config.DefaultFileName+" if present)")
	f.BoolVar(&flags.insert, "insert", false, "record missing expectations (same as --mode insert)")
	f.StringVarP(&flags.mode, "mode", "m", "", "run mode: verify, insert or overwrite")
	f.StringArrayVarP(&flags.patterns, "pattern", "p", nil, "only run fixtures matching the doublestar pattern (repeatable)")
	f.StringVarP(&flags.root, "root", "r", "", "fixture root directory (default \""+DefaultRoot+"\")")
	f.DurationVar(&flags.timeout, "timeout", 0, "suite timeout (default 5m)")
	f.BoolVar(&flags.update, "update", false, "rewrite mismatching expectations (same as --mode overwrite)")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "log progress to stderr")
	f.IntVarP(&flags.workers, "workers", "w", 0, "fixtures run concurrently (default GOMAXPROCS)")
	cmd.MarkFlagsMutuallyExclusive("mode", "insert", "update")

	return cmd
}

func runFixtures(cmd *cobra.Command, loader engine.Loader, flags *runFlags, args []string) error {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}

	mode := cfg.RunMode()
	switch {
	case flags.insert:
		mode = domain.ModeInsert
	case flags.update:
		mode = domain.ModeOverwrite
	case cmd.Flags().Changed("mode"):
		if mode, err = domain.ParseMode(flags.mode); err != nil {
			return err
		}
	}

	root := DefaultRoot
	if cfg.Root != "" {
		root = cfg.Root
	}
	if flags.root != "" {
		root = flags.root
	}

	opts := cfg.Options()
	opts = append(opts, runner.WithMode(mode))
	if len(flags.patterns) > 0 {
		opts = append(opts, runner.WithPatterns(flags.patterns))
	}
	if cmd.Flags().Changed("workers") {
		opts = append(opts, runner.WithWorkers(flags.workers))
	}
	if cmd.Flags().Changed("timeout") {
		opts = append(opts, runner.WithTimeout(flags.timeout))
	}
	if flags.verbose {
		handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, runner.WithLogger(slog.New(handler)))
	}

	suite := runner.NewSuite(loader, opts...)
	ctx := cmd.Context()

	var results []*runner.SuiteResult
	roots, cases, err := splitPaths(root, args)
	if err != nil {
		return err
	}
	for _, dir := range roots {
		res, err := suite.Run(ctx, dir)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return err
		}
	}
	if len(cases) > 0 {
		res, err := suite.RunCases(ctx, cases)
		results = append(results, res)
		if err != nil {
			return err
		}
	}

	return report(cmd.OutOrStdout(), cmd.ErrOrStderr(), results)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load(config.DefaultFileName)
	if errors.Is(err, os.ErrNotExist) {
		return &config.Config{}, nil
	}
	return cfg, err
}

// splitPaths sorts arguments into suite roots and single fixtures. Without
// arguments root is the only suite root.
func splitPaths(root string, args []string) ([]string, []runner.Case, error) {
	if len(args) == 0 {
		return []string{root}, nil, nil
	}

	var (
		roots []string
		cases []runner.Case
	)
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, nil, err
		}
		if info.IsDir() {
			roots = append(roots, arg)
			continue
		}
		cases = append(cases, runner.Case{Path: arg, Language: languageOf(root, arg)})
	}
	return roots, cases, nil
}

// languageOf returns the first directory of path below root, or the parent
// directory name of path if it is outside root.
func languageOf(root, path string) string {
	if absRoot, err := filepath.Abs(root); err == nil {
		if absPath, err := filepath.Abs(path); err == nil {
			if rel, err := filepath.Rel(absRoot, absPath); err == nil {
				rel = filepath.ToSlash(rel)
				if language, _, nested := strings.Cut(rel, "/"); nested && language != ".." {
					return language
				}
			}
		}
	}
	return filepath.Base(filepath.Dir(path))
}

func report(stdout, stderr io.Writer, results []*runner.SuiteResult) error {
	var total runner.SuiteStats
	for _, res := range results {
		for _, failed := range res.Failures() {
			fmt.Fprintf(stderr, "FAIL %s (%s)\n%v\n", failed.Path, failed.Language, failed.Err)
			var mismatch *compare.MismatchError
			if errors.As(failed.Err, &mismatch) && mismatch.Diff != "" {
				fmt.Fprintf(stderr, "\n%s", mismatch.Diff)
			}
			fmt.Fprintln(stderr)
		}
		for _, err := range res.Errors {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}

		total.Discovered += res.Stats.Discovered
		total.Passed += res.Stats.Passed
		total.Failed += res.Stats.Failed
		total.Skipped += res.Stats.Skipped
		total.Written += res.Stats.Written
		total.Duration += res.Stats.Duration
	}

	fmt.Fprintf(stdout, "%d passed, %d failed, %d written, %d skipped (%s)\n",
		total.Passed, total.Failed, total.Written, total.Skipped, total.Duration.Round(time.Millisecond))

	if total.Failed > 0 || total.Skipped > 0 {
		return fmt.Errorf("%d of %d fixtures failed", total.Failed+total.Skipped, total.Discovered)
	}
	return nil
}
