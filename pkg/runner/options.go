package runner

import (
	"log/slog"
	"time"

	"github.com/specvital/grammarsnap/pkg/compare"
	"github.com/specvital/grammarsnap/pkg/domain"
)

// Options configures Runner and Suite behavior.
type Options struct {
	// Command is the remediation command named by missing expectation
	// errors. Empty uses DefaultCommand.
	Command string

	// Comparators selects the comparator of each fixture.
	// If nil, uses compare.DefaultRegistry().
	Comparators *compare.Registry

	// Logger receives progress and warnings. If nil, nothing is logged.
	Logger *slog.Logger

	// Mode is the run mode of a suite. Empty means ModeVerify.
	Mode domain.Mode

	// Patterns specifies doublestar patterns matched against fixture paths
	// relative to the suite root. Empty means all fixtures run.
	Patterns []string

	// SkipDirs specifies directory names to skip during discovery.
	// These are combined with DefaultSkipDirs.
	SkipDirs []string

	// Timeout is the maximum duration of a suite run.
	// Zero or negative values use DefaultTimeout.
	Timeout time.Duration

	// Workers specifies the number of fixtures run concurrently.
	// Zero or negative values use runtime.GOMAXPROCS(0).
	Workers int
}

// Option is a functional option for configuring Runner and Suite.
type Option func(*Options)

// WithWorkers sets the number of concurrent fixtures.
// Negative values are ignored.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.Workers = n
		}
	}
}

// WithTimeout sets the suite timeout duration.
// Negative values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d >= 0 {
			o.Timeout = d
		}
	}
}

// WithPatterns sets doublestar patterns to filter fixtures.
func WithPatterns(patterns []string) Option {
	return func(o *Options) {
		o.Patterns = patterns
	}
}

// WithSkipDirs adds directory names to skip during discovery.
func WithSkipDirs(dirs []string) Option {
	return func(o *Options) {
		o.SkipDirs = dirs
	}
}

// WithMode sets the suite run mode.
func WithMode(mode domain.Mode) Option {
	return func(o *Options) {
		o.Mode = mode
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithCommand sets the remediation command named by missing expectation
// errors.
func WithCommand(command string) Option {
	return func(o *Options) {
		o.Command = command
	}
}

// WithComparators sets the comparator registry.
func WithComparators(registry *compare.Registry) Option {
	return func(o *Options) {
		o.Comparators = registry
	}
}

func applyDefaults(opts *Options) {
	if opts.Command == "" {
		opts.Command = DefaultCommand
	}
	if opts.Comparators == nil {
		opts.Comparators = compare.DefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Mode == "" {
		opts.Mode = domain.ModeVerify
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
}

func newOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)
	return options
}
