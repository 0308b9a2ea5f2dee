// Package config loads suite configuration files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/specvital/grammarsnap/pkg/domain"
	"github.com/specvital/grammarsnap/pkg/runner"
)

// DefaultFileName is the configuration file looked up in the working
// directory.
const DefaultFileName = "grammarsnap.yaml"

// Config holds suite settings. Zero values mean "use the default".
type Config struct {
	// Root is the fixture root directory. Relative roots are resolved against
	// the directory of the configuration file.
	Root string `yaml:"root"`
	// Patterns filters fixtures by path relative to Root.
	Patterns []string `yaml:"patterns"`
	// SkipDirs lists directory names skipped during discovery.
	SkipDirs []string `yaml:"skipDirs"`
	// Workers is the number of fixtures run concurrently.
	Workers int `yaml:"workers"`
	// Timeout bounds a suite run, e.g. "2m".
	Timeout time.Duration `yaml:"timeout"`
	// Mode is the run mode: verify, insert or overwrite.
	Mode string `yaml:"mode"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config from %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if cfg.Root != "" && !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges, the mode name and the pattern syntax.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Workers > runner.MaxWorkers {
		return fmt.Errorf("workers must not exceed %d, got %d", runner.MaxWorkers, c.Workers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if _, err := domain.ParseMode(c.Mode); err != nil {
		return err
	}
	for _, pattern := range c.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid pattern %q", pattern)
		}
	}
	return nil
}

// RunMode returns the parsed mode.
func (c *Config) RunMode() domain.Mode {
	mode, err := domain.ParseMode(c.Mode)
	if err != nil {
		return domain.ModeVerify
	}
	return mode
}

// Options converts the configuration into suite options.
func (c *Config) Options() []runner.Option {
	opts := []runner.Option{
		runner.WithMode(c.RunMode()),
		runner.WithWorkers(c.Workers),
		runner.WithTimeout(c.Timeout),
	}
	if len(c.Patterns) > 0 {
		opts = append(opts, runner.WithPatterns(c.Patterns))
	}
	if len(c.SkipDirs) > 0 {
		opts = append(opts, runner.WithSkipDirs(c.SkipDirs))
	}
	return opts
}
