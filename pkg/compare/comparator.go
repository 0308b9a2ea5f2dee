// Package compare provides the strategies that turn engine output into a
// serialized snapshot and compare it against the expectation of a fixture.
package compare

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/specvital/grammarsnap/pkg/domain"
	"github.com/specvital/grammarsnap/pkg/engine"
)

// DefaultPriority is the priority of the built-in suffix rules.
// Higher priority rules are checked first.
const DefaultPriority = 100

// MarkupSuffix marks fixtures whose expectation is rendered markup.
const MarkupSuffix = ".html.test"

// Location points a diagnostic into a fixture file.
type Location struct {
	// Path is the fixture path.
	Path string
	// Description is the fixture's description section.
	Description string
	// ExpectedLineStart is the file line of the first expected line, or 0
	// if unknown.
	ExpectedLineStart int
}

// Comparator produces and compares one kind of snapshot.
type Comparator interface {
	// Name returns the comparator identifier (e.g., "token-stream").
	Name() string
	// Execute runs the engine on code and returns the actual value.
	Execute(ctx context.Context, inst engine.Instance, code string, lang domain.LanguageID) (any, error)
	// Render serializes an actual value in the form stored in fixtures.
	Render(actual any) (string, error)
	// Equals reports whether actual matches the expected text. It never
	// fails: malformed expectations are simply not equal.
	Equals(actual any, expected string) bool
	// AssertEqual returns nil if actual matches expected and a descriptive
	// error otherwise.
	AssertEqual(actual any, expected string, loc Location) error
}

type rule struct {
	suffix     string
	priority   int
	comparator Comparator
}

// Registry selects comparators by fixture file name.
type Registry struct {
	mu       sync.RWMutex
	rules    []rule
	fallback Comparator
}

// NewRegistry creates a registry that selects fallback when no suffix rule
// matches.
func NewRegistry(fallback Comparator) *Registry {
	return &Registry{fallback: fallback}
}

var defaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry(TokenStreamComparator{})
	r.Register(MarkupSuffix, DefaultPriority, RenderedMarkupComparator{})
	return r
}

// DefaultRegistry returns the registry with the built-in comparators.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// ForFile returns the comparator of the default registry for path.
func ForFile(path string) Comparator {
	return defaultRegistry.ForFile(path)
}

// Register adds a suffix rule.
func (r *Registry) Register(suffix string, priority int, c Comparator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{suffix: suffix, priority: priority, comparator: c})
	sort.SliceStable(r.rules, func(i, j int) bool {
		return r.rules[i].priority > r.rules[j].priority
	})
}

// ForFile returns the comparator of the first rule whose suffix matches the
// base name of path, or the fallback.
func (r *Registry) ForFile(path string) Comparator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	base := filepath.Base(path)
	for _, rl := range r.rules {
		if strings.HasSuffix(base, rl.suffix) {
			return rl.comparator
		}
	}
	return r.fallback
}

// FindByName returns the comparator with the given name.
func (r *Registry) FindByName(name string) Comparator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.fallback != nil && r.fallback.Name() == name {
		return r.fallback
	}
	for _, rl := range r.rules {
		if rl.comparator.Name() == name {
			return rl.comparator
		}
	}
	return nil
}
