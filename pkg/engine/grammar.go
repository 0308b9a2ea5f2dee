package engine

import (
	"fmt"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/grammarsnap/pkg/domain"
)

// Injection embeds another language into the text of a node.
type Injection struct {
	// Parent is the node type that must enclose Node.
	Parent string
	// Node is the node type whose text is tokenized with Language.
	Node string
	// Language is the embedded language.
	Language domain.LanguageID
}

// Grammar describes a registered language.
type Grammar struct {
	// ID is the canonical language id.
	ID domain.LanguageID
	// Title is the human readable name.
	Title string
	// Aliases are alternative ids resolving to this grammar.
	Aliases []domain.LanguageID
	// HighlightQuery is a tree-sitter query. Capture names become token types;
	// "_" is written as "-" and a ".suffix" becomes an alias.
	HighlightQuery string
	// Injections lists embedded languages.
	Injections []Injection

	newLanguage func() *sitter.Language
	once        sync.Once
	language    *sitter.Language
}

// NewGrammar creates a grammar for a tree-sitter language constructor such as
// javascript.GetLanguage.
func NewGrammar(id domain.LanguageID, title string, newLanguage func() *sitter.Language, highlightQuery string) *Grammar {
	return &Grammar{
		ID:             id,
		Title:          title,
		HighlightQuery: highlightQuery,
		newLanguage:    newLanguage,
	}
}

// Language returns the tree-sitter language, initializing it once.
func (g *Grammar) Language() *sitter.Language {
	g.once.Do(func() {
		g.language = g.newLanguage()
	})
	return g.language
}

// Registry manages registered grammars and their aliases.
type Registry struct {
	mu       sync.RWMutex
	grammars map[domain.LanguageID]*Grammar
	aliases  map[domain.LanguageID]domain.LanguageID
}

// NewRegistry creates an empty grammar registry.
func NewRegistry() *Registry {
	return &Registry{
		grammars: make(map[domain.LanguageID]*Grammar),
		aliases:  make(map[domain.LanguageID]domain.LanguageID),
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the registry with the built-in grammars.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, g := range builtinGrammars() {
			if err := defaultRegistry.Register(g); err != nil {
				panic(err)
			}
		}
	})
	return defaultRegistry
}

// Register adds a grammar. Ids and aliases must be unique.
func (r *Registry) Register(g *Grammar) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		return fmt.Errorf("engine: grammar without id")
	}
	if r.known(g.ID) {
		return fmt.Errorf("engine: language %q already registered", g.ID)
	}
	for _, alias := range g.Aliases {
		if alias == g.ID || r.known(alias) {
			return fmt.Errorf("engine: alias %q of %q already registered", alias, g.ID)
		}
	}

	r.grammars[g.ID] = g
	for _, alias := range g.Aliases {
		r.aliases[alias] = g.ID
	}
	return nil
}

func (r *Registry) known(id domain.LanguageID) bool {
	if _, ok := r.grammars[id]; ok {
		return true
	}
	_, ok := r.aliases[id]
	return ok
}

// Resolve returns the grammar for an id or alias, or nil.
func (r *Registry) Resolve(id domain.LanguageID) *Grammar {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if canonical, ok := r.aliases[id]; ok {
		id = canonical
	}
	return r.grammars[id]
}

// All returns all grammars sorted by id.
func (r *Registry) All() []*Grammar {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Grammar, 0, len(r.grammars))
	for _, g := range r.grammars {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}
