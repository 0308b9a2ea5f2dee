// Package engine defines the tokenizer contract consumed by the snapshot
// harness and provides a tree-sitter backed implementation of it.
package engine

import (
	"context"
	"errors"

	"github.com/specvital/grammarsnap/pkg/domain"
)

var (
	// ErrUnknownLanguage is returned when a language id is not registered.
	ErrUnknownLanguage = errors.New("engine: unknown language")
	// ErrLanguageNotLoaded is returned when an instance is asked to process a
	// language that was not part of its load list.
	ErrLanguageNotLoaded = errors.New("engine: language not loaded")
)

// Loader creates engine instances with a fixed set of active grammars.
type Loader interface {
	// Load activates the given languages in order. Later languages may embed
	// or extend earlier ones.
	Load(ctx context.Context, languages []domain.LanguageID) (Instance, error)
}

// Instance tokenizes and highlights code with the grammars it was loaded with.
// Instances are not shared between test cases.
type Instance interface {
	// Tokenize returns the token stream of code in the given language.
	Tokenize(ctx context.Context, code string, lang domain.LanguageID) (domain.TokenStream, error)
	// HighlightToMarkup returns code highlighted as markup.
	HighlightToMarkup(ctx context.Context, code string, lang domain.LanguageID) (string, error)
	// ResolveLanguage returns the loaded grammar for lang or nil.
	ResolveLanguage(lang domain.LanguageID) *Grammar
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, languages []domain.LanguageID) (Instance, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, languages []domain.LanguageID) (Instance, error) {
	return f(ctx, languages)
}
