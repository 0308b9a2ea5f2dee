// Package domain defines the core types shared by the snapshot harness.
package domain

import "strings"

// LanguageID identifies a grammar in the engine's registry (e.g., "css", "markup").
type LanguageID string

// MainMarker designates the primary language inside a composed identifier.
const MainMarker = "!"

// LanguageSeparator joins the languages of a composed identifier.
const LanguageSeparator = "+"

// LanguageSpec is the result of parsing a composed language identifier
// such as "css+markup" or "css!+markup".
type LanguageSpec struct {
	// Languages lists the grammars in the order they must be loaded.
	// Later grammars may embed or extend earlier ones. Duplicates are allowed.
	Languages []LanguageID `json:"languages"`
	// MainLanguage is the language the fixture code is tokenized as.
	// It is always an element of Languages.
	MainLanguage LanguageID `json:"mainLanguage"`
}

// String re-composes the identifier, marking the main language only when it
// is not the last one.
func (s LanguageSpec) String() string {
	parts := make([]string, len(s.Languages))
	marked := false
	last := len(s.Languages) - 1
	for i, lang := range s.Languages {
		parts[i] = string(lang)
		if !marked && lang == s.MainLanguage && i != last && s.Languages[last] != s.MainLanguage {
			parts[i] += MainMarker
			marked = true
		}
	}
	return strings.Join(parts, LanguageSeparator)
}
