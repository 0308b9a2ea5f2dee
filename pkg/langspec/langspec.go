// Package langspec parses composed language identifiers such as
// "css+markup" or "css!+markup".
package langspec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specvital/grammarsnap/pkg/domain"
)

var (
	// ErrMultipleMainLanguages is returned when more than one language of an
	// identifier carries the main marker.
	ErrMultipleMainLanguages = errors.New("langspec: multiple main languages")
	// ErrEmptyLanguage is returned for an empty identifier or an empty
	// language between separators.
	ErrEmptyLanguage = errors.New("langspec: empty language")
)

// Parse splits identifier on "+" into the ordered list of languages to load.
// A language suffixed or prefixed with "!" is the main language; without a
// marker the last language is the main one.
func Parse(identifier string) (domain.LanguageSpec, error) {
	tokens := strings.Split(identifier, domain.LanguageSeparator)

	spec := domain.LanguageSpec{
		Languages: make([]domain.LanguageID, 0, len(tokens)),
	}
	var main domain.LanguageID
	for _, token := range tokens {
		lang := token
		marked := strings.Contains(token, domain.MainMarker)
		if marked {
			lang = strings.ReplaceAll(token, domain.MainMarker, "")
		}
		if lang == "" {
			return domain.LanguageSpec{}, fmt.Errorf("%w in %q", ErrEmptyLanguage, identifier)
		}
		if marked {
			if main != "" {
				return domain.LanguageSpec{}, fmt.Errorf("%w in %q", ErrMultipleMainLanguages, identifier)
			}
			main = domain.LanguageID(lang)
		}
		spec.Languages = append(spec.Languages, domain.LanguageID(lang))
	}

	if main == "" {
		main = spec.Languages[len(spec.Languages)-1]
	}
	spec.MainLanguage = main
	return spec, nil
}
