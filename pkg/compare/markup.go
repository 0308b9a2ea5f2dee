package compare

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/specvital/grammarsnap/pkg/domain"
	"github.com/specvital/grammarsnap/pkg/engine"
	"github.com/specvital/grammarsnap/pkg/textdiff"
)

var lineBreakRun = regexp.MustCompile(`[ \t]*[\r\n]\s*`)

// RenderedMarkupComparator snapshots the highlighted markup of the main
// language. Markup is compared after normalization, so indentation and line
// wrapping of the expectation do not matter.
type RenderedMarkupComparator struct{}

var _ Comparator = RenderedMarkupComparator{}

func (RenderedMarkupComparator) Name() string { return "markup" }

func (RenderedMarkupComparator) Execute(ctx context.Context, inst engine.Instance, code string, lang domain.LanguageID) (any, error) {
	return inst.HighlightToMarkup(ctx, code, lang)
}

func (c RenderedMarkupComparator) Render(actual any) (string, error) {
	markup, err := c.markup(actual)
	if err != nil {
		return "", err
	}

	lines := strings.Split(NormalizeMarkup(markup), "\n")
	depth := 0
	for i, line := range lines {
		closing := strings.HasPrefix(line, "</")
		if closing && depth > 0 {
			depth--
		}
		lines[i] = strings.Repeat("\t", depth) + line
		if opensElement(line) {
			depth++
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (c RenderedMarkupComparator) Equals(actual any, expected string) bool {
	markup, err := c.markup(actual)
	if err != nil {
		return false
	}
	return NormalizeMarkup(markup) == NormalizeMarkup(expected)
}

func (c RenderedMarkupComparator) AssertEqual(actual any, expected string, loc Location) error {
	markup, err := c.markup(actual)
	if err != nil {
		return err
	}
	got, want := NormalizeMarkup(markup), NormalizeMarkup(expected)
	if got == want {
		return nil
	}
	return &MismatchError{
		Path:        loc.Path,
		Description: loc.Description,
		Expected:    want,
		Actual:      got,
		Diff:        textdiff.Unified(want, got, "expected", "actual"),
	}
}

func (RenderedMarkupComparator) markup(actual any) (string, error) {
	markup, ok := actual.(string)
	if !ok {
		return "", fmt.Errorf("%w: %T", ErrUnexpectedValue, actual)
	}
	return markup, nil
}

// NormalizeMarkup puts every tag on its own line and removes the indentation
// and blank lines around line breaks.
func NormalizeMarkup(markup string) string {
	markup = strings.ReplaceAll(markup, "<", "\n<")
	markup = strings.ReplaceAll(markup, ">", ">\n")
	markup = lineBreakRun.ReplaceAllString(markup, "\n")
	return strings.TrimSpace(markup)
}

func opensElement(line string) bool {
	return strings.HasPrefix(line, "<") &&
		!strings.HasPrefix(line, "</") &&
		!strings.HasPrefix(line, "<!") &&
		!strings.HasSuffix(line, "/>") &&
		strings.HasSuffix(line, ">")
}
