package compare

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	cyberphone "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/google/go-cmp/cmp"

	"github.com/specvital/grammarsnap/pkg/domain"
	"github.com/specvital/grammarsnap/pkg/engine"
	"github.com/specvital/grammarsnap/pkg/textdiff"
)

// TokenStreamComparator snapshots the token stream of the main language as
// simplified JSON.
//
// A plain string stays a string, a typed token becomes [type, content] where
// content is the token text or the simplified nested stream. Whitespace-only
// plain strings and aliases are dropped.
type TokenStreamComparator struct{}

var _ Comparator = TokenStreamComparator{}

func (TokenStreamComparator) Name() string { return "token-stream" }

func (TokenStreamComparator) Execute(ctx context.Context, inst engine.Instance, code string, lang domain.LanguageID) (any, error) {
	return inst.Tokenize(ctx, code, lang)
}

func (c TokenStreamComparator) Render(actual any) (string, error) {
	minified, err := c.minifyActual(actual)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := indentJSON(&sb, json.RawMessage(minified), 0); err != nil {
		return "", fmt.Errorf("render token stream: %w", err)
	}
	return sb.String(), nil
}

func (c TokenStreamComparator) Equals(actual any, expected string) bool {
	want, err := parseJSON(expected)
	if err != nil {
		return false
	}
	got, err := c.normalizedActual(actual)
	if err != nil {
		return false
	}
	return cmp.Equal(got, want)
}

func (c TokenStreamComparator) AssertEqual(actual any, expected string, loc Location) error {
	want, err := parseJSON(expected)
	if err != nil {
		return &UnparsableExpectedDataError{Path: loc.Path, Line: loc.ExpectedLineStart, Err: err}
	}
	got, err := c.normalizedActual(actual)
	if err != nil {
		return err
	}
	if cmp.Equal(got, want) {
		return nil
	}

	rendered, err := c.Render(actual)
	if err != nil {
		return err
	}
	mismatch := &MismatchError{
		Path:        loc.Path,
		Description: loc.Description,
		Expected:    expected,
		Actual:      rendered,
		Diff:        textdiff.Unified(expected, rendered, "expected", "actual"),
	}

	actualMin, err := c.minifyActual(actual)
	if err != nil {
		return err
	}
	expectedMin, err := minify(want)
	if err != nil {
		return mismatch
	}
	mismatch.Line, mismatch.Column = divergence(expected, string(expectedMin), string(actualMin), loc.ExpectedLineStart)
	return mismatch
}

// divergence locates the first difference between the minified forms in the
// file line/column space of expected. It returns 0, 0 if not computable.
func divergence(expected, expectedMin, actualMin string, lineStart int) (line, column int) {
	idx, ok := textdiff.FirstDivergence(expectedMin, actualMin)
	if !ok {
		return 0, 0
	}
	offset, ok := textdiff.MapIndexAcrossWhitespaceInsertion(expected, expectedMin, idx)
	if !ok {
		return 0, 0
	}
	line, column = textdiff.Position(expected, offset)
	if lineStart > 0 {
		line += lineStart - 1
	}
	return line, column
}

func (TokenStreamComparator) stream(actual any) (domain.TokenStream, error) {
	stream, ok := actual.(domain.TokenStream)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedValue, actual)
	}
	return stream, nil
}

func (c TokenStreamComparator) minifyActual(actual any) ([]byte, error) {
	stream, err := c.stream(actual)
	if err != nil {
		return nil, err
	}
	return minify(Simplify(stream))
}

// normalizedActual returns the simplified stream in the shape produced by
// decoding JSON, so it compares with a parsed expectation.
func (c TokenStreamComparator) normalizedActual(actual any) (any, error) {
	minified, err := c.minifyActual(actual)
	if err != nil {
		return nil, err
	}
	return parseJSON(string(minified))
}

// Simplify projects a token stream to nested slices of strings.
func Simplify(stream domain.TokenStream) []any {
	out := make([]any, 0, len(stream))
	for _, token := range stream {
		if token.IsPlain() {
			if strings.TrimSpace(token.Text) == "" {
				continue
			}
			out = append(out, token.Text)
			continue
		}
		var content any = token.Text
		if !token.IsLeaf() {
			content = Simplify(token.Content)
		}
		out = append(out, []any{token.Type, content})
	}
	return out
}

// Minify returns the canonical (RFC 8785) JSON form of v.
func Minify(v any) (string, error) {
	b, err := minify(v)
	return string(b), err
}

func minify(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	canonical, err := cyberphone.Transform(raw)
	if err != nil {
		// top-level scalars are outside the canonicalizer's input domain
		return raw, nil
	}
	return canonical, nil
}

func parseJSON(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// indentJSON writes minified JSON with whitespace inserted between values
// only. Arrays of scalars stay on one line; other arrays list one item per
// line indented with tabs.
func indentJSON(sb *strings.Builder, raw json.RawMessage, depth int) error {
	if len(raw) == 0 || raw[0] != '[' {
		sb.Write(raw)
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	if len(items) == 0 {
		sb.WriteString("[]")
		return nil
	}

	if allScalar(items) {
		sb.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.Write(item)
		}
		sb.WriteByte(']')
		return nil
	}

	sb.WriteString("[\n")
	for i, item := range items {
		sb.WriteString(strings.Repeat("\t", depth+1))
		if err := indentJSON(sb, item, depth+1); err != nil {
			return err
		}
		if i < len(items)-1 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(strings.Repeat("\t", depth))
	sb.WriteByte(']')
	return nil
}

func allScalar(items []json.RawMessage) bool {
	for _, item := range items {
		if len(item) > 0 && (item[0] == '[' || item[0] == '{') {
			return false
		}
	}
	return true
}
