// Package textdiff locates differences between serialized outputs and maps
// them back to positions in human-edited files.
package textdiff

import (
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// FirstDivergence returns the index of the first byte at which expected and
// actual differ. If one is a strict prefix of the other, the length of the
// shorter one is returned. ok is false only if both strings are identical.
func FirstDivergence(expected, actual string) (index int, ok bool) {
	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		if expected[i] != actual[i] {
			return i, true
		}
	}
	if len(expected) == len(actual) {
		return 0, false
	}
	return n, true
}

// MapIndexAcrossWhitespaceInsertion translates compactIndex, an index into
// compact, to the index of the corresponding byte in spacey.
//
// compact must be derivable from spacey by deleting bytes (typically the
// whitespace of a pretty-printed document). Bytes of spacey that do not match
// the current byte of compact are skipped as filler. ok is false if
// compactIndex lies beyond the end of compact or spacey runs out before the
// index is reached. The index len(compact) maps to the end of spacey's
// matched text.
func MapIndexAcrossWhitespaceInsertion(spacey, compact string, compactIndex int) (index int, ok bool) {
	if compactIndex < 0 || compactIndex > len(compact) {
		return 0, false
	}

	s := 0
	for c := 0; c < len(compact); c++ {
		for s < len(spacey) && spacey[s] != compact[c] {
			s++
		}
		if s >= len(spacey) {
			return 0, false
		}
		if c == compactIndex {
			return s, true
		}
		s++
	}
	// compactIndex == len(compact): every byte of compact was matched.
	return s, true
}

// Position converts a byte offset in text to a 1-based line and column.
// Columns count runes. Offsets past the end are clamped.
func Position(text string, offset int) (line, column int) {
	if offset > len(text) {
		offset = len(text)
	}
	line, column = 1, 1
	for i := 0; i < offset; {
		r, size := utf8.DecodeRuneInString(text[i:])
		if i+size > offset {
			break
		}
		if r == '\n' {
			line++
			column = 1
		} else {
			column++
		}
		i += size
	}
	return line, column
}

// Unified returns a unified line diff from expected to actual.
// It is empty when both are equal.
func Unified(expected, actual, fromName, toName string) string {
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return out
}
