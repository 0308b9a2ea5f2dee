// Package fixture reads and writes snapshot test case files.
//
// A test case file has up to three sections separated by a line of ten or
// more dashes:
//
//	<code>
//
//	----------------------------------------------------
//
//	<expected>
//
//	----------------------------------------------------
//
//	<description>
//
// Parsing never fails. Sections are trimmed, missing sections are empty, and
// the line on which each section starts is remembered for diagnostics.
package fixture

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Line endings recognized in test case files.
const (
	LF   = "\n"
	CRLF = "\r\n"
)

// SeparatorWidth is the number of dashes Print writes between sections.
const SeparatorWidth = 52

var (
	separatorPattern = regexp.MustCompile(`(?m)^-{10,}[ \t]*\r?$`)
	lineBreakPattern = regexp.MustCompile(`\r\n?|\n`)
	leadingSpace     = regexp.MustCompile(`^\s*`)

	separator = "\n\n" + strings.Repeat("-", SeparatorWidth) + "\n\n"
)

// TestCaseFile is the in-memory form of one test case file.
//
// Code, Expected and Description always use "\n" line breaks; LineEnding
// only controls how Print writes them back.
type TestCaseFile struct {
	// Code is the input passed to the tokenizer or highlighter.
	Code string
	// Expected is the serialized expected output. Empty means no expectation
	// has been recorded yet.
	Expected string
	// Description is a free-text rationale for the test case.
	Description string
	// LineEnding is the line break written by Print ("\n" or "\r\n").
	LineEnding string

	codeLineStart        int
	expectedLineStart    int
	descriptionLineStart int
}

// New creates a test case file that was not read from disk.
// Its line starts are unknown until it is parsed.
func New(code, expected, description string) *TestCaseFile {
	return &TestCaseFile{
		Code:        code,
		Expected:    expected,
		Description: description,
		LineEnding:  LF,
	}
}

// CodeLineStart returns the 1-based line of the first non-blank code line,
// or 0 if the file was not parsed.
func (f *TestCaseFile) CodeLineStart() int { return f.codeLineStart }

// ExpectedLineStart returns the 1-based line of the first non-blank line of
// the expected section, or 0 if the file was not parsed.
func (f *TestCaseFile) ExpectedLineStart() int { return f.expectedLineStart }

// DescriptionLineStart returns the 1-based line of the first non-blank line
// of the description, or 0 if the file was not parsed.
func (f *TestCaseFile) DescriptionLineStart() int { return f.descriptionLineStart }

// HasLineInfo reports whether the line starts were computed by Parse.
func (f *TestCaseFile) HasLineInfo() bool { return f.codeLineStart > 0 }

// Parse reads a test case file from its textual content.
func Parse(content string) *TestCaseFile {
	eol := detectLineEnding(content)
	normalized := lineBreakPattern.ReplaceAllString(content, CRLF)

	parts := separatorPattern.Split(normalized, 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}

	f := &TestCaseFile{
		Code:        clean(parts[0]),
		Expected:    clean(parts[1]),
		Description: clean(parts[2]),
		LineEnding:  eol,
	}

	// Every separator line ends one line, so the break count of the prior
	// parts plus the leading blank lines of the current part is the number of
	// lines before its first non-blank line.
	before := 0
	starts := make([]int, 3)
	for i, part := range parts {
		starts[i] = before + countLineBreaks(leadingSpace.FindString(part)) + 1
		before += countLineBreaks(part)
	}
	f.codeLineStart = starts[0]
	f.expectedLineStart = starts[1]
	f.descriptionLineStart = starts[2]

	return f
}

// Print serializes the test case file.
func Print(f *TestCaseFile) string {
	code := strings.TrimSpace(f.Code)
	expected := strings.TrimSpace(f.Expected)
	description := strings.TrimSpace(f.Description)

	parts := []string{code}
	switch {
	case description != "":
		parts = append(parts, expected, description)
	case expected != "":
		parts = append(parts, expected)
	}

	eol := f.LineEnding
	if eol == "" {
		eol = LF
	}
	out := strings.Join(parts, separator)
	return lineBreakPattern.ReplaceAllString(out, eol) + eol
}

// ReadFile reads and parses the test case file at path.
func ReadFile(path string) (*TestCaseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test case %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// WriteFile replaces the content of path with the serialized test case.
// The write is not atomic. An existing file keeps its permissions.
func WriteFile(path string, f *TestCaseFile) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(Print(f)), perm); err != nil {
		return fmt.Errorf("write test case %s: %w", path, err)
	}
	return nil
}

func detectLineEnding(content string) string {
	i := strings.IndexByte(content, '\n')
	if i > 0 && content[i-1] == '\r' {
		return CRLF
	}
	return LF
}

func clean(part string) string {
	return strings.ReplaceAll(strings.TrimSpace(part), CRLF, LF)
}

func countLineBreaks(s string) int {
	return strings.Count(s, "\n")
}
