package compare

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExpectationMismatch is matched by *MismatchError.
	ErrExpectationMismatch = errors.New("compare: expectation mismatch")
	// ErrUnparsableExpectedData is matched by *UnparsableExpectedDataError.
	ErrUnparsableExpectedData = errors.New("compare: unparsable expected data")
	// ErrUnexpectedValue is returned when a comparator receives an actual
	// value of the wrong type.
	ErrUnexpectedValue = errors.New("compare: unexpected actual value")
)

// MismatchError reports an actual value that differs from the expectation.
type MismatchError struct {
	Path        string
	Line        int // 0 if not computable
	Column      int // 0 if not computable
	Description string
	Expected    string
	Actual      string
	Diff        string
}

func (e *MismatchError) Error() string {
	var sb strings.Builder
	if e.Description != "" {
		sb.WriteString(e.Description)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "%s:%d:%d: actual value does not match the expected value", e.Path, e.Line, e.Column)
	sb.WriteString("\n\nactual:\n")
	sb.WriteString(e.Actual)
	return sb.String()
}

func (e *MismatchError) Unwrap() error {
	return ErrExpectationMismatch
}

// UnparsableExpectedDataError reports an expected section that is not valid
// structured data.
type UnparsableExpectedDataError struct {
	Path string
	Line int
	Err  error
}

func (e *UnparsableExpectedDataError) Error() string {
	return fmt.Sprintf("%s:%d: expected section is not valid JSON: %v", e.Path, e.Line, e.Err)
}

func (e *UnparsableExpectedDataError) Unwrap() []error {
	return []error{ErrUnparsableExpectedData, e.Err}
}
