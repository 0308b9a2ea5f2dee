package runner

import (
	"errors"
	"fmt"

	"github.com/specvital/grammarsnap/pkg/compare"
)

// Phases reported by CaseError.
const (
	PhaseRead    = "read"
	PhaseLoad    = "load"
	PhaseExecute = "execute"
	PhaseWrite   = "write"
)

var (
	// ErrMissingExpectation is matched by *MissingExpectationError.
	ErrMissingExpectation = errors.New("runner: missing expectation")
	// ErrExpectationMismatch is matched by *compare.MismatchError.
	ErrExpectationMismatch = compare.ErrExpectationMismatch
	// ErrUnparsableExpectedData is matched by *compare.UnparsableExpectedDataError.
	ErrUnparsableExpectedData = compare.ErrUnparsableExpectedData

	// ErrSuiteCancelled is returned when a suite run is cancelled via context.
	ErrSuiteCancelled = errors.New("runner: suite cancelled")
	// ErrSuiteTimeout is returned when a suite run exceeds its timeout.
	ErrSuiteTimeout = errors.New("runner: suite timeout")
)

// MissingExpectationError reports a fixture without an expected section in
// verify mode.
type MissingExpectationError struct {
	// Path is the fixture path.
	Path string
	// Command records the expectation when followed by Path.
	Command string
}

func (e *MissingExpectationError) Error() string {
	return fmt.Sprintf("%s: no expected value recorded; run %q to record it", e.Path, e.Command+" "+e.Path)
}

func (e *MissingExpectationError) Unwrap() error {
	return ErrMissingExpectation
}

// CaseError represents an error that occurred during a specific phase of
// running a fixture.
type CaseError struct {
	// Err is the underlying error.
	Err error

	// Path is the fixture path.
	Path string

	// Phase indicates which phase the error occurred in.
	// Values: "read", "load", "execute", "write"
	Phase string
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Phase, e.Path, e.Err)
}

func (e *CaseError) Unwrap() error {
	return e.Err
}
