package engine

import (
	"errors"
	"fmt"

	splerrors "mercator-hq/saturn/pkg/spl/errors"
)

// Common sentinel errors
var (
	// ErrNoRulesLoaded indicates no rule set is loaded in the engine.
	ErrNoRulesLoaded = errors.New("no rules loaded")

	// ErrNilTransaction indicates Evaluate was called with a nil transaction.
	ErrNilTransaction = errors.New("transaction cannot be nil")
)

// CompilationError indicates a rule set failed to compile. It carries the
// full accumulated error list so every defect is reported in one pass.
type CompilationError struct {
	Source string
	Errors *splerrors.ErrorList
}

// Error returns the error message.
func (e *CompilationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("rule compilation failed for %q: %v", e.Source, e.Errors)
	}
	return fmt.Sprintf("rule compilation failed: %v", e.Errors)
}

// Unwrap returns the underlying error list.
func (e *CompilationError) Unwrap() error {
	return e.Errors
}

// ReloadError indicates a rule reload failed. The engine keeps serving the
// previous rule set when this is returned.
type ReloadError struct {
	Source string
	Cause  error
}

// Error returns the error message.
func (e *ReloadError) Error() string {
	return fmt.Sprintf("rule reload failed for %q: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ReloadError) Unwrap() error {
	return e.Cause
}

// TypeMismatchError indicates an operator was applied to incompatible types.
// It never aborts an evaluation; the predicate degrades to false and the
// mismatch is recorded in the condition trace.
type TypeMismatchError struct {
	Field        string
	Operator     string
	ExpectedType string
	ActualType   string
}

// Error returns the error message.
func (e *TypeMismatchError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("type mismatch: expected %s, got %s", e.ExpectedType, e.ActualType)
	}
	return fmt.Sprintf("type mismatch for field %q (%s): expected %s, got %s",
		e.Field, e.Operator, e.ExpectedType, e.ActualType)
}
