// Package errors defines the error types shared by the backup tool.
//
// OperationError is the generic wrapper used by helpers that only need to
// attribute a failure to an operation. The listing and sync failures carry
// the organization or repository they belong to so that the report can
// attribute every failure without parsing messages.
package errors

import (
	stderrors "errors"
	"fmt"
)

// OperationError represents an error that occurred during a git operation
type OperationError struct {
	Op  string // The operation being performed
	Err error  // The underlying error
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	return e.Err
}

// New creates a new OperationError
func New(op string, err error) *OperationError {
	return &OperationError{
		Op:  op,
		Err: err,
	}
}

// Is implements error matching for OperationError
func (e *OperationError) Is(target error) bool {
	t, ok := target.(*OperationError)
	if !ok {
		return false
	}
	return e.Op == t.Op
}

// ListError is returned when the remote repository listing cannot be executed.
type ListError struct {
	Organization string
	Err          error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("listing repositories for %s: %v", e.Organization, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a listing payload cannot be turned into
// repository descriptors.
type DecodeError struct {
	Organization string
	Err          error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding repositories for %s: %v", e.Organization, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err aborts a whole backup run, which is the case
// for listing and decoding failures.
func IsFatal(err error) bool {
	var le *ListError
	var de *DecodeError
	return stderrors.As(err, &le) || stderrors.As(err, &de)
}
