package blockdag

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrNotFound indicates that a referenced block is not in the DAG.
	ErrNotFound ErrorCode = iota

	// ErrDuplicateName indicates that a block with the same name already
	// exists in the DAG.
	ErrDuplicateName

	// ErrInvalidState indicates that an operation can't run on the current
	// state of the DAG, e.g. classification with an empty tip set, or that
	// an internal consistency check failed.
	ErrInvalidState
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrNotFound:      "ErrNotFound",
	ErrDuplicateName: "ErrDuplicateName",
	ErrInvalidState:  "ErrInvalidState",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a violation of the rules of the DAG. The caller can
// use errors.As to determine if a failure was specifically due to a rule
// violation and access the ErrorCode field to ascertain the specific reason.
type RuleError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) error {
	return errors.WithStack(RuleError{ErrorCode: c, Description: desc})
}

// ruleErrorf creates a RuleError with a formatted description.
func ruleErrorf(c ErrorCode, format string, args ...interface{}) error {
	return ruleError(c, fmt.Sprintf(format, args...))
}

// IsErrorCode returns whether err is, or wraps, a RuleError of the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var ruleErr RuleError
	return errors.As(err, &ruleErr) && ruleErr.ErrorCode == code
}
