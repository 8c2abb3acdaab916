package rules

import (
	"errors"
	"fmt"
)

// ErrorKind names the category of a refused move. The validator
// reports the kind of the first failing gate.
type ErrorKind string

const (
	FormatError     ErrorKind = "FormatError"
	CoordinateError ErrorKind = "CoordinateError"
	StateError      ErrorKind = "StateError"
	PieceError      ErrorKind = "PieceError"
	MovementError   ErrorKind = "MovementError"
	CheckError      ErrorKind = "CheckError"
	CastlingError   ErrorKind = "CastlingError"
	SystemError     ErrorKind = "SystemError"
)

// RuleError is one rejected move: the kind plus a human-readable
// reason. SystemError values wrap their cause.
type RuleError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *RuleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *RuleError) Unwrap() error { return e.Err }

// Is matches rule errors by kind, so
// errors.Is(err, Reject(CheckError, "")) tests the category alone.
func (e *RuleError) Is(target error) bool {
	t, ok := target.(*RuleError)
	return ok && e.Kind == t.Kind
}

// Reject builds a RuleError of the given kind.
func Reject(kind ErrorKind, format string, args ...any) *RuleError {
	return &RuleError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapSystem turns an unexpected internal fault into a SystemError
// carrying the original error.
func WrapSystem(err error) *RuleError {
	return &RuleError{Kind: SystemError, Msg: "internal engine fault", Err: err}
}

// KindOf extracts the kind from any error wrapping a RuleError.
func KindOf(err error) (ErrorKind, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return "", false
}
