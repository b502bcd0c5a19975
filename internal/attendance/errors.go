package attendance

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Tracker matches exactly one of them
// under errors.Is.
var (
	ErrPreconditionViolation = errors.New("precondition violation")
	ErrPersistenceFailure    = errors.New("persistence failure")
	ErrCaptureFailure        = errors.New("capture failure")
)

var (
	ErrAlreadyCheckedIn        = fmt.Errorf("%w: already checked in, check out first", ErrPreconditionViolation)
	ErrNoActiveSession         = fmt.Errorf("%w: no active session", ErrPreconditionViolation)
	ErrCheckOutNotAfterCheckIn = fmt.Errorf("%w: check-out must be after check-in", ErrPreconditionViolation)
	ErrMissingUser             = fmt.Errorf("%w: user id is required", ErrPreconditionViolation)
)

// ErrConflict is returned by a Store when a write lost to another client:
// a second open row for the user, or closing a row that is no longer open.
var ErrConflict = errors.New("conflicting session write")

// OpError records which operation failed, the error kind and the cause.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
