package domain

import "errors"

var (
	// ErrJobNotFound is returned when a job cannot be found in the database
	ErrJobNotFound = errors.New("render job not found")

	// ErrAttemptNotAvailable is returned when a job cannot be claimed: it is
	// already being processed, already completed, or its attempt budget is spent
	ErrAttemptNotAvailable = errors.New("render attempt not available")

	// ErrAttemptSuperseded is returned when an attempt tries to record an
	// outcome after a newer attempt has taken over the job
	ErrAttemptSuperseded = errors.New("render attempt superseded")

	// ErrInvalidMessage is returned when a queue message is malformed
	ErrInvalidMessage = errors.New("invalid queue message")

	// ErrUnknownKind is returned when a job carries an unsupported render kind
	ErrUnknownKind = errors.New("unknown render kind")

	// ErrMaxAttemptsExceeded is returned when a job has spent its attempt budget
	ErrMaxAttemptsExceeded = errors.New("max render attempts exceeded")
)

// RetryableError wraps attempt failures that still have budget left and
// should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
