package command

import (
	"context"
	"errors"
)

// Status is the lifecycle state of a command.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transitions can happen.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Priority represents command priority (0-100, higher dequeues first).
type Priority int8

const (
	PriorityMin     Priority = 0
	PriorityLow     Priority = 25
	PriorityMedium  Priority = 50
	PriorityHigh    Priority = 75
	PriorityMax     Priority = 100
	PriorityDefault Priority = PriorityMedium
)

// Valid checks if priority is within valid range.
func (p Priority) Valid() bool {
	return p >= PriorityMin && p <= PriorityMax
}

const (
	defaultSuccessMessage = "completed"
	defaultFailureMessage = "failed"
	cancelledMessage      = "cancelled"
)

// Result is the outcome of one execution attempt.
type Result struct {
	Success bool
	Message string
	// Retry asks for another attempt when Success is false. It is honoured
	// only while the retry ceiling allows it.
	Retry bool
}

// Succeeded builds a successful result.
func Succeeded(message string) Result {
	return Result{Success: true, Message: message}
}

// Failed builds a permanent failure.
func Failed(message string) Result {
	return Result{Message: message}
}

// RetryLater builds a failure that may be retried.
func RetryLater(message string) Result {
	return Result{Message: message, Retry: true}
}

// Operation is the unit of work a command runs. Returning a non-nil error
// fails the attempt; wrap it with Transient to make it retryable.
type Operation func(ctx context.Context, exec *Execution) (Result, error)

// Command is an explicit command object carrying its own dependencies.
type Command interface {
	Name() string
	Execute(ctx context.Context, exec *Execution) (Result, error)
}

// Scoped is implemented by commands that must not run concurrently with
// other commands sharing the same scope.
type Scoped interface {
	ThreadScope() string
}

// Described is implemented by commands that carry observability metadata.
type Described interface {
	Metadata() Metadata
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable. A nil error stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err, or any error it wraps, was marked with Transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}
