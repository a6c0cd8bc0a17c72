package async

import "errors"

var (
	// ErrTimeout is returned by AwaitWithTimeout when the deadline passes first.
	ErrTimeout = errors.New("async: timeout waiting for result")

	// ErrPanic wraps a value recovered from a panicking function.
	ErrPanic = errors.New("async: function panicked")
)
