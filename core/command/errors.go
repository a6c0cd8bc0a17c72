package command

import "errors"

var (
	// ErrEmptyName is returned when a command is enqueued without a name.
	ErrEmptyName = errors.New("command name is required")

	// ErrNilOperation is returned when a command is enqueued without an operation.
	ErrNilOperation = errors.New("command operation cannot be nil")

	// ErrNilCommand is returned when Submit receives a nil command.
	ErrNilCommand = errors.New("command cannot be nil")

	// ErrInvalidPriority is returned for priorities outside 0..100.
	ErrInvalidPriority = errors.New("priority must be between 0 and 100")

	// ErrAlreadyQueued is returned with the existing run id when a queued or
	// running command already uses the requested run id.
	ErrAlreadyQueued = errors.New("command with this run id is already queued or running")

	// ErrDuplicateRunID is returned when a recently finished command still
	// holds the requested run id.
	ErrDuplicateRunID = errors.New("run id belongs to a recently finished command")

	// ErrDispatcherStopped is returned when enqueueing into or starting a stopped dispatcher.
	ErrDispatcherStopped = errors.New("dispatcher is stopped")

	// ErrDispatcherAlreadyStarted is returned when attempting to start an already running dispatcher.
	ErrDispatcherAlreadyStarted = errors.New("dispatcher already started")

	// ErrDispatcherNotRunning is returned by Healthcheck when the dispatch loop is not running.
	ErrDispatcherNotRunning = errors.New("dispatcher not running")

	// ErrShutdownTimeout is returned by Stop when running commands outlive the shutdown timeout.
	ErrShutdownTimeout = errors.New("dispatcher shutdown timeout exceeded")
)
