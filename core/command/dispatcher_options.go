package command

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/storyforge/core/progress"
)

// Option is a functional option for configuring a dispatcher.
type Option func(*dispatcherOptions)

type dispatcherOptions struct {
	maxConcurrent   int
	maxRetries      int
	retryBackoff    time.Duration
	retention       time.Duration
	hardTimeout     time.Duration
	sweepInterval   time.Duration
	shutdownTimeout time.Duration
	defaultPriority Priority
	tracker         progress.Tracker
	notifier        Notifier
	logger          *slog.Logger
	now             func() time.Time
}

// WithMaxConcurrent sets the worker pool size.
func WithMaxConcurrent(n int) Option {
	return func(o *dispatcherOptions) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

// WithMaxRetries sets the default retry ceiling for retryable failures.
func WithMaxRetries(n int) Option {
	return func(o *dispatcherOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithRetryBackoff delays re-queued attempts. Zero retries immediately.
func WithRetryBackoff(d time.Duration) Option {
	return func(o *dispatcherOptions) {
		if d >= 0 {
			o.retryBackoff = d
		}
	}
}

// WithRetention sets how long terminal commands stay visible.
func WithRetention(d time.Duration) Option {
	return func(o *dispatcherOptions) {
		if d > 0 {
			o.retention = d
		}
	}
}

// WithHardTimeout fails commands whose operation runs longer than d.
// The operation's context is cancelled and its goroutine is abandoned. The
// worker slot is freed at once, but the command's thread scope stays held
// until the operation returns, so scoped work never overlaps.
// Zero disables the timeout.
func WithHardTimeout(d time.Duration) Option {
	return func(o *dispatcherOptions) {
		if d >= 0 {
			o.hardTimeout = d
		}
	}
}

// WithSweepInterval sets how often expired terminal commands are dropped.
func WithSweepInterval(d time.Duration) Option {
	return func(o *dispatcherOptions) {
		if d > 0 {
			o.sweepInterval = d
		}
	}
}

// WithShutdownTimeout bounds how long Stop waits for running commands.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *dispatcherOptions) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithDefaultPriority sets the priority used when Enqueue gets none.
func WithDefaultPriority(p Priority) Option {
	return func(o *dispatcherOptions) {
		if p.Valid() {
			o.defaultPriority = p
		}
	}
}

// WithTracker sets the progress tracker. Defaults to an in-memory tracker.
func WithTracker(t progress.Tracker) Option {
	return func(o *dispatcherOptions) {
		if t != nil {
			o.tracker = t
		}
	}
}

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) Option {
	return func(o *dispatcherOptions) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithLogger sets the dispatcher logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *dispatcherOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source used for timestamps and retention.
// Retry backoff timers always use wall-clock time.
func WithClock(now func() time.Time) Option {
	return func(o *dispatcherOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	runID       string
	threadScope string
	metadata    Metadata
	priority    *Priority
	maxRetries  *int
}

// WithRunID sets a caller-chosen run id. A UUID is generated otherwise.
func WithRunID(runID string) EnqueueOption {
	return func(o *enqueueOptions) {
		o.runID = runID
	}
}

// WithThreadScope sets the mutual exclusion key.
func WithThreadScope(scope string) EnqueueOption {
	return func(o *enqueueOptions) {
		o.threadScope = scope
	}
}

// WithMetadata merges observability metadata into the command.
func WithMetadata(m Metadata) EnqueueOption {
	return func(o *enqueueOptions) {
		o.metadata = o.metadata.Merge(m)
	}
}

// WithPriority sets the command priority.
func WithPriority(p Priority) EnqueueOption {
	return func(o *enqueueOptions) {
		o.priority = &p
	}
}

// WithRetries overrides the dispatcher retry ceiling for one command.
func WithRetries(n int) EnqueueOption {
	return func(o *enqueueOptions) {
		if n >= 0 {
			o.maxRetries = &n
		}
	}
}
