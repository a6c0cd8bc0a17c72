package progress

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyRunID is returned when an operation is called without a run id.
var ErrEmptyRunID = errors.New("progress: run id is required")

// Tracker is the keyed progress log contract.
//
// Append on an unknown run id is a no-op. MarkCompleted is idempotent: the
// first final message wins and later calls change nothing. Lines appended
// after completion are still recorded.
type Tracker interface {
	// Start creates an empty log for runID if none exists.
	Start(ctx context.Context, runID string) error
	// Reset replaces any log held for runID with an empty, open one. It is
	// used when a run id is reused by a new command.
	Reset(ctx context.Context, runID string) error
	// Append adds a timestamped line to an existing log.
	Append(ctx context.Context, runID, line string) error
	// Get returns every line in append order, formatted with its timestamp.
	Get(ctx context.Context, runID string) ([]string, error)
	// IsCompleted reports whether MarkCompleted has been called for runID.
	IsCompleted(ctx context.Context, runID string) (bool, error)
	// GetResult returns the final message; ok is false until completion.
	GetResult(ctx context.Context, runID string) (result string, ok bool, err error)
	// MarkCompleted closes the log with a final message.
	MarkCompleted(ctx context.Context, runID, result string) error
	// Log returns the polling view of a run.
	Log(ctx context.Context, runID string) (Log, error)
}

// Log is the polling payload for one run.
type Log struct {
	Messages  []string `json:"messages"`
	Completed bool     `json:"completed"`
	Result    *string  `json:"result"`
}

// Line is one progress entry.
type Line struct {
	At   time.Time
	Text string
}

// String renders the line as "[15:04:05] text".
func (l Line) String() string {
	return "[" + l.At.Format(time.TimeOnly) + "] " + l.Text
}

var (
	_ Tracker = (*MemoryTracker)(nil)
	_ Tracker = (*RedisTracker)(nil)
)
