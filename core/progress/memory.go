package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/storyforge/core/logger"
)

// MemoryTrackerStats provides observability metrics for monitoring and debugging.
type MemoryTrackerStats struct {
	Logs          int   // Number of run logs currently held
	Pruned        int64 // Total number of completed logs removed by the janitor
	JanitorActive bool  // Whether the cleanup loop is running
}

// MemoryTracker is an in-process Tracker. Each run log has its own lock, so
// writers of unrelated runs never block each other.
type MemoryTracker struct {
	logs sync.Map // run id -> *runLog

	retention       time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
	logger          *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	pruned atomic.Int64
}

type runLog struct {
	mu          sync.Mutex
	lines       []Line
	completed   bool
	result      string
	completedAt time.Time
}

// MemoryTrackerOption configures a MemoryTracker.
type MemoryTrackerOption func(*MemoryTracker)

// WithRetention sets how long completed logs are kept. Default is one hour.
func WithRetention(d time.Duration) MemoryTrackerOption {
	return func(t *MemoryTracker) {
		if d > 0 {
			t.retention = d
		}
	}
}

// WithCleanupInterval sets how often the janitor prunes expired logs.
func WithCleanupInterval(d time.Duration) MemoryTrackerOption {
	return func(t *MemoryTracker) {
		if d > 0 {
			t.cleanupInterval = d
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) MemoryTrackerOption {
	return func(t *MemoryTracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLogger sets the logger for janitor operations.
func WithLogger(log *slog.Logger) MemoryTrackerOption {
	return func(t *MemoryTracker) {
		if log != nil {
			t.logger = log
		}
	}
}

// NewMemoryTracker creates an empty tracker. Call StartCleanup (or Run) to
// enable retention pruning; without it logs are kept until Prune is called.
func NewMemoryTracker(opts ...MemoryTrackerOption) *MemoryTracker {
	t := &MemoryTracker{
		retention:       time.Hour,
		cleanupInterval: time.Minute,
		now:             time.Now,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Start creates an empty log for runID. An existing log is left untouched.
func (t *MemoryTracker) Start(_ context.Context, runID string) error {
	if runID == "" {
		return ErrEmptyRunID
	}
	t.logs.LoadOrStore(runID, &runLog{})
	return nil
}

// Reset swaps in a fresh log for runID, dropping earlier lines and any
// result. Readers holding the old log keep seeing it unchanged.
func (t *MemoryTracker) Reset(_ context.Context, runID string) error {
	if runID == "" {
		return ErrEmptyRunID
	}
	t.logs.Store(runID, &runLog{})
	return nil
}

// Append adds a line to an existing log. Unknown run ids are ignored.
func (t *MemoryTracker) Append(_ context.Context, runID, line string) error {
	l, ok := t.load(runID)
	if !ok {
		return nil
	}

	entry := Line{At: t.now(), Text: line}

	l.mu.Lock()
	l.lines = append(l.lines, entry)
	l.mu.Unlock()

	return nil
}

// Get returns the formatted lines of runID, or an empty slice if unknown.
func (t *MemoryTracker) Get(_ context.Context, runID string) ([]string, error) {
	l, ok := t.load(runID)
	if !ok {
		return []string{}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return formatLines(l.lines), nil
}

// IsCompleted reports whether the log of runID has been closed.
func (t *MemoryTracker) IsCompleted(_ context.Context, runID string) (bool, error) {
	l, ok := t.load(runID)
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.completed, nil
}

// GetResult returns the final message once the log is closed.
func (t *MemoryTracker) GetResult(_ context.Context, runID string) (string, bool, error) {
	l, ok := t.load(runID)
	if !ok {
		return "", false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.completed {
		return "", false, nil
	}
	return l.result, true, nil
}

// MarkCompleted closes the log. An unknown run id gets a fresh, already
// completed log so the result is still queryable.
func (t *MemoryTracker) MarkCompleted(_ context.Context, runID, result string) error {
	if runID == "" {
		return ErrEmptyRunID
	}

	v, _ := t.logs.LoadOrStore(runID, &runLog{})
	l := v.(*runLog)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.completed {
		return nil
	}
	l.completed = true
	l.result = result
	l.completedAt = t.now()

	return nil
}

// Log returns the polling view of runID. Unknown runs get an empty, open log.
func (t *MemoryTracker) Log(_ context.Context, runID string) (Log, error) {
	l, ok := t.load(runID)
	if !ok {
		return Log{Messages: []string{}}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	out := Log{
		Messages:  formatLines(l.lines),
		Completed: l.completed,
	}
	if l.completed {
		result := l.result
		out.Result = &result
	}
	return out, nil
}

// Prune removes completed logs older than the retention window and returns
// how many were removed.
func (t *MemoryTracker) Prune() int {
	cutoff := t.now().Add(-t.retention)
	removed := 0

	t.logs.Range(func(key, value any) bool {
		l := value.(*runLog)

		l.mu.Lock()
		expired := l.completed && l.completedAt.Before(cutoff)
		l.mu.Unlock()

		if expired {
			t.logs.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		t.pruned.Add(int64(removed))
	}
	return removed
}

// StartCleanup runs the retention janitor. This is a blocking operation that
// runs until the context is cancelled or StopCleanup is called.
func (t *MemoryTracker) StartCleanup(ctx context.Context) error {
	t.mu.Lock()
	if t.cancel != nil {
		t.mu.Unlock()
		return fmt.Errorf("progress tracker cleanup already started")
	}
	ctx, t.cancel = context.WithCancel(ctx)
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.cancel = nil
		t.mu.Unlock()
	}()

	t.logger.InfoContext(ctx, "progress tracker cleanup started",
		logger.Component("progress"),
		slog.Duration("retention", t.retention),
		slog.Duration("interval", t.cleanupInterval))

	ticker := time.NewTicker(t.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := t.Prune(); n > 0 {
				t.logger.DebugContext(ctx, "pruned completed progress logs",
					logger.Component("progress"),
					logger.Count("pruned", n))
			}
		}
	}
}

// StopCleanup stops the retention janitor.
func (t *MemoryTracker) StopCleanup() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel == nil {
		return fmt.Errorf("progress tracker cleanup not started")
	}
	t.cancel()
	return nil
}

// Run provides errgroup compatibility for the retention janitor.
func (t *MemoryTracker) Run(ctx context.Context) func() error {
	return func() error {
		err := t.StartCleanup(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
}

// Stats returns current tracker statistics.
func (t *MemoryTracker) Stats() MemoryTrackerStats {
	count := 0
	t.logs.Range(func(_, _ any) bool {
		count++
		return true
	})

	t.mu.Lock()
	active := t.cancel != nil
	t.mu.Unlock()

	return MemoryTrackerStats{
		Logs:          count,
		Pruned:        t.pruned.Load(),
		JanitorActive: active,
	}
}

func (t *MemoryTracker) load(runID string) (*runLog, bool) {
	v, ok := t.logs.Load(runID)
	if !ok {
		return nil, false
	}
	return v.(*runLog), true
}

func formatLines(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}
