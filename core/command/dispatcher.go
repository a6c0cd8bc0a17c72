package command

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storyforge/core/logger"
	"github.com/dmitrymomot/storyforge/core/progress"
	"github.com/dmitrymomot/storyforge/pkg/async"
)

// Dispatcher queues commands and runs them on a bounded worker pool.
// Construct one per process and pass it to its consumers.
type Dispatcher struct {
	enqueueMu sync.Mutex // serializes run id admission and insertion
	listMu    sync.Mutex // orders command list broadcasts

	mu      sync.RWMutex
	entries map[string]*entry // every tracked command by run id
	queue   []*entry          // queued commands in enqueue order
	held    map[string]string // thread scope -> run id of its running command
	running int
	seq     uint64
	stopped bool
	cancel  context.CancelFunc
	wake    chan struct{}
	wg      sync.WaitGroup

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

	// Observability metrics
	completed atomic.Int64
	failed    atomic.Int64
	cancelled atomic.Int64
	retried   atomic.Int64
}

// DispatcherStats provides observability metrics for monitoring and debugging.
type DispatcherStats struct {
	Queued    int   // Commands waiting for a worker slot
	Running   int   // Commands currently executing
	Tracked   int   // Commands held in memory, including retained terminal ones
	Completed int64 // Total commands that completed successfully
	Failed    int64 // Total commands that failed permanently
	Cancelled int64 // Total commands cancelled before or during execution
	Retried   int64 // Total retry attempts scheduled
	IsRunning bool  // Whether the dispatch loop is running
}

type entry struct {
	runID      string
	name       string
	scope      string
	op         Operation
	meta       Metadata
	priority   Priority
	seq        uint64
	maxRetries int

	status          Status
	retryCount      int
	errorMessage    string
	currentStep     int
	maxStep         int
	stepDescription string
	enqueuedAt      time.Time
	startedAt       time.Time
	completedAt     time.Time
	readyAt         time.Time

	cancel          context.CancelFunc
	cancelRequested bool
}

// NewDispatcher creates a dispatcher. Call Start or Run to begin executing
// commands; commands enqueued before that wait in the queue.
func NewDispatcher(opts ...Option) *Dispatcher {
	cfg := DefaultConfig()
	options := &dispatcherOptions{
		maxConcurrent:   cfg.MaxConcurrent,
		maxRetries:      cfg.MaxRetries,
		retention:       cfg.Retention,
		sweepInterval:   cfg.SweepInterval,
		shutdownTimeout: cfg.ShutdownTimeout,
		defaultPriority: PriorityDefault,
		notifier:        nopNotifier{},
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.tracker == nil {
		options.tracker = progress.NewMemoryTracker(progress.WithLogger(options.logger))
	}

	return &Dispatcher{
		entries:         make(map[string]*entry),
		held:            make(map[string]string),
		wake:            make(chan struct{}, 1),
		maxConcurrent:   options.maxConcurrent,
		maxRetries:      options.maxRetries,
		retryBackoff:    options.retryBackoff,
		retention:       options.retention,
		hardTimeout:     options.hardTimeout,
		sweepInterval:   options.sweepInterval,
		shutdownTimeout: options.shutdownTimeout,
		defaultPriority: options.defaultPriority,
		tracker:         options.tracker,
		notifier:        options.notifier,
		logger:          options.logger,
		now:             options.now,
	}
}

// NewDispatcherFromConfig creates a Dispatcher from configuration.
// Additional options can override config values.
func NewDispatcherFromConfig(cfg Config, opts ...Option) *Dispatcher {
	allOpts := append([]Option{
		WithMaxConcurrent(cfg.MaxConcurrent),
		WithMaxRetries(cfg.MaxRetries),
		WithRetryBackoff(cfg.RetryBackoff),
		WithRetention(cfg.Retention),
		WithHardTimeout(cfg.HardTimeout),
		WithSweepInterval(cfg.SweepInterval),
		WithShutdownTimeout(cfg.ShutdownTimeout),
	}, opts...)

	return NewDispatcher(allOpts...)
}

// Tracker returns the progress tracker the dispatcher writes to.
func (d *Dispatcher) Tracker() progress.Tracker {
	return d.tracker
}

// Enqueue adds a command to the queue and returns its run id.
//
// A run id that belongs to a queued or running command is rejected with
// ErrAlreadyQueued and the existing id is returned. A run id of a terminal
// command still inside the retention window is rejected with ErrDuplicateRunID.
func (d *Dispatcher) Enqueue(ctx context.Context, name string, op Operation, opts ...EnqueueOption) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	if op == nil {
		return "", ErrNilOperation
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var o enqueueOptions
	for _, opt := range opts {
		opt(&o)
	}

	priority := d.defaultPriority
	if o.priority != nil {
		if !o.priority.Valid() {
			return "", ErrInvalidPriority
		}
		priority = *o.priority
	}

	maxRetries := d.maxRetries
	if o.maxRetries != nil {
		maxRetries = *o.maxRetries
	}

	runID := o.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	d.enqueueMu.Lock()
	defer d.enqueueMu.Unlock()

	if err := d.admit(runID); err != nil {
		if errors.Is(err, ErrAlreadyQueued) {
			return runID, err
		}
		return "", err
	}

	// A reused run id must not expose the previous run's lines or result, and
	// the log must exist before a worker can append to it.
	if err := d.tracker.Reset(ctx, runID); err != nil {
		d.logger.WarnContext(ctx, "failed to reset progress log",
			logger.RunID(runID),
			logger.Error(err))
	}

	now := d.now()

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return "", ErrDispatcherStopped
	}
	delete(d.entries, runID)

	d.seq++
	e := &entry{
		runID:      runID,
		name:       name,
		scope:      o.threadScope,
		op:         op,
		meta:       o.metadata.clone(),
		priority:   priority,
		seq:        d.seq,
		maxRetries: maxRetries,
		status:     StatusQueued,
		enqueuedAt: now,
	}
	d.entries[runID] = e
	d.queue = append(d.queue, e)
	snap := e.snapshot()
	d.mu.Unlock()

	d.logger.InfoContext(ctx, "command enqueued",
		logger.RunID(runID),
		logger.CommandName(name),
		logger.ThreadScope(e.scope),
		logger.Priority(int(priority)))

	line := "Queued " + name
	if e.scope != "" {
		line += " in scope " + e.scope
	}
	d.publish(snap, line, "")
	d.signal()

	return runID, nil
}

// admit checks whether runID may be used by a new command. Callers hold
// enqueueMu, so no other Enqueue can claim the id before it is inserted.
func (d *Dispatcher) admit(runID string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrDispatcherStopped
	}
	existing, ok := d.entries[runID]
	if !ok {
		return nil
	}
	if !existing.status.IsTerminal() {
		return ErrAlreadyQueued
	}
	if !d.expired(existing, d.now()) {
		return ErrDuplicateRunID
	}
	return nil
}

// Submit enqueues an explicit command object. Its thread scope and metadata
// are taken from the Scoped and Described interfaces when implemented;
// options passed here are applied after them.
func (d *Dispatcher) Submit(ctx context.Context, cmd Command, opts ...EnqueueOption) (string, error) {
	if cmd == nil {
		return "", ErrNilCommand
	}

	var base []EnqueueOption
	if s, ok := cmd.(Scoped); ok {
		base = append(base, WithThreadScope(s.ThreadScope()))
	}
	if m, ok := cmd.(Described); ok {
		base = append(base, WithMetadata(m.Metadata()))
	}

	return d.Enqueue(ctx, cmd.Name(), cmd.Execute, append(base, opts...)...)
}

// GetActiveCommands returns queued and running commands plus terminal ones
// still inside the retention window, in enqueue order.
func (d *Dispatcher) GetActiveCommands() []Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	now := d.now()
	visible := make([]*entry, 0, len(d.entries))
	for _, e := range d.entries {
		if !d.expired(e, now) {
			visible = append(visible, e)
		}
	}
	slices.SortFunc(visible, func(a, b *entry) int {
		return cmp.Compare(a.seq, b.seq)
	})

	out := make([]Snapshot, len(visible))
	for i, e := range visible {
		out[i] = e.snapshot()
	}
	return out
}

// Get returns the snapshot of a single visible command.
func (d *Dispatcher) Get(runID string) (Snapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.entries[runID]
	if !ok || d.expired(e, d.now()) {
		return Snapshot{}, false
	}
	return e.snapshot(), true
}

// Cancel cancels a command. A queued command is removed and never runs. A
// running command has its context cancelled and becomes cancelled when its
// operation returns. Returns false for unknown or terminal commands.
func (d *Dispatcher) Cancel(runID string) bool {
	d.mu.Lock()
	e, ok := d.entries[runID]
	if !ok || e.status.IsTerminal() {
		d.mu.Unlock()
		return false
	}

	if e.status == StatusQueued {
		d.removeQueuedLocked(e)
		d.terminateLocked(e, StatusCancelled, "")
		snap := e.snapshot()
		d.mu.Unlock()

		d.cancelled.Add(1)
		d.logger.Info("queued command cancelled",
			logger.RunID(runID),
			logger.CommandName(e.name))

		d.publish(snap, "Cancelled before start", cancelledMessage)
		d.signal()
		return true
	}

	alreadyRequested := e.cancelRequested
	e.cancelRequested = true
	cancel := e.cancel
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if !alreadyRequested {
		d.logger.Info("cancellation requested for running command",
			logger.RunID(runID),
			logger.CommandName(e.name))
		d.appendLine(runID, "Cancellation requested")
	}
	return true
}

// Start runs the dispatch loop. This is a blocking operation that runs until
// the context is cancelled or Stop is called. Use Run() for errgroup pattern
// or call this in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return ErrDispatcherStopped
	}
	if d.cancel != nil {
		d.mu.Unlock()
		return ErrDispatcherAlreadyStarted
	}
	ctx, d.cancel = context.WithCancel(ctx)
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.cancel = nil
		d.mu.Unlock()
	}()

	d.logger.InfoContext(ctx, "command dispatcher started",
		slog.Int("max_concurrent", d.maxConcurrent),
		slog.Int("max_retries", d.maxRetries),
		slog.Duration("retention", d.retention),
		slog.Duration("hard_timeout", d.hardTimeout))

	ticker := time.NewTicker(d.sweepInterval)
	defer ticker.Stop()

	for {
		d.dispatchReady()

		select {
		case <-ctx.Done():
			d.logger.InfoContext(context.Background(), "command dispatcher loop stopping")
			return ctx.Err()
		case <-d.wake:
		case <-ticker.C:
			if n := d.sweep(); n > 0 {
				d.logger.DebugContext(ctx, "dropped expired commands", logger.Count("dropped", n))
			}
		}
	}
}

// Stop refuses new commands, cancels queued ones, signals running ones and
// waits up to the shutdown timeout for them to return. Calling Stop more than
// once is a no-op.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true

	stopLoop := d.cancel
	d.cancel = nil

	queued := d.queue
	d.queue = nil
	snaps := make([]Snapshot, 0, len(queued))
	for _, e := range queued {
		d.terminateLocked(e, StatusCancelled, "")
		snaps = append(snaps, e.snapshot())
	}

	var cancels []context.CancelFunc
	for _, e := range d.entries {
		if e.status == StatusRunning {
			e.cancelRequested = true
			if e.cancel != nil {
				cancels = append(cancels, e.cancel)
			}
		}
	}
	d.mu.Unlock()

	if stopLoop != nil {
		stopLoop()
	}

	for _, snap := range snaps {
		d.cancelled.Add(1)
		d.publish(snap, "Cancelled by shutdown", cancelledMessage)
	}
	for _, cancel := range cancels {
		cancel()
	}

	d.logger.InfoContext(context.Background(), "command dispatcher stopping, waiting for running commands",
		logger.Count("cancelled_queued", len(snaps)),
		logger.Count("running", len(cancels)),
		slog.Duration("timeout", d.shutdownTimeout))

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(d.shutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		d.logger.InfoContext(context.Background(), "command dispatcher stopped cleanly")
		return nil
	case <-timer.C:
		d.logger.WarnContext(context.Background(), "command dispatcher shutdown timeout exceeded - some commands may be abandoned",
			slog.Duration("timeout", d.shutdownTimeout))
		return fmt.Errorf("%w after %s", ErrShutdownTimeout, d.shutdownTimeout)
	}
}

// Run provides errgroup compatibility for coordinated lifecycle management.
// Returns a function that starts the dispatcher, monitors context cancellation,
// and performs graceful shutdown when the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- d.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			err := d.Stop()
			<-errCh
			return err
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return d.Stop()
			}
			return err
		}
	}
}

// Stats returns current dispatcher statistics.
func (d *Dispatcher) Stats() DispatcherStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return DispatcherStats{
		Queued:    len(d.queue),
		Running:   d.running,
		Tracked:   len(d.entries),
		Completed: d.completed.Load(),
		Failed:    d.failed.Load(),
		Cancelled: d.cancelled.Load(),
		Retried:   d.retried.Load(),
		IsRunning: d.cancel != nil,
	}
}

// Healthcheck validates that the dispatch loop is running.
func (d *Dispatcher) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrDispatcherStopped
	}
	if d.cancel == nil {
		return ErrDispatcherNotRunning
	}
	return nil
}

// dispatchReady starts queued commands until the pool is full or nothing
// is runnable.
func (d *Dispatcher) dispatchReady() {
	for {
		d.mu.Lock()
		if d.stopped || d.running >= d.maxConcurrent {
			d.mu.Unlock()
			return
		}

		now := d.now()
		e := d.claimLocked(now)
		if e == nil {
			d.mu.Unlock()
			return
		}

		d.removeQueuedLocked(e)
		e.status = StatusRunning
		e.startedAt = now
		if e.scope != "" {
			d.held[e.scope] = e.runID
		}
		d.running++

		ctx, cancel := context.WithCancel(context.Background())
		e.cancel = cancel
		attempt := e.retryCount + 1
		snap := e.snapshot()
		d.wg.Add(1)
		d.mu.Unlock()

		d.logger.Info("command started",
			logger.RunID(e.runID),
			logger.CommandName(e.name),
			logger.ThreadScope(e.scope),
			logger.Attempt(attempt))

		d.publish(snap, fmt.Sprintf("Started %s (attempt %d)", e.name, attempt), "")

		go d.execute(ctx, e, attempt)
	}
}

// claimLocked picks the next runnable command. Only the oldest queued command
// of each scope is a candidate, and only while no command of that scope runs.
// Candidates are ordered by priority, then by enqueue order.
func (d *Dispatcher) claimLocked(now time.Time) *entry {
	var best *entry
	seen := make(map[string]struct{})

	for _, e := range d.queue {
		if e.scope != "" {
			if _, ok := seen[e.scope]; ok {
				continue
			}
			seen[e.scope] = struct{}{}
			if _, busy := d.held[e.scope]; busy {
				continue
			}
		}
		if now.Before(e.readyAt) {
			continue
		}
		if best == nil || e.priority > best.priority {
			best = e
		}
	}
	return best
}

func (d *Dispatcher) execute(ctx context.Context, e *entry, attempt int) {
	defer d.wg.Done()

	start := time.Now()
	exec := &Execution{d: d, runID: e.runID, attempt: attempt}

	future := async.Async[*Execution, Result](ctx, exec, e.op)
	res, err := future.AwaitWithTimeout(d.hardTimeout)
	timedOut := d.hardTimeout > 0 && errors.Is(err, async.ErrTimeout)

	d.finish(e, res, err, timedOut, time.Since(start))

	if timedOut && e.scope != "" {
		go d.releaseScope(e, future.Done())
	}
}

// releaseScope frees the scope of a timed out command once its abandoned
// operation returns. Until then later commands of the scope stay queued.
func (d *Dispatcher) releaseScope(e *entry, done <-chan struct{}) {
	<-done

	d.mu.Lock()
	if d.held[e.scope] == e.runID {
		delete(d.held, e.scope)
	}
	d.mu.Unlock()

	d.logger.Info("timed out command returned, scope released",
		logger.RunID(e.runID),
		logger.ThreadScope(e.scope))
	d.signal()
}

func (d *Dispatcher) finish(e *entry, res Result, runErr error, timedOut bool, elapsed time.Duration) {
	d.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.scope != "" && d.held[e.scope] == e.runID && !timedOut {
		delete(d.held, e.scope)
	}
	d.running--

	var (
		line     string
		final    string
		retrying bool
	)

	switch {
	case e.cancelRequested:
		d.terminateLocked(e, StatusCancelled, "")
		line, final = "Cancelled", cancelledMessage

	case timedOut:
		msg := fmt.Sprintf("timed out after %s", d.hardTimeout)
		d.terminateLocked(e, StatusFailed, msg)
		line, final = "Failed: "+msg, msg

	case runErr != nil:
		msg := runErr.Error()
		if IsTransient(runErr) && !errors.Is(runErr, async.ErrPanic) && e.retryCount < e.maxRetries {
			d.requeueLocked(e, msg)
			retrying = true
			line = fmt.Sprintf("Attempt failed: %s; retrying (%d/%d)", msg, e.retryCount, e.maxRetries)
			break
		}
		d.terminateLocked(e, StatusFailed, msg)
		line, final = "Failed: "+msg, msg

	case !res.Success:
		msg := cmp.Or(res.Message, defaultFailureMessage)
		if res.Retry && e.retryCount < e.maxRetries {
			d.requeueLocked(e, msg)
			retrying = true
			line = fmt.Sprintf("Attempt failed: %s; retrying (%d/%d)", msg, e.retryCount, e.maxRetries)
			break
		}
		d.terminateLocked(e, StatusFailed, msg)
		line, final = "Failed: "+msg, msg

	default:
		msg := cmp.Or(res.Message, defaultSuccessMessage)
		d.terminateLocked(e, StatusCompleted, "")
		line, final = "Completed: "+msg, msg
	}

	snap := e.snapshot()
	d.mu.Unlock()

	attrs := []any{
		logger.RunID(e.runID),
		logger.CommandName(e.name),
		logger.Status(string(snap.Status)),
		logger.RetryCount(snap.RetryCount),
		logger.Duration(elapsed),
	}

	switch {
	case retrying:
		d.retried.Add(1)
		d.logger.Warn("command attempt failed, retrying", append(attrs, logger.Error(runErr))...)
	case snap.Status == StatusCompleted:
		d.completed.Add(1)
		d.logger.Info("command completed", attrs...)
	case snap.Status == StatusCancelled:
		d.cancelled.Add(1)
		d.logger.Info("command cancelled", attrs...)
	default:
		d.failed.Add(1)
		d.logger.Error("command failed", append(attrs, slog.String("error_message", snap.ErrorMessage))...)
	}

	d.publish(snap, line, final)

	if retrying && d.retryBackoff > 0 {
		time.AfterFunc(d.retryBackoff, d.signal)
	}
	d.signal()
}

func (d *Dispatcher) reportStep(runID string, attempt, current, total int, description string) {
	d.mu.Lock()
	e, ok := d.entries[runID]
	if !ok || e.status != StatusRunning || e.retryCount+1 != attempt {
		d.mu.Unlock()
		return
	}
	e.currentStep = current
	e.maxStep = total
	e.stepDescription = description
	d.mu.Unlock()

	line := fmt.Sprintf("Step %d/%d", current, total)
	if description != "" {
		line += ": " + description
	}
	d.appendLine(runID, line)
	d.broadcastCommands(context.Background())
}

// publish fans a transition out to the tracker and the notifier. It must be
// called without holding d.mu.
func (d *Dispatcher) publish(snap Snapshot, line, final string) {
	ctx := context.Background()

	if line != "" {
		d.appendLine(snap.RunID, line)
	}

	terminal := snap.Status.IsTerminal()
	if terminal {
		if err := d.tracker.MarkCompleted(ctx, snap.RunID, final); err != nil {
			d.logger.WarnContext(ctx, "failed to complete progress log",
				logger.RunID(snap.RunID),
				logger.Error(err))
		}
	}

	d.broadcastCommands(ctx)

	if terminal {
		d.notifier.Notify(ctx, alertFor(snap, final))
	}
}

// broadcastCommands sends the current command list. The list is read and
// sent under listMu, so a list never reaches the notifier after a newer one.
func (d *Dispatcher) broadcastCommands(ctx context.Context) {
	d.listMu.Lock()
	defer d.listMu.Unlock()
	d.notifier.BroadcastCommandList(ctx, d.GetActiveCommands())
}

func (d *Dispatcher) appendLine(runID, line string) {
	if err := d.tracker.Append(context.Background(), runID, line); err != nil {
		d.logger.Warn("failed to append progress line",
			logger.RunID(runID),
			logger.Error(err))
	}
}

func (d *Dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) sweep() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	removed := 0
	for id, e := range d.entries {
		if d.expired(e, now) {
			delete(d.entries, id)
			removed++
		}
	}
	return removed
}

func (d *Dispatcher) expired(e *entry, now time.Time) bool {
	return e.status.IsTerminal() && !now.Before(e.completedAt.Add(d.retention))
}

func (d *Dispatcher) terminateLocked(e *entry, status Status, errorMessage string) {
	e.status = status
	e.errorMessage = errorMessage
	e.completedAt = d.now()
}

// requeueLocked puts a failed attempt back in the queue at its original
// position so scope order is preserved.
func (d *Dispatcher) requeueLocked(e *entry, errorMessage string) {
	e.status = StatusQueued
	e.retryCount++
	e.errorMessage = errorMessage
	e.currentStep, e.maxStep, e.stepDescription = 0, 0, ""
	e.readyAt = d.now().Add(d.retryBackoff)

	i, _ := slices.BinarySearchFunc(d.queue, e.seq, func(q *entry, seq uint64) int {
		return cmp.Compare(q.seq, seq)
	})
	d.queue = slices.Insert(d.queue, i, e)
}

func (d *Dispatcher) removeQueuedLocked(e *entry) {
	if i := slices.Index(d.queue, e); i >= 0 {
		d.queue = slices.Delete(d.queue, i, i+1)
	}
}

func (e *entry) snapshot() Snapshot {
	s := Snapshot{
		RunID:           e.runID,
		OperationName:   e.name,
		ThreadScope:     e.scope,
		Status:          e.status,
		Priority:        e.priority,
		Metadata:        e.meta.Map(),
		AgentName:       e.meta.AgentName,
		ModelName:       e.meta.ModelName,
		CurrentStep:     e.currentStep,
		MaxStep:         e.maxStep,
		StepDescription: e.stepDescription,
		RetryCount:      e.retryCount,
		ErrorMessage:    e.errorMessage,
		EnqueuedAt:      e.enqueuedAt,
	}
	if !e.startedAt.IsZero() {
		t := e.startedAt
		s.StartedAt = &t
	}
	if !e.completedAt.IsZero() {
		t := e.completedAt
		s.CompletedAt = &t
	}
	return s
}

func alertFor(snap Snapshot, final string) Alert {
	alert := Alert{Title: snap.OperationName, Message: final}
	switch snap.Status {
	case StatusCompleted:
		alert.Level = LevelSuccess
	case StatusFailed:
		alert.Level = LevelError
		alert.Message = cmp.Or(snap.ErrorMessage, final)
	default:
		alert.Level = LevelInfo
	}
	return alert
}
