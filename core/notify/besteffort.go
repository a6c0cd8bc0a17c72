package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/core/logger"
)

// Notifier adapts a Sink to command.Notifier. Calls are queued and delivered
// in order by one goroutine, so the caller never waits on the sink. When the
// queue is full new calls are dropped and counted.
type Notifier struct {
	sink    Sink
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.RWMutex
	closed  bool
	queue   chan delivery
	done    chan struct{}
	dropped atomic.Int64
	failed  atomic.Int64
}

type delivery struct {
	kind string
	ctx  context.Context
	run  func(ctx context.Context) error
}

// Option configures a best-effort Notifier.
type Option func(*Notifier)

// WithTimeout bounds a single sink call. Default is 5s.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithBufferSize sets how many pending calls are kept. Default is 256.
func WithBufferSize(size int) Option {
	return func(n *Notifier) {
		if size > 0 {
			n.queue = make(chan delivery, size)
		}
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(log *slog.Logger) Option {
	return func(n *Notifier) {
		if log != nil {
			n.logger = log
		}
	}
}

// BestEffort starts a Notifier delivering to sink. Call Close to flush and
// stop it.
func BestEffort(sink Sink, opts ...Option) *Notifier {
	n := &Notifier{
		sink:    sink,
		timeout: 5 * time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		queue:   make(chan delivery, 256),
		done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(n)
	}

	go n.loop()
	return n
}

func (n *Notifier) BroadcastCommandList(ctx context.Context, snapshots []command.Snapshot) {
	n.enqueue(ctx, "broadcast_command_list", func(ctx context.Context) error {
		return n.sink.BroadcastCommandList(ctx, snapshots)
	})
}

func (n *Notifier) Notify(ctx context.Context, alert command.Alert) {
	n.enqueue(ctx, "notify", func(ctx context.Context) error {
		return n.sink.Notify(ctx, alert)
	})
}

// Close stops accepting calls and waits until queued ones are delivered.
func (n *Notifier) Close() error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	<-n.done
	return nil
}

// Dropped returns how many calls were discarded because the queue was full.
func (n *Notifier) Dropped() int64 {
	return n.dropped.Load()
}

// Failed returns how many deliveries returned an error or panicked.
func (n *Notifier) Failed() int64 {
	return n.failed.Load()
}

func (n *Notifier) enqueue(ctx context.Context, kind string, run func(context.Context) error) {
	if n.sink == nil {
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return
	}

	select {
	case n.queue <- delivery{kind: kind, ctx: context.WithoutCancel(ctx), run: run}:
	default:
		n.dropped.Add(1)
		n.logger.WarnContext(ctx, "notification queue full, dropping call",
			logger.Component("notify"),
			logger.Event(kind))
	}
}

func (n *Notifier) loop() {
	defer close(n.done)
	for d := range n.queue {
		n.deliver(d)
	}
}

func (n *Notifier) deliver(d delivery) {
	ctx, cancel := context.WithTimeout(d.ctx, n.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			n.failed.Add(1)
			n.logger.ErrorContext(ctx, "notification sink panicked",
				logger.Component("notify"),
				logger.Event(d.kind),
				logger.Error(fmt.Errorf("panic: %v", r)),
				logger.Stack())
		}
	}()

	if err := d.run(ctx); err != nil {
		n.failed.Add(1)
		n.logger.WarnContext(ctx, "notification delivery failed",
			logger.Component("notify"),
			logger.Event(d.kind),
			logger.Error(err))
	}
}

var _ command.Notifier = (*Notifier)(nil)
