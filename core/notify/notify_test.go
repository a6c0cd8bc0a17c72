package notify_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/core/logger"
	"github.com/dmitrymomot/storyforge/core/notify"
)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) BroadcastCommandList(ctx context.Context, snapshots []command.Snapshot) error {
	return m.Called(ctx, snapshots).Error(0)
}

func (m *mockSink) Notify(ctx context.Context, alert command.Alert) error {
	return m.Called(ctx, alert).Error(0)
}

type recordingSink struct {
	mu     sync.Mutex
	events []string
	block  chan struct{}
	panics bool
	err    error
}

func (s *recordingSink) BroadcastCommandList(_ context.Context, snapshots []command.Snapshot) error {
	if s.block != nil {
		<-s.block
	}
	if s.panics {
		panic("sink exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := ""
	for _, snap := range snapshots {
		ids += snap.RunID
	}
	s.events = append(s.events, "list:"+ids)
	return s.err
}

func (s *recordingSink) Notify(_ context.Context, alert command.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "alert:"+alert.Title)
	return s.err
}

func (s *recordingSink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func TestFanout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	errFirst := errors.New("first down")
	first := &mockSink{}
	second := &mockSink{}

	snaps := []command.Snapshot{{RunID: "r1"}}
	alert := command.Alert{Title: "generate_tts_audio", Message: "done", Level: command.LevelSuccess}

	first.On("BroadcastCommandList", ctx, snaps).Return(errFirst).Once()
	second.On("BroadcastCommandList", ctx, snaps).Return(nil).Once()
	first.On("Notify", ctx, alert).Return(nil).Once()
	second.On("Notify", ctx, alert).Return(nil).Once()

	sink := notify.Fanout(first, nil, second)

	err := sink.BroadcastCommandList(ctx, snaps)
	assert.ErrorIs(t, err, errFirst)
	assert.NoError(t, sink.Notify(ctx, alert))

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestBestEffortDeliversInOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sink := &recordingSink{}
	n := notify.BestEffort(sink)

	n.BroadcastCommandList(ctx, []command.Snapshot{{RunID: "a"}})
	n.BroadcastCommandList(ctx, []command.Snapshot{{RunID: "a"}, {RunID: "b"}})
	n.Notify(ctx, command.Alert{Title: "done"})

	require.NoError(t, n.Close())
	assert.Equal(t, []string{"list:a", "list:ab", "alert:done"}, sink.Events())

	// calls after close are ignored
	n.Notify(ctx, command.Alert{Title: "late"})
	assert.Len(t, sink.Events(), 3)
	require.NoError(t, n.Close())
}

func TestBestEffortSwallowsFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelDebug))

	failing := notify.BestEffort(&recordingSink{err: errors.New("push failed")}, notify.WithLogger(log))
	assert.NotPanics(t, func() {
		failing.Notify(ctx, command.Alert{Title: "x"})
	})
	require.NoError(t, failing.Close())
	assert.Equal(t, int64(1), failing.Failed())
	assert.Contains(t, buf.String(), "notification delivery failed")

	panicking := notify.BestEffort(&recordingSink{panics: true}, notify.WithLogger(log))
	panicking.BroadcastCommandList(ctx, nil)
	require.NoError(t, panicking.Close())
	assert.Equal(t, int64(1), panicking.Failed())
	assert.Contains(t, buf.String(), "notification sink panicked")
}

func TestBestEffortDropsWhenFull(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	release := make(chan struct{})
	var entered atomic.Bool
	sink := &recordingSink{block: release}
	n := notify.BestEffort(notify.Fanout(enterSignal{&entered}, sink), notify.WithBufferSize(1))

	n.BroadcastCommandList(ctx, []command.Snapshot{{RunID: "1"}})
	require.Eventually(t, entered.Load, time.Second, time.Millisecond)

	n.BroadcastCommandList(ctx, []command.Snapshot{{RunID: "2"}})
	n.BroadcastCommandList(ctx, []command.Snapshot{{RunID: "3"}})
	assert.Equal(t, int64(1), n.Dropped())

	close(release)
	require.NoError(t, n.Close())
	assert.Equal(t, []string{"list:1", "list:2"}, sink.Events())
}

type enterSignal struct {
	entered *atomic.Bool
}

func (s enterSignal) BroadcastCommandList(context.Context, []command.Snapshot) error {
	s.entered.Store(true)
	return nil
}

func (s enterSignal) Notify(context.Context, command.Alert) error { return nil }

func TestBestEffortTimeout(t *testing.T) {
	t.Parallel()

	sink := &ctxSink{}
	n := notify.BestEffort(sink, notify.WithTimeout(10*time.Millisecond))
	n.Notify(context.Background(), command.Alert{Title: "slow"})
	require.NoError(t, n.Close())

	assert.ErrorIs(t, sink.err, context.DeadlineExceeded)
	assert.Equal(t, int64(1), n.Failed())
}

type ctxSink struct {
	err error
}

func (s *ctxSink) BroadcastCommandList(context.Context, []command.Snapshot) error { return nil }

func (s *ctxSink) Notify(ctx context.Context, _ command.Alert) error {
	<-ctx.Done()
	s.err = ctx.Err()
	return s.err
}

func TestLogSink(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var buf bytes.Buffer
	sink := notify.NewLogSink(logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelDebug)))

	require.NoError(t, sink.BroadcastCommandList(ctx, []command.Snapshot{{RunID: "r1"}}))
	require.NoError(t, sink.Notify(ctx, command.Alert{Title: "generate_tts_audio", Message: "voice missing", Level: command.LevelError}))

	out := buf.String()
	assert.Contains(t, out, "command list updated")
	assert.Contains(t, out, "commands=1")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "voice missing")
}
