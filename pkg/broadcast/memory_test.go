package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storyforge/pkg/broadcast"
)

func TestMemoryBroadcaster(t *testing.T) {
	t.Parallel()

	t.Run("delivers to all subscribers", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[string](10)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub1 := b.Subscribe(ctx)
		sub2 := b.Subscribe(ctx)

		require.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "hello"}))

		for _, sub := range []broadcast.Subscriber[string]{sub1, sub2} {
			select {
			case msg := <-sub.Receive(ctx):
				assert.Equal(t, "hello", msg.Data)
			case <-time.After(time.Second):
				t.Fatal("message not delivered")
			}
		}
	})

	t.Run("drops messages for slow consumers", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[int](1)
		defer b.Close()

		ctx := context.Background()
		sub := b.Subscribe(ctx)
		defer sub.Close()

		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 1}))
		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 2}))

		msg := <-sub.Receive(ctx)
		assert.Equal(t, 1, msg.Data)

		select {
		case extra := <-sub.Receive(ctx):
			t.Fatalf("unexpected message %d", extra.Data)
		default:
		}
	})

	t.Run("removes subscriber on context cancel", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[string](1)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		sub := b.Subscribe(ctx)
		assert.Equal(t, 1, b.SubscriberCount())

		cancel()

		require.Eventually(t, func() bool {
			return b.SubscriberCount() == 0
		}, time.Second, 5*time.Millisecond)

		_, ok := <-sub.Receive(context.Background())
		assert.False(t, ok, "channel should be closed")
	})

	t.Run("broadcast after close fails", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[string](1)
		sub := b.Subscribe(context.Background())
		require.NoError(t, b.Close())
		require.NoError(t, b.Close())

		err := b.Broadcast(context.Background(), broadcast.Message[string]{Data: "late"})
		assert.ErrorIs(t, err, broadcast.ErrBroadcasterClosed)

		_, ok := <-sub.Receive(context.Background())
		assert.False(t, ok)
	})
}
