package broadcast

import (
	"context"
	"errors"
)

// ErrBroadcasterClosed is returned by Broadcast after Close.
var ErrBroadcasterClosed = errors.New("broadcaster is closed")

// Message wraps broadcast data.
type Message[T any] struct {
	Data T
}

// Broadcaster sends messages to every active subscriber.
type Broadcaster[T any] interface {
	Subscribe(ctx context.Context) Subscriber[T]
	Broadcast(ctx context.Context, msg Message[T]) error
	Close() error
}

// Subscriber receives broadcast messages until closed or its context ends.
type Subscriber[T any] interface {
	Receive(ctx context.Context) <-chan Message[T]
	Close() error
}
