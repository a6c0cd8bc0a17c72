// Package broadcast is a small generic pub/sub used to fan messages out to
// many in-process subscribers.
//
//	b := broadcast.NewMemoryBroadcaster[Frame](32)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	go func() {
//		for msg := range sub.Receive(ctx) {
//			send(msg.Data)
//		}
//	}()
//
//	_ = b.Broadcast(ctx, broadcast.Message[Frame]{Data: frame})
//
// Delivery never blocks the sender. A subscriber whose buffer is full misses
// the message; the websocket hub relies on this so one slow browser cannot
// stall command updates for the others. Subscriptions end when their context
// is cancelled, when Close is called, or when the broadcaster closes, and the
// Receive channel is closed in each case.
//
// Broadcast after Close returns ErrBroadcasterClosed.
package broadcast
