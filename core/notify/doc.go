// Package notify delivers command list updates and alerts to clients.
//
// Sinks return errors. The dispatcher never sees them: BestEffort wraps a
// Sink into a command.Notifier that queues calls, delivers them from a
// single goroutine in order, and logs failures and panics.
//
//	hub := notify.NewHub(notify.WithHubLogger(log))
//	notifier := notify.BestEffort(notify.Fanout(hub, notify.NewLogSink(log)),
//	    notify.WithLogger(log),
//	)
//	defer notifier.Close()
//
//	dispatcher := command.NewDispatcher(command.WithNotifier(notifier))
//	router.Handle("/ws", hub)
//
// Hub pushes JSON frames to websocket clients:
//
//	{"type":"commands","commands":[...]}
//	{"type":"notification","title":"...","message":"...","level":"success"}
//
// A client that connects receives the latest command list right away.
package notify
