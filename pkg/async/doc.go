// Package async provides a small generic Future for running a function in its
// own goroutine and collecting its result later, optionally with a deadline.
//
// # Usage
//
//	future := async.Async(ctx, storyID, func(ctx context.Context, id int) (Chapter, error) {
//		return generator.Next(ctx, id)
//	})
//
//	// Do other work...
//
//	chapter, err := future.Await()
//
// Waiting with a deadline does not stop the function; the caller is expected to
// cancel the context it passed to Async when it gives up:
//
//	chapter, err := future.AwaitWithTimeout(30 * time.Second)
//	if errors.Is(err, async.ErrTimeout) {
//		cancel()
//	}
//
// # Panics
//
// A panic inside the function is recovered and reported as an error wrapping
// ErrPanic, so one misbehaving function cannot take the process down.
//
// # Context Support
//
// If the context is already cancelled when the goroutine starts, the function
// is never invoked and Await returns the context's error.
package async
