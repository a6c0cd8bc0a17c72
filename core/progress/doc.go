// Package progress keeps an append-only, per-run log of human readable
// progress lines, plus a completion flag and a final result message.
//
// Logs are keyed by run id. They are written by executing commands and read
// by polling endpoints, so every implementation is safe for concurrent use.
// Unrelated runs never contend on a shared lock.
//
//	tracker := progress.NewMemoryTracker(progress.WithRetention(time.Hour))
//	go tracker.StartCleanup(ctx)
//
//	_ = tracker.Start(ctx, "r1")
//	_ = tracker.Append(ctx, "r1", "Generating chapter 1")
//	_ = tracker.MarkCompleted(ctx, "r1", "done")
//
//	log, _ := tracker.Log(ctx, "r1")
//	// log.Messages, log.Completed, log.Result
//
// RedisTracker stores the same structure in Redis so logs outlive a single
// process and can be read from any replica.
package progress
