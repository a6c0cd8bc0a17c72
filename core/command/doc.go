// Package command provides an in-process dispatcher for named, cancellable,
// retryable units of work.
//
// A command is an opaque operation plus a run id, an optional thread scope,
// typed metadata and a priority. The dispatcher queues commands, runs them on
// a bounded worker pool and keeps a live snapshot of every command for UI
// polling and push.
//
// # Quick Start
//
//	dispatcher := command.NewDispatcher(
//	    command.WithMaxConcurrent(2),
//	    command.WithTracker(tracker),
//	    command.WithNotifier(notify.BestEffort(hub)),
//	    command.WithLogger(log),
//	)
//
//	eg.Go(dispatcher.Run(ctx))
//
//	runID, err := dispatcher.Enqueue(ctx, "generate_tts_audio",
//	    func(ctx context.Context, exec *command.Execution) (command.Result, error) {
//	        exec.ReportStep(1, 2, "synthesizing")
//	        if err := synthesize(ctx); err != nil {
//	            return command.Result{}, err
//	        }
//	        return command.Succeeded("done"), nil
//	    },
//	    command.WithThreadScope("story/5"),
//	    command.WithMetadata(command.Metadata{StoryID: "5"}),
//	)
//
// # Scheduling
//
// The worker pool is bounded by WithMaxConcurrent. When a slot is free the
// dispatcher picks, among the runnable queued commands, the one with the
// highest priority and, on ties, the earliest enqueue order.
//
// A thread scope is a mutual exclusion key. At most one command per scope is
// running at any time, and commands that share a scope start strictly in
// enqueue order regardless of priority. Commands without a scope are only
// limited by the pool size.
//
// # Lifecycle
//
// Every command moves through queued, running and one of completed, failed or
// cancelled. A retried command goes back to queued with its retry count
// incremented and keeps its place in the scope order. Terminal commands stay
// visible in GetActiveCommands for the retention window (5 minutes by
// default) and are then dropped.
//
// On each transition the dispatcher updates the snapshot, appends a line to
// the progress tracker and hands the full command list to the Notifier.
// Terminal transitions also close the progress log and send an Alert.
//
// # Retries
//
// Failures are permanent unless the operation says otherwise, either by
// returning an error wrapped with Transient or a Result built with RetryLater.
// Retryable failures are re-queued while the retry count is below the
// configured ceiling (0 by default, so nothing is retried).
//
//	if resp.StatusCode == http.StatusTooManyRequests {
//	    return command.Result{}, command.Transient(errRateLimited)
//	}
//
// # Cancellation
//
// Cancel removes a queued command without running it. For a running command
// it cancels the operation's context and the command becomes cancelled once
// the operation returns. Cancellation is cooperative: an operation that
// ignores its context keeps running unless a hard timeout is configured with
// WithHardTimeout.
//
// # Failure Isolation
//
// A panicking operation is recovered and the command is marked failed with
// the panic text as its error message. Progress tracker and notifier failures
// never affect command status.
package command
