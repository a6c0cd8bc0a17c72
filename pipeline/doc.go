// Package pipeline contains the story generation commands run by the
// dispatcher.
//
// Each command is a struct with its dependencies injected at construction
// and its target story fixed at creation, so it can be handed straight to
// command.Dispatcher.Submit:
//
//	p := pipeline.New(stories, textGen, speech, audioStore)
//
//	runID, err := dispatcher.Submit(ctx, p.GenerateChapters("42"))
//	runID, err = dispatcher.Submit(ctx, p.GenerateSpeech("42", "alloy"))
//	runID, err = dispatcher.Submit(ctx, p.RegenerateTags("42"))
//
// Chapter generation and speech share the story/{id} thread scope and so never
// overlap for one story. Tag regeneration uses story/{id}/tags and may run
// alongside them.
//
// Rate limits, upstream outages and timeouts are returned as
// command.Transient errors, so the dispatcher retries them up to its ceiling.
package pipeline
