// Package llm provides text generation and speech synthesis backed by hosted
// model APIs.
//
// Two providers are available. OpenAI implements both TextGenerator and
// SpeechSynthesizer; Google implements TextGenerator on top of Gemini.
//
//	gen, err := llm.NewOpenAI(apiKey,
//	    llm.WithOpenAITextModel("gpt-4o-mini"),
//	    llm.WithOpenAISpeechModel("gpt-4o-mini-tts"),
//	)
//
//	text, err := gen.Generate(ctx, llm.Prompt{
//	    System: "You are a children's story writer.",
//	    User:   "Write chapter 1 about a brave otter.",
//	})
//
//	audio, err := gen.Synthesize(ctx, text, "alloy")
//
// Errors caused by rate limits, upstream outages or timeouts are reported by
// IsTransient so callers can decide to retry.
package llm
