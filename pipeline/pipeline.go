package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/core/storage"
	"github.com/dmitrymomot/storyforge/integration/llm"
)

// Operation names as they appear in command snapshots.
const (
	OpGenerateChapters = "generate_chapters"
	OpGenerateSpeech   = "generate_tts_audio"
	OpRegenerateTags   = "regenerate_tags"
)

// Agent names recorded in command metadata.
const (
	AgentChapterWriter = "chapter_writer"
	AgentNarrator      = "narrator"
	AgentTagger        = "tagger"
)

// StoryScope is the thread scope for work that rewrites a story's content.
func StoryScope(storyID string) string { return "story/" + storyID }

// TagScope is the thread scope for tag regeneration.
func TagScope(storyID string) string { return "story/" + storyID + "/tags" }

// Pipeline builds commands that share one set of dependencies.
type Pipeline struct {
	stories StoryStore
	text    llm.TextGenerator
	speech  llm.SpeechSynthesizer
	audio   storage.Storage
	logger  *slog.Logger
	maxTags int

	speechChunk int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxTags caps how many tags RegenerateTags keeps.
func WithMaxTags(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxTags = n
		}
	}
}

// WithSpeechChunkSize caps the characters sent per speech request. Values
// above llm.MaxSpeechInput are clamped to it.
func WithSpeechChunkSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.speechChunk = min(n, llm.MaxSpeechInput)
		}
	}
}

// New creates a Pipeline.
func New(stories StoryStore, text llm.TextGenerator, speech llm.SpeechSynthesizer, audio storage.Storage, opts ...Option) *Pipeline {
	p := &Pipeline{
		stories: stories,
		text:    text,
		speech:  speech,
		audio:   audio,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxTags: 8,

		speechChunk: llm.MaxSpeechInput,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type modelNamer interface {
	TextModel() string
}

func modelName(v any) string {
	if m, ok := v.(modelNamer); ok {
		return m.TextModel()
	}
	return ""
}

// upstream marks errors worth retrying as transient for the dispatcher.
func upstream(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if llm.IsTransient(err) || storage.IsTransient(err) {
		return command.Transient(err)
	}
	return err
}

func storyMetadata(storyID, agent, model, operation string) command.Metadata {
	return command.Metadata{
		StoryID:   storyID,
		AgentName: agent,
		ModelName: model,
		Operation: operation,
	}
}
