package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/core/logger"
	"github.com/dmitrymomot/storyforge/core/storage"
	"github.com/dmitrymomot/storyforge/integration/llm"
)

// GenerateSpeech narrates a story and stores the audio as audio/{id}.mp3.
// Chapters are synthesized in pieces that fit one speech request and the
// resulting MP3 segments are joined in order.
type GenerateSpeech struct {
	storyID   string
	voice     string
	chunkSize int
	stories   StoryStore
	speech    llm.SpeechSynthesizer
	audio     storage.Storage
	logger    *slog.Logger
}

// GenerateSpeech returns the narration command for storyID. An empty voice
// uses the story's voice, then the synthesizer default.
func (p *Pipeline) GenerateSpeech(storyID, voice string) *GenerateSpeech {
	return &GenerateSpeech{
		storyID:   storyID,
		voice:     voice,
		chunkSize: p.speechChunk,
		stories:   p.stories,
		speech:    p.speech,
		audio:     p.audio,
		logger:    p.logger,
	}
}

// AudioKey is the storage key of a story's narration.
func AudioKey(storyID string) string { return "audio/" + storyID + ".mp3" }

func (c *GenerateSpeech) Name() string        { return OpGenerateSpeech }
func (c *GenerateSpeech) ThreadScope() string { return StoryScope(c.storyID) }

func (c *GenerateSpeech) Metadata() command.Metadata {
	m := storyMetadata(c.storyID, AgentNarrator, "", OpGenerateSpeech)
	if c.voice != "" {
		m = m.With("voice", c.voice)
	}
	return m
}

func (c *GenerateSpeech) Execute(ctx context.Context, exec *command.Execution) (command.Result, error) {
	story, err := c.stories.Story(ctx, c.storyID)
	if err != nil {
		return command.Result{}, err
	}

	chunks := NarrationChunks(story.Chapters, c.chunkSize)
	if len(chunks) == 0 {
		return command.Failed(ErrNoChapters.Error()), nil
	}

	voice := c.voice
	if voice == "" {
		voice = story.Voice
	}

	// One step per chunk, then upload and save.
	total := len(chunks) + 2

	var audio bytes.Buffer
	for i, chunk := range chunks {
		exec.ReportStep(i+1, total, fmt.Sprintf("synthesizing part %d of %d", i+1, len(chunks)))

		segment, err := c.speech.Synthesize(ctx, chunk, voice)
		if err != nil {
			return command.Result{}, fmt.Errorf("synthesize part %d of %d: %w", i+1, len(chunks), upstream(err))
		}
		// MP3 streams are frame sequences, so segments concatenate.
		audio.Write(segment)
	}

	exec.ReportStep(total-1, total, "uploading audio")
	obj, err := c.audio.Put(ctx, AudioKey(c.storyID), &audio, "audio/mpeg")
	if err != nil {
		return command.Result{}, fmt.Errorf("store audio: %w", upstream(err))
	}

	exec.ReportStep(total, total, "saving story")
	if err := c.stories.SaveAudio(ctx, c.storyID, obj.URL); err != nil {
		return command.Result{}, fmt.Errorf("save audio url: %w", err)
	}

	c.logger.InfoContext(ctx, "story narrated",
		logger.RunID(exec.RunID()),
		logger.StoryID(c.storyID),
		logger.Count("parts", len(chunks)),
		slog.Int64("bytes", obj.Size),
	)

	return command.Succeeded("audio saved to " + obj.URL), nil
}
