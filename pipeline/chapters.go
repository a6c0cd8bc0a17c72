package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/core/logger"
	"github.com/dmitrymomot/storyforge/integration/llm"
)

const previousChapterContext = 2000

// GenerateChapters writes every missing chapter of a story, one step per
// chapter. Chapters already stored are kept, so a retried or resubmitted run
// resumes where the last one stopped.
type GenerateChapters struct {
	storyID string
	stories StoryStore
	text    llm.TextGenerator
	logger  *slog.Logger
}

// GenerateChapters returns the chapter generation command for storyID.
func (p *Pipeline) GenerateChapters(storyID string) *GenerateChapters {
	return &GenerateChapters{
		storyID: storyID,
		stories: p.stories,
		text:    p.text,
		logger:  p.logger,
	}
}

func (c *GenerateChapters) Name() string        { return OpGenerateChapters }
func (c *GenerateChapters) ThreadScope() string { return StoryScope(c.storyID) }

func (c *GenerateChapters) Metadata() command.Metadata {
	return storyMetadata(c.storyID, AgentChapterWriter, modelName(c.text), OpGenerateChapters)
}

func (c *GenerateChapters) Execute(ctx context.Context, exec *command.Execution) (command.Result, error) {
	story, err := c.stories.Story(ctx, c.storyID)
	if err != nil {
		return command.Result{}, err
	}

	total := story.ChapterCount
	written := 0
	for i := range total {
		if err := ctx.Err(); err != nil {
			return command.Result{}, err
		}

		n := i + 1
		if i < len(story.Chapters) && strings.TrimSpace(story.Chapters[i]) != "" {
			exec.ReportStep(n, total, fmt.Sprintf("chapter %d (already written)", n))
			continue
		}

		exec.ReportStep(n, total, fmt.Sprintf("chapter %d", n))

		text, err := c.text.Generate(ctx, chapterPrompt(story, i))
		if err != nil {
			return command.Result{}, fmt.Errorf("generate chapter %d: %w", n, upstream(err))
		}

		if err := c.stories.SaveChapter(ctx, c.storyID, i, text); err != nil {
			return command.Result{}, fmt.Errorf("save chapter %d: %w", n, err)
		}
		if i < len(story.Chapters) {
			story.Chapters[i] = text
		}
		written++

		c.logger.DebugContext(ctx, "chapter generated",
			logger.RunID(exec.RunID()),
			logger.StoryID(c.storyID),
			slog.Int("chapter", n),
		)
	}

	if written == 0 {
		return command.Succeeded(fmt.Sprintf("all %d chapters already written", total)), nil
	}
	return command.Succeeded(fmt.Sprintf("generated %d of %d chapters", written, total)), nil
}

func chapterPrompt(s Story, index int) llm.Prompt {
	var user strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&user, "Title: %s\n", s.Title)
	}
	fmt.Fprintf(&user, "Premise: %s\n", s.Premise)
	if index > 0 && index-1 < len(s.Chapters) {
		prev := s.Chapters[index-1]
		prev = tail(prev, previousChapterContext)
		if prev != "" {
			fmt.Fprintf(&user, "\nPrevious chapter ends with:\n%s\n", prev)
		}
	}
	fmt.Fprintf(&user, "\nWrite chapter %d of %d.", index+1, s.ChapterCount)

	return llm.Prompt{
		System: "You are a storyteller. Write one chapter at a time in plain prose without headings.",
		User:   user.String(),
	}
}

// tail returns at most n trailing bytes of s, starting on a rune boundary.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}
