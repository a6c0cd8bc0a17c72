package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/integration/llm"
)

// RegenerateTags asks the model for a fresh tag list for a story.
type RegenerateTags struct {
	storyID string
	stories StoryStore
	text    llm.TextGenerator
	maxTags int
}

// RegenerateTags returns the tagging command for storyID.
func (p *Pipeline) RegenerateTags(storyID string) *RegenerateTags {
	return &RegenerateTags{
		storyID: storyID,
		stories: p.stories,
		text:    p.text,
		maxTags: p.maxTags,
	}
}

func (c *RegenerateTags) Name() string        { return OpRegenerateTags }
func (c *RegenerateTags) ThreadScope() string { return TagScope(c.storyID) }

func (c *RegenerateTags) Metadata() command.Metadata {
	return storyMetadata(c.storyID, AgentTagger, modelName(c.text), OpRegenerateTags)
}

func (c *RegenerateTags) Execute(ctx context.Context, exec *command.Execution) (command.Result, error) {
	story, err := c.stories.Story(ctx, c.storyID)
	if err != nil {
		return command.Result{}, err
	}

	source := story.Text()
	if source == "" {
		source = story.Premise
	}

	exec.ReportStep(1, 2, "requesting tags")
	reply, err := c.text.Generate(ctx, llm.Prompt{
		System: fmt.Sprintf("Return up to %d short lowercase topic tags for the story, comma separated, nothing else.", c.maxTags),
		User:   source,
	})
	if err != nil {
		return command.Result{}, fmt.Errorf("generate tags: %w", upstream(err))
	}

	tags := ParseTags(reply, c.maxTags)
	if len(tags) == 0 {
		return command.RetryLater("model returned no usable tags"), nil
	}

	exec.ReportStep(2, 2, "saving tags")
	if err := c.stories.SaveTags(ctx, c.storyID, tags); err != nil {
		return command.Result{}, fmt.Errorf("save tags: %w", err)
	}

	return command.Succeeded("tags: " + strings.Join(tags, ", ")), nil
}

// ParseTags splits a model reply into normalized, unique tags.
func ParseTags(reply string, limit int) []string {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})

	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		tag := strings.ToLower(strings.Trim(strings.TrimSpace(f), "#-*•.\"'` "))
		tag = strings.Join(strings.Fields(tag), " ")
		if tag == "" || slices.Contains(tags, tag) {
			continue
		}
		tags = append(tags, tag)
		if limit > 0 && len(tags) == limit {
			break
		}
	}
	return tags
}
