package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	ErrStoryNotFound  = errors.New("story not found")
	ErrInvalidStory   = errors.New("invalid story")
	ErrNoChapters     = errors.New("story has no chapters")
	ErrChapterOutside = errors.New("chapter index out of range")
)

// Story is the unit the pipeline commands work on.
type Story struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Premise      string   `json:"premise"`
	ChapterCount int      `json:"chapter_count"`
	Voice        string   `json:"voice,omitempty"`
	Chapters     []string `json:"chapters"`
	Tags         []string `json:"tags"`
	AudioURL     string   `json:"audio_url,omitempty"`
}

// Validate checks the fields a new story needs.
func (s Story) Validate() error {
	switch {
	case strings.TrimSpace(s.ID) == "":
		return fmt.Errorf("%w: id is required", ErrInvalidStory)
	case strings.TrimSpace(s.Premise) == "":
		return fmt.Errorf("%w: premise is required", ErrInvalidStory)
	case s.ChapterCount < 1:
		return fmt.Errorf("%w: chapter_count must be positive", ErrInvalidStory)
	}
	return nil
}

// Text joins the generated chapters.
func (s Story) Text() string {
	return strings.Join(slices.DeleteFunc(slices.Clone(s.Chapters), func(c string) bool { return c == "" }), "\n\n")
}

// StoryStore persists stories and generated artifacts.
type StoryStore interface {
	Story(ctx context.Context, id string) (Story, error)
	SaveChapter(ctx context.Context, storyID string, index int, text string) error
	SaveAudio(ctx context.Context, storyID, url string) error
	SaveTags(ctx context.Context, storyID string, tags []string) error
}

// MemoryStore is a StoryStore kept in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	stories map[string]Story
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stories: make(map[string]Story)}
}

// Put creates or replaces a story.
func (m *MemoryStore) Put(_ context.Context, s Story) error {
	if err := s.Validate(); err != nil {
		return err
	}

	s.Chapters = slices.Clone(s.Chapters)
	if len(s.Chapters) < s.ChapterCount {
		s.Chapters = append(s.Chapters, make([]string, s.ChapterCount-len(s.Chapters))...)
	}
	s.Tags = slices.Clone(s.Tags)

	m.mu.Lock()
	m.stories[s.ID] = s
	m.mu.Unlock()
	return nil
}

// List returns all stories sorted by id.
func (m *MemoryStore) List(_ context.Context) []Story {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Story, 0, len(m.stories))
	for _, s := range m.stories {
		out = append(out, cloneStory(s))
	}
	slices.SortFunc(out, func(a, b Story) int { return strings.Compare(a.ID, b.ID) })
	return out
}

func (m *MemoryStore) Story(_ context.Context, id string) (Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stories[id]
	if !ok {
		return Story{}, fmt.Errorf("%w: %s", ErrStoryNotFound, id)
	}
	return cloneStory(s), nil
}

func (m *MemoryStore) SaveChapter(_ context.Context, storyID string, index int, text string) error {
	return m.update(storyID, func(s *Story) error {
		if index < 0 || index >= len(s.Chapters) {
			return fmt.Errorf("%w: %d", ErrChapterOutside, index)
		}
		s.Chapters[index] = text
		return nil
	})
}

func (m *MemoryStore) SaveAudio(_ context.Context, storyID, url string) error {
	return m.update(storyID, func(s *Story) error {
		s.AudioURL = url
		return nil
	})
}

func (m *MemoryStore) SaveTags(_ context.Context, storyID string, tags []string) error {
	return m.update(storyID, func(s *Story) error {
		s.Tags = slices.Clone(tags)
		return nil
	})
}

func (m *MemoryStore) update(id string, fn func(*Story) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stories[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrStoryNotFound, id)
	}
	if err := fn(&s); err != nil {
		return err
	}
	m.stories[id] = s
	return nil
}

func cloneStory(s Story) Story {
	s.Chapters = slices.Clone(s.Chapters)
	s.Tags = slices.Clone(s.Tags)
	return s
}

var _ StoryStore = (*MemoryStore)(nil)
