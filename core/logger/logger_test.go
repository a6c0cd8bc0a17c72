package logger_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storyforge/core/logger"
)

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestCommandAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "run_id", logger.RunID("r1").Key)
	assert.True(t, logger.RunID("").Equal(slog.Attr{}))

	assert.Equal(t, "story/5", logger.ThreadScope("story/5").Value.String())
	assert.True(t, logger.ThreadScope("").Equal(slog.Attr{}))

	assert.Equal(t, "command", logger.CommandName("generate_tts_audio").Key)
	assert.Equal(t, int64(2), logger.RetryCount(2).Value.Int64())
	assert.Equal(t, "running", logger.Status("running").Value.String())
	assert.Equal(t, int64(3), logger.Attempt(3).Value.Int64())
	assert.Equal(t, int64(10), logger.Priority(10).Value.Int64())
}

func TestStoryAndHTTPAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "story_id", logger.StoryID("42").Key)
	assert.True(t, logger.StoryID("").Equal(slog.Attr{}))
	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))
	assert.Equal(t, int64(404), logger.StatusCode(404).Value.Int64())
	assert.True(t, logger.Key("cancelled", nil).Equal(slog.Attr{}))
	assert.Contains(t, logger.Stack().Value.String(), "goroutine")

	assert.Equal(t, "request_id", logger.RequestID("req-1").Key)
	assert.Equal(t, "method", logger.Method("POST").Key)
	assert.Equal(t, "path", logger.Path("/stories").Key)
	assert.Equal(t, "status_code", logger.StatusCode(200).Key)
}

func TestGenericAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.String("component", "dispatcher"), logger.Component("dispatcher"))
	assert.Equal(t, slog.String("event", "sweep"), logger.Event("sweep"))
	assert.Equal(t, slog.Int("parts", 3), logger.Count("parts", 3))
	assert.Equal(t, slog.Any("voice", "nova"), logger.Key("voice", "nova"))
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with attrs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "storyforge")),
		)

		log.Info("Test message", logger.Component("test"), logger.Error(nil))

		out := buf.String()
		assert.Contains(t, out, "Test message")
		assert.Contains(t, out, `"component":"test"`)
		assert.Contains(t, out, `"service":"storyforge"`)
		assert.NotContains(t, out, `"error"`)
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))

		log.Info("hidden")
		log.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("context values are injected", func(t *testing.T) {
		t.Parallel()

		type requestIDKey struct{}

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithContextValue("request_id", requestIDKey{}),
		)

		ctx := context.WithValue(context.Background(), requestIDKey{}, "req-123")
		log.With("k", "v").InfoContext(ctx, "with context")

		assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	})

	t.Run("environment presets", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.ForEnv("production", "storyforge"), logger.WithOutput(&buf))
		log.Debug("debug dropped")
		log.Info("info kept")

		assert.NotContains(t, buf.String(), "debug dropped")
		assert.Contains(t, buf.String(), `"env":"production"`)

		buf.Reset()
		dev := logger.New(logger.ForEnv("", "storyforge"), logger.WithOutput(&buf))
		dev.Debug("debug kept")
		assert.Contains(t, buf.String(), "debug kept")
	})
}
