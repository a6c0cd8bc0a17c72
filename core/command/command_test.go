package command_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storyforge/core/command"
)

func TestTransient(t *testing.T) {
	t.Parallel()

	base := errors.New("429 too many requests")
	err := command.Transient(base)

	assert.True(t, command.IsTransient(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, base.Error(), err.Error())

	wrapped := fmt.Errorf("generate chapter: %w", err)
	assert.True(t, command.IsTransient(wrapped))

	assert.False(t, command.IsTransient(base))
	assert.False(t, command.IsTransient(nil))
	assert.NoError(t, command.Transient(nil))
}

func TestResultHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, command.Result{Success: true, Message: "ok"}, command.Succeeded("ok"))
	assert.Equal(t, command.Result{Message: "bad"}, command.Failed("bad"))
	assert.Equal(t, command.Result{Message: "later", Retry: true}, command.RetryLater("later"))
}

func TestStatusIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, command.StatusQueued.IsTerminal())
	assert.False(t, command.StatusRunning.IsTerminal())
	assert.True(t, command.StatusCompleted.IsTerminal())
	assert.True(t, command.StatusFailed.IsTerminal())
	assert.True(t, command.StatusCancelled.IsTerminal())
}

func TestMetadataCopyOnWrite(t *testing.T) {
	t.Parallel()

	base := command.Metadata{StoryID: "5", Extra: map[string]string{"chapter": "1"}}

	withVoice := base.With("voice", "alloy")
	assert.Equal(t, "alloy", withVoice.Extra["voice"])
	assert.NotContains(t, base.Extra, "voice")

	merged := base.Merge(command.Metadata{AgentName: "narrator", Extra: map[string]string{"chapter": "2"}})
	assert.Equal(t, "narrator", merged.AgentName)
	assert.Equal(t, "5", merged.StoryID)
	assert.Equal(t, "2", merged.Extra["chapter"])
	assert.Equal(t, "1", base.Extra["chapter"])

	assert.True(t, command.Metadata{}.IsZero())
	assert.False(t, base.IsZero())
}

func TestMetadataMap(t *testing.T) {
	t.Parallel()

	m := command.Metadata{
		StoryID:   "5",
		ModelName: "gpt-4o",
		Extra:     map[string]string{"story_id": "ignored", "voice": "alloy"},
	}

	assert.Equal(t, map[string]string{
		command.MetaStoryID:   "5",
		command.MetaModelName: "gpt-4o",
		"voice":               "alloy",
	}, m.Map())
	assert.Empty(t, command.Metadata{}.Map())
}

func TestMetadataIsolatedFromCaller(t *testing.T) {
	t.Parallel()

	d := newDispatcher()
	extra := map[string]string{"chapter": "1"}

	runID, err := d.Enqueue(context.Background(), "op", succeed(""),
		command.WithMetadata(command.Metadata{Extra: extra}))
	require.NoError(t, err)

	extra["chapter"] = "changed"

	snap, ok := d.Get(runID)
	require.True(t, ok)
	assert.Equal(t, "1", snap.Metadata["chapter"])
}

func TestSnapshotJSON(t *testing.T) {
	t.Parallel()

	enqueued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := command.Snapshot{
		RunID:         "r1",
		OperationName: "generate_tts_audio",
		ThreadScope:   "story/5",
		Status:        command.StatusQueued,
		Metadata:      map[string]string{"story_id": "5"},
		EnqueuedAt:    enqueued,
	}

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "r1", decoded["run_id"])
	assert.Equal(t, "generate_tts_audio", decoded["operation_name"])
	assert.Equal(t, "story/5", decoded["thread_scope"])
	assert.Equal(t, "queued", decoded["status"])
	assert.Contains(t, decoded, "started_at")
	assert.Nil(t, decoded["completed_at"])
	assert.Equal(t, float64(0), decoded["retry_count"])
}

func TestNilExecutionIsSafe(t *testing.T) {
	t.Parallel()

	var exec *command.Execution
	assert.Empty(t, exec.RunID())
	assert.Equal(t, 1, exec.Attempt())
	assert.NotPanics(t, func() {
		exec.ReportStep(1, 2, "step")
		exec.Log("line %d", 1)
	})
}
