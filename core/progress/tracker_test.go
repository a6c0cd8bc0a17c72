package progress_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storyforge/core/progress"
)

// runTrackerContract exercises the behaviour every Tracker implementation shares.
func runTrackerContract(t *testing.T, newTracker func(t *testing.T) progress.Tracker) {
	t.Helper()
	ctx := context.Background()

	t.Run("append to unknown run is a no-op", func(t *testing.T) {
		tr := newTracker(t)

		require.NoError(t, tr.Append(ctx, "missing", "line"))

		lines, err := tr.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, lines)

		done, err := tr.IsCompleted(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, done)
	})

	t.Run("lines are returned in append order", func(t *testing.T) {
		tr := newTracker(t)

		require.NoError(t, tr.Start(ctx, "r1"))
		require.NoError(t, tr.Start(ctx, "r1"))
		for i := 1; i <= 3; i++ {
			require.NoError(t, tr.Append(ctx, "r1", fmt.Sprintf("step %d", i)))
		}

		first, err := tr.Get(ctx, "r1")
		require.NoError(t, err)
		require.Len(t, first, 3)
		assert.Contains(t, first[0], "step 1")
		assert.Contains(t, first[1], "step 2")
		assert.Contains(t, first[2], "step 3")
		assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] step 1$`, first[0])

		second, err := tr.Get(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("returned history is not affected by later appends", func(t *testing.T) {
		tr := newTracker(t)

		require.NoError(t, tr.Start(ctx, "r2"))
		require.NoError(t, tr.Append(ctx, "r2", "one"))

		before, err := tr.Get(ctx, "r2")
		require.NoError(t, err)

		require.NoError(t, tr.Append(ctx, "r2", "two"))
		assert.Len(t, before, 1)
	})

	t.Run("mark completed is idempotent", func(t *testing.T) {
		tr := newTracker(t)

		require.NoError(t, tr.Start(ctx, "r3"))

		_, ok, err := tr.GetResult(ctx, "r3")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, tr.MarkCompleted(ctx, "r3", "done"))
		require.NoError(t, tr.MarkCompleted(ctx, "r3", "again"))

		result, ok, err := tr.GetResult(ctx, "r3")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "done", result)

		done, err := tr.IsCompleted(ctx, "r3")
		require.NoError(t, err)
		assert.True(t, done)

		require.NoError(t, tr.Append(ctx, "r3", "trailing diagnostic"))
		lines, err := tr.Get(ctx, "r3")
		require.NoError(t, err)
		assert.Len(t, lines, 1)
	})

	t.Run("log view", func(t *testing.T) {
		tr := newTracker(t)

		empty, err := tr.Log(ctx, "nothing")
		require.NoError(t, err)
		assert.NotNil(t, empty.Messages)
		assert.False(t, empty.Completed)
		assert.Nil(t, empty.Result)

		require.NoError(t, tr.Start(ctx, "r4"))
		require.NoError(t, tr.Append(ctx, "r4", "working"))

		open, err := tr.Log(ctx, "r4")
		require.NoError(t, err)
		assert.Len(t, open.Messages, 1)
		assert.False(t, open.Completed)
		assert.Nil(t, open.Result)

		require.NoError(t, tr.MarkCompleted(ctx, "r4", "finished"))

		closed, err := tr.Log(ctx, "r4")
		require.NoError(t, err)
		assert.True(t, closed.Completed)
		require.NotNil(t, closed.Result)
		assert.Equal(t, "finished", *closed.Result)
	})

	t.Run("reset reopens a completed log", func(t *testing.T) {
		tr := newTracker(t)

		require.NoError(t, tr.Start(ctx, "r5"))
		require.NoError(t, tr.Append(ctx, "r5", "first run"))
		require.NoError(t, tr.MarkCompleted(ctx, "r5", "first"))

		require.NoError(t, tr.Reset(ctx, "r5"))

		log, err := tr.Log(ctx, "r5")
		require.NoError(t, err)
		assert.Empty(t, log.Messages)
		assert.False(t, log.Completed)
		assert.Nil(t, log.Result)

		require.NoError(t, tr.Append(ctx, "r5", "second run"))
		require.NoError(t, tr.MarkCompleted(ctx, "r5", "second"))

		result, ok, err := tr.GetResult(ctx, "r5")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "second", result)

		lines, err := tr.Get(ctx, "r5")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "second run")
	})

	t.Run("reset creates a missing log", func(t *testing.T) {
		tr := newTracker(t)

		require.NoError(t, tr.Reset(ctx, "r6"))
		require.NoError(t, tr.Append(ctx, "r6", "line"))

		lines, err := tr.Get(ctx, "r6")
		require.NoError(t, err)
		assert.Len(t, lines, 1)
	})

	t.Run("empty run id is rejected", func(t *testing.T) {
		tr := newTracker(t)

		assert.ErrorIs(t, tr.Start(ctx, ""), progress.ErrEmptyRunID)
		assert.ErrorIs(t, tr.Reset(ctx, ""), progress.ErrEmptyRunID)
		assert.ErrorIs(t, tr.MarkCompleted(ctx, "", "x"), progress.ErrEmptyRunID)
	})

	t.Run("concurrent writers on separate runs", func(t *testing.T) {
		tr := newTracker(t)

		const runs, lines = 8, 25
		var wg sync.WaitGroup
		for r := 0; r < runs; r++ {
			runID := fmt.Sprintf("c%d", r)
			require.NoError(t, tr.Start(ctx, runID))

			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < lines; i++ {
					_ = tr.Append(ctx, runID, fmt.Sprintf("line %d", i))
				}
			}()
		}
		wg.Wait()

		for r := 0; r < runs; r++ {
			got, err := tr.Get(ctx, fmt.Sprintf("c%d", r))
			require.NoError(t, err)
			require.Len(t, got, lines)
			assert.Contains(t, got[lines-1], fmt.Sprintf("line %d", lines-1))
		}
	})
}
