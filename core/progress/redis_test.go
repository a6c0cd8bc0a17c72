package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storyforge/core/progress"
)

func newRedisTracker(t *testing.T, opts ...progress.RedisTrackerOption) (*progress.RedisTracker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tr, err := progress.NewRedisTracker(client, opts...)
	require.NoError(t, err)
	return tr, mr
}

func TestRedisTrackerContract(t *testing.T) {
	t.Parallel()

	runTrackerContract(t, func(t *testing.T) progress.Tracker {
		tr, _ := newRedisTracker(t)
		return tr
	})
}

func TestNewRedisTrackerNilClient(t *testing.T) {
	t.Parallel()

	tr, err := progress.NewRedisTracker(nil)
	assert.Nil(t, tr)
	assert.ErrorIs(t, err, progress.ErrRedisClientNil)
}

func TestRedisTrackerKeysAndTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tr, mr := newRedisTracker(t,
		progress.WithKeyPrefix("test:"),
		progress.WithTTL(10*time.Minute),
	)

	require.NoError(t, tr.Start(ctx, "r1"))
	require.NoError(t, tr.Append(ctx, "r1", "hello"))

	assert.True(t, mr.Exists("test:r1:meta"))
	assert.True(t, mr.Exists("test:r1:lines"))
	assert.Equal(t, 10*time.Minute, mr.TTL("test:r1:lines"))

	mr.FastForward(11 * time.Minute)

	lines, err := tr.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRedisTrackerLineTimestamps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	at := time.Date(2025, 3, 1, 9, 4, 5, 0, time.Local)
	tr, _ := newRedisTracker(t, progress.WithRedisClock(func() time.Time { return at }))

	require.NoError(t, tr.Start(ctx, "r1"))
	require.NoError(t, tr.Append(ctx, "r1", "Step 1 of 3"))

	lines, err := tr.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"[09:04:05] Step 1 of 3"}, lines)
}

func TestRedisTrackerHealthcheck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tr, mr := newRedisTracker(t)
	require.NoError(t, tr.Healthcheck(ctx))

	mr.Close()
	assert.Error(t, tr.Healthcheck(ctx))
}
