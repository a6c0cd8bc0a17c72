package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "storyforge:progress:"
	defaultRedisTTL    = 24 * time.Hour

	fieldCreatedAt = "created_at"
	fieldCompleted = "completed"
	fieldResult    = "result"
)

// ErrRedisClientNil is returned when NewRedisTracker receives a nil client.
var ErrRedisClientNil = errors.New("progress: redis client is nil")

// RedisTracker is a Tracker backed by Redis. Each run is a list of encoded
// lines plus a hash holding the completion flag and result. Both keys expire
// after the configured TTL, refreshed on every write.
type RedisTracker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// RedisTrackerOption configures a RedisTracker.
type RedisTrackerOption func(*RedisTracker)

// WithKeyPrefix sets the key namespace. Default is "storyforge:progress:".
func WithKeyPrefix(prefix string) RedisTrackerOption {
	return func(t *RedisTracker) {
		if prefix != "" {
			t.prefix = prefix
		}
	}
}

// WithTTL sets how long a run log lives after its last write. Default is 24h.
func WithTTL(ttl time.Duration) RedisTrackerOption {
	return func(t *RedisTracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithRedisClock overrides the time source used for line timestamps.
func WithRedisClock(now func() time.Time) RedisTrackerOption {
	return func(t *RedisTracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewRedisTracker creates a tracker on top of an existing client.
func NewRedisTracker(client redis.UniversalClient, opts ...RedisTrackerOption) (*RedisTracker, error) {
	if client == nil {
		return nil, ErrRedisClientNil
	}

	t := &RedisTracker{
		client: client,
		prefix: defaultRedisPrefix,
		ttl:    defaultRedisTTL,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

type encodedLine struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// Start creates the meta hash of runID if it is missing and refreshes its
// TTL. An existing log keeps its lines.
func (t *RedisTracker) Start(ctx context.Context, runID string) error {
	if runID == "" {
		return ErrEmptyRunID
	}

	metaKey := t.metaKey(runID)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, metaKey, fieldCreatedAt, t.now().UnixNano())
		pipe.Expire(ctx, metaKey, t.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("progress: start %s: %w", runID, err)
	}
	return nil
}

// Reset deletes both keys of runID and recreates an open log in one
// transaction.
func (t *RedisTracker) Reset(ctx context.Context, runID string) error {
	if runID == "" {
		return ErrEmptyRunID
	}

	metaKey := t.metaKey(runID)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, t.linesKey(runID), metaKey)
		pipe.HSet(ctx, metaKey, fieldCreatedAt, t.now().UnixNano())
		pipe.Expire(ctx, metaKey, t.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("progress: reset %s: %w", runID, err)
	}
	return nil
}

// Append pushes a line and refreshes the TTL of both keys. Lines for a run
// that was never started are dropped.
func (t *RedisTracker) Append(ctx context.Context, runID, line string) error {
	metaKey := t.metaKey(runID)

	exists, err := t.client.Exists(ctx, metaKey).Result()
	if err != nil {
		return fmt.Errorf("progress: append %s: %w", runID, err)
	}
	if exists == 0 {
		return nil
	}

	data, err := json.Marshal(encodedLine{At: t.now(), Text: line})
	if err != nil {
		return fmt.Errorf("progress: encode line: %w", err)
	}

	linesKey := t.linesKey(runID)
	_, err = t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, linesKey, data)
		pipe.Expire(ctx, linesKey, t.ttl)
		pipe.Expire(ctx, metaKey, t.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("progress: append %s: %w", runID, err)
	}
	return nil
}

// Get returns the lines of runID in append order.
func (t *RedisTracker) Get(ctx context.Context, runID string) ([]string, error) {
	raw, err := t.client.LRange(ctx, t.linesKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("progress: get %s: %w", runID, err)
	}
	return decodeLines(raw), nil
}

// IsCompleted reports whether the log of runID is closed.
func (t *RedisTracker) IsCompleted(ctx context.Context, runID string) (bool, error) {
	v, err := t.client.HGet(ctx, t.metaKey(runID), fieldCompleted).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("progress: is completed %s: %w", runID, err)
	}
	return v == "1", nil
}

// GetResult returns the result of a completed log. The bool is false while
// the log is open.
func (t *RedisTracker) GetResult(ctx context.Context, runID string) (string, bool, error) {
	completed, result, err := t.readMeta(ctx, runID)
	if err != nil {
		return "", false, err
	}
	if !completed {
		return "", false, nil
	}
	return result, true, nil
}

// MarkCompleted closes the log. HSETNX keeps the first result when several
// callers race.
func (t *RedisTracker) MarkCompleted(ctx context.Context, runID, result string) error {
	if runID == "" {
		return ErrEmptyRunID
	}

	metaKey := t.metaKey(runID)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, metaKey, fieldCreatedAt, t.now().UnixNano())
		pipe.HSetNX(ctx, metaKey, fieldResult, result)
		pipe.HSetNX(ctx, metaKey, fieldCompleted, "1")
		pipe.Expire(ctx, metaKey, t.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("progress: mark completed %s: %w", runID, err)
	}
	return nil
}

// Log returns the lines and completion state of runID.
func (t *RedisTracker) Log(ctx context.Context, runID string) (Log, error) {
	messages, err := t.Get(ctx, runID)
	if err != nil {
		return Log{}, err
	}

	completed, result, err := t.readMeta(ctx, runID)
	if err != nil {
		return Log{}, err
	}

	out := Log{Messages: messages, Completed: completed}
	if completed {
		out.Result = &result
	}
	return out, nil
}

// Healthcheck pings Redis.
func (t *RedisTracker) Healthcheck(ctx context.Context) error {
	if err := t.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("progress: redis ping: %w", err)
	}
	return nil
}

func (t *RedisTracker) readMeta(ctx context.Context, runID string) (bool, string, error) {
	vals, err := t.client.HMGet(ctx, t.metaKey(runID), fieldCompleted, fieldResult).Result()
	if err != nil {
		return false, "", fmt.Errorf("progress: read %s: %w", runID, err)
	}

	completed, _ := vals[0].(string)
	result, _ := vals[1].(string)
	return completed == "1", result, nil
}

func (t *RedisTracker) linesKey(runID string) string {
	return t.prefix + runID + ":lines"
}

func (t *RedisTracker) metaKey(runID string) string {
	return t.prefix + runID + ":meta"
}

func decodeLines(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var l encodedLine
		if err := json.Unmarshal([]byte(item), &l); err != nil {
			out = append(out, item)
			continue
		}
		out = append(out, Line{At: l.At, Text: l.Text}.String())
	}
	return out
}
