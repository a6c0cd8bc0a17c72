package progress

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Backends accepted by Config.Backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and tunes the tracker backend.
type Config struct {
	Backend         string        `env:"PROGRESS_BACKEND" envDefault:"memory"`
	Retention       time.Duration `env:"PROGRESS_RETENTION" envDefault:"1h"`
	CleanupInterval time.Duration `env:"PROGRESS_CLEANUP_INTERVAL" envDefault:"1m"`
	RedisKeyPrefix  string        `env:"PROGRESS_REDIS_PREFIX" envDefault:"storyforge:progress:"`
	RedisTTL        time.Duration `env:"PROGRESS_REDIS_TTL" envDefault:"24h"`
}

// NewMemoryTrackerFromConfig applies cfg to a MemoryTracker.
func NewMemoryTrackerFromConfig(cfg Config, opts ...MemoryTrackerOption) *MemoryTracker {
	return NewMemoryTracker(append([]MemoryTrackerOption{
		WithRetention(cfg.Retention),
		WithCleanupInterval(cfg.CleanupInterval),
	}, opts...)...)
}

// NewRedisTrackerFromConfig applies cfg to a RedisTracker.
func NewRedisTrackerFromConfig(client redis.UniversalClient, cfg Config, opts ...RedisTrackerOption) (*RedisTracker, error) {
	return NewRedisTracker(client, append([]RedisTrackerOption{
		WithKeyPrefix(cfg.RedisKeyPrefix),
		WithTTL(cfg.RedisTTL),
	}, opts...)...)
}
