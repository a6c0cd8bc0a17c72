package command

import "time"

// Config holds dispatcher configuration.
// Designed for environment-based configuration using popular env parsing libraries.
type Config struct {
	MaxConcurrent   int           `env:"COMMAND_MAX_CONCURRENT" envDefault:"2"`
	MaxRetries      int           `env:"COMMAND_MAX_RETRIES" envDefault:"0"`
	RetryBackoff    time.Duration `env:"COMMAND_RETRY_BACKOFF" envDefault:"0s"`
	Retention       time.Duration `env:"COMMAND_RETENTION" envDefault:"5m"`
	HardTimeout     time.Duration `env:"COMMAND_HARD_TIMEOUT" envDefault:"0s"`
	SweepInterval   time.Duration `env:"COMMAND_SWEEP_INTERVAL" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"COMMAND_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DefaultConfig returns sensible defaults for production use.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:   2,
		MaxRetries:      0,
		Retention:       5 * time.Minute,
		SweepInterval:   30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}
