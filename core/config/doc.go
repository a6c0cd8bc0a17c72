// Package config loads typed configuration from environment variables.
//
// Structs are annotated with caarlos0/env tags; nested component configs are
// parsed in one pass. A .env file in the working directory is applied once,
// before the first parse, and never overrides variables already set.
//
//	type Config struct {
//		AppEnv   string `env:"APP_ENV" envDefault:"development"`
//		Commands command.Config
//		Server   server.Config
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Each struct type is parsed once per process. Later Load calls for the same
// type return the cached value, so environment changes after startup are not
// observed.
package config
