package main

import (
	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/core/progress"
	"github.com/dmitrymomot/storyforge/core/server"
	"github.com/dmitrymomot/storyforge/core/storage"
	"github.com/dmitrymomot/storyforge/integration/database/redis"
	"github.com/dmitrymomot/storyforge/integration/llm"
	"github.com/dmitrymomot/storyforge/integration/storage/s3"
)

type Config struct {
	AppName string `env:"APP_NAME" envDefault:"storyforge"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	Commands command.Config
	Progress progress.Config
	Storage  storage.Config
	S3       s3.Config
	Redis    redis.Config
	LLM      llm.Config
	Server   server.Config
}
